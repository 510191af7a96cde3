package sms

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(url string) Config {
	return Config{AccountSID: "AC123", AuthToken: "secret", FromNumber: "+15550009999", APIBaseURL: url}
}

func TestSendSMS(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		got = r
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"sid":"SM1","status":"queued","error_code":null}`))
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), zap.NewNop())
	err := c.SendSMS(context.Background(), "+15550000001", "hello")
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/2010-04-01/Accounts/AC123/Messages.json", got.URL.Path)
	assert.Equal(t, "+15550000001", got.PostForm.Get("To"))
	assert.Equal(t, "+15550009999", got.PostForm.Get("From"))
	assert.Equal(t, "hello", got.PostForm.Get("Body"))

	user, pass, ok := got.BasicAuth()
	assert.True(t, ok)
	assert.Equal(t, "AC123", user)
	assert.Equal(t, "secret", pass)
}

func TestSendSMS_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":21211,"message":"The 'To' number is not a valid phone number.","status":400}`))
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), zap.NewNop())
	err := c.SendSMS(context.Background(), "+1", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "21211")
}

func TestSendSMS_ServerErrorIsNotResent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"code":20500,"message":"Internal Server Error","status":500}`))
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), zap.NewNop())
	err := c.SendSMS(context.Background(), "+15550000001", "hello")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestSendSMS_DroppedConnectionIsNotResent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		// The message may have been accepted; the response is lost.
		conn, _, err := w.(http.Hijacker).Hijack()
		require.NoError(t, err)
		conn.Close()
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), zap.NewNop())
	err := c.SendSMS(context.Background(), "+15550000001", "hello")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestSendSMS_NotConfigured(t *testing.T) {
	c := New(Config{}, nil)
	assert.ErrorIs(t, c.SendSMS(context.Background(), "+15550000001", "hello"), ErrNotConfigured)
}
