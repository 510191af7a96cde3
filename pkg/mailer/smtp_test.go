package mailer

import (
	"bufio"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// smtpServer is a single-connection SMTP responder. It records the DATA
// payload and the recipients it was handed.
type smtpServer struct {
	ln    net.Listener
	rcpts []string
	data  string
	done  chan struct{}
}

func startSMTPServer(t *testing.T, silent bool) *smtpServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	s := &smtpServer{ln: ln, done: make(chan struct{})}
	t.Cleanup(func() { ln.Close() })

	go func() {
		defer close(s.done)
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		if silent {
			// Accept and never greet; the client has to give up on its own.
			_, _ = bufio.NewReader(conn).ReadString('\n')
			return
		}
		s.serve(conn)
	}()
	return s
}

func (s *smtpServer) serve(conn net.Conn) {
	r := bufio.NewReader(conn)
	reply := func(line string) { _, _ = conn.Write([]byte(line + "\r\n")) }

	reply("220 localhost ESMTP")
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		cmd := strings.ToUpper(strings.TrimSpace(line))
		switch {
		case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
			reply("250 localhost")
		case strings.HasPrefix(cmd, "MAIL FROM"):
			reply("250 OK")
		case strings.HasPrefix(cmd, "RCPT TO"):
			s.rcpts = append(s.rcpts, strings.TrimSpace(line[len("RCPT TO:"):]))
			reply("250 OK")
		case cmd == "DATA":
			reply("354 go ahead")
			var b strings.Builder
			for {
				l, err := r.ReadString('\n')
				if err != nil {
					return
				}
				if l == ".\r\n" {
					break
				}
				b.WriteString(l)
			}
			s.data = b.String()
			reply("250 queued")
		case cmd == "QUIT":
			reply("221 bye")
			return
		default:
			reply("502 not implemented")
		}
	}
}

func (s *smtpServer) hostPort(t *testing.T) (string, string) {
	host, port, err := net.SplitHostPort(s.ln.Addr().String())
	require.NoError(t, err)
	return host, port
}

func TestDeliver_SendsOverSMTP(t *testing.T) {
	srv := startSMTPServer(t, false)
	host, port := srv.hostPort(t)
	m := New(Config{Host: host, Port: port, From: "noreply@stillalive.local", FromName: "Still Alive", Timeout: 5 * time.Second}, nil)

	require.NoError(t, m.SendEmail(context.Background(), "ana@example.com", "Hello", "body text"))
	<-srv.done

	assert.Equal(t, []string{"<ana@example.com>"}, srv.rcpts)
	assert.Contains(t, srv.data, "Subject: Hello\r\n")
	assert.Contains(t, srv.data, "body text")
}

func TestDeliver_SilentServerHonorsContextDeadline(t *testing.T) {
	srv := startSMTPServer(t, true)
	host, port := srv.hostPort(t)
	m := New(Config{Host: host, Port: port, From: "x@example.com"}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := m.SendEmail(ctx, "ana@example.com", "s", "b")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestDeliver_SilentServerHitsConfiguredTimeout(t *testing.T) {
	srv := startSMTPServer(t, true)
	host, port := srv.hostPort(t)
	m := New(Config{Host: host, Port: port, From: "x@example.com", Timeout: 200 * time.Millisecond}, nil)

	start := time.Now()
	err := m.SendEmail(context.Background(), "ana@example.com", "s", "b")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestNew_DefaultsTimeout(t *testing.T) {
	m := New(Config{}, nil)
	assert.Equal(t, DefaultTimeout, m.config.Timeout)
}
