package sms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const DefaultAPIBaseURL = "https://api.twilio.com"

// Config holds Twilio credentials
type Config struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	APIBaseURL string
}

// Enabled reports whether enough is configured to send
func (c Config) Enabled() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.FromNumber != ""
}

var ErrNotConfigured = errors.New("sms: twilio is not configured")

type messageResponse struct {
	SID          string `json:"sid"`
	Status       string `json:"status"`
	ErrorCode    *int   `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

type errorResponse struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
}

// Client sends text messages through the Twilio REST API
type Client struct {
	http   *resty.Client
	cfg    Config
	logger *zap.Logger
}

// New creates a Twilio client
func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	// Message creation is not idempotent; failed sends wait for the next sweep.
	http := resty.New().
		SetBaseURL(cfg.APIBaseURL).
		SetTimeout(15*time.Second).
		SetRetryCount(0).
		SetBasicAuth(cfg.AccountSID, cfg.AuthToken).
		SetHeader("Accept", "application/json")

	return &Client{http: http, cfg: cfg, logger: logger}
}

// Enabled reports whether the client has credentials to send with
func (c *Client) Enabled() bool {
	return c.cfg.Enabled()
}

// SendSMS texts body to the E.164 number to
func (c *Client) SendSMS(ctx context.Context, to, body string) error {
	if !c.cfg.Enabled() {
		return ErrNotConfigured
	}

	var result messageResponse
	var apiErr errorResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("sid", c.cfg.AccountSID).
		SetFormData(map[string]string{
			"To":   to,
			"From": c.cfg.FromNumber,
			"Body": body,
		}).
		SetResult(&result).
		SetError(&apiErr).
		Post("/2010-04-01/Accounts/{sid}/Messages.json")
	if err != nil {
		c.logger.Error("twilio request failed", zap.String("to", to), zap.Error(err))
		return fmt.Errorf("twilio request: %w", err)
	}

	if resp.IsError() {
		c.logger.Error("twilio rejected message",
			zap.String("to", to),
			zap.Int("status_code", resp.StatusCode()),
			zap.Int("code", apiErr.Code),
			zap.String("message", apiErr.Message),
		)
		return fmt.Errorf("twilio error %d: %s (status: %d)", apiErr.Code, apiErr.Message, resp.StatusCode())
	}
	if result.ErrorCode != nil {
		return fmt.Errorf("twilio error %d: %s", *result.ErrorCode, result.ErrorMessage)
	}

	c.logger.Info("sms sent", zap.String("to", to), zap.String("sid", result.SID))
	return nil
}
