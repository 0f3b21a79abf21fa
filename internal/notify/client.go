package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"carecompliance/internal/platform/config"
	dErrors "carecompliance/pkg/domain-errors"
	"carecompliance/pkg/platform/circuit"
)

type sendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

type sendResponse struct {
	ID string `json:"id"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// Client sends email through a JSON email API: POST {base}/emails with a
// bearer API key.
type Client struct {
	http    *resty.Client
	from    string
	breaker *circuit.Breaker
}

// NewClient builds a client from cfg. Transport errors and 5xx responses are
// retried; the breaker stops calling the provider after repeated failures.
func NewClient(cfg config.EmailConfig) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})

	return &Client{
		http:    httpClient,
		from:    cfg.From,
		breaker: circuit.New("email", circuit.WithFailureThreshold(5), circuit.WithCooldown(30*time.Second)),
	}
}

func (c *Client) Send(ctx context.Context, msg Message) (string, error) {
	if !c.breaker.Allow() {
		return "", dErrors.New(dErrors.CodeExternalService, "email provider unavailable")
	}

	var (
		out     sendResponse
		errBody errorResponse
	)
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(sendRequest{From: c.from, To: msg.To, Subject: msg.Subject, HTML: msg.HTML}).
		SetResult(&out).
		SetError(&errBody).
		Post("/emails")
	if err != nil {
		c.breaker.RecordFailure()
		return "", dErrors.Wrap(err, dErrors.CodeExternalService, "email provider request failed")
	}
	if resp.IsError() {
		if resp.StatusCode() >= http.StatusInternalServerError {
			c.breaker.RecordFailure()
		}
		return "", dErrors.New(dErrors.CodeExternalService,
			fmt.Sprintf("email provider returned %d: %s", resp.StatusCode(), errBody.Message))
	}
	c.breaker.RecordSuccess()
	return out.ID, nil
}
