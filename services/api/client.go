// Package apisvc is the call-site for every backend request: it attaches the stored
// bearer token and turns failed responses into *core.RequestError.
package apisvc

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/masomo-portal/core"
)

const (
	headerAuthorization = "Authorization"
	headerRequestID     = "X-Request-ID"
)

type Client struct {
	baseURL  string
	tokens   core.TokenStore
	logger   core.Logger
	http     *rest.Client
	timeout  time.Duration
	fallback string
}

var _ core.APIClient = (*Client)(nil)

type Options struct {
	BaseURL         string
	Timeout         time.Duration
	FallbackMessage string
	HTTPClient      *http.Client // optional
}

func NewClient(opts Options, tokens core.TokenStore, logger core.Logger) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	fallback := opts.FallbackMessage
	if fallback == "" {
		fallback = core.DefaultFallbackErrorMessage
	}
	return &Client{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		tokens:   tokens,
		logger:   logger,
		http:     &rest.Client{HTTPClient: httpClient},
		timeout:  opts.Timeout,
		fallback: fallback,
	}
}

// NewClientFromConfig builds a Client from the application config.
func NewClientFromConfig(conf *core.Config, tokens core.TokenStore, logger core.Logger) *Client {
	return NewClient(Options{
		BaseURL:         conf.BackendURL,
		Timeout:         conf.RequestTimeout,
		FallbackMessage: conf.FallbackErrorMessage,
	}, tokens, logger)
}

// Do sends one request. Unless req is public, the token is read from the store on every call
// and core.ErrNoToken is returned, without any request being sent, when there is none.
func (c *Client) Do(ctx context.Context, req core.Request, out interface{}) error {
	restReq := rest.Request{
		Method:      rest.Method(req.Method),
		BaseURL:     c.baseURL + "/" + strings.TrimLeft(req.Path, "/"),
		QueryParams: req.Query,
		Headers: map[string]string{
			"Accept":        "application/json",
			headerRequestID: uuid.NewString(),
		},
	}

	if !req.Public {
		token, err := c.tokens.Token()
		if err != nil {
			return errors.Wrap(err, "reading token")
		}
		if token == "" {
			return core.ErrNoToken
		}
		restReq.Headers[headerAuthorization] = "Bearer " + token
	}

	if req.Body != nil {
		body, err := sonic.Marshal(req.Body)
		if err != nil {
			return errors.Wrap(err, "encoding request body")
		}
		restReq.Body = body
		restReq.Headers["Content-Type"] = "application/json"
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.http.SendWithContext(ctx, restReq)
	if err != nil {
		c.logger.Warn(fmt.Sprintf("%s %s failed", req.Method, req.Path), err)
		return errors.Wrapf(err, "%s %s", req.Method, req.Path)
	}
	c.logger.Debug(fmt.Sprintf("%s %s -> %d [%s]", req.Method, req.Path, resp.StatusCode, restReq.Headers[headerRequestID]))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.responseError(resp)
	}

	if out == nil || strings.TrimSpace(resp.Body) == "" {
		return nil
	}
	if err := sonic.UnmarshalString(resp.Body, out); err != nil {
		return errors.Wrapf(err, "decoding %s %s response", req.Method, req.Path)
	}
	return nil
}

type errorPayload struct {
	Message string `json:"message"`
}

func (c *Client) responseError(resp *rest.Response) error {
	var payload errorPayload
	msg := c.fallback
	if err := sonic.UnmarshalString(resp.Body, &payload); err == nil {
		if m := strings.TrimSpace(payload.Message); m != "" {
			msg = m
		}
	}
	return &core.RequestError{StatusCode: resp.StatusCode, Message: msg}
}
