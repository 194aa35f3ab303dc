// Package api provides typed clients for the production-management REST
// backend. All calls go through the session manager, which guarantees a
// valid bearer token at send time.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prodflow/prodflow-go/session"
	"github.com/rs/zerolog"
)

// Client issues authenticated JSON requests against the backend. Tenant
// and company scope headers are derived from the session on every call.
type Client struct {
	baseURL string
	session *session.Manager
	log     zerolog.Logger
}

// Option modifies a Client instance.
type Option func(*Client)

// WithLogger sets the logger used for request failures.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// New creates a Client for the API rooted at baseURL (e.g.
// "https://erp.example.com/api"), authenticated by sess.
func New(baseURL string, sess *session.Manager, options ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		session: sess,
		log:     zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// StatusError is a non-2xx backend response that is not a 401.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, in, out)
}

func (c *Client) put(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, in, out)
}

func (c *Client) del(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errors.Wrapf(err, "[api] %s %s: marshal body", method, path)
		}
		body = bytes.NewReader(data)
	}

	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("X-Request-ID", uuid.New().String())
	if user, ok := c.session.User(); ok && user.TenantID != "" {
		header.Set("X-Tenant-ID", user.TenantID)
	}
	if companyID, ok := c.session.SelectedCompany(); ok && companyID != "" {
		header.Set("X-Company-ID", companyID)
	}

	resp, err := c.session.Do(ctx, method, requestURL, body, header)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// Backstop for tokens that expire between the proactive check and
	// the request reaching the server: tear the session down so the
	// caller lands back at login.
	if resp.StatusCode == http.StatusUnauthorized {
		c.log.Warn().Str("path", path).Msg("token rejected by backend, clearing session")
		if err := c.session.Logout(); err != nil {
			c.log.Error().Err(err).Msg("failed to clear session")
		}
		return session.NotAuthenticatedErr
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Status: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "[api] %s %s: decode response", method, path)
	}
	return nil
}

// readErrorMessage pulls the backend's "message" field out of an error
// body, if there is one.
func readErrorMessage(r io.Reader) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(r, 4096)).Decode(&payload); err != nil {
		return ""
	}
	return payload.Message
}
