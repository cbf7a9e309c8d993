// Package api is the HTTP gateway to the phonebook service. It owns request
// encoding, cookie-based credentials and the normalization of success and
// error shapes; auth/retry policy lives above it in the session package.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/and161185/phonebook/internal/errs"
)

const (
	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 30 * time.Second

	basePath        = "/api/v1"
	headerRequestID = "X-Request-Id"
	contentTypeJSON = "application/json"
)

// Client is the phonebook API client. Credentials ride on the cookie jar;
// no bearer token is ever attached manually.
type Client struct {
	baseURL string
	hc      *http.Client
	lim     *rate.Limiter
	log     *zap.Logger
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. A cookie jar is
// installed on it if it does not carry one.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithLogger sets the structured logger (zap.NewNop by default).
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithRateLimit caps outbound requests per second. Zero disables the limiter.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps > 0 {
			c.lim = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// New creates a client for the service at baseURL (scheme://host, no trailing
// slash required).
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("base url is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.hc == nil {
		c.hc = &http.Client{Timeout: DefaultTimeout}
	}
	if c.hc.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		c.hc.Jar = jar
	}
	return c, nil
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Jar exposes the cookie jar so callers can persist or drop the session.
func (c *Client) Jar() http.CookieJar { return c.hc.Jar }

// ResetSession discards all held credentials. A jar that can purge itself
// (PersistentJar) is cleared in place so its on-disk snapshot is dropped too;
// any other jar is replaced with an empty one.
func (c *Client) ResetSession() {
	if j, ok := c.hc.Jar.(interface{ Clear() }); ok {
		j.Clear()
		return
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return
	}
	c.hc.Jar = jar
}

// do performs a request against basePath+path and decodes a JSON body into
// out (when non-nil). A 204, or a 200 without a content-type header, is a
// bodiless success and leaves out untouched.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	if c.lim != nil {
		if err := c.lim.Wait(ctx); err != nil {
			return err
		}
	}

	reqURL := c.baseURL + basePath + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if rid, err := uuid.NewV4(); err == nil {
		req.Header.Set(headerRequestID, rid.String())
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		c.log.Debug("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%w: %s %s: %v", errs.ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	c.log.Debug("request done",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)

	if resp.StatusCode == http.StatusNoContent ||
		(resp.StatusCode == http.StatusOK && resp.Header.Get("Content-Type") == "") {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", errs.ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseError(resp.StatusCode, resp.Status, respBody)
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// parseError maps a non-2xx response to the error taxonomy. 401/403 become
// ErrUnauthorized; everything else becomes *errs.APIError with the server
// message when the body parses as JSON, else the HTTP status text.
func parseError(status int, statusText string, body []byte) error {
	msg := ""
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		msg = payload.Message
	}
	if msg == "" {
		msg = strings.TrimSpace(strings.TrimPrefix(statusText, fmt.Sprintf("%d ", status)))
		if msg == "" {
			msg = http.StatusText(status)
		}
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", errs.ErrUnauthorized, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", errs.ErrNotFound, msg)
	}
	return &errs.APIError{Status: status, Message: msg}
}

// getJSON performs a GET and decodes the response.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, "", out)
}

// postJSON performs a POST with an optional JSON body.
func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
		contentType = contentTypeJSON
	}
	return c.do(ctx, http.MethodPost, path, nil, body, contentType, out)
}

// formField is one multipart field; binary content is sent as a file part.
type formField struct {
	name     string
	value    string
	fileName string
	data     []byte
}

// encodeForm builds a multipart body from the given fields. Fields with an
// empty value and no data are omitted entirely, so the server treats absence
// as "no change" on update.
func encodeForm(fields []formField) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range fields {
		if f.data != nil {
			fw, err := w.CreateFormFile(f.name, f.fileName)
			if err != nil {
				return nil, "", err
			}
			if _, err := fw.Write(f.data); err != nil {
				return nil, "", err
			}
			continue
		}
		if f.value == "" {
			continue
		}
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
