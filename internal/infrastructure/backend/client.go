// Package backend talks to the school REST backend on behalf of a browser session.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/campusdesk/school-portal/internal/api/metrics"
	"github.com/campusdesk/school-portal/internal/core/domain"
	"github.com/campusdesk/school-portal/internal/core/session"
)

const (
	defaultTimeout = 15 * time.Second
	refreshPath    = "/auth/refresh"
)

// StatusError is returned for any non-2xx answer that is not handled by the
// refresh cycle. It matches domain.ErrRequestFailed.
type StatusError struct {
	Method   string
	Endpoint string
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Endpoint, e.Code)
}

func (e *StatusError) Is(target error) bool { return target == domain.ErrRequestFailed }

// Options describe a single call.
type Options struct {
	Method  string
	Body    any
	Headers http.Header
}

// Config captures the settings of the backend connection.
type Config struct {
	BaseURL string
	Prefix  string
	Timeout time.Duration
}

// Client sends JSON requests with the session's bearer token and cookies and
// recovers once from an expired access token.
type Client struct {
	base string
	http *http.Client
	log  zerolog.Logger
}

// NewClient builds a Client. A default timeout is applied when none is provided.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		base: strings.TrimRight(cfg.BaseURL, "/") + cfg.Prefix,
		http: &http.Client{Timeout: timeout},
		log:  log.With().Str("component", "backend").Logger(),
	}
}

// Request calls endpoint and decodes the JSON answer into out (nil discards it).
//
// On 401 it refreshes the access token once and retries once; a 401 on the
// retry is an ordinary failure. When the refresh fails the session's token is
// removed and the error matches domain.ErrSessionExpired.
func (c *Client) Request(ctx context.Context, sess *session.Session, endpoint string, opts Options, out any) error {
	if opts.Method == "" {
		opts.Method = http.MethodGet
	}

	var payload []byte
	if opts.Body != nil {
		var err error
		if payload, err = json.Marshal(opts.Body); err != nil {
			return fmt.Errorf("encode %s body: %w", endpoint, err)
		}
	}

	resp, err := c.send(ctx, sess, endpoint, opts, payload)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		drain(resp)
		if _, err := c.Refresh(ctx, sess); err != nil {
			return err
		}
		if resp, err = c.send(ctx, sess, endpoint, opts, payload); err != nil {
			return err
		}
	}
	defer drain(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Method: opts.Method, Endpoint: endpoint, Code: resp.StatusCode}
	}
	return decode(resp, out)
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// Refresh exchanges the session's backend cookie for a new access token.
// When the backend rejects the refresh the stored token is removed. A refresh
// abandoned because ctx ended leaves the token in place.
func (c *Client) Refresh(ctx context.Context, sess *session.Session) (string, error) {
	token, err := c.refresh(ctx, sess)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			metrics.TokenRefreshTotal.WithLabelValues("aborted").Inc()
			return "", fmt.Errorf("refresh aborted: %w", ctxErr)
		}
		metrics.TokenRefreshTotal.WithLabelValues("failure").Inc()
		sess.RemoveToken()
		c.log.Warn().Err(err).Str("session_id", sess.ID()).Msg("token refresh failed")
		return "", fmt.Errorf("%w: %v", domain.ErrSessionExpired, err)
	}
	metrics.TokenRefreshTotal.WithLabelValues("success").Inc()
	sess.SetToken(token)
	return token, nil
}

func (c *Client) refresh(ctx context.Context, sess *session.Session) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+refreshPath, nil)
	if err != nil {
		return "", err
	}
	for _, ck := range sess.Cookies() {
		req.AddCookie(ck)
	}

	resp, err := c.do(req)
	if err != nil {
		return "", err
	}
	defer drain(resp)
	sess.StoreCookies(resp.Cookies())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{Method: http.MethodPost, Endpoint: refreshPath, Code: resp.StatusCode}
	}
	var body refreshResponse
	if err := decode(resp, &body); err != nil {
		return "", err
	}
	if body.AccessToken == "" {
		return "", errors.New("refresh response carries no access token")
	}
	return body.AccessToken, nil
}

func (c *Client) send(ctx context.Context, sess *session.Session, endpoint string, opts Options, payload []byte) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, opts.Method, c.base+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", opts.Method, endpoint, err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token, ok := sess.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for key, values := range opts.Headers {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	for _, ck := range sess.Cookies() {
		req.AddCookie(ck)
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", opts.Method, endpoint, err)
	}
	sess.StoreCookies(resp.Cookies())
	return resp, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.BackendRequestDuration.WithLabelValues(req.Method).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(req.Method, "error").Inc()
		return nil, err
	}
	metrics.BackendRequestsTotal.WithLabelValues(req.Method, statusClass(resp.StatusCode)).Inc()
	c.log.Debug().
		Str("method", req.Method).
		Str("url", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("backend call")
	return resp, nil
}

func decode(resp *http.Response, out any) error {
	if out == nil {
		return nil
	}
	err := json.NewDecoder(resp.Body).Decode(out)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}
