// Package gateway is the portal's only HTTP client for the due-diligence REST
// backend. Every call attaches the bearer credential bound to its context and
// reports 401 responses to a hook supplied by the composition root.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrUnauthorized matches any *APIError with status 401.
var ErrUnauthorized = errors.New("unauthorized")

// APIError is returned when the backend answers with a non-2xx status.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend %d: %s", e.Status, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// Message returns the server-provided message carried by err, or fallback.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

type credentialKey struct{}

// WithCredential binds a bearer credential to ctx for every call made with it.
func WithCredential(ctx context.Context, credential string) context.Context {
	return context.WithValue(ctx, credentialKey{}, credential)
}

func credentialFrom(ctx context.Context) string {
	s, _ := ctx.Value(credentialKey{}).(string)
	return s
}

type Options struct {
	HTTPClient *http.Client
	// OnUnauthorized runs for every 401 before the error reaches the caller.
	OnUnauthorized func(ctx context.Context)
	Logger         *zap.SugaredLogger
}

type Client struct {
	baseURL        string
	http           *http.Client
	onUnauthorized func(ctx context.Context)
	lg             *zap.SugaredLogger
}

func New(baseURL string, opts Options) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           opts.HTTPClient,
		onUnauthorized: opts.OnUnauthorized,
		lg:             opts.Logger,
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 2 * time.Minute}
	}
	if c.lg == nil {
		c.lg = zap.NewNop().Sugar()
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

// ResolveBaseURL picks the backend URL once per process: an explicit override,
// then the production backend whose host suffix matches hostname, then the
// development default.
func ResolveBaseURL(override, hostname string, productionHosts map[string]string, devDefault string) string {
	if override = strings.TrimSpace(override); override != "" {
		return override
	}
	hostname = strings.ToLower(strings.TrimSpace(hostname))
	if hostname != "" {
		suffixes := make([]string, 0, len(productionHosts))
		for s := range productionHosts {
			suffixes = append(suffixes, s)
		}
		// longest suffix wins so the mapping is deterministic
		sort.Slice(suffixes, func(i, j int) bool {
			if len(suffixes[i]) != len(suffixes[j]) {
				return len(suffixes[i]) > len(suffixes[j])
			}
			return suffixes[i] < suffixes[j]
		})
		for _, s := range suffixes {
			if strings.HasSuffix(hostname, strings.ToLower(s)) {
				return productionHosts[s]
			}
		}
	}
	return devDefault
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if tok := credentialFrom(ctx); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	return req, nil
}

// send performs req and turns non-2xx answers into *APIError. The caller owns
// the returned response body on success.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.lg.Debugw("backend call failed", "method", req.Method, "path", req.URL.Path, "error", err)
		return nil, err
	}
	c.lg.Debugw("backend call", "method", req.Method, "path", req.URL.Path, "status", resp.StatusCode,
		"latency_ms", time.Since(start).Milliseconds())
	if resp.StatusCode < 400 {
		return resp, nil
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &APIError{Status: resp.StatusCode, Message: errorMessage(data)}
	if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
		c.onUnauthorized(req.Context())
	}
	return nil, apiErr
}

func errorMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(data, &body) == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return strings.TrimSpace(string(data))
}

func (c *Client) doJSON(req *http.Request, out interface{}) error {
	req.Header.Set("Accept", "application/json")
	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return c.doJSON(req, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(data)
	}
	req, err := c.newRequest(ctx, method, path, r)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.doJSON(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	return c.sendJSON(ctx, http.MethodPost, path, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out interface{}) error {
	return c.sendJSON(ctx, http.MethodPut, path, body, out)
}

// del sends a DELETE, with a JSON body when body is non-nil.
func (c *Client) del(ctx context.Context, path string, body interface{}) error {
	return c.sendJSON(ctx, http.MethodDelete, path, body, nil)
}

// Download is a streamed file from the backend. Close Body when done.
type Download struct {
	Body               io.ReadCloser
	ContentType        string
	ContentDisposition string
	ContentLength      int64
}

func (c *Client) download(ctx context.Context, path string) (*Download, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	return &Download{
		Body:               resp.Body,
		ContentType:        resp.Header.Get("Content-Type"),
		ContentDisposition: resp.Header.Get("Content-Disposition"),
		ContentLength:      resp.ContentLength,
	}, nil
}
