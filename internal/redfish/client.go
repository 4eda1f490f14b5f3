// Package redfish is a small session-authenticated client for a Redfish management service.
package redfish

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Options configure a Client
type Options struct {
	RootURL   string        // Service root, e.g. https://host/redfish/v1
	Username  string        // Session user
	Password  string        // Session password
	Timeout   time.Duration // Per-request timeout
	VerifyTLS bool          // Verify the service certificate
}

// Client talks to one Redfish service and owns at most one session
type Client struct {
	root       *url.URL
	opts       Options
	httpClient *http.Client
	logger     *zap.Logger

	token      string
	sessionURI string
}

// Response is a fully read HTTP response
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// NewClient creates a client without a session
func NewClient(opts Options, logger *zap.Logger) (*Client, error) {
	root, err := url.Parse(strings.TrimSuffix(opts.RootURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parse redfish root %q: %w", opts.RootURL, err)
	}
	if root.Scheme == "" || root.Host == "" {
		return nil, fmt.Errorf("redfish root %q must be an absolute URL", opts.RootURL)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !opts.VerifyTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // BMCs ship self-signed certificates
	}

	return &Client{
		root:       root,
		opts:       opts,
		httpClient: &http.Client{Transport: transport, Timeout: opts.Timeout},
		logger:     logger,
	}, nil
}

// Open creates a client and logs in. The caller must Close it.
func Open(ctx context.Context, opts Options, logger *zap.Logger) (*Client, error) {
	c, err := NewClient(opts, logger)
	if err != nil {
		return nil, err
	}
	if err := c.Login(ctx); err != nil {
		c.httpClient.CloseIdleConnections()
		return nil, err
	}
	return c, nil
}

// Token returns the current session token, empty when not logged in
func (c *Client) Token() string {
	return c.token
}

// URL resolves a path relative to the service root
func (c *Client) URL(path string) string {
	ref, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return c.root.String() + path
	}
	return c.root.ResolveReference(ref).String()
}

// Login creates a session and attaches its token to subsequent requests
func (c *Client) Login(ctx context.Context) error {
	body := map[string]string{"UserName": c.opts.Username, "Password": c.opts.Password}
	resp, err := c.Do(ctx, http.MethodPost, SessionsPath, body)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("create session: %w", &StatusError{Method: http.MethodPost, URL: c.URL(SessionsPath), Code: resp.StatusCode})
	}

	token := resp.Header.Get(AuthTokenHeader)
	if token == "" {
		return ErrNoToken
	}
	c.token = token
	c.sessionURI = c.sessionLocation(resp)

	c.logger.Debug("redfish session created", zap.String("session", c.sessionURI))
	return nil
}

func (c *Client) sessionLocation(resp *Response) string {
	if loc := resp.Header.Get("Location"); loc != "" {
		if ref, err := url.Parse(loc); err == nil {
			return c.root.ResolveReference(ref).String()
		}
	}
	var created struct {
		ODataID string `json:"@odata.id"`
		ID      string `json:"Id"`
	}
	if err := json.Unmarshal(resp.Body, &created); err != nil {
		return ""
	}
	if created.ODataID != "" {
		if ref, err := url.Parse(created.ODataID); err == nil {
			return c.root.ResolveReference(ref).String()
		}
	}
	if created.ID != "" {
		return c.URL(SessionsPath + "/" + created.ID)
	}
	return ""
}

// Close deletes the session, if any, and releases idle connections
func (c *Client) Close(ctx context.Context) error {
	defer c.httpClient.CloseIdleConnections()
	if c.sessionURI == "" {
		c.token = ""
		return nil
	}
	resp, err := c.Do(ctx, http.MethodDelete, c.sessionURI, nil)
	uri := c.sessionURI
	c.sessionURI = ""
	c.token = ""
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("delete session: %w", &StatusError{Method: http.MethodDelete, URL: uri, Code: resp.StatusCode})
	}
	return nil
}

// Do sends one request with the per-request timeout. payload, when non-nil, is sent as JSON.
// Non-2xx answers are returned as responses, not errors.
func (c *Client) Do(ctx context.Context, method, path string, payload any) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	target := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		target = c.URL(path)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set(AuthTokenHeader, c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s %s: %w", method, target, err)
	}
	c.logger.Debug("redfish request",
		zap.String("method", method),
		zap.String("url", target),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

// GetJSON fetches path and decodes a 200 answer into v. Other codes return a *StatusError.
func (c *Client) GetJSON(ctx context.Context, path string, v any) error {
	resp, err := c.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return &StatusError{Method: http.MethodGet, URL: c.URL(path), Code: resp.StatusCode}
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// ServiceRoot fetches the service root and returns its status code
func (c *Client) ServiceRoot(ctx context.Context) (int, error) {
	resp, err := c.Do(ctx, http.MethodGet, "", nil)
	if err != nil {
		return 0, err
	}
	return resp.StatusCode, nil
}

// SessionService fetches the session service resource and returns its status code
func (c *Client) SessionService(ctx context.Context) (int, error) {
	resp, err := c.Do(ctx, http.MethodGet, SessionServicePath, nil)
	if err != nil {
		return 0, err
	}
	return resp.StatusCode, nil
}

// System fetches the ComputerSystem resource
func (c *Client) System(ctx context.Context) (*ComputerSystem, error) {
	var sys ComputerSystem
	if err := c.GetJSON(ctx, SystemPath, &sys); err != nil {
		return nil, err
	}
	return &sys, nil
}

// Reset posts a reset request and returns the status code. target may be empty for the default path.
func (c *Client) Reset(ctx context.Context, target, resetType string) (int, error) {
	if err := ValidateResetType(resetType); err != nil {
		return 0, err
	}
	if target == "" {
		target = ResetPath
	}
	resp, err := c.Do(ctx, http.MethodPost, c.resolve(target), map[string]string{"ResetType": resetType})
	if err != nil {
		return 0, err
	}
	return resp.StatusCode, nil
}

// Thermal tries ThermalPaths in order and decodes the first one answering 200
func (c *Client) Thermal(ctx context.Context) (*Thermal, string, error) {
	for _, path := range ThermalPaths {
		var th Thermal
		err := c.GetJSON(ctx, path, &th)
		var se *StatusError
		if errors.As(err, &se) {
			continue
		}
		if err != nil {
			return nil, path, err
		}
		return &th, path, nil
	}
	return nil, "", ErrNoThermalEndpoint
}

// resolve turns an absolute resource path (/redfish/v1/...) into a full URL
func (c *Client) resolve(target string) string {
	if strings.HasPrefix(target, "/") {
		if ref, err := url.Parse(target); err == nil {
			return c.root.ResolveReference(ref).String()
		}
	}
	return target
}
