package connection

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Adv1cer/infirmary/internal/infra/buildinfo"
)

// DefaultCSRFHeader is the header the server reads the token from.
const DefaultCSRFHeader = "csrf-token"

// DefaultTimeout bounds a single HTTP exchange.
const DefaultTimeout = 30 * time.Second

// codeTokenRejected is the code the server returns for any refused token.
const codeTokenRejected = "CG-CSRF-4030"

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 1 << 16

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	if e.Message != "" {
		return fmt.Sprintf("status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// IsTokenRejected reports whether err is a CSRF rejection from the server.
func IsTokenRejected(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusForbidden && apiErr.Code == codeTokenRejected
}

// HTTPClient provides HTTP communication with the server.
type HTTPClient struct {
	baseURL    string
	csrfHeader string
	client     *http.Client
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithCSRFHeader overrides the token header name.
func WithCSRFHeader(name string) Option {
	return func(c *HTTPClient) {
		if name != "" {
			c.csrfHeader = name
		}
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.client.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		if hc != nil {
			c.client = hc
		}
	}
}

// NewHTTPClient creates a new HTTP client for server.
func NewHTTPClient(server string, opts ...Option) *HTTPClient {
	baseURL := strings.TrimRight(server, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}

	c := &HTTPClient{
		baseURL:    baseURL,
		csrfHeader: DefaultCSRFHeader,
		client:     &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the base URL of the client.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, path string) (*http.Response, error) {
	return c.do(ctx, http.MethodGet, path, nil, "")
}

// TokenResponse is the body of GET /csrf.
type TokenResponse struct {
	CSRFToken string `json:"csrfToken" yaml:"csrf_token"`
	ExpiresAt int64  `json:"expires_at" yaml:"expires_at"`
}

// FetchToken asks the server for a fresh CSRF token.
func (c *HTTPClient) FetchToken(ctx context.Context) (*TokenResponse, error) {
	resp, err := c.Get(ctx, "/csrf")
	if err != nil {
		return nil, fmt.Errorf("fetch csrf token: %w", err)
	}
	var tok TokenResponse
	if err := ParseResponse(resp, &tok); err != nil {
		return nil, fmt.Errorf("fetch csrf token: %w", err)
	}
	if tok.CSRFToken == "" {
		return nil, errors.New("fetch csrf token: empty token")
	}
	return &tok, nil
}

// Send performs a mutating request carrying token. No token is fetched.
func (c *HTTPClient) Send(ctx context.Context, method, path, token string, body any) (*http.Response, error) {
	return c.do(ctx, method, path, body, token)
}

// Mutate performs a mutating request with a fresh CSRF token. A 403 token
// rejection is retried exactly once with another fresh token.
func (c *HTTPClient) Mutate(ctx context.Context, method, path string, body any) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		tok, err := c.FetchToken(ctx)
		if err != nil {
			return nil, err
		}

		resp, err := c.do(ctx, method, path, body, tok.CSRFToken)
		if err != nil {
			return nil, err
		}
		if attempt > 0 || resp.StatusCode != http.StatusForbidden {
			return resp, nil
		}

		rejected := readError(resp)
		if !IsTokenRejected(rejected) {
			return nil, rejected
		}
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body any, token string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", buildinfo.UserAgent("csrfguard-cli"))
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(c.csrfHeader, token)
	}

	return c.client.Do(req)
}

// envelope mirrors the server response envelope.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

// readError consumes resp and returns it as an *APIError.
func readError(resp *http.Response) error {
	defer resp.Body.Close()

	apiErr := &APIError{Status: resp.StatusCode, Code: resp.Header.Get("X-Error-Code")}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var env envelope
	if err := json.Unmarshal(data, &env); err == nil {
		if env.Code != "" {
			apiErr.Code = env.Code
		}
		apiErr.Message = env.Error
		if apiErr.Message == "" {
			apiErr.Message = env.Message
		}
	}
	return apiErr
}

// ParseResponse decodes a plain JSON body into target.
func ParseResponse(resp *http.Response, target any) error {
	if resp.StatusCode >= 400 {
		return readError(resp)
	}
	defer resp.Body.Close()

	if target != nil {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}

// ParseEnvelope decodes a {success,data} body and unmarshals data into
// target. It returns the envelope message, if any.
func ParseEnvelope(resp *http.Response, target any) (string, error) {
	if resp.StatusCode >= 400 {
		return "", readError(resp)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if !env.Success {
		return "", &APIError{Status: resp.StatusCode, Code: env.Code, Message: env.Error}
	}
	if target != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, target); err != nil {
			return "", fmt.Errorf("parse response data: %w", err)
		}
	}
	return env.Message, nil
}
