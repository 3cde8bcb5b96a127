package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fivetwenty-io/webflow/internal/auth"
	"github.com/fivetwenty-io/webflow/internal/constants"
	"github.com/fivetwenty-io/webflow/pkg/webflow"
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"go.opentelemetry.io/otel/trace"
)

// Client is the HTTP transport for the Webflow API. Each call performs one
// round trip unless retries are configured.
type Client struct {
	baseURL      string
	httpClient   *retryablehttp.Client
	tokenManager auth.TokenManager
	logger       webflow.Logger
	debug        bool
	userAgent    string
	apiVersion   string
	interceptors *webflow.InterceptorChain
}

// Request represents an HTTP request.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    interface{}
	Headers map[string]string
}

// Response represents an HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// Option configures the client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger webflow.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request and response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithAPIVersion sets the accept-version header.
func WithAPIVersion(version string) Option {
	return func(c *Client) {
		if version != "" {
			c.apiVersion = version
		}
	}
}

// WithRetryConfig enables retries of 429, 5xx and connection failures.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = retryMax
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.HTTPClient.Timeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient.HTTPClient = httpClient
		}
	}
}

// WithInterceptors runs chain around every request.
func WithInterceptors(chain *webflow.InterceptorChain) Option {
	return func(c *Client) {
		c.interceptors = chain
	}
}

// NewClient creates a new HTTP client.
func NewClient(baseURL string, tokenManager auth.TokenManager, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0
	retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
	retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = nil

	client := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		httpClient:   retryClient,
		tokenManager: tokenManager,
		userAgent:    constants.DefaultUserAgent,
		apiVersion:   constants.DefaultAPIVersion,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.debug && client.logger != nil {
		retryClient.Logger = &leveledLogger{logger: client.logger}
	}

	return client
}

// BaseURL returns the API endpoint requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do executes an HTTP request. Any response that arrives is returned without
// error, whatever its status; only a failed round trip is an error.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	fullURL := c.baseURL + req.Path
	if len(req.Query) > 0 {
		fullURL += "?" + req.Query.Encode()
	}

	var body []byte

	if req.Body != nil {
		var err error

		body, err = json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
	}

	intercepted := &webflow.Request{
		Method:  req.Method,
		Path:    req.Path,
		Headers: make(http.Header),
		Body:    body,
	}

	for key, value := range req.Headers {
		intercepted.Headers.Set(key, value)
	}

	if c.interceptors != nil {
		err := c.interceptors.ExecuteRequestInterceptors(ctx, intercepted)
		if err != nil {
			return nil, err
		}
	}

	httpReq, err := c.newRequest(ctx, req.Method, fullURL, intercepted)
	if err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	start := time.Now()

	c.logRequest(ctx, httpReq, requestID)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		transportErr := &webflow.TransportError{Method: req.Method, URL: fullURL, Err: err}
		interceptErr := c.runResponseInterceptors(ctx, intercepted, &webflow.Response{Error: transportErr})

		return nil, withInterceptorError(transportErr, interceptErr)
	}

	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		transportErr := &webflow.TransportError{Method: req.Method, URL: fullURL, Err: fmt.Errorf("reading response body: %w", err)}
		interceptErr := c.runResponseInterceptors(ctx, intercepted, &webflow.Response{StatusCode: httpResp.StatusCode, Error: transportErr})

		return nil, withInterceptorError(transportErr, interceptErr)
	}

	c.logResponse(httpResp, requestID, time.Since(start), len(respBody))

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Body:       respBody,
		Headers:    httpResp.Header,
	}

	err = c.runResponseInterceptors(ctx, intercepted, &webflow.Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       resp.Body,
	})
	if err != nil {
		return resp, err
	}

	return resp, nil
}

// withInterceptorError keeps err as is unless a response interceptor also failed.
func withInterceptorError(err, interceptErr error) error {
	if interceptErr == nil {
		return err
	}

	return errors.Join(err, interceptErr)
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodGet,
		Path:   path,
		Query:  query,
	})
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodPost,
		Path:   path,
		Body:   body,
	})
}

// Put performs a PUT request.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodPut,
		Path:   path,
		Body:   body,
	})
}

// Patch performs a PATCH request.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodPatch,
		Path:   path,
		Body:   body,
	})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodDelete,
		Path:   path,
	})
}

// Decode applies the error envelope rule to the body and, when the body is
// not an error, unmarshals it into v. A nil v only checks for errors. An
// empty body decodes as null and leaves v untouched.
func (r *Response) Decode(v interface{}) error {
	trimmed := bytes.TrimSpace(r.Body)
	if len(trimmed) == 0 {
		return nil
	}

	if !json.Valid(trimmed) {
		return &webflow.MalformedResponseError{
			StatusCode: r.StatusCode,
			Body:       r.Body,
			Err:        errInvalidJSON,
		}
	}

	if apiErr := webflow.ParseErrorEnvelope(trimmed); apiErr != nil {
		apiErr.StatusCode = r.StatusCode

		return apiErr
	}

	if v == nil {
		return nil
	}

	err := json.Unmarshal(trimmed, v)
	if err != nil {
		return &webflow.MalformedResponseError{
			StatusCode: r.StatusCode,
			Body:       r.Body,
			Err:        err,
		}
	}

	return nil
}

var errInvalidJSON = errors.New("body is not valid JSON")

func (c *Client) newRequest(ctx context.Context, method, fullURL string, intercepted *webflow.Request) (*retryablehttp.Request, error) {
	var rawBody interface{}
	if intercepted.Body != nil {
		rawBody = intercepted.Body
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, method, fullURL, rawBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	for key, values := range intercepted.Headers {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	if c.tokenManager != nil {
		token, err := c.tokenManager.GetToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("getting token: %w", err)
		}

		if token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	httpReq.Header.Set(constants.HeaderAcceptVersion, c.apiVersion)
	httpReq.Header.Set("Accept", constants.ContentTypeJSON)
	httpReq.Header.Set("Content-Type", constants.ContentTypeJSON)
	httpReq.Header.Set("User-Agent", c.userAgent)

	return httpReq, nil
}

func (c *Client) runResponseInterceptors(ctx context.Context, req *webflow.Request, resp *webflow.Response) error {
	if c.interceptors == nil {
		return nil
	}

	return c.interceptors.ExecuteResponseInterceptors(ctx, req, resp)
}

func (c *Client) logRequest(ctx context.Context, req *retryablehttp.Request, requestID string) {
	if !c.debug || c.logger == nil {
		return
	}

	fields := map[string]interface{}{
		"method":     req.Method,
		"url":        req.URL.String(),
		"request_id": requestID,
	}

	if spanContext := trace.SpanContextFromContext(ctx); spanContext.IsValid() {
		fields["trace_id"] = spanContext.TraceID().String()
	}

	c.logger.Debug("HTTP Request", fields)
}

func (c *Client) logResponse(resp *http.Response, requestID string, duration time.Duration, size int) {
	if !c.debug || c.logger == nil {
		return
	}

	c.logger.Debug("HTTP Response", map[string]interface{}{
		"status":     resp.StatusCode,
		"request_id": requestID,
		"duration":   duration.String(),
		"bytes":      size,
	})
}

// leveledLogger adapts webflow.Logger to retryablehttp.LeveledLogger.
type leveledLogger struct {
	logger webflow.Logger
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, keyValueFields(keysAndValues))
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, keyValueFields(keysAndValues))
}

// Debug is dropped: the client already logs every request and response.
func (l *leveledLogger) Debug(string, ...interface{}) {}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, keyValueFields(keysAndValues))
}

func keyValueFields(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}

	return fields
}
