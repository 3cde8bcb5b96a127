package webflow

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors matched with errors.Is against the typed errors below.
var (
	ErrConfiguration     = errors.New("invalid client configuration")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrMissingArgument   = errors.New("missing argument")
	ErrMalformedResponse = errors.New("malformed response")
	ErrTransport         = errors.New("transport failure")
)

// Common static errors that can be wrapped with context.
var (
	ErrConfigRequired = errors.New("config is required")
	ErrCacheMiss      = errors.New("key not found")
	ErrCacheExpired   = errors.New("entry expired")
	ErrCacheDisabled  = errors.New("cache disabled")
	ErrNoMoreItems    = errors.New("no more items")
	ErrItemNotFound   = errors.New("item not found")
)

// ConfigurationError reports a client that cannot be constructed.
type ConfigurationError struct {
	Field string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("argument '%s' is required but was not present", e.Field)
}

// Is reports whether target is ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// InvalidArgumentError reports an argument outside its allowed values.
type InvalidArgumentError struct {
	Argument string
	Value    string
	Allowed  []string
}

// Error implements the error interface.
func (e *InvalidArgumentError) Error() string {
	if len(e.Allowed) == 0 {
		return fmt.Sprintf("invalid %s '%s'", e.Argument, e.Value)
	}

	return fmt.Sprintf("invalid %s '%s'. Possible values are [%s]",
		e.Argument, e.Value, strings.Join(e.Allowed, ","))
}

// Is reports whether target is ErrInvalidArgument.
func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// MissingArgumentError reports a required argument that was not supplied.
// It is a kind of invalid argument.
type MissingArgumentError struct {
	Argument string
}

// Error implements the error interface.
func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("argument '%s' is required but was not present", e.Argument)
}

// Is reports whether target is ErrMissingArgument or ErrInvalidArgument.
func (e *MissingArgumentError) Is(target error) bool {
	return target == ErrMissingArgument || target == ErrInvalidArgument
}

// APIError is the normalized form of the upstream error envelope
// {"code": ..., "msg": ..., "problems": [...]}.
type APIError struct {
	// Code is the upstream error code, usually mirroring the HTTP status.
	Code int `json:"code"     yaml:"code"`
	// Message is the upstream message followed by one line per problem.
	Message string `json:"message"  yaml:"message"`
	// Problems lists upstream validation problems in order.
	Problems []string `json:"problems" yaml:"problems"`
	// StatusCode is the HTTP status the envelope arrived with. It plays no
	// part in detection.
	StatusCode int `json:"-" yaml:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// Common upstream error codes.
const (
	ErrorCodeBadRequest   = 400
	ErrorCodeUnauthorized = 401
	ErrorCodeForbidden    = 403
	ErrorCodeNotFound     = 404
	ErrorCodeConflict     = 409
	ErrorCodeRateLimited  = 429
	ErrorCodeServerError  = 500
)

// MalformedResponseError reports a response body that is not valid JSON.
type MalformedResponseError struct {
	StatusCode int
	Body       []byte
	Err        error
}

// Error implements the error interface.
func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response (status %d): %v", e.StatusCode, e.Err)
}

// Unwrap returns the decoding error.
func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrMalformedResponse.
func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrMalformedResponse
}

// TransportError reports a request that never produced a response.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

// Unwrap returns the underlying network error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrTransport.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// errorEnvelope mirrors the upstream error body. Pointer fields record presence.
type errorEnvelope struct {
	Code     *json.Number `json:"code"`
	Msg      *string      `json:"msg"`
	Message  *string      `json:"message"`
	Problems []string     `json:"problems"`
}

// ParseErrorEnvelope applies the error detection rule to a raw JSON body. It
// returns an APIError when the body is an object carrying both a code and a
// msg (or message) field, and nil otherwise. The HTTP status is never
// consulted: a 200 carrying the envelope is an error, a 500 without it is not.
func ParseErrorEnvelope(body []byte) *APIError {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}

	var envelope errorEnvelope

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	err := decoder.Decode(&envelope)
	if err != nil || envelope.Code == nil {
		return nil
	}

	message := envelope.Msg
	if message == nil {
		message = envelope.Message
	}

	if message == nil {
		return nil
	}

	code, err := envelope.Code.Int64()
	if err != nil {
		floatCode, floatErr := envelope.Code.Float64()
		if floatErr != nil {
			return nil
		}

		code = int64(floatCode)
	}

	lines := append([]string{*message}, envelope.Problems...)

	return &APIError{
		Code:     int(code),
		Message:  strings.Join(lines, "\n"),
		Problems: envelope.Problems,
	}
}

// AsAPIError returns the APIError in err's chain, if any.
func AsAPIError(err error) (*APIError, bool) {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr, true
	}

	return nil, false
}

// IsAPIError checks if the error carries an upstream error envelope.
func IsAPIError(err error) bool {
	_, ok := AsAPIError(err)

	return ok
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return hasCode(err, ErrorCodeNotFound)
}

// IsUnauthorized checks if the error is an unauthorized error.
func IsUnauthorized(err error) bool {
	return hasCode(err, ErrorCodeUnauthorized)
}

// IsRateLimited checks if the error reports an exhausted request quota.
func IsRateLimited(err error) bool {
	return hasCode(err, ErrorCodeRateLimited)
}

// IsConflict checks if the error is a conflict error.
func IsConflict(err error) bool {
	return hasCode(err, ErrorCodeConflict)
}

func hasCode(err error, code int) bool {
	apiErr, ok := AsAPIError(err)
	if !ok {
		return false
	}

	return apiErr.Code == code || (apiErr.Code == 0 && apiErr.StatusCode == code)
}

// StatusText returns a readable name for an upstream error code.
func StatusText(code int) string {
	text := http.StatusText(code)
	if text == "" {
		return "Unknown"
	}

	return text
}
