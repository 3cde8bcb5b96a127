package webflow

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseErrorEnvelope(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     string
		expected *APIError
	}{
		{
			name: "code msg and problems",
			body: `{"code": 409, "msg": "Conflict", "problems": ["dup"]}`,
			expected: &APIError{
				Code:     409,
				Message:  "Conflict\ndup",
				Problems: []string{"dup"},
			},
		},
		{
			name: "several problems keep their order",
			body: `{"code": 400, "msg": "Validation Failure", "problems": ["Field 'name': required", "Field 'slug': invalid"]}`,
			expected: &APIError{
				Code:     400,
				Message:  "Validation Failure\nField 'name': required\nField 'slug': invalid",
				Problems: []string{"Field 'name': required", "Field 'slug': invalid"},
			},
		},
		{
			name: "message instead of msg",
			body: `{"code": 404, "message": "Requested resource not found"}`,
			expected: &APIError{
				Code:    404,
				Message: "Requested resource not found",
			},
		},
		{
			name:     "plain resource",
			body:     `{"id": "x", "name": "y"}`,
			expected: nil,
		},
		{
			name:     "code without message",
			body:     `{"code": 500}`,
			expected: nil,
		},
		{
			name:     "message without code",
			body:     `{"msg": "hello"}`,
			expected: nil,
		},
		{
			name:     "array",
			body:     `[{"code": 1, "msg": "x"}]`,
			expected: nil,
		},
		{
			name:     "empty body",
			body:     ``,
			expected: nil,
		},
		{
			name:     "invalid json",
			body:     `{"code": `,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, ParseErrorEnvelope([]byte(tt.body)))
		})
	}
}

func TestParseErrorEnvelope_FloatCode(t *testing.T) {
	t.Parallel()

	apiErr := ParseErrorEnvelope([]byte(`{"code": 429.0, "msg": "Too Many Requests"}`))
	require.NotNil(t, apiErr)
	assert.Equal(t, 429, apiErr.Code)
	assert.True(t, IsRateLimited(apiErr))
}

func TestAPIError_Helpers(t *testing.T) {
	t.Parallel()

	notFound := fmt.Errorf("getting site: %w", &APIError{Code: 404, Message: "not found"})

	assert.True(t, IsAPIError(notFound))
	assert.True(t, IsNotFound(notFound))
	assert.False(t, IsUnauthorized(notFound))
	assert.False(t, IsConflict(notFound))

	apiErr, ok := AsAPIError(notFound)
	require.True(t, ok)
	assert.Equal(t, "not found", apiErr.Error())

	statusOnly := &APIError{Message: "conflict", StatusCode: 409}
	assert.True(t, IsConflict(statusOnly))

	assert.False(t, IsAPIError(errors.New("plain")))
	assert.False(t, IsNotFound(nil))
}

func TestTypedErrors_Sentinels(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")

	tests := []struct {
		name     string
		err      error
		sentinel error
		message  string
	}{
		{
			name:     "configuration",
			err:      &ConfigurationError{Field: "token"},
			sentinel: ErrConfiguration,
			message:  "argument 'token' is required but was not present",
		},
		{
			name:     "missing argument",
			err:      &MissingArgumentError{Argument: "name"},
			sentinel: ErrMissingArgument,
			message:  "argument 'name' is required but was not present",
		},
		{
			name:     "missing argument is invalid",
			err:      &MissingArgumentError{Argument: "name"},
			sentinel: ErrInvalidArgument,
			message:  "argument 'name' is required but was not present",
		},
		{
			name:     "invalid argument",
			err:      &InvalidArgumentError{Argument: "trigger type", Value: "bogus", Allowed: []string{"a", "b"}},
			sentinel: ErrInvalidArgument,
			message:  "invalid trigger type 'bogus'. Possible values are [a,b]",
		},
		{
			name:     "malformed response",
			err:      &MalformedResponseError{StatusCode: 502, Err: cause},
			sentinel: ErrMalformedResponse,
			message:  "malformed response (status 502): connection refused",
		},
		{
			name:     "transport",
			err:      &TransportError{Method: "GET", URL: "https://api.webflow.com/info", Err: cause},
			sentinel: ErrTransport,
			message:  "GET https://api.webflow.com/info: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			wrapped := fmt.Errorf("calling: %w", tt.err)
			require.ErrorIs(t, wrapped, tt.sentinel)
			assert.Equal(t, tt.message, tt.err.Error())
		})
	}

	assert.ErrorIs(t, &TransportError{Err: cause}, cause)
	assert.NotErrorIs(t, &InvalidArgumentError{}, ErrMissingArgument)
}

func TestStatusText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Conflict", StatusText(ErrorCodeConflict))
	assert.Equal(t, "Unknown", StatusText(999))
}
