package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"

	"github.com/fivetwenty-io/webflow/internal/constants"
	"github.com/fivetwenty-io/webflow/pkg/webflow"
	"github.com/fivetwenty-io/webflow/pkg/wfclient"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetViper isolates a test from global viper state. Tests that call it
// must not run in parallel.
func resetViper(t *testing.T) {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)
}

// requestLog records "METHOD uri" for every request a test server sees.
type requestLog struct {
	mu      sync.Mutex
	entries []string
}

func (l *requestLog) add(entry string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, entry)
}

func (l *requestLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return slices.Clone(l.entries)
}

// useServer points clientFactory at a test server for the rest of the test.
func useServer(t *testing.T, handler http.Handler) *requestLog {
	t.Helper()

	requests := &requestLog{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.add(r.Method + " " + r.URL.RequestURI())
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)

	previous := clientFactory
	clientFactory = func(ctx context.Context) (webflow.Client, error) {
		return wfclient.New(ctx, &webflow.Config{Token: "test-token", BaseURL: server.URL})
	}

	t.Cleanup(func() { clientFactory = previous })

	return requests
}

// execute runs cmd with args and returns everything it printed.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if args == nil {
		args = []string{}
	}

	cmd.SetArgs(args)
	cmd.SilenceUsage = true

	err := cmd.Execute()

	return out.String(), err
}

// routes serves fixed JSON bodies by request path.
func routes(t *testing.T, bodies map[string]string) http.Handler {
	t.Helper()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := bodies[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"code": 404, "msg": "Requested resource not found", "name": "NotFound"}`)

			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	})
}

func decodeJSON[T any](t *testing.T, output string) T {
	t.Helper()

	var value T
	require.NoError(t, json.Unmarshal([]byte(output), &value), output)

	return value
}

func TestParseFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		data     string
		pairs    []string
		expected map[string]any
		err      error
	}{
		{name: "nothing", expected: map[string]any{}},
		{name: "plain string", pairs: []string{"name=Acme"}, expected: map[string]any{"name": "Acme"}},
		{name: "typed values", pairs: []string{"count=3", "_draft=true", "tags=[\"a\"]"}, expected: map[string]any{"count": 3.0, "_draft": true, "tags": []any{"a"}}},
		{name: "value with equals", pairs: []string{"query=a=b"}, expected: map[string]any{"query": "a=b"}},
		{name: "empty value", pairs: []string{"slug="}, expected: map[string]any{"slug": ""}},
		{name: "data then field", data: `{"name": "Acme", "slug": "acme"}`, pairs: []string{"name=Beta"}, expected: map[string]any{"name": "Beta", "slug": "acme"}},
		{name: "missing equals", pairs: []string{"name"}, err: constants.ErrInvalidFieldFormat},
		{name: "missing key", pairs: []string{"=Acme"}, err: constants.ErrInvalidFieldFormat},
		{name: "data not an object", data: `["Acme"]`, err: ErrInvalidFieldJSON},
		{name: "data null", data: `null`, err: ErrInvalidFieldJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fields, err := parseFields(tt.data, tt.pairs)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, fields)
		})
	}
}

func TestMaskToken(t *testing.T) {
	t.Parallel()

	assert.Equal(t, constants.NotAvailable, maskToken(""))
	assert.Equal(t, "***", maskToken("abcd"))
	assert.Equal(t, "***6789", maskToken("0123456789"))
}

func TestDescribeError(t *testing.T) {
	t.Parallel()

	apiErr := &webflow.APIError{StatusCode: 429, Code: 429, Message: "Rate limit hit"}

	err := describeError(apiErr)
	assert.Equal(t, "Too Many Requests (429): "+apiErr.Error(), err.Error())
	assert.True(t, webflow.IsRateLimited(err))

	plain := errors.New("boom")
	assert.Equal(t, plain, describeError(plain))
}

func TestOutputFormat(t *testing.T) {
	resetViper(t)

	for _, tt := range []struct {
		value    string
		expected string
	}{
		{"", constants.FormatTable},
		{"table", constants.FormatTable},
		{"JSON", constants.FormatJSON},
		{"yaml", constants.FormatYAML},
	} {
		viper.Set("output", tt.value)

		format, err := outputFormat()
		require.NoError(t, err)
		assert.Equal(t, tt.expected, format)
	}

	viper.Set("output", "xml")

	_, err := outputFormat()
	require.ErrorIs(t, err, constants.ErrInvalidOutput)
}

func TestCacheConfigFromViper(t *testing.T) {
	resetViper(t)

	config, err := cacheConfigFromViper()
	require.NoError(t, err)
	assert.Nil(t, config)

	viper.Set("cache.type", "redis")
	viper.Set("cache.namespace", "team")
	viper.Set("cache.redis_addr", "localhost:6379")
	viper.Set("cache.redis_db", 2)

	config, err = cacheConfigFromViper()
	require.NoError(t, err)
	assert.Equal(t, webflow.CacheTypeRedis, config.Type)
	assert.Equal(t, "team", config.Namespace)
	assert.Equal(t, "localhost:6379", config.Redis.Addr)
	assert.Equal(t, 2, config.Redis.DB)

	viper.Set("cache.type", "nats")
	viper.Set("cache.nats_url", "nats://localhost:4222")

	config, err = cacheConfigFromViper()
	require.NoError(t, err)
	assert.Equal(t, "nats://localhost:4222", config.NATS.URL)

	viper.Set("cache.type", "memcached")

	_, err = cacheConfigFromViper()
	require.ErrorIs(t, err, webflow.ErrUnsupportedCacheType)
}

func TestNewClientFromViper(t *testing.T) {
	resetViper(t)

	_, err := newClientFromViper(context.Background())
	require.ErrorIs(t, err, constants.ErrNoTokenConfigured)

	viper.Set("token", "test-token")
	viper.Set("base_url", "api.example.com/")

	client, err := newClientFromViper(context.Background())
	require.NoError(t, err)
	require.NotNil(t, client)

	baseURL, ok := client.(interface{ BaseURL() string })
	require.True(t, ok)
	assert.Equal(t, "https://api.example.com", baseURL.BaseURL())
	require.NoError(t, wfclient.Close(client))
}
