package client

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/fivetwenty-io/webflow/internal/auth"
	"github.com/fivetwenty-io/webflow/internal/constants"
	"github.com/fivetwenty-io/webflow/pkg/webflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("empty token", func(t *testing.T) {
		t.Parallel()

		client, err := New(context.Background(), &webflow.Config{})
		require.ErrorIs(t, err, webflow.ErrConfiguration)
		assert.Nil(t, client)

		var configErr *webflow.ConfigurationError
		require.ErrorAs(t, err, &configErr)
		assert.Equal(t, "token", configErr.Field)
		assert.Equal(t, "argument 'token' is required but was not present", err.Error())
	})

	t.Run("nil config", func(t *testing.T) {
		t.Parallel()

		_, err := New(context.Background(), nil)
		require.ErrorIs(t, err, webflow.ErrConfigRequired)
	})

	t.Run("any non-empty token", func(t *testing.T) {
		t.Parallel()

		for _, token := range []string{"x", "  ", "not-a-real-token", "🔑"} {
			client, err := New(context.Background(), &webflow.Config{Token: token})
			require.NoError(t, err, token)
			assert.Equal(t, constants.DefaultBaseURL, client.BaseURL())
			assert.NotNil(t, client.Sites())
			assert.NotNil(t, client.Webhooks())
			assert.NotNil(t, client.Collections())
			assert.NotNil(t, client.Items())
			assert.NotNil(t, client.ItemIndex())
		}
	})

	t.Run("invalid cache backend", func(t *testing.T) {
		t.Parallel()

		_, err := New(context.Background(), &webflow.Config{
			Token: "x",
			Cache: &webflow.CacheConfig{Type: webflow.CacheTypeNATS},
		})
		require.ErrorIs(t, err, webflow.ErrNATSConfigRequired)
	})

	t.Run("custom token manager", func(t *testing.T) {
		t.Parallel()

		manager := auth.NewStaticTokenManager("managed")

		client, err := NewWithTokenManager(context.Background(), &webflow.Config{}, manager)
		require.NoError(t, err)
		assert.Same(t, manager, client.GetTokenManager())

		_, err = NewWithTokenManager(context.Background(), &webflow.Config{}, nil)
		require.ErrorIs(t, err, webflow.ErrConfiguration)
	})
}

func TestClient_Info(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, jsonHandler(t, http.StatusOK, `{
		"_id": "55818d58616600637b9a5786",
		"grantType": "authorization_code",
		"rateLimit": 60,
		"sites": ["s1"],
		"application": {"_id": "a1", "name": "Test App"}
	}`, func(r *http.Request, _ []byte) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/info", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "1.0.0", r.Header.Get("accept-version"))
	}))

	info, err := client.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "authorization_code", info.GrantType)
	assert.Equal(t, 60, info.RateLimit)
	assert.Equal(t, []string{"s1"}, info.Sites)
	require.NotNil(t, info.Application)
	assert.Equal(t, "Test App", info.Application.Name)
}

func TestClient_ConfigReachesTransport(t *testing.T) {
	t.Parallel()

	collector := webflow.NewMetricsCollector()
	chain := webflow.NewInterceptorChain()
	chain.AddRequestInterceptor(webflow.MetricsRequestInterceptor(collector))
	chain.AddResponseInterceptor(webflow.MetricsResponseInterceptor(collector))

	client := newTestClient(t, jsonHandler(t, http.StatusOK, `{}`, func(r *http.Request, _ []byte) {
		assert.Equal(t, "2.0.0", r.Header.Get("accept-version"))
		assert.Equal(t, "importer/1.0", r.Header.Get("User-Agent"))
	}), func(config *webflow.Config) {
		config.APIVersion = "2.0.0"
		config.UserAgent = "importer/1.0"
		config.HTTPTimeout = 5 * time.Second
		config.RequestsPerMinute = 600
		config.Interceptors = chain
	})

	_, err := client.Info(context.Background())
	require.NoError(t, err)

	metrics, ok := collector.GetMetrics("GET /info")
	require.True(t, ok)
	assert.Equal(t, int64(1), metrics.TotalRequests)
}

func TestClient_ErrorEnvelopeIsStructural(t *testing.T) {
	t.Parallel()

	// Detection relies on body shape alone. A 200 carrying {code, msg} fails
	// and a 500 without it succeeds. Both are deliberate and fragile.
	t.Run("200 with envelope", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, jsonHandler(t, http.StatusOK,
			`{"code": 409, "msg": "Conflict", "problems": ["dup"]}`, nil))

		_, err := client.Info(context.Background())
		require.Error(t, err)

		apiErr, ok := webflow.AsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, 409, apiErr.Code)
		assert.Equal(t, "Conflict\ndup", apiErr.Message)
		assert.Equal(t, http.StatusOK, apiErr.StatusCode)
	})

	t.Run("500 without envelope", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, jsonHandler(t, http.StatusInternalServerError,
			`{"_id": "x", "grantType": "y"}`, nil))

		info, err := client.Info(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "y", info.GrantType)
	})

	t.Run("invalid json", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, jsonHandler(t, http.StatusOK, `not json`, nil))

		_, err := client.Info(context.Background())
		require.ErrorIs(t, err, webflow.ErrMalformedResponse)
	})
}

func TestClient_TransportFailure(t *testing.T) {
	t.Parallel()

	client, err := New(context.Background(), &webflow.Config{
		Token:       "x",
		BaseURL:     "http://127.0.0.1:1",
		HTTPTimeout: time.Second,
	})
	require.NoError(t, err)

	_, err = client.Sites().List(context.Background())
	require.ErrorIs(t, err, webflow.ErrTransport)
	assert.False(t, webflow.IsAPIError(err))
}

func TestClient_CloseWithBackends(t *testing.T) {
	t.Parallel()

	client, err := New(context.Background(), &webflow.Config{
		Token: "x",
		Cache: &webflow.CacheConfig{Type: webflow.CacheTypeRedis, Redis: &webflow.RedisCacheConfig{Addr: "127.0.0.1:0"}},
	})
	require.NoError(t, err)
	require.NoError(t, client.Close())

	client, err = New(context.Background(), &webflow.Config{Token: "x"})
	require.NoError(t, err)
	require.NoError(t, client.Close())
}
