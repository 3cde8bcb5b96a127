package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fivetwenty-io/webflow/internal/constants"
	"github.com/fivetwenty-io/webflow/pkg/webflow"
	"github.com/fivetwenty-io/webflow/pkg/wfclient"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const defaultJSONIndent = 2

// Common static errors used throughout the commands package.
var (
	ErrSiteRequired     = errors.New("site ID is required (use --site or set site in config)")
	ErrInvalidFieldJSON = errors.New("--data must be a JSON object")
	ErrNoFieldsGiven    = errors.New("no fields given, use --field or --data")
)

// clientFactory builds the API client used by commands. Tests replace it.
var clientFactory = newClientFromViper

// newClientFromViper builds a client from flags, environment, and the config file.
func newClientFromViper(ctx context.Context) (webflow.Client, error) {
	token := viper.GetString("token")
	if token == "" {
		return nil, constants.ErrNoTokenConfigured
	}

	config := &webflow.Config{
		Token:             token,
		APIVersion:        viper.GetString("api_version"),
		BaseURL:           viper.GetString("base_url"),
		RequestsPerMinute: viper.GetInt("requests_per_minute"),
		RetryMax:          viper.GetInt("retry_max"),
		HTTPTimeout:       viper.GetDuration("timeout"),
	}

	if viper.GetBool("verbose") {
		logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
		config.Logger = webflow.NewZerologLogger(logger)
		config.Debug = true
	}

	cacheConfig, err := cacheConfigFromViper()
	if err != nil {
		return nil, err
	}

	config.Cache = cacheConfig

	client, err := wfclient.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

// cacheConfigFromViper maps the cache.* settings onto a backend config.
// An unset type keeps the item index in memory.
func cacheConfigFromViper() (*webflow.CacheConfig, error) {
	cacheType := webflow.CacheType(viper.GetString("cache.type"))
	namespace := viper.GetString("cache.namespace")

	switch cacheType {
	case "", webflow.CacheTypeNone:
		return nil, nil
	case webflow.CacheTypeMemory:
		return &webflow.CacheConfig{Type: cacheType, Namespace: namespace}, nil
	case webflow.CacheTypeNATS:
		return &webflow.CacheConfig{
			Type:      cacheType,
			Namespace: namespace,
			NATS: &webflow.NATSKVConfig{
				URL:    viper.GetString("cache.nats_url"),
				Bucket: viper.GetString("cache.nats_bucket"),
			},
		}, nil
	case webflow.CacheTypeRedis:
		return &webflow.CacheConfig{
			Type:      cacheType,
			Namespace: namespace,
			Redis: &webflow.RedisCacheConfig{
				Addr:     viper.GetString("cache.redis_addr"),
				Password: viper.GetString("cache.redis_password"),
				DB:       viper.GetInt("cache.redis_db"),
			},
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s", webflow.ErrUnsupportedCacheType, cacheType)
	}
}

// withClient runs fn with a freshly built client and closes it afterwards.
func withClient(cmd *cobra.Command, fn func(ctx context.Context, client webflow.Client) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	client, err := clientFactory(ctx)
	if err != nil {
		return err
	}

	defer func() { _ = wfclient.Close(client) }()

	return fn(ctx, client)
}

// outputFormat returns the validated --output value.
func outputFormat() (string, error) {
	output := strings.ToLower(viper.GetString("output"))

	switch output {
	case "", constants.FormatTable:
		return constants.FormatTable, nil
	case constants.FormatJSON, constants.FormatYAML:
		return output, nil
	default:
		return "", fmt.Errorf("%w: %s", constants.ErrInvalidOutput, output)
	}
}

// render writes value as JSON or YAML, or calls table for table output.
func render(w io.Writer, value any, table func(*tablewriter.Table) error) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}

	switch format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", strings.Repeat(" ", defaultJSONIndent))

		return encoder.Encode(value)
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(w)
		defer func() { _ = encoder.Close() }()

		return encoder.Encode(value)
	default:
		writer := tablewriter.NewWriter(w)

		err := table(writer)
		if err != nil {
			return err
		}

		err = writer.Render()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	}
}

// siteID resolves the --site flag, falling back to the configured site.
func siteID(cmd *cobra.Command) (string, error) {
	site, _ := cmd.Flags().GetString("site")
	if site == "" {
		site = viper.GetString("site")
	}

	if site == "" {
		return "", ErrSiteRequired
	}

	return site, nil
}

// parseFields merges --data (a JSON object) with repeated --field key=value
// pairs. Field values that parse as JSON keep their type, so count=3 is a
// number and name=Acme stays a string.
func parseFields(data string, pairs []string) (map[string]any, error) {
	fields := map[string]any{}

	if data != "" {
		err := json.Unmarshal([]byte(data), &fields)
		if err != nil || fields == nil {
			return nil, ErrInvalidFieldJSON
		}
	}

	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: %s", constants.ErrInvalidFieldFormat, pair)
		}

		var value any

		err := json.Unmarshal([]byte(raw), &value)
		if err != nil {
			value = raw
		}

		fields[key] = value
	}

	return fields, nil
}

// formatTime renders optional timestamps for tables.
func formatTime(value *time.Time) string {
	if value == nil || value.IsZero() {
		return constants.NotAvailable
	}

	return value.Format(time.RFC3339)
}

// orNotAvailable substitutes N/A for empty table cells.
func orNotAvailable(value string) string {
	if value == "" {
		return constants.NotAvailable
	}

	return value
}

// maskToken keeps the last few characters of a token for display.
func maskToken(token string) string {
	if token == "" {
		return constants.NotAvailable
	}

	if len(token) <= constants.StringTruncationLimit {
		return constants.MaskedSecret
	}

	return constants.MaskedSecret + token[len(token)-constants.StringTruncationLimit:]
}

// describeError adds the upstream status name to API errors for the CLI.
func describeError(err error) error {
	apiErr, ok := webflow.AsAPIError(err)
	if !ok {
		return err
	}

	code := apiErr.Code
	if code == 0 {
		code = apiErr.StatusCode
	}

	return fmt.Errorf("%s (%d): %w", webflow.StatusText(code), code, err)
}
