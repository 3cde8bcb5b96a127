package constants

import "time"

// API endpoint and protocol defaults.
const (
	// DefaultBaseURL is the Webflow Data API endpoint.
	DefaultBaseURL = "https://api.webflow.com"

	// DefaultAPIVersion is sent as the accept-version header when none is configured.
	DefaultAPIVersion = "1.0.0"

	// DefaultUserAgent identifies the SDK to the API.
	DefaultUserAgent = "webflow-go (https://github.com/fivetwenty-io/webflow)"

	// HeaderAcceptVersion selects the API version on every request.
	HeaderAcceptVersion = "accept-version"

	// ContentTypeJSON is used for both Accept and Content-Type.
	ContentTypeJSON = "application/json"
)

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second
)

// Retry limits. Retries are disabled unless RetryMax is configured.
const (
	// DefaultRetryWaitMin is the minimum wait between opt-in retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait between opt-in retries.
	DefaultRetryWaitMax = 30 * time.Second
)

// Pagination defaults for collection item listings.
const (
	// DefaultItemsOffset is the offset used when none is given.
	DefaultItemsOffset = 0

	// DefaultItemsLimit is the page size used when none is given.
	DefaultItemsLimit = 100
)

// Rate limiting.
const (
	// DefaultRequestsPerMinute is the documented Webflow v1 quota per token.
	DefaultRequestsPerMinute = 60
)

// Cache defaults.
const (
	// CollectionItemsKeyFormat builds the cache key for every item of a collection.
	CollectionItemsKeyFormat = "collection-%s-items"

	// DefaultCacheNamespace prefixes keys written to shared cache backends.
	DefaultCacheNamespace = "webflow"

	// DefaultCacheSize bounds the in-memory backend.
	DefaultCacheSize = 1000

	// DefaultNATSBucket is the JetStream KV bucket used by the NATS backend.
	DefaultNATSBucket = "webflow_items"
)

// Concurrency limits.
const (
	// DefaultConcurrencyLimit bounds concurrent collection fetches in the CLI.
	DefaultConcurrencyLimit = 3
)

// Format constants.
const (
	// FormatJSON is JSON output format.
	FormatJSON = "json"

	// FormatYAML is YAML output format.
	FormatYAML = "yaml"

	// FormatTable is table output format.
	FormatTable = "table"
)

// Display constants.
const (
	// NotAvailable is shown for missing values.
	NotAvailable = "N/A"

	// MaskedSecret replaces tokens in output.
	MaskedSecret = "***"

	// StringTruncationLimit is the number of token characters kept when masking.
	StringTruncationLimit = 4
)
