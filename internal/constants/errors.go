package constants

import "errors"

// Configuration errors.
var (
	ErrNoTokenConfigured = errors.New("no API token configured, use 'webflow config set-token' or WEBFLOW_TOKEN")
	ErrUnknownConfigKey  = errors.New("unknown configuration key")
)

// Validation errors.
var (
	ErrInvalidFieldFormat = errors.New("invalid field format, expected key=value")
	ErrInvalidOutput      = errors.New("invalid output format")
)
