package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/webflow/internal/constants"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Config represents the CLI configuration file.
type Config struct {
	Token             string       `json:"token,omitempty"               yaml:"token,omitempty"`
	APIVersion        string       `json:"api_version,omitempty"         yaml:"api_version,omitempty"`
	BaseURL           string       `json:"base_url,omitempty"            yaml:"base_url,omitempty"`
	Site              string       `json:"site,omitempty"                yaml:"site,omitempty"`
	Output            string       `json:"output,omitempty"              yaml:"output,omitempty"`
	RequestsPerMinute int          `json:"requests_per_minute,omitempty" yaml:"requests_per_minute,omitempty"`
	RetryMax          int          `json:"retry_max,omitempty"           yaml:"retry_max,omitempty"`
	Cache             *CacheConfig `json:"cache,omitempty"               yaml:"cache,omitempty"`
}

// CacheConfig selects the shared backend of the find-or-create item index.
type CacheConfig struct {
	Type          string `json:"type,omitempty"           yaml:"type,omitempty"`
	Namespace     string `json:"namespace,omitempty"      yaml:"namespace,omitempty"`
	NATSURL       string `json:"nats_url,omitempty"       yaml:"nats_url,omitempty"`
	NATSBucket    string `json:"nats_bucket,omitempty"    yaml:"nats_bucket,omitempty"`
	RedisAddr     string `json:"redis_addr,omitempty"     yaml:"redis_addr,omitempty"`
	RedisPassword string `json:"redis_password,omitempty" yaml:"redis_password,omitempty"`
	RedisDB       int    `json:"redis_db,omitempty"       yaml:"redis_db,omitempty"`
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show and change the Webflow CLI configuration stored in ~/.webflow/config.yml",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigSetTokenCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the current CLI configuration with the token masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			config.Token = maskToken(config.Token)

			return render(cmd.OutOrStdout(), config, func(table *tablewriter.Table) error {
				table.Header("Property", "Value")

				_ = table.Append("Token", config.Token)
				_ = table.Append("API Version", orNotAvailable(config.APIVersion))
				_ = table.Append("Base URL", orNotAvailable(config.BaseURL))
				_ = table.Append("Site", orNotAvailable(config.Site))
				_ = table.Append("Output", orNotAvailable(config.Output))
				_ = table.Append("Requests/Minute", strconv.Itoa(config.RequestsPerMinute))
				_ = table.Append("Retry Max", strconv.Itoa(config.RetryMax))

				if config.Cache != nil {
					_ = table.Append("Cache", orNotAvailable(config.Cache.Type))
					_ = table.Append("Cache Namespace", orNotAvailable(config.Cache.Namespace))
				}

				return nil
			})
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long: "Set a configuration value. Keys: api_version, base_url, site, output, " +
			"requests_per_minute, retry_max, cache.type, cache.namespace, cache.nats_url, " +
			"cache.nats_bucket, cache.redis_addr, cache.redis_password, cache.redis_db",
		Args: cobra.ExactArgs(2), //nolint:mnd
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := readConfigFile()
			if err != nil {
				return err
			}

			err = setConfigValue(config, args[0], args[1])
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", args[0])

			return nil
		},
	}
}

func newConfigSetTokenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-token [TOKEN]",
		Short: "Store the API token",
		Long:  "Store the API token in the config file. Without an argument the token is read from the terminal without echo, or from stdin when piped.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var token string

			if len(args) == 1 {
				token = args[0]
			} else {
				read, err := readToken(cmd.InOrStdin(), cmd.ErrOrStderr())
				if err != nil {
					return err
				}

				token = read
			}

			token = strings.TrimSpace(token)
			if token == "" {
				return constants.ErrNoTokenConfigured
			}

			config, err := readConfigFile()
			if err != nil {
				return err
			}

			config.Token = token

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Token %s saved\n", maskToken(token))

			return nil
		},
	}
}

// readToken prompts on a terminal, otherwise reads one line from in.
func readToken(in io.Reader, prompt io.Writer) (string, error) {
	if file, ok := in.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		_, _ = fmt.Fprint(prompt, "API token: ")

		tokenBytes, err := term.ReadPassword(int(file.Fd()))

		_, _ = fmt.Fprintln(prompt)

		if err != nil {
			return "", fmt.Errorf("failed to read token: %w", err)
		}

		return string(tokenBytes), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read token: %w", err)
	}

	return line, nil
}

// loadConfig reads the effective configuration from viper.
func loadConfig() *Config {
	config := &Config{
		Token:             viper.GetString("token"),
		APIVersion:        viper.GetString("api_version"),
		BaseURL:           viper.GetString("base_url"),
		Site:              viper.GetString("site"),
		Output:            viper.GetString("output"),
		RequestsPerMinute: viper.GetInt("requests_per_minute"),
		RetryMax:          viper.GetInt("retry_max"),
	}

	if viper.IsSet("cache.type") {
		config.Cache = &CacheConfig{
			Type:          viper.GetString("cache.type"),
			Namespace:     viper.GetString("cache.namespace"),
			NATSURL:       viper.GetString("cache.nats_url"),
			NATSBucket:    viper.GetString("cache.nats_bucket"),
			RedisAddr:     viper.GetString("cache.redis_addr"),
			RedisPassword: viper.GetString("cache.redis_password"),
			RedisDB:       viper.GetInt("cache.redis_db"),
		}
	}

	return config
}

// setConfigValue applies one KEY VALUE pair to config.
func setConfigValue(config *Config, key, value string) error {
	if strings.HasPrefix(key, "cache.") && config.Cache == nil {
		config.Cache = &CacheConfig{}
	}

	switch key {
	case "api_version":
		config.APIVersion = value
	case "base_url":
		config.BaseURL = value
	case "site":
		config.Site = value
	case "output":
		switch value {
		case constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
			config.Output = value
		default:
			return fmt.Errorf("%w: %s", constants.ErrInvalidOutput, value)
		}
	case "requests_per_minute":
		return setInt(&config.RequestsPerMinute, key, value)
	case "retry_max":
		return setInt(&config.RetryMax, key, value)
	case "cache.type":
		config.Cache.Type = value
	case "cache.namespace":
		config.Cache.Namespace = value
	case "cache.nats_url":
		config.Cache.NATSURL = value
	case "cache.nats_bucket":
		config.Cache.NATSBucket = value
	case "cache.redis_addr":
		config.Cache.RedisAddr = value
	case "cache.redis_password":
		config.Cache.RedisPassword = value
	case "cache.redis_db":
		return setInt(&config.Cache.RedisDB, key, value)
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	return nil
}

func setInt(target *int, key, value string) error {
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}

	*target = parsed

	return nil
}

// configFilePath returns the file viper loaded, or ~/.webflow/config.yml.
func configFilePath() (string, error) {
	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		return configFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ".webflow", "config.yml"), nil
}

// readConfigFile loads only what the config file holds, so flags and
// environment variables are never written back. A missing file is empty.
func readConfigFile() (*Config, error) {
	configFile, err := configFilePath()
	if err != nil {
		return nil, err
	}

	// configFile comes from --config or the user's home directory.
	// #nosec G304
	data, err := os.ReadFile(configFile)
	if errors.Is(err, os.ErrNotExist) {
		return &Config{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{}

	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// saveConfigStruct writes config as YAML with owner-only permissions.
func saveConfigStruct(config *Config) error {
	configFile, err := configFilePath()
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	viper.SetConfigFile(configFile)

	err = viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("failed to reload config: %w", err)
	}

	return nil
}
