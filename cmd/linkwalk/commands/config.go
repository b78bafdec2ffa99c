package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fivetwenty-io/linkwalk/internal/constants"
	"github.com/fivetwenty-io/linkwalk/pkg/linkwalk"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the CLI configuration.
type Config struct {
	Root           string            `json:"root,omitempty"            yaml:"root,omitempty"`
	MediaType      string            `json:"media_type,omitempty"      yaml:"media_type,omitempty"`
	Output         string            `json:"output,omitempty"          yaml:"output,omitempty"`
	Headers        map[string]string `json:"headers,omitempty"         yaml:"headers,omitempty"`
	UserAgent      string            `json:"user_agent,omitempty"      yaml:"user_agent,omitempty"`
	Timeout        string            `json:"timeout,omitempty"         yaml:"timeout,omitempty"`
	RetryMax       int               `json:"retry_max,omitempty"       yaml:"retry_max,omitempty"`
	RateLimit      float64           `json:"rate_limit,omitempty"      yaml:"rate_limit,omitempty"`
	EmbeddedPolicy string            `json:"embedded_policy,omitempty" yaml:"embedded_policy,omitempty"`
	EventsURL      string            `json:"events_url,omitempty"      yaml:"events_url,omitempty"`
	EventsSubject  string            `json:"events_subject,omitempty"  yaml:"events_subject,omitempty"`
}

// configSetters validates and applies a single "config set" value.
var configSetters = map[string]func(*Config, string) error{
	"root": func(c *Config, v string) error {
		c.Root = v

		return nil
	},
	"media_type": func(c *Config, v string) error {
		c.MediaType = v

		return nil
	},
	"output": func(c *Config, v string) error {
		err := validateOutput(v)
		if err != nil {
			return err
		}

		c.Output = v

		return nil
	},
	"user_agent": func(c *Config, v string) error {
		c.UserAgent = v

		return nil
	},
	"timeout": func(c *Config, v string) error {
		_, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", v, err)
		}

		c.Timeout = v

		return nil
	},
	"retry_max": func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid retry_max %q: %w", v, err)
		}

		c.RetryMax = n

		return nil
	},
	"rate_limit": func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid rate_limit %q: %w", v, err)
		}

		c.RateLimit = f

		return nil
	},
	"embedded_policy": func(c *Config, v string) error {
		_, err := linkwalk.ParseEmbeddedPolicy(v)
		if err != nil {
			return fmt.Errorf("%w: %w", constants.ErrInvalidEmbeddedValue, err)
		}

		c.EmbeddedPolicy = v

		return nil
	},
	"events_url": func(c *Config, v string) error {
		c.EventsURL = v

		return nil
	},
	"events_subject": func(c *Config, v string) error {
		c.EventsSubject = v

		return nil
	},
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage linkwalk CLI configuration stored in $HOME/.linkwalk/config.yml",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective CLI configuration from file, environment and flags",
		RunE: func(cmd *cobra.Command, args []string) error {
			return renderConfig(cmd.OutOrStdout(), loadConfig(), viper.GetString("output"))
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration value. Keys: " + configKeys(),
		Args:  cobra.ExactArgs(constants.KeyValueSplitParts),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			config := loadConfig()

			err := setConfigValue(config, key, value)
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			return outputConfigUpdateResult(cmd.OutOrStdout(), "Set", key, value)
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove a configuration value. Keys: " + configKeys(),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			if _, ok := configSetters[key]; !ok {
				return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
			}

			config := loadConfig()
			unsetConfigValue(config, key)

			err := saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			return outputConfigUpdateResult(cmd.OutOrStdout(), "Unset", key, "")
		},
	}
}

// loadConfig builds the effective configuration from viper.
func loadConfig() *Config {
	return &Config{
		Root:           viper.GetString("root"),
		MediaType:      viper.GetString("media_type"),
		Output:         viper.GetString("output"),
		Headers:        viper.GetStringMapString("headers"),
		UserAgent:      viper.GetString("user_agent"),
		Timeout:        viper.GetString("timeout"),
		RetryMax:       viper.GetInt("retry_max"),
		RateLimit:      viper.GetFloat64("rate_limit"),
		EmbeddedPolicy: viper.GetString("embedded_policy"),
		EventsURL:      viper.GetString("events_url"),
		EventsSubject:  viper.GetString("events_subject"),
	}
}

func setConfigValue(config *Config, key, value string) error {
	setter, ok := configSetters[key]
	if !ok {
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	return setter(config, value)
}

func unsetConfigValue(config *Config, key string) {
	switch key {
	case "root":
		config.Root = ""
	case "media_type":
		config.MediaType = ""
	case "output":
		config.Output = ""
	case "user_agent":
		config.UserAgent = ""
	case "timeout":
		config.Timeout = ""
	case "retry_max":
		config.RetryMax = 0
	case "rate_limit":
		config.RateLimit = 0
	case "embedded_policy":
		config.EmbeddedPolicy = ""
	case "events_url":
		config.EventsURL = ""
	case "events_subject":
		config.EventsSubject = ""
	}
}

func configKeys() string {
	keys := make([]string, 0, len(configSetters))
	for key := range configSetters {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return strings.Join(keys, ", ")
}

func configFilePath() (string, error) {
	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		return configFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".linkwalk")

	err = os.MkdirAll(configDir, constants.ConfigDirPerm)
	if err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.yml"), nil
}

func saveConfigStruct(config *Config) error {
	configFile, err := configFilePath()
	if err != nil {
		return err
	}

	return writeConfigFile(configFile, config)
}

func writeConfigFile(path string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(path, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func renderConfig(out io.Writer, config *Config, format string) error {
	switch format {
	case constants.FormatJSON:
		return encodeJSON(out, config)
	case constants.FormatYAML:
		return encodeYAML(out, config)
	}

	table := tablewriter.NewWriter(out)
	table.Header("Property", "Value")

	_ = table.Append([]string{"Root", formatConfigValue(config.Root)})
	_ = table.Append([]string{"Media Type", formatConfigValue(config.MediaType)})
	_ = table.Append([]string{"Output", formatConfigValue(config.Output)})
	_ = table.Append([]string{"User Agent", formatConfigValue(config.UserAgent)})
	_ = table.Append([]string{"Timeout", formatConfigValue(config.Timeout)})
	_ = table.Append([]string{"Retry Max", strconv.Itoa(config.RetryMax)})
	_ = table.Append([]string{"Rate Limit", strconv.FormatFloat(config.RateLimit, 'f', -1, 64)})
	_ = table.Append([]string{"Embedded Policy", formatConfigValue(config.EmbeddedPolicy)})
	_ = table.Append([]string{"Events URL", formatConfigValue(config.EventsURL)})
	_ = table.Append([]string{"Events Subject", formatConfigValue(config.EventsSubject)})

	names := make([]string, 0, len(config.Headers))
	for name := range config.Headers {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		_ = table.Append([]string{"Header " + name, config.Headers[name]})
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func formatConfigValue(value string) string {
	if value == "" {
		return constants.NotAvailable
	}

	return value
}

func outputConfigUpdateResult(out io.Writer, action, key, value string) error {
	result := map[string]string{
		"action": action,
		"key":    key,
	}

	if value != "" {
		result["value"] = value
	}

	switch viper.GetString("output") {
	case constants.FormatJSON:
		return encodeJSON(out, result)
	case constants.FormatYAML:
		return encodeYAML(out, result)
	}

	table := tablewriter.NewWriter(out)
	table.Header("Property", "Value")
	_ = table.Append([]string{"Action", action})
	_ = table.Append([]string{"Key", key})

	if value != "" {
		_ = table.Append([]string{"Value", value})
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func encodeJSON(out io.Writer, v interface{}) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")

	err := encoder.Encode(v)
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

func encodeYAML(out io.Writer, v interface{}) error {
	encoder := yaml.NewEncoder(out)

	err := encoder.Encode(v)
	if err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	err = encoder.Close()
	if err != nil {
		return fmt.Errorf("failed to flush YAML: %w", err)
	}

	return nil
}
