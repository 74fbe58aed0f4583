package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/aretw0/sparkbridge/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Default key names looked up in the ConfigSource.
const (
	DefaultIdentityKey = "SPARK_USERNAME"
	DefaultSecretKey   = "SPARK_PASSWORD"
	DefaultEndpointKey = "SPARK_URL"
)

// ErrInvalidSettings is returned when settings fail validation.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings describe how a host drives the remote session.
// They are supplied before first use and do not change during a session.
type Settings struct {
	// ClientName identifies the host in the registration directive.
	ClientName string `yaml:"client_name" mapstructure:"client_name"`

	// SessionLanguage is the default language of the remote session (python, scala, r).
	SessionLanguage string `yaml:"session_language" mapstructure:"session_language"`

	// Keys are the names looked up in the ConfigSource.
	Keys domain.ConfigKeys `yaml:"keys" mapstructure:"keys"`

	// Extension is the magics extension loaded during bootstrap.
	Extension string `yaml:"extension" mapstructure:"extension"`

	// ExecuteLabel prefixes the fatal message when user code fails.
	ExecuteLabel string `yaml:"execute_label" mapstructure:"execute_label"`

	// SubLanguages are extra tags routed with "-c <tag>" (sql and hive are always known).
	SubLanguages []string `yaml:"sub_languages" mapstructure:"sub_languages"`
}

// DefaultSettings returns the settings used when no file is given.
func DefaultSettings() Settings {
	return Settings{
		ClientName:      "SparkBridge",
		SessionLanguage: "python",
		Keys: domain.ConfigKeys{
			Identity: DefaultIdentityKey,
			Secret:   DefaultSecretKey,
			Endpoint: DefaultEndpointKey,
		},
		Extension:    "remotespark",
		ExecuteLabel: "Failed to execute code on the Spark session.",
	}
}

// LoadSettings reads a settings file (YAML, JSON or TOML) on top of DefaultSettings.
// A missing file yields the defaults.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return settings, fmt.Errorf("failed to read settings: %w", err)
	}

	raw := make(map[string]any)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &raw); err != nil {
			return settings, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	default:
		// YAML is a superset of JSON
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return settings, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	if err := settings.Apply(raw); err != nil {
		return settings, err
	}
	return settings, settings.Validate()
}

// Apply decodes raw values (e.g. parsed file content or flag overrides) into s.
// Keys absent from raw keep their current value.
func (s *Settings) Apply(raw map[string]any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           s,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	return nil
}

// Validate checks the fields that end up inside space-separated directives.
func (s Settings) Validate() error {
	if err := token("client_name", s.ClientName); err != nil {
		return err
	}
	if err := token("session_language", s.SessionLanguage); err != nil {
		return err
	}
	if err := token("extension", s.Extension); err != nil {
		return err
	}
	for name, key := range map[string]string{
		"keys.identity": s.Keys.Identity,
		"keys.secret":   s.Keys.Secret,
		"keys.endpoint": s.Keys.Endpoint,
	} {
		if key == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidSettings, name)
		}
	}
	return nil
}

func token(name, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidSettings, name)
	}
	if strings.ContainsAny(value, " \t\r\n") {
		return fmt.Errorf("%w: %s must not contain whitespace", ErrInvalidSettings, name)
	}
	return nil
}
