// Package config loads linkpicker.yml: the target catalog, daemon timings,
// persistence backend and default-handler registration.
package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/grovetools/linkpicker/errors"
	"github.com/grovetools/linkpicker/pkg/paths"
)

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// Format is the syntax of a configuration file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// configNames are searched in order.
var configNames = []string{
	"linkpicker.yml",
	"linkpicker.yaml",
	"linkpicker.toml",
}

// Load reads and parses a configuration file. The format follows the file
// extension.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read config file").
			WithDetail("path", path)
	}

	cfg, err := Parse(data, FormatOf(path))
	if err != nil {
		if le, ok := err.(*errors.LinkError); ok {
			return nil, le.WithDetail("path", path)
		}
		return nil, err
	}
	return cfg, nil
}

// LoadDefault loads the file found in the config directory, or returns the
// defaults when there is none.
func LoadDefault() (*Config, error) {
	cfg, _, err := Resolve("", nil)
	return cfg, err
}

// Resolve loads explicit when it is set, otherwise searches the config
// directory. It returns the path that was loaded, empty for built-in
// defaults.
func Resolve(explicit string, logger *logrus.Entry) (*Config, string, error) {
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		logger = logrus.NewEntry(l)
	}

	path := explicit
	if path == "" {
		found, err := FindConfigFile(paths.ConfigDir())
		if err != nil {
			if errors.Is(err, errors.ErrCodeConfigNotFound) {
				logger.Debug("No configuration file, using defaults")
				cfg, err := LoadFromBytes(nil)
				return cfg, "", err
			}
			return nil, "", err
		}
		path = found
	}

	logger.WithField("path", path).Debug("Loading configuration")
	cfg, err := Load(path)
	if err != nil {
		return nil, "", err
	}

	if logger.Logger.IsLevelEnabled(logrus.DebugLevel) {
		if out, err := yaml.Marshal(cfg); err == nil {
			logger.Debugf("Effective configuration:\n%s", string(out))
		}
	}
	return cfg, path, nil
}

// LoadFromBytes parses YAML configuration.
func LoadFromBytes(data []byte) (*Config, error) {
	return Parse(data, FormatYAML)
}

// Parse expands ${VAR} references, decodes data, applies defaults and
// validates the result.
func Parse(data []byte, format Format) (*Config, error) {
	expanded := []byte(expandEnvVars(string(data)))

	var cfg Config
	switch format {
	case FormatTOML:
		if err := decodeTOML(expanded, &cfg); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse TOML configuration")
		}
	default:
		if err := yaml.Unmarshal(expanded, &cfg); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse YAML configuration")
		}
	}

	cfg.SetDefaults()

	validator, err := NewSchemaValidator()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to create validator")
	}
	if err := validator.Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigValidation, "schema validation failed")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// decodeTOML fills cfg from TOML. Tables that are not core sections become
// extensions, as the inline map does for YAML.
func decodeTOML(data []byte, cfg *Config) error {
	if err := toml.Unmarshal(data, cfg); err != nil {
		return err
	}
	var raw map[string]interface{}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key, value := range raw {
		switch key {
		case "version", "targets", "daemon", "persistence", "registration":
			continue
		}
		if cfg.Extensions == nil {
			cfg.Extensions = make(map[string]interface{})
		}
		cfg.Extensions[key] = value
	}
	return nil
}

// FormatOf picks the format from a file extension.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}

// FindConfigFile returns the first configuration file in dir.
func FindConfigFile(dir string) (string, error) {
	for _, name := range configNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", errors.ConfigNotFound(dir).WithDetail("searchPath", dir)
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment values.
func expandEnvVars(content string) string {
	return envVarRegex.ReplaceAllStringFunc(content, func(match string) string {
		varName := envVarRegex.FindStringSubmatch(match)[1]

		parts := strings.SplitN(varName, ":-", 2)
		varName = parts[0]
		defaultValue := ""
		if len(parts) > 1 {
			defaultValue = parts[1]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}
		return defaultValue
	})
}
