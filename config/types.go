package config

import (
	"fmt"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/grovetools/linkpicker/internal/persist"
)

// CurrentVersion is written by SetDefaults when the file names none.
const CurrentVersion = "1.0"

// Config is the parsed linkpicker.yml (or .toml).
type Config struct {
	Version      string             `yaml:"version" toml:"version" json:"version" jsonschema:"required,description=Configuration version (e.g. '1.0')"`
	Targets      []TargetConfig     `yaml:"targets,omitempty" toml:"targets,omitempty" json:"targets,omitempty" jsonschema:"description=Catalog of applications that can open a URL"`
	Daemon       DaemonConfig       `yaml:"daemon,omitempty" toml:"daemon,omitempty" json:"daemon" jsonschema:"description=Daemon timing and socket settings"`
	Persistence  PersistenceConfig  `yaml:"persistence,omitempty" toml:"persistence,omitempty" json:"persistence" jsonschema:"description=Where favourite, hidden targets and hotkeys are stored"`
	Registration RegistrationConfig `yaml:"registration,omitempty" toml:"registration,omitempty" json:"registration" jsonschema:"description=Commands that make linkpicker the default URL handler"`

	// Extensions captures all other top-level keys (logging, tui, ...).
	Extensions map[string]interface{} `yaml:",inline" toml:"-" json:"-" jsonschema:"-"`
}

// TargetConfig describes one catalog entry.
type TargetConfig struct {
	ID            string `yaml:"id" toml:"id" json:"id" jsonschema:"required,pattern=^[a-z0-9][a-z0-9._-]*$,description=Stable identifier used for hotkeys and favourites"`
	Name          string `yaml:"name,omitempty" toml:"name,omitempty" json:"name,omitempty" jsonschema:"description=Display name"`
	Command       string `yaml:"command" toml:"command" json:"command" jsonschema:"required,minLength=1,description=Launch template; {URL} is replaced in each argument"`
	AppID         string `yaml:"app_id,omitempty" toml:"app_id,omitempty" json:"app_id,omitempty" jsonschema:"description=Application that must be installed; empty means always available"`
	Probe         string `yaml:"probe,omitempty" toml:"probe,omitempty" json:"probe,omitempty" jsonschema:"description=Binary name or absolute path checked by the scanner (default: first word of command)"`
	DefaultHotkey string `yaml:"default_hotkey,omitempty" toml:"default_hotkey,omitempty" json:"default_hotkey,omitempty" jsonschema:"maxLength=1,description=Key seeded for this target when it has none"`
}

// DaemonConfig holds daemon settings.
type DaemonConfig struct {
	Socket        string   `yaml:"socket,omitempty" toml:"socket,omitempty" json:"socket,omitempty" jsonschema:"description=Unix socket path (default: runtime dir)"`
	FlushDebounce Duration `yaml:"flush_debounce,omitempty" toml:"flush_debounce,omitempty" json:"flush_debounce,omitempty" jsonschema:"description=Delay after a persisted slice changes before it is written"`
	FlushInterval Duration `yaml:"flush_interval,omitempty" toml:"flush_interval,omitempty" json:"flush_interval,omitempty" jsonschema:"description=Period of an extra unconditional save (default: off)"`
	ScanTimeout   Duration `yaml:"scan_timeout,omitempty" toml:"scan_timeout,omitempty" json:"scan_timeout,omitempty" jsonschema:"description=Upper bound for one application scan"`
	LaunchTimeout Duration `yaml:"launch_timeout,omitempty" toml:"launch_timeout,omitempty" json:"launch_timeout,omitempty" jsonschema:"description=How long a launched process is watched for an early failure"`
}

// PersistenceConfig selects the storage backend for the persisted slices.
type PersistenceConfig persist.Config

// Adapter returns the value persist.Open expects.
func (p PersistenceConfig) Adapter() persist.Config { return persist.Config(p) }

// RegistrationConfig holds the default-handler commands.
type RegistrationConfig struct {
	Command string `yaml:"command,omitempty" toml:"command,omitempty" json:"command,omitempty" jsonschema:"description=Run on first start to register linkpicker as the default URL handler"`
	Check   string `yaml:"check,omitempty" toml:"check,omitempty" json:"check,omitempty" jsonschema:"description=Prints yes or no depending on whether linkpicker is the default handler"`
}

// Duration is a time.Duration written as a Go duration string ("250ms").
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. go-toml uses it.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.UnmarshalText([]byte(node.Value))
}

// JSONSchema describes Duration as a string for the reflector.
func (Duration) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "string",
		Pattern:     `^([0-9]+(\.[0-9]+)?(ns|us|µs|ms|s|m|h))+$`,
		Description: "Go duration, e.g. 250ms or 5s",
	}
}

// UnmarshalExtension decodes one extension section into target, which must
// be a pointer. A missing section leaves target untouched.
//
//	var tuiCfg tui.Config
//	err := cfg.UnmarshalExtension("tui", &tuiCfg)
func (c *Config) UnmarshalExtension(key string, target interface{}) error {
	extensionConfig, ok := c.Extensions[key]
	if !ok {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "yaml",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(extensionConfig); err != nil {
		return fmt.Errorf("failed to decode extension config for '%s': %w", key, err)
	}
	return nil
}
