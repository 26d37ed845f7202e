package logging

// Format presets.
const (
	PresetDefault = "default"
	PresetSimple  = "simple"
	PresetJSON    = "json"
)

// Config is the logging section of linkpicker.yml.
//
//	logging:
//	  level: debug
//	  file:
//	    path: ~/tmp/linkpickerd.log
//	  format:
//	    preset: json
type Config struct {
	// Level defaults to info. LINKPICKER_LOG_LEVEL wins over it.
	Level string `yaml:"level"`
	// ReportCaller adds file:line to each entry. LINKPICKER_LOG_CALLER=true
	// turns it on as well.
	ReportCaller bool `yaml:"report_caller"`

	File   FileSinkConfig `yaml:"file"`
	Format FormatConfig   `yaml:"format"`
}

// FileSinkConfig selects the log file. By default each component writes to
// <log dir>/<component>-<date>.log, which `linkpicker logs` reads.
type FileSinkConfig struct {
	Disabled bool   `yaml:"disabled"`
	Path     string `yaml:"path"`
}

// FormatConfig shapes the text output.
type FormatConfig struct {
	// Preset is PresetDefault, PresetSimple or PresetJSON.
	Preset           string `yaml:"preset"`
	DisableTimestamp bool   `yaml:"disable_timestamp"`
	DisableComponent bool   `yaml:"disable_component"`
	// StructuredToStderr is "auto", "always" or "never". With auto, stderr
	// gets entries when it is not a terminal or the level is debug.
	StructuredToStderr string `yaml:"structured_to_stderr"`
}
