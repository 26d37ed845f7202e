package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"

	"github.com/grovetools/linkpicker/config"
	"github.com/grovetools/linkpicker/pkg/paths"
)

// Environment overrides.
const (
	EnvLevel  = "LINKPICKER_LOG_LEVEL"
	EnvCaller = "LINKPICKER_LOG_CALLER"
	EnvDebug  = "LINKPICKER_DEBUG"
)

var (
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex

	configPath string
	files      []*os.File
)

// SetConfigPath makes loggers created afterwards read the `logging` section
// from path instead of the default config file. Cached loggers are dropped.
func SetConfigPath(path string) {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	configPath = path
	resetLocked()
}

// Reset drops every cached logger and closes their log files.
func Reset() {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	resetLocked()
}

func resetLocked() {
	for _, f := range files {
		f.Close()
	}
	files = nil
	loggers = make(map[string]*logrus.Entry)
}

// FilePath returns the default log file of component for the given day.
func FilePath(component string, day time.Time) string {
	return filepath.Join(paths.LogDir(), fmt.Sprintf("%s-%s.log", component, day.Format("2006-01-02")))
}

// NewLogger creates and returns a pre-configured logger for a specific component.
// It uses a singleton pattern per component to avoid re-initializing.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}

	logger := logrus.New()
	logCfg := loadConfig()

	// Configure Level
	levelStr := "info"
	if os.Getenv(EnvLevel) != "" {
		levelStr = os.Getenv(EnvLevel)
	} else if logCfg.Level != "" {
		levelStr = logCfg.Level
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if os.Getenv(EnvCaller) == "true" || logCfg.ReportCaller {
		logger.SetReportCaller(true)
	}

	switch logCfg.Format.Preset {
	case PresetJSON:
		logger.SetFormatter(&logrus.JSONFormatter{})
	case PresetSimple:
		logger.SetFormatter(&TextFormatter{Config: FormatConfig{
			DisableTimestamp: true,
			DisableComponent: true,
		}})
	default:
		logger.SetFormatter(&TextFormatter{Config: logCfg.Format})
	}

	var writers []io.Writer

	if !logCfg.File.Disabled {
		logFilePath := FilePath(component, time.Now())
		explicit := logCfg.File.Path != ""
		if explicit {
			logFilePath = expandPath(logCfg.File.Path)
		}
		dir := filepath.Dir(logFilePath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			// Only warn if explicitly configured
			if explicit {
				logger.Warnf("Failed to create log directory %s: %v", dir, err)
			}
		} else {
			file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err == nil {
				files = append(files, file)
				writers = append(writers, file)
			} else if explicit {
				logger.Warnf("Failed to open log file %s: %v", logFilePath, err)
			}
		}
	}

	if shouldLogToStderr(logCfg.Format.StructuredToStderr, logger.GetLevel()) {
		writers = append(writers, GetGlobalOutput())
	}

	switch len(writers) {
	case 0:
		logger.SetOutput(io.Discard)
	case 1:
		logger.SetOutput(writers[0])
	default:
		logger.SetOutput(io.MultiWriter(writers...))
	}

	entry := logger.WithField("component", component)
	loggers[component] = entry
	return entry
}

// shouldLogToStderr resolves the auto|always|never stderr mode. In auto mode
// structured logs reach stderr when debugging or when stderr is not a
// terminal (piped, CI, launched by the desktop).
func shouldLogToStderr(mode string, level logrus.Level) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	isDebug := os.Getenv(EnvDebug) == "1" || level >= logrus.DebugLevel
	isInteractive := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	return isDebug || !isInteractive
}

// loadConfig reads the logging section. Failures fall back to defaults.
func loadConfig() Config {
	var logCfg Config
	cfg, _, err := config.Resolve(configPath, nil)
	if err != nil {
		return logCfg
	}
	if err := cfg.UnmarshalExtension("logging", &logCfg); err != nil {
		logrus.Warnf("Failed to parse 'logging' config: %v", err)
	}
	return logCfg
}

// expandPath expands tilde in file paths
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
