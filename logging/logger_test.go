package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("LINKPICKER_HOME", home)
	t.Setenv(EnvLevel, "")
	t.Setenv(EnvCaller, "")
	t.Setenv(EnvDebug, "")
	Reset()
	t.Cleanup(Reset)
	return home
}

func TestNewLogger(t *testing.T) {
	isolate(t)

	logger := NewLogger("test-component")
	if logger == nil {
		t.Fatal("Expected logger to be created")
	}
	if logger.Data["component"] != "test-component" {
		t.Errorf("Expected component to be 'test-component', got %v", logger.Data["component"])
	}
	if again := NewLogger("test-component"); again != logger {
		t.Error("Expected the cached logger to be returned")
	}
}

func TestLoggerOutput(t *testing.T) {
	var buf bytes.Buffer

	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&TextFormatter{Config: FormatConfig{}})

	entry := logger.WithField("component", "test")
	entry.Info("Test message")

	output := buf.String()
	for _, want := range []string{"[INFO]", "test", "Test message"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected output to contain %q, got: %s", want, output)
		}
	}
}

func TestTextFormatter(t *testing.T) {
	tests := []struct {
		name    string
		config  FormatConfig
		entry   *logrus.Entry
		want    []string
		notWant []string
	}{
		{
			name:   "default format",
			config: FormatConfig{},
			entry: &logrus.Entry{
				Level:   logrus.InfoLevel,
				Message: "test message",
				Data: logrus.Fields{
					"component": "store",
					"rev":       3,
				},
			},
			want: []string{"[INFO]", "store", "test message", "rev=3"},
		},
		{
			name: "simple format",
			config: FormatConfig{
				DisableTimestamp: true,
				DisableComponent: true,
			},
			entry: &logrus.Entry{
				Level:   logrus.WarnLevel,
				Message: "slow flush",
				Data:    logrus.Fields{"component": "store"},
			},
			want:    []string{"[WARN]", "slow flush"},
			notWant: []string{"store"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &TextFormatter{Config: tt.config}
			out, err := f.Format(tt.entry)
			if err != nil {
				t.Fatalf("Format returned error: %v", err)
			}
			got := string(out)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("Expected %q in %q", w, got)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(got, nw) {
					t.Errorf("Did not expect %q in %q", nw, got)
				}
			}
		})
	}
}

func TestFormatterFieldOrder(t *testing.T) {
	f := &TextFormatter{Config: FormatConfig{DisableTimestamp: true}}
	out, err := f.Format(&logrus.Entry{
		Level:   logrus.InfoLevel,
		Message: "m",
		Data:    logrus.Fields{"b": 2, "a": 1, "c": 3},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "a=1 b=2 c=3") {
		t.Errorf("Expected sorted fields, got %q", out)
	}

	out, err = f.Format(&logrus.Entry{
		Level:   logrus.InfoLevel,
		Message: "applied",
		Data: logrus.Fields{
			"rev":    4,
			"origin": "cli",
			"action": "URL_SET",
			"error":  "no such app",
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := `applied action=URL_SET origin=cli error="no such app" rev=4`
	if !strings.Contains(string(out), want) {
		t.Errorf("Expected %q in %q", want, out)
	}
}

func TestEnvironmentVariables(t *testing.T) {
	isolate(t)
	t.Setenv(EnvLevel, "debug")
	t.Setenv(EnvCaller, "true")

	logger := NewLogger("env-test")
	if logger.Logger.GetLevel() != logrus.DebugLevel {
		t.Errorf("Expected debug level, got %v", logger.Logger.GetLevel())
	}
	if !logger.Logger.ReportCaller {
		t.Error("Expected caller reporting to be enabled")
	}
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	isolate(t)
	t.Setenv(EnvLevel, "loud")

	if lvl := NewLogger("bad-level").Logger.GetLevel(); lvl != logrus.InfoLevel {
		t.Errorf("Expected info level, got %v", lvl)
	}
}

func TestFileSink(t *testing.T) {
	isolate(t)

	logger := NewLogger("daemon")
	logger.Info("written to file")

	path := FilePath("daemon", time.Now())
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected log file at %s: %v", path, err)
	}
	if !strings.Contains(string(data), "written to file") {
		t.Errorf("Expected message in log file, got %q", data)
	}
}

func TestConfigSection(t *testing.T) {
	home := isolate(t)
	logPath := filepath.Join(home, "custom.log")
	cfgPath := filepath.Join(home, "linkpicker.yml")
	content := "logging:\n  level: warn\n  format:\n    preset: json\n  file:\n    path: " + logPath + "\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	SetConfigPath(cfgPath)
	t.Cleanup(func() { SetConfigPath("") })

	logger := NewLogger("cfg")
	if logger.Logger.GetLevel() != logrus.WarnLevel {
		t.Errorf("Expected warn level, got %v", logger.Logger.GetLevel())
	}
	if _, ok := logger.Logger.Formatter.(*logrus.JSONFormatter); !ok {
		t.Errorf("Expected JSON formatter, got %T", logger.Logger.Formatter)
	}

	logger.Warn("to custom file")
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Expected custom log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"to custom file"`) {
		t.Errorf("Expected JSON line, got %q", data)
	}
}

func TestShouldLogToStderr(t *testing.T) {
	t.Setenv(EnvDebug, "")
	if !shouldLogToStderr("always", logrus.InfoLevel) {
		t.Error("always should log")
	}
	if shouldLogToStderr("never", logrus.DebugLevel) {
		t.Error("never should not log")
	}
	if !shouldLogToStderr("auto", logrus.DebugLevel) {
		t.Error("auto should log at debug level")
	}
}

func TestStatus(t *testing.T) {
	var buf bytes.Buffer
	s := NewStatus(&buf)

	s.Success("Stopped daemon (PID: %d)", 42)
	s.Field("socket", "/run/lp.sock")
	s.Warn("not the default browser")
	s.Error("launch failed", os.ErrNotExist)

	out := buf.String()
	for _, want := range []string{"Stopped daemon (PID: 42)", "socket:", "/run/lp.sock", "not the default browser", "launch failed: file does not exist"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output %q", want, out)
		}
	}
}

func TestRedirect(t *testing.T) {
	var first, second bytes.Buffer
	SetGlobalOutput(&first)
	t.Cleanup(func() { SetGlobalOutput(os.Stderr) })

	out := GetGlobalOutput()
	restore := Redirect(&second)
	if _, err := out.Write([]byte("hidden")); err != nil {
		t.Fatal(err)
	}
	restore()
	restore()
	if _, err := out.Write([]byte("shown")); err != nil {
		t.Fatal(err)
	}

	if first.String() != "shown" {
		t.Errorf("Expected only restored output in first sink, got %q", first.String())
	}
	if second.String() != "hidden" {
		t.Errorf("Expected redirected output in second sink, got %q", second.String())
	}
}
