package logging

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/linkpicker/tui/theme"
)

// leadingFields are printed first, in this order, when present. They say
// which action moved the tree and where it came from.
var leadingFields = []string{"action", "origin", "target"}

var levelLabels = map[logrus.Level]string{
	logrus.TraceLevel: "TRACE",
	logrus.DebugLevel: "DEBUG",
	logrus.InfoLevel:  "INFO",
	logrus.WarnLevel:  "WARN",
	logrus.ErrorLevel: "ERROR",
	logrus.FatalLevel: "FATAL",
	logrus.PanicLevel: "PANIC",
}

// TextFormatter renders one line per entry:
//
//	2026-01-02 15:04:05 [INFO] [store] applied action=URL_SET origin=cli rev=4
type TextFormatter struct {
	Config FormatConfig
}

// Format implements logrus.Formatter.
func (f *TextFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b strings.Builder

	if !f.Config.DisableTimestamp {
		b.WriteString(entry.Time.Format("2006-01-02 15:04:05 "))
	}
	label, ok := levelLabels[entry.Level]
	if !ok {
		label = strings.ToUpper(entry.Level.String())
	}
	b.WriteString("[" + label + "]")

	if component, ok := entry.Data["component"]; ok && !f.Config.DisableComponent {
		fmt.Fprintf(&b, " [%s]", theme.DefaultTheme.Accent.Render(fmt.Sprint(component)))
	}
	if entry.HasCaller() {
		fmt.Fprintf(&b, " [%s:%d %s]",
			filepath.Base(entry.Caller.File), entry.Caller.Line, filepath.Base(entry.Caller.Function))
	}

	b.WriteString(" " + entry.Message)

	written := map[string]bool{"component": true}
	for _, key := range leadingFields {
		if v, ok := entry.Data[key]; ok {
			writeField(&b, key, v)
			written[key] = true
		}
	}
	rest := make([]string, 0, len(entry.Data))
	for key := range entry.Data {
		if !written[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		writeField(&b, key, entry.Data[key])
	}

	b.WriteByte('\n')
	return []byte(b.String()), nil
}

// writeField quotes values that would break key=value parsing.
func writeField(b *strings.Builder, key string, value interface{}) {
	s := fmt.Sprint(value)
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		s = strconv.Quote(s)
	}
	fmt.Fprintf(b, " %s=%s", key, s)
}
