package command

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     []string
		wantErr  bool
	}{
		{name: "plain", template: "firefox --new-tab {URL}", want: []string{"firefox", "--new-tab", "{URL}"}},
		{name: "extra spaces", template: "  open   -a  Safari ", want: []string{"open", "-a", "Safari"}},
		{name: "single quotes", template: "open -a 'Google Chrome' {URL}", want: []string{"open", "-a", "Google Chrome", "{URL}"}},
		{name: "double quotes with escape", template: `sh -c "echo \"{URL}\""`, want: []string{"sh", "-c", `echo "{URL}"`}},
		{name: "backslash space", template: `/Applications/My\ Browser {URL}`, want: []string{"/Applications/My Browser", "{URL}"}},
		{name: "empty quoted arg", template: `cmd ''`, want: []string{"cmd", ""}},
		{name: "unterminated", template: "open 'oops", wantErr: true},
		{name: "trailing backslash", template: `open \`, wantErr: true},
		{name: "empty", template: "   ", wantErr: true},
		{name: "operator rejected", template: "firefox {URL}; rm -rf ~", wantErr: true},
		{name: "env not expanded", template: "open $BROWSER {URL}", want: []string{"open", "$BROWSER", "{URL}"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Split(tt.template)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpand(t *testing.T) {
	url := "https://example.com/?q=a b;rm -rf"
	assert.Equal(t,
		[]string{"firefox", "--url=" + url},
		Expand([]string{"firefox", "--url={URL}"}, url))
	assert.Equal(t,
		[]string{"xdg-open", url},
		Expand([]string{"xdg-open"}, url))
}

// recordingExecutor runs `true` or `false` regardless of the requested
// command and records the argv.
type recordingExecutor struct {
	bin  string
	argv []string
}

func (e *recordingExecutor) Command(name string, args ...string) *exec.Cmd {
	e.argv = append([]string{name}, args...)
	return exec.Command(e.bin)
}

func (e *recordingExecutor) CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	e.argv = append([]string{name}, args...)
	return exec.CommandContext(ctx, e.bin)
}

func lookOrSkip(t *testing.T, name string) string {
	t.Helper()
	path, err := exec.LookPath(name)
	if err != nil {
		t.Skipf("%s not available", name)
	}
	return path
}

func TestLaunch(t *testing.T) {
	ex := &recordingExecutor{bin: lookOrSkip(t, "true")}
	r := NewRunner(ex, nil).WithSettle(time.Second)

	err := r.Launch(context.Background(), "open -a 'Google Chrome' {URL}", "https://a.test")
	require.NoError(t, err)
	assert.Equal(t, []string{"open", "-a", "Google Chrome", "https://a.test"}, ex.argv)
}

func TestLaunchReportsEarlyFailure(t *testing.T) {
	ex := &recordingExecutor{bin: lookOrSkip(t, "false")}
	r := NewRunner(ex, nil).WithSettle(time.Second)

	err := r.Launch(context.Background(), "broken {URL}", "https://a.test")
	assert.Error(t, err)
}

func TestLaunchStartFailure(t *testing.T) {
	r := NewRunner(&RealExecutor{}, nil)
	err := r.Launch(context.Background(), "/nonexistent/linkpicker-test-binary {URL}", "https://a.test")
	assert.Error(t, err)
}

func TestLaunchBadTemplate(t *testing.T) {
	r := NewRunner(nil, nil)
	assert.Error(t, r.Launch(context.Background(), "'unterminated", "https://a.test"))
}
