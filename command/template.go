package command

import (
	"fmt"
	"strings"

	"github.com/mattn/go-shellwords"
)

// Placeholder is replaced by the URL in every argument of a launch template.
const Placeholder = "{URL}"

// Split breaks a launch template into arguments with POSIX-style word
// splitting. Quotes and backslash escapes are honoured; environment
// variables, backticks and shell operators are not. No shell ever sees the
// result.
func Split(template string) ([]string, error) {
	p := shellwords.NewParser()
	p.ParseEnv = false
	p.ParseBacktick = false

	args, err := p.Parse(template)
	if err != nil {
		return nil, fmt.Errorf("parse command template %q: %w", template, err)
	}
	if p.Position != -1 {
		return nil, fmt.Errorf("shell operator at offset %d in %q", p.Position, template)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("empty command template")
	}
	return args, nil
}

// Expand substitutes url into every occurrence of Placeholder. A template
// without a placeholder gets the URL as its final argument.
func Expand(args []string, url string) []string {
	out := make([]string, len(args))
	found := false
	for i, a := range args {
		if strings.Contains(a, Placeholder) {
			found = true
		}
		out[i] = strings.ReplaceAll(a, Placeholder, url)
	}
	if !found {
		out = append(out, url)
	}
	return out
}
