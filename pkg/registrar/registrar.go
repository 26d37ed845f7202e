// Package registrar makes linkpicker the default handler for web links.
// The actual mechanism is host specific and lives in configured commands.
package registrar

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/grovetools/linkpicker/command"
)

// Registrar registers the default URL handler and reports the current status.
type Registrar interface {
	Register(ctx context.Context) error
	IsDefault(ctx context.Context) (bool, error)
}

// CommandRegistrar runs shell-free command templates. An empty register
// command makes Register a no-op; an empty check command reports true.
type CommandRegistrar struct {
	RegisterCommand string
	CheckCommand    string
	Executor        command.Executor
}

// New creates a CommandRegistrar using the real executor.
func New(register, check string) *CommandRegistrar {
	return &CommandRegistrar{RegisterCommand: register, CheckCommand: check, Executor: &command.RealExecutor{}}
}

// Register runs the registration command.
func (r *CommandRegistrar) Register(ctx context.Context) error {
	if r.RegisterCommand == "" {
		return nil
	}
	_, err := r.run(ctx, r.RegisterCommand)
	return err
}

// IsDefault runs the check command. A zero exit whose output is not "no"
// or "false" means linkpicker is the default.
func (r *CommandRegistrar) IsDefault(ctx context.Context) (bool, error) {
	if r.CheckCommand == "" {
		return true, nil
	}
	out, err := r.run(ctx, r.CheckCommand)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(out)) {
	case "no", "false":
		return false, nil
	}
	return true, nil
}

func (r *CommandRegistrar) run(ctx context.Context, template string) (string, error) {
	args, err := command.Split(template)
	if err != nil {
		return "", err
	}
	executor := r.Executor
	if executor == nil {
		executor = &command.RealExecutor{}
	}
	var stdout, stderr bytes.Buffer
	cmd := executor.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s: %w: %s", args[0], err, msg)
		}
		return "", fmt.Errorf("%s: %w", args[0], err)
	}
	return stdout.String(), nil
}
