package probe

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
)

// Runner executes host commands. ExecRunner is the real implementation;
// tests substitute fakes.
type Runner interface {
	// LookPath resolves a command on PATH.
	LookPath(name string) (string, error)
	// Output runs name with args and returns its combined output.
	Output(ctx context.Context, name string, args ...string) (string, error)
	// Shell runs command through sh -c, streaming output to stdout and
	// stderr.
	Shell(ctx context.Context, command string, stdout, stderr io.Writer) error
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

var _ Runner = ExecRunner{}

func (ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func (ExecRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	var buf bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	if err := cmd.Run(); err != nil {
		return buf.String(), fmt.Errorf("%s: %w", name, err)
	}
	return buf.String(), nil
}

func (ExecRunner) Shell(ctx context.Context, command string, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run %q: %w", command, err)
	}
	return nil
}
