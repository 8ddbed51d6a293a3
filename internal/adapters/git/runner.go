// Package git implements the version control port on a local git checkout.
// History reads go through go-git; anything that mutates the index, the
// working tree or a remote shells out to the git binary.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// Runner runs git commands in a local repository.
type Runner struct {
	// Path to the git executable.
	gitPath string

	// Dir is the directory the commands are run in.
	Dir string

	// Logger receives every invocation at debug level. Nil discards.
	Logger *slog.Logger
}

// NewRunner returns a Runner for dir.
func NewRunner(dir string) (*Runner, error) {
	p, err := exec.LookPath("git")
	if err != nil {
		return nil, fmt.Errorf("no 'git' program on path: %w", err)
	}
	return &Runner{gitPath: p, Dir: dir}, nil
}

// RunResult holds the captured output of a command.
type RunResult struct {
	Stdout string
	Stderr string
}

// Invocation describes one command.
type Invocation struct {
	Args  []string
	Stdin io.Reader
	Env   []string
}

// Run runs a git command. Omit the 'git' part of the command.
func (g *Runner) Run(ctx context.Context, args ...string) (RunResult, error) {
	return g.Exec(ctx, Invocation{Args: args})
}

// Exec runs a git command with optional stdin and extra environment.
func (g *Runner) Exec(ctx context.Context, inv Invocation) (RunResult, error) {
	cmd := exec.CommandContext(ctx, g.gitPath, inv.Args...)
	cmd.Dir = g.Dir
	cmd.Env = append(os.Environ(), inv.Env...)
	cmd.Stdin = inv.Stdin

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if g.Logger != nil {
		g.Logger.DebugContext(ctx, "git", "dir", g.Dir, "args", strings.Join(inv.Args, " "))
	}
	err := cmd.Run()
	if err != nil {
		return RunResult{Stdout: stdout.String(), Stderr: stderr.String()}, &ExecError{
			Args:   inv.Args,
			Err:    err,
			Stdout: stdout.String(),
			Stderr: stderr.String(),
		}
	}
	return RunResult{Stdout: stdout.String(), Stderr: stderr.String()}, nil
}

// ExecError is a failed git invocation.
type ExecError struct {
	Args   []string
	Err    error
	Stdout string
	Stderr string
}

func (e *ExecError) Error() string {
	b := new(strings.Builder)
	b.WriteString("git ")
	if len(e.Args) > 0 {
		b.WriteString(e.Args[0])
		b.WriteString(": ")
	}
	b.WriteString(e.Err.Error())
	if s := strings.TrimSpace(e.Stderr); s != "" {
		b.WriteString(": ")
		b.WriteString(s)
	}
	return b.String()
}

func (e *ExecError) Unwrap() error { return e.Err }

// ExitCode returns the process exit code, or -1 if the command did not run.
func ExitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
