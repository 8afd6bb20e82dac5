package lint

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/tildaslashalef/nestlint/internal/loggy"
)

// DefaultExecutable is the linter binary looked up on PATH
const DefaultExecutable = "cpplint"

// waitDelay bounds how long output pipes are drained after the context is done
const waitDelay = 2 * time.Second

// exitNotFound is the status sh reports when a command cannot be found
const exitNotFound = 127

// ErrExecutableNotFound is returned when the linter is not installed
var ErrExecutableNotFound = errors.New("linter executable not found")

// InvokerOptions configures an Invoker
type InvokerOptions struct {
	Executable   string        // Linter binary, defaults to cpplint
	ExtraOptions string        // Inserted verbatim between the executable and the files
	Timeout      time.Duration // Zero waits for the linter indefinitely
	Shell        string        // Shell used to run the command line, defaults to sh
}

// Invoker runs the external linter
type Invoker struct {
	executable   string
	extraOptions string
	timeout      time.Duration
	shell        string
	logger       *loggy.Logger
}

// NewInvoker creates a new linter invoker
func NewInvoker(opts InvokerOptions, logger *loggy.Logger) *Invoker {
	if opts.Executable == "" {
		opts.Executable = DefaultExecutable
	}
	if opts.Shell == "" {
		opts.Shell = "sh"
	}

	return &Invoker{
		executable:   opts.Executable,
		extraOptions: opts.ExtraOptions,
		timeout:      opts.Timeout,
		shell:        opts.Shell,
		logger:       logger,
	}
}

// Executable returns the configured linter binary
func (i *Invoker) Executable() string {
	return i.executable
}

// CheckExecutable verifies that the linter can be found on PATH.
// Only the first word is looked up, so "python3 -m cpplint" checks python3.
func (i *Invoker) CheckExecutable() (string, error) {
	name := i.executable
	if fields := strings.Fields(name); len(fields) > 0 {
		name = fields[0]
	}

	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s (install it with `pip install cpplint`): %v", ErrExecutableNotFound, i.executable, err)
	}
	return path, nil
}

// CommandLine builds the shell command line for the given, already escaped, files
func (i *Invoker) CommandLine(files []string) string {
	return fmt.Sprintf("%s %s %s", i.executable, i.extraOptions, strings.Join(files, " "))
}

// Run lints files inside workDir and returns what the linter wrote to standard error.
// A non-zero exit status is expected when issues are found and is not reported as an error,
// except for the shell's command-not-found status.
func (i *Invoker) Run(ctx context.Context, workDir string, files []string) (string, error) {
	if len(files) == 0 {
		return "", nil
	}

	if _, err := i.CheckExecutable(); err != nil {
		return "", err
	}

	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	cmdLine := i.CommandLine(files)
	cmd := exec.CommandContext(ctx, i.shell, "-c", cmdLine)
	cmd.Dir = workDir
	cmd.WaitDelay = waitDelay

	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	i.logger.Debug("Running linter", "command", cmdLine, "dir", workDir, "files", len(files))

	start := time.Now()
	err := cmd.Run()

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case ctx.Err() != nil:
		return "", fmt.Errorf("running %s: %w", i.executable, ctx.Err())
	case errors.As(err, &exitErr) && exitErr.ExitCode() == exitNotFound:
		return "", fmt.Errorf("%w: %s: %s", ErrExecutableNotFound, i.executable, strings.TrimSpace(stderr.String()))
	case errors.As(err, &exitErr):
		i.logger.Debug("Linter exited with non-zero status", "exit_code", exitErr.ExitCode())
	default:
		return "", fmt.Errorf("running %s: %w", i.executable, err)
	}

	i.logger.Debug("Linter finished",
		"duration", time.Since(start).String(),
		"stderr_length", stderr.Len())

	return stderr.String(), nil
}
