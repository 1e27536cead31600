// Package shell provides a fluent builder around os/exec for invoking
// external tools (qemu-img, lsof, du, fstrim, ...) with consistent logging.
package shell

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/v2vconvert/v2v-convert/internal/logger"
)

// ExecBuilder accumulates options for a single subprocess invocation.
type ExecBuilder struct {
	name           string
	args           []string
	cmdLogLevel    logrus.Level
	outputLogLevel logrus.Level
	stdin          string
}

// NewExecBuilder starts building an invocation of name with args.
func NewExecBuilder(name string, args ...string) ExecBuilder {
	return ExecBuilder{
		name:           name,
		args:           args,
		cmdLogLevel:    logrus.DebugLevel,
		outputLogLevel: logrus.TraceLevel,
	}
}

// LogLevel sets the level the command line is logged at, and the level its
// captured stdout/stderr are logged at.
func (b ExecBuilder) LogLevel(cmdLevel logrus.Level, outputLevel logrus.Level) ExecBuilder {
	b.cmdLogLevel = cmdLevel
	b.outputLogLevel = outputLevel
	return b
}

// Stdin feeds the given string to the subprocess's standard input.
func (b ExecBuilder) Stdin(input string) ExecBuilder {
	b.stdin = input
	return b
}

// Execute runs the command, streaming nothing, and returns only an error.
func (b ExecBuilder) Execute() error {
	_, _, err := b.ExecuteCaptureOutput()
	return err
}

// ExecuteCaptureOutput runs the command and returns its captured stdout and
// stderr. A non-zero exit code is returned as an error that includes the
// captured stderr.
func (b ExecBuilder) ExecuteCaptureOutput() (string, string, error) {
	logger.Log.Logf(b.cmdLogLevel, "Executing: %s %s", b.name, strings.Join(b.args, " "))

	cmd := exec.Command(b.name, b.args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if b.stdin != "" {
		cmd.Stdin = strings.NewReader(b.stdin)
	}

	err := cmd.Run()

	if stdout.Len() > 0 {
		logger.Log.Logf(b.outputLogLevel, "%s (stdout): %s", b.name, stdout.String())
	}
	if stderr.Len() > 0 {
		logger.Log.Logf(b.outputLogLevel, "%s (stderr): %s", b.name, stderr.String())
	}

	if err != nil {
		return stdout.String(), stderr.String(), fmt.Errorf("(%s %s) failed:\n%w\nstderr:\n%s",
			b.name, strings.Join(b.args, " "), err, stderr.String())
	}

	return stdout.String(), stderr.String(), nil
}

// Execute is a convenience wrapper for the common case of wanting both
// captured streams at default (debug/trace) log levels.
func Execute(name string, args ...string) (string, string, error) {
	return NewExecBuilder(name, args...).ExecuteCaptureOutput()
}
