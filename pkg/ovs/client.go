package ovs

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// Runner executes an external command. The process-backed implementation is
// the default; tests substitute a fake.
type Runner interface {
	// Output runs the command and returns its stdout.
	Output(name string, args ...string) ([]byte, error)
	// Run runs the command, discarding output.
	Run(name string, args ...string) error
}

type execRunner struct{}

func (execRunner) Output(name string, args ...string) ([]byte, error) {
	out, err := exec.Command(name, args...).Output()
	if err != nil {
		return nil, commandError(name, args, err)
	}
	return out, nil
}

func (execRunner) Run(name string, args ...string) error {
	if err := exec.Command(name, args...).Run(); err != nil {
		return commandError(name, args, err)
	}
	return nil
}

func commandError(name string, args []string, err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
		return fmt.Errorf("%s %s: %v: %s", name, strings.Join(args, " "), err, bytes.TrimSpace(exitErr.Stderr))
	}
	return fmt.Errorf("%s %s: %v", name, strings.Join(args, " "), err)
}

// Client drives Open vSwitch through ovs-vsctl. Every call carries --retry so
// transient OVSDB connection races are absorbed by the tool itself.
type Client struct {
	runner Runner
	log    *zap.SugaredLogger
}

func NewClient(log *zap.SugaredLogger) *Client {
	return &Client{runner: execRunner{}, log: log}
}

// NewClientWithRunner builds a client over a caller-supplied runner.
func NewClientWithRunner(runner Runner, log *zap.SugaredLogger) *Client {
	return &Client{runner: runner, log: log}
}
