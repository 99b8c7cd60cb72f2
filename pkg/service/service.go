// Package service controls the snap's managed services through snapctl.
package service

import (
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// Runner executes an external command; tests substitute a fake.
type Runner interface {
	Run(name string, args ...string) error
}

type execRunner struct{}

func (execRunner) Run(name string, args ...string) error {
	if err := exec.Command(name, args...).Run(); err != nil {
		return fmt.Errorf("%s %s: %v", name, strings.Join(args, " "), err)
	}
	return nil
}

// Manager starts and stops the snap instance's services. Process supervision
// itself stays with snapd; this only tells it what should be running.
type Manager struct {
	instance string
	runner   Runner
	log      *zap.SugaredLogger
}

func NewManager(instance string, log *zap.SugaredLogger) *Manager {
	return &Manager{instance: instance, runner: execRunner{}, log: log}
}

func NewManagerWithRunner(instance string, runner Runner, log *zap.SugaredLogger) *Manager {
	return &Manager{instance: instance, runner: runner, log: log}
}

func (m *Manager) Start(service string) error {
	if err := m.runner.Run("snapctl", "start", m.qualify(service)); err != nil {
		return fmt.Errorf("failed to start service %s: %w", service, err)
	}
	m.log.Infow("started service", "service", service)
	return nil
}

func (m *Manager) Stop(service string) error {
	if err := m.runner.Run("snapctl", "stop", m.qualify(service)); err != nil {
		return fmt.Errorf("failed to stop service %s: %w", service, err)
	}
	m.log.Infow("stopped service", "service", service)
	return nil
}

func (m *Manager) qualify(service string) string {
	return m.instance + "." + service
}
