// Package snapenv resolves the identity and directory layout of the running
// snap from the environment the snap runtime sets up for hooks.
package snapenv

import (
	"os"
	"path/filepath"
)

const defaultInstance = "openstack-hypervisor"

type Snap struct {
	InstanceName string
	SnapDir      string // $SNAP: read-only squashfs with the packaged payload
	CommonDir    string // $SNAP_COMMON: survives refreshes
	DataDir      string // $SNAP_DATA: per-revision writable data
}

func FromEnv() Snap {
	return Snap{
		InstanceName: envOr("SNAP_INSTANCE_NAME", defaultInstance),
		SnapDir:      envOr("SNAP", filepath.Join("/snap", defaultInstance, "current")),
		CommonDir:    envOr("SNAP_COMMON", filepath.Join("/var/snap", defaultInstance, "common")),
		DataDir:      envOr("SNAP_DATA", filepath.Join("/var/snap", defaultInstance, "current")),
	}
}

// TemplateDir is where the packaged configuration templates live.
func (s Snap) TemplateDir() string {
	return filepath.Join(s.SnapDir, "templates")
}

// SettingsPath is the default location of the settings tree.
func (s Snap) SettingsPath() string {
	return filepath.Join(s.CommonDir, "etc", "hypervisor.yaml")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
