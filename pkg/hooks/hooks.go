// Package hooks implements the snap lifecycle hooks: install sets up the
// writable directory tree, configure reconciles rendered configuration,
// external networking and service state with the settings tree.
package hooks

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/openstack-snap/hypervisor-hooks/pkg/config"
	"github.com/openstack-snap/hypervisor-hooks/pkg/netplumb"
	"github.com/openstack-snap/hypervisor-hooks/pkg/ovs"
	"github.com/openstack-snap/hypervisor-hooks/pkg/snapenv"
	"github.com/openstack-snap/hypervisor-hooks/pkg/templates"
)

// ServiceManager is the collaborator that actually starts and stops services.
type ServiceManager interface {
	Start(service string) error
	Stop(service string) error
}

type Hooks struct {
	snap     snapenv.Snap
	ovs      *ovs.Client
	services ServiceManager
	log      *zap.SugaredLogger

	// seam for tests; defaults to netplumb
	ensureBridgeAddress func(bridge, address string) error
}

func New(snap snapenv.Snap, ovsClient *ovs.Client, services ServiceManager, log *zap.SugaredLogger) *Hooks {
	return &Hooks{
		snap:     snap,
		ovs:      ovsClient,
		services: services,
		log:      log,
		ensureBridgeAddress: func(bridge, address string) error {
			return netplumb.EnsureBridgeAddress(bridge, address, log)
		},
	}
}

var dataDirs = []string{
	"etc/nova",
	"etc/neutron",
	"etc/libvirt",
	"etc/ssl",
	"secrets",
}

var commonDirs = []string{
	"etc",
	"lib/instances",
	"log/libvirt",
	"log/nova",
	"log/neutron",
}

// Install creates the writable directory tree and seeds one-time secrets.
// Safe to re-run: existing directories and secrets are left alone.
func (h *Hooks) Install() error {
	for _, dir := range dataDirs {
		if err := os.MkdirAll(filepath.Join(h.snap.DataDir, dir), 0o750); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	for _, dir := range commonDirs {
		if err := os.MkdirAll(filepath.Join(h.snap.CommonDir, dir), 0o750); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return h.ensureMetadataSecret()
}

func (h *Hooks) metadataSecretPath() string {
	return filepath.Join(h.snap.DataDir, "secrets", "metadata-shared-secret")
}

// ensureMetadataSecret generates the metadata proxy shared secret on first
// install so the credentials section has a bootstrap source.
func (h *Hooks) ensureMetadataSecret() error {
	path := h.metadataSecretPath()
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(uuid.NewString()), 0o600); err != nil {
		return fmt.Errorf("failed to write metadata secret: %w", err)
	}
	h.log.Infow("generated metadata proxy shared secret")
	return nil
}

// effectiveConfig overlays install-time bootstrap values the settings tree
// does not carry yet. A settings-provided metadata proxy secret always wins
// over the generated one.
func (h *Hooks) effectiveConfig(cfg config.Tree) (config.Tree, error) {
	if config.CheckConfigPresent("credentials.ovn_metadata_proxy_shared_secret", cfg) {
		return cfg, nil
	}
	secret, err := os.ReadFile(h.metadataSecretPath())
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata secret: %w", err)
	}
	eff := config.Tree{}
	for name, sec := range cfg {
		eff[name] = config.Section{}
		for key, value := range sec {
			eff[name][key] = value
		}
	}
	if _, ok := eff["credentials"]; !ok {
		eff["credentials"] = config.Section{}
	}
	eff["credentials"]["ovn_metadata_proxy_shared_secret"] = strings.TrimSpace(string(secret))
	return eff, nil
}

// configTemplates maps each packaged template to its rendered location under
// SNAP_DATA.
var configTemplates = []struct {
	name   string
	target string
}{
	{"nova.conf", "etc/nova/nova.conf"},
	{"neutron_ovn_metadata_agent.ini", "etc/neutron/neutron_ovn_metadata_agent.ini"},
	{"libvirtd.conf", "etc/libvirt/libvirtd.conf"},
	{"virtlogd.conf", "etc/libvirt/virtlogd.conf"},
	{"qemu.conf", "etc/libvirt/qemu.conf"},
}

// Configure renders every configuration file from the settings tree, programs
// the external bridge, then starts the services whose configuration is
// complete and stops the rest. Failures propagate unchanged; a partial run
// leaves earlier files rewritten, which is fine since hooks re-run idempotently.
func (h *Hooks) Configure(cfg config.Tree) error {
	cfg, err := h.effectiveConfig(cfg)
	if err != nil {
		return err
	}
	loader := templates.NewLoader(h.snap.TemplateDir())
	ctx := config.RenderContext(cfg)
	for _, tpl := range configTemplates {
		tmpl, err := loader.Get(tpl.name)
		if err != nil {
			return err
		}
		text, err := tmpl.Render(ctx)
		if err != nil {
			return err
		}
		target := filepath.Join(h.snap.DataDir, tpl.target)
		if err := os.WriteFile(target, []byte(text), 0o640); err != nil {
			return fmt.Errorf("failed to write %s: %w", target, err)
		}
		h.log.Debugw("rendered config file", "template", tpl.name, "target", target)
	}

	if err := h.configureExternalNetworking(cfg); err != nil {
		return err
	}

	notReady := config.ServicesNotReady(cfg)
	if len(notReady) > 0 {
		h.log.Infow("services awaiting configuration", "services", notReady)
	}
	for _, svc := range config.Services() {
		if lo.Contains(notReady, svc) {
			if err := h.services.Stop(svc); err != nil {
				return err
			}
			continue
		}
		if err := h.services.Start(svc); err != nil {
			return err
		}
	}
	return nil
}

// configureExternalNetworking attaches the designated external NIC to the
// external bridge and assigns the bridge address, when either is configured.
func (h *Hooks) configureExternalNetworking(cfg config.Tree) error {
	bridge := cfg.GetDefault("network", "external-bridge", "br-ex")
	if config.CheckConfigPresent("network.external-nic", cfg) {
		nic := cfg.Get("network", "external-nic")
		if err := h.ovs.EnsureSingleNicOnBridge(bridge, nic); err != nil {
			return err
		}
	}
	if config.CheckConfigPresent("network.external-bridge-address", cfg) {
		address := cfg.Get("network", "external-bridge-address")
		if err := h.ensureBridgeAddress(bridge, address); err != nil {
			return err
		}
	}
	return nil
}
