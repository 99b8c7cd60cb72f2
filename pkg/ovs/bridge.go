package ovs

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Externally-managed uplink ports are tagged with this external-ids pair when
// added, and only ports carrying it are ever removed by reconciliation.
const (
	markerKey   = "hypervisor-function"
	markerValue = "ext-port"
)

var markerArg = fmt.Sprintf("external-ids:%s=%s", markerKey, markerValue)

// ListBridgeIfaces returns the names of all interfaces currently on the
// bridge, internal and external alike, as reported by OVS.
func (c *Client) ListBridgeIfaces(bridge string) ([]string, error) {
	out, err := c.runner.Output("ovs-vsctl", "--retry", "list-ifaces", bridge)
	if err != nil {
		return nil, fmt.Errorf("failed to list interfaces on bridge %s: %w", bridge, err)
	}
	return strings.Fields(string(out)), nil
}

// GetExternalPortsOnBridge returns the bridge's interfaces that are tagged as
// externally-managed uplinks. A port must carry the marker and currently be an
// interface of the bridge to count.
func (c *Client) GetExternalPortsOnBridge(bridge string) ([]string, error) {
	ports, err := c.listPorts()
	if err != nil {
		return nil, err
	}
	ifaces, err := c.ListBridgeIfaces(bridge)
	if err != nil {
		return nil, err
	}
	external := lo.FilterMap(ports, func(p Port, _ int) (string, bool) {
		return p.Name, p.ExternalIDs[markerKey] == markerValue && lo.Contains(ifaces, p.Name)
	})
	return external, nil
}

// AddInterfaceToBridge adds iface as a port of the bridge and tags it as an
// externally-managed uplink in the same ovs-vsctl transaction. No-op if the
// interface is already on the bridge.
func (c *Client) AddInterfaceToBridge(bridge, iface string) error {
	ifaces, err := c.ListBridgeIfaces(bridge)
	if err != nil {
		return err
	}
	if lo.Contains(ifaces, iface) {
		c.log.Infow("interface already on bridge", "bridge", bridge, "interface", iface)
		return nil
	}
	err = c.runner.Run("ovs-vsctl", "--retry",
		"add-port", bridge, iface,
		"--", "set", "Port", iface, markerArg)
	if err != nil {
		return fmt.Errorf("failed to add interface %s to bridge %s: %w", iface, bridge, err)
	}
	c.log.Infow("added interface to bridge", "bridge", bridge, "interface", iface)
	return nil
}

// DelInterfaceFromBridge removes iface from the bridge. No-op if the interface
// is not currently on the bridge.
func (c *Client) DelInterfaceFromBridge(bridge, iface string) error {
	ifaces, err := c.ListBridgeIfaces(bridge)
	if err != nil {
		return err
	}
	if !lo.Contains(ifaces, iface) {
		c.log.Infow("interface not on bridge", "bridge", bridge, "interface", iface)
		return nil
	}
	if err := c.runner.Run("ovs-vsctl", "--retry", "del-port", bridge, iface); err != nil {
		return fmt.Errorf("failed to delete interface %s from bridge %s: %w", iface, bridge, err)
	}
	c.log.Infow("deleted interface from bridge", "bridge", bridge, "interface", iface)
	return nil
}

// EnsureSingleNicOnBridge reconciles the bridge so that nic is its only
// externally-managed uplink: every other tagged port is removed, and nic is
// added only when absent from the external port set. A nic already attached as
// a plain untagged interface is left as is.
func (c *Client) EnsureSingleNicOnBridge(bridge, nic string) error {
	external, err := c.GetExternalPortsOnBridge(bridge)
	if err != nil {
		return err
	}
	for _, port := range external {
		if port == nic {
			continue
		}
		if err := c.DelInterfaceFromBridge(bridge, port); err != nil {
			return err
		}
	}
	if !lo.Contains(external, nic) {
		return c.AddInterfaceToBridge(bridge, nic)
	}
	return nil
}

// DelExternalNicsFromBridge removes every externally-managed uplink from the
// bridge, with no replacement.
func (c *Client) DelExternalNicsFromBridge(bridge string) error {
	external, err := c.GetExternalPortsOnBridge(bridge)
	if err != nil {
		return err
	}
	for _, port := range external {
		if err := c.DelInterfaceFromBridge(bridge, port); err != nil {
			return err
		}
	}
	return nil
}
