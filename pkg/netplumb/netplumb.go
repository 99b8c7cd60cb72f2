// Package netplumb programs host addressing for the external bridge.
package netplumb

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/vishvananda/netlink"
	"go.uber.org/zap"
)

// netlinker is the slice of netlink this package uses; tests substitute a fake.
type netlinker interface {
	LinkByName(name string) (netlink.Link, error)
	AddrList(link netlink.Link, family int) ([]netlink.Addr, error)
	AddrAdd(link netlink.Link, addr *netlink.Addr) error
	LinkSetUp(link netlink.Link) error
}

type hostNetlink struct{}

func (hostNetlink) LinkByName(name string) (netlink.Link, error) {
	return netlink.LinkByName(name)
}

func (hostNetlink) AddrList(link netlink.Link, family int) ([]netlink.Addr, error) {
	return netlink.AddrList(link, family)
}

func (hostNetlink) AddrAdd(link netlink.Link, addr *netlink.Addr) error {
	return netlink.AddrAdd(link, addr)
}

func (hostNetlink) LinkSetUp(link netlink.Link) error {
	return netlink.LinkSetUp(link)
}

// EnsureBridgeAddress brings the bridge link up and makes sure it carries the
// given address. Re-running with an unchanged address is a no-op. The address
// may be bare or CIDR; a bare address gets a host-only prefix.
func EnsureBridgeAddress(bridge, address string, log *zap.SugaredLogger) error {
	return ensureBridgeAddress(hostNetlink{}, bridge, address, log)
}

func ensureBridgeAddress(nl netlinker, bridge, address string, log *zap.SugaredLogger) error {
	link, err := nl.LinkByName(bridge)
	if err != nil {
		return fmt.Errorf("failed to look up bridge link %s: %v", bridge, err)
	}

	addr, err := netlink.ParseAddr(hostCIDR(address))
	if err != nil {
		return fmt.Errorf("invalid bridge address %q: %v", address, err)
	}

	addrs, err := nl.AddrList(link, netlink.FAMILY_ALL)
	if err != nil {
		return fmt.Errorf("failed to list addresses on %s: %v", bridge, err)
	}
	present := lo.SomeBy(addrs, func(a netlink.Addr) bool {
		return a.Equal(*addr)
	})
	if !present {
		if err := nl.AddrAdd(link, addr); err != nil {
			return fmt.Errorf("failed to add %s to %s: %v", addr, bridge, err)
		}
		log.Infow("assigned bridge address", "bridge", bridge, "address", addr.String())
	}

	if err := nl.LinkSetUp(link); err != nil {
		return fmt.Errorf("failed to set %s up: %v", bridge, err)
	}
	return nil
}

// hostCIDR normalizes a bare IP to a single-host prefix.
func hostCIDR(address string) string {
	if strings.Contains(address, "/") {
		return address
	}
	if strings.Contains(address, ":") {
		return address + "/128"
	}
	return address + "/32"
}
