package netplumb

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vishvananda/netlink"
	"go.uber.org/zap"
)

type fakeNetlink struct {
	link      netlink.Link
	lookupErr error
	addrs     []netlink.Addr
	added     []netlink.Addr
	up        []string
}

func (f *fakeNetlink) LinkByName(name string) (netlink.Link, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	return f.link, nil
}

func (f *fakeNetlink) AddrList(link netlink.Link, family int) ([]netlink.Addr, error) {
	return f.addrs, nil
}

func (f *fakeNetlink) AddrAdd(link netlink.Link, addr *netlink.Addr) error {
	f.added = append(f.added, *addr)
	return nil
}

func (f *fakeNetlink) LinkSetUp(link netlink.Link) error {
	f.up = append(f.up, link.Attrs().Name)
	return nil
}

func bridgeLink(name string) netlink.Link {
	return &netlink.Dummy{LinkAttrs: netlink.LinkAttrs{Name: name}}
}

func mustAddr(t *testing.T, s string) *netlink.Addr {
	t.Helper()
	addr, err := netlink.ParseAddr(s)
	require.NoError(t, err)
	return addr
}

func TestEnsureBridgeAddressAssigns(t *testing.T) {
	nl := &fakeNetlink{link: bridgeLink("br-ex")}
	require.NoError(t, ensureBridgeAddress(nl, "br-ex", "10.0.0.10", zap.NewNop().Sugar()))

	require.Len(t, nl.added, 1)
	assert.Equal(t, "10.0.0.10/32", nl.added[0].IPNet.String())
	assert.Equal(t, []string{"br-ex"}, nl.up)
}

func TestEnsureBridgeAddressNoopWhenPresent(t *testing.T) {
	nl := &fakeNetlink{
		link:  bridgeLink("br-ex"),
		addrs: []netlink.Addr{*mustAddr(t, "10.0.0.10/32")},
	}
	require.NoError(t, ensureBridgeAddress(nl, "br-ex", "10.0.0.10", zap.NewNop().Sugar()))

	assert.Empty(t, nl.added)
	// the link is still brought up
	assert.Equal(t, []string{"br-ex"}, nl.up)
}

func TestEnsureBridgeAddressMissingLink(t *testing.T) {
	nl := &fakeNetlink{lookupErr: errors.New("link not found")}
	err := ensureBridgeAddress(nl, "br-ex", "10.0.0.10", zap.NewNop().Sugar())
	assert.ErrorContains(t, err, "failed to look up bridge link br-ex")
}

func TestEnsureBridgeAddressInvalid(t *testing.T) {
	nl := &fakeNetlink{link: bridgeLink("br-ex")}
	err := ensureBridgeAddress(nl, "br-ex", "not-an-address", zap.NewNop().Sugar())
	assert.ErrorContains(t, err, "invalid bridge address")
	assert.Empty(t, nl.added)
	assert.Empty(t, nl.up)
}

func TestHostCIDR(t *testing.T) {
	assert.Equal(t, "10.0.0.10/32", hostCIDR("10.0.0.10"))
	assert.Equal(t, "10.0.0.10/24", hostCIDR("10.0.0.10/24"))
	assert.Equal(t, "fd00::10/128", hostCIDR("fd00::10"))
	assert.Equal(t, "fd00::10/64", hostCIDR("fd00::10/64"))
}
