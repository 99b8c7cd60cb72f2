package ovs

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fullPortListing is the full-width list Port output of a real ovs-vsctl,
// every column present, one record.
const fullPortListing = `{
  "data": [
    [
      ["uuid", "efd95c01-d658-4847-8506-664eec95e653"],
      ["set", []],
      0,
      false,
      ["set", []],
      0,
      ["set", []],
      ["map", [["hypervisor-function", "ext-port"]]],
      false,
      ["uuid", "92f62f7c-53f2-4362-bbd5-9b46b8f88632"],
      ["set", []],
      ["set", []],
      "enp6s0",
      ["map", []],
      false,
      ["set", []],
      ["map", []],
      ["map", []],
      ["map", []],
      ["map", []],
      ["set", []],
      ["set", []],
      ["set", []]
    ]
  ],
  "headings": [
    "_uuid", "bond_active_slave", "bond_downdelay", "bond_fake_iface",
    "bond_mode", "bond_updelay", "cvlans", "external_ids", "fake_bridge",
    "interfaces", "lacp", "mac", "name", "other_config", "protected", "qos",
    "rstp_statistics", "rstp_status", "statistics", "status", "tag", "trunks",
    "vlan_mode"
  ]
}`

func TestParsePortTable(t *testing.T) {
	ports, err := parsePortTable([]byte(fullPortListing))
	require.NoError(t, err)
	require.Len(t, ports, 1)

	p := ports[0]
	assert.Equal(t, uuid.MustParse("efd95c01-d658-4847-8506-664eec95e653"), p.UUID)
	assert.Equal(t, "enp6s0", p.Name)
	assert.Equal(t, map[string]string{"hypervisor-function": "ext-port"}, p.ExternalIDs)
	assert.Equal(t, []uuid.UUID{uuid.MustParse("92f62f7c-53f2-4362-bbd5-9b46b8f88632")}, p.Interfaces)
}

func TestParsePortTableInterfaceSet(t *testing.T) {
	// bonded port: interfaces come back as an explicit set
	listing := `{
	  "headings": ["_uuid", "external_ids", "interfaces", "name"],
	  "data": [[
	    ["uuid", "efd95c01-d658-4847-8506-664eec95e653"],
	    ["map", []],
	    ["set", [["uuid", "92f62f7c-53f2-4362-bbd5-9b46b8f88632"],
	             ["uuid", "a2f62f7c-53f2-4362-bbd5-9b46b8f88633"]]],
	    "bond0"
	  ]]
	}`
	ports, err := parsePortTable([]byte(listing))
	require.NoError(t, err)
	require.Len(t, ports, 1)
	assert.Len(t, ports[0].Interfaces, 2)
}

func TestParsePortTableMissingColumn(t *testing.T) {
	_, err := parsePortTable([]byte(`{"headings": ["_uuid", "name"], "data": []}`))
	assert.ErrorContains(t, err, "external_ids")
}

func TestParsePortTableNotJSON(t *testing.T) {
	_, err := parsePortTable([]byte("ovs-vsctl: unix:/var/run/openvswitch/db.sock: database connection failed"))
	assert.ErrorContains(t, err, "malformed")
}

func TestWireValues(t *testing.T) {
	_, err := wireUUID([]any{"uuid", "not-a-uuid"})
	assert.Error(t, err)

	_, err = wireMap([]any{"set", []any{}})
	assert.Error(t, err)

	m, err := wireMap([]any{"map", []any{[]any{"a", "1"}, []any{"b", "2"}}})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, m)
}
