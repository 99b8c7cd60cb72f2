package ovs

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Port carries the fields of an ovs-vsctl Port record this package uses.
type Port struct {
	UUID        uuid.UUID
	Name        string
	ExternalIDs map[string]string
	Interfaces  []uuid.UUID
}

// ovsTable is the shape of ovs-vsctl --format json output: a heading row plus
// one data row per record, cells encoded as OVSDB wire values.
type ovsTable struct {
	Headings []string `json:"headings"`
	Data     [][]any  `json:"data"`
}

func (t *ovsTable) column(name string) (int, error) {
	idx := lo.IndexOf(t.Headings, name)
	if idx < 0 {
		return 0, fmt.Errorf("column %s missing from ovs-vsctl output", name)
	}
	return idx, nil
}

func (c *Client) listPorts() ([]Port, error) {
	out, err := c.runner.Output("ovs-vsctl", "--retry", "--format", "json", "list", "Port")
	if err != nil {
		return nil, fmt.Errorf("failed to list ports: %w", err)
	}
	return parsePortTable(out)
}

func parsePortTable(raw []byte) ([]Port, error) {
	var table ovsTable
	if err := json.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("malformed ovs-vsctl port listing: %w", err)
	}

	uuidCol, err := table.column("_uuid")
	if err != nil {
		return nil, err
	}
	nameCol, err := table.column("name")
	if err != nil {
		return nil, err
	}
	extIDsCol, err := table.column("external_ids")
	if err != nil {
		return nil, err
	}
	ifacesCol, err := table.column("interfaces")
	if err != nil {
		return nil, err
	}

	ports := make([]Port, 0, len(table.Data))
	for _, row := range table.Data {
		if len(row) != len(table.Headings) {
			return nil, fmt.Errorf("port row has %d cells, want %d", len(row), len(table.Headings))
		}
		id, err := wireUUID(row[uuidCol])
		if err != nil {
			return nil, fmt.Errorf("port _uuid: %w", err)
		}
		name, err := wireString(row[nameCol])
		if err != nil {
			return nil, fmt.Errorf("port name: %w", err)
		}
		extIDs, err := wireMap(row[extIDsCol])
		if err != nil {
			return nil, fmt.Errorf("port %s external_ids: %w", name, err)
		}
		ifaces, err := wireUUIDSet(row[ifacesCol])
		if err != nil {
			return nil, fmt.Errorf("port %s interfaces: %w", name, err)
		}
		ports = append(ports, Port{
			UUID:        id,
			Name:        name,
			ExternalIDs: extIDs,
			Interfaces:  ifaces,
		})
	}
	return ports, nil
}
