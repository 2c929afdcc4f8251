package devices

import "github.com/google/uuid"

// Neighbor is the identity of a device discovered on an interface,
// typically through LLDP. When the neighbor did not advertise a system
// name, ChassisID carries whatever identity was seen on the wire, which
// is usually a MAC address.
type Neighbor struct {
	DeviceName string `json:"device_name,omitempty"`
	ChassisID  string `json:"chassis_id,omitempty"`
	RemotePort string `json:"remote_port,omitempty"`
}

// Identity returns the best available name for the neighbor: the
// advertised system name when present, the chassis ID otherwise.
func (n Neighbor) Identity() string {
	if n.DeviceName != "" {
		return n.DeviceName
	}
	return n.ChassisID
}

// MACTableEntry is a single address learned on an interface.
type MACTableEntry struct {
	Interface  string `json:"interface,omitempty"`
	MACAddress string `json:"mac_address" format:"mac-address" binding:"required"`
	VLAN       int    `json:"vlan,omitempty"`
}

// Interface is a configuration target on a device, annotated with any
// facts discovered for it.
type Interface struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description,omitempty"`
	MACAddress  string          `json:"mac_address,omitempty" format:"mac-address"`
	Membership  string          `json:"membership,omitempty"` // e.g. "Member of Port-Channel1"
	Neighbors   []Neighbor      `json:"neighbors,omitempty"`
	MACTable    []MACTableEntry `json:"mac_table,omitempty"`
}

// Device is a managed network device and its interface inventory.
type Device struct {
	ID          uuid.UUID   `json:"id,omitempty" format:"uuid"`
	Hostname    string      `json:"hostname" binding:"required"`
	MACAddress  string      `json:"mac_address,omitempty" format:"mac-address"`
	IPv4Address string      `json:"ipv4_address,omitempty" format:"ipv4"`
	Interfaces  []Interface `json:"interfaces,omitempty"`
}

// AttachNeighbors merges discovered neighbors into the matching
// interfaces. Neighbors for unknown interfaces are ignored.
func AttachNeighbors(ifaces []Interface, neighbors map[string][]Neighbor) {
	for i := range ifaces {
		if found, ok := neighbors[ifaces[i].Name]; ok {
			ifaces[i].Neighbors = found
		}
	}
}

// AttachMACTable assigns learned addresses to the interfaces that
// learned them. Entries for unknown interfaces are ignored.
func AttachMACTable(ifaces []Interface, entries []MACTableEntry) {
	byName := make(map[string]int, len(ifaces))
	for i := range ifaces {
		byName[ifaces[i].Name] = i
	}
	for _, entry := range entries {
		if i, ok := byName[entry.Interface]; ok {
			ifaces[i].MACTable = append(ifaces[i].MACTable, entry)
		}
	}
}
