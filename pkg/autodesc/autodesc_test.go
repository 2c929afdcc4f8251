package autodesc

import (
	"reflect"
	"testing"

	"github.com/netauto/configlet-builder/pkg/devices"
)

func TestGenerateNeighborWithPort(t *testing.T) {
	interfaces := []devices.Interface{
		{
			Name: "Ethernet6/3",
			Neighbors: []devices.Neighbor{
				{DeviceName: "sw-garage", RemotePort: "TenGigabitEthernet1/1/3"},
			},
		},
	}

	result := Generate(interfaces)
	if got := result["Ethernet6/3"]; got != "SW-GARAGE, TE1/1/3" {
		t.Errorf("got %q, want %q", got, "SW-GARAGE, TE1/1/3")
	}
}

func TestGenerateNeighborNameOnly(t *testing.T) {
	interfaces := []devices.Interface{
		{
			Name:      "Ethernet1",
			Neighbors: []devices.Neighbor{{DeviceName: "sw-garage"}},
		},
	}

	result := Generate(interfaces)
	if got := result["Ethernet1"]; got != "SW-GARAGE" {
		t.Errorf("got %q, want %q", got, "SW-GARAGE")
	}
}

func TestGenerateShortensFQDN(t *testing.T) {
	interfaces := []devices.Interface{
		{
			Name: "Ethernet2",
			Neighbors: []devices.Neighbor{
				{DeviceName: "sw-core.example.net", RemotePort: "Ethernet49/1"},
			},
		},
	}

	result := Generate(interfaces)
	if got := result["Ethernet2"]; got != "SW-CORE, ET49/1" {
		t.Errorf("got %q, want %q", got, "SW-CORE, ET49/1")
	}
}

func TestGenerateLongNames(t *testing.T) {
	interfaces := []devices.Interface{
		{
			Name: "Ethernet6/3",
			Neighbors: []devices.Neighbor{
				{DeviceName: "sw-garage", RemotePort: "TenGigabitEthernet1/1/3"},
			},
		},
	}

	result := Generate(interfaces, WithNamingConvention(LongNames))
	if got := result["Ethernet6/3"]; got != "SW-GARAGE, TENGIGABITETHERNET1/1/3" {
		t.Errorf("got %q, want %q", got, "SW-GARAGE, TENGIGABITETHERNET1/1/3")
	}
}

func TestGenerateMACIdentity(t *testing.T) {
	interfaces := []devices.Interface{
		{
			Name:      "Ethernet7/1",
			Neighbors: []devices.Neighbor{{ChassisID: "28:4f:8c:97:88:ce"}},
		},
	}

	resolver := func(mac string) (string, bool) {
		if mac != "28:4f:8c:97:88:ce" {
			t.Errorf("resolver called with %q", mac)
		}
		return "IntelCor", true
	}

	result := Generate(interfaces, WithMACResolver(resolver))
	if got := result["Ethernet7/1"]; got != "INTELCOR, 97:88:CE" {
		t.Errorf("got %q, want %q", got, "INTELCOR, 97:88:CE")
	}
}

func TestGenerateMACIdentityUnresolved(t *testing.T) {
	interfaces := []devices.Interface{
		{
			Name:      "Ethernet7/1",
			Neighbors: []devices.Neighbor{{DeviceName: "28:4f:8c:97:88:ce"}},
		},
	}

	result := Generate(interfaces)
	if got := result["Ethernet7/1"]; got != "UNKNOWN, 97:88:CE" {
		t.Errorf("got %q, want %q", got, "UNKNOWN, 97:88:CE")
	}
}

func TestGenerateOptOut(t *testing.T) {
	interfaces := []devices.Interface{
		{
			Name:        "Ethernet3",
			Description: "uplink, no auto-description",
			Neighbors:   []devices.Neighbor{{DeviceName: "sw-garage", RemotePort: "Ethernet1"}},
		},
	}

	result := Generate(interfaces)
	if _, ok := result["Ethernet3"]; ok {
		t.Errorf("opted-out interface must not appear in result, got %v", result)
	}
}

func TestGenerateNoFacts(t *testing.T) {
	interfaces := []devices.Interface{
		{Name: "Ethernet4"},
		{Name: "Ethernet5", Neighbors: []devices.Neighbor{{}, {}}},
	}

	result := Generate(interfaces)
	if len(result) != 0 {
		t.Errorf("expected empty result, got %v", result)
	}
}

func TestGeneratePrefixFilter(t *testing.T) {
	interfaces := []devices.Interface{
		{Name: "Vlan100", Neighbors: []devices.Neighbor{{DeviceName: "sw-garage"}}},
		{Name: "Management1", Neighbors: []devices.Neighbor{{DeviceName: "sw-oob"}}},
	}

	result := Generate(interfaces)
	if _, ok := result["Vlan100"]; ok {
		t.Error("Vlan interface should be filtered out")
	}
	if got := result["Management1"]; got != "SW-OOB" {
		t.Errorf("got %q, want %q", got, "SW-OOB")
	}
}

func TestGenerateMACTableFallback(t *testing.T) {
	interfaces := []devices.Interface{
		{
			Name:     "Ethernet8",
			MACTable: []devices.MACTableEntry{{MACAddress: "28:4f:8c:97:88:ce"}},
		},
		{
			Name: "Ethernet9",
			MACTable: []devices.MACTableEntry{
				{MACAddress: "28:4f:8c:00:00:01"},
				{MACAddress: "28:4f:8c:00:00:02"},
			},
		},
	}

	resolver := func(string) (string, bool) { return "IntelCor", true }
	result := Generate(interfaces, WithMACResolver(resolver))
	if got := result["Ethernet8"]; got != "INTELCOR, 97:88:CE" {
		t.Errorf("got %q, want %q", got, "INTELCOR, 97:88:CE")
	}
	if _, ok := result["Ethernet9"]; ok {
		t.Error("interface with multiple learned addresses should be skipped")
	}
}

func TestGeneratePortChannelPropagation(t *testing.T) {
	interfaces := []devices.Interface{
		{
			Name:       "Ethernet2",
			Membership: "Member of Port-Channel1",
			Neighbors:  []devices.Neighbor{{DeviceName: "sw-other", RemotePort: "Ethernet2"}},
		},
		{
			Name:       "Ethernet1",
			Membership: "Member of Port-Channel1",
			Neighbors:  []devices.Neighbor{{DeviceName: "sw-core", RemotePort: "Ethernet1"}},
		},
	}

	result := Generate(interfaces)
	// Members are processed in name order, so the channel takes the
	// first member's neighbor.
	if got := result["Port-Channel1"]; got != "SW-CORE" {
		t.Errorf("got %q, want %q", got, "SW-CORE")
	}
}

func TestGeneratePortChannelOptOut(t *testing.T) {
	interfaces := []devices.Interface{
		{Name: "Port-Channel1", Description: "no auto-description"},
		{
			Name:       "Ethernet1",
			Membership: "Member of Port-Channel1",
			Neighbors:  []devices.Neighbor{{DeviceName: "sw-core", RemotePort: "Ethernet1"}},
		},
	}

	result := Generate(interfaces)
	if _, ok := result["Port-Channel1"]; ok {
		t.Errorf("opted-out port-channel must not appear in result, got %v", result)
	}
	if got := result["Ethernet1"]; got != "SW-CORE, ET1" {
		t.Errorf("got %q, want %q", got, "SW-CORE, ET1")
	}
}

func TestGenerateIdempotent(t *testing.T) {
	interfaces := []devices.Interface{
		{
			Name:      "Ethernet1",
			Neighbors: []devices.Neighbor{{DeviceName: "sw-core", RemotePort: "Ethernet49/1"}},
		},
		{Name: "Ethernet2", Description: "no auto-description"},
		{
			Name:      "Ethernet3",
			Neighbors: []devices.Neighbor{{ChassisID: "28:4f:8c:97:88:ce"}},
		},
	}

	first := Generate(interfaces)
	second := Generate(interfaces)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("results differ between runs: %v vs %v", first, second)
	}
}
