package configlets

import (
	"strings"
	"testing"

	"github.com/netauto/configlet-builder/pkg/devices"
)

func TestRenderDescriptions(t *testing.T) {
	got := RenderDescriptions(map[string]string{
		"Ethernet2": "SW-CORE, ET2",
		"Ethernet1": "SW-CORE, ET1",
	})
	want := "interface Ethernet1\n   description SW-CORE, ET1\n" +
		"interface Ethernet2\n   description SW-CORE, ET2\n"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderDescriptionsEmpty(t *testing.T) {
	if got := RenderDescriptions(nil); got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
}

func TestBuildAutoDescription(t *testing.T) {
	device := devices.Device{
		Hostname: "leaf1",
		Interfaces: []devices.Interface{
			{
				Name: "Ethernet6/3",
				Neighbors: []devices.Neighbor{
					{DeviceName: "sw-garage", RemotePort: "TenGigabitEthernet1/1/3"},
				},
			},
			{Name: "Ethernet7", Description: "no auto-description"},
		},
	}

	configlet, err := BuildAutoDescription(device)
	if err != nil {
		t.Fatalf("BuildAutoDescription failed: %v", err)
	}
	if configlet.Name != "leaf1-auto-description" {
		t.Errorf("got name %q", configlet.Name)
	}
	if !strings.Contains(configlet.Config, "description SW-GARAGE, TE1/1/3") {
		t.Errorf("missing generated description in:\n%s", configlet.Config)
	}
	if strings.Contains(configlet.Config, "Ethernet7") {
		t.Errorf("opted-out interface leaked into:\n%s", configlet.Config)
	}
}

func TestBuildAutoDescriptionRequiresHostname(t *testing.T) {
	if _, err := BuildAutoDescription(devices.Device{}); err == nil {
		t.Error("expected an error for a device with no hostname")
	}
}
