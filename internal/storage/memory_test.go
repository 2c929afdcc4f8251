package storage

import (
	"testing"

	"github.com/google/uuid"

	"github.com/netauto/configlet-builder/pkg/configlets"
	"github.com/netauto/configlet-builder/pkg/devices"
)

func TestInMemoryConfiglets(t *testing.T) {
	store := NewInMemoryStorage()

	id := uuid.New()
	configlet := configlets.Configlet{ID: id, Name: "leaf1-auto-description", Config: "interface Ethernet1\n"}
	if err := store.SaveConfiglet(id, configlet); err != nil {
		t.Fatalf("SaveConfiglet failed: %v", err)
	}

	got, err := store.GetConfiglet(id)
	if err != nil {
		t.Fatalf("GetConfiglet failed: %v", err)
	}
	if got.Name != configlet.Name {
		t.Errorf("got %q, want %q", got.Name, configlet.Name)
	}

	byName, err := store.LookupConfigletByName("leaf1-auto-description")
	if err != nil {
		t.Fatalf("LookupConfigletByName failed: %v", err)
	}
	if byName.ID != id {
		t.Errorf("got %v, want %v", byName.ID, id)
	}

	configlet.Config = "interface Ethernet2\n"
	if err := store.UpdateConfiglet(id, configlet); err != nil {
		t.Fatalf("UpdateConfiglet failed: %v", err)
	}

	if err := store.DeleteConfiglet(id); err != nil {
		t.Fatalf("DeleteConfiglet failed: %v", err)
	}
	if _, err := store.GetConfiglet(id); err == nil {
		t.Error("expected not found after delete")
	}
	if err := store.UpdateConfiglet(id, configlet); err == nil {
		t.Error("expected update of missing configlet to fail")
	}
}

func TestInMemoryDevices(t *testing.T) {
	store := NewInMemoryStorage()

	id := uuid.New()
	device := devices.Device{
		ID:         id,
		Hostname:   "leaf1",
		MACAddress: "00:11:22:33:44:55",
		Interfaces: []devices.Interface{
			{Name: "Ethernet1", MACAddress: "00:11:22:33:44:56"},
		},
	}
	if err := store.SaveDevice(id, device); err != nil {
		t.Fatalf("SaveDevice failed: %v", err)
	}

	if _, err := store.LookupDeviceByHostname("leaf1"); err != nil {
		t.Errorf("LookupDeviceByHostname failed: %v", err)
	}
	if _, err := store.LookupDeviceByMACAddress("00:11:22:33:44:55"); err != nil {
		t.Errorf("lookup by chassis MAC failed: %v", err)
	}
	if _, err := store.LookupDeviceByMACAddress("00:11:22:33:44:56"); err != nil {
		t.Errorf("lookup by interface MAC failed: %v", err)
	}
	if _, err := store.LookupDeviceByMACAddress("ff:ff:ff:ff:ff:ff"); err == nil {
		t.Error("expected miss for unknown MAC")
	}

	found, err := store.SearchDevices("leaf1", "")
	if err != nil || len(found) != 1 {
		t.Errorf("SearchDevices = (%v, %v)", found, err)
	}
	found, err = store.SearchDevices("leaf2", "")
	if err != nil || len(found) != 0 {
		t.Errorf("SearchDevices for unknown host = (%v, %v)", found, err)
	}

	if err := store.DeleteDevice(id); err != nil {
		t.Fatalf("DeleteDevice failed: %v", err)
	}
	if _, err := store.GetDevice(id); err == nil {
		t.Error("expected not found after delete")
	}
}
