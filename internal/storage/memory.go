package storage

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/netauto/configlet-builder/pkg/configlets"
	"github.com/netauto/configlet-builder/pkg/devices"
)

type InMemoryStorage struct {
	mu             sync.RWMutex
	configletItems map[uuid.UUID]configlets.Configlet
	deviceItems    map[uuid.UUID]devices.Device
}

func NewInMemoryStorage() *InMemoryStorage {
	return &InMemoryStorage{
		configletItems: make(map[uuid.UUID]configlets.Configlet),
		deviceItems:    make(map[uuid.UUID]devices.Device),
	}
}

func (s *InMemoryStorage) SaveConfiglet(configletID uuid.UUID, configlet configlets.Configlet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configletItems[configletID] = configlet
	return nil
}

func (s *InMemoryStorage) GetConfiglet(configletID uuid.UUID) (configlets.Configlet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	configlet, ok := s.configletItems[configletID]
	if !ok {
		return configlets.Configlet{}, fmt.Errorf("configlet not found")
	}
	return configlet, nil
}

func (s *InMemoryStorage) UpdateConfiglet(configletID uuid.UUID, configlet configlets.Configlet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.configletItems[configletID]; !ok {
		return fmt.Errorf("configlet not found")
	}
	s.configletItems[configletID] = configlet
	return nil
}

func (s *InMemoryStorage) DeleteConfiglet(configletID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.configletItems[configletID]; !ok {
		return fmt.Errorf("configlet not found")
	}
	delete(s.configletItems, configletID)
	return nil
}

func (s *InMemoryStorage) LookupConfigletByName(name string) (configlets.Configlet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, configlet := range s.configletItems {
		if configlet.Name == name {
			return configlet, nil
		}
	}
	return configlets.Configlet{}, fmt.Errorf("configlet not found")
}

func (s *InMemoryStorage) SaveDevice(deviceID uuid.UUID, device devices.Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deviceItems[deviceID] = device
	return nil
}

func (s *InMemoryStorage) GetDevice(deviceID uuid.UUID) (devices.Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	device, ok := s.deviceItems[deviceID]
	if !ok {
		return devices.Device{}, fmt.Errorf("device not found")
	}
	return device, nil
}

func (s *InMemoryStorage) UpdateDevice(deviceID uuid.UUID, device devices.Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.deviceItems[deviceID]; !ok {
		return fmt.Errorf("device not found")
	}
	s.deviceItems[deviceID] = device
	return nil
}

func (s *InMemoryStorage) DeleteDevice(deviceID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.deviceItems[deviceID]; !ok {
		return fmt.Errorf("device not found")
	}
	delete(s.deviceItems, deviceID)
	return nil
}

func (s *InMemoryStorage) LookupDeviceByHostname(hostname string) (devices.Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, device := range s.deviceItems {
		if device.Hostname == hostname {
			return device, nil
		}
	}
	return devices.Device{}, fmt.Errorf("device not found")
}

func (s *InMemoryStorage) LookupDeviceByMACAddress(mac string) (devices.Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, device := range s.deviceItems {
		if device.MACAddress == mac {
			return device, nil
		}
		for _, iface := range device.Interfaces {
			if iface.MACAddress == mac {
				return device, nil
			}
		}
	}
	return devices.Device{}, fmt.Errorf("device not found")
}

func (s *InMemoryStorage) SearchDevices(hostname, mac string) ([]devices.Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var found []devices.Device
	for _, device := range s.deviceItems {
		if hostname != "" && device.Hostname != hostname {
			continue
		}
		if mac != "" && device.MACAddress != mac {
			continue
		}
		found = append(found, device)
	}
	return found, nil
}
