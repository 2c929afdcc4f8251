package storage

import (
	"github.com/google/uuid"

	"github.com/netauto/configlet-builder/pkg/configlets"
	"github.com/netauto/configlet-builder/pkg/devices"
)

type Storage interface {
	SaveConfiglet(configletID uuid.UUID, configlet configlets.Configlet) error
	GetConfiglet(configletID uuid.UUID) (configlets.Configlet, error)
	UpdateConfiglet(configletID uuid.UUID, configlet configlets.Configlet) error
	DeleteConfiglet(configletID uuid.UUID) error

	LookupConfigletByName(name string) (configlets.Configlet, error)

	SaveDevice(deviceID uuid.UUID, device devices.Device) error
	GetDevice(deviceID uuid.UUID) (devices.Device, error)
	UpdateDevice(deviceID uuid.UUID, device devices.Device) error
	DeleteDevice(deviceID uuid.UUID) error

	LookupDeviceByHostname(hostname string) (devices.Device, error)
	LookupDeviceByMACAddress(mac string) (devices.Device, error)
	SearchDevices(hostname, mac string) ([]devices.Device, error)
}
