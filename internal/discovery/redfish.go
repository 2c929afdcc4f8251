// Package discovery seeds interface inventory from management
// endpoints. Neighbor facts still arrive through the API; discovery
// only fills in interface names, addresses and current descriptions.
package discovery

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/stmcginnis/gofish"

	"github.com/netauto/configlet-builder/pkg/devices"
)

type RedfishEndpoint struct {
	Endpoint string `json:"endpoint" binding:"required"`
	Username string `json:"username"`
	Password string `json:"password"`
	Insecure bool   `json:"insecure,omitempty"`
}

// CollectInterfaces queries a Redfish endpoint for the ethernet
// interfaces of every system it exposes.
func CollectInterfaces(endpoint RedfishEndpoint) ([]devices.Interface, error) {
	client, err := gofish.Connect(gofish.ClientConfig{
		Endpoint: endpoint.Endpoint,
		Username: endpoint.Username,
		Password: endpoint.Password,
		Insecure: endpoint.Insecure,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to redfish endpoint: %w", err)
	}
	defer client.Logout()

	systems, err := client.Service.Systems()
	if err != nil {
		return nil, fmt.Errorf("listing systems: %w", err)
	}

	var ifaces []devices.Interface
	for _, system := range systems {
		eths, err := system.EthernetInterfaces()
		if err != nil {
			return nil, fmt.Errorf("listing ethernet interfaces for %s: %w", system.ID, err)
		}
		for _, eth := range eths {
			name := eth.Name
			if name == "" {
				name = eth.ID
			}
			ifaces = append(ifaces, devices.Interface{
				Name:        name,
				MACAddress:  eth.MACAddress,
				Description: eth.Description,
			})
		}
	}
	log.Info().
		Str("endpoint", endpoint.Endpoint).
		Int("interfaces", len(ifaces)).
		Msg("Redfish interface discovery complete")
	return ifaces, nil
}

// MergeInterfaces folds discovered inventory into a device's existing
// interface list. Known interfaces keep their neighbor and MAC-table
// facts but pick up the discovered description and address; new ones
// are appended.
func MergeInterfaces(device *devices.Device, discovered []devices.Interface) {
	byName := make(map[string]int, len(device.Interfaces))
	for i := range device.Interfaces {
		byName[device.Interfaces[i].Name] = i
	}
	for _, iface := range discovered {
		if i, ok := byName[iface.Name]; ok {
			device.Interfaces[i].MACAddress = iface.MACAddress
			device.Interfaces[i].Description = iface.Description
			continue
		}
		device.Interfaces = append(device.Interfaces, iface)
	}
}
