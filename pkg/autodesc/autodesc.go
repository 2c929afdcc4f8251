// Package autodesc derives interface descriptions from discovered
// neighbor facts. Generate is a pure transform: it signals which
// descriptions should change but never applies them.
package autodesc

import (
	"fmt"
	"net"
	"sort"
	"strings"

	"github.com/netauto/configlet-builder/pkg/devices"
)

// OptOutMarker anywhere in an existing description disables generation
// for that interface.
const OptOutMarker = "no auto-description"

// UnknownOrg is used for MAC identities the resolver cannot place.
const UnknownOrg = "Unknown"

var defaultPrefixes = []string{"Ethernet", "Management"}

type config struct {
	convention NamingConvention
	prefixes   []string
	resolveMAC func(mac string) (string, bool)
}

// Option adjusts formatting policy. None of the options change what
// counts as an eligible interface beyond the documented knobs.
type Option func(*config)

// WithNamingConvention selects short or long interface names for the
// neighbor port portion of generated descriptions.
func WithNamingConvention(c NamingConvention) Option {
	return func(cfg *config) { cfg.convention = c }
}

// WithInterfacePrefixes restricts generation to interfaces whose names
// start with one of the given prefixes.
func WithInterfacePrefixes(prefixes ...string) Option {
	return func(cfg *config) { cfg.prefixes = prefixes }
}

// WithMACResolver supplies the organization lookup used for MAC-only
// neighbor identities.
func WithMACResolver(fn func(mac string) (string, bool)) Option {
	return func(cfg *config) { cfg.resolveMAC = fn }
}

// Generate returns the descriptions that should be set, keyed by
// interface name. Interfaces carrying the opt-out marker never appear
// in the result. Interfaces with no usable facts are omitted rather
// than treated as errors. Identical inputs always produce identical
// output.
func Generate(interfaces []devices.Interface, opts ...Option) map[string]string {
	cfg := config{convention: ShortNames, prefixes: defaultPrefixes}
	for _, opt := range opts {
		opt(&cfg)
	}

	optedOut := make(map[string]bool)
	for _, iface := range interfaces {
		if strings.Contains(iface.Description, OptOutMarker) {
			optedOut[iface.Name] = true
		}
	}

	sorted := make([]devices.Interface, len(interfaces))
	copy(sorted, interfaces)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	result := make(map[string]string)
	seenChannels := make(map[string]bool)
	for _, iface := range sorted {
		if !hasAnyPrefix(iface.Name, cfg.prefixes) || optedOut[iface.Name] {
			continue
		}

		var description string
		switch {
		case len(iface.Neighbors) == 1:
			neighbor := iface.Neighbors[0]
			identity := neighbor.Identity()
			if identity == "" {
				continue
			}
			if isMAC(identity) {
				description = cfg.describeMAC(identity)
				break
			}
			host := shortHostname(identity)

			// A member interface names the port-channel it belongs to;
			// the channel inherits the neighbor name once.
			if channel := memberChannel(iface.Membership); channel != "" && !seenChannels[channel] {
				seenChannels[channel] = true
				if !optedOut[channel] {
					result[channel] = strings.ToUpper(host)
				}
			}

			if port := cfg.convention.Normalize(neighbor.RemotePort); port != "" {
				description = host + ", " + port
			} else {
				description = host
			}
		case len(iface.MACTable) == 1:
			description = cfg.describeMAC(iface.MACTable[0].MACAddress)
		}

		if description != "" {
			result[iface.Name] = strings.ToUpper(description)
		}
	}
	return result
}

func (cfg *config) describeMAC(mac string) string {
	short := shortMAC(mac)
	if short == "" {
		return ""
	}
	org := UnknownOrg
	if cfg.resolveMAC != nil {
		if found, ok := cfg.resolveMAC(mac); ok {
			org = found
		}
	}
	return org + ", " + short
}

func hasAnyPrefix(name string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

func isMAC(s string) bool {
	_, err := net.ParseMAC(s)
	return err == nil
}

// shortMAC renders the last three octets, e.g. "97:88:ce".
func shortMAC(mac string) string {
	hw, err := net.ParseMAC(mac)
	if err != nil || len(hw) < 3 {
		return ""
	}
	tail := hw[len(hw)-3:]
	return fmt.Sprintf("%02x:%02x:%02x", tail[0], tail[1], tail[2])
}

// shortHostname trims an FQDN down to its first label.
func shortHostname(name string) string {
	if i := strings.IndexByte(name, '.'); i > 0 {
		return name[:i]
	}
	return name
}

// memberChannel extracts the channel name from a membership note such
// as "Member of Port-Channel1".
func memberChannel(membership string) string {
	fields := strings.Fields(membership)
	if len(fields) == 3 && fields[0] == "Member" && fields[1] == "of" {
		return fields[2]
	}
	return ""
}
