// Package configlets models named configuration snippets and the
// builders that produce them from device facts.
package configlets

import (
	"fmt"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"

	"github.com/netauto/configlet-builder/pkg/autodesc"
	"github.com/netauto/configlet-builder/pkg/devices"
)

// Configlet is a named, reusable configuration snippet applied to one
// or more devices.
type Configlet struct {
	ID      uuid.UUID `json:"id,omitempty" format:"uuid"`
	Name    string    `json:"name" binding:"required"`
	Config  string    `json:"config"`
	Note    string    `json:"note,omitempty"`
	Created time.Time `json:"created,omitempty"`
	Updated time.Time `json:"updated,omitempty"`
}

var descriptionStanza = template.Must(template.New("stanza").Parse(
	"interface {{ .Interface }}\n   description {{ .Description }}\n"))

// RenderDescriptions formats a description mapping as interface config
// stanzas, sorted by interface name so output is stable.
func RenderDescriptions(descriptions map[string]string) string {
	names := make([]string, 0, len(descriptions))
	for name := range descriptions {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		stanza := struct {
			Interface   string
			Description string
		}{name, descriptions[name]}
		if err := descriptionStanza.Execute(&sb, stanza); err != nil {
			// The stanza template only touches two strings.
			panic(err)
		}
	}
	return sb.String()
}

// AutoDescriptionName is the configlet name used for a device's
// generated interface descriptions.
func AutoDescriptionName(hostname string) string {
	return hostname + "-auto-description"
}

// BuildAutoDescription runs the description generator over a device's
// interface facts and renders the result as a configlet. The configlet
// is returned unsaved; persisting and applying it belong to the caller.
func BuildAutoDescription(device devices.Device, opts ...autodesc.Option) (Configlet, error) {
	if device.Hostname == "" {
		return Configlet{}, fmt.Errorf("device has no hostname")
	}
	descriptions := autodesc.Generate(device.Interfaces, opts...)
	return Configlet{
		Name:   AutoDescriptionName(device.Hostname),
		Config: RenderDescriptions(descriptions),
		Note:   "generated from neighbor discovery facts",
	}, nil
}
