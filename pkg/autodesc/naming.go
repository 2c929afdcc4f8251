package autodesc

import "strings"

// NamingConvention controls how neighbor port identifiers are rendered.
type NamingConvention int

const (
	// ShortNames abbreviates well-known interface type prefixes,
	// e.g. TenGigabitEthernet1/1/3 becomes Te1/1/3.
	ShortNames NamingConvention = iota
	// LongNames passes port identifiers through unmodified.
	LongNames
)

// Ordered so that longer type names match before their substrings.
var shortForms = []struct {
	long  string
	short string
}{
	{"TwentyFiveGigE", "Twe"},
	{"HundredGigE", "Hu"},
	{"FortyGigE", "Fo"},
	{"TenGigabitEthernet", "Te"},
	{"TenGigE", "Te"},
	{"TwoGigabitEthernet", "Tw"},
	{"GigabitEthernet", "Gi"},
	{"FastEthernet", "Fa"},
	{"Ethernet", "Et"},
	{"Management", "Ma"},
	{"Port-Channel", "Po"},
	{"Port-channel", "Po"},
	{"Loopback", "Lo"},
	{"Vlan", "Vl"},
}

// Normalize renders a port identifier per the convention. Identifiers
// with no recognized type prefix pass through unmodified.
func (c NamingConvention) Normalize(port string) string {
	if c != ShortNames || port == "" {
		return port
	}
	for _, form := range shortForms {
		if strings.HasPrefix(port, form.long) {
			return form.short + port[len(form.long):]
		}
	}
	return port
}
