// Package oui resolves MAC addresses to their registered organizations
// using the Wireshark manuf list.
package oui

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"regexp"
)

// Registrations come in 24, 28 and 36 bit block sizes.
const (
	oui24Mask = 0xFFFFFF000000
	oui28Mask = 0xFFFFFFF00000
	oui36Mask = 0xFFFFFFFFF000
)

// Longest prefix first so more specific registrations win.
var lookupMasks = [...]uint64{oui36Mask, oui28Mask, oui24Mask}

var manufLine = regexp.MustCompile(`^(?P<oui>([0-9A-Fa-f]{2}[:-]){2,5}[0-9A-Fa-f]{2})(/\d+)?\s+(?P<org>\S+)`)

// Database maps bare-hex OUI prefixes (padded to 48 bits) to the short
// organization name from the manuf list.
type Database map[string]string

// ParseManuf reads the Wireshark manuf format: one registration per
// line, `<prefix>[/<bits>]<whitespace><short name> <full name>`.
// Lines that do not match (comments, blanks) are skipped.
func ParseManuf(r io.Reader) (Database, error) {
	db := make(Database)
	ouiIdx := manufLine.SubexpIndex("oui")
	orgIdx := manufLine.SubexpIndex("org")

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		match := manufLine.FindStringSubmatch(scanner.Text())
		if match == nil {
			continue
		}
		prefix := match[ouiIdx]
		// Pad 24-bit prefixes out to a full address for parsing.
		for octets := (len(prefix) + 1) / 3; octets < 6; octets++ {
			prefix += ":00"
		}
		hw, err := net.ParseMAC(prefix)
		if err != nil {
			continue
		}
		key := bareKey(macValue(hw))
		// The IEEE placeholder name loses to any later, real entry.
		if existing, ok := db[key]; !ok || existing == "IEEERegi" {
			db[key] = match[orgIdx]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return db, nil
}

// Lookup returns the registered organization for a MAC address,
// checking 36, 28 and 24 bit blocks in that order.
func (db Database) Lookup(mac string) (string, bool) {
	hw, err := net.ParseMAC(mac)
	if err != nil || len(hw) < 6 {
		return "", false
	}
	value := macValue(hw)
	for _, mask := range lookupMasks {
		if org, ok := db[bareKey(value&mask)]; ok {
			return org, true
		}
	}
	return "", false
}

// ShortID renders the trailing three octets of a MAC address, the form
// used when only an unresolved identity is known.
func ShortID(mac string) string {
	hw, err := net.ParseMAC(mac)
	if err != nil || len(hw) < 3 {
		return ""
	}
	tail := hw[len(hw)-3:]
	return fmt.Sprintf("%02x:%02x:%02x", tail[0], tail[1], tail[2])
}

func macValue(hw net.HardwareAddr) uint64 {
	var v uint64
	for _, b := range hw[:6] {
		v = v<<8 | uint64(b)
	}
	return v
}

func bareKey(v uint64) string {
	return fmt.Sprintf("%012X", v)
}
