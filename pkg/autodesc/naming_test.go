package autodesc

import "testing"

func TestShortNamesNormalize(t *testing.T) {
	cases := []struct {
		port string
		want string
	}{
		{"TenGigabitEthernet1/1/3", "Te1/1/3"},
		{"GigabitEthernet0/1", "Gi0/1"},
		{"FastEthernet0/24", "Fa0/24"},
		{"Ethernet49/1", "Et49/1"},
		{"HundredGigE0/0/0/1", "Hu0/0/0/1"},
		{"FortyGigE1/0/1", "Fo1/0/1"},
		{"TwentyFiveGigE1/0/2", "Twe1/0/2"},
		{"Management1", "Ma1"},
		{"Port-Channel10", "Po10"},
		{"Port-channel10", "Po10"},
		{"Vlan100", "Vl100"},
		{"xe-0/0/1", "xe-0/0/1"}, // unknown prefix passes through
		{"", ""},
	}

	for _, tc := range cases {
		if got := ShortNames.Normalize(tc.port); got != tc.want {
			t.Errorf("ShortNames.Normalize(%q) = %q, want %q", tc.port, got, tc.want)
		}
	}
}

func TestLongNamesNormalize(t *testing.T) {
	if got := LongNames.Normalize("TenGigabitEthernet1/1/3"); got != "TenGigabitEthernet1/1/3" {
		t.Errorf("LongNames must pass through, got %q", got)
	}
}
