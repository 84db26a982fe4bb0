package services

import "testing"

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		ok       bool
	}{
		{"MG Road, Bengaluru", "MG Road, Bengaluru", true},
		{"  MG   Road,\tBengaluru \n", "MG Road, Bengaluru", true},
		{"", "", false},
		{"   ", "", false},
		{"Not provided", "", false},
		{" not  provided ", "", false},
		{"Not provided yet", "Not provided yet", true},
	}

	for _, test := range tests {
		address, ok := NormalizeAddress(test.input)
		if address != test.expected || ok != test.ok {
			t.Errorf("For input %q, expected (%q, %v), got (%q, %v)", test.input, test.expected, test.ok, address, ok)
		}
	}
}
