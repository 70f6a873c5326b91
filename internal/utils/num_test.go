package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFloat(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"2", 2, true},
		{"2345.6", 2345.6, true},
		{"1.234,50", 1234.50, true},
		{"197 ,00", 197, true},
		{"1 234,5", 1234.5, true}, // NBSP grouping
		{"-12,5", -12.5, true},
		{"  42  ", 42, true},
		{"", 0, false},
		{"n/d", 0, false},
		{"-", 0, false},
		{".", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseFloat(c.in)
		assert.Equal(t, c.ok, ok, "input %q", c.in)
		if c.ok {
			assert.InDelta(t, c.want, got, 1e-9, "input %q", c.in)
		}
	}
}
