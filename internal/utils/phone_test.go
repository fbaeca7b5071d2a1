package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0821234567", "+27821234567"},
		{"082 123 4567", "+27821234567"},
		{"082-123-4567", "+27821234567"},
		{"27821234567", "+27821234567"},
		{"+27821234567", "+27821234567"},
		{"+44 20 7946 0958", "+442079460958"},
		{"821234567", "+27821234567"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizePhone(tt.in), "input %q", tt.in)
	}
}
