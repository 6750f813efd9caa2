package shared

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatRupees(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "₹0.00"},
		{"2000", "₹2,000.00"},
		{"1180.5", "₹1,180.50"},
		{"99.999", "₹100.00"},
		{"-250.25", "-₹250.25"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatRupees(decimal.RequireFromString(tt.in)))
		})
	}
}
