package display

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{4096 + 512, "4.5 KiB"},
		{3 << 20, "3.0 MiB"},
		{5046586572, "4.7 GiB"},
		{1 << 62, "4.0 EiB"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatBytes(tt.in))
		})
	}
}

func TestFormatBytesWithSign(t *testing.T) {
	assert.Equal(t, "- 2.0 KiB", FormatBytesWithSign(-2048))
	assert.Equal(t, "+ 12 B", FormatBytesWithSign(12))
	assert.Equal(t, "0 B", FormatBytesWithSign(0))
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		name        string
		part, whole int64
		want        string
	}{
		{"half", 50, 100, "50%"},
		{"rounds down", 2, 3, "66%"},
		{"grew", 150, 100, "150%"},
		{"zero whole", 10, 0, "100%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatPercent(tt.part, tt.whole))
		})
	}
}
