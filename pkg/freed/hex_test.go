package freed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want []byte
	}{
		{"plain", "D10140", []byte{0xD1, 0x01, 0x40}},
		{"lower case", "d10140", []byte{0xD1, 0x01, 0x40}},
		{"prefixed", "0xD10140", []byte{0xD1, 0x01, 0x40}},
		{"spaced", "D1 01 40\n", []byte{0xD1, 0x01, 0x40}},
		{"colons", "D1:01:40", []byte{0xD1, 0x01, 0x40}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseHex(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseHex_Errors(t *testing.T) {
	_, err := ParseHex("  ")
	assert.ErrorIs(t, err, ErrEmptyFrame)

	_, err = ParseHex("D10")
	assert.Error(t, err)

	_, err = ParseHex("ZZ")
	assert.Error(t, err)
}

func TestFormatHex(t *testing.T) {
	assert.Equal(t, "D10140", FormatHex([]byte{0xD1, 0x01, 0x40}))
	assert.Equal(t, "", FormatHex(nil))
}
