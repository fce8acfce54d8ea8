package freed

import (
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"
)

// ParseHex decodes a frame written as hex. Whitespace, ':' '-' '_' '|'
// separators and a leading 0x are ignored.
func ParseHex(input string) ([]byte, error) {
	clean := stripSeparators(input)
	if strings.HasPrefix(clean, "0x") || strings.HasPrefix(clean, "0X") {
		clean = clean[2:]
	}
	if clean == "" {
		return nil, ErrEmptyFrame
	}
	if len(clean)%2 != 0 {
		return nil, fmt.Errorf("hex frame must contain an even number of digits, got %d", len(clean))
	}
	decoded, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("decode hex: %w", err)
	}
	return decoded, nil
}

// FormatHex renders a frame as upper-case hex without separators.
func FormatHex(frame []byte) string {
	return strings.ToUpper(hex.EncodeToString(frame))
}

func stripSeparators(s string) string {
	var builder strings.Builder
	builder.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) || r == ':' || r == '-' || r == '_' || r == '|' {
			continue
		}
		builder.WriteRune(r)
	}
	return builder.String()
}
