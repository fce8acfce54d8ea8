package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is one decoded field value. Scaled fields decode to real values,
// plain fields to integers.
type Value struct {
	i    int64
	f    float64
	real bool
}

// Values is the generic record of a message, keyed by field name.
type Values map[string]Value

// IntValue returns an integer value.
func IntValue(v int64) Value {
	return Value{i: v}
}

// FloatValue returns a real value.
func FloatValue(v float64) Value {
	return Value{f: v, real: true}
}

// IsFloat reports whether v holds a real value.
func (v Value) IsFloat() bool {
	return v.real
}

// Int64 returns v as an integer, truncating real values toward zero.
// Values outside the int64 range saturate.
func (v Value) Int64() int64 {
	if !v.real {
		return v.i
	}
	t := math.Trunc(v.f)
	switch {
	case math.IsNaN(t):
		return 0
	case t >= math.MaxInt64:
		return math.MaxInt64
	case t <= math.MinInt64:
		return math.MinInt64
	}
	return int64(t)
}

// Float64 returns v as a real value.
func (v Value) Float64() float64 {
	if v.real {
		return v.f
	}
	return float64(v.i)
}

func (v Value) String() string {
	if v.real {
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	}
	return strconv.FormatInt(v.i, 10)
}

// MarshalJSON encodes v as a JSON number.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.real {
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return nil, fmt.Errorf("%w: %v is not representable in JSON", ErrInvalidValue, v.f)
		}
		return []byte(strconv.FormatFloat(v.f, 'g', -1, 64)), nil
	}
	return []byte(strconv.FormatInt(v.i, 10)), nil
}

// UnmarshalJSON decodes a JSON number. Numbers written without a fraction or
// exponent become integers.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var n json.Number
	if err := dec.Decode(&n); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidValue, data)
	}
	parsed, err := ParseValue(n.String())
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ParseValue parses a decimal or 0x-prefixed hex literal. Literals with a
// fraction or exponent become real values, everything else an integer.
func ParseValue(s string) (Value, error) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return IntValue(i), nil
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		if i, err := strconv.ParseInt(s[2:], 16, 64); err == nil {
			return IntValue(i), nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Value{}, fmt.Errorf("%w: %q is not a number", ErrInvalidValue, s)
	}
	return FloatValue(f), nil
}
