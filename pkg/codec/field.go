package codec

import (
	"math"
)

// MaxFieldSize is the widest field, in bytes, a schema may declare.
const MaxFieldSize = 7

// Field describes one fixed-width big-endian integer within a message.
type Field struct {
	Name   string // Unique within a schema
	Begin  int    // Byte offset into the message
	Size   int    // Width in bytes
	Scale  int    // Fixed-point divisor, 0 for plain integers
	Signed bool   // Two's complement when set
}

// NewField creates an unsigned, unscaled field.
func NewField(name string, begin, size int) Field {
	return Field{Name: name, Begin: begin, Size: size}
}

// NewSignedField creates a signed, unscaled field.
func NewSignedField(name string, begin, size int) Field {
	return Field{Name: name, Begin: begin, Size: size, Signed: true}
}

// NewScaledField creates a fixed-point field with the given divisor.
func NewScaledField(name string, begin, size, scale int, signed bool) Field {
	return Field{Name: name, Begin: begin, Size: size, Scale: scale, Signed: signed}
}

// Range returns the half-open byte range [begin, end) covered by the field.
func (f Field) Range() (begin, end int) {
	return f.Begin, f.Begin + f.Size
}

// Scaled reports whether the field carries a fixed-point fraction.
func (f Field) Scaled() bool {
	return f.Scale > 0
}

// checkSize rejects widths a schema would refuse, for fields used on their own.
func (f Field) checkSize() error {
	if f.Size < 1 || f.Size > MaxFieldSize {
		return fieldError(f.Name, ErrSchemaViolation, "size %d not in [1, %d]", f.Size, MaxFieldSize)
	}
	return nil
}

// Limits returns the smallest and largest raw integer the field can hold.
// It is only meaningful for sizes in [1, MaxFieldSize].
func (f Field) Limits() (lo, hi int64) {
	bits := 8 * uint(f.Size)
	if f.Signed {
		return -1 << (bits - 1), 1<<(bits-1) - 1
	}
	return 0, 1<<bits - 1
}

// Extract reads the field's raw integer from buf.
func (f Field) Extract(buf []byte) (int64, error) {
	if err := f.checkSize(); err != nil {
		return 0, err
	}
	begin, end := f.Range()
	if begin < 0 || end > len(buf) {
		return 0, fieldError(f.Name, ErrOutOfBounds, "range [%d, %d) exceeds %d byte buffer", begin, end, len(buf))
	}

	var u uint64
	for _, b := range buf[begin:end] {
		u = u<<8 | uint64(b)
	}
	if f.Signed {
		shift := 64 - 8*uint(f.Size)
		return int64(u<<shift) >> shift, nil
	}
	return int64(u), nil
}

// Place writes value into the field's byte range of buf. The range is left
// untouched when value does not fit.
func (f Field) Place(value int64, buf []byte) error {
	if err := f.checkSize(); err != nil {
		return err
	}
	begin, end := f.Range()
	if begin < 0 || end > len(buf) {
		return fieldError(f.Name, ErrOutOfBounds, "range [%d, %d) exceeds %d byte buffer", begin, end, len(buf))
	}
	lo, hi := f.Limits()
	if value < lo || value > hi {
		return fieldError(f.Name, ErrOverflow, "%d not in [%d, %d]", value, lo, hi)
	}

	u := uint64(value)
	for i := end - 1; i >= begin; i-- {
		buf[i] = byte(u)
		u >>= 8
	}
	return nil
}

// Decode converts a raw integer into the field's value: raw / Scale for
// scaled fields, the integer itself otherwise.
func (f Field) Decode(raw int64) Value {
	if f.Scaled() {
		return FloatValue(float64(raw) / float64(f.Scale))
	}
	return IntValue(raw)
}

// Unscale converts v into the raw integer to be placed, multiplying by Scale
// and truncating toward zero.
func (f Field) Unscale(v Value) (int64, error) {
	if !v.IsFloat() {
		i := v.Int64()
		if !f.Scaled() {
			return i, nil
		}
		s := int64(f.Scale)
		if i > math.MaxInt64/s || i < math.MinInt64/s {
			return 0, fieldError(f.Name, ErrOverflow, "%d * %d exceeds int64", i, s)
		}
		return i * s, nil
	}

	x := v.Float64()
	if math.IsNaN(x) {
		return 0, fieldError(f.Name, ErrInvalidValue, "NaN")
	}
	if f.Scaled() {
		x *= float64(f.Scale)
	}
	t := math.Trunc(x)
	// 2^63 is exactly representable, MaxInt64 is not.
	if t >= math.MaxInt64 || t < math.MinInt64 {
		return 0, fieldError(f.Name, ErrOverflow, "%v exceeds int64", x)
	}
	return int64(t), nil
}
