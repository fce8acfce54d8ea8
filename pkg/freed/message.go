package freed

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ssargent/freed/pkg/codec"
)

// Message is implemented by every FreeD message kind.
type Message interface {
	// Type returns the message type tag.
	Type() byte
	// Schema returns the wire layout of the message kind.
	Schema() *codec.Schema
	// Values returns the message as a generic record, type tag included.
	Values() codec.Values
	MarshalBinary() ([]byte, error)
	UnmarshalBinary(data []byte) error
}

// Kind describes one registered message kind.
type Kind struct {
	Name   string
	Schema *codec.Schema
	New    func() Message
}

// Tag returns the kind's type tag.
func (k Kind) Tag() byte {
	return k.Schema.Tag()
}

// Defaults returns the record of a freshly constructed message of this kind.
func (k Kind) Defaults() codec.Values {
	return k.New().Values()
}

// Populated at init and read-only afterwards.
var registry = []Kind{
	{Name: "pose", Schema: PoseSchema, New: func() Message { return NewPose() }},
	{Name: "calibration", Schema: CalibrationSchema, New: func() Message { return NewCalibration() }},
}

// Kinds returns every registered message kind ordered by type tag.
func Kinds() []Kind {
	return append([]Kind(nil), registry...)
}

// Lookup finds the message kind for a type tag.
func Lookup(tag byte) (Kind, bool) {
	for _, k := range registry {
		if k.Tag() == tag {
			return k, true
		}
	}
	return Kind{}, false
}

// LookupName finds a message kind by name ("pose") or by hex tag ("d1",
// "0xD1"). Matching is case-insensitive.
func LookupName(name string) (Kind, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, k := range registry {
		if k.Name == name {
			return k, true
		}
	}
	tag, err := strconv.ParseUint(strings.TrimPrefix(name, "0x"), 16, 8)
	if err != nil {
		return Kind{}, false
	}
	return Lookup(byte(tag))
}

// Decode decodes a frame into the message kind named by its first byte. The
// checksum is not verified.
func Decode(data []byte) (Message, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFrame
	}
	kind, ok := Lookup(data[0])
	if !ok {
		return nil, fmt.Errorf("%w: 0x%02X", ErrUnknownType, data[0])
	}
	m := kind.New()
	if err := m.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return m, nil
}

// Encode serializes m with the given codec, so callers can choose between
// lenient and strict overflow handling.
func Encode(c *codec.Codec, m Message) ([]byte, error) {
	return c.Encode(m.Schema(), m.Values())
}

// valueReader pulls typed fields out of a record, keeping the first error.
type valueReader struct {
	schema string
	values codec.Values
	err    error
}

func (r *valueReader) get(name string) codec.Value {
	v, ok := r.values[name]
	if !ok && r.err == nil {
		r.err = &codec.FieldError{Schema: r.schema, Field: name, Err: codec.ErrMissingField}
	}
	return v
}

func (r *valueReader) float(name string) float64 {
	return r.get(name).Float64()
}

func (r *valueReader) unsigned(name string) uint64 {
	i := r.get(name).Int64()
	if i < 0 {
		return 0
	}
	return uint64(i)
}
