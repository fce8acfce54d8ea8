package codec

import (
	"errors"
	"fmt"
)

// Schema is the immutable layout of one message kind.
type Schema struct {
	name   string
	tag    byte
	length int
	fields []Field
	index  map[string]int
}

// NewSchema validates the field table and builds a schema. The first field
// must be the one-byte type tag at offset 0 and the last the one-byte
// checksum at length-1. Field ranges must not overlap.
func NewSchema(name string, tag byte, length int, fields ...Field) (*Schema, error) {
	violation := func(format string, args ...interface{}) error {
		return fmt.Errorf("%w: schema %q: %s", ErrSchemaViolation, name, fmt.Sprintf(format, args...))
	}

	if length < 2 {
		return nil, violation("length %d leaves no room for tag and checksum", length)
	}
	if len(fields) < 2 {
		return nil, violation("need at least tag and checksum fields, got %d", len(fields))
	}
	if first := fields[0]; first.Begin != 0 || first.Size != 1 || first.Scaled() || first.Signed {
		return nil, violation("first field %q must be the unsigned tag byte at offset 0", first.Name)
	}
	if last := fields[len(fields)-1]; last.Begin != length-1 || last.Size != 1 || last.Scaled() || last.Signed {
		return nil, violation("last field %q must be the unsigned checksum byte at offset %d", last.Name, length-1)
	}

	owner := make([]string, length)
	index := make(map[string]int, len(fields))
	for i, f := range fields {
		if f.Name == "" {
			return nil, violation("field %d has no name", i)
		}
		if _, dup := index[f.Name]; dup {
			return nil, violation("duplicate field %q", f.Name)
		}
		if f.Size < 1 || f.Size > MaxFieldSize {
			return nil, violation("field %q size %d not in [1, %d]", f.Name, f.Size, MaxFieldSize)
		}
		if f.Scale < 0 {
			return nil, violation("field %q has negative scale %d", f.Name, f.Scale)
		}
		begin, end := f.Range()
		if begin < 0 || end > length {
			return nil, violation("field %q range [%d, %d) outside [0, %d)", f.Name, begin, end, length)
		}
		for b := begin; b < end; b++ {
			if owner[b] != "" {
				return nil, violation("field %q overlaps %q at byte %d", f.Name, owner[b], b)
			}
			owner[b] = f.Name
		}
		index[f.Name] = i
	}

	return &Schema{
		name:   name,
		tag:    tag,
		length: length,
		fields: append([]Field(nil), fields...),
		index:  index,
	}, nil
}

// MustSchema is like NewSchema but panics on an invalid table. It is meant
// for package-level schema definitions.
func MustSchema(name string, tag byte, length int, fields ...Field) *Schema {
	s, err := NewSchema(name, tag, length, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the schema name.
func (s *Schema) Name() string { return s.name }

// Tag returns the message type tag.
func (s *Schema) Tag() byte { return s.tag }

// Length returns the total message length in bytes, checksum included.
func (s *Schema) Length() int { return s.length }

// Fields returns a copy of the field table in declared order.
func (s *Schema) Fields() []Field {
	return append([]Field(nil), s.fields...)
}

// Field looks up a field by name.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// TagField returns the leading type tag field.
func (s *Schema) TagField() Field {
	return s.fields[0]
}

// ChecksumField returns the trailing checksum field.
func (s *Schema) ChecksumField() Field {
	return s.fields[len(s.fields)-1]
}

// Parse extracts every field, checksum included, as a raw integer.
func (s *Schema) Parse(buf []byte) (map[string]int64, error) {
	result := make(map[string]int64, len(s.fields))
	for _, f := range s.fields {
		raw, err := f.Extract(buf)
		if err != nil {
			return nil, s.wrap(err)
		}
		result[f.Name] = raw
	}
	return result, nil
}

// Decode extracts every field and applies fixed-point scaling. The checksum
// is not verified and bytes past Length are ignored.
func (s *Schema) Decode(buf []byte) (Values, error) {
	result := make(Values, len(s.fields))
	for _, f := range s.fields {
		raw, err := f.Extract(buf)
		if err != nil {
			return nil, s.wrap(err)
		}
		result[f.Name] = f.Decode(raw)
	}
	return result, nil
}

// wrap stamps the schema name onto field errors.
func (s *Schema) wrap(err error) error {
	var fe *FieldError
	if errors.As(err, &fe) && fe.Schema == "" {
		return &FieldError{Schema: s.name, Field: fe.Field, Err: fe.Err}
	}
	return err
}
