package codec

import "errors"

// Observer is notified whenever a lenient codec drops a field that does not
// fit its byte range.
type Observer interface {
	FieldDegraded(schema, field string, err error)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(schema, field string, err error)

// FieldDegraded calls fn.
func (fn ObserverFunc) FieldDegraded(schema, field string, err error) {
	fn(schema, field, err)
}

// Option configures a Codec.
type Option func(*Codec)

// WithStrict makes overflowing fields fail the encode instead of being zeroed.
func WithStrict(strict bool) Option {
	return func(c *Codec) {
		c.strict = strict
	}
}

// WithObserver registers an observer for degraded fields.
func WithObserver(o Observer) Option {
	return func(c *Codec) {
		c.observer = o
	}
}

// Codec encodes Values against a Schema
type Codec struct {
	strict   bool
	observer Observer
}

// NewCodec creates a codec. Without options it is lenient: overflowing
// fields are left zeroed and encoding carries on.
func NewCodec(opts ...Option) *Codec {
	c := &Codec{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultCodec = NewCodec()

// Encode encodes values with the lenient default codec.
func Encode(s *Schema, values Values) ([]byte, error) {
	return defaultCodec.Encode(s, values)
}

// Strict reports whether the codec rejects overflowing fields.
func (c *Codec) Strict() bool {
	return c.strict
}

// Encode serializes values into a new buffer of s.Length() bytes. Every field
// but the trailing checksum is placed in declared order, then the checksum
// is computed over all preceding bytes. A missing tag value defaults to the
// schema tag; any other missing field is an error. Keys not in the schema
// are ignored.
func (c *Codec) Encode(s *Schema, values Values) ([]byte, error) {
	buf := make([]byte, s.length)
	last := len(s.fields) - 1

	for i, f := range s.fields[:last] {
		v, ok := values[f.Name]
		if !ok {
			if i != 0 {
				return nil, &FieldError{Schema: s.name, Field: f.Name, Err: ErrMissingField}
			}
			v = IntValue(int64(s.tag))
		}

		raw, err := f.Unscale(v)
		if err == nil {
			err = f.Place(raw, buf)
		}
		if err == nil {
			continue
		}

		err = s.wrap(err)
		if errors.Is(err, ErrOverflow) && !c.strict {
			if c.observer != nil {
				c.observer.FieldDegraded(s.name, f.Name, err)
			}
			continue
		}
		return nil, err
	}

	chk := s.fields[last]
	buf[chk.Begin] = Checksum(buf[:chk.Begin])
	return buf, nil
}
