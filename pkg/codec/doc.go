// Package codec provides declarative fixed-layout message encoding and decoding.
//
// A message kind is described by a Schema: a type tag, a total byte length and
// an ordered list of Field descriptors. Each Field names a big-endian integer
// occupying a fixed byte range of the message, optionally interpreted as a
// fixed-point fraction with an implicit divisor.
//
// # Wire Format
//
//	[Tag(1)][Field]...[Field][Checksum(1)]
//
// Fields:
//   - Tag: message type, by convention also the first field of the schema
//   - Field: 1 to 7 byte big-endian integer, two's complement when signed
//   - Checksum: (0x40 - sum of every preceding byte) & 0xFF
//
// # Fixed-Point Scaling
//
// A field with a scale s decodes a raw integer r as r / s. Encoding multiplies
// by s and truncates toward zero before the integer is written, so 1.9999 at
// scale 32768 becomes 65532 and -1.9999 becomes -65532.
//
// # Usage
//
//	schema := codec.MustSchema("pose", 0xD1, 29,
//	    codec.NewField("id", 0, 1),
//	    codec.NewField("cam", 1, 1),
//	    codec.NewScaledField("pan", 2, 3, 32768, true),
//	    // ...
//	    codec.NewField("checksum", 28, 1),
//	)
//
//	frame, err := codec.Encode(schema, codec.Values{
//	    "cam": codec.IntValue(1),
//	    "pan": codec.FloatValue(0.5),
//	    // ... every other field but id and checksum
//	})
//
//	values, err := schema.Decode(frame)
//
// # Error Handling
//
// Decoding is strict: a buffer shorter than a declared field range fails with
// ErrOutOfBounds and no partial result is returned. Decoding never verifies the
// checksum; call Verify for that.
//
// Encoding degrades per field by default: a value that does not fit its field
// leaves the field zeroed and encoding continues. A Codec built WithStrict
// reports ErrOverflow instead. Every field failure is a *FieldError that
// unwraps to one of the package sentinels.
//
// # Thread Safety
//
// Schemas are immutable once built and Codec instances hold no mutable state,
// so both are safe for concurrent use.
package codec
