package codec

import "fmt"

// ChecksumBase is the constant every encoded message sums to, modulo 256.
const ChecksumBase = 0x40

// Checksum computes the trailing checksum byte for b: (0x40 - sum(b)) & 0xFF.
func Checksum(b []byte) byte {
	var sum byte
	for _, c := range b {
		sum += c
	}
	return ChecksumBase - sum
}

// Verify checks that the last byte of msg is the checksum of the bytes before it.
func Verify(msg []byte) error {
	if len(msg) == 0 {
		return fmt.Errorf("%w: empty message", ErrChecksum)
	}
	want := Checksum(msg[:len(msg)-1])
	if got := msg[len(msg)-1]; got != want {
		return fmt.Errorf("%w: 0x%02X != 0x%02X", ErrChecksum, got, want)
	}
	return nil
}
