// Package freed defines the FreeD camera-tracking messages on top of the
// codec package.
//
// Two message kinds are supported:
//
//	0xD1  Pose         29 bytes  camera orientation, position and lens state
//	0xDA  Calibration  30 bytes  lens distortion and mounting offsets
//
// Angles are carried in degrees with a divisor of 32768, positions in metres
// with a divisor of 64000, and calibration terms with a divisor of 256. Zoom,
// focus and user data are plain unsigned integers.
//
// Decode dispatches on the leading type byte; Pose and Calibration also
// implement encoding.BinaryMarshaler and encoding.BinaryUnmarshaler directly.
package freed
