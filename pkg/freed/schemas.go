package freed

import "github.com/ssargent/freed/pkg/codec"

// Message type tags.
const (
	TypePose        byte = 0xD1
	TypeCalibration byte = 0xDA
)

// Names of the fields shared by every message kind.
const (
	FieldID       = "id"
	FieldCam      = "cam"
	FieldChecksum = "checksum"
)

// Fixed-point divisors.
const (
	AngleScale       = 32768
	PositionScale    = 64000
	CalibrationScale = 256
)

// PoseSchema is the layout of a 0xD1 camera pose message.
var PoseSchema = codec.MustSchema("pose", TypePose, 29,
	codec.NewField(FieldID, 0, 1),
	codec.NewField(FieldCam, 1, 1),
	codec.NewScaledField("pan", 2, 3, AngleScale, true),
	codec.NewScaledField("tilt", 5, 3, AngleScale, true),
	codec.NewScaledField("roll", 8, 3, AngleScale, true),
	codec.NewScaledField("posx", 11, 3, PositionScale, true),
	codec.NewScaledField("posy", 14, 3, PositionScale, true),
	codec.NewScaledField("posz", 17, 3, PositionScale, true),
	codec.NewField("zoom", 20, 3),
	codec.NewField("focus", 23, 3),
	codec.NewField("user", 26, 2),
	codec.NewField(FieldChecksum, 28, 1),
)

// CalibrationSchema is the layout of a 0xDA camera calibration message.
var CalibrationSchema = codec.MustSchema("calibration", TypeCalibration, 30,
	codec.NewField(FieldID, 0, 1),
	codec.NewField(FieldCam, 1, 1),
	codec.NewScaledField("shiftx", 2, 3, CalibrationScale, true),
	codec.NewScaledField("shifty", 5, 3, CalibrationScale, true),
	codec.NewScaledField("scalex", 8, 3, CalibrationScale, true),
	codec.NewScaledField("scaley", 11, 3, CalibrationScale, true),
	codec.NewScaledField("k1", 14, 3, CalibrationScale, true),
	codec.NewScaledField("k2", 17, 3, CalibrationScale, true),
	codec.NewScaledField("offsetx", 20, 3, PositionScale, true),
	codec.NewScaledField("offsety", 23, 3, PositionScale, true),
	codec.NewScaledField("offsetz", 26, 3, PositionScale, true),
	codec.NewField(FieldChecksum, 29, 1),
)
