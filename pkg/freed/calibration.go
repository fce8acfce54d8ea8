package freed

import (
	"fmt"

	"github.com/ssargent/freed/pkg/codec"
)

// Calibration is a 0xDA lens calibration message.
type Calibration struct {
	Cam     uint8
	ShiftX  float64 // Image centre shift
	ShiftY  float64
	ScaleX  float64 // Pixel aspect scale
	ScaleY  float64
	K1      float64 // Radial distortion
	K2      float64
	OffsetX float64 // Mounting offset in metres
	OffsetY float64
	OffsetZ float64
}

// NewCalibration returns an identity calibration addressed to every camera.
func NewCalibration() *Calibration {
	return &Calibration{Cam: 255, ScaleX: 1, ScaleY: 1}
}

// CalibrationFromValues builds a calibration from a decoded record.
func CalibrationFromValues(v codec.Values) (*Calibration, error) {
	r := &valueReader{schema: CalibrationSchema.Name(), values: v}
	c := &Calibration{
		Cam:     uint8(r.unsigned(FieldCam)),
		ShiftX:  r.float("shiftx"),
		ShiftY:  r.float("shifty"),
		ScaleX:  r.float("scalex"),
		ScaleY:  r.float("scaley"),
		K1:      r.float("k1"),
		K2:      r.float("k2"),
		OffsetX: r.float("offsetx"),
		OffsetY: r.float("offsety"),
		OffsetZ: r.float("offsetz"),
	}
	if r.err != nil {
		return nil, r.err
	}
	return c, nil
}

func (c *Calibration) Type() byte { return TypeCalibration }

func (c *Calibration) Schema() *codec.Schema { return CalibrationSchema }

// Values returns the calibration as a generic record.
func (c *Calibration) Values() codec.Values {
	return codec.Values{
		FieldID:   codec.IntValue(int64(TypeCalibration)),
		FieldCam:  codec.IntValue(int64(c.Cam)),
		"shiftx":  codec.FloatValue(c.ShiftX),
		"shifty":  codec.FloatValue(c.ShiftY),
		"scalex":  codec.FloatValue(c.ScaleX),
		"scaley":  codec.FloatValue(c.ScaleY),
		"k1":      codec.FloatValue(c.K1),
		"k2":      codec.FloatValue(c.K2),
		"offsetx": codec.FloatValue(c.OffsetX),
		"offsety": codec.FloatValue(c.OffsetY),
		"offsetz": codec.FloatValue(c.OffsetZ),
	}
}

// MarshalBinary encodes the calibration. Values that do not fit their field
// are zeroed.
func (c *Calibration) MarshalBinary() ([]byte, error) {
	return codec.Encode(CalibrationSchema, c.Values())
}

// UnmarshalBinary decodes a calibration. The type byte and checksum are not
// checked.
func (c *Calibration) UnmarshalBinary(data []byte) error {
	values, err := CalibrationSchema.Decode(data)
	if err != nil {
		return err
	}
	decoded, err := CalibrationFromValues(values)
	if err != nil {
		return err
	}
	*c = *decoded
	return nil
}

func (c *Calibration) String() string {
	return fmt.Sprintf("DA(cam=%d shiftx=%g shifty=%g scalex=%g scaley=%g k1=%g k2=%g offsetx=%g offsety=%g offsetz=%g)",
		c.Cam, c.ShiftX, c.ShiftY, c.ScaleX, c.ScaleY, c.K1, c.K2, c.OffsetX, c.OffsetY, c.OffsetZ)
}
