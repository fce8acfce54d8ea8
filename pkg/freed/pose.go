package freed

import (
	"fmt"

	"github.com/ssargent/freed/pkg/codec"
)

// Pose is a 0xD1 camera orientation and position message.
type Pose struct {
	Cam   uint8   // Camera id, 255 addresses every camera
	Pan   float64 // Degrees
	Tilt  float64 // Degrees
	Roll  float64 // Degrees
	PosX  float64 // Metres
	PosY  float64 // Metres
	PosZ  float64 // Metres
	Zoom  uint32  // Raw encoder count, 24 bits on the wire
	Focus uint32  // Raw encoder count, 24 bits on the wire
	User  uint16  // User defined
}

// NewPose returns a pose addressed to every camera with all axes at zero.
func NewPose() *Pose {
	return &Pose{Cam: 255}
}

// PoseFromValues builds a pose from a decoded record.
func PoseFromValues(v codec.Values) (*Pose, error) {
	r := &valueReader{schema: PoseSchema.Name(), values: v}
	p := &Pose{
		Cam:   uint8(r.unsigned(FieldCam)),
		Pan:   r.float("pan"),
		Tilt:  r.float("tilt"),
		Roll:  r.float("roll"),
		PosX:  r.float("posx"),
		PosY:  r.float("posy"),
		PosZ:  r.float("posz"),
		Zoom:  uint32(r.unsigned("zoom")),
		Focus: uint32(r.unsigned("focus")),
		User:  uint16(r.unsigned("user")),
	}
	if r.err != nil {
		return nil, r.err
	}
	return p, nil
}

func (p *Pose) Type() byte { return TypePose }

func (p *Pose) Schema() *codec.Schema { return PoseSchema }

// Values returns the pose as a generic record.
func (p *Pose) Values() codec.Values {
	return codec.Values{
		FieldID:  codec.IntValue(int64(TypePose)),
		FieldCam: codec.IntValue(int64(p.Cam)),
		"pan":    codec.FloatValue(p.Pan),
		"tilt":   codec.FloatValue(p.Tilt),
		"roll":   codec.FloatValue(p.Roll),
		"posx":   codec.FloatValue(p.PosX),
		"posy":   codec.FloatValue(p.PosY),
		"posz":   codec.FloatValue(p.PosZ),
		"zoom":   codec.IntValue(int64(p.Zoom)),
		"focus":  codec.IntValue(int64(p.Focus)),
		"user":   codec.IntValue(int64(p.User)),
	}
}

// MarshalBinary encodes the pose. Values that do not fit their field are
// zeroed.
func (p *Pose) MarshalBinary() ([]byte, error) {
	return codec.Encode(PoseSchema, p.Values())
}

// UnmarshalBinary decodes a pose. The type byte and checksum are not checked.
func (p *Pose) UnmarshalBinary(data []byte) error {
	values, err := PoseSchema.Decode(data)
	if err != nil {
		return err
	}
	decoded, err := PoseFromValues(values)
	if err != nil {
		return err
	}
	*p = *decoded
	return nil
}

func (p *Pose) String() string {
	return fmt.Sprintf("D1(cam=%d pan=%g tilt=%g roll=%g posx=%g posy=%g posz=%g zoom=%d focus=%d user=%d)",
		p.Cam, p.Pan, p.Tilt, p.Roll, p.PosX, p.PosY, p.PosZ, p.Zoom, p.Focus, p.User)
}
