package maps

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ErrBadProvinceID is returned when a province id string cannot be parsed.
var ErrBadProvinceID = errors.New("invalid province id")

// NewProvinceID packs a colour and the region's sequence number for that colour.
func NewProvinceID(c color.NRGBA, seq int) ProvinceID {
	return ProvinceID(uint64(seq)<<24 | uint64(c.R)<<16 | uint64(c.G)<<8 | uint64(c.B))
}

// RGB returns the colour the id was derived from.
func (id ProvinceID) RGB() RGB {
	return RGB{R: uint8(id >> 16), G: uint8(id >> 8), B: uint8(id)}
}

// Seq returns which disjoint region of its colour the province is, starting at 1.
func (id ProvinceID) Seq() int {
	return int(id >> 24)
}

// String formats the id as "r_g_b", with a "_n" suffix for the nth region
// of a repeated colour.
func (id ProvinceID) String() string {
	if id == NoProvince {
		return "none"
	}
	c := id.RGB()
	s := strconv.Itoa(int(c.R)) + "_" + strconv.Itoa(int(c.G)) + "_" + strconv.Itoa(int(c.B))
	if seq := id.Seq(); seq > 1 {
		s += "_" + strconv.Itoa(seq)
	}
	return s
}

// ParseProvinceID converts the String form back to an id.
func ParseProvinceID(s string) (ProvinceID, error) {
	parts := strings.Split(s, "_")
	if len(parts) != 3 && len(parts) != 4 {
		return NoProvince, fmt.Errorf("%w: %q", ErrBadProvinceID, s)
	}

	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseUint(parts[i], 10, 8)
		if err != nil {
			return NoProvince, fmt.Errorf("%w: %q", ErrBadProvinceID, s)
		}
		ch[i] = uint8(v)
	}

	seq := 1
	if len(parts) == 4 {
		v, err := strconv.ParseUint(parts[3], 10, 32)
		if err != nil || v < 1 {
			return NoProvince, fmt.Errorf("%w: %q", ErrBadProvinceID, s)
		}
		seq = int(v)
	}

	return NewProvinceID(color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: 255}, seq), nil
}

// MarshalText lets ids act as JSON object keys and string values.
func (id ProvinceID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ProvinceID) UnmarshalText(b []byte) error {
	parsed, err := ParseProvinceID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// sameColor reports whether a and b differ by at most tol on every channel.
func sameColor(a, b color.NRGBA, tol uint8) bool {
	return absDiff(a.R, b.R) <= tol && absDiff(a.G, b.G) <= tol && absDiff(a.B, b.B) <= tol
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}

// rgbKey drops alpha so same-coloured regions can be counted.
func rgbKey(c color.NRGBA) uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}
