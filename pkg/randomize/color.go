package randomize

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Kelvin returns the linear RGB color, each channel in [0,1], of a black
// body at the given temperature. It follows Tanner Helland's fit, valid for
// 1000K to 40000K; temperatures outside are clamped.
func Kelvin(temp float64) mgl64.Vec3 {
	t := min(max(temp, 1000), 40000) / 100

	var r, g, b float64
	if t <= 66 {
		r = 255
		g = 99.4708025861*math.Log(t) - 161.1195681661
	} else {
		r = 329.698727446 * math.Pow(t-60, -0.1332047592)
		g = 288.1221695283 * math.Pow(t-60, -0.0755148492)
	}

	switch {
	case t >= 66:
		b = 255
	case t <= 19:
		b = 0
	default:
		b = 138.5177312231*math.Log(t-10) - 305.0447927307
	}

	return mgl64.Vec3{channel(r), channel(g), channel(b)}
}

func channel(v float64) float64 {
	return min(max(v, 0), 255) / 255
}
