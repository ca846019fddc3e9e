package render

import (
	"hash/fnv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// ResolveColor maps a texture or skybox name to a color. Hex strings
// ("#2e4a7d") and CSS color names ("forestgreen") resolve directly; any
// other name hashes to a stable muted hue.
func ResolveColor(name string) colorful.Color {
	name = strings.TrimSpace(name)
	if strings.HasPrefix(name, "#") {
		if c, err := colorful.Hex(name); err == nil {
			return c
		}
	}
	if rgba, ok := colornames.Map[strings.ToLower(name)]; ok {
		c, _ := colorful.MakeColor(rgba)
		return c
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	return colorful.Hsv(float64(h.Sum32()%360), 0.45, 0.55)
}

type skyPalette struct {
	zenith, horizon colorful.Color
}

var skyboxes = map[string]skyPalette{
	"studio":    {zenith: hex("#d9d9d9"), horizon: hex("#8c8c8c")},
	"dusk":      {zenith: hex("#2b2d5c"), horizon: hex("#d9825b")},
	"overcast":  {zenith: hex("#a7b0b8"), horizon: hex("#d6dadd")},
	"warehouse": {zenith: hex("#3b3631"), horizon: hex("#7a6e60")},
	"lounge":    {zenith: hex("#1d1410"), horizon: hex("#6b4a33")},
}

// skyFor returns the sky gradient of a skybox name. Unknown names derive a
// gradient from ResolveColor.
func skyFor(name string) skyPalette {
	if p, ok := skyboxes[strings.ToLower(name)]; ok {
		return p
	}
	base := ResolveColor(name)
	h, s, v := base.Hsv()
	return skyPalette{
		zenith:  colorful.Hsv(h, s, v*0.6),
		horizon: colorful.Hsv(h, s*0.7, min(v*1.3, 1)),
	}
}

func hex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ballColors are the standard pool ball colors; 9 to 15 reuse 1 to 7 as
// stripes.
var ballColors = [...]colorful.Color{
	hex("#f5f3e7"), // cue
	hex("#f2c500"),
	hex("#1f4fbf"),
	hex("#d0261c"),
	hex("#5b2a86"),
	hex("#f2781b"),
	hex("#1b7a3a"),
	hex("#7a1f1f"),
	hex("#111111"),
}

// ballColor returns the base color of ball id and whether it is striped.
func ballColor(id int) (colorful.Color, bool) {
	switch {
	case id >= 0 && id <= 8:
		return ballColors[id], false
	case id >= 9 && id <= 15:
		return ballColors[id-8], true
	default:
		return ResolveColor(strings.Repeat("ball", id%7+1)), false
	}
}
