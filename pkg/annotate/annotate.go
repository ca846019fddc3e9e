// Package annotate projects scene entities into normalized detection labels.
//
// Each visible ball yields one box whose center is the projected ball center
// and whose size comes from projecting points one radius to either side
// along the camera's right and up axes. This is an approximation of the
// on-screen silhouette, not an exact perspective bound. Pockets yield fixed
// size boxes and all share one class id, the one right after the last ball.
//
// Viewport coordinates use a top-left origin in the output: y = 1 - vy.
package annotate

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/matzehuels/poolsynth/pkg/scene"
)

// DefaultPocketBoxSize is the normalized width and height of a pocket box.
const DefaultPocketBoxSize = 0.05

// Projector turns a scene into labels. It never mutates the scene.
type Projector struct {
	PocketBoxSize float64
}

// NewProjector returns a projector with the given pocket box size. A
// non-positive size selects DefaultPocketBoxSize.
func NewProjector(pocketBoxSize float64) Projector {
	if pocketBoxSize <= 0 {
		pocketBoxSize = DefaultPocketBoxSize
	}
	return Projector{PocketBoxSize: pocketBoxSize}
}

// Project returns the labels for s as seen from its camera. Background
// frames produce no labels. Balls come first in discovery order, then
// pockets.
func (p Projector) Project(s *scene.State, frame scene.Frame) []scene.Label {
	if frame.HideEntities {
		return nil
	}
	cam := s.Camera
	right, up := cam.Right(), cam.Up()

	var labels []scene.Label
	for _, b := range s.Balls {
		center, ok := visible(cam, b.Position)
		if !ok {
			continue
		}
		off := right.Mul(b.Radius)
		l := cam.WorldToViewport(b.Position.Sub(off))
		r := cam.WorldToViewport(b.Position.Add(off))
		off = up.Mul(b.Radius)
		u := cam.WorldToViewport(b.Position.Add(off))
		d := cam.WorldToViewport(b.Position.Sub(off))

		labels = append(labels, scene.Label{
			ClassID: b.ID,
			XCenter: center.X(),
			YCenter: 1 - center.Y(),
			Width:   math.Abs(r.X() - l.X()),
			Height:  math.Abs(u.Y() - d.Y()),
		})
	}

	pocketClass := len(s.Balls)
	for _, pk := range s.Pockets {
		center, ok := visible(cam, pk.Position)
		if !ok {
			continue
		}
		labels = append(labels, scene.Label{
			ClassID: pocketClass,
			XCenter: center.X(),
			YCenter: 1 - center.Y(),
			Width:   p.PocketBoxSize,
			Height:  p.PocketBoxSize,
		})
	}
	return labels
}

// visible projects p and reports whether it lies in front of the camera and
// inside the closed unit viewport.
func visible(cam scene.Camera, p mgl64.Vec3) (mgl64.Vec3, bool) {
	v := cam.WorldToViewport(p)
	if v.Z() <= 0 {
		return v, false
	}
	if v.X() < 0 || v.X() > 1 || v.Y() < 0 || v.Y() > 1 {
		return v, false
	}
	return v, true
}

// FormatLabel renders l as "class x y w h".
func FormatLabel(l scene.Label) string {
	return fmt.Sprintf("%d %.6f %.6f %.6f %.6f", l.ClassID, l.XCenter, l.YCenter, l.Width, l.Height)
}

// WriteLabels writes one line per label. No labels writes nothing.
func WriteLabels(w io.Writer, labels []scene.Label) error {
	if len(labels) == 0 {
		return nil
	}
	var sb strings.Builder
	for _, l := range labels {
		sb.WriteString(FormatLabel(l))
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// ParseLabels reads labels written by WriteLabels. Blank lines are ignored.
func ParseLabels(data string) ([]scene.Label, error) {
	var labels []scene.Label
	for n, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var l scene.Label
		if _, err := fmt.Sscanf(line, "%d %g %g %g %g", &l.ClassID, &l.XCenter, &l.YCenter, &l.Width, &l.Height); err != nil {
			return nil, fmt.Errorf("line %d: %w", n+1, err)
		}
		labels = append(labels, l)
	}
	return labels, nil
}
