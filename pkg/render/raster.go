package render

import (
	"cmp"
	"context"
	"image"
	"math"
	"slices"

	"github.com/fogleman/gg"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/poolsynth/pkg/scene"
)

// Scene dimensions the raster renderer draws but the scene does not model.
const (
	RailWidth    = 0.12
	PocketRadius = 0.06
	CueLength    = 1.47
	// MotionShutter is the exposure time used to smear moving balls.
	MotionShutter = 1.0 / 60
)

// Raster is a flat-shaded software renderer built on gg. It draws the
// skybox gradient, the table, pockets, balls and cue, tints everything by
// the scene lights and then applies the post-processing stack.
type Raster struct {
	// SkipPost disables post-processing.
	SkipPost bool
}

// NewRaster returns a raster renderer with post-processing enabled.
func NewRaster() *Raster { return &Raster{} }

// Render implements Renderer.
func (r *Raster) Render(ctx context.Context, s *scene.State, width, height int) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, ErrBadBuffer
	}

	dc := gg.NewContext(width, height)
	v := newView(s.Camera, width, height)
	light := newLighting(s)

	drawSky(dc, s.Environment.Skybox, light, width, height)
	if s.Table.MeshVisible {
		drawTable(dc, v, s.Table, light)
		drawPockets(dc, v, s.Pockets, light)
	}
	drawBalls(dc, v, s.Balls, light)
	drawCue(dc, v, s.Cue, light)

	img := dc.Image()
	if r.SkipPost {
		return img, nil
	}
	return ApplyPost(img, s.Post), nil
}

var _ Renderer = (*Raster)(nil)

// =============================================================================
// Projection
// =============================================================================

type view struct {
	cam     scene.Camera
	inv     mgl64.Quat
	w, h    float64
	tanHalf float64
}

func newView(cam scene.Camera, width, height int) view {
	return view{
		cam:     cam,
		inv:     cam.Rotation.Inverse(),
		w:       float64(width),
		h:       float64(height),
		tanHalf: math.Tan(mgl64.DegToRad(cam.FOV) / 2),
	}
}

// local maps a world point into camera space (+Z forward).
func (v view) local(p mgl64.Vec3) mgl64.Vec3 {
	return v.inv.Rotate(p.Sub(v.cam.Position))
}

// pixel maps a camera-space point with positive depth to image pixels.
func (v view) pixel(l mgl64.Vec3) (x, y float64) {
	nx := l.X() / (l.Z() * v.tanHalf * v.cam.Aspect)
	ny := l.Y() / (l.Z() * v.tanHalf)
	return (nx + 1) / 2 * v.w, (1 - (ny+1)/2) * v.h
}

// scale returns how many pixels one meter spans at depth z.
func (v view) scale(z float64) float64 {
	return v.h / (2 * z * v.tanHalf)
}

// clip cuts a camera-space polygon against the near plane.
func (v view) clip(poly []mgl64.Vec3) []mgl64.Vec3 {
	near := max(v.cam.Near, 1e-4)
	var out []mgl64.Vec3
	for i, cur := range poly {
		prev := poly[(i+len(poly)-1)%len(poly)]
		curIn, prevIn := cur.Z() >= near, prev.Z() >= near
		if curIn != prevIn {
			t := (near - prev.Z()) / (cur.Z() - prev.Z())
			out = append(out, prev.Add(cur.Sub(prev).Mul(t)))
		}
		if curIn {
			out = append(out, cur)
		}
	}
	return out
}

// clipSegment cuts a camera-space segment against the near plane.
func (v view) clipSegment(a, b mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3, bool) {
	near := max(v.cam.Near, 1e-4)
	aIn, bIn := a.Z() >= near, b.Z() >= near
	switch {
	case aIn && bIn:
		return a, b, true
	case !aIn && !bIn:
		return a, b, false
	}
	t := (near - a.Z()) / (b.Z() - a.Z())
	cut := a.Add(b.Sub(a).Mul(t))
	if aIn {
		return a, cut, true
	}
	return cut, b, true
}

// polygon fills a world-space polygon, clipped to the near plane.
func (v view) polygon(dc *gg.Context, world []mgl64.Vec3) bool {
	local := make([]mgl64.Vec3, len(world))
	for i, p := range world {
		local[i] = v.local(p)
	}
	clipped := v.clip(local)
	if len(clipped) < 3 {
		return false
	}
	for i, p := range clipped {
		x, y := v.pixel(p)
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	dc.ClosePath()
	return true
}

// =============================================================================
// Lighting
// =============================================================================

type lighting struct {
	tint       colorful.Color
	brightness float64
	shadow     float64
}

// newLighting folds the scene lights into one tint and brightness.
func newLighting(s *scene.State) lighting {
	l := lighting{tint: colorful.Color{R: 1, G: 1, B: 1}, brightness: 0.55}
	ambient := s.Environment.AmbientIntensity
	if ambient == 0 {
		ambient = 1
	}

	var total float64
	var r, g, b, shadow float64
	for _, lt := range s.Lights {
		if lt.Intensity <= 0 {
			continue
		}
		total += lt.Intensity
		r += lt.Color.X() * lt.Intensity
		g += lt.Color.Y() * lt.Intensity
		b += lt.Color.Z() * lt.Intensity
		shadow += lt.ShadowStrength * lt.Intensity
	}
	if total > 0 {
		l.tint = colorful.Color{R: r / total, G: g / total, B: b / total}
		l.shadow = shadow / total
		l.brightness = 0.35 + 0.12*total
	}
	l.brightness = min(l.brightness*(0.7+0.3*ambient), 1.4)
	return l
}

func (l lighting) shade(c colorful.Color) colorful.Color {
	return colorful.Color{
		R: c.R * l.tint.R * l.brightness,
		G: c.G * l.tint.G * l.brightness,
		B: c.B * l.tint.B * l.brightness,
	}.Clamped()
}

// =============================================================================
// Drawing
// =============================================================================

func drawSky(dc *gg.Context, name string, light lighting, width, height int) {
	sky := skyFor(name)
	grad := gg.NewLinearGradient(0, 0, 0, float64(height))
	grad.AddColorStop(0, light.shade(sky.zenith))
	grad.AddColorStop(1, light.shade(sky.horizon))
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, float64(width), float64(height))
	dc.Fill()
}

func tableQuad(t scene.Table, margin float64) []mgl64.Vec3 {
	hx, hz := t.Length/2+margin, t.Width/2+margin
	return []mgl64.Vec3{
		{-hx, t.Height, -hz},
		{hx, t.Height, -hz},
		{hx, t.Height, hz},
		{-hx, t.Height, hz},
	}
}

func drawTable(dc *gg.Context, v view, t scene.Table, light lighting) {
	rail := hex("#4a2c17")
	if v.polygon(dc, tableQuad(t, RailWidth)) {
		dc.SetColor(light.shade(rail))
		dc.Fill()
	}

	felt := ResolveColor(t.Texture)
	if t.Texture == "" {
		felt = ResolveColor("forestgreen")
	}
	// Smoother felt reads slightly brighter.
	felt = felt.BlendLab(colorful.Color{R: 1, G: 1, B: 1}, 0.15*t.Smoothness)
	if v.polygon(dc, tableQuad(t, 0)) {
		dc.SetColor(light.shade(felt))
		dc.Fill()
	}
}

func drawPockets(dc *gg.Context, v view, pockets []scene.Pocket, light lighting) {
	dark := light.shade(hex("#050505"))
	for _, p := range pockets {
		l := v.local(p.Position)
		if l.Z() <= v.cam.Near {
			continue
		}
		x, y := v.pixel(l)
		dc.DrawCircle(x, y, PocketRadius*v.scale(l.Z()))
		dc.SetColor(dark)
		dc.Fill()
	}
}

type projectedBall struct {
	ball  scene.Ball
	local mgl64.Vec3
}

func drawBalls(dc *gg.Context, v view, balls []scene.Ball, light lighting) {
	var visible []projectedBall
	for _, b := range balls {
		if !b.Visible {
			continue
		}
		l := v.local(b.Position)
		if l.Z() <= v.cam.Near {
			continue
		}
		visible = append(visible, projectedBall{ball: b, local: l})
	}
	// Far to near.
	slices.SortFunc(visible, func(a, b projectedBall) int {
		return cmp.Compare(b.local.Z(), a.local.Z())
	})

	for _, pb := range visible {
		b := pb.ball
		speed := b.Velocity.Len()
		if speed == 0 {
			drawBall(dc, v, b, pb.local, light, 1)
			continue
		}
		// Smear the ball along its path during the shutter interval.
		const steps = 6
		for i := range steps {
			t := float64(i) / float64(steps-1)
			moved := b
			moved.Position = b.Position.Add(b.Velocity.Mul(t * MotionShutter))
			l := v.local(moved.Position)
			if l.Z() <= v.cam.Near {
				continue
			}
			drawBall(dc, v, moved, l, light, 1.0/steps*1.8)
		}
	}
}

func drawBall(dc *gg.Context, v view, b scene.Ball, l mgl64.Vec3, light lighting, alpha float64) {
	x, y := v.pixel(l)
	r := b.Radius * v.scale(l.Z())
	if r < 0.5 {
		return
	}
	base, striped := ballColor(b.ID)

	if light.shadow > 0 {
		dc.DrawEllipse(x+r*0.25, y+r*0.9, r*1.05, r*0.35)
		dc.SetRGBA(0, 0, 0, light.shadow*0.5*alpha)
		dc.Fill()
	}

	body := base
	if striped {
		body = ballColors[0]
	}
	dc.DrawCircle(x, y, r)
	setAlpha(dc, light.shade(body), alpha)
	dc.Fill()

	if striped {
		dc.DrawRectangle(x-r*0.95, y-r*0.45, r*1.9, r*0.9)
		dc.Clip()
		dc.DrawCircle(x, y, r)
		setAlpha(dc, light.shade(base), alpha)
		dc.Fill()
		dc.ResetClip()
	}

	hl := gg.NewRadialGradient(x-r*0.35, y-r*0.35, 0, x-r*0.35, y-r*0.35, r*0.6)
	hl.AddColorStop(0, colorful.Color{R: 1, G: 1, B: 1})
	hl.AddColorStop(1, colorful.Color{R: 1, G: 1, B: 1}.BlendRgb(light.shade(body), 1))
	dc.DrawCircle(x-r*0.35, y-r*0.35, r*0.3)
	dc.SetFillStyle(hl)
	dc.Fill()
}

func setAlpha(dc *gg.Context, c colorful.Color, alpha float64) {
	dc.SetRGBA(c.R, c.G, c.B, min(max(alpha, 0), 1))
}

func drawCue(dc *gg.Context, v view, cue scene.Cue, light lighting) {
	if cue.Rotation == (mgl64.Quat{}) {
		return
	}
	axis := cue.Axis()
	near := cue.Position.Add(axis.Mul(cue.TipOffset + CueLength/2))
	far := cue.Position.Add(axis.Mul(cue.TipOffset - CueLength/2))

	a, b, ok := v.clipSegment(v.local(near), v.local(far))
	if !ok {
		return
	}
	x0, y0 := v.pixel(a)
	x1, y1 := v.pixel(b)
	width := 0.013 * v.scale((a.Z()+b.Z())/2)

	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineWidth(max(width, 1))
	dc.SetColor(light.shade(hex("#c49a6c")))
	dc.DrawLine(x0, y0, x1, y1)
	dc.Stroke()
}
