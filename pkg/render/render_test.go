package render

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/poolsynth/pkg/config"
	"github.com/matzehuels/poolsynth/pkg/randomize"
	"github.com/matzehuels/poolsynth/pkg/scene"
)

func randomizedScene(t *testing.T, seed uint64) *scene.State {
	t.Helper()
	cfg := config.Default()
	s := scene.NewState(cfg, scene.StandardTable(cfg).Children())
	r := randomize.New(cfg, nil)
	r.Prepare(s)
	_, err := r.Randomize(randomize.NewRand(seed), s)
	require.NoError(t, err)
	return s
}

func TestRasterRender(t *testing.T) {
	s := randomizedScene(t, 1)
	img, err := Capture(context.Background(), NewRaster(), s, 64, 48)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 64, 48), img.Bounds())
}

func TestRasterDeterministic(t *testing.T) {
	s := randomizedScene(t, 2)
	a, err := NewRaster().Render(context.Background(), s, 32, 32)
	require.NoError(t, err)
	b, err := NewRaster().Render(context.Background(), s, 32, 32)
	require.NoError(t, err)

	for y := range 32 {
		for x := range 32 {
			require.Equal(t, a.At(x, y), b.At(x, y), "pixel %d,%d", x, y)
		}
	}
}

func TestRasterHiddenEntities(t *testing.T) {
	s := randomizedScene(t, 3)
	s.Cue = scene.Cue{}
	r := &Raster{SkipPost: true}

	visible, err := r.Render(context.Background(), s, 48, 48)
	require.NoError(t, err)
	s.SetEntitiesVisible(false)
	hidden, err := r.Render(context.Background(), s, 48, 48)
	require.NoError(t, err)

	// With the table and balls hidden only the sky gradient remains, so
	// every row is a single color.
	for y := range 48 {
		first := hidden.At(0, y)
		for x := range 48 {
			require.Equal(t, first, hidden.At(x, y), "row %d not uniform", y)
		}
	}
	assert.NotEqual(t, imageBytes(visible), imageBytes(hidden))
}

func TestRasterCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRaster().Render(ctx, randomizedScene(t, 4), 16, 16)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRasterCameraInsideTable(t *testing.T) {
	// A camera below the felt plane sees table corners behind it; the near
	// plane clip must keep rendering well defined.
	s := randomizedScene(t, 5)
	s.Camera.Position = mgl64.Vec3{0, 0.5, 0}
	s.Camera.Rotation = scene.LookAt(s.Camera.Position, mgl64.Vec3{2, 0.805, 0})
	_, err := NewRaster().Render(context.Background(), s, 32, 32)
	assert.NoError(t, err)
}

func TestCaptureRejectsBadBuffers(t *testing.T) {
	tests := []struct {
		name string
		r    Renderer
	}{
		{"nil image", RendererFunc(func(context.Context, *scene.State, int, int) (image.Image, error) {
			return nil, nil
		})},
		{"wrong size", RendererFunc(func(context.Context, *scene.State, int, int) (image.Image, error) {
			return image.NewRGBA(image.Rect(0, 0, 10, 10)), nil
		})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Capture(context.Background(), tt.r, &scene.State{}, 16, 16)
			assert.ErrorIs(t, err, ErrBadBuffer)
		})
	}

	boom := errors.New("gpu lost")
	_, err := Capture(context.Background(), RendererFunc(func(context.Context, *scene.State, int, int) (image.Image, error) {
		return nil, boom
	}), &scene.State{}, 16, 16)
	assert.ErrorIs(t, err, boom)
}

func TestApplyPost(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := range 8 {
		for x := range 8 {
			src.SetRGBA(x, y, color.RGBA{R: 100, G: 120, B: 80, A: 255})
		}
	}

	assert.Same(t, image.Image(src), ApplyPost(src, nil))

	stack := scene.NewPostStack()
	stack.EnsureAll(scene.StandardEffects...)
	out := ApplyPost(src, stack)
	assert.Equal(t, imageBytes(src), imageBytes(out), "zero settings leave the image unchanged")

	stack.ColorAdjustments().Exposure = 0.5
	brighter := ApplyPost(src, stack)
	r, _, _, _ := brighter.At(4, 4).RGBA()
	assert.Greater(t, r>>8, uint32(100))

	stack.FilmGrain().Intensity = 0.6
	stack.FilmGrain().Type = scene.GrainGaussian
	grainy := ApplyPost(src, stack)
	assert.Equal(t, src.Bounds(), grainy.Bounds())
	assert.Equal(t, imageBytes(grainy), imageBytes(ApplyPost(src, stack)), "grain is deterministic")
}

func TestResolveColor(t *testing.T) {
	c := ResolveColor("#ff0000")
	assert.InDelta(t, 1.0, c.R, 1e-9)
	assert.InDelta(t, 0.0, c.G, 1e-9)

	green := ResolveColor("ForestGreen")
	assert.Greater(t, green.G, green.R)

	assert.Equal(t, ResolveColor("velvet-7"), ResolveColor("velvet-7"))
	assert.NotEqual(t, ResolveColor("velvet-7"), ResolveColor("velvet-8"))
}

func imageBytes(img image.Image) []byte {
	b := img.Bounds()
	out := make([]byte, 0, b.Dx()*b.Dy()*4)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := img.At(x, y).RGBA()
			out = append(out, byte(r>>8), byte(g>>8), byte(bl>>8), byte(a>>8))
		}
	}
	return out
}
