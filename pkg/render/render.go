package render

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/matzehuels/poolsynth/pkg/scene"
)

// ErrBadBuffer is returned when a renderer produces no image or an image of
// the wrong size.
var ErrBadBuffer = errors.New("render produced an invalid buffer")

// Renderer renders the current scene state.
type Renderer interface {
	Render(ctx context.Context, s *scene.State, width, height int) (image.Image, error)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(ctx context.Context, s *scene.State, width, height int) (image.Image, error)

// Render calls f.
func (f RendererFunc) Render(ctx context.Context, s *scene.State, width, height int) (image.Image, error) {
	return f(ctx, s, width, height)
}

// Capture renders s with r and checks the result has exactly width x height
// pixels.
func Capture(ctx context.Context, r Renderer, s *scene.State, width, height int) (image.Image, error) {
	img, err := r.Render(ctx, s, width, height)
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrBadBuffer)
	}
	if b := img.Bounds(); b.Dx() != width || b.Dy() != height {
		return nil, fmt.Errorf("%w: got %dx%d, want %dx%d", ErrBadBuffer, b.Dx(), b.Dy(), width, height)
	}
	return img, nil
}
