// Package render is the boundary between scene state and pixels.
//
// # Overview
//
// A [Renderer] turns a [scene.State] into a W x H RGB image. Production
// setups put a real engine behind this interface; [Raster] is a small
// software renderer that draws the scene with flat shading so the pipeline
// runs end to end without one.
//
// [Capture] wraps any renderer and rejects buffers of the wrong shape with
// [ErrBadBuffer]. Such a buffer must never reach the dataset.
//
// # Raster Renderer
//
// [Raster] projects the table, pockets, balls and cue through the scene camera
// with gg, shades them from the active lights and then applies the scene's
// post-processing stack:
//
//   - Color adjustments (exposure, contrast, saturation) via bild/adjust
//   - Bloom via bild/blur and bild/blend
//   - Vignette and chromatic aberration
//   - Film grain from a seeded generator
//
// Balls are drawn far to near so nearer balls cover farther ones, matching
// the occlusion a depth buffer would give.
//
//	img, err := render.Capture(ctx, render.NewRaster(), state, 512, 512)
package render
