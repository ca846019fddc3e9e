package randomize

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/matzehuels/poolsynth/pkg/config"
	"github.com/matzehuels/poolsynth/pkg/scene"
)

// ErrPlacementExhausted is returned under the "fail" policy when a ball
// cannot be placed within the attempt budget.
var ErrPlacementExhausted = errors.New("placement attempts exhausted")

// PlacementError names the ball that could not be placed.
type PlacementError struct {
	Ball     string
	Attempts int
}

func (e *PlacementError) Error() string {
	return fmt.Sprintf("place %s: no free spot after %d attempts", e.Ball, e.Attempts)
}

func (e *PlacementError) Unwrap() error { return ErrPlacementExhausted }

// PlaceOptions configures Place.
type PlaceOptions struct {
	// HalfX and HalfZ are the half extents of the table surface.
	HalfX, HalfZ float64
	// Height is the fixed Y coordinate of every placed ball.
	Height      float64
	Radius      float64
	MaxAttempts int
	Policy      string
}

// PlaceResult reports how placement went.
type PlaceResult struct {
	// Draws counts every candidate drawn across all balls.
	Draws int
	// Stale lists the balls left at their previous position under the
	// "keep" policy.
	Stale []string
}

// Place positions balls one at a time by rejection sampling. Each candidate
// is uniform over the table inset by Radius; it is accepted when its center
// is at least 2*Radius from every ball accepted earlier in this call.
// Accepted balls get a uniformly random rotation about all three axes.
//
// Earlier balls are never moved to make room for later ones. When a ball
// runs out of attempts, the "keep" policy leaves it where it was (possibly
// overlapping) and the "fail" policy returns a *PlacementError. Place draws
// at most len(balls)*MaxAttempts candidates.
func Place(rng *rand.Rand, balls []scene.Ball, opts PlaceOptions) (PlaceResult, error) {
	var res PlaceResult
	limitX := opts.HalfX - opts.Radius
	limitZ := opts.HalfZ - opts.Radius
	minDist := 2 * opts.Radius

	accepted := make([]mgl64.Vec3, 0, len(balls))
	for i := range balls {
		var (
			candidate mgl64.Vec3
			ok        bool
		)
		for attempt := 0; attempt < opts.MaxAttempts && !ok; attempt++ {
			res.Draws++
			candidate = mgl64.Vec3{
				Uniform(rng, config.R(-limitX, limitX)),
				opts.Height,
				Uniform(rng, config.R(-limitZ, limitZ)),
			}
			ok = isClear(candidate, accepted, minDist)
		}

		if !ok {
			if opts.Policy == config.PolicyKeep {
				res.Stale = append(res.Stale, balls[i].Name)
				continue
			}
			return res, &PlacementError{Ball: balls[i].Name, Attempts: opts.MaxAttempts}
		}

		balls[i].Position = candidate
		balls[i].Rotation = scene.Euler(rng.Float64()*360, rng.Float64()*360, rng.Float64()*360)
		accepted = append(accepted, candidate)
	}
	return res, nil
}

func isClear(p mgl64.Vec3, placed []mgl64.Vec3, minDist float64) bool {
	for _, q := range placed {
		if p.Sub(q).Len() < minDist {
			return false
		}
	}
	return true
}
