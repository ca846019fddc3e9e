package randomize

import (
	"hash/fnv"
	"math/rand/v2"

	"github.com/matzehuels/poolsynth/pkg/config"
)

// NewRand returns a PCG-backed generator for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

// FrameSeed derives the seed of one frame from the run seed, the split name
// and the frame index. Frames are independent: regenerating a single index
// reproduces exactly the same scene.
func FrameSeed(seed uint64, split string, index int) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(split))
	s := seed ^ h.Sum64()
	s ^= uint64(index) * 0x9e3779b97f4a7c15
	// splitmix64 finalizer
	s = (s ^ (s >> 30)) * 0xbf58476d1ce4e5b9
	s = (s ^ (s >> 27)) * 0x94d049bb133111eb
	return s ^ (s >> 31)
}

// FrameRand returns the generator for one frame.
func FrameRand(seed uint64, split string, index int) *rand.Rand {
	return NewRand(FrameSeed(seed, split, index))
}

// Uniform draws from [r.Min, r.Max). A degenerate range returns Min.
func Uniform(rng *rand.Rand, r config.Range) float64 {
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

func pick[T any](rng *rand.Rand, items []T) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}
	return items[rng.IntN(len(items))], true
}
