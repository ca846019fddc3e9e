package scene

import (
	"slices"
)

// Effect names a post-processing effect on a [PostStack].
type Effect string

const (
	EffectBloom               Effect = "bloom"
	EffectColorAdjustments    Effect = "color_adjustments"
	EffectVignette            Effect = "vignette"
	EffectChromaticAberration Effect = "chromatic_aberration"
	EffectFilmGrain           Effect = "film_grain"
)

// StandardEffects lists the effects a generation run expects on the stack.
var StandardEffects = []Effect{
	EffectBloom,
	EffectColorAdjustments,
	EffectVignette,
	EffectChromaticAberration,
	EffectFilmGrain,
}

// EffectSettings is the settings record of one effect.
type EffectSettings interface {
	Effect() Effect
}

// Bloom settings.
type Bloom struct {
	Intensity float64
	Threshold float64
	Scatter   float64
}

// ColorAdjustments settings. Exposure is in EV; Contrast, HueShift and
// Saturation use the -100..100 (hue: -180..180 degrees) convention.
type ColorAdjustments struct {
	Exposure   float64
	Contrast   float64
	HueShift   float64
	Saturation float64
}

// Vignette settings.
type Vignette struct {
	Intensity  float64
	Smoothness float64
}

// ChromaticAberration settings.
type ChromaticAberration struct {
	Intensity float64
}

// Film grain variants.
const (
	GrainUniform = iota
	GrainBinary
	GrainGaussian
)

// FilmGrain settings. Type selects a grain variant.
type FilmGrain struct {
	Type      int
	Intensity float64
}

func (*Bloom) Effect() Effect               { return EffectBloom }
func (*ColorAdjustments) Effect() Effect    { return EffectColorAdjustments }
func (*Vignette) Effect() Effect            { return EffectVignette }
func (*ChromaticAberration) Effect() Effect { return EffectChromaticAberration }
func (*FilmGrain) Effect() Effect           { return EffectFilmGrain }

// newEffect returns zero settings for e, or nil for unknown names.
func newEffect(e Effect) EffectSettings {
	switch e {
	case EffectBloom:
		return &Bloom{}
	case EffectColorAdjustments:
		return &ColorAdjustments{}
	case EffectVignette:
		return &Vignette{}
	case EffectChromaticAberration:
		return &ChromaticAberration{}
	case EffectFilmGrain:
		return &FilmGrain{}
	}
	return nil
}

// PostStack maps effect names to settings records. Effects are created on
// demand; a missing effect is simply absent rather than an error.
type PostStack struct {
	effects map[Effect]EffectSettings
}

// NewPostStack returns an empty stack.
func NewPostStack() *PostStack {
	return &PostStack{effects: make(map[Effect]EffectSettings)}
}

// Lookup returns the settings for e if present.
func (s *PostStack) Lookup(e Effect) (EffectSettings, bool) {
	if s == nil {
		return nil, false
	}
	v, ok := s.effects[e]
	return v, ok
}

// Ensure returns the settings for e, creating zero settings if absent.
// It returns nil for an unknown effect name.
func (s *PostStack) Ensure(e Effect) EffectSettings {
	if v, ok := s.effects[e]; ok {
		return v
	}
	v := newEffect(e)
	if v != nil {
		s.effects[e] = v
	}
	return v
}

// EnsureAll creates every effect in effects that is not yet present.
func (s *PostStack) EnsureAll(effects ...Effect) {
	for _, e := range effects {
		s.Ensure(e)
	}
}

// Remove drops e from the stack.
func (s *PostStack) Remove(e Effect) { delete(s.effects, e) }

// Effects returns the names of the present effects in sorted order.
func (s *PostStack) Effects() []Effect {
	if s == nil {
		return nil
	}
	out := make([]Effect, 0, len(s.effects))
	for e := range s.effects {
		out = append(out, e)
	}
	slices.Sort(out)
	return out
}

// ColorAdjustments returns the color adjustments, creating them if absent.
func (s *PostStack) ColorAdjustments() *ColorAdjustments {
	return s.Ensure(EffectColorAdjustments).(*ColorAdjustments)
}

// FilmGrain returns the film grain settings, creating them if absent.
func (s *PostStack) FilmGrain() *FilmGrain {
	return s.Ensure(EffectFilmGrain).(*FilmGrain)
}

// Bloom returns the bloom settings, creating them if absent.
func (s *PostStack) Bloom() *Bloom {
	return s.Ensure(EffectBloom).(*Bloom)
}

// Vignette returns the vignette settings, creating them if absent.
func (s *PostStack) Vignette() *Vignette {
	return s.Ensure(EffectVignette).(*Vignette)
}

// ChromaticAberration returns the chromatic aberration settings, creating them if absent.
func (s *PostStack) ChromaticAberration() *ChromaticAberration {
	return s.Ensure(EffectChromaticAberration).(*ChromaticAberration)
}
