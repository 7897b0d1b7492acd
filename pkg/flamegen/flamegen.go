// Package flamegen generates random flames.
//
// Generation draws every moving part of a flame from simple uniform
// distributions: variation kind, exact-arity parameters, affine coefficients,
// entry weights, color attributes, symmetry order, and a palette with
// equispaced keys. The output always satisfies the construction invariants of
// the core types, so a generated flame can be rendered or serialized as-is.
package flamegen

import (
	"math/rand/v2"

	"github.com/emberlab/flambeau/pkg/flame"
	"github.com/emberlab/flambeau/pkg/geom"
	"github.com/emberlab/flambeau/pkg/palette"
	"github.com/emberlab/flambeau/pkg/variation"
)

// Options bounds the random draws. Entry and color counts are inclusive
// ranges; symmetry is drawn from [MinSymmetry, MaxSymmetry] and AffineScale
// bounds the magnitude of affine coefficients.
type Options struct {
	MinEntries  int
	MaxEntries  int
	MinSymmetry int
	MaxSymmetry int
	MinColors   int
	MaxColors   int
	AffineScale float64
}

var defaultOpts = Options{
	MinEntries:  2,
	MaxEntries:  4,
	MinSymmetry: -2,
	MaxSymmetry: 3,
	MinColors:   3,
	MaxColors:   8,
	AffineScale: 1.0,
}

// Generate draws a random flame over the unit bounds. A nil opts uses the
// package defaults. The same seed and options always produce the same flame.
func Generate(seed uint64, opts *Options) flame.Flame {
	if opts == nil {
		opts = &defaultOpts
	}
	rng := rand.New(rand.NewPCG(seed, seed^0xdeadbeef))

	n := intBetween(rng, opts.MinEntries, opts.MaxEntries)
	entries := make([]flame.FunctionEntry, 0, n)
	for range n {
		entries = append(entries, randomEntry(rng, opts.AffineScale))
	}

	return flame.Flame{
		Entries:  entries,
		Final:    flame.IdentityFunction(),
		Symmetry: intBetween(rng, opts.MinSymmetry, opts.MaxSymmetry),
		Palette:  randomPalette(rng, opts.MinColors, opts.MaxColors),
		Bounds:   geom.UnitRect(),
	}
}

// RandomVariation draws a uniform kind and fills its exact parameter count
// with values from [-1, 1).
func RandomVariation(rng *rand.Rand) variation.Variation {
	kinds := variation.Kinds()
	kind := kinds[rng.IntN(len(kinds))]
	params := make([]float64, kind.NumParams())
	for i := range params {
		params[i] = signedUnit(rng)
	}
	return variation.MustBuild(kind, params...)
}

func randomEntry(rng *rand.Rand, scale float64) flame.FunctionEntry {
	fn := flame.Function{
		Var:  RandomVariation(rng),
		Pre:  randomAffine(rng, scale),
		Post: geom.Identity(),
	}
	entry, err := flame.NewEntry(fn, rng.Float64(), rng.Float64(), rng.Float64())
	if err != nil {
		// Float64 draws lie in [0,1); the constructor cannot reject them.
		panic(err)
	}
	return entry
}

func randomAffine(rng *rand.Rand, scale float64) geom.Affine {
	var c [6]float64
	for i := range c {
		c[i] = signedUnit(rng) * scale
	}
	return geom.AffineFromCoeffs(c)
}

func randomPalette(rng *rand.Rand, minColors, maxColors int) palette.Palette {
	n := intBetween(rng, max(minColors, 2), max(maxColors, 2))
	colors := make([]palette.Color, 0, n)
	for range n {
		colors = append(colors, palette.RGB(
			uint8(rng.IntN(256)),
			uint8(rng.IntN(256)),
			uint8(rng.IntN(256)),
		))
	}
	pal, err := palette.New(colors, nil)
	if err != nil {
		// nil keys are auto-equispaced for any count >= 2.
		panic(err)
	}
	return pal
}

func intBetween(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.IntN(hi-lo+1)
}

func signedUnit(rng *rand.Rand) float64 {
	return 2*rng.Float64() - 1
}
