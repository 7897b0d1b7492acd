package flame

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/emberlab/flambeau/pkg/geom"
	"github.com/emberlab/flambeau/pkg/variation"
)

var (
	// ErrColorRange is returned by [NewEntry] when the color coordinate lies
	// outside [0,1].
	ErrColorRange = errors.New("entry color outside [0,1]")

	// ErrColorSpeedRange is returned by [NewEntry] when the color speed lies
	// outside [0,1].
	ErrColorSpeedRange = errors.New("entry color speed outside [0,1]")
)

// Function composes an affine pre-transform, a variation, and an affine
// post-transform. Eval(p) = Post · variation(Pre · p).
type Function struct {
	Var  variation.Variation
	Pre  geom.Affine
	Post geom.Affine
}

// IdentityFunction returns the function that leaves every point unchanged.
// It is the default for a flame's final transform.
func IdentityFunction() Function {
	return Function{
		Var:  variation.MustBuild(variation.Id),
		Pre:  geom.Identity(),
		Post: geom.Identity(),
	}
}

// Eval applies the composed transform to p. rng feeds the entropy-consuming
// variations.
func (f Function) Eval(p geom.Point, rng *rand.Rand) geom.Point {
	return f.Post.Apply(f.Var.Eval(f.Pre.Apply(p), rng))
}

// FunctionEntry is a function together with its selection weight and color
// attributes. Entries are picked per iteration with probability proportional
// to Weight; Color and ColorSpeed drive the exponential moving average of the
// color coordinate.
type FunctionEntry struct {
	Function   Function
	Weight     float64
	Color      float64
	ColorSpeed float64
}

// NewEntry validates the color attributes and builds a FunctionEntry.
// Color and ColorSpeed must lie in [0,1]; violations fail construction and
// are never clamped.
func NewEntry(fn Function, weight, color, colorSpeed float64) (FunctionEntry, error) {
	if !(color >= 0 && color <= 1) {
		return FunctionEntry{}, fmt.Errorf("%w: %g", ErrColorRange, color)
	}
	if !(colorSpeed >= 0 && colorSpeed <= 1) {
		return FunctionEntry{}, fmt.Errorf("%w: %g", ErrColorSpeedRange, colorSpeed)
	}
	return FunctionEntry{
		Function:   fn,
		Weight:     weight,
		Color:      color,
		ColorSpeed: colorSpeed,
	}, nil
}
