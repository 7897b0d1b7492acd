// Package flame defines the flame description (weighted function entries, a
// final transform, symmetry, palette, and bounds) and runs the chaos game
// over it, accumulating plotted points into a histogram buffer.
package flame

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/emberlab/flambeau/pkg/geom"
	"github.com/emberlab/flambeau/pkg/histo"
	"github.com/emberlab/flambeau/pkg/palette"
)

// burnIn is the number of leading iterations discarded before plotting,
// letting the point converge onto the attractor.
const burnIn = 20

// Flame is a complete renderable flame description.
//
// Final is applied after every chosen entry and must be set; use
// [IdentityFunction] when no final transform is wanted. Symmetry 0 or 1 means
// none, |n|>1 adds stochastic n-fold rotation, and a negative order
// additionally adds reflection about the y axis.
type Flame struct {
	Entries  []FunctionEntry
	Final    Function
	Symmetry int
	Palette  palette.Palette
	Bounds   geom.Rect
}

// Per-iteration actions. Step is always enabled; rotation and reflection are
// enabled by the symmetry order, and the engine picks uniformly among the
// enabled actions.
const (
	actionStep = iota
	actionRotate
	actionReflect
)

// actionCount returns how many actions the symmetry order enables.
func (f *Flame) actionCount() int {
	switch {
	case f.Symmetry == 0 || f.Symmetry == 1:
		return 1
	case f.Symmetry > 1:
		return 2
	default:
		return 3
	}
}

// pickAction draws the next action uniformly among the enabled ones.
func (f *Flame) pickAction(rng *rand.Rand) int {
	return rng.IntN(f.actionCount())
}

// pickEntry selects an entry with probability proportional to its weight via
// cumulative-sum roulette over the unnormalized total. If floating error
// makes the cumulative sum undershoot the drawn value, the last entry is the
// fallback; selection never fails on a non-empty list.
func (f *Flame) pickEntry(rng *rand.Rand) *FunctionEntry {
	total := 0.0
	for i := range f.Entries {
		total += f.Entries[i].Weight
	}
	r := rng.Float64() * total
	x := 0.0
	for i := range f.Entries {
		x += f.Entries[i].Weight
		if r < x {
			return &f.Entries[i]
		}
	}
	return &f.Entries[len(f.Entries)-1]
}

// screenTransform maps flame space onto pixel coordinates, flipping y so the
// top of the bounds lands on row zero. It is derived once per run.
func (f *Flame) screenTransform(width, height int) geom.Affine {
	wScale := float64(width-1) / f.Bounds.Width()
	hScale := float64(height-1) / f.Bounds.Height()
	return geom.Affine{
		A: wScale, B: 0, C: -f.Bounds.XMin * wScale,
		D: 0, E: -hScale, F: f.Bounds.YMax * hScale,
	}
}

// RunPartial runs iters chaos-game iterations, accumulating plotted points
// into buf. It is re-callable: successive calls from a single controlling
// goroutine keep accumulating into the same buffer, which is how interactive
// front-ends render progressively. Callers reset the buffer themselves when
// the flame or the viewport changes.
//
// A flame with no entries is a no-op: the buffer is left untouched and no
// error is raised.
func (f *Flame) RunPartial(buf *histo.Buffer[uint64], iters int, rng *rand.Rand) {
	if len(f.Entries) == 0 {
		return
	}

	trans := f.screenTransform(buf.Width, buf.Height)

	p := geom.Point{X: rng.Float64(), Y: rng.Float64()}
	c := rng.Float64()

	for i := 0; i < iters; i++ {
		switch f.pickAction(rng) {
		case actionStep:
			entry := f.pickEntry(rng)
			p = entry.Function.Eval(p, rng)
			p = f.Final.Eval(p, rng)
			c *= 1 - entry.ColorSpeed
			c += entry.Color * entry.ColorSpeed
		case actionRotate:
			order := f.Symmetry
			if order < 0 {
				order = -order
			}
			k := rng.IntN(order)
			p = geom.Rotate(2 * math.Pi * float64(k) / float64(order)).Apply(p)
		case actionReflect:
			p.X = -p.X
		}

		if i > burnIn && f.Bounds.Contains(p) {
			sp := trans.Apply(p)
			color, err := f.Palette.Sample(c)
			if err != nil {
				// The color coordinate is an average of validated entry
				// colors and cannot leave [0,1].
				panic(fmt.Sprintf("flame: color coordinate out of domain: %v", err))
			}
			bucket := buf.At(int(sp.X), int(sp.Y))
			bucket.Alpha++
			bucket.R += uint64(color.R)
			bucket.G += uint64(color.G)
			bucket.B += uint64(color.B)
		}
	}
}
