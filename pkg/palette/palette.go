// Package palette maps scalar color coordinates in [0,1] to RGB colors via
// piecewise-linear interpolation between a validated list of control colors.
package palette

import (
	"errors"
	"fmt"
)

var (
	// ErrKeyOutOfRange is returned by [New] when an interior key lies outside
	// the open interval (0,1). The boundary keys 0 and 1 are implicit and must
	// not be listed.
	ErrKeyOutOfRange = errors.New("palette key outside (0,1)")

	// ErrKeysNotIncreasing is returned by [New] when the interior keys are not
	// strictly increasing.
	ErrKeysNotIncreasing = errors.New("palette keys must be strictly increasing")

	// ErrColorCount is returned by [New] when the number of colors does not
	// equal the number of interior keys plus two (one color per key, plus the
	// implicit boundary keys 0 and 1).
	ErrColorCount = errors.New("palette needs len(keys)+2 colors")

	// ErrSampleOutOfDomain is returned by [Palette.Sample] when the color
	// coordinate lies outside [0,1]. Sampling never clamps.
	ErrSampleOutOfDomain = errors.New("palette sample outside [0,1]")
)

// Color is an 8-bit-per-channel RGB color.
type Color struct {
	R, G, B uint8
}

// RGB builds a Color from its channels.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a)*(1-t) + float64(b)*t)
}

// Lerp interpolates linearly between start and end. Each channel is
// interpolated independently and truncated to 8 bits.
func Lerp(start, end Color, t float64) Color {
	return Color{
		R: lerp(start.R, end.R, t),
		G: lerp(start.G, end.G, t),
		B: lerp(start.B, end.B, t),
	}
}

// Palette is an immutable piecewise-linear color ramp over [0,1].
//
// The interior keys split [0,1] into len(keys)+1 intervals; the implicit
// boundary keys 0 and 1 anchor the first and last color. colors[i] sits at
// key i-1 (or 0 for the first color) so consecutive colors span consecutive
// intervals.
type Palette struct {
	keys   []float64
	colors []Color
}

// New validates keys and colors and builds a Palette.
//
// keys lists the interior control points and must be strictly increasing
// within (0,1). A nil keys slice places the interior keys equispaced.
// The number of colors must equal len(keys)+2.
func New(colors []Color, keys []float64) (Palette, error) {
	cs := make([]Color, len(colors))
	copy(cs, colors)

	var ks []float64
	if keys == nil {
		if len(cs) < 2 {
			return Palette{}, fmt.Errorf("%w: got %d colors", ErrColorCount, len(cs))
		}
		l := len(cs) - 1
		ks = make([]float64, 0, l-1)
		for i := 1; i < l; i++ {
			ks = append(ks, float64(i)/float64(l))
		}
	} else {
		ks = make([]float64, len(keys))
		copy(ks, keys)
		for i, k := range ks {
			if k <= 0 || k >= 1 {
				return Palette{}, fmt.Errorf("%w: key %g", ErrKeyOutOfRange, k)
			}
			if i > 0 && ks[i-1] >= k {
				return Palette{}, fmt.Errorf("%w: %g before %g", ErrKeysNotIncreasing, ks[i-1], k)
			}
		}
	}

	if len(ks)+2 != len(cs) {
		return Palette{}, fmt.Errorf("%w: %d keys need %d colors, got %d",
			ErrColorCount, len(ks), len(ks)+2, len(cs))
	}

	return Palette{keys: ks, colors: cs}, nil
}

// Sample maps c in [0,1] to a color by interpolating linearly within the
// interval containing c. At a key the key's color is returned exactly.
// Coordinates outside [0,1] return ErrSampleOutOfDomain.
func (p Palette) Sample(c float64) (Color, error) {
	if !(c >= 0 && c <= 1) {
		return Color{}, fmt.Errorf("%w: %g", ErrSampleOutOfDomain, c)
	}

	// Index of the interval containing c: one past the last key below c.
	i := 0
	for j := len(p.keys) - 1; j >= 0; j-- {
		if p.keys[j] < c {
			i = j + 1
			break
		}
	}

	before, after := 0.0, 1.0
	if i > 0 {
		before = p.keys[i-1]
	}
	if i < len(p.keys) {
		after = p.keys[i]
	}
	t := (c - before) / (after - before)

	return Lerp(p.colors[i], p.colors[i+1], t), nil
}

// Keys returns a copy of the interior keys.
func (p Palette) Keys() []float64 {
	ks := make([]float64, len(p.keys))
	copy(ks, p.keys)
	return ks
}

// Colors returns a copy of the control colors.
func (p Palette) Colors() []Color {
	cs := make([]Color, len(p.colors))
	copy(cs, p.colors)
	return cs
}
