// Package variation implements the closed library of nonlinear point
// transforms applied by the chaos game.
//
// Each [Kind] names one transform; a few kinds carry up to four real
// parameters and a few consume entropy. The set is fixed: [Build] checks the
// parameter count for every kind and [Variation.Eval] dispatches exhaustively,
// so an unknown kind can only arise from a corrupted discriminant.
//
// Degenerate inputs (division by a zero radius, an angle undefined at the
// origin) follow IEEE semantics and propagate NaN or infinity instead of
// failing; callers decide how to handle non-finite points.
package variation

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/emberlab/flambeau/pkg/geom"
)

var (
	// ErrUnknownKind is returned by [Build] and [ParseKind] when the
	// discriminant does not name one of the fixed kinds.
	ErrUnknownKind = errors.New("unknown variation kind")

	// ErrParamCount is returned by [Build] when the parameter stream does not
	// match the kind's declared arity exactly. Parameters are never padded or
	// truncated.
	ErrParamCount = errors.New("wrong number of variation parameters")
)

// Kind is the discriminant of a variation.
type Kind int

// The full variation library. Kinds listed with an arity carry that many
// parameters; all others are parameter-free.
const (
	Id Kind = iota
	Sinusoidal
	Spherical
	Swirl
	Horseshoe
	Polar
	Handkerchief
	Heart
	Disc
	BrokenDisc
	Spiral
	Hyperbolic
	Diamond
	Ex
	Bent
	Fisheye
	Eyefish
	Exponential
	Power
	Cosine
	Cylinder
	Tangent
	Bubble
	Cross
	Blob        // high, low, waves
	Pdj         // a, b, c, d
	Fan2        // x, y
	Rings2      // val
	Perspective // angle, dist
	Curl        // c1, c2
	Noise
	Gaussian
	JuliaScope // power, dist

	numKinds
)

// maxParams is the largest arity in the library (Pdj).
const maxParams = 4

var kindNames = [numKinds]string{
	Id:           "Id",
	Sinusoidal:   "Sinusoidal",
	Spherical:    "Spherical",
	Swirl:        "Swirl",
	Horseshoe:    "Horseshoe",
	Polar:        "Polar",
	Handkerchief: "Handkerchief",
	Heart:        "Heart",
	Disc:         "Disc",
	BrokenDisc:   "BrokenDisc",
	Spiral:       "Spiral",
	Hyperbolic:   "Hyperbolic",
	Diamond:      "Diamond",
	Ex:           "Ex",
	Bent:         "Bent",
	Fisheye:      "Fisheye",
	Eyefish:      "Eyefish",
	Exponential:  "Exponential",
	Power:        "Power",
	Cosine:       "Cosine",
	Cylinder:     "Cylinder",
	Tangent:      "Tangent",
	Bubble:       "Bubble",
	Cross:        "Cross",
	Blob:         "Blob",
	Pdj:          "Pdj",
	Fan2:         "Fan2",
	Rings2:       "Rings2",
	Perspective:  "Perspective",
	Curl:         "Curl",
	Noise:        "Noise",
	Gaussian:     "Gaussian",
	JuliaScope:   "JuliaScope",
}

var paramCounts = [numKinds]int{
	Blob:        3,
	Pdj:         4,
	Fan2:        2,
	Rings2:      1,
	Perspective: 2,
	Curl:        2,
	JuliaScope:  2,
}

// String returns the kind's descriptor name.
func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// NumParams returns the number of parameters the kind carries.
func (k Kind) NumParams() int {
	if k < 0 || k >= numKinds {
		return 0
	}
	return paramCounts[k]
}

// Valid reports whether k names one of the fixed kinds.
func (k Kind) Valid() bool {
	return k >= 0 && k < numKinds
}

// Kinds returns every kind in declaration order.
func Kinds() []Kind {
	ks := make([]Kind, numKinds)
	for i := range ks {
		ks[i] = Kind(i)
	}
	return ks
}

// ParseKind resolves a descriptor name to its kind.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// Variation is one transform from the library together with its parameters.
// The zero value is the identity transform.
type Variation struct {
	kind   Kind
	params [maxParams]float64
}

// Build constructs a Variation from a discriminant and a flat parameter
// stream. It succeeds iff len(params) equals the kind's declared arity; any
// mismatch is an ErrParamCount. Both random generation and descriptor
// decoding rely on this exactness.
func Build(kind Kind, params []float64) (Variation, error) {
	if !kind.Valid() {
		return Variation{}, fmt.Errorf("%w: %d", ErrUnknownKind, int(kind))
	}
	if len(params) != kind.NumParams() {
		return Variation{}, fmt.Errorf("%w: %s takes %d, got %d",
			ErrParamCount, kind, kind.NumParams(), len(params))
	}
	v := Variation{kind: kind}
	copy(v.params[:], params)
	return v, nil
}

// MustBuild is Build for known-good literals; it panics on error.
func MustBuild(kind Kind, params ...float64) Variation {
	v, err := Build(kind, params)
	if err != nil {
		panic(err)
	}
	return v
}

// Kind returns the variation's discriminant.
func (v Variation) Kind() Kind { return v.kind }

// Params returns a copy of the variation's parameters.
func (v Variation) Params() []float64 {
	ps := make([]float64, v.kind.NumParams())
	copy(ps, v.params[:])
	return ps
}

// Eval applies the transform to p. rng feeds the entropy-consuming kinds
// (Noise, Gaussian, JuliaScope) and is untouched by the rest.
//
// The derived radius r and angle θ are computed at most once per call and
// shared by whichever branch needs them. θ is measured from the positive y
// axis: atan(x/y), with y==0 mapping to 0, π/2 or 3π/2 depending on the sign
// of x. φ is the usual atan2(y, x) and is only consumed by JuliaScope.
func (v Variation) Eval(p geom.Point, rng *rand.Rand) geom.Point {
	x, y := p.X, p.Y

	var rVal, thetaVal, phiVal float64
	var rSet, thetaSet, phiSet bool

	r := func() float64 {
		if !rSet {
			rVal = math.Sqrt(x*x + y*y)
			rSet = true
		}
		return rVal
	}
	theta := func() float64 {
		if !thetaSet {
			switch {
			case y != 0:
				thetaVal = math.Atan(x / y)
			case x == 0:
				thetaVal = 0
			case x > 0:
				thetaVal = 0.5 * math.Pi
			default:
				thetaVal = 1.5 * math.Pi
			}
			thetaSet = true
		}
		return thetaVal
	}
	phi := func() float64 {
		if !phiSet {
			phiVal = math.Atan2(y, x)
			phiSet = true
		}
		return phiVal
	}

	psi := func() float64 { return rng.Float64() }
	lambda := func() float64 { return float64(2*rng.IntN(2) - 1) }

	var xo, yo float64
	switch v.kind {
	case Id:
		xo, yo = x, y
	case Sinusoidal:
		xo, yo = math.Sin(x), math.Sin(y)
	case Spherical:
		r2 := x*x + y*y
		xo, yo = x/r2, y/r2
	case Swirl:
		r2 := x*x + y*y
		sin, cos := math.Sincos(r2)
		xo, yo = x*sin-y*cos, x*cos+y*sin
	case Horseshoe:
		xo, yo = (x-y)*(x+y)/r(), 2*x*y/r()
	case Polar:
		xo, yo = theta()/math.Pi, r()-1
	case Handkerchief:
		xo, yo = math.Sin(theta()+r()), math.Cos(theta()-r())
	case Heart:
		xo, yo = r()*math.Sin(theta()*r()), -r()*math.Cos(theta()*r())
	case Disc:
		xo, yo = theta()/math.Pi*math.Sin(math.Pi*r()), theta()/math.Pi*math.Cos(math.Pi*r())
	case BrokenDisc:
		xo, yo = theta()/math.Pi*math.Sin(math.Pi*r()), theta()/math.Pi
	case Spiral:
		xo, yo = (y+math.Sin(r()))/r(), (x-math.Cos(r()))/r()
	case Hyperbolic:
		xo, yo = x/r(), r()*y
	case Diamond:
		xo, yo = math.Sin(theta())*math.Cos(r()), math.Cos(theta())*math.Sin(r())
	case Ex:
		p0 := math.Pow(math.Sin(theta()+r()), 3)
		p1 := math.Pow(math.Cos(theta()-r()), 3)
		xo, yo = r()*(p0+p1), r()*(p0-p1)
	case Bent:
		xo, yo = x, y
		if x < 0 {
			xo = 2 * x
		}
		if y < 0 {
			yo = 0.5 * y
		}
	case Fisheye:
		xo, yo = 2*y/(r()+1), 2*x/(r()+1)
	case Eyefish:
		xo, yo = 2*x/(r()+1), 2*y/(r()+1)
	case Exponential:
		e := math.Exp(x - 1)
		xo, yo = e*math.Cos(math.Pi*y), e*math.Sin(math.Pi*y)
	case Power:
		a := math.Pow(r(), x-1)
		xo, yo = a*y, a*x
	case Cosine:
		xo, yo = math.Cos(math.Pi*x)*math.Cosh(y), -math.Sin(math.Pi*x)*math.Sinh(y)
	case Cylinder:
		xo, yo = math.Sin(x), y
	case Tangent:
		xo, yo = math.Sin(x)/math.Cos(y), math.Tan(y)
	case Bubble:
		a := 4 / (x*x + y*y + 4)
		xo, yo = a*x, a*y
	case Cross:
		a := 1 / math.Abs(x*x-y*y)
		xo, yo = a*x, a*x
	case Blob:
		high, low, waves := v.params[0], v.params[1], v.params[2]
		a := r() * (low + (high-low)/2*(1+math.Sin(theta()*waves)))
		xo, yo = a*y, a*x
	case Pdj:
		a, b, c, d := v.params[0], v.params[1], v.params[2], v.params[3]
		xo, yo = math.Sin(a*y)-math.Cos(b*x), math.Sin(c*x)-math.Cos(d*y)
	case Fan2:
		fx, fy := v.params[0], v.params[1]
		p1 := math.Pi * fx * fx
		t := theta() + fy - p1*math.Trunc(2*theta()*fy/p1)
		sgn := 1.0
		if t > p1/2 {
			sgn = -1.0
		}
		xo, yo = r()*math.Cos(theta()+sgn*p1/2), r()*math.Sin(theta()+sgn*p1/2)
	case Rings2:
		val := v.params[0]
		pp := val * val
		t := r() - 2*pp*math.Trunc((r()+pp)/2/pp) + r()*(1-pp)
		xo, yo = t*x, t*y
	case Perspective:
		angle, dist := v.params[0], v.params[1]
		a := dist / (dist - y*math.Sin(angle))
		xo, yo = a*x, a*y*math.Cos(angle)
	case Curl:
		c1, c2 := v.params[0], v.params[1]
		t1 := 1 + c1*x + c2*(x*x-y*y)
		t2 := c1*y + 2*c2*x*y
		a := 1 / (t1*t1 + t2*t2)
		xo, yo = a*(x*t1+y*t2), a*(y*t1-x*t2)
	case Noise:
		psi1 := psi()
		psi2 := 2 * math.Pi * psi()
		xo, yo = psi1*x*math.Cos(psi2), psi1*y*math.Sin(psi2)
	case Gaussian:
		a := 0.0
		for range 4 {
			a += psi() - 2
		}
		psi5 := 2 * math.Pi * psi()
		xo, yo = a*math.Cos(psi5), math.Sin(psi5)
	case JuliaScope:
		power, dist := v.params[0], v.params[1]
		p3 := math.Trunc(math.Abs(power) * psi())
		t := (lambda()*phi() + 2*math.Pi*p3) / power
		a := math.Pow(r(), dist/power)
		xo, yo = a*math.Cos(t), a*math.Sin(t)
	default:
		panic(fmt.Sprintf("variation: invalid kind %d", int(v.kind)))
	}

	return geom.Point{X: xo, Y: yo}
}
