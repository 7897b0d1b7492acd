package variation

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/emberlab/flambeau/pkg/geom"
)

func testRNG() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func TestBuildArityContract(t *testing.T) {
	// For every kind, Build succeeds iff the parameter stream length exactly
	// equals the declared arity.
	for _, kind := range Kinds() {
		t.Run(kind.String(), func(t *testing.T) {
			arity := kind.NumParams()
			for n := 0; n <= maxParams+1; n++ {
				params := make([]float64, n)
				v, err := Build(kind, params)
				if n == arity {
					if err != nil {
						t.Errorf("Build(%s, %d params) error = %v, want nil", kind, n, err)
					}
					if v.Kind() != kind {
						t.Errorf("Build(%s).Kind() = %s", kind, v.Kind())
					}
					continue
				}
				if !errors.Is(err, ErrParamCount) {
					t.Errorf("Build(%s, %d params) error = %v, want ErrParamCount", kind, n, err)
				}
			}
		})
	}
}

func TestBuildUnknownKind(t *testing.T) {
	for _, k := range []Kind{-1, numKinds, numKinds + 7} {
		if _, err := Build(k, nil); !errors.Is(err, ErrUnknownKind) {
			t.Errorf("Build(%d) error = %v, want ErrUnknownKind", int(k), err)
		}
	}
}

func TestParseKindRoundTrip(t *testing.T) {
	for _, kind := range Kinds() {
		got, err := ParseKind(kind.String())
		if err != nil {
			t.Fatalf("ParseKind(%q) error = %v", kind.String(), err)
		}
		if got != kind {
			t.Errorf("ParseKind(%q) = %v, want %v", kind.String(), got, kind)
		}
	}
	if _, err := ParseKind("Squiggle"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("ParseKind(Squiggle) error = %v, want ErrUnknownKind", err)
	}
}

func TestParamsCopied(t *testing.T) {
	in := []float64{0.5, 1.5, 2.5}
	v := MustBuild(Blob, in...)
	got := v.Params()
	got[0] = 99
	if v.Params()[0] != 0.5 {
		t.Error("Params() must return a copy")
	}
	if len(got) != 3 {
		t.Errorf("len(Params()) = %d, want 3", len(got))
	}
}

func TestEvalClosedForms(t *testing.T) {
	p := geom.Point{X: 0.3, Y: 0.4}
	r := math.Sqrt(0.3*0.3 + 0.4*0.4) // 0.5
	theta := math.Atan(0.3 / 0.4)

	tests := []struct {
		name string
		v    Variation
		in   geom.Point
		want geom.Point
	}{
		{"Id", MustBuild(Id), p, p},
		{"Sinusoidal", MustBuild(Sinusoidal), p, geom.Point{X: math.Sin(0.3), Y: math.Sin(0.4)}},
		{"Spherical", MustBuild(Spherical), p, geom.Point{X: 0.3 / 0.25, Y: 0.4 / 0.25}},
		{"Polar", MustBuild(Polar), p, geom.Point{X: theta / math.Pi, Y: r - 1}},
		{"Horseshoe", MustBuild(Horseshoe), p, geom.Point{X: (0.3 - 0.4) * (0.3 + 0.4) / r, Y: 2 * 0.3 * 0.4 / r}},
		{"Eyefish", MustBuild(Eyefish), p, geom.Point{X: 2 * 0.3 / (r + 1), Y: 2 * 0.4 / (r + 1)}},
		{"Fisheye", MustBuild(Fisheye), p, geom.Point{X: 2 * 0.4 / (r + 1), Y: 2 * 0.3 / (r + 1)}},
		{"Cylinder", MustBuild(Cylinder), p, geom.Point{X: math.Sin(0.3), Y: 0.4}},
		{"BentPositive", MustBuild(Bent), p, p},
		{"BentNegative", MustBuild(Bent), geom.Point{X: -1, Y: -1}, geom.Point{X: -2, Y: -0.5}},
		{"Bubble", MustBuild(Bubble), p, geom.Point{X: 4 / 4.25 * 0.3, Y: 4 / 4.25 * 0.4}},
		{"CrossDuplicatesX", MustBuild(Cross), p, geom.Point{
			X: 0.3 / math.Abs(0.3*0.3-0.4*0.4),
			Y: 0.3 / math.Abs(0.3*0.3-0.4*0.4),
		}},
		{"Pdj", MustBuild(Pdj, 1, 2, 3, 4), p, geom.Point{
			X: math.Sin(0.4) - math.Cos(0.6),
			Y: math.Sin(0.9) - math.Cos(1.6),
		}},
		{"BlobSwapsAxes", MustBuild(Blob, 1, 1, 1), p, geom.Point{X: r * 0.4, Y: r * 0.3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.v.Eval(tt.in, testRNG())
			if math.Abs(got.X-tt.want.X) > 1e-12 || math.Abs(got.Y-tt.want.Y) > 1e-12 {
				t.Errorf("Eval(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestThetaBranches(t *testing.T) {
	// θ is measured from the positive y axis; y==0 takes the special cases.
	tests := []struct {
		name string
		in   geom.Point
		want float64 // theta/π via Polar's x output
	}{
		{"Origin", geom.Point{}, 0},
		{"PositiveXAxis", geom.Point{X: 1}, 0.5},
		{"NegativeXAxis", geom.Point{X: -1}, 1.5},
		{"Diagonal", geom.Point{X: 1, Y: 1}, math.Atan(1.0) / math.Pi},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MustBuild(Polar).Eval(tt.in, testRNG())
			if math.Abs(got.X-tt.want) > 1e-12 {
				t.Errorf("Polar(%v).X = %g, want %g", tt.in, got.X, tt.want)
			}
		})
	}
}

func TestDegenerateInputsPropagateIEEE(t *testing.T) {
	origin := geom.Point{}

	t.Run("SphericalAtOrigin", func(t *testing.T) {
		got := MustBuild(Spherical).Eval(origin, testRNG())
		if !math.IsNaN(got.X) || !math.IsNaN(got.Y) {
			t.Errorf("Spherical(0,0) = %v, want NaN/NaN", got)
		}
	})
	t.Run("HorseshoeAtOrigin", func(t *testing.T) {
		got := MustBuild(Horseshoe).Eval(origin, testRNG())
		if !math.IsNaN(got.X) || !math.IsNaN(got.Y) {
			t.Errorf("Horseshoe(0,0) = %v, want NaN/NaN", got)
		}
	})
	t.Run("CrossOnDiagonal", func(t *testing.T) {
		got := MustBuild(Cross).Eval(geom.Point{X: 1, Y: 1}, testRNG())
		if !math.IsInf(got.X, 1) {
			t.Errorf("Cross(1,1).X = %g, want +Inf", got.X)
		}
	})
}

func TestNoiseStaysScaled(t *testing.T) {
	// Noise scales each coordinate by factors in [-1,1).
	v := MustBuild(Noise)
	rng := testRNG()
	in := geom.Point{X: 2, Y: -3}
	for range 1000 {
		got := v.Eval(in, rng)
		if math.Abs(got.X) > 2 || math.Abs(got.Y) > 3 {
			t.Fatalf("Noise(%v) = %v, escaped the input envelope", in, got)
		}
	}
}

func TestJuliaScopeRadius(t *testing.T) {
	// With dist == power the radius collapses to r itself.
	v := MustBuild(JuliaScope, 2, 2)
	rng := testRNG()
	in := geom.Point{X: 0.3, Y: 0.4}
	for range 100 {
		got := v.Eval(in, rng)
		r := math.Sqrt(got.X*got.X + got.Y*got.Y)
		if math.Abs(r-0.5) > 1e-9 {
			t.Fatalf("JuliaScope radius = %g, want 0.5", r)
		}
	}
}
