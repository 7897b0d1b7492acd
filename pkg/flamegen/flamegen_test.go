package flamegen

import (
	"math/rand/v2"
	"testing"

	"github.com/emberlab/flambeau/pkg/flame"
)

func TestGenerateDeterministic(t *testing.T) {
	a := Generate(42, nil)
	b := Generate(42, nil)

	if len(a.Entries) != len(b.Entries) {
		t.Fatalf("entry counts differ: %d vs %d", len(a.Entries), len(b.Entries))
	}
	for i := range a.Entries {
		if a.Entries[i] != b.Entries[i] {
			t.Errorf("entry %d differs:\n%+v\n%+v", i, a.Entries[i], b.Entries[i])
		}
	}
	if a.Symmetry != b.Symmetry {
		t.Errorf("symmetry differs: %d vs %d", a.Symmetry, b.Symmetry)
	}
}

func TestGenerateSeedsDiffer(t *testing.T) {
	a := Generate(1, nil)
	b := Generate(2, nil)
	if len(a.Entries) == len(b.Entries) && a.Entries[0] == b.Entries[0] {
		t.Error("different seeds produced identical first entries")
	}
}

func TestGenerateRespectsOptions(t *testing.T) {
	opts := &Options{
		MinEntries:  5,
		MaxEntries:  5,
		MinSymmetry: 2,
		MaxSymmetry: 2,
		MinColors:   4,
		MaxColors:   4,
		AffineScale: 0.5,
	}
	for seed := uint64(0); seed < 20; seed++ {
		f := Generate(seed, opts)
		if len(f.Entries) != 5 {
			t.Errorf("seed %d: %d entries, want 5", seed, len(f.Entries))
		}
		if f.Symmetry != 2 {
			t.Errorf("seed %d: symmetry %d, want 2", seed, f.Symmetry)
		}
		for i, e := range f.Entries {
			for _, c := range e.Function.Pre.Coeffs() {
				if c < -0.5 || c > 0.5 {
					t.Errorf("seed %d entry %d: affine coeff %g outside scale 0.5", seed, i, c)
				}
			}
		}
	}
}

func TestGenerateAlwaysValid(t *testing.T) {
	for seed := uint64(0); seed < 100; seed++ {
		f := Generate(seed, nil)
		if len(f.Entries) < 2 || len(f.Entries) > 4 {
			t.Errorf("seed %d: %d entries outside [2,4]", seed, len(f.Entries))
		}
		for i, e := range f.Entries {
			// Re-run the constructor to confirm the generated attributes
			// pass validation.
			if _, err := flame.NewEntry(e.Function, e.Weight, e.Color, e.ColorSpeed); err != nil {
				t.Errorf("seed %d entry %d: %v", seed, i, err)
			}
		}
		if _, err := f.Palette.Sample(0.5); err != nil {
			t.Errorf("seed %d: palette sample: %v", seed, err)
		}
	}
}

func TestRandomVariationArity(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	for range 200 {
		v := RandomVariation(rng)
		if got, want := len(v.Params()), v.Kind().NumParams(); got != want {
			t.Fatalf("kind %v: %d params, want %d", v.Kind(), got, want)
		}
	}
}
