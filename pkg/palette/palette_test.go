package palette

import (
	"errors"
	"math"
	"testing"
)

func TestNewValidation(t *testing.T) {
	colors := []Color{RGB(0, 0, 0), RGB(128, 128, 128), RGB(255, 255, 255)}

	tests := []struct {
		name    string
		colors  []Color
		keys    []float64
		wantErr error
	}{
		{"Valid", colors, []float64{0.5}, nil},
		{"AutoKeys", colors, nil, nil},
		{"TwoColorAutoKeys", colors[:2], nil, nil},
		{"KeyAtZero", colors, []float64{0}, ErrKeyOutOfRange},
		{"KeyAtOne", colors, []float64{1}, ErrKeyOutOfRange},
		{"KeyNegative", colors, []float64{-0.25}, ErrKeyOutOfRange},
		{"NonMonotonic", append(colors, RGB(1, 2, 3)), []float64{0.6, 0.4}, ErrKeysNotIncreasing},
		{"RepeatedKey", append(colors, RGB(1, 2, 3)), []float64{0.5, 0.5}, ErrKeysNotIncreasing},
		{"TooFewColors", colors[:2], []float64{0.5}, ErrColorCount},
		{"TooManyColors", append(colors, RGB(1, 2, 3)), []float64{0.5}, ErrColorCount},
		{"SingleColorAutoKeys", colors[:1], nil, ErrColorCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.colors, tt.keys)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("New() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAutoKeysEquispaced(t *testing.T) {
	colors := []Color{{}, {}, {}, {}, {}}
	p, err := New(colors, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	want := []float64{0.25, 0.5, 0.75}
	got := p.Keys()
	if len(got) != len(want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("key[%d] = %g, want %g", i, got[i], want[i])
		}
	}
}

func TestSample(t *testing.T) {
	p, err := New(
		[]Color{RGB(0, 0, 0), RGB(100, 200, 50), RGB(255, 255, 255)},
		[]float64{0.5},
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tests := []struct {
		name string
		c    float64
		want Color
	}{
		{"Start", 0, RGB(0, 0, 0)},
		{"InteriorKey", 0.5, RGB(100, 200, 50)},
		{"End", 1, RGB(255, 255, 255)},
		{"FirstIntervalMid", 0.25, RGB(50, 100, 25)},
		{"SecondIntervalMid", 0.75, RGB(177, 227, 152)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Sample(tt.c)
			if err != nil {
				t.Fatalf("Sample(%g) error = %v", tt.c, err)
			}
			if got != tt.want {
				t.Errorf("Sample(%g) = %v, want %v", tt.c, got, tt.want)
			}
		})
	}
}

func TestSampleIsPure(t *testing.T) {
	p, err := New([]Color{RGB(10, 20, 30), RGB(200, 100, 0)}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	first, _ := p.Sample(0.37)
	for range 10 {
		got, err := p.Sample(0.37)
		if err != nil || got != first {
			t.Fatalf("Sample(0.37) = %v, %v; want stable %v", got, err, first)
		}
	}
}

func TestSampleOutOfDomain(t *testing.T) {
	p, err := New([]Color{{}, {}}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	for _, c := range []float64{-0.001, 1.001, math.NaN(), math.Inf(1)} {
		if _, err := p.Sample(c); !errors.Is(err, ErrSampleOutOfDomain) {
			t.Errorf("Sample(%g) error = %v, want ErrSampleOutOfDomain", c, err)
		}
	}
}

func TestLerpTruncates(t *testing.T) {
	got := Lerp(RGB(0, 0, 0), RGB(255, 255, 255), 0.999)
	if got != RGB(254, 254, 254) {
		t.Errorf("Lerp(..., 0.999) = %v, want {254 254 254}", got)
	}
}
