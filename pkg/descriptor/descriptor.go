// Package descriptor reads and writes flame descriptor files.
//
// A descriptor is the serialized form of a [flame.Flame]: bounds, weighted
// function entries (variation name plus parameters, two affine matrices,
// color attributes), an optional final transform, a symmetry order, and a
// palette. JSON and TOML carry the same wire shape; the format is chosen by
// file extension.
//
// Decoding enforces every construction invariant of the core types: a
// malformed variation arity, an out-of-range color, or an invalid palette key
// fails the decode with the core package's sentinel error wrapped in context.
package descriptor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/emberlab/flambeau/pkg/flame"
	"github.com/emberlab/flambeau/pkg/geom"
	"github.com/emberlab/flambeau/pkg/palette"
	"github.com/emberlab/flambeau/pkg/variation"
)

// ErrUnsupportedFormat is returned when a file extension or format name does
// not map to a supported descriptor codec.
var ErrUnsupportedFormat = errors.New("unsupported descriptor format")

// defaultColorSpeed is used when an entry omits color_speed.
const defaultColorSpeed = 0.5

// Wire shape. Affine matrices are six coefficients in descriptor order
// (linear part first, translation last); both default to identity.

type boundsWire struct {
	XMin float64 `json:"x_min" toml:"x_min"`
	XMax float64 `json:"x_max" toml:"x_max"`
	YMin float64 `json:"y_min" toml:"y_min"`
	YMax float64 `json:"y_max" toml:"y_max"`
}

type functionWire struct {
	Variation string    `json:"variation,omitempty" toml:"variation,omitempty"`
	Params    []float64 `json:"params,omitempty" toml:"params,omitempty"`
	Pre       []float64 `json:"pre,omitempty" toml:"pre,omitempty"`
	Post      []float64 `json:"post,omitempty" toml:"post,omitempty"`
}

type entryWire struct {
	Weight     float64   `json:"weight" toml:"weight"`
	Variation  string    `json:"variation,omitempty" toml:"variation,omitempty"`
	Params     []float64 `json:"params,omitempty" toml:"params,omitempty"`
	Pre        []float64 `json:"pre,omitempty" toml:"pre,omitempty"`
	Post       []float64 `json:"post,omitempty" toml:"post,omitempty"`
	Color      float64   `json:"color" toml:"color"`
	ColorSpeed *float64  `json:"color_speed,omitempty" toml:"color_speed,omitempty"`
}

type paletteWire struct {
	Colors [][]int   `json:"colors" toml:"colors"`
	Keys   []float64 `json:"keys,omitempty" toml:"keys,omitempty"`
}

type flameWire struct {
	Bounds    *boundsWire   `json:"bounds,omitempty" toml:"bounds,omitempty"`
	Symmetry  int           `json:"symmetry,omitempty" toml:"symmetry,omitempty"`
	Final     *functionWire `json:"final,omitempty" toml:"final,omitempty"`
	Functions []entryWire   `json:"functions" toml:"functions"`
	Palette   paletteWire   `json:"palette" toml:"palette"`
}

// Decode reads a descriptor from r in the named format ("json" or "toml")
// and builds a validated Flame.
func Decode(r io.Reader, format string) (flame.Flame, error) {
	var wire flameWire
	switch strings.ToLower(format) {
	case "json":
		if err := json.NewDecoder(r).Decode(&wire); err != nil {
			return flame.Flame{}, fmt.Errorf("decode json: %w", err)
		}
	case "toml":
		if _, err := toml.NewDecoder(r).Decode(&wire); err != nil {
			return flame.Flame{}, fmt.Errorf("decode toml: %w", err)
		}
	default:
		return flame.Flame{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return build(wire)
}

// FromFile reads the descriptor at path, dispatching on the file extension
// (.json or .toml).
func FromFile(path string) (flame.Flame, error) {
	format, err := formatFromPath(path)
	if err != nil {
		return flame.Flame{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return flame.Flame{}, fmt.Errorf("read %s: %w", path, err)
	}
	f, err := Decode(bytes.NewReader(data), format)
	if err != nil {
		return flame.Flame{}, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Encode writes f to w as a descriptor in the named format.
func Encode(w io.Writer, f flame.Flame, format string) error {
	wire := toWire(f)
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(wire)
	case "toml":
		return toml.NewEncoder(w).Encode(wire)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// ToFile writes f to path, dispatching the format on the file extension.
func ToFile(path string, f flame.Flame) error {
	format, err := formatFromPath(path)
	if err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Encode(out, f, format); err != nil {
		out.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return out.Close()
}

func formatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json", nil
	case ".toml":
		return "toml", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

func build(wire flameWire) (flame.Flame, error) {
	bounds := geom.UnitRect()
	if wire.Bounds != nil {
		bounds = geom.Rect{
			XMin: wire.Bounds.XMin, XMax: wire.Bounds.XMax,
			YMin: wire.Bounds.YMin, YMax: wire.Bounds.YMax,
		}
	}

	final := flame.IdentityFunction()
	if wire.Final != nil {
		fn, err := buildFunction(*wire.Final)
		if err != nil {
			return flame.Flame{}, fmt.Errorf("final: %w", err)
		}
		final = fn
	}

	entries := make([]flame.FunctionEntry, 0, len(wire.Functions))
	for i, ew := range wire.Functions {
		fn, err := buildFunction(functionWire{
			Variation: ew.Variation,
			Params:    ew.Params,
			Pre:       ew.Pre,
			Post:      ew.Post,
		})
		if err != nil {
			return flame.Flame{}, fmt.Errorf("function %d: %w", i, err)
		}
		speed := defaultColorSpeed
		if ew.ColorSpeed != nil {
			speed = *ew.ColorSpeed
		}
		entry, err := flame.NewEntry(fn, ew.Weight, ew.Color, speed)
		if err != nil {
			return flame.Flame{}, fmt.Errorf("function %d: %w", i, err)
		}
		entries = append(entries, entry)
	}

	pal, err := buildPalette(wire.Palette)
	if err != nil {
		return flame.Flame{}, fmt.Errorf("palette: %w", err)
	}

	return flame.Flame{
		Entries:  entries,
		Final:    final,
		Symmetry: wire.Symmetry,
		Palette:  pal,
		Bounds:   bounds,
	}, nil
}

func buildFunction(wire functionWire) (flame.Function, error) {
	name := wire.Variation
	if name == "" {
		name = variation.Id.String()
	}
	kind, err := variation.ParseKind(name)
	if err != nil {
		return flame.Function{}, err
	}
	v, err := variation.Build(kind, wire.Params)
	if err != nil {
		return flame.Function{}, err
	}

	pre, err := buildAffine(wire.Pre)
	if err != nil {
		return flame.Function{}, fmt.Errorf("pre: %w", err)
	}
	post, err := buildAffine(wire.Post)
	if err != nil {
		return flame.Function{}, fmt.Errorf("post: %w", err)
	}

	return flame.Function{Var: v, Pre: pre, Post: post}, nil
}

func buildAffine(coeffs []float64) (geom.Affine, error) {
	if coeffs == nil {
		return geom.Identity(), nil
	}
	if len(coeffs) != 6 {
		return geom.Affine{}, fmt.Errorf("affine needs 6 coefficients, got %d", len(coeffs))
	}
	return geom.AffineFromCoeffs([6]float64(coeffs)), nil
}

func buildPalette(wire paletteWire) (palette.Palette, error) {
	colors := make([]palette.Color, 0, len(wire.Colors))
	for i, c := range wire.Colors {
		if len(c) != 3 {
			return palette.Palette{}, fmt.Errorf("color %d: needs 3 channels, got %d", i, len(c))
		}
		for _, ch := range c {
			if ch < 0 || ch > 255 {
				return palette.Palette{}, fmt.Errorf("color %d: channel %d outside [0,255]", i, ch)
			}
		}
		colors = append(colors, palette.RGB(uint8(c[0]), uint8(c[1]), uint8(c[2])))
	}
	return palette.New(colors, wire.Keys)
}

func toWire(f flame.Flame) flameWire {
	b := f.Bounds
	entries := make([]entryWire, 0, len(f.Entries))
	for _, e := range f.Entries {
		fw := functionToWire(e.Function)
		speed := e.ColorSpeed
		entries = append(entries, entryWire{
			Weight:     e.Weight,
			Variation:  fw.Variation,
			Params:     fw.Params,
			Pre:        fw.Pre,
			Post:       fw.Post,
			Color:      e.Color,
			ColorSpeed: &speed,
		})
	}

	final := functionToWire(f.Final)

	colors := f.Palette.Colors()
	pw := paletteWire{Colors: make([][]int, 0, len(colors)), Keys: f.Palette.Keys()}
	for _, c := range colors {
		pw.Colors = append(pw.Colors, []int{int(c.R), int(c.G), int(c.B)})
	}

	return flameWire{
		Bounds:    &boundsWire{XMin: b.XMin, XMax: b.XMax, YMin: b.YMin, YMax: b.YMax},
		Symmetry:  f.Symmetry,
		Final:     &final,
		Functions: entries,
		Palette:   pw,
	}
}

func functionToWire(fn flame.Function) functionWire {
	pre := fn.Pre.Coeffs()
	post := fn.Post.Coeffs()
	return functionWire{
		Variation: fn.Var.Kind().String(),
		Params:    fn.Var.Params(),
		Pre:       pre[:],
		Post:      post[:],
	}
}
