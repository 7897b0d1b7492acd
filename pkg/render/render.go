// Package render turns the integer histogram produced by the chaos game into
// a displayable 8-bit image via the log-density tone-mapping pipeline.
//
// The pipeline stages are ordered and non-commutative: log-density
// compression, normalization, gamma/vibrancy correction, an optional
// supersample downsample, clamping, and 8-bit quantization. Each stage is
// exported on its own so front-ends can rebuild partial pipelines; [Render]
// runs the whole sequence.
package render

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/emberlab/flambeau/pkg/histo"
)

// Default tone-mapping parameters, shared by the CLI and the preview server.
const (
	DefaultBrightness = 2.0
	DefaultGamma      = 2.2
	DefaultVibrancy   = 0.0
)

var (
	// ErrBufferSize is returned by [Render] when the histogram dimensions do
	// not match the configured output dimensions (after the optional
	// supersample downsample).
	ErrBufferSize = errors.New("histogram does not match configured dimensions")

	// ErrOversampledDims is returned by [Downsample] when the buffer was not
	// rendered at the oversampled resolution the radius requires.
	ErrOversampledDims = errors.New("buffer not rendered at oversampled dimensions")
)

// Config fixes the tone-mapping parameters for one render. It is immutable
// per render; changing parameters means re-rendering.
type Config struct {
	Width      int
	Height     int
	Brightness float64
	Gamma      float64
	Vibrancy   float64
	Grayscale  bool

	// OversampleRadius s > 0 means the histogram was simulated at
	// (2s+1)× linear resolution plus a 2s pixel border (see
	// [OversampledDims]) and is averaged down during tone-mapping.
	OversampleRadius int
}

// OversampledDims returns the buffer dimensions the chaos game must simulate
// at for a supersample radius, so each output pixel averages a full
// (2s+1)² block with an s pixel border around the image.
func OversampledDims(width, height, radius int) (int, int) {
	if radius <= 0 {
		return width, height
	}
	n := 2*radius + 1
	return width*n + 2*radius, height*n + 2*radius
}

// Render runs the full tone-mapping pipeline over the merged histogram and
// returns an 8-bit grayscale or RGB image. iters is the total iteration
// budget the histogram was simulated with; it anchors the log-density
// reference level.
func Render(hist *histo.Buffer[uint64], cfg Config, iters int) (image.Image, error) {
	wantW, wantH := OversampledDims(cfg.Width, cfg.Height, cfg.OversampleRadius)
	if hist.Width != wantW || hist.Height != wantH {
		return nil, fmt.Errorf("%w: have %dx%d, want %dx%d",
			ErrBufferSize, hist.Width, hist.Height, wantW, wantH)
	}

	buf := histo.Convert[float64](hist)
	LogDensity(buf, cfg.Brightness, float64(iters))
	Normalize(buf)
	Gamma(buf, cfg.Gamma, cfg.Vibrancy)

	if cfg.OversampleRadius > 0 {
		var err error
		buf, err = Downsample(buf, cfg.OversampleRadius)
		if err != nil {
			return nil, err
		}
	}

	Clamp(buf)
	return Image(Quantize(buf), cfg.Grayscale), nil
}

// smallestNormal is the smallest positive normal float64; buckets below it
// are treated as empty by the log-density stage.
const smallestNormal = 0x1p-1022

// LogDensity compresses the dynamic range of the histogram. Buckets with a
// positive normal alpha have all four channels rescaled by
//
//	s = max(0, ln(alpha) − ln(iters) + brightness) / alpha
//
// so alpha becomes the log-density itself; zero and denormal buckets are left
// untouched.
func LogDensity(buf *histo.Buffer[float64], brightness, iters float64) {
	logIters := math.Log(iters)
	for i := range buf.Buckets {
		bkt := &buf.Buckets[i]
		if !(bkt.Alpha >= smallestNormal) || math.IsInf(bkt.Alpha, 0) {
			continue
		}
		newAlpha := math.Max(0, math.Log(bkt.Alpha)-logIters+brightness)
		bkt.Scale(newAlpha / bkt.Alpha)
	}
}

// Normalize scales alpha by the buffer-wide maximum alpha and the color
// channels by a single shared buffer-wide maximum over R, G and B, preserving
// hue. An all-zero buffer is left untouched.
func Normalize(buf *histo.Buffer[float64]) {
	maxAlpha, maxRGB := 0.0, 0.0
	for _, bkt := range buf.Buckets {
		maxAlpha = math.Max(maxAlpha, bkt.Alpha)
		maxRGB = math.Max(maxRGB, math.Max(bkt.R, math.Max(bkt.G, bkt.B)))
	}
	for i := range buf.Buckets {
		bkt := &buf.Buckets[i]
		if maxAlpha > 0 {
			bkt.Alpha /= maxAlpha
		}
		if maxRGB > 0 {
			bkt.R /= maxRGB
			bkt.G /= maxRGB
			bkt.B /= maxRGB
		}
	}
}

// Gamma applies gamma correction blended by vibrancy. With p = 1/gamma − 1,
// each channel c becomes c · c^(p·(1−vibrancy)) · alpha^(p·vibrancy): at
// vibrancy 0 every channel is corrected independently, at vibrancy 1 the
// correction comes only from the alpha-derived scale and hue is preserved.
//
// Empty buckets (alpha 0) and zero channels are skipped so the negative
// exponent cannot manufacture infinities out of nothing.
func Gamma(buf *histo.Buffer[float64], gamma, vibrancy float64) {
	p := 1/gamma - 1
	pAlpha := p * vibrancy
	pChannel := p * (1 - vibrancy)
	for i := range buf.Buckets {
		bkt := &buf.Buckets[i]
		if bkt.Alpha == 0 {
			continue
		}
		alphaScale := math.Pow(bkt.Alpha, pAlpha)
		for _, c := range []*float64{&bkt.Alpha, &bkt.R, &bkt.G, &bkt.B} {
			if *c > 0 {
				*c *= math.Pow(*c, pChannel) * alphaScale
			}
		}
	}
}

// Downsample averages each (2r+1)² block of a buffer rendered at oversampled
// dimensions down to one output bucket, skipping the r pixel border.
func Downsample(buf *histo.Buffer[float64], radius int) (*histo.Buffer[float64], error) {
	n := 2*radius + 1
	outW := (buf.Width - 2*radius) / n
	outH := (buf.Height - 2*radius) / n
	if gotW, gotH := OversampledDims(outW, outH, radius); gotW != buf.Width || gotH != buf.Height {
		return nil, fmt.Errorf("%w: %dx%d does not divide into radius-%d blocks",
			ErrOversampledDims, buf.Width, buf.Height, radius)
	}

	out := histo.New[float64](outW, outH)
	norm := 1 / float64(n*n)
	for j := 0; j < outH; j++ {
		for i := 0; i < outW; i++ {
			var sum histo.Bucket[float64]
			x0, y0 := radius+i*n, radius+j*n
			for dy := 0; dy < n; dy++ {
				for dx := 0; dx < n; dx++ {
					sum.Add(*buf.At(x0+dx, y0+dy))
				}
			}
			sum.Scale(norm)
			*out.At(i, j) = sum
		}
	}
	return out, nil
}

// Clamp limits every channel to [0,1]. NaN channels (possible when a
// degenerate variation leaked non-finite points into the histogram) clamp to
// zero rather than poisoning the image.
func Clamp(buf *histo.Buffer[float64]) {
	for i := range buf.Buckets {
		bkt := &buf.Buckets[i]
		for _, c := range []*float64{&bkt.Alpha, &bkt.R, &bkt.G, &bkt.B} {
			switch {
			case !(*c > 0):
				*c = 0
			case *c > 1:
				*c = 1
			}
		}
	}
}

// Quantize scales every channel from [0,1] to [0,255] and truncates to
// 8 bits. Inputs are expected to be clamped.
func Quantize(buf *histo.Buffer[float64]) *histo.Buffer[uint8] {
	out := histo.New[uint8](buf.Width, buf.Height)
	for i, bkt := range buf.Buckets {
		out.Buckets[i] = histo.Bucket[uint8]{
			Alpha: uint8(255 * math.Max(0, bkt.Alpha)),
			R:     uint8(255 * math.Max(0, bkt.R)),
			G:     uint8(255 * math.Max(0, bkt.G)),
			B:     uint8(255 * math.Max(0, bkt.B)),
		}
	}
	return out
}

// Image converts a quantized buffer into an image. Grayscale output
// substitutes the alpha channel for luminance; otherwise the color channels
// are emitted as opaque RGB and alpha never reaches the image.
func Image(buf *histo.Buffer[uint8], grayscale bool) image.Image {
	bounds := image.Rect(0, 0, buf.Width, buf.Height)
	if grayscale {
		img := image.NewGray(bounds)
		for i, bkt := range buf.Buckets {
			img.Pix[i] = bkt.Alpha
		}
		return img
	}
	img := image.NewRGBA(bounds)
	for i, bkt := range buf.Buckets {
		img.Pix[4*i+0] = bkt.R
		img.Pix[4*i+1] = bkt.G
		img.Pix[4*i+2] = bkt.B
		img.Pix[4*i+3] = 255
	}
	return img
}
