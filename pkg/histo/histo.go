// Package histo provides the per-pixel accumulation buffer built up by the
// chaos game and consumed by the tone-mapping pipeline.
//
// A Buffer is generic over its bucket value type: workers accumulate into
// integer buffers, tone-mapping widens them to float64, and the final pixel
// stage narrows to uint8. Buffers from independent workers merge with
// [Combine], a commutative per-bucket summation.
package histo

import "fmt"

// Value constrains the numeric types a Buffer can hold.
type Value interface {
	~uint8 | ~uint32 | ~uint64 | ~float32 | ~float64
}

// Bucket accumulates hits for one pixel: a hit count (Alpha) plus the summed
// palette contribution per channel.
type Bucket[T Value] struct {
	Alpha T
	R     T
	G     T
	B     T
}

// Add accumulates other into b channel-wise.
func (b *Bucket[T]) Add(other Bucket[T]) {
	b.Alpha += other.Alpha
	b.R += other.R
	b.G += other.G
	b.B += other.B
}

// Scale multiplies every channel of b by s.
func (b *Bucket[T]) Scale(s T) {
	b.Alpha *= s
	b.R *= s
	b.G *= s
	b.B *= s
}

// Buffer is a width×height grid of buckets in row-major order.
type Buffer[T Value] struct {
	Width   int
	Height  int
	Buckets []Bucket[T]
}

// New allocates a zeroed buffer.
func New[T Value](width, height int) *Buffer[T] {
	return &Buffer[T]{
		Width:   width,
		Height:  height,
		Buckets: make([]Bucket[T], width*height),
	}
}

// At returns the bucket at pixel (x, y) for in-place mutation.
func (b *Buffer[T]) At(x, y int) *Bucket[T] {
	return &b.Buckets[x+y*b.Width]
}

// Reset zeroes every bucket, keeping the allocation.
func (b *Buffer[T]) Reset() {
	clear(b.Buckets)
}

// Combine merges the buffers by per-bucket summation into the first buffer
// and returns it. Summation is commutative and associative, so the merge
// order does not affect integer results.
//
// Combining zero buffers or buffers of unequal dimensions is a programming
// error and panics.
func Combine[T Value](buffers []*Buffer[T]) *Buffer[T] {
	if len(buffers) == 0 {
		panic("histo: combine of zero buffers")
	}
	combined := buffers[0]
	for _, buf := range buffers[1:] {
		if buf.Width != combined.Width || buf.Height != combined.Height {
			panic(fmt.Sprintf("histo: combine of mismatched buffers %dx%d and %dx%d",
				combined.Width, combined.Height, buf.Width, buf.Height))
		}
		for i := range combined.Buckets {
			combined.Buckets[i].Add(buf.Buckets[i])
		}
	}
	return combined
}

// Convert widens or narrows a buffer to a new value type S by plain numeric
// conversion of every channel.
func Convert[S, T Value](b *Buffer[T]) *Buffer[S] {
	out := New[S](b.Width, b.Height)
	for i, bkt := range b.Buckets {
		out.Buckets[i] = Bucket[S]{
			Alpha: S(bkt.Alpha),
			R:     S(bkt.R),
			G:     S(bkt.G),
			B:     S(bkt.B),
		}
	}
	return out
}
