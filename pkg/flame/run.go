package flame

import (
	"crypto/rand"
	"encoding/binary"
	"io"
	mathrand "math/rand/v2"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/emberlab/flambeau/pkg/histo"
)

// RunConfig fixes the simulation parameters for one render.
type RunConfig struct {
	Width   int
	Height  int
	Iters   int
	Threads int

	// Seed is the base seed for the per-worker generators. Zero draws a
	// fresh seed from the operating system, making the render
	// non-reproducible.
	Seed uint64
}

// Run simulates the chaos game and returns the merged histogram.
//
// With Threads <= 1 the simulation runs directly on the calling goroutine.
// Otherwise the iteration budget is split evenly across Threads workers, each
// with its own buffer and its own independently seeded generator; workers
// share no mutable state and take no locks. After all workers finish, the
// buffers merge in worker-index order so a fixed seed reproduces the same
// histogram bit for bit.
//
// logger may be nil to silence progress reporting.
func (f *Flame) Run(cfg RunConfig, logger *log.Logger) *histo.Buffer[uint64] {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = randomSeed()
	}

	if cfg.Threads <= 1 {
		logger.Debugf("simulating %d iterations on one worker", cfg.Iters)
		buf := histo.New[uint64](cfg.Width, cfg.Height)
		f.RunPartial(buf, cfg.Iters, newWorkerRNG(seed, 0))
		return buf
	}

	perWorker := cfg.Iters / cfg.Threads
	logger.Debugf("simulating %d iterations across %d workers (%d each)",
		cfg.Iters, cfg.Threads, perWorker)

	buffers := make([]*histo.Buffer[uint64], cfg.Threads)
	var wg sync.WaitGroup
	for w := range cfg.Threads {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			buf := histo.New[uint64](cfg.Width, cfg.Height)
			f.RunPartial(buf, perWorker, newWorkerRNG(seed, worker))
			buffers[worker] = buf
		}(w)
	}
	wg.Wait()

	logger.Debugf("merging %d worker buffers", cfg.Threads)
	return histo.Combine(buffers)
}

// newWorkerRNG builds the generator for one worker. Streams for different
// workers are decorrelated by running the worker index through a
// SplitMix64-style finalizer before seeding the PCG.
func newWorkerRNG(seed uint64, worker int) *mathrand.Rand {
	return mathrand.New(mathrand.NewPCG(seed, mixSeed(seed, uint64(worker))))
}

// mixSeed avalanches a base seed and a stream index into a new 64-bit seed
// using the canonical SplitMix64 constants.
func mixSeed(seed, stream uint64) uint64 {
	x := seed ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// randomSeed draws a seed from the operating system's entropy source.
func randomSeed() uint64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand never fails on supported platforms; fall back to a
		// fixed seed rather than aborting a render.
		return 0x5eed
	}
	return binary.LittleEndian.Uint64(b[:])
}
