// Package server implements the HTTP preview front-end.
//
// The server exposes a minimal browser editor for flame descriptors and a
// render endpoint that accepts a descriptor body plus tone-mapping query
// parameters and responds with a PNG. Rendered images are cached by a
// SHA-256 key over the descriptor bytes and the render parameters, so
// repeated previews of an unchanged flame are served from disk.
package server

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/emberlab/flambeau/pkg/cache"
	"github.com/emberlab/flambeau/pkg/descriptor"
	"github.com/emberlab/flambeau/pkg/flame"
	"github.com/emberlab/flambeau/pkg/render"
)

const (
	// maxDescriptorBytes bounds the uploaded descriptor size.
	maxDescriptorBytes = 1 << 20

	// defaultIters is the iteration budget when the request omits iters.
	// Interactive previews favor latency over quality.
	defaultIters = 5_000_000

	// maxIters caps the per-request budget so a single request cannot pin
	// the host.
	maxIters = 500_000_000

	defaultDim     = 500
	maxDim         = 2000
	defaultThreads = 10

	// cacheTTL is how long rendered images stay reusable.
	cacheTTL = 24 * time.Hour
)

// Server is the HTTP preview front-end.
type Server struct {
	logger *log.Logger
	cache  cache.Cache
	router chi.Router
}

// New creates a Server. cache may be nil to disable image caching.
func New(logger *log.Logger, c cache.Cache) *Server {
	if c == nil {
		c = cache.NewNullCache()
	}
	s := &Server{logger: logger, cache: c}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/", s.handleEditor)
	r.Post("/render", s.handleRender)
	s.router = r

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// handleEditor serves the browser editor page.
func (s *Server) handleEditor(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, editorHTML)
}

// handleRender renders the posted descriptor and responds with a PNG.
//
// The descriptor format follows the Content-Type header (application/json or
// application/toml; JSON is the default). Render parameters come from query
// values: width, height, iters, threads, brightness, gamma, vibrancy,
// grayscale, oversample, seed.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	job := uuid.New()
	logger := s.logger.With("job", job.String())
	start := time.Now()

	body, err := readBody(r)
	if err != nil {
		logger.Warnf("rejecting render: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	params, err := paramsFromQuery(r)
	if err != nil {
		logger.Warnf("rejecting render: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	key := cache.RenderKey(body, params)
	if data, hit, err := s.cache.Get(r.Context(), key); err == nil && hit {
		logger.Infof("serving cached render (%d bytes)", len(data))
		writePNG(w, job, data)
		return
	}

	f, err := descriptor.Decode(bytes.NewReader(body), formatFromContentType(r))
	if err != nil {
		logger.Warnf("rejecting descriptor: %v", err)
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	logger.Infof("rendering %dx%d, %d iters, %d threads",
		params.Width, params.Height, params.Iters, params.Threads)

	simW, simH := render.OversampledDims(params.Width, params.Height, params.OversampleRadius)
	hist := f.Run(flame.RunConfig{
		Width:   simW,
		Height:  simH,
		Iters:   params.Iters,
		Threads: params.Threads,
		Seed:    params.Seed,
	}, logger)

	img, err := render.Render(hist, render.Config{
		Width:            params.Width,
		Height:           params.Height,
		Brightness:       params.Brightness,
		Gamma:            params.Gamma,
		Vibrancy:         params.Vibrancy,
		Grayscale:        params.Grayscale,
		OversampleRadius: params.OversampleRadius,
	}, params.Iters)
	if err != nil {
		logger.Errorf("tone-mapping failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := render.Encode(&buf, img, "png"); err != nil {
		logger.Errorf("encoding failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := s.cache.Set(r.Context(), key, buf.Bytes(), cacheTTL); err != nil {
		logger.Warnf("caching render failed: %v", err)
	}

	logger.Infof("rendered %d bytes (%s)", buf.Len(), time.Since(start).Round(time.Millisecond))
	writePNG(w, job, buf.Bytes())
}

func writePNG(w http.ResponseWriter, job uuid.UUID, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Render-Job", job.String())
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, maxDescriptorBytes))
	if err != nil {
		return nil, fmt.Errorf("read descriptor: %w", err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("empty descriptor body")
	}
	return body, nil
}

// formatFromContentType maps the request Content-Type to a descriptor format.
// JSON is the default.
func formatFromContentType(r *http.Request) string {
	ct := r.Header.Get("Content-Type")
	if strings.Contains(ct, "toml") {
		return "toml"
	}
	return "json"
}

// renderParams are the query-tunable render settings.
type renderParams struct {
	Width            int
	Height           int
	Iters            int
	Threads          int
	Brightness       float64
	Gamma            float64
	Vibrancy         float64
	Grayscale        bool
	OversampleRadius int
	Seed             uint64
}

// paramsFromQuery parses and bounds the render parameters.
func paramsFromQuery(r *http.Request) (renderParams, error) {
	q := r.URL.Query()
	p := renderParams{
		Width:      defaultDim,
		Height:     defaultDim,
		Iters:      defaultIters,
		Threads:    defaultThreads,
		Brightness: render.DefaultBrightness,
		Gamma:      render.DefaultGamma,
		Vibrancy:   render.DefaultVibrancy,
	}

	var err error
	if p.Width, err = intParam(q.Get("width"), p.Width, 1, maxDim); err != nil {
		return p, fmt.Errorf("width: %w", err)
	}
	if p.Height, err = intParam(q.Get("height"), p.Height, 1, maxDim); err != nil {
		return p, fmt.Errorf("height: %w", err)
	}
	if p.Iters, err = intParam(q.Get("iters"), p.Iters, 1, maxIters); err != nil {
		return p, fmt.Errorf("iters: %w", err)
	}
	if p.Threads, err = intParam(q.Get("threads"), p.Threads, 1, 64); err != nil {
		return p, fmt.Errorf("threads: %w", err)
	}
	if p.OversampleRadius, err = intParam(q.Get("oversample"), 0, 0, 4); err != nil {
		return p, fmt.Errorf("oversample: %w", err)
	}
	if p.Brightness, err = floatParam(q.Get("brightness"), p.Brightness); err != nil {
		return p, fmt.Errorf("brightness: %w", err)
	}
	if p.Gamma, err = floatParam(q.Get("gamma"), p.Gamma); err != nil {
		return p, fmt.Errorf("gamma: %w", err)
	}
	if p.Vibrancy, err = floatParam(q.Get("vibrancy"), p.Vibrancy); err != nil {
		return p, fmt.Errorf("vibrancy: %w", err)
	}
	p.Grayscale = q.Get("grayscale") == "true" || q.Get("grayscale") == "1"
	if v := q.Get("seed"); v != "" {
		if p.Seed, err = strconv.ParseUint(v, 10, 64); err != nil {
			return p, fmt.Errorf("seed: %w", err)
		}
	}
	return p, nil
}

func intParam(v string, def, lo, hi int) (int, error) {
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("%d outside [%d, %d]", n, lo, hi)
	}
	return n, nil
}

func floatParam(v string, def float64) (float64, error) {
	if v == "" {
		return def, nil
	}
	return strconv.ParseFloat(v, 64)
}
