// Package httpapi exposes the styling workflow over HTTP.
//
// Endpoints:
//
//	GET  /                  health check
//	POST /chat              multipart form: text, image
//	POST /fashion-workflow  JSON: {"base64_image": "...", "user_input": "..."}
//
// Both POST endpoints return the same JSON body. Pipeline failures are
// reported in the body with success=false; only malformed input is
// rejected with a 4xx status.
package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzhttp"

	"github.com/fpang/vibe-fashion/internal/imageutil"
	"github.com/fpang/vibe-fashion/internal/metrics"
	"github.com/fpang/vibe-fashion/internal/stylist"
)

// DefaultMaxUploadBytes bounds the decoded image size when Options leaves it unset.
const DefaultMaxUploadBytes int64 = 10 << 20

// Processor runs one styling request. *stylist.Workflow implements it.
type Processor interface {
	Process(ctx context.Context, req stylist.Request) *stylist.Result
}

// Options configures the HTTP surface.
type Options struct {
	// MaxUploadBytes bounds the decoded image size.
	MaxUploadBytes int64
	// MaxImageDimension is the longest edge after normalization.
	MaxImageDimension int
	// CORSOrigins lists browser origins allowed to call the API. "*" allows any.
	CORSOrigins []string
	// Metrics receives RequestLatencyMs per endpoint. Nil disables metrics.
	Metrics *metrics.Emitter
}

type server struct {
	workflow Processor
	opts     Options
}

// NewRouter returns the API handler wrapped with request ids, access
// logging, metrics, panic recovery, CORS and gzip.
func NewRouter(workflow Processor, opts Options) http.Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if opts.MaxImageDimension <= 0 {
		opts.MaxImageDimension = imageutil.DefaultMaxDimension
	}
	s := &server{workflow: workflow, opts: opts}

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		withAccessLog,
		withMetrics(opts.Metrics),
		middleware.Recoverer,
		withCORS(opts.CORSOrigins),
	)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/", s.handleHealth)
	r.Post("/chat", s.handleChat)
	r.Post("/fashion-workflow", s.handleFashionWorkflow)

	return gzhttp.GzipHandler(r)
}
