// Package server exposes a vecdb.DB over HTTP.
//
// Every data endpoint takes a POST body encoded as JSON or msgpack (picked
// by Content-Type) and answers in the same encoding with a retCode envelope:
// 0 on success, -1 with errorMsg and kind on failure.
package server

import (
	"net/http"

	"github.com/klauspost/compress/gzhttp"

	"github.com/hupe1980/vecdb"
	"github.com/hupe1980/vecdb/internal/resource"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// DefaultMaxBodyBytes bounds request bodies when Options.MaxBodyBytes is zero.
const DefaultMaxBodyBytes = 32 << 20

// Options configures a Server.
type Options struct {
	// Logger receives one line per request. Defaults to vecdb.NoopLogger.
	Logger *vecdb.Logger

	// Controller applies admission limits. Nil admits everything.
	Controller *resource.Controller

	// Metrics, when set, is reported by /admin/stats.
	Metrics *vecdb.BasicMetricsCollector

	// MaxBodyBytes bounds a request body.
	MaxBodyBytes int64

	// DisableCompression turns off gzip response compression.
	DisableCompression bool
}

// Server is an http.Handler serving the vecdb API.
type Server struct {
	db      *vecdb.DB
	opts    Options
	handler http.Handler
}

// New creates a Server for db.
func New(db *vecdb.DB, optFns ...func(o *Options)) *Server {
	opts := Options{
		Logger:       vecdb.NoopLogger(),
		MaxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = vecdb.NoopLogger()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}

	s := &Server{
		db:   db,
		opts: opts,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /insert", s.admit(s.handleInsert))
	mux.HandleFunc("POST /insert_batch", s.admit(s.handleInsertBatch))
	mux.HandleFunc("POST /search", s.admit(s.handleSearch))
	mux.HandleFunc("POST /remove", s.admit(s.handleRemove))
	mux.HandleFunc("POST /query", s.admit(s.handleQuery))
	mux.HandleFunc("GET /admin/stats", s.handleStats)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	var h http.Handler = mux
	if !opts.DisableCompression {
		h = gzhttp.GzipHandler(h)
	}
	s.handler = s.logRequests(h)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}
