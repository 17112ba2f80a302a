package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/vecdb"
	"github.com/hupe1980/vecdb/codec"
	"github.com/hupe1980/vecdb/internal/resource"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// logRequests assigns a request id, stores it in the request context and logs
// the outcome of every request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		ctx := vecdb.ContextWithRequestID(r.Context(), id)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r.WithContext(ctx))

		s.opts.Logger.WithContext(ctx).Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// admit runs next only when the admission controller accepts the request.
func (s *Server) admit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		release, err := s.opts.Controller.Admit()
		if err != nil {
			s.writeError(w, r, responseCodec(r), http.StatusTooManyRequests, kindRejected, err)
			return
		}
		defer release()

		next(w, r)
	}
}

// decode reads the body into v with the codec named by Content-Type. It
// writes the error response itself and reports false on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	c, ok := codec.ForContentType(r.Header.Get("Content-Type"))
	if !ok {
		s.writeError(w, r, codec.Default, http.StatusUnsupportedMediaType, kindBadRequest,
			errors.New("unsupported content type "+r.Header.Get("Content-Type")))
		return false
	}

	body, err := s.readBody(w, r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			s.writeError(w, r, c, http.StatusRequestEntityTooLarge, kindBadRequest, err)
		case errors.Is(err, resource.ErrMemoryLimitExceeded):
			s.writeError(w, r, c, http.StatusTooManyRequests, kindRejected, err)
		default:
			s.writeError(w, r, c, http.StatusBadRequest, kindBadRequest, err)
		}
		return false
	}
	defer s.opts.Controller.ReleaseMemory(int64(len(body)))

	if len(body) == 0 {
		s.writeError(w, r, c, http.StatusBadRequest, kindBadRequest, errors.New("empty request body"))
		return false
	}

	if err := c.Unmarshal(body, v); err != nil {
		s.writeError(w, r, c, http.StatusBadRequest, kindBadRequest, errors.New("invalid request body: "+err.Error()))
		return false
	}

	return true
}
