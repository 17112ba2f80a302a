package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/hupe1980/vecdb"
	"github.com/hupe1980/vecdb/codec"
)

const (
	retCodeSuccess = 0
	retCodeError   = -1
)

// Kinds used by the transport on top of vecdb.Kind.
const (
	kindBadRequest = "bad_request"
	kindRejected   = "rejected"
)

// response is the envelope of every answer.
type response struct {
	RetCode   int       `json:"retCode"`
	ErrorMsg  string    `json:"errorMsg,omitempty"`
	Kind      string    `json:"kind,omitempty"`
	ID        *int64    `json:"id,omitempty"`
	IDs       []int64   `json:"ids,omitempty"`
	Errors    []string  `json:"errors,omitempty"`
	Vectors   []int64   `json:"vectors,omitempty"`
	Distances []float32 `json:"distances,omitempty"`
	Data      any       `json:"data,omitempty"`
}

// responseCodec answers in the request's encoding, falling back to JSON.
func responseCodec(r *http.Request) codec.Codec {
	c, ok := codec.ForContentType(r.Header.Get("Content-Type"))
	if !ok {
		return codec.Default
	}
	return c
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes))
	if err != nil {
		return nil, err
	}

	if err := s.opts.Controller.AcquireMemory(int64(len(body))); err != nil {
		return nil, fmt.Errorf("request body of %d bytes: %w", len(body), err)
	}

	return body, nil
}

func (s *Server) write(w http.ResponseWriter, r *http.Request, c codec.Codec, status int, resp response) {
	data, err := c.Marshal(resp)
	if err != nil {
		s.opts.Logger.WithContext(r.Context()).Error("encode response", "codec", c.Name(), "error", err)
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", c.ContentType())
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func (s *Server) writeOK(w http.ResponseWriter, r *http.Request, c codec.Codec, resp response) {
	resp.RetCode = retCodeSuccess
	s.write(w, r, c, http.StatusOK, resp)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, c codec.Codec, status int, kind string, err error) {
	s.write(w, r, c, status, response{
		RetCode:  retCodeError,
		ErrorMsg: err.Error(),
		Kind:     kind,
	})
}

// writeDBError maps an error returned by the DB to a status code.
func (s *Server) writeDBError(w http.ResponseWriter, r *http.Request, c codec.Codec, err error) {
	kind := vecdb.Kind(err)
	s.writeError(w, r, c, statusFor(kind), kind, err)
}

func statusFor(kind string) int {
	switch kind {
	case vecdb.KindUnknownIndexType,
		vecdb.KindDimensionMismatch,
		vecdb.KindInvalidK,
		vecdb.KindInvalidArgument,
		vecdb.KindDuplicateID:
		return http.StatusBadRequest
	case vecdb.KindRecordNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func errorStrings(errs []error) []string {
	out := make([]string, len(errs))
	for i, err := range errs {
		if err != nil {
			out[i] = err.Error()
		}
	}
	return out
}

var errMissingVector = errors.New("missing vector in request")
