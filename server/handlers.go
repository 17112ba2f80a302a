package server

import (
	"errors"
	"net/http"

	"github.com/hupe1980/vecdb"
	"github.com/hupe1980/vecdb/index"
)

type insertRequest struct {
	Vector     []float32      `json:"vector"`
	ID         *int64         `json:"id,omitempty"`
	IndexType  string         `json:"index_type"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

type batchObject struct {
	Vector     []float32      `json:"vector"`
	ID         *int64         `json:"id,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

type insertBatchRequest struct {
	Objects   []batchObject `json:"objects"`
	IndexType string        `json:"index_type"`
}

type searchRequest struct {
	Vector    []float32 `json:"vector"`
	K         int       `json:"k"`
	IndexType string    `json:"index_type"`
	EfSearch  int       `json:"ef_search,omitempty"`
}

type removeRequest struct {
	IDs       []int64 `json:"ids"`
	IndexType string  `json:"index_type"`
}

type queryRequest struct {
	ID        *int64 `json:"id"`
	IndexType string `json:"index_type"`
}

// idOrAuto maps an absent id to index.AutoID.
func idOrAuto(id *int64) int64 {
	if id == nil {
		return index.AutoID
	}
	return *id
}

func (s *Server) handleInsert(w http.ResponseWriter, r *http.Request) {
	var req insertRequest
	if !s.decode(w, r, &req) {
		return
	}
	c := responseCodec(r)

	t, err := index.ParseType(req.IndexType)
	if err != nil {
		s.writeDBError(w, r, c, err)
		return
	}
	if len(req.Vector) == 0 {
		s.writeError(w, r, c, http.StatusBadRequest, kindBadRequest, errMissingVector)
		return
	}

	id, err := s.db.InsertItem(r.Context(), t, vecdb.Item{
		ID:         idOrAuto(req.ID),
		Vector:     req.Vector,
		Attributes: req.Attributes,
	})
	if err != nil {
		s.writeDBError(w, r, c, err)
		return
	}

	s.writeOK(w, r, c, response{ID: &id})
}

func (s *Server) handleInsertBatch(w http.ResponseWriter, r *http.Request) {
	var req insertBatchRequest
	if !s.decode(w, r, &req) {
		return
	}
	c := responseCodec(r)

	t, err := index.ParseType(req.IndexType)
	if err != nil {
		s.writeDBError(w, r, c, err)
		return
	}
	if len(req.Objects) == 0 {
		s.writeError(w, r, c, http.StatusBadRequest, kindBadRequest, errors.New("missing objects in request"))
		return
	}

	items := make([]vecdb.Item, len(req.Objects))
	for i, obj := range req.Objects {
		items[i] = vecdb.Item{
			ID:         idOrAuto(obj.ID),
			Vector:     obj.Vector,
			Attributes: obj.Attributes,
		}
	}

	result, err := s.db.InsertBatch(r.Context(), t, items)
	if err != nil {
		s.writeDBError(w, r, c, err)
		return
	}

	resp := response{IDs: result.IDs}
	if result.Failed() > 0 {
		resp.Errors = errorStrings(result.Errors)
	}

	s.writeOK(w, r, c, resp)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !s.decode(w, r, &req) {
		return
	}
	c := responseCodec(r)

	t, err := index.ParseType(req.IndexType)
	if err != nil {
		s.writeDBError(w, r, c, err)
		return
	}
	if len(req.Vector) == 0 {
		s.writeError(w, r, c, http.StatusBadRequest, kindBadRequest, errMissingVector)
		return
	}

	ids, distances, err := s.db.Search(r.Context(), t, req.Vector, req.K, req.EfSearch)
	if err != nil {
		s.writeDBError(w, r, c, err)
		return
	}

	// Padding slots of the graph index are not reported.
	resp := response{}
	for i, id := range ids {
		if id == index.NotFoundID {
			continue
		}
		resp.Vectors = append(resp.Vectors, id)
		resp.Distances = append(resp.Distances, distances[i])
	}

	s.writeOK(w, r, c, resp)
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	var req removeRequest
	if !s.decode(w, r, &req) {
		return
	}
	c := responseCodec(r)

	t, err := index.ParseType(req.IndexType)
	if err != nil {
		s.writeDBError(w, r, c, err)
		return
	}

	if err := s.db.Remove(r.Context(), t, req.IDs); err != nil {
		s.writeDBError(w, r, c, err)
		return
	}

	s.writeOK(w, r, c, response{})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if !s.decode(w, r, &req) {
		return
	}
	c := responseCodec(r)

	t, err := index.ParseType(req.IndexType)
	if err != nil {
		s.writeDBError(w, r, c, err)
		return
	}
	if req.ID == nil {
		s.writeError(w, r, c, http.StatusBadRequest, kindBadRequest, errors.New("missing id in request"))
		return
	}

	rec, err := s.db.Query(r.Context(), t, *req.ID)
	if err != nil {
		s.writeDBError(w, r, c, err)
		return
	}

	s.writeOK(w, r, c, response{Data: rec})
}

type statsData struct {
	Indexes     []vecdb.IndexStats       `json:"indexes"`
	Metrics     *vecdb.BasicMetricsStats `json:"metrics,omitempty"`
	InFlight    int64                    `json:"in_flight"`
	Rejected    int64                    `json:"rejected"`
	MemoryBytes int64                    `json:"memory_bytes"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	c := responseCodec(r)

	indexes, err := s.db.Stats(r.Context())
	if err != nil {
		s.writeDBError(w, r, c, err)
		return
	}

	data := statsData{
		Indexes:     indexes,
		InFlight:    s.opts.Controller.InFlight(),
		Rejected:    s.opts.Controller.Rejected(),
		MemoryBytes: s.opts.Controller.MemoryUsage(),
	}
	if s.opts.Metrics != nil {
		m := s.opts.Metrics.GetStats()
		data.Metrics = &m
	}

	s.writeOK(w, r, c, response{Data: data})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeOK(w, r, responseCodec(r), response{Data: map[string]any{
		"status":  "ok",
		"indexes": s.db.Types(),
	}})
}
