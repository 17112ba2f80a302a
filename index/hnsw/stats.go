package hnsw

import "github.com/hupe1980/vecdb/index"

// Stats returns statistics about the HNSW graph.
func (h *HNSW) Stats() index.Stats {
	st := index.Stats{
		Type:      index.TypeGraph,
		Dimension: h.opts.Dimension,
		Metric:    h.opts.Metric,
		Len:       len(h.nodes),
		MaxLevel:  h.maxLevel,
	}

	if len(h.nodes) == 0 {
		return st
	}

	st.Levels = make([]index.LevelStats, h.maxLevel+1)
	for level := range st.Levels {
		st.Levels[level].Level = level
	}

	for _, n := range h.nodes {
		// Loop through each connection
		for level := n.level; level >= 0; level-- {
			st.Levels[level].Nodes++
			st.Levels[level].Connections += len(n.connections[level])
		}
	}

	return st
}
