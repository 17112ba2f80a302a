package engine

import (
	"github.com/hupe1980/vecdb/index"
	"github.com/hupe1980/vecdb/index/flat"
	"github.com/hupe1980/vecdb/index/hnsw"
)

// NewIndex constructs the index implementation selected by cfg.Type.
func NewIndex(cfg index.Config) (index.Index, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Type {
	case index.TypeFlat:
		return flat.New(func(o *flat.Options) {
			o.Dimension = cfg.Dimension
			o.Metric = cfg.Metric
			if cfg.Overwrite {
				o.DuplicatePolicy = flat.DuplicateOverwrite
			}
		})
	case index.TypeGraph:
		return hnsw.New(func(o *hnsw.Options) {
			o.Dimension = cfg.Dimension
			o.Metric = cfg.Metric
			if cfg.M > 0 {
				o.M = cfg.M
			}
			o.MMax0 = cfg.MMax0
			o.EfConstruction = cfg.EfConstruction
			o.Seed = cfg.Seed
		})
	default:
		// Validate rejects every other type.
		return nil, index.Unsupported(cfg.Type, "initialize")
	}
}
