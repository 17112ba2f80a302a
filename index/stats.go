package index

import "github.com/hupe1980/vecdb/distance"

// Stats is a point-in-time description of an index.
type Stats struct {
	Type      Type            `json:"index_type"`
	Dimension int             `json:"dimension"`
	Metric    distance.Metric `json:"metric"`
	Len       int             `json:"len"`

	// Tombstones counts removed slots still held by a flat index.
	Tombstones int `json:"tombstones,omitempty"`

	// MaxLevel and Levels describe the layer structure of a graph index.
	MaxLevel int          `json:"max_level,omitempty"`
	Levels   []LevelStats `json:"levels,omitempty"`
}

// LevelStats describes one layer of a graph index.
type LevelStats struct {
	Level       int `json:"level"`
	Nodes       int `json:"nodes"`
	Connections int `json:"connections"`
}
