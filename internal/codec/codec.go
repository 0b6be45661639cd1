// Package codec provides import and export of blog snapshots in
// YAML and JSON. A snapshot carries posts with their tag names, so a
// dataset can be moved between instances without exposing row IDs.
package codec

import "io"

// Snapshot is the portable representation of the full dataset.
type Snapshot struct {
	Version int            `json:"version" yaml:"version"`
	Posts   []SnapshotPost `json:"posts" yaml:"posts"`
	Tags    []string       `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// SnapshotPost is a post with the names of its tags.
type SnapshotPost struct {
	Title string   `json:"title" yaml:"title"`
	Tags  []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Importer interface for importing snapshots from various formats
type Importer interface {
	Parse(r io.Reader) (*Snapshot, error)
	Format() string
}

// Exporter interface for exporting snapshots to various formats
type Exporter interface {
	Export(snapshot *Snapshot, w io.Writer) error
	Format() string
}
