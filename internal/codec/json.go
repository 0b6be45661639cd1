package codec

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONCodec handles JSON import/export
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// Parse imports a snapshot from JSON
func (c *JSONCodec) Parse(r io.Reader) (*Snapshot, error) {
	var snapshot Snapshot
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	if snapshot.Version == 0 {
		snapshot.Version = 1
	}

	return &snapshot, nil
}

// Export exports a snapshot to JSON
func (c *JSONCodec) Export(snapshot *Snapshot, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(snapshot); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
