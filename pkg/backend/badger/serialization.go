package badger

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

type nodeKind string

const (
	kindFile nodeKind = "file"
	kindDir  nodeKind = "dir"
)

// record is the stored form of a node. Content lives under its own key so
// that lookups and listings never load file data.
type record struct {
	Kind nodeKind `json:"kind"`
	Name string   `json:"name"`
}

func encodeRecord(r record) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to encode node record: %w", err)
	}
	return data, nil
}

func decodeRecord(data []byte) (record, error) {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return record{}, fmt.Errorf("failed to decode node record: %w", err)
	}
	return r, nil
}

func decodeID(val []byte) (uuid.UUID, error) {
	id, err := uuid.FromBytes(val)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid child UUID: %w", err)
	}
	return id, nil
}
