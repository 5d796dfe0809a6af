package io

import (
	"encoding/json"
	"fmt"
	"io"
)

// WriteJSON encodes d as indented JSON.
func WriteJSON(d Descriptor, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadJSON decodes a descriptor written by [WriteJSON].
// It does not close r.
func ReadJSON(r io.Reader) (Descriptor, error) {
	var d Descriptor
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return Descriptor{}, fmt.Errorf("decode: %w", err)
	}
	return d, nil
}
