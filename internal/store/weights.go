package store

import (
	"encoding/json"
	"fmt"
	"os"
)

// BookWeights maps bookmaker keys to their consensus contribution weight.
// Unknown books get weight 1.0.
type BookWeights map[string]float64

// Weight returns the weight for book, defaulting to 1.0.
func (w BookWeights) Weight(book string) float64 {
	if v, ok := w[book]; ok && v > 0 {
		return v
	}
	return 1.0
}

// LoadBookWeights reads a weights file. A missing file yields an empty map
// (all books weighted 1.0), never an error. A file that no longer parses is
// rewritten with defaults so the next run starts clean.
func LoadBookWeights(path string) (BookWeights, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return BookWeights{}, nil
		}
		return nil, fmt.Errorf("reading weights file: %w", err)
	}
	var w BookWeights
	if err := json.Unmarshal(data, &w); err != nil {
		w = BookWeights{}
		// Best effort; a read-only file just means flat weights this run.
		_ = SaveBookWeights(path, w)
		return w, nil
	}
	return w, nil
}

// SaveBookWeights writes the weights map back to path.
func SaveBookWeights(path string, w BookWeights) error {
	data, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding weights: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing weights file %s: %w", path, err)
	}
	return nil
}
