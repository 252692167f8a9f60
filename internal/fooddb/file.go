package fooddb

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadFile reads a JSON food catalog from disk. The file is a flat array
// of Food entries.
func LoadFile(path string) (*Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read food catalog %s: %w", path, err)
	}

	var foods []Food
	if err := json.Unmarshal(data, &foods); err != nil {
		return nil, fmt.Errorf("failed to parse food catalog %s: %w", path, err)
	}
	return NewMemory(foods...), nil
}
