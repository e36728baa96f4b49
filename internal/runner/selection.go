package runner

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrInvalidSelection is returned for a selection file that is neither a
// JSON array of ids nor an object with an entity_ids array.
var ErrInvalidSelection = errors.New("invalid selection file")

// LoadSelection reads the device allow-list. A missing file or an empty
// path means every device is selected and returns nil.
func LoadSelection(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading selection %s: %w", path, err)
	}
	return ParseSelection(data)
}

// ParseSelection accepts ["a", "b"] or {"entity_ids": ["a", "b"]}. Blank
// ids are dropped.
func ParseSelection(data []byte) ([]string, error) {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		var obj struct {
			EntityIDs *[]string `json:"entity_ids"`
		}
		if err := json.Unmarshal(data, &obj); err != nil || obj.EntityIDs == nil {
			return nil, fmt.Errorf("%w: expected an array or an object with entity_ids", ErrInvalidSelection)
		}
		ids = *obj.EntityIDs
	}

	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out, nil
}
