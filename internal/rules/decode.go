package rules

import (
	"fmt"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// DecodeJSON reads a WebKit content blocker JSON array.
// Elements that are not objects become nil records, which the parser reports.
func DecodeJSON(data []byte) ([]Record, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, fmt.Errorf("failed to decode rule list: %w", err)
	}

	records := make([]Record, len(elems))
	for i, elem := range elems {
		var rec Record
		if err := json.Unmarshal(elem, &rec); err == nil {
			records[i] = rec
		}
	}
	return records, nil
}

// DecodeYAML reads a rule list written as a YAML sequence of {trigger, action} mappings
func DecodeYAML(data []byte) ([]Record, error) {
	var elems []any
	if err := yaml.Unmarshal(data, &elems); err != nil {
		return nil, fmt.Errorf("failed to decode rule list: %w", err)
	}

	records := make([]Record, len(elems))
	for i, elem := range elems {
		if rec, ok := elem.(map[string]any); ok {
			records[i] = rec
		}
	}
	return records, nil
}
