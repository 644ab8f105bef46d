package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// toDocuments re-decodes DTOs as generic JSON objects so properties can be
// removed or added.
func toDocuments(v any) ([]map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding response: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var docs []map[string]any
	if err := dec.Decode(&docs); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return docs, nil
}

// removePath deletes a dotted property path from doc, descending into arrays.
// It reports whether anything was removed.
func removePath(doc map[string]any, path string) bool {
	head, rest, nested := strings.Cut(path, ".")

	value, ok := doc[head]
	if !ok {
		return false
	}
	if !nested {
		delete(doc, head)
		return true
	}

	switch v := value.(type) {
	case map[string]any:
		return removePath(v, rest)
	case []any:
		removed := false
		for _, elem := range v {
			if m, ok := elem.(map[string]any); ok && removePath(m, rest) {
				removed = true
			}
		}
		return removed
	}
	return false
}

// mergeExtended adds extension properties to doc without overwriting
// properties the DTO already carries.
func mergeExtended(doc map[string]any, ext map[string]json.RawMessage) {
	for property, value := range ext {
		if _, exists := doc[property]; exists {
			continue
		}
		doc[property] = value
	}
}
