package resume

import (
	"encoding/json"
)

// SelectionSchema builds the JSON Schema of a selection response holding
// between max(1, minRequired) and maxRequired items, each with a non-empty
// link, title and reason.
func SelectionSchema(minRequired, maxRequired int) string {
	minItems := max(1, minRequired)
	maxItems := max(minItems, maxRequired)

	nonEmpty := map[string]any{"type": "string", "minLength": 1}

	schema := map[string]any{
		"$schema":  "http://json-schema.org/draft-07/schema#",
		"type":     "object",
		"required": []string{"selected"},
		"properties": map[string]any{
			"selected": map[string]any{
				"type":     "array",
				"minItems": minItems,
				"maxItems": maxItems,
				"items": map[string]any{
					"type":     "object",
					"required": []string{"link", "title", "reason"},
					"properties": map[string]any{
						"link":   nonEmpty,
						"title":  nonEmpty,
						"reason": nonEmpty,
					},
				},
			},
		},
	}

	// A map of strings, ints and slices always marshals.
	out, _ := json.Marshal(schema) //nolint:errchkjson // static shape

	return string(out)
}

// selectionResponse is the structured answer of a selection call.
type selectionResponse struct {
	Selected []struct {
		Link   string `json:"link"`
		Title  string `json:"title"`
		Reason string `json:"reason"`
	} `json:"selected"`
}
