package util

import (
	"encoding/json"
	"testing"
)

type sampleArgs struct {
	Title   string `json:"title" jsonschema:"description=Short title"`
	DueDate string `json:"due_date"`
	Notes   string `json:"notes,omitempty"`
}

func TestGenerateJSONSchema(t *testing.T) {
	s := GenerateJSONSchema(&sampleArgs{})

	var schema map[string]any
	if err := json.Unmarshal([]byte(s), &schema); err != nil {
		t.Fatalf("schema is not valid JSON: %v", err)
	}
	if schema["type"] != "object" {
		t.Errorf("type = %v, want object", schema["type"])
	}
	props, ok := schema["properties"].(map[string]any)
	if !ok {
		t.Fatalf("schema should inline properties, got %v", schema)
	}
	for _, field := range []string{"title", "due_date", "notes"} {
		if _, ok := props[field]; !ok {
			t.Errorf("missing property %q", field)
		}
	}
	required, _ := schema["required"].([]any)
	for _, r := range required {
		if r == "notes" {
			t.Errorf("omitempty field should not be required")
		}
	}
}
