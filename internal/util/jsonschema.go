package util

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// GenerateJSONSchema returns a JSON schema string for the given object type.
// The object should be a pointer to a struct to capture fields and tags.
// The schema is serialized verbatim into provider requests so the model knows
// the exact argument shape expected back.
func GenerateJSONSchema(obj any) string {
	r := &jsonschema.Reflector{
		// Inline the argument struct instead of emitting a $ref into $defs;
		// providers expect a self-contained object schema.
		DoNotReference: true,
	}
	schema := r.Reflect(obj)
	b, _ := json.Marshal(schema)
	return string(b)
}
