package fields

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildResultJSONSchema returns a JSON-Schema (draft 2020-12 subset) for the
// Result wire shape, as a generic map. The batch pipeline validates every
// result against it before persisting.
func BuildResultJSONSchema() map[string]any {
	required := []string{
		"license_number", "name_spouse1", "name_spouse2", "marriage_date",
		"raw_text", "success", "error",
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"license_number": fieldValueProp(),
			"name_spouse1":   fieldValueProp(),
			"name_spouse2":   fieldValueProp(),
			"marriage_date":  fieldValueProp(),
			"raw_text":       map[string]any{"type": "string"},
			"success":        map[string]any{"type": "boolean"},
			"error":          map[string]any{"type": []string{"string", "null"}},
		},
		"required": required,
	}
}

// fieldValueProp describes one value/confidence pair. No maximum on
// confidence: a matched field can score slightly above 1.0.
func fieldValueProp() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"value":      map[string]any{"type": "string"},
			"confidence": map[string]any{"type": "number", "minimum": 0.0},
		},
		"required": []string{"value", "confidence"},
	}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
