// Package schemas validates model-produced section content against the
// structural schema each resume section declares.
package schemas

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// SectionSchema is the declared structural shape of one section's content.
// It is consumed collaborator data, loaded from the initial-state document.
type SectionSchema struct {
	SectionName string            `json:"section_name,omitempty"`
	Type        string            `json:"type"` // "array", "object", or "text"
	ItemSchema  *SectionSchema    `json:"item_schema,omitempty"`
	Fields      map[string]string `json:"fields,omitempty"`
}

// ValidationError represents a schema validation failure with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// SchemaLoadError represents errors loading or translating the schema itself
type SchemaLoadError struct {
	Section string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema for %s: %s: %v", e.Section, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema for %s: %s", e.Section, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// ValidateSectionContent checks candidate content against a section's
// declared schema. A nil/empty schema accepts anything; otherwise the
// declared shape is translated to JSON Schema and enforced exactly.
func ValidateSectionContent(sectionName string, schemaJSON json.RawMessage, content string) error {
	if len(schemaJSON) == 0 || string(schemaJSON) == "null" {
		return nil
	}

	var declared SectionSchema
	if err := json.Unmarshal(schemaJSON, &declared); err != nil {
		return &SchemaLoadError{Section: sectionName, Message: "schema is not valid JSON", Cause: err}
	}

	doc, err := toJSONSchema(&declared)
	if err != nil {
		return &SchemaLoadError{Section: sectionName, Message: "schema translation failed", Cause: err}
	}
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return &SchemaLoadError{Section: sectionName, Message: "schema serialization failed", Cause: err}
	}

	// Free-text content may arrive unquoted; validate it as a JSON string.
	candidate := strings.TrimSpace(content)
	if !json.Valid([]byte(candidate)) {
		quoted, err := json.Marshal(candidate)
		if err != nil {
			return &SchemaLoadError{Section: sectionName, Message: "content could not be encoded", Cause: err}
		}
		candidate = string(quoted)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(string(docJSON)),
		gojsonschema.NewStringLoader(candidate),
	)
	if err != nil {
		return &SchemaLoadError{Section: sectionName, Message: "schema validation failed during load", Cause: err}
	}

	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}

// toJSONSchema translates the declared section shape into a JSON Schema
// document. Unknown declarations accept anything rather than rejecting
// content the model was never told how to shape.
func toJSONSchema(declared *SectionSchema) (map[string]any, error) {
	if declared == nil {
		return map[string]any{}, nil
	}

	switch strings.ToLower(declared.Type) {
	case "text", "string", "str", "":
		return map[string]any{"type": "string"}, nil
	case "array":
		items, err := toJSONSchema(declared.ItemSchema)
		if err != nil {
			return nil, err
		}
		return map[string]any{"type": "array", "items": items}, nil
	case "object":
		properties := make(map[string]any, len(declared.Fields))
		required := make([]string, 0, len(declared.Fields))
		for name, fieldType := range declared.Fields {
			properties[name] = map[string]any{"type": jsonType(fieldType)}
			required = append(required, name)
		}
		doc := map[string]any{
			"type":                 "object",
			"properties":           properties,
			"additionalProperties": false,
		}
		if len(required) > 0 {
			doc["required"] = required
		}
		return doc, nil
	default:
		return nil, fmt.Errorf("unsupported schema type %q", declared.Type)
	}
}

func jsonType(fieldType string) string {
	switch strings.ToLower(strings.TrimSpace(fieldType)) {
	case "int", "integer":
		return "integer"
	case "float", "number":
		return "number"
	case "bool", "boolean":
		return "boolean"
	case "list", "array":
		return "array"
	default:
		return "string"
	}
}
