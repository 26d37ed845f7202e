package config

//go:generate go run ../tools/schema-generator -o ../schema/linkpicker.schema.json

import (
	"encoding/json"

	"github.com/invopop/jsonschema"

	"github.com/grovetools/linkpicker/schema"
)

// GenerateSchema returns the JSON Schema of the core configuration. Nested
// sections reject unknown keys; unknown top-level keys are extensions.
func GenerateSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties:  true,
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		FieldNameTag:               "yaml",
	}

	s := r.Reflect(&Config{})
	for _, def := range s.Definitions {
		if def.Type == "object" {
			def.AdditionalProperties = jsonschema.FalseSchema
		}
	}
	s.Title = "linkpicker configuration"
	s.Description = "Schema for linkpicker.yml."
	s.Version = "http://json-schema.org/draft-07/schema#"

	return json.MarshalIndent(s, "", "  ")
}

// NewSchemaValidator compiles the generated schema.
func NewSchemaValidator() (*schema.Validator, error) {
	data, err := GenerateSchema()
	if err != nil {
		return nil, err
	}
	return schema.NewValidator(data)
}
