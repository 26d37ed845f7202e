// Package schema checks decoded configuration against a JSON Schema.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const resourceName = "linkpicker.schema.json"

// Issue is one violated keyword.
type Issue struct {
	// Location is a JSON pointer into the document, "/" for the root.
	Location string
	Message  string
}

// Error lists every leaf violation of one Validate call.
type Error struct {
	Issues []Issue
}

func (e *Error) Error() string {
	lines := make([]string, 0, len(e.Issues)+1)
	lines = append(lines, fmt.Sprintf("%d schema violation(s)", len(e.Issues)))
	for _, is := range e.Issues {
		lines = append(lines, fmt.Sprintf("- %s: %s", is.Location, is.Message))
	}
	return strings.Join(lines, "\n")
}

// Validator holds a compiled schema.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles schemaData.
func NewValidator(schemaData []byte) (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(resourceName, bytes.NewReader(schemaData)); err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	compiled, err := compiler.Compile(resourceName)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: compiled}, nil
}

// Validate checks doc, which may be any value that marshals to JSON. Struct
// values are compared under their json tags. Violations come back as *Error.
func (v *Validator) Validate(doc interface{}) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}

	err = v.schema.Validate(generic)
	if err == nil {
		return nil
	}
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err
	}
	out := &Error{}
	leaves(verr, func(e *jsonschema.ValidationError) {
		loc := e.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		out.Issues = append(out.Issues, Issue{Location: loc, Message: e.Message})
	})
	return out
}

func leaves(e *jsonschema.ValidationError, visit func(*jsonschema.ValidationError)) {
	if len(e.Causes) == 0 {
		visit(e)
		return
	}
	for _, c := range e.Causes {
		leaves(c, visit)
	}
}
