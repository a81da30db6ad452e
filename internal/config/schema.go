package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON []byte

// ValidateFile checks a YAML config file against the embedded JSON schema.
func ValidateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	return ValidateYAML(data)
}

// ValidateYAML checks a YAML config document against the embedded JSON schema.
// Every violated field is listed in the returned error.
func ValidateYAML(data []byte) error {
	var doc map[string]any

	err := yaml.Unmarshal(data, &doc)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSchemaViolation, err)
	}

	// An empty file decodes to nil, which the schema rejects as a non-object.
	if doc == nil {
		doc = map[string]any{}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("validate config schema: %w", err)
	}

	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		violations = append(violations, fmt.Sprintf("%s: %s", verr.Field(), verr.Description()))
	}

	return fmt.Errorf("%w: %s", ErrSchemaViolation, strings.Join(violations, "; "))
}
