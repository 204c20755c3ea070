package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	jsonschemav5 "github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

const (
	configSchemaURL   = "hookcfg://pre-commit-config.json"
	manifestSchemaURL = "hookcfg://pre-commit-hooks.json"
)

var (
	compileOnce       sync.Once
	compiledConfig    *jsonschemav5.Schema
	compiledHooks     *jsonschemav5.Schema
	errCompileSchemas error
)

func reflector() *jsonschema.Reflector {
	return &jsonschema.Reflector{
		// Unknown keys are warnings, not schema violations.
		AllowAdditionalProperties:  true,
		RequiredFromJSONSchemaTags: true,
		Anonymous:                  true,
		FieldNameTag:               "yaml",
	}
}

// GenerateSchema returns the JSON Schema for .pre-commit-config.yaml,
// reflected from the Config type.
func GenerateSchema() ([]byte, error) {
	schema := reflector().Reflect(&Config{})
	schema.Title = "pre-commit configuration"
	schema.Description = "Schema for .pre-commit-config.yaml files."
	return json.MarshalIndent(schema, "", "  ")
}

// GenerateManifestSchema returns the JSON Schema for .pre-commit-hooks.yaml.
func GenerateManifestSchema() ([]byte, error) {
	schema := reflector().Reflect(&[]Hook{})
	schema.Title = "pre-commit hook manifest"
	schema.Description = "Schema for .pre-commit-hooks.yaml files."
	return json.MarshalIndent(schema, "", "  ")
}

func compileSchemas() error {
	compileOnce.Do(func() {
		configSchema, err := GenerateSchema()
		if err != nil {
			errCompileSchemas = fmt.Errorf("failed to generate config schema: %w", err)
			return
		}
		manifestSchema, err := GenerateManifestSchema()
		if err != nil {
			errCompileSchemas = fmt.Errorf("failed to generate manifest schema: %w", err)
			return
		}

		compiler := jsonschemav5.NewCompiler()
		if err := compiler.AddResource(configSchemaURL, bytes.NewReader(configSchema)); err != nil {
			errCompileSchemas = fmt.Errorf("failed to add config schema: %w", err)
			return
		}
		if err := compiler.AddResource(manifestSchemaURL, bytes.NewReader(manifestSchema)); err != nil {
			errCompileSchemas = fmt.Errorf("failed to add manifest schema: %w", err)
			return
		}

		if compiledConfig, err = compiler.Compile(configSchemaURL); err != nil {
			errCompileSchemas = fmt.Errorf("failed to compile config schema: %w", err)
			return
		}
		if compiledHooks, err = compiler.Compile(manifestSchemaURL); err != nil {
			errCompileSchemas = fmt.Errorf("failed to compile manifest schema: %w", err)
		}
	})
	return errCompileSchemas
}

// ValidateSchema checks raw YAML content against the configuration schema.
// This is the structural check; Validate adds the semantic rules.
func ValidateSchema(data []byte) error {
	if err := compileSchemas(); err != nil {
		return err
	}
	return validateAgainst(compiledConfig, data)
}

// ValidateManifestSchema checks raw YAML content against the manifest schema.
func ValidateManifestSchema(data []byte) error {
	if err := compileSchemas(); err != nil {
		return err
	}
	return validateAgainst(compiledHooks, data)
}

func validateAgainst(schema *jsonschemav5.Schema, data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("invalid YAML: %w", err)
	}

	// Round-trip through JSON so the validator sees plain JSON values.
	jsonData, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("document is not representable as JSON: %w", err)
	}
	var instance any
	if err := json.Unmarshal(jsonData, &instance); err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}

	if err := schema.Validate(instance); err != nil {
		var validationErr *jsonschemav5.ValidationError
		if errors.As(err, &validationErr) {
			issues := collectSchemaIssues(validationErr, nil)
			if len(issues) > 0 {
				return &ValidationError{Issues: issues}
			}
		}
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

// collectSchemaIssues flattens the leaf causes of a validation error.
func collectSchemaIssues(err *jsonschemav5.ValidationError, issues []Issue) []Issue {
	if len(err.Causes) == 0 {
		return append(issues, Issue{
			Path:    pointerToPath(err.InstanceLocation),
			Message: err.Message,
		})
	}
	for _, cause := range err.Causes {
		issues = collectSchemaIssues(cause, issues)
	}
	return issues
}

// pointerToPath turns a JSON pointer (/repos/0/hooks) into repos[0].hooks.
func pointerToPath(pointer string) string {
	var b strings.Builder
	for _, part := range strings.Split(strings.TrimPrefix(pointer, "/"), "/") {
		if part == "" {
			continue
		}
		if isIndex(part) {
			b.WriteString("[" + part + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}

func isIndex(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
