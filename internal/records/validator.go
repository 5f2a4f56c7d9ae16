package records

import (
	"encoding/json"
	"fmt"
	"strings"

	_ "embed"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/record-database-v1.json
var recordDatabaseSchemaJSON string

type Validator struct {
	schema *jsonschema.Schema
}

func NewValidator() (*Validator, error) {
	compiler := jsonschema.NewCompiler()

	if err := compiler.AddResource("record-database-v1.json",
		strings.NewReader(recordDatabaseSchemaJSON)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	schema, err := compiler.Compile("record-database-v1.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return &Validator{schema: schema}, nil
}

func (v *Validator) ValidateDatabase(data []byte) error {
	var db interface{}
	if err := json.Unmarshal(data, &db); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	if err := v.schema.Validate(db); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	return nil
}
