// Package schema validates raw question records against a JSON Schema document.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/superawat/Gate-QA/internal/domain"
)

// ErrNotFound is returned by Load when the schema file does not exist. Callers
// treat it as "validation disabled".
var ErrNotFound = errors.New("schema file not found")

// Validator checks records against a compiled JSON Schema.
type Validator struct {
	schema *gojsonschema.Schema
	path   string
}

// Load compiles the schema at path.
func Load(path string) (*Validator, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", path, err)
	}

	v, err := New(data)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", path, err)
	}
	v.path = path
	return v, nil
}

// New compiles a schema document.
func New(document []byte) (*Validator, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return nil, err
	}
	return &Validator{schema: s}, nil
}

// Path returns the file the schema was loaded from, if any.
func (v *Validator) Path() string {
	return v.path
}

// Validate reports whether the record as scraped satisfies the schema.
func (v *Validator) Validate(rec domain.Record) bool {
	return v.Check(rec) == nil
}

// Check validates the record and describes the violations.
func (v *Validator) Check(rec domain.Record) error {
	doc := []byte(rec.Source)
	if len(doc) == 0 {
		var err error
		if doc, err = json.Marshal(rec); err != nil {
			return fmt.Errorf("encode record: %w", err)
		}
	}

	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("validate record: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", domain.ErrSchemaRejected, strings.Join(msgs, "; "))
}
