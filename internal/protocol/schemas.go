package protocol

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"path"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

var schemaFiles = map[string]string{
	TypeHello:    "hello.schema.json",
	TypeCmd:      "cmd.schema.json",
	TypeHistory:  "history.schema.json",
	TypeDelegate: "delegate.schema.json",
}

// Validator checks inbound messages against the embedded schemas.
type Validator struct {
	byType map[string]*jsonschema.Schema
}

func NewValidator() (*Validator, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	for _, name := range schemaFiles {
		b, err := schemaFS.ReadFile(path.Join("schemas", name))
		if err != nil {
			return nil, err
		}
		if err := c.AddResource(name, bytes.NewReader(b)); err != nil {
			return nil, fmt.Errorf("schema %s: %w", name, err)
		}
	}
	v := &Validator{byType: map[string]*jsonschema.Schema{}}
	for typ, name := range schemaFiles {
		s, err := c.Compile(name)
		if err != nil {
			return nil, fmt.Errorf("compile %s: %w", name, err)
		}
		v.byType[typ] = s
	}
	return v, nil
}

// Validate checks raw against the schema for its type. Types without a
// schema are rejected.
func (v *Validator) Validate(typ string, raw []byte) error {
	s, ok := v.byType[typ]
	if !ok {
		return fmt.Errorf("unknown message type %q", typ)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return err
	}
	return s.Validate(doc)
}
