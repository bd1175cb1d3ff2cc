package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/huynhduongtien171003/amis-demo/constants"
)

// The payload shape is fixed per document kind, so each schema is compiled
// once and shared by every request.
var (
	invoiceShape = &shape{name: "invoice.json", build: invoiceShapeMap}
	orderShape   = &shape{name: "order.json", build: orderShapeMap}
)

type shape struct {
	name  string
	build func() map[string]any

	once   sync.Once
	schema *jsonschema.Schema
	err    error
}

func (s *shape) compiled() (*jsonschema.Schema, error) {
	s.once.Do(func() {
		b, err := json.Marshal(s.build())
		if err != nil {
			s.err = fmt.Errorf("marshal shape: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(s.name, bytes.NewReader(b)); err != nil {
			s.err = fmt.Errorf("add shape: %w", err)
			return
		}
		s.schema, s.err = c.Compile(s.name)
	})
	return s.schema, s.err
}

// CheckShape validates raw model output against the payload shape for kind.
// The shapes are deliberately loose; a failure means the model drifted from
// the requested format, not that the payload is unusable.
func CheckShape(kind constants.DocumentKind, data []byte) error {
	sh := invoiceShape
	if kind == constants.KindOrder {
		sh = orderShape
	}
	schema, err := sh.compiled()
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("payload shape: %w", err)
	}
	return nil
}
