package scenario

import (
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// envelopeSchema constrains the overall response shape only: an object of
// category arrays whose items are objects. Per-case defects are handled by
// the filter pass so one bad case never invalidates the whole set.
const envelopeSchema = `{
  "type": "object",
  "additionalProperties": {
    "type": "array",
    "items": {"type": "object"}
  }
}`

var compileEnvelope = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("scenario-set.json", strings.NewReader(envelopeSchema)); err != nil {
		return nil, err
	}
	return compiler.Compile("scenario-set.json")
})

// validateEnvelope checks a decoded generator response against the envelope
// schema.
func validateEnvelope(doc any) error {
	schema, err := compileEnvelope()
	if err != nil {
		return err
	}
	return schema.Validate(doc)
}
