// Package scenario defines the intermediate representation between the text
// generator's output and the assembled project, and the synthesizer that
// produces it.
package scenario

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Assertion kinds accepted from the generator. The set is closed; anything
// else is dropped during filtering.
const (
	KindStatusCode        = "StatusCode"
	KindSoapResponseShape = "SoapResponseShape"
	KindSoapFault         = "SoapFault"
	KindXPathMatch        = "XPathMatch"
)

// Assertion is one check attached to a test case.
type Assertion struct {
	Kind  string `json:"kind"`
	Value string `json:"value,omitempty"`
	Path  string `json:"path,omitempty"`
}

// ScenarioCase is one generated test case.
type ScenarioCase struct {
	Name         string      `json:"name"`
	OperationRef string      `json:"operationRef"`
	Payload      Payload     `json:"payload,omitempty"`
	Assertions   []Assertion `json:"assertions,omitempty"`
}

// ScenarioSet maps a category label (e.g. "happy_path") to its cases.
type ScenarioSet map[string][]ScenarioCase

// PayloadField is one request field with its literal value.
type PayloadField struct {
	Name  string
	Value any
}

// Payload is an ordered list of request fields. JSON object key order is
// preserved on decode so the rendered request body matches the generator's
// field ordering.
type Payload []PayloadField

// UnmarshalJSON decodes a JSON object token by token, keeping key order.
func (p *Payload) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("payload must be a JSON object")
	}
	out := Payload{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("payload key is not a string")
		}
		var val any
		if err := dec.Decode(&val); err != nil {
			return err
		}
		out = append(out, PayloadField{Name: key, Value: val})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*p = out
	return nil
}

// MarshalJSON renders the payload back as an object in field order.
func (p Payload) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
