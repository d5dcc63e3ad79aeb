package scenario

import (
	"encoding/json"
	"fmt"
	"strings"

	"pkt.systems/soapgen/internal/wsdl"
)

// catalogOperation is the view of one operation sent to the generator. The
// normalized catalog is sent instead of raw WSDL bytes to bound request size.
type catalogOperation struct {
	Name       string         `json:"name"`
	SoapAction string         `json:"soapAction,omitempty"`
	Fields     []catalogField `json:"inputSchema"`
}

type catalogField struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// BuildPrompt renders the generation request for one pipeline run. Feedback
// lines, when present, are appended so a re-run can steer the generator.
func BuildPrompt(desc *wsdl.ServiceDescriptor, categories []string, feedback []string) string {
	catalog := make([]catalogOperation, 0, len(desc.Operations))
	for _, op := range desc.Operations {
		entry := catalogOperation{Name: op.Name, SoapAction: op.SoapAction, Fields: []catalogField{}}
		for _, f := range op.Input {
			entry.Fields = append(entry.Fields, catalogField{Name: f.Name, Type: f.Type})
		}
		catalog = append(catalog, entry)
	}
	catalogJSON, _ := json.MarshalIndent(catalog, "", "  ")

	var b strings.Builder
	b.WriteString("You are an expert in SOAP service testing. Design test scenarios for the operations below.\n\n")
	fmt.Fprintf(&b, "Service operations (JSON catalog):\n%s\n\n", catalogJSON)
	fmt.Fprintf(&b, "Requested test categories: %s\n\n", strings.Join(categories, ", "))
	b.WriteString(`Respond with a single JSON object and nothing else. Keys are exactly the
requested category labels; each value is an array of test cases. Every test
case has this shape:

  {
    "name": "short descriptive name",
    "operationRef": "<one of the operation names above>",
    "payload": {"<field>": <literal value>, ...},
    "assertions": [{"kind": "...", "value": "...", "path": "..."}]
  }

Allowed assertion kinds: "StatusCode" (value = expected code, default "200"),
"SoapResponseShape" (no value), "SoapFault" (no value), "XPathMatch" (both
"path" and "value" required and non-empty).

Payload fields must follow the operation's input schema. Use realistic values.
Do not include markdown, code fences, or commentary.
`)
	if len(feedback) > 0 {
		b.WriteString("\nA previous attempt was rejected by the user. Apply this feedback:\n")
		for _, f := range feedback {
			fmt.Fprintf(&b, "- %s\n", f)
		}
	}
	return b.String()
}
