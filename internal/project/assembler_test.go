package project

import (
	"regexp"
	"strings"
	"testing"

	"pkt.systems/soapgen/internal/scenario"
	"pkt.systems/soapgen/internal/wsdl"
)

func calcDescriptor() *wsdl.ServiceDescriptor {
	return &wsdl.ServiceDescriptor{
		FileName:        "calc.wsdl",
		BindingName:     "CalculatorBinding",
		TargetNamespace: "http://www.example.com/calculator",
		EndpointURL:     "http://x/svc",
		Operations: []wsdl.Operation{
			{Name: "add", SoapAction: "add", Input: []wsdl.Field{{Name: "a", Type: "int"}, {Name: "b", Type: "int"}}},
		},
	}
}

func happyPathSet() scenario.ScenarioSet {
	return scenario.ScenarioSet{
		"happy_path": {
			{
				Name:         "Add 2+2",
				OperationRef: "add",
				Payload:      scenario.Payload{{Name: "a", Value: "2"}, {Name: "b", Value: "2"}},
				Assertions:   []scenario.Assertion{{Kind: scenario.KindStatusCode, Value: "200"}},
			},
		},
	}
}

func TestAssembleEndToEnd(t *testing.T) {
	doc, err := Assemble(calcDescriptor(), happyPathSet(), []string{"happy_path"})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	for _, want := range []string{
		`<con:soapui-project`,
		`name="CalculatorBinding-SoapUI-Project"`,
		`<con:endpoint>http://x/svc</con:endpoint>`,
		`bindingName="{http://www.example.com/calculator}CalculatorBinding"`,
		`name="Happy Path Tests"`,
		`<con:testCase`,
		`name="Add 2+2"`,
		`<con:assertion type="Valid HTTP Status Codes"`,
		`<codes>200</codes>`,
		`<con:properties/>`,
	} {
		if !strings.Contains(doc, want) {
			t.Fatalf("document missing %q:\n%s", want, doc)
		}
	}
	if strings.Count(doc, "<con:testSuite") != 1 {
		t.Fatalf("expected exactly one test suite")
	}
	a := strings.Index(doc, "<a>2</a>")
	b := strings.Index(doc, "<b>2</b>")
	if a < 0 || b < 0 || a > b {
		t.Fatalf("payload order not preserved (a=%d b=%d):\n%s", a, b, doc)
	}
}

var idPattern = regexp.MustCompile(`id="[0-9a-fA-F-]{36}"`)

func TestAssembleStructurallyDeterministic(t *testing.T) {
	desc := calcDescriptor()
	set := happyPathSet()
	first, err := Assemble(desc, set, []string{"happy_path"})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	second, err := Assemble(desc, set, []string{"happy_path"})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if first == second {
		t.Fatalf("expected fresh identifiers per render")
	}
	norm1 := idPattern.ReplaceAllString(first, `id="X"`)
	norm2 := idPattern.ReplaceAllString(second, `id="X"`)
	if norm1 != norm2 {
		t.Fatalf("structure differs between renders:\n%s\n---\n%s", norm1, norm2)
	}

	ids := regexp.MustCompile(`id="([0-9a-fA-F-]{36})"`).FindAllStringSubmatch(first, -1)
	seen := map[string]bool{}
	for _, m := range ids {
		if seen[m[1]] {
			t.Fatalf("identifier %s is not unique", m[1])
		}
		seen[m[1]] = true
	}
}

func TestAssembleDanglingReferenceProducesNoStep(t *testing.T) {
	set := scenario.ScenarioSet{
		"happy_path": {
			{Name: "ghost", OperationRef: "subtract"},
		},
	}
	doc, err := Assemble(calcDescriptor(), set, []string{"happy_path"})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if strings.Contains(doc, "<con:testStep") {
		t.Fatalf("expected no test steps for dangling reference:\n%s", doc)
	}
	// The suite block itself still renders, as does the interface.
	if !strings.Contains(doc, `name="Happy Path Tests"`) {
		t.Fatalf("expected suite block:\n%s", doc)
	}
	if !strings.Contains(doc, `bindingOperationName="add"`) {
		t.Fatalf("expected operation declaration:\n%s", doc)
	}
}

func TestAssembleXPathWithoutValueOmitted(t *testing.T) {
	set := scenario.ScenarioSet{
		"negative_cases": {
			{
				Name:         "bad divide",
				OperationRef: "add",
				Assertions: []scenario.Assertion{
					{Kind: scenario.KindSoapFault},
					{Kind: scenario.KindXPathMatch, Path: "//faultstring", Value: ""},
				},
			},
		},
	}
	doc, err := Assemble(calcDescriptor(), set, []string{"negative_cases"})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if strings.Contains(doc, "XPath Match") {
		t.Fatalf("expected incomplete xpath assertion to be omitted:\n%s", doc)
	}
	if !strings.Contains(doc, `<con:assertion type="SOAP Fault"`) {
		t.Fatalf("expected soap fault assertion to survive:\n%s", doc)
	}
}

func TestAssembleCategoryHandling(t *testing.T) {
	set := scenario.ScenarioSet{
		"happy_path": {},
	}
	doc, err := Assemble(calcDescriptor(), set, []string{"happy_path", "edge_cases"})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	// Requested but absent category: no suite. Present but empty: empty suite.
	if strings.Count(doc, "<con:testSuite") != 1 {
		t.Fatalf("expected one suite:\n%s", doc)
	}
	if strings.Contains(doc, "Edge Cases Tests") {
		t.Fatalf("absent category must not produce a suite:\n%s", doc)
	}
	if strings.Contains(doc, "<con:testCase") {
		t.Fatalf("empty category must produce zero test cases:\n%s", doc)
	}
}

func TestAssembleEscapesInterpolatedContent(t *testing.T) {
	set := scenario.ScenarioSet{
		"happy_path": {
			{
				Name:         `quotes "and" <tags>`,
				OperationRef: "add",
				Payload: scenario.Payload{
					{Name: "a", Value: "1 < 2 & 3"},
					{Name: "b </con:request>", Value: "]]>boom"},
				},
				Assertions: []scenario.Assertion{
					{Kind: scenario.KindXPathMatch, Path: "//result", Value: "a < b"},
				},
			},
		},
	}
	doc, err := Assemble(calcDescriptor(), set, []string{"happy_path"})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if !strings.Contains(doc, `name="quotes &quot;and&quot; &lt;tags&gt;"`) {
		t.Fatalf("case name not escaped:\n%s", doc)
	}
	if !strings.Contains(doc, "<a>1 &lt; 2 &amp; 3</a>") {
		t.Fatalf("payload value not escaped:\n%s", doc)
	}
	// Markup-significant characters in field names are stripped, not emitted.
	if strings.Contains(doc, "<b </con:request>") {
		t.Fatalf("field name leaked markup:\n%s", doc)
	}
	if !strings.Contains(doc, "<content>a &lt; b</content>") {
		t.Fatalf("assertion content not escaped:\n%s", doc)
	}
}
