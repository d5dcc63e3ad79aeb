// Package project renders a scenario set into an importable SoapUI project
// document. Rendering is purely structural; bad cases are filtered out before
// they reach this package.
package project

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"pkt.systems/soapgen/internal/scenario"
	"pkt.systems/soapgen/internal/wsdl"
)

// ErrAssemblyFailure wraps any unexpected failure during rendering. It is
// never propagated raw to callers.
var ErrAssemblyFailure = errors.New("project assembly failed")

// Assemble renders the final project document. The output is structurally
// deterministic for identical inputs; only the identifier attributes differ
// between renders, each one freshly minted.
func Assemble(desc *wsdl.ServiceDescriptor, set scenario.ScenarioSet, categories []string) (doc string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrAssemblyFailure, r)
		}
	}()

	var suites []string
	for _, category := range categories {
		cases, ok := set[category]
		if !ok {
			continue
		}
		suites = append(suites, renderTestSuite(category, cases, desc))
	}

	var operations []string
	for _, op := range desc.Operations {
		operations = append(operations, fmt.Sprintf(
			`<con:operation id="%s" isOneWay="false" action="%s" name="%s" bindingOperationName="%s" type="Request-Response"><con:settings/></con:operation>`,
			newID(), escapeAttr(op.SoapAction), escapeAttr(op.Name), escapeAttr(op.Name)))
	}

	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<con:soapui-project id="%s" activeEnvironment="Default" name="%s" resourceRoot="" soapui-version="5.7.0" xmlns:con="http://eviware.com/soapui/config">
    <con:settings/>
    <con:interface xsi:type="con:WsdlInterface" id="%s" name="%s" bindingName="{%s}%s" soapVersion="1_1" definition="%s" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
        <con:settings/>
        <con:endpoints>
            <con:endpoint>%s</con:endpoint>
        </con:endpoints>
        %s
    </con:interface>
    %s
    <con:properties/>
</con:soapui-project>`,
		newID(),
		escapeAttr(desc.BindingName+"-SoapUI-Project"),
		newID(),
		escapeAttr(desc.BindingName),
		escapeAttr(desc.TargetNamespace), escapeAttr(desc.BindingName),
		escapeAttr(desc.FileName),
		escapeText(desc.EndpointURL),
		strings.Join(operations, "\n        "),
		strings.Join(suites, "\n    ")), nil
}

func renderTestSuite(category string, cases []scenario.ScenarioCase, desc *wsdl.ServiceDescriptor) string {
	var rendered []string
	for _, c := range cases {
		if tc := renderTestCase(c, desc); tc != "" {
			rendered = append(rendered, tc)
		}
	}
	return fmt.Sprintf(`<con:testSuite id="%s" name="%s">
    <con:settings/>
    <con:runType>SEQUENTIAL</con:runType>
    %s
</con:testSuite>`, newID(), escapeAttr(suiteName(category)), strings.Join(rendered, "\n    "))
}

func renderTestCase(c scenario.ScenarioCase, desc *wsdl.ServiceDescriptor) string {
	step := renderTestStep(c, desc)
	if step == "" {
		return ""
	}
	return fmt.Sprintf(`<con:testCase id="%s" name="%s">
    <con:settings/>
    %s
</con:testCase>`, newID(), escapeAttr(c.Name), step)
}

func renderTestStep(c scenario.ScenarioCase, desc *wsdl.ServiceDescriptor) string {
	// Dangling references are filtered upstream; re-check defensively.
	op := desc.Resolve(c.OperationRef)
	if op == nil {
		return ""
	}
	envelope := buildEnvelope(op.Name, desc.TargetNamespace, c.Payload)

	var assertions []string
	for _, a := range c.Assertions {
		if rendered := renderAssertion(a); rendered != "" {
			assertions = append(assertions, rendered)
		}
	}

	return fmt.Sprintf(`<con:testStep type="request" name="%s">
    <con:settings/>
    <con:config xsi:type="con:RequestStep" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
        <con:interface>%s</con:interface>
        <con:operation>%s</con:operation>
        <con:request name="%s">
            <con:endpoint>%s</con:endpoint>
            <con:request>%s</con:request>
            <con:credentials><con:selectedAuthProfile>No Authorization</con:selectedAuthProfile></con:credentials>
            %s
        </con:request>
    </con:config>
</con:testStep>`,
		escapeAttr(c.Name),
		escapeText(desc.BindingName),
		escapeText(op.Name),
		escapeAttr(c.Name),
		escapeText(desc.EndpointURL),
		cdata(envelope),
		strings.Join(assertions, "\n            "))
}

// renderAssertion maps an assertion kind to its fixed SoapUI element. The
// shapes (including the ignoreNamspaceDifferences spelling) must not change
// or SoapUI import breaks.
func renderAssertion(a scenario.Assertion) string {
	switch a.Kind {
	case scenario.KindStatusCode:
		code := a.Value
		if code == "" {
			code = "200"
		}
		return fmt.Sprintf(`<con:assertion type="Valid HTTP Status Codes" id="%s"><con:configuration><codes>%s</codes></con:configuration></con:assertion>`,
			newID(), escapeText(code))
	case scenario.KindSoapResponseShape:
		return fmt.Sprintf(`<con:assertion type="SOAP Response" id="%s"/>`, newID())
	case scenario.KindSoapFault:
		return fmt.Sprintf(`<con:assertion type="SOAP Fault" id="%s"/>`, newID())
	case scenario.KindXPathMatch:
		if a.Path == "" || a.Value == "" {
			return ""
		}
		return fmt.Sprintf(`<con:assertion type="XPath Match" id="%s">
                <con:configuration>
                    <path>%s</path>
                    <content>%s</content>
                    <allowWildcards>false</allowWildcards>
                    <ignoreNamspaceDifferences>true</ignoreNamspaceDifferences>
                    <ignoreComments>true</ignoreComments>
                </con:configuration>
            </con:assertion>`, newID(), escapeText(a.Path), escapeText(a.Value))
	default:
		return ""
	}
}

// buildEnvelope serializes the payload into a SOAP envelope, one element per
// field in payload order.
func buildEnvelope(operation, targetNamespace string, payload scenario.Payload) string {
	var body strings.Builder
	for _, f := range payload {
		name := elementName(f.Name)
		if name == "" {
			continue
		}
		fmt.Fprintf(&body, "<%s>%s</%s>", name, escapeText(formatValue(f.Value)), name)
	}
	return fmt.Sprintf(`<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/" xmlns:tns="%s">
   <soap:Header/>
   <soap:Body>
      <tns:%s>
         %s
      </tns:%s>
   </soap:Body>
</soap:Envelope>`, escapeAttr(targetNamespace), operation, body.String(), operation)
}

func suiteName(category string) string {
	words := strings.Fields(strings.ReplaceAll(category, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ") + " Tests"
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", t)
	}
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
)

func escapeText(s string) string { return textEscaper.Replace(s) }
func escapeAttr(s string) string { return attrEscaper.Replace(s) }

// elementName keeps only characters safe for an XML element tag; field names
// come from the schema but the generator echoes them, so they are sanitized
// rather than trusted.
func elementName(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-', r == '.':
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out != "" && (out[0] >= '0' && out[0] <= '9' || out[0] == '-' || out[0] == '.') {
		out = "_" + out
	}
	return out
}

// cdata wraps s in a CDATA section, splitting any "]]>" so the section stays
// well formed.
func cdata(s string) string {
	return "<![CDATA[" + strings.ReplaceAll(s, "]]>", "]]]]><![CDATA[>") + "]]>"
}

func newID() string { return uuid.NewString() }
