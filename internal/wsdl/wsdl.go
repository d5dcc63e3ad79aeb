// Package wsdl extracts a normalized operation catalog from WSDL 1.1
// documents. It assumes exactly one service/binding/portType triple;
// multi-service WSDLs are not supported.
package wsdl

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedDocument indicates the input is not parseable XML even in
	// lenient mode.
	ErrMalformedDocument = errors.New("malformed wsdl document")
	// ErrMissingBinding indicates no usable wsdl:binding element exists.
	ErrMissingBinding = errors.New("wsdl has no binding")
	// ErrMissingEndpoint indicates no SOAP 1.1 or 1.2 service address exists.
	ErrMissingEndpoint = errors.New("wsdl has no soap service address")
)

const (
	soap11NS = "http://schemas.xmlsoap.org/wsdl/soap/"
	soap12NS = "http://schemas.xmlsoap.org/wsdl/soap12/"

	// placeholderType tags fields whose declared type cannot be flattened to
	// a primitive (inline or nested complex types).
	placeholderType = "anyType"
)

// Field is one input field of an operation, in schema declaration order.
type Field struct {
	Name string
	Type string
}

// Operation is one WSDL operation with its flattened input schema.
type Operation struct {
	Name       string
	SoapAction string
	Input      []Field
}

// ServiceDescriptor is the normalized catalog extracted from one WSDL.
type ServiceDescriptor struct {
	FileName        string
	BindingName     string
	TargetNamespace string
	EndpointURL     string
	Operations      []Operation
}

// Resolve returns the operation with the given name, or nil.
func (d *ServiceDescriptor) Resolve(name string) *Operation {
	for i := range d.Operations {
		if d.Operations[i].Name == name {
			return &d.Operations[i]
		}
	}
	return nil
}

// Extract parses wsdlText and returns the normalized service descriptor.
// Parsing is lenient; recoverable XML oddities do not abort extraction.
func Extract(wsdlText, fileName string) (*ServiceDescriptor, error) {
	dec := xml.NewDecoder(bytes.NewReader([]byte(wsdlText)))
	dec.Strict = false
	var def definitions
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if def.TargetNamespace == "" {
		return nil, fmt.Errorf("%w: definitions has no targetNamespace", ErrMalformedDocument)
	}

	if len(def.Bindings) == 0 {
		return nil, ErrMissingBinding
	}
	binding := def.Bindings[0]
	if binding.Name == "" {
		return nil, fmt.Errorf("%w: binding has no name", ErrMissingBinding)
	}

	endpoint := soapAddress(def.Services)
	if endpoint == "" {
		return nil, ErrMissingEndpoint
	}

	desc := &ServiceDescriptor{
		FileName:        fileName,
		BindingName:     binding.Name,
		TargetNamespace: def.TargetNamespace,
		EndpointURL:     endpoint,
	}

	actions := map[string]string{}
	for _, op := range binding.Operations {
		actions[op.Name] = op.Soap.Action
	}

	elements := buildElementIndex(def)
	messages := map[string]wsdlMessage{}
	for _, m := range def.Messages {
		messages[m.Name] = m
	}

	portType := findPortType(def, localName(binding.Type))
	if portType == nil {
		return desc, nil
	}
	for _, op := range portType.Operations {
		if op.Name == "" {
			continue
		}
		desc.Operations = append(desc.Operations, Operation{
			Name:       op.Name,
			SoapAction: actions[op.Name],
			Input:      inputFields(op, messages, elements),
		})
	}
	return desc, nil
}

// soapAddress returns the first SOAP 1.1 port address, falling back to 1.2.
func soapAddress(services []wsdlService) string {
	for _, ns := range []string{soap11NS, soap12NS} {
		for _, s := range services {
			for _, p := range s.Ports {
				for _, a := range p.Addresses {
					if a.XMLName.Space == ns && a.Location != "" {
						return a.Location
					}
				}
			}
		}
	}
	return ""
}

func findPortType(def definitions, name string) *wsdlPortType {
	for i := range def.PortTypes {
		if def.PortTypes[i].Name == name {
			return &def.PortTypes[i]
		}
	}
	return nil
}

// inputFields flattens the operation's input message into a one-level field
// list. Document-style messages reference a schema element whose immediate
// children become the fields; rpc-style messages declare typed parts which
// are used directly.
func inputFields(op wsdlPortTypeOp, messages map[string]wsdlMessage, elements map[string]xsdElement) []Field {
	msg, ok := messages[localName(op.Input.Message)]
	if !ok || len(msg.Parts) == 0 {
		return nil
	}

	if ref := msg.Parts[0].Element; ref != "" {
		el, ok := elements[localName(ref)]
		if !ok {
			return nil
		}
		return elementFields(el, elements)
	}

	// rpc style: each typed part is a field.
	var fields []Field
	for _, part := range msg.Parts {
		if part.Name == "" || part.Type == "" {
			continue
		}
		fields = append(fields, Field{Name: part.Name, Type: localName(part.Type)})
	}
	return fields
}

// elementFields returns the element's immediate child declarations. Nested
// complex types are not expanded; such fields get the placeholder type tag.
func elementFields(el xsdElement, elements map[string]xsdElement) []Field {
	ct := el.ComplexType
	if ct == nil && el.Type != "" {
		if ref, ok := elements[localName(el.Type)]; ok {
			ct = ref.ComplexType
		}
	}
	if ct == nil {
		return nil
	}
	children := ct.Sequence.Elements
	if len(children) == 0 {
		children = ct.Choice.Elements
	}
	var fields []Field
	for _, child := range children {
		if child.Name == "" {
			continue
		}
		fields = append(fields, Field{Name: child.Name, Type: fieldType(child)})
	}
	return fields
}

func fieldType(el xsdElement) string {
	if el.ComplexType != nil {
		return placeholderType
	}
	if el.Type == "" {
		return "string"
	}
	return localName(el.Type)
}

// Subset of the WSDL/XSD vocabulary needed for extraction.

type definitions struct {
	XMLName         xml.Name       `xml:"definitions"`
	Name            string         `xml:"name,attr"`
	TargetNamespace string         `xml:"targetNamespace,attr"`
	Services        []wsdlService  `xml:"service"`
	Bindings        []wsdlBinding  `xml:"binding"`
	PortTypes       []wsdlPortType `xml:"portType"`
	Messages        []wsdlMessage  `xml:"message"`
	Types           []xsdSchema    `xml:"types>schema"`
}

type wsdlService struct {
	Name  string     `xml:"name,attr"`
	Ports []wsdlPort `xml:"port"`
}

type wsdlPort struct {
	Name      string        `xml:"name,attr"`
	Binding   string        `xml:"binding,attr"`
	Addresses []soapAddrRef `xml:"address"`
}

type soapAddrRef struct {
	XMLName  xml.Name `xml:"address"`
	Location string   `xml:"location,attr"`
}

type wsdlBinding struct {
	Name       string          `xml:"name,attr"`
	Type       string          `xml:"type,attr"`
	Operations []wsdlBindingOp `xml:"operation"`
}

type wsdlBindingOp struct {
	Name string `xml:"name,attr"`
	Soap struct {
		Action string `xml:"soapAction,attr"`
	} `xml:"operation"`
}

type wsdlPortType struct {
	Name       string           `xml:"name,attr"`
	Operations []wsdlPortTypeOp `xml:"operation"`
}

type wsdlPortTypeOp struct {
	Name  string `xml:"name,attr"`
	Input struct {
		Message string `xml:"message,attr"`
	} `xml:"input"`
}

type wsdlMessage struct {
	Name  string     `xml:"name,attr"`
	Parts []wsdlPart `xml:"part"`
}

type wsdlPart struct {
	Name    string `xml:"name,attr"`
	Element string `xml:"element,attr"`
	Type    string `xml:"type,attr"`
}

type xsdSchema struct {
	TargetNamespace string           `xml:"targetNamespace,attr"`
	Elements        []xsdElement     `xml:"element"`
	ComplexTypes    []xsdComplexType `xml:"complexType"`
}

type xsdElement struct {
	Name        string          `xml:"name,attr"`
	Type        string          `xml:"type,attr"`
	ComplexType *xsdComplexType `xml:"complexType"`
}

type xsdComplexType struct {
	Name     string      `xml:"name,attr"`
	Sequence xsdSequence `xml:"sequence"`
	Choice   xsdSequence `xml:"choice"`
}

type xsdSequence struct {
	Elements []xsdElement `xml:"element"`
}

// buildElementIndex flattens schema elements and named complex types by name
// for quick lookup.
func buildElementIndex(def definitions) map[string]xsdElement {
	index := map[string]xsdElement{}
	for _, s := range def.Types {
		for _, el := range s.Elements {
			index[el.Name] = el
		}
		for _, ct := range s.ComplexTypes {
			if ct.Name != "" {
				index[ct.Name] = xsdElement{Name: ct.Name, ComplexType: &ct}
			}
		}
	}
	return index
}

func localName(qname string) string {
	if _, after, ok := strings.Cut(qname, ":"); ok {
		return after
	}
	return qname
}
