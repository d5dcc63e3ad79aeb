package soapgen

import (
	"context"
	"strings"
	"testing"

	"pkt.systems/soapgen/internal/llm"
	"pkt.systems/soapgen/internal/session"
)

const facadeWSDL = `<definitions xmlns="http://schemas.xmlsoap.org/wsdl/"
  xmlns:soap="http://schemas.xmlsoap.org/wsdl/soap/"
  xmlns:tns="http://www.example.com/calculator"
  xmlns:xsd="http://www.w3.org/2001/XMLSchema"
  targetNamespace="http://www.example.com/calculator">
  <message name="AddRequest">
    <part name="a" type="xsd:int"/>
    <part name="b" type="xsd:int"/>
  </message>
  <portType name="CalculatorPortType">
    <operation name="add"><input message="tns:AddRequest"/></operation>
  </portType>
  <binding name="CalculatorBinding" type="tns:CalculatorPortType">
    <operation name="add"><soap:operation soapAction="add"/></operation>
  </binding>
  <service name="CalculatorService">
    <port name="CalculatorPort" binding="tns:CalculatorBinding">
      <soap:address location="http://x/svc"/>
    </port>
  </service>
</definitions>`

func TestFacadeGenerate(t *testing.T) {
	gen := llm.GeneratorFunc(func(ctx context.Context, prompt string, structured bool) (string, error) {
		return `{"happy_path":[{"name":"Add 2+2","operationRef":"add","payload":{"a":2,"b":2},"assertions":[{"kind":"StatusCode","value":"200"}]}]}`, nil
	})
	p, err := New(context.Background(), WithGenerator(gen), WithStore(session.NewMemory()))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer p.Close()

	res := p.Generate(context.Background(), Request{
		WSDL:       facadeWSDL,
		FileName:   "calc.wsdl",
		Categories: []string{"happy_path"},
	})
	if res.Failed() {
		t.Fatalf("generate: %v", res.Err)
	}
	if !strings.Contains(res.Project, "soapui-project") {
		t.Fatalf("expected a project document")
	}
}

func TestVersionNonEmpty(t *testing.T) {
	if Version() == "" {
		t.Fatalf("version must not be empty")
	}
}
