// Package soapgen exposes a Go API for turning a WSDL plus a set of test
// categories into an importable SoapUI project document.
//
// Quick start:
//
//	ctx := context.Background()
//	p, _ := soapgen.New(ctx)
//	defer p.Close()
//	res := p.Generate(ctx, soapgen.Request{
//		WSDL:       wsdlText,
//		FileName:   "calculator.wsdl",
//		Categories: []string{"happy_path", "edge_cases"},
//	})
//	if res.Failed() {
//		log.Fatal(res.Err)
//	}
//	os.WriteFile("project.xml", []byte(res.Project), 0o644)
//
// Refine a run with free-text feedback (inputs are retained per generation id):
//
//	res = p.Feedback(ctx, res.GenerationID, "add a case where both inputs are zero")
//
// Custom wiring:
//
//	cfg := soapgen.DefaultConfig()
//	cfg.Model = "mistral"
//	cfg.SessionPath = "sessions.db"
//	p, _ := soapgen.New(ctx,
//		soapgen.WithConfig(cfg),
//		soapgen.WithLogger(logger),
//	)
//
// Scenario text comes from an Ollama-compatible generator by default; tests
// and embedders can swap it out with WithGenerator. The SDK keeps concrete
// types unexported behind aliases; interaction happens through the Pipeline
// plus the Request and Result structs defined in this package.
package soapgen
