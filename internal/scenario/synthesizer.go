package scenario

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"pkt.systems/pslog"
	"pkt.systems/soapgen/internal/llm"
	"pkt.systems/soapgen/internal/wsdl"
)

var (
	// ErrGenerationUnavailable indicates the external generator could not be
	// reached or returned an error.
	ErrGenerationUnavailable = errors.New("text generator unavailable")
	// ErrInvalidScenarioPayload indicates the generator response could not be
	// interpreted as a scenario set after the permitted cleanup pass.
	ErrInvalidScenarioPayload = errors.New("generator returned an invalid scenario payload")
)

// Synthesizer drives one generation call and turns its response into a
// filtered ScenarioSet.
type Synthesizer struct {
	gen    llm.Generator
	logger pslog.Base
}

// New builds a Synthesizer around the given generator.
func New(gen llm.Generator, logger pslog.Base) *Synthesizer {
	return &Synthesizer{gen: gen, logger: logger}
}

// Synthesize invokes the generator exactly once and decodes the response.
// Feedback lines from an earlier run may be passed to steer a re-run.
func (s *Synthesizer) Synthesize(ctx context.Context, desc *wsdl.ServiceDescriptor, categories []string, feedback []string) (ScenarioSet, error) {
	prompt := BuildPrompt(desc, categories, feedback)
	raw, err := s.gen.Generate(ctx, prompt, true)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationUnavailable, err)
	}
	set, err := Decode(raw, s.logger)
	if err != nil {
		return nil, err
	}
	return Filter(desc, set, s.logger), nil
}

// Decode interprets the generator's text response as a ScenarioSet. The only
// permitted repair is stripping surrounding Markdown code fences. Cases that
// fail to decode individually are dropped, not fatal.
func Decode(raw string, logger pslog.Base) (ScenarioSet, error) {
	cleaned := stripFences(raw)

	var doc any
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScenarioPayload, err)
	}
	if err := validateEnvelope(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScenarioPayload, err)
	}

	var rawSet map[string][]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &rawSet); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScenarioPayload, err)
	}

	set := ScenarioSet{}
	for category, rawCases := range rawSet {
		cases := []ScenarioCase{}
		for _, rc := range rawCases {
			var c ScenarioCase
			if err := json.Unmarshal(rc, &c); err != nil {
				if logger != nil {
					logger.Warn("drop case", "category", category, "reason", "undecodable", "err", err)
				}
				continue
			}
			cases = append(cases, c)
		}
		set[category] = cases
	}
	return set, nil
}

// Filter drops unusable cases and assertions at leaf granularity: a case
// with a blank name, missing operation reference, or a reference that does
// not resolve against the descriptor is removed; an XPathMatch assertion
// without both path and value is removed; unknown assertion kinds are
// removed. Nothing here is fatal.
func Filter(desc *wsdl.ServiceDescriptor, set ScenarioSet, logger pslog.Base) ScenarioSet {
	out := ScenarioSet{}
	for category, cases := range set {
		kept := []ScenarioCase{}
		for _, c := range cases {
			if c.Name == "" || c.OperationRef == "" {
				warn(logger, "drop case", "category", category, "name", c.Name, "reason", "missing name or operationRef")
				continue
			}
			if desc.Resolve(c.OperationRef) == nil {
				warn(logger, "drop case", "category", category, "name", c.Name, "reason", "unresolved operation reference", "operationRef", c.OperationRef)
				continue
			}
			c.Assertions = filterAssertions(category, c.Name, c.Assertions, logger)
			kept = append(kept, c)
		}
		out[category] = kept
	}
	return out
}

func filterAssertions(category, caseName string, assertions []Assertion, logger pslog.Base) []Assertion {
	kept := make([]Assertion, 0, len(assertions))
	for _, a := range assertions {
		switch a.Kind {
		case KindStatusCode, KindSoapResponseShape, KindSoapFault:
			kept = append(kept, a)
		case KindXPathMatch:
			if a.Path == "" || a.Value == "" {
				warn(logger, "drop assertion", "category", category, "case", caseName, "reason", "incomplete xpath assertion")
				continue
			}
			kept = append(kept, a)
		default:
			warn(logger, "drop assertion", "category", category, "case", caseName, "reason", "unknown kind", "kind", a.Kind)
		}
	}
	return kept
}

func warn(logger pslog.Base, msg string, keyvals ...any) {
	if logger != nil {
		logger.Warn(msg, keyvals...)
	}
}

// stripFences removes one surrounding Markdown code fence pair, with or
// without a language tag. Anything else is left untouched.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// drop the language tag line (e.g. "json")
		first := strings.TrimSpace(s[:nl])
		if first == "" || !strings.ContainsAny(first, "{[") {
			s = s[nl+1:]
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
