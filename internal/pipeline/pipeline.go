// Package pipeline sequences extraction, synthesis, and assembly into one
// fail-fast run and owns the session bookkeeping for feedback re-runs.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"pkt.systems/pslog"

	"pkt.systems/soapgen/internal/llm"
	"pkt.systems/soapgen/internal/project"
	"pkt.systems/soapgen/internal/scenario"
	"pkt.systems/soapgen/internal/session"
	"pkt.systems/soapgen/internal/wsdl"
)

// state tracks one run through the pipeline. Transitions are strictly
// sequential; any failure jumps straight to stateFailed.
type state int

const (
	stateIdle state = iota
	stateExtracting
	stateSynthesizing
	stateAssembling
	stateDone
	stateFailed
)

func (s state) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateExtracting:
		return "extracting"
	case stateSynthesizing:
		return "synthesizing"
	case stateAssembling:
		return "assembling"
	case stateDone:
		return "done"
	case stateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrUnknownSession is returned by Feedback for an id with no stored inputs.
var ErrUnknownSession = errors.New("unknown session")

// Request carries the inputs of one generation run.
type Request struct {
	WSDL       string
	FileName   string
	Categories []string
}

// Result is the terminal value of one run: either a populated project
// document or an error reason. Runs are independent; nothing partial is
// retained across requests.
type Result struct {
	GenerationID string
	Project      string
	Err          error
}

// Failed reports whether the run ended in the failed state.
func (r Result) Failed() bool { return r.Err != nil }

// Pipeline wires the extractor, synthesizer, assembler, and session store.
// Safe for concurrent use; runs share no mutable state.
type Pipeline struct {
	logger pslog.Base
	gen    llm.Generator
	store  session.Store
	cfg    Config
}

type pipelineConfig struct {
	logger pslog.Base
	gen    llm.Generator
	store  session.Store
	cfg    *Config
}

// Option modifies a Pipeline at construction time.
type Option func(*pipelineConfig)

// WithLogger overrides the default logger (pslog console).
func WithLogger(logger pslog.Base) Option {
	return func(pc *pipelineConfig) { pc.logger = logger }
}

// WithGenerator injects a custom text generator (tests use deterministic
// stubs).
func WithGenerator(gen llm.Generator) Option {
	return func(pc *pipelineConfig) { pc.gen = gen }
}

// WithStore injects a custom session store.
func WithStore(store session.Store) Option {
	return func(pc *pipelineConfig) { pc.store = store }
}

// WithConfig supplies the resolved runtime configuration.
func WithConfig(cfg Config) Option {
	return func(pc *pipelineConfig) { pc.cfg = &cfg }
}

// New constructs a Pipeline. Defaults: console logger, Ollama generator from
// the config, in-memory session store (bbolt when cfg.SessionPath is set).
func New(ctx context.Context, opts ...Option) (*Pipeline, error) {
	if ctx == nil {
		return nil, errors.New("nil context")
	}
	pc := pipelineConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&pc)
		}
	}
	cfg := DefaultConfig()
	if pc.cfg != nil {
		cfg = *pc.cfg
	}
	if pc.logger == nil {
		pc.logger = pslog.New(os.Stdout)
	}
	if pc.gen == nil {
		pc.gen = llm.NewOllama(cfg.OllamaURL, cfg.Model, cfg.Timeout(), pc.logger)
	}
	if pc.store == nil {
		if cfg.SessionPath != "" {
			store, err := session.NewBolt(cfg.SessionPath)
			if err != nil {
				return nil, err
			}
			pc.store = store
		} else {
			pc.store = session.NewMemory()
		}
	}
	return &Pipeline{logger: pc.logger, gen: pc.gen, store: pc.store, cfg: cfg}, nil
}

// Close releases the session store.
func (p *Pipeline) Close() error { return p.store.Close() }

// Generate runs the full pipeline once. On success the inputs are retained
// under the returned generation id so Feedback can re-run them.
func (p *Pipeline) Generate(ctx context.Context, req Request) Result {
	id := uuid.NewString()
	rec := session.Record{
		WSDL:       req.WSDL,
		FileName:   req.FileName,
		Categories: req.Categories,
	}
	return p.run(ctx, id, rec)
}

// Feedback appends free-text feedback to a stored session and re-runs the
// pipeline with the original inputs.
func (p *Pipeline) Feedback(ctx context.Context, id, feedback string) Result {
	rec, err := p.store.Get(id)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return Result{GenerationID: id, Err: fmt.Errorf("%w: %s", ErrUnknownSession, id)}
		}
		return Result{GenerationID: id, Err: fmt.Errorf("load session: %w", err)}
	}
	rec.Feedback = append(rec.Feedback, feedback)
	return p.run(ctx, id, rec)
}

func (p *Pipeline) run(ctx context.Context, id string, rec session.Record) Result {
	st := stateIdle
	advance := func(next state) {
		p.logger.Debug("pipeline", "id", id, "from", st.String(), "to", next.String())
		st = next
	}

	advance(stateExtracting)
	desc, err := wsdl.Extract(rec.WSDL, rec.FileName)
	if err != nil {
		advance(stateFailed)
		p.logger.Error("extract failed", "id", id, "err", err)
		return Result{GenerationID: id, Err: err}
	}
	p.logger.Info("extracted", "id", id, "binding", desc.BindingName, "operations", len(desc.Operations))

	advance(stateSynthesizing)
	synth := scenario.New(p.gen, p.logger)
	set, err := synth.Synthesize(ctx, desc, rec.Categories, rec.Feedback)
	if err != nil {
		advance(stateFailed)
		p.logger.Error("synthesis failed", "id", id, "err", err)
		return Result{GenerationID: id, Err: err}
	}

	advance(stateAssembling)
	doc, err := project.Assemble(desc, set, rec.Categories)
	if err != nil {
		advance(stateFailed)
		p.logger.Error("assembly failed", "id", id, "err", err)
		return Result{GenerationID: id, Err: err}
	}

	if err := p.store.Put(id, rec); err != nil {
		// The document is already built; a session write failure only costs
		// the feedback flow.
		p.logger.Warn("session save failed", "id", id, "err", err)
	}
	advance(stateDone)
	p.logger.Info("generated", "id", id, "bytes", len(doc))
	return Result{GenerationID: id, Project: doc}
}
