package soapgen

import (
	"context"
	"runtime/debug"

	"pkt.systems/soapgen/internal/pipeline"
)

// Public type aliases to pipeline package

// Pipeline runs WSDL extraction, scenario synthesis, and project assembly.
type (
	Pipeline = pipeline.Pipeline
	// Config carries the resolved runtime settings.
	Config = pipeline.Config
	// Request is the input of one generation run.
	Request = pipeline.Request
	// Result is the terminal value of one run.
	Result = pipeline.Result
)

// Option tweaks pipeline construction.
type Option = pipeline.Option

var (
	// WithLogger supplies a custom pslog logger.
	WithLogger = pipeline.WithLogger
	// WithGenerator injects a custom text generator.
	WithGenerator = pipeline.WithGenerator
	// WithStore injects a custom session store.
	WithStore = pipeline.WithStore
	// WithConfig supplies the resolved runtime configuration.
	WithConfig = pipeline.WithConfig
)

// ErrUnknownSession is returned by Feedback for an unknown generation id.
var ErrUnknownSession = pipeline.ErrUnknownSession

// New constructs a Pipeline instance.
func New(ctx context.Context, opts ...Option) (*Pipeline, error) {
	return pipeline.New(ctx, opts...)
}

// DefaultConfig returns the built-in runtime defaults.
func DefaultConfig() Config { return pipeline.DefaultConfig() }

// LoadConfig builds a Config from defaults, an optional YAML file, and
// environment overrides.
func LoadConfig(path string) (Config, error) { return pipeline.LoadConfig(path) }

// Version returns the current module version (best effort).
func Version() string {
	return moduleVersion()
}

var moduleVersion = func() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}
