package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"pkt.systems/pslog"
	"pkt.systems/soapgen"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "soapgen",
		Short:         "Generate SoapUI test projects from WSDL files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(os.Stdout, logOptionsFromFlags(cmd))
			if err != nil {
				return err
			}
			cmd.SetContext(pslog.ContextWithLogger(cmd.Context(), logger))
			return nil
		},
	}

	addLoggingFlags(root.PersistentFlags())
	root.AddCommand(newGenerateCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// Cobra parse / usage errors
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// logOptions is the resolved logging configuration for one invocation.
type logOptions struct {
	structured bool
	caller     bool
	level      string
	levelSet   bool
}

func logOptionsFromFlags(cmd *cobra.Command) logOptions {
	var o logOptions
	o.structured, _ = cmd.Flags().GetBool("structured")
	o.caller, _ = cmd.Flags().GetBool("log-caller")
	o.level, _ = cmd.Flags().GetString("log-level")
	if f := cmd.Flags().Lookup("log-level"); f != nil {
		o.levelSet = f.Changed
	}
	return o
}

func loggerFromCmd(cmd *cobra.Command) pslog.Logger {
	if cmd == nil {
		return pslog.NewWithOptions(os.Stdout, pslog.Options{MinLevel: pslog.InfoLevel})
	}
	if logger := pslog.LoggerFromContext(cmd.Context()); logger != nil {
		return logger
	}
	// Context carries no logger when RunE is called outside Execute (tests).
	logger, err := newLogger(os.Stdout, logOptionsFromFlags(cmd))
	if err != nil {
		return pslog.NewWithOptions(os.Stdout, pslog.Options{MinLevel: pslog.InfoLevel})
	}
	return logger
}

// newLogger builds the process logger. Level precedence: an explicitly set
// --log-level flag wins, then the LOG_LEVEL environment variable, then info.
func newLogger(w io.Writer, o logOptions) (pslog.Logger, error) {
	if w == nil {
		w = os.Stdout
	}
	opts := pslog.Options{MinLevel: pslog.InfoLevel, CallerKeyval: o.caller}
	if o.structured {
		opts.Mode = pslog.ModeStructured
	}
	logger := pslog.NewWithOptions(w, opts)

	if o.levelSet {
		lvl, ok := pslog.ParseLevel(o.level)
		if !ok {
			return nil, fmt.Errorf("unknown level %q", o.level)
		}
		return logger.LogLevel(lvl), nil
	}
	if lvl, ok := pslog.LevelFromEnv("LOG_LEVEL"); ok {
		return logger.LogLevel(lvl), nil
	}
	if lvl, ok := pslog.ParseLevel(o.level); ok {
		return logger.LogLevel(lvl), nil
	}
	return logger, nil
}

func addLoggingFlags(flags *pflag.FlagSet) {
	if flags.Lookup("log-level") == nil {
		flags.String("log-level", "info", "Log level (trace|debug|info|warn|error)")
	}
	if flags.Lookup("structured") == nil {
		flags.Bool("structured", false, "Emit structured JSON logs")
	}
	if flags.Lookup("log-caller") == nil {
		flags.Bool("log-caller", false, "Include caller function name on each log line")
	}
}

func addConfigFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "Path to YAML config file")
	flags.String("ollama-url", "", "Base URL of the Ollama service (overrides config)")
	flags.String("model", "", "Generator model name (overrides config)")
	flags.Int("timeout", 0, "Generation timeout seconds (overrides config)")
	flags.String("sessions", "", "Path to session database (enables feedback across restarts)")
}

func resolveConfig(cmd *cobra.Command) (soapgen.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := soapgen.LoadConfig(path)
	if err != nil {
		return cfg, err
	}
	if v, _ := cmd.Flags().GetString("ollama-url"); v != "" {
		cfg.OllamaURL = v
	}
	if v, _ := cmd.Flags().GetString("model"); v != "" {
		cfg.Model = v
	}
	if v, _ := cmd.Flags().GetInt("timeout"); v > 0 {
		cfg.TimeoutSeconds = v
	}
	if v, _ := cmd.Flags().GetString("sessions"); v != "" {
		cfg.SessionPath = v
	}
	return cfg, nil
}
