package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/roach88/wikisparql/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string

	// Config is the layered configuration. It is loaded before any
	// subcommand runs; commands built on their own load it lazily.
	Config *config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the wikisparql CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "wikisparql",
		Short: "wikisparql - semantic wiki queries over SPARQL",
		Long:  "Translate semantic wiki query descriptions into SPARQL and run them against a triple store endpoint.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if err := opts.load(cmd.Flags()); err != nil {
				return err
			}
			setupLogging(cmd.ErrOrStderr(), opts.Verbose)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.ConfigFile, "config", "", "config file (default: ./wikisparql.yaml)")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	pf.StringVar(&opts.Format, "format", config.DefaultFormat, "output format (json|text)")
	pf.String("endpoint", "", "SPARQL query endpoint URL")
	pf.String("graph", "", "default graph IRI (FROM clause)")
	pf.Duration("timeout", config.DefaultTimeout, "endpoint request timeout")
	pf.String("wiki-base", "", "IRI prefix of exported wiki pages")
	pf.String("property-base", "", "IRI prefix of exported properties")
	pf.String("database", config.DefaultDatabaseFile, "SQLite database with labels and concepts")
	pf.Bool("cache", false, "cache endpoint responses")
	pf.String("cache-dir", "", "response cache directory (empty: in memory)")
	pf.Duration("cache-ttl", config.DefaultCacheTTL, "lifetime of cached responses")
	pf.Bool("subcategories", false, "match members of subcategories")
	pf.Int("max-depth", 0, "maximum concept nesting depth")
	pf.Bool("reorder", false, "evaluate cheaper conjunction operands first")
	pf.Bool("ignore-errors", false, "run queries that already carry errors")

	// Add subcommands
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewParseCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// load reads the layered configuration. Flags win over everything else.
func (o *RootOptions) load(flags *pflag.FlagSet) error {
	cfg, err := config.Load(o.ConfigFile, flags)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	o.Config = cfg
	o.Format = cfg.Format
	o.Verbose = cfg.Verbose
	return nil
}

// settings returns the configuration, loading it without flags when the
// command was built outside NewRootCommand.
func (o *RootOptions) settings() (*config.Config, error) {
	if o.Config != nil {
		return o.Config, nil
	}
	cfg, err := config.Load(o.ConfigFile, nil)
	if err != nil {
		return nil, err
	}
	if o.Format != "" {
		cfg.Format = o.Format
	}
	cfg.Verbose = cfg.Verbose || o.Verbose
	o.Config = cfg
	return cfg, nil
}

// formatter builds the output formatter for a command.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
