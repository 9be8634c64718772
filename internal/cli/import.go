package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/wikisparql/internal/store"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
}

// ImportResult is the JSON payload of the import command.
type ImportResult struct {
	Database string            `json:"database"`
	Stats    store.ImportStats `json:"stats"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <bundle-file>...",
		Short: "Load entities, property labels and concepts into the database",
		Long: `Load YAML bundles of entity IRIs, property labels and concept
definitions into the database. The database is created if needed.

Each bundle is written in one transaction; records that already exist are
replaced.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, args, cmd)
		},
	}

	return cmd
}

func runImport(opts *ImportOptions, paths []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := opts.settings()
	if err != nil {
		formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	st, err := store.Open(cfg.Database)
	if err != nil {
		formatter.Error(ErrCodeDatabase, fmt.Sprintf("open database %s: %v", cfg.Database, err), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	var total store.ImportStats
	for _, path := range paths {
		stats, err := st.ImportFile(cmd.Context(), path, cfg.Vocab())
		if err != nil {
			formatter.Error(ErrCodeImport, fmt.Sprintf("%s: %v", path, err), nil)
			return WrapExitError(ExitFailure, "import failed", err)
		}
		formatter.VerboseLog("Imported %s: %d entities, %d labels, %d concepts",
			path, stats.Entities, stats.Labels, stats.Concepts)
		total.Entities += stats.Entities
		total.Labels += stats.Labels
		total.Concepts += stats.Concepts
	}

	if opts.Format == "json" {
		return formatter.Success(ImportResult{Database: cfg.Database, Stats: total})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Imported %d entities, %d labels, %d concepts into %s\n",
		total.Entities, total.Labels, total.Concepts, cfg.Database)
	return nil
}
