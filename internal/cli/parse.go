package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/wikisparql/internal/endpoint"
	"github.com/roach88/wikisparql/internal/ir"
	"github.com/roach88/wikisparql/internal/results"
)

// ParseOptions holds flags for the parse command.
type ParseOptions struct {
	*RootOptions
	MediaType string
}

// ParsedResult is the JSON payload of the parse command.
type ParsedResult struct {
	Header    []string   `json:"header"`
	Rows      [][]string `json:"rows"`
	Boolean   *bool      `json:"boolean,omitempty"`
	ErrorCode string     `json:"error_code"`
	Comments  []string   `json:"comments,omitempty"`
}

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ParseOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "parse <results-file>",
		Short: "Decode a saved SPARQL results document",
		Long: `Decode a SPARQL results document (XML or JSON) the way endpoint
responses are decoded, and print its rows.

The format is taken from --media-type, or guessed from the file extension
(.json and .srj are JSON, everything else XML).`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.MediaType, "media-type", "", "media type of the document")

	return cmd
}

func runParse(opts *ParseOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := opts.settings()
	if err != nil {
		formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	body, err := os.ReadFile(path)
	if err != nil {
		formatter.Error(ErrCodeNotFound, fmt.Sprintf("failed to read %s: %v", path, err), nil)
		return WrapExitError(ExitCommandError, "failed to read results", err)
	}

	mediaType := opts.MediaType
	if mediaType == "" {
		mediaType = mediaTypeFor(path)
	}
	formatter.VerboseLog("Decoding %s as %s", path, mediaType)

	res, err := results.ParseFor(mediaType, body)
	if err != nil {
		formatter.Error(ErrCodeParseFailed, err.Error(), nil)
		return WrapExitError(ExitFailure, "failed to parse results", err)
	}

	parsed := describeResult(cfg.Vocab(), res)
	if opts.Format == "json" {
		return formatter.Success(parsed)
	}

	w := cmd.OutOrStdout()
	if parsed.Boolean != nil {
		fmt.Fprintln(w, *parsed.Boolean)
	} else {
		formatter.Table(parsed.Header, parsed.Rows)
	}
	for _, c := range parsed.Comments {
		fmt.Fprintf(formatter.GetErrWriter(), "note: %s\n", c)
	}
	return nil
}

// describeResult renders every cell in query syntax. Unbound cells are
// empty strings.
func describeResult(vocab ir.Vocabulary, res *results.FederatedResult) ParsedResult {
	out := ParsedResult{
		Header:    res.Header(),
		Rows:      [][]string{},
		ErrorCode: res.ErrorCode().String(),
		Comments:  res.Comments(),
	}
	if len(out.Header) == 0 {
		answer := res.NumRows() > 0
		out.Boolean = &answer
		return out
	}
	for _, row := range res.Rows() {
		cells := make([]string, len(row))
		for i, e := range row {
			if e != nil {
				cells[i] = vocab.TurtleName(e)
			}
		}
		out.Rows = append(out.Rows, cells)
	}
	return out
}

func mediaTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".srj":
		return endpoint.MediaTypeJSON
	}
	return endpoint.MediaTypeXML
}
