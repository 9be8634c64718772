package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeResponse(t *testing.T, buf *bytes.Buffer) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	return resp
}

func TestOutputFormatter_Success(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		buf := &bytes.Buffer{}
		f := &OutputFormatter{Format: "json", Writer: buf}

		require.NoError(t, f.SuccessWithID("q-1", map[string]int{"count": 3}))

		resp := decodeResponse(t, buf)
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, "q-1", resp.QueryID)
		assert.Equal(t, map[string]any{"count": float64(3)}, resp.Data)
		assert.Nil(t, resp.Error)
	})

	t.Run("json_without_id", func(t *testing.T) {
		buf := &bytes.Buffer{}
		f := &OutputFormatter{Format: "json", Writer: buf}

		require.NoError(t, f.Success("done"))

		assert.NotContains(t, buf.String(), "query_id")
		assert.Equal(t, "done", decodeResponse(t, buf).Data)
	})

	t.Run("text", func(t *testing.T) {
		buf := &bytes.Buffer{}
		f := &OutputFormatter{Format: "text", Writer: buf}

		require.NoError(t, f.Success("All query files valid"))
		assert.Equal(t, "All query files valid\n", buf.String())
	})
}

func TestOutputFormatter_Error(t *testing.T) {
	details := map[string]string{"file": "cities.yaml"}

	tests := []struct {
		name     string
		format   string
		verbose  bool
		details  any
		contains []string
		excludes []string
	}{
		{
			name:     "text",
			format:   "text",
			contains: []string{"Error [E201]: no endpoint configured"},
			excludes: []string{"Details:"},
		},
		{
			name:     "text_details_hidden",
			format:   "text",
			details:  details,
			excludes: []string{"Details:"},
		},
		{
			name:     "text_verbose_details",
			format:   "text",
			verbose:  true,
			details:  details,
			contains: []string{"Error [E201]", "Details: map[file:cities.yaml]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			f := &OutputFormatter{Format: tt.format, Writer: buf, Verbose: tt.verbose}

			require.NoError(t, f.Error("E201", "no endpoint configured", tt.details))

			for _, want := range tt.contains {
				assert.Contains(t, buf.String(), want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, buf.String(), unwanted)
			}
		})
	}

	t.Run("json", func(t *testing.T) {
		buf := &bytes.Buffer{}
		f := &OutputFormatter{Format: "json", Writer: buf}

		require.NoError(t, f.Error("E110", "validation failed", []string{"$.and[0]: empty class"}))

		resp := decodeResponse(t, buf)
		assert.Equal(t, "error", resp.Status)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "E110", resp.Error.Code)
		assert.Equal(t, "validation failed", resp.Error.Message)
		assert.Equal(t, []any{"$.and[0]: empty class"}, resp.Error.Details)
		assert.Nil(t, resp.Data)
	})
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name      string
		verbose   bool
		errWriter bool
		wantOut   string
		wantErr   string
	}{
		{name: "disabled"},
		{name: "enabled", verbose: true, wantOut: "Decoding results.srx\n"},
		{name: "err_writer", verbose: true, errWriter: true, wantErr: "Decoding results.srx\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
			f := &OutputFormatter{Format: "json", Writer: out, Verbose: tt.verbose}
			if tt.errWriter {
				f.ErrWriter = errOut
			}

			f.VerboseLog("Decoding %s", "results.srx")

			assert.Equal(t, tt.wantOut, out.String())
			assert.Equal(t, tt.wantErr, errOut.String())
		})
	}
}

func TestOutputFormatter_Table(t *testing.T) {
	tests := []struct {
		name     string
		rows     [][]string
		contains []string
	}{
		{
			name:     "rows",
			rows:     [][]string{{"1", "Berlin"}, {"2", "Paris"}},
			contains: []string{"PAGE", "Berlin", "Paris", "(2 rows)"},
		},
		{
			name:     "single_row",
			rows:     [][]string{{"1", "Berlin"}},
			contains: []string{"Berlin", "(1 row)"},
		},
		{
			name:     "empty",
			rows:     nil,
			contains: []string{"PAGE", "(0 rows)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			f := &OutputFormatter{Format: "text", Writer: buf}

			f.Table([]string{"#", "page"}, tt.rows)

			for _, want := range tt.contains {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestExitError(t *testing.T) {
	cause := errors.New("dial tcp: refused")

	err := WrapExitError(ExitCommandError, "endpoint unreachable", cause)
	assert.Equal(t, "endpoint unreachable: dial tcp: refused", err.Error())
	assert.ErrorIs(t, err, cause)

	assert.Equal(t, "bad flag", NewExitError(ExitCommandError, "bad flag").Error())
}
