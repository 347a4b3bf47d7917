package assets

import (
	"bytes"
	"context"
	"testing"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/ranger/internal/policy"
)

func TestDiagnosticCode(t *testing.T) {
	require.Equal(t, "DUPLICATE_OBJECT_KEY", diagnosticCode(api.Message{ID: "duplicate-object-key"}, policy.SeverityWarning))
	require.Equal(t, "PLUGIN_WARNING", diagnosticCode(api.Message{ID: "x", PluginName: "svg"}, policy.SeverityWarning))
	require.Equal(t, "PLUGIN_ERROR", diagnosticCode(api.Message{PluginName: "svg"}, policy.SeverityError))
	require.Equal(t, "CIRCULAR_DEPENDENCY", diagnosticCode(api.Message{ID: "circular-dependency"}, policy.SeverityWarning))
	require.Equal(t, "", diagnosticCode(api.Message{}, policy.SeverityError))
}

func TestClassify(t *testing.T) {
	warnings := []api.Message{
		{ID: "duplicate-object-key", Text: "Duplicate key", Location: &api.Location{File: "src/main.js", Line: 3, Column: 7}},
		{ID: "module-level-directive", Text: "directive ignored"},
		{PluginName: "svg", Text: "plugin noise"},
	}
	errs := []api.Message{{ID: "", Text: "Unexpected end of file"}}

	diags := classify(warnings, errs)
	require.Len(t, diags, 4)

	require.Equal(t, policy.ActionPassthrough, diags[0].Action)
	require.Equal(t, policy.SeverityError, diags[0].Severity)
	require.Equal(t, policy.ActionEscalate, diags[1].Action)
	require.Equal(t, "src/main.js:3:7", diags[1].Location)
	require.Equal(t, policy.ActionSuppress, diags[2].Action)
	require.Equal(t, policy.ActionSuppress, diags[3].Action)
}

func TestReport(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	suppressed := classify([]api.Message{{ID: "circular-dependency", Text: "cycle"}}, nil)
	kept, err := report(context.Background(), logger, suppressed, false)
	require.NoError(t, err)
	require.Empty(t, kept)
	require.Empty(t, buf.String())

	escalated := classify([]api.Message{{ID: "duplicate-object-key", Text: "Duplicate key"}}, nil)
	kept, err = report(context.Background(), logger, escalated, false)
	require.ErrorIs(t, err, ErrWarningsEscalated)
	require.Len(t, kept, 1)
	require.Contains(t, buf.String(), `"level":"error"`)
	require.Contains(t, buf.String(), "DUPLICATE_OBJECT_KEY")

	buf.Reset()
	failed := classify(nil, []api.Message{{Text: "Unexpected end of file"}})
	_, err = report(context.Background(), logger, failed, true)
	require.ErrorIs(t, err, ErrBuildFailed)
	require.Contains(t, buf.String(), "Unexpected end of file")
}
