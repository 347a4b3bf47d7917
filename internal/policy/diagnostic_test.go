package policy

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyDiagnostic(t *testing.T) {
	tests := []struct {
		name     string
		diag     Diagnostic
		expected Action
	}{
		{name: "suppressed error", diag: Diagnostic{Code: "CIRCULAR_DEPENDENCY", Severity: SeverityError}, expected: ActionSuppress},
		{name: "suppressed warning", diag: Diagnostic{Code: "PLUGIN_WARNING", Severity: SeverityWarning}, expected: ActionSuppress},
		{name: "suppressed info", diag: Diagnostic{Code: "MODULE_LEVEL_DIRECTIVE", Severity: SeverityInfo}, expected: ActionSuppress},
		{name: "suppressed reexport", diag: Diagnostic{Code: "CYCLIC_CROSS_CHUNK_REEXPORT", Severity: SeverityWarning}, expected: ActionSuppress},
		{name: "other warning escalates", diag: Diagnostic{Code: "SOME_OTHER_CODE", Severity: SeverityWarning}, expected: ActionEscalate},
		{name: "other info passes", diag: Diagnostic{Code: "SOME_OTHER_CODE", Severity: SeverityInfo}, expected: ActionPassthrough},
		{name: "other error passes", diag: Diagnostic{Code: "SOME_OTHER_CODE", Severity: SeverityError}, expected: ActionPassthrough},
		{name: "code match is case sensitive", diag: Diagnostic{Code: "circular_dependency", Severity: SeverityWarning}, expected: ActionEscalate},
		{name: "empty code warning", diag: Diagnostic{Severity: SeverityWarning}, expected: ActionEscalate},
		{name: "empty code info", diag: Diagnostic{Severity: SeverityInfo}, expected: ActionPassthrough},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, ClassifyDiagnostic(tt.diag))
			require.Equal(t, tt.expected, ClassifyDiagnostic(tt.diag))
		})
	}
}

func TestSuppressedCodes(t *testing.T) {
	require.Equal(t, []string{
		"CIRCULAR_DEPENDENCY",
		"CYCLIC_CROSS_CHUNK_REEXPORT",
		"MODULE_LEVEL_DIRECTIVE",
		"PLUGIN_WARNING",
	}, SuppressedCodes())
}

func TestParseSeverity(t *testing.T) {
	for input, expected := range map[string]Severity{
		"info":    SeverityInfo,
		"warn":    SeverityWarning,
		"WARNING": SeverityWarning,
		" error ": SeverityError,
	} {
		got, err := ParseSeverity(input)
		require.NoError(t, err)
		require.Equal(t, expected, got)
	}

	_, err := ParseSeverity("fatal")
	require.Error(t, err)
}
