package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"
)

func TestRouteCmd_Run(t *testing.T) {
	var out bytes.Buffer
	cmd := &RouteCmd{
		Names:     []string{"logo.PNG", "main.css", "font.woff2"},
		Mode:      "production",
		Timestamp: 1718000000123,
	}

	err := cmd.Run(context.Background(), &Globals{Stdout: &out})
	require.NoError(t, err)
	require.Equal(t,
		"scripts\tassets/js/[name]-[hash]-1718000000123.js\n"+
			"logo.PNG\timage\tassets/images/[name]-[hash]-1718000000123.PNG\n"+
			"main.css\tstylesheet\tassets/css/[name]-[hash]-1718000000123.css\n"+
			"font.woff2\tother\tassets/[name]-[hash]-1718000000123.woff2\n",
		out.String())
}

func TestClassifyCmd_Run(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		severity string
		expected string
	}{
		{name: "suppressed warning", code: "CIRCULAR_DEPENDENCY", severity: "warn", expected: "suppress\n"},
		{name: "escalated warning", code: "DUPLICATE_OBJECT_KEY", severity: "warning", expected: "escalate\n"},
		{name: "error passes through", code: "SYNTAX_ERROR", severity: "ERROR", expected: "passthrough\n"},
		{name: "info passes through", code: "BUILD_INFO", severity: "info", expected: "passthrough\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			cmd := &ClassifyCmd{Code: tt.code, Severity: tt.severity}
			require.NoError(t, cmd.Run(context.Background(), &Globals{Stdout: &out}))
			require.Equal(t, tt.expected, out.String())
		})
	}
}

func TestClassifyCmd_list(t *testing.T) {
	var out bytes.Buffer
	cmd := &ClassifyCmd{Code: "X", Severity: "info", List: true}
	require.NoError(t, cmd.Run(context.Background(), &Globals{Stdout: &out}))
	require.Contains(t, out.String(), "suppressed\tPLUGIN_WARNING\n")
}

func TestClassifyCmd_badSeverity(t *testing.T) {
	cmd := &ClassifyCmd{Code: "X", Severity: "fatal"}
	err := cmd.Run(context.Background(), &Globals{})
	require.ErrorContains(t, err, "unknown severity")
}

func TestBuildCmd_Run(t *testing.T) {
	color.NoColor = true

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "main.js"), []byte("console.log('hi');\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte("<html><body></body></html>"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "ranger.yaml"), []byte("entry: src/main.js\n"), 0o600))

	var out bytes.Buffer
	cmd := &BuildCmd{Mode: "production"}
	err := cmd.Run(context.Background(), &Globals{Config: filepath.Join(root, "ranger.yaml"), Stdout: &out})
	require.NoError(t, err)

	require.FileExists(t, filepath.Join(root, "dist", "index.html"))
	require.FileExists(t, filepath.Join(root, "dist", "version.json"))
	require.Contains(t, out.String(), "index.html")
}

func TestBuildCmd_missingEntry(t *testing.T) {
	cmd := &BuildCmd{Mode: "production", ProjectFlags: ProjectFlags{Root: t.TempDir()}}
	err := cmd.Run(context.Background(), &Globals{})
	require.ErrorContains(t, err, "entry is required")
}
