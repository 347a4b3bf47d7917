package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"
)

func TestFormatSize(t *testing.T) {
	tests := []struct {
		size     int64
		expected string
	}{
		{size: 0, expected: "0 B"},
		{size: 1023, expected: "1023 B"},
		{size: 1536, expected: "1.50 kB"},
		{size: 3 * 1024 * 1024, expected: "3.00 MB"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			require.Equal(t, tt.expected, FormatSize(tt.size))
		})
	}
}

func TestWrite(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	err := Write(&buf, []Entry{
		{Path: "assets/js/main-abc-1.js", Contents: []byte(strings.Repeat("x", 2048))},
		{Path: "assets/css/main-def-1.css", Contents: []byte("body{}")},
	}, Options{GzipSize: true, Duration: 1234 * time.Millisecond})
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, "GZIP")
	require.Contains(t, out, "2.00 kB")
	require.Contains(t, out, "6 B")
	require.Contains(t, out, "2 FILES")
	require.Contains(t, out, "built in 1.234s")
	require.Less(t, strings.Index(out, "main-def-1.css"), strings.Index(out, "main-abc-1.js"))
}

func TestWrite_empty(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, nil, Options{}))
	require.Contains(t, buf.String(), "no files emitted")
	require.NotContains(t, buf.String(), "GZIP")
}
