package policy

import (
	"fmt"
	"slices"
	"strings"
)

// Severity of a diagnostic raised by the bundler.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// ParseSeverity accepts info, warn, warning and error in any case.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info":
		return SeverityInfo, nil
	case "warn", "warning":
		return SeverityWarning, nil
	case "error":
		return SeverityError, nil
	}
	return "", fmt.Errorf("unknown severity %q", s)
}

// Action tells the caller what to do with a diagnostic.
type Action string

const (
	ActionPassthrough Action = "passthrough"
	ActionSuppress    Action = "suppress"
	ActionEscalate    Action = "escalate"
)

// Diagnostic is a message from the bundler tagged with a code and severity.
type Diagnostic struct {
	Code     string
	Severity Severity
}

// Known-noisy codes that never affect build success. These are identifiers
// defined by the bundler and must match exactly.
var suppressedCodes = map[string]struct{}{
	"CYCLIC_CROSS_CHUNK_REEXPORT": {},
	"MODULE_LEVEL_DIRECTIVE":      {},
	"PLUGIN_WARNING":              {},
	"CIRCULAR_DEPENDENCY":         {},
}

// SuppressedCodes returns the suppression set in sorted order.
func SuppressedCodes() []string {
	codes := make([]string, 0, len(suppressedCodes))
	for code := range suppressedCodes {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}

// ClassifyDiagnostic drops suppressed codes, escalates every other warning to
// an error and passes everything else through unchanged.
func ClassifyDiagnostic(diag Diagnostic) Action {
	if _, ok := suppressedCodes[diag.Code]; ok {
		return ActionSuppress
	}
	if diag.Severity == SeverityWarning {
		return ActionEscalate
	}
	return ActionPassthrough
}
