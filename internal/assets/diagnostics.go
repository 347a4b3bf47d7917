package assets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/ranger/internal/policy"
	"github.com/wolfeidau/ranger/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	// ErrBuildFailed is returned when the bundler reported errors
	ErrBuildFailed = errors.New("esbuild failed with errors")
	// ErrWarningsEscalated is returned when warnings were treated as errors
	ErrWarningsEscalated = errors.New("build warnings treated as errors")
)

// Diagnostic is a bundler message after classification
type Diagnostic struct {
	policy.Diagnostic
	Action   policy.Action
	Text     string
	Location string
}

// diagnosticCode maps an esbuild message to an upper snake case code. Warnings
// raised by plugins share the PLUGIN_WARNING code.
func diagnosticCode(msg api.Message, severity policy.Severity) string {
	if msg.PluginName != "" {
		if severity == policy.SeverityWarning {
			return "PLUGIN_WARNING"
		}
		return "PLUGIN_ERROR"
	}
	return strings.ToUpper(strings.ReplaceAll(msg.ID, "-", "_"))
}

func location(msg api.Message) string {
	if msg.Location == nil {
		return ""
	}
	return fmt.Sprintf("%s:%d:%d", msg.Location.File, msg.Location.Line, msg.Location.Column)
}

// classify runs every bundler message through the diagnostic policy.
func classify(warnings, errs []api.Message) []Diagnostic {
	out := make([]Diagnostic, 0, len(warnings)+len(errs))
	add := func(msgs []api.Message, severity policy.Severity) {
		for _, msg := range msgs {
			d := policy.Diagnostic{Code: diagnosticCode(msg, severity), Severity: severity}
			out = append(out, Diagnostic{
				Diagnostic: d,
				Action:     policy.ClassifyDiagnostic(d),
				Text:       msg.Text,
				Location:   location(msg),
			})
		}
	}
	add(errs, policy.SeverityError)
	add(warnings, policy.SeverityWarning)
	return out
}

// report logs the diagnostics the policy keeps and returns the ones it logged.
// It fails when the bundler failed or any warning was escalated.
func report(ctx context.Context, logger zerolog.Logger, diags []Diagnostic, bundlerFailed bool) ([]Diagnostic, error) {
	kept := make([]Diagnostic, 0, len(diags))
	escalated := 0

	for _, d := range diags {
		telemetry.GetMetrics().DiagnosticsTotal.Add(ctx, 1,
			metric.WithAttributes(attribute.String("action", string(d.Action))))

		switch d.Action {
		case policy.ActionSuppress:
			continue
		case policy.ActionEscalate:
			escalated++
			logger.Error().Str("code", d.Code).Str("location", d.Location).Msg(d.Text)
		case policy.ActionPassthrough:
			switch d.Severity {
			case policy.SeverityError:
				logger.Error().Str("code", d.Code).Str("location", d.Location).Msg(d.Text)
			case policy.SeverityWarning:
				logger.Warn().Str("code", d.Code).Str("location", d.Location).Msg(d.Text)
			default:
				logger.Info().Str("code", d.Code).Str("location", d.Location).Msg(d.Text)
			}
		}
		kept = append(kept, d)
	}

	if bundlerFailed {
		return kept, ErrBuildFailed
	}
	if escalated > 0 {
		return kept, fmt.Errorf("%w: %d warning(s)", ErrWarningsEscalated, escalated)
	}
	return kept, nil
}
