package commands

import (
	"context"
	"fmt"

	"github.com/wolfeidau/ranger/internal/policy"
)

type ClassifyCmd struct {
	Code     string `arg:"" help:"Diagnostic code, e.g. DUPLICATE_OBJECT_KEY."`
	Severity string `arg:"" help:"Diagnostic severity: info, warn or error."`
	List     bool   `help:"Also list the suppressed codes."`
}

func (c *ClassifyCmd) Run(_ context.Context, globals *Globals) error {
	severity, err := policy.ParseSeverity(c.Severity)
	if err != nil {
		return err
	}

	out := globals.stdout()
	fmt.Fprintln(out, policy.ClassifyDiagnostic(policy.Diagnostic{Code: c.Code, Severity: severity}))

	if c.List {
		for _, code := range policy.SuppressedCodes() {
			fmt.Fprintf(out, "suppressed\t%s\n", code)
		}
	}
	return nil
}
