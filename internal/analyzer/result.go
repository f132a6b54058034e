// Package analyzer implements the semantic analyzer (C5): structural
// validation producing a coded (errors, warnings) pair, per spec §4.3.
package analyzer

import "github.com/corintai/corint/pkg/corinterr"

// Result is the outcome of analyzing one artifact: accumulated errors and
// warnings. E001 is fatal and short-circuits further pipeline analysis;
// every other error accumulates and the first is surfaced by FirstError.
// Warnings never fail compilation.
type Result struct {
	Errors   []*corinterr.CorintError
	Warnings []*corinterr.CorintError
}

func (r *Result) addError(e *corinterr.CorintError)   { r.Errors = append(r.Errors, e) }
func (r *Result) addWarning(w *corinterr.CorintError) { r.Warnings = append(r.Warnings, w) }

// HasErrors reports whether any error-level diagnostic was recorded.
func (r Result) HasErrors() bool { return len(r.Errors) > 0 }

// FirstError returns the first recorded error, or nil.
func (r Result) FirstError() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return r.Errors[0]
}

// IntoResult returns an error (the first, if any) suitable for returning
// from a compile step, alongside the warnings to surface on success.
func (r Result) IntoResult() ([]*corinterr.CorintError, error) {
	if r.HasErrors() {
		return r.Warnings, r.Errors[0]
	}
	return r.Warnings, nil
}
