// Package report combines the outcome of every validation stage into one
// verdict and renders it for humans or machines.
package report

import (
	"github.com/kamusis/cjval/internal/cityjson"
	"github.com/kamusis/cjval/internal/rules"
	"github.com/kamusis/cjval/internal/structural"
)

// RuleResult is the reported outcome of one semantic rule.
type RuleResult struct {
	Rule     string          `json:"rule" yaml:"rule"`
	Passed   bool            `json:"passed" yaml:"passed"`
	Findings []rules.Finding `json:"findings,omitempty" yaml:"findings,omitempty"`
	// Error is set when the rule could not evaluate the document.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Report is the verdict for one document.
type Report struct {
	Source           string                       `json:"source,omitempty" yaml:"source,omitempty"`
	Version          string                       `json:"version" yaml:"version"`
	VersionSupported bool                         `json:"version_supported" yaml:"version_supported"`
	StructuralErrors []structural.ValidationError `json:"structural_errors" yaml:"structural_errors"`
	Rules            []RuleResult                 `json:"rules" yaml:"rules"`
	Valid            bool                         `json:"valid" yaml:"valid"`
}

// Aggregate builds the report. The document is valid only when its version
// is supported, the schema found nothing and every rule passed.
func Aggregate(source string, v cityjson.Version, errs []structural.ValidationError, outcomes []rules.Outcome) *Report {
	r := &Report{
		Source:           source,
		Version:          v.String(),
		VersionSupported: v.IsSupported(),
		StructuralErrors: make([]structural.ValidationError, len(errs)),
		Rules:            make([]RuleResult, 0, len(outcomes)),
	}
	copy(r.StructuralErrors, errs)

	rulesOK := true
	for _, o := range outcomes {
		rr := RuleResult{Rule: o.Rule, Passed: o.Passed()}
		if o.Err != nil {
			rr.Error = o.Err.Error()
		} else {
			rr.Findings = o.Result.Findings
		}
		if !rr.Passed {
			rulesOK = false
		}
		r.Rules = append(r.Rules, rr)
	}

	r.Valid = r.VersionSupported && len(r.StructuralErrors) == 0 && rulesOK
	return r
}

// FindingCount returns the number of semantic findings plus rules that
// could not run.
func (r *Report) FindingCount() int {
	n := 0
	for _, rr := range r.Rules {
		n += len(rr.Findings)
		if rr.Error != "" {
			n++
		}
	}
	return n
}
