// Package rules holds the semantic checks that JSON Schema cannot express.
//
// Each check is a Checker registered by name in a Registry. Adding a rule
// means registering one more Checker; existing rules are untouched.
package rules

import (
	"errors"
	"fmt"
	"sort"

	"github.com/kamusis/cjval/internal/cityjson"
)

// ErrPrecondition means a checker cannot evaluate the document at all,
// e.g. the data it inspects is missing or has the wrong shape.
var ErrPrecondition = errors.New("rule precondition not met")

// Finding is one violation of a rule.
type Finding struct {
	Rule    string `json:"rule" yaml:"rule"`
	Message string `json:"message" yaml:"message"`
	Details any    `json:"details,omitempty" yaml:"details,omitempty"`
}

// Result is the outcome of a checker that could evaluate the document.
type Result struct {
	Valid    bool
	Findings []Finding
}

// Checker evaluates one rule. Implementations must not modify the document.
type Checker interface {
	Name() string
	Description() string
	Check(doc *cityjson.Document) (Result, error)
}

// Outcome pairs a rule name with its result or its precondition error.
type Outcome struct {
	Rule   string
	Result Result
	Err    error
}

// Passed reports whether the rule ran and found nothing.
func (o Outcome) Passed() bool {
	return o.Err == nil && o.Result.Valid
}

// Registry is an ordered set of checkers keyed by name.
type Registry struct {
	order    []string
	checkers map[string]Checker
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{checkers: map[string]Checker{}}
}

// Default returns a registry with every built-in rule.
func Default() *Registry {
	r := NewRegistry()
	r.MustRegister(NoDuplicateVertices())
	return r
}

// Register adds c. Names must be unique.
func (r *Registry) Register(c Checker) error {
	name := c.Name()
	if name == "" {
		return fmt.Errorf("rule has empty name")
	}
	if _, ok := r.checkers[name]; ok {
		return fmt.Errorf("rule %q already registered", name)
	}
	r.order = append(r.order, name)
	r.checkers[name] = c
	return nil
}

// MustRegister is Register that panics on error; for package-level setup.
func (r *Registry) MustRegister(c Checker) {
	if err := r.Register(c); err != nil {
		panic(err)
	}
}

// Get returns the checker registered under name.
func (r *Registry) Get(name string) (Checker, bool) {
	c, ok := r.checkers[name]
	return c, ok
}

// Names returns rule names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered rules.
func (r *Registry) Len() int {
	return len(r.order)
}

// Without returns a copy of r minus the named rules. Unknown names are an
// error so a typo in configuration does not silently keep a rule enabled.
func (r *Registry) Without(names ...string) (*Registry, error) {
	drop := make(map[string]bool, len(names))
	var unknown []string
	for _, n := range names {
		if _, ok := r.checkers[n]; !ok {
			unknown = append(unknown, n)
			continue
		}
		drop[n] = true
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("unknown rule(s): %v", unknown)
	}
	out := NewRegistry()
	for _, n := range r.order {
		if !drop[n] {
			out.MustRegister(r.checkers[n])
		}
	}
	return out, nil
}

// Run evaluates every rule against doc in registration order. A checker's
// precondition failure is recorded in its Outcome and does not stop the
// remaining rules.
func (r *Registry) Run(doc *cityjson.Document) []Outcome {
	out := make([]Outcome, 0, len(r.order))
	for _, n := range r.order {
		res, err := r.checkers[n].Check(doc)
		out = append(out, Outcome{Rule: n, Result: res, Err: err})
	}
	return out
}
