// Package profile supplements the ported engine with a concrete,
// file-driven Profile: a document listing test cases by registry key,
// their dependency names, parameter label, and auto-retry budget,
// resolved against a Registry of callables supplied by the embedding
// program. This lets loadTC be driven by a real document instead of a
// hand-built graph literal, the way the original's TestProfile is
// loaded from a sample profile directory rather than constructed
// inline.
package profile

import (
	"errors"
	"fmt"

	"github.com/kodflow/testjig/internal/domain/run"
)

// Sentinel errors for profile resolution, following the run package's
// package-level var Err... convention.
var (
	// ErrUnknownRegistryKey is returned when a case's registry key has no
	// matching callable in the supplied Registry.
	ErrUnknownRegistryKey = errors.New("profile: unknown registry key")
	// ErrDuplicateCaseKey is returned when two cases in a document declare
	// the same key.
	ErrDuplicateCaseKey = errors.New("profile: duplicate case key")
	// ErrUnknownDependency is returned when a case names a DependsOn key
	// that is not declared anywhere in the document.
	ErrUnknownDependency = errors.New("profile: unknown dependency key")
)

// Registry resolves a profile document's registry keys to the actual
// test-case callables compiled into the embedding program. The engine
// has no way to load arbitrary code from a document, so the document
// only ever names which of the program's already-registered callables
// to wire into the graph, and with what arguments.
type Registry map[string]run.TestCaseFunc

// ParamSpecDoc is one argument binding for a case's callable, as
// declared in a document. Source is either the literal string
// "$datamodel" (meaning ParamFromDataModel) or the parameter label of
// another case in the same document (meaning ParamFromDependency).
type ParamSpecDoc struct {
	ArgName string `yaml:"arg_name"`
	Source  string `yaml:"source"`
}

// CaseSpec is one test case entry in a profile document.
type CaseSpec struct {
	// Key names the Registry entry that supplies this case's callable.
	Key string `yaml:"key"`
	// Name and Description are passed through to the constructed node.
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// DependsOn lists the Key of every case this one depends on.
	DependsOn []string `yaml:"depends_on"`
	// ParameterLabel tags this case's result for dependents that request
	// it via ParamFromDependency(ParameterLabel).
	ParameterLabel string `yaml:"parameter_label"`
	// Params declares the callable's argument bindings, in call order.
	Params []ParamSpecDoc `yaml:"params"`
	// AutoRetryCount is the node's initial retry budget.
	AutoRetryCount int `yaml:"auto_retry_count"`
}

// Document is the full parsed shape of a profile: an ordered list of
// test cases plus the dependency edges between them.
type Document struct {
	Cases []CaseSpec `yaml:"cases"`
}

// Profile implements run.Profile over a Document resolved against a
// Registry. One Profile can back any number of test runs:
// TestCaseList constructs brand-new Node instances on every call (a
// Node is mutable state scoped to one run, per spec.md §4.1's
// lifecycle).
type Profile struct {
	doc      Document
	registry Registry
}

// New constructs a Profile serving doc, resolving registry keys
// against registry.
func New(doc Document, registry Registry) *Profile {
	return &Profile{doc: doc, registry: registry}
}

// TestCaseList builds a fresh node for every case in the document, in
// declaration order, wires their dependency edges against graph, and
// returns them in the same order so the caller can add them to a
// TestRun via LoadNodes. It fails closed: an unresolved registry key,
// a duplicate case key, or a dependency naming an undeclared key is an
// error and no nodes are wired.
func (p *Profile) TestCaseList(graph *run.Graph) ([]*run.Node, error) {
	nodesByKey := make(map[string]*run.Node, len(p.doc.Cases))
	ordered := make([]*run.Node, 0, len(p.doc.Cases))

	for _, c := range p.doc.Cases {
		if _, dup := nodesByKey[c.Key]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCaseKey, c.Key)
		}
		fn, ok := p.registry[c.Key]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownRegistryKey, c.Key)
		}

		paramSpecs := make([]run.ParamSpec, 0, len(c.Params))
		labelByArg := make(map[string]string, len(c.Params))
		for _, ps := range c.Params {
			if ps.Source == run.DataModelArg {
				paramSpecs = append(paramSpecs, run.ParamSpec{ArgName: ps.ArgName, Source: run.ParamFromDataModel()})
				continue
			}
			paramSpecs = append(paramSpecs, run.ParamSpec{ArgName: ps.ArgName, Source: run.ParamFromDependency(ps.Source)})
			labelByArg[ps.ArgName] = ps.Source
		}

		n := run.NewTestCaseNode(c.Name, c.Description, fn, paramSpecs, c.ParameterLabel, c.AutoRetryCount)
		nodesByKey[c.Key] = n
		ordered = append(ordered, n)
	}

	for i, c := range p.doc.Cases {
		n := ordered[i]
		for _, depKey := range c.DependsOn {
			dep, ok := nodesByKey[depKey]
			if !ok {
				return nil, fmt.Errorf("%w: %s depends on undeclared %s", ErrUnknownDependency, c.Key, depKey)
			}
			if err := graph.AddDependency(n, dep); err != nil {
				return nil, err
			}
		}
	}

	return ordered, nil
}

var _ run.Profile = (*Profile)(nil)
