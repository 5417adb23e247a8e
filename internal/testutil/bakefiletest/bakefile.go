// SPDX-License-Identifier: MPL-2.0

package bakefiletest

import (
	"github.com/bakebuild/bake/pkg/bakefile"
)

type (
	// Option configures a test Bakefile.
	Option func(*bakefile.Bakefile)

	// RuleOption configures a test rule.
	RuleOption func(*bakefile.Rule)
)

// New creates an empty Bakefile and applies the given options in order.
func New(opts ...Option) *bakefile.Bakefile {
	bf := bakefile.New()
	for _, opt := range opts {
		opt(bf)
	}
	return bf
}

// NewRule creates a rule with no dependencies and an empty recipe.
func NewRule(target string, opts ...RuleOption) *bakefile.Rule {
	r := &bakefile.Rule{
		Target:       target,
		Dependencies: []string{},
		Recipe:       []string{},
		Source:       "test",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithVariable appends a variable definition.
func WithVariable(name, value string) Option {
	return func(bf *bakefile.Bakefile) {
		bf.Variables = append(bf.Variables, bakefile.Variable{Name: name, Value: value})
	}
}

// WithRule appends a rule.
func WithRule(target string, opts ...RuleOption) Option {
	return func(bf *bakefile.Bakefile) {
		bf.Rules = append(bf.Rules, NewRule(target, opts...))
	}
}

// WithInclude queues an include reference.
func WithInclude(ref string) Option {
	return func(bf *bakefile.Bakefile) {
		bf.Includes = append(bf.Includes, ref)
	}
}

// DependsOn appends dependencies to the rule.
func DependsOn(deps ...string) RuleOption {
	return func(r *bakefile.Rule) {
		r.Dependencies = append(r.Dependencies, deps...)
	}
}

// Recipe appends recipe lines to the rule.
func Recipe(lines ...string) RuleOption {
	return func(r *bakefile.Rule) {
		r.Recipe = append(r.Recipe, lines...)
	}
}
