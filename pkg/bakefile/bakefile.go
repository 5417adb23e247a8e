// SPDX-License-Identifier: MPL-2.0

package bakefile

import "slices"

// DefaultFileName is the rule file looked up in the working directory.
const DefaultFileName = "Bakefile"

type (
	// Variable is a single NAME=VALUE definition.
	// Redefinitions are stored as additional entries, never overwritten.
	Variable struct {
		Name  string `json:"name" yaml:"name" toml:"name"`
		Value string `json:"value" yaml:"value" toml:"value"`
	}

	// Rule is a target with its dependencies and recipe lines.
	Rule struct {
		// Target is the name the rule is looked up by.
		Target string `json:"target" yaml:"target" toml:"target"`
		// Dependencies are realized, in order, before the recipe runs.
		Dependencies []string `json:"dependencies" yaml:"dependencies" toml:"dependencies"`
		// Recipe holds the trimmed command lines in declaration order.
		Recipe []string `json:"recipe" yaml:"recipe" toml:"recipe"`
		// Source is the file path or URL the rule was declared in.
		Source string `json:"source,omitempty" yaml:"source,omitempty" toml:"source,omitempty"`
	}

	// Bakefile is the merged model of a root rule file and all of its includes.
	Bakefile struct {
		// Variables in declaration order across all sources.
		Variables []Variable `json:"variables" yaml:"variables" toml:"variables"`
		// Rules in declaration order across all sources. Targets may repeat.
		Rules []*Rule `json:"rules" yaml:"rules" toml:"rules"`
		// Includes is the pending include work-list. It is drained by the
		// include resolver and is empty on a fully loaded model.
		Includes []string `json:"includes,omitempty" yaml:"includes,omitempty" toml:"includes,omitempty"`
		// Sources lists every parsed source, root first.
		Sources []string `json:"sources" yaml:"sources" toml:"sources"`
	}
)

// New returns an empty Bakefile.
func New() *Bakefile {
	return &Bakefile{}
}

// Lookup returns the first rule declared for target.
func (b *Bakefile) Lookup(target string) (*Rule, bool) {
	for _, rule := range b.Rules {
		if rule.Target == target {
			return rule, true
		}
	}
	return nil, false
}

// Targets returns the distinct target names in declaration order.
func (b *Bakefile) Targets() []string {
	targets := make([]string, 0, len(b.Rules))
	for _, rule := range b.Rules {
		if !slices.Contains(targets, rule.Target) {
			targets = append(targets, rule.Target)
		}
	}
	return targets
}

// LookupVariable returns the value of the last definition of name.
func (b *Bakefile) LookupVariable(name string) (string, bool) {
	for i := len(b.Variables) - 1; i >= 0; i-- {
		if b.Variables[i].Name == name {
			return b.Variables[i].Value, true
		}
	}
	return "", false
}
