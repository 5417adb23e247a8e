// SPDX-License-Identifier: MPL-2.0

package bakefile

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// includeHeader is the left-hand side of the header that opens an include block.
const includeHeader = "include"

// maxLineBytes bounds a single rule-file line.
const maxLineBytes = 1 << 20

// parser tracks the header that is open while scanning one source.
// Each source starts with no open header.
type parser struct {
	bf     *Bakefile
	source string

	// rule is the rule opened by the most recent header, nil if none is open
	// or the most recent header was an include header.
	rule      *Rule
	including bool
}

// Parse parses a single rule-file source into a new Bakefile.
// The source name is recorded on every rule for diagnostics.
func Parse(r io.Reader, source string) (*Bakefile, error) {
	bf := New()
	if err := bf.ParseSource(r, source); err != nil {
		return nil, err
	}
	return bf, nil
}

// ParseString is a convenience wrapper around Parse for in-memory text.
func ParseString(text, source string) (*Bakefile, error) {
	return Parse(strings.NewReader(text), source)
}

// ParseSource parses one more source into b, appending to its variables,
// rules and pending includes. Malformed lines are dropped silently; the only
// errors returned come from reading r.
func (b *Bakefile) ParseSource(r io.Reader, source string) error {
	p := &parser{bf: b, source: source}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		p.line(strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", source, err)
	}

	b.Sources = append(b.Sources, source)
	return nil
}

func (p *parser) line(line string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return
	}

	if line[0] == ' ' || line[0] == '\t' {
		p.body(trimmed)
		return
	}

	if target, deps, ok := strings.Cut(line, ":"); ok {
		p.header(strings.TrimSpace(target), deps)
		return
	}

	if name, value, ok := strings.Cut(line, "="); ok {
		p.bf.Variables = append(p.bf.Variables, Variable{
			Name:  strings.TrimSpace(name),
			Value: strings.TrimSpace(value),
		})
	}
}

// body handles an indented line under the open header.
func (p *parser) body(text string) {
	switch {
	case p.including:
		p.bf.Includes = append(p.bf.Includes, text)
	case p.rule != nil:
		p.rule.Recipe = append(p.rule.Recipe, text)
	}
}

func (p *parser) header(target, deps string) {
	if target == includeHeader {
		p.including = true
		p.rule = nil
		return
	}

	rule := &Rule{
		Target:       target,
		Dependencies: append([]string{}, strings.Fields(deps)...),
		Recipe:       []string{},
		Source:       p.source,
	}
	p.bf.Rules = append(p.bf.Rules, rule)
	p.rule = rule
	p.including = false
}
