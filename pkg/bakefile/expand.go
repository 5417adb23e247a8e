// SPDX-License-Identifier: MPL-2.0

package bakefile

import (
	"cmp"
	"slices"
	"strings"
)

// Expander substitutes variable references in recipe lines.
// It is built once from a loaded Bakefile and is safe for concurrent use.
type Expander struct {
	values map[string]string
	// names holds the defined names, longest first, for bare $NAME matching.
	names []string
}

// NewExpander builds an Expander from an ordered variable sequence.
// When a name is defined more than once the last definition wins.
// Variables with an empty name are ignored.
func NewExpander(vars []Variable) *Expander {
	e := &Expander{values: make(map[string]string, len(vars))}
	for _, v := range vars {
		if v.Name == "" {
			continue
		}
		if _, seen := e.values[v.Name]; !seen {
			e.names = append(e.names, v.Name)
		}
		e.values[v.Name] = v.Value
	}
	slices.SortStableFunc(e.names, func(a, b string) int {
		return cmp.Compare(len(b), len(a))
	})
	return e
}

// Expand rewrites every $NAME, $(NAME) and ${NAME} reference to a defined
// variable with its value. The line is scanned once from left to right, so
// substituted values are never expanded again. References to undefined names
// are kept verbatim and there is no escape syntax.
func (e *Expander) Expand(line string) string {
	if len(e.values) == 0 || !strings.Contains(line, "$") {
		return line
	}

	var out strings.Builder
	out.Grow(len(line))

	for i := 0; i < len(line); {
		if line[i] != '$' {
			out.WriteByte(line[i])
			i++
			continue
		}
		value, width, ok := e.reference(line[i+1:])
		if !ok {
			out.WriteByte('$')
			i++
			continue
		}
		out.WriteString(value)
		i += 1 + width
	}
	return out.String()
}

// reference resolves the reference that follows a '$'. It returns the value
// and the number of bytes consumed after the '$'.
func (e *Expander) reference(rest string) (string, int, bool) {
	if rest == "" {
		return "", 0, false
	}

	if closing, ok := delimiters[rest[0]]; ok {
		end := strings.IndexByte(rest, closing)
		if end > 0 {
			if value, defined := e.values[rest[1:end]]; defined {
				return value, end + 1, true
			}
		}
	}

	for _, name := range e.names {
		if strings.HasPrefix(rest, name) {
			return e.values[name], len(name), true
		}
	}
	return "", 0, false
}

var delimiters = map[byte]byte{
	'(': ')',
	'{': '}',
}

// Expand substitutes variable references in line using b's variables.
// Callers expanding many lines should build one Expander instead.
func (b *Bakefile) Expand(line string) string {
	return NewExpander(b.Variables).Expand(line)
}
