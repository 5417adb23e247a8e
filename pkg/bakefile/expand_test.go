// SPDX-License-Identifier: MPL-2.0

package bakefile

import "testing"

func TestExpand(t *testing.T) {
	t.Parallel()

	vars := []Variable{
		{Name: "NAME", Value: "value"},
		{Name: "CC", Value: "gcc"},
		{Name: "CCFLAGS", Value: "-O2"},
		{Name: "REF", Value: "$NAME"},
	}

	tests := []struct {
		name string
		line string
		want string
	}{
		{"bare", "echo $NAME", "echo value"},
		{"parens", "echo $(NAME)", "echo value"},
		{"braces", "echo ${NAME}", "echo value"},
		{"repeated", "$NAME-$(NAME)-${NAME}", "value-value-value"},
		{"inside quotes", `echo "$NAME"`, `echo "value"`},
		{"unresolved kept verbatim", "echo $MISSING $(MISSING) ${MISSING}", "echo $MISSING $(MISSING) ${MISSING}"},
		{"longest bare name wins", "$CC $CCFLAGS", "gcc -O2"},
		{"value not rescanned", "echo $REF", "echo $NAME"},
		{"bare followed by text", "echo $NAMEs", "echo values"},
		{"trailing dollar", "echo cost$", "echo cost$"},
		{"unterminated paren", "echo $(NAME", "echo $(NAME"},
		{"no references", "go build ./...", "go build ./..."},
	}

	e := NewExpander(vars)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := e.Expand(tt.line); got != tt.want {
				t.Errorf("Expand(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestExpand_LastDefinitionWins(t *testing.T) {
	t.Parallel()

	bf := &Bakefile{Variables: []Variable{
		{Name: "MODE", Value: "debug"},
		{Name: "MODE", Value: "release"},
	}}
	if got := bf.Expand("build --$MODE"); got != "build --release" {
		t.Errorf("Expand() = %q, want %q", got, "build --release")
	}
	if v, _ := bf.LookupVariable("MODE"); v != "release" {
		t.Errorf("LookupVariable() = %q, want release", v)
	}
}

func TestExpand_EmptyNameIgnored(t *testing.T) {
	t.Parallel()

	e := NewExpander([]Variable{{Name: "", Value: "boom"}})
	if got := e.Expand("echo $ $(x)"); got != "echo $ $(x)" {
		t.Errorf("Expand() = %q, want input unchanged", got)
	}
}
