// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

type Id int

const (
	BakefileNotFoundId Id = iota + 1
	IncludeFileNotFoundId
	InvalidIncludeURLId
	IncludeFetchFailedId
	CommandSpawnFailedId
	CommandFailedId
	DependencyCycleId
	ConfigLoadFailedId
	InvalidRuntimeModeId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

// Render renders the issue page as terminal markdown using the glamour
// style named by stylePath ("dark", "light", "notty", or a JSON style file).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.extLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	bakefileNotFoundIssue = &Issue{
		id: BakefileNotFoundId,
		mdMsg: `
# No Bakefile found!

bake reads its rules from a file named ` + "`Bakefile`" + ` in the current directory.

## Things you can try:
- Run bake from the directory that holds your Bakefile
- Point bake at another file:
~~~
$ bake --file path/to/rules.bake --rule build
~~~
- Set ` + "`bakefile`" + ` in your config file to change the default name

## Minimal Bakefile:
~~~
CC=gcc

build: deps
	$CC -o app main.c

deps:
	echo fetching dependencies
~~~`,
	}

	includeFileNotFoundIssue = &Issue{
		id: IncludeFileNotFoundId,
		mdMsg: `
# Included file not found!

A path listed under an ` + "`include:`" + ` block could not be read.

## Things you can try:
- Check the spelling of the path
- Relative paths are resolved against the directory of the file that includes them
- Make sure the file is readable by the current user`,
	}

	invalidIncludeURLIssue = &Issue{
		id: InvalidIncludeURLId,
		mdMsg: `
# Invalid include URL!

An include reference containing "http" is treated as a URL, but it could not
be parsed as an absolute http or https URL.

## Things you can try:
- Use a full URL such as ` + "`https://example.com/rules.bake`" + `
- Quotes around the URL are allowed: ` + "`\"https://example.com/rules.bake\"`" + `
- Rename local files whose path contains "http"`,
		extLinks: []HttpLink{"https://pkg.go.dev/net/url#Parse"},
	}

	includeFetchFailedIssue = &Issue{
		id: IncludeFetchFailedId,
		mdMsg: `
# Failed to fetch a remote include!

The remote rule file could not be downloaded.

## Things you can try:
- Check your network connection and proxy settings
- Open the URL in a browser to confirm it returns the rule file
- Raise ` + "`include.timeout`" + ` in your config for slow servers`,
		extLinks: []HttpLink{"https://pkg.go.dev/net/http#Client"},
	}

	commandSpawnFailedIssue = &Issue{
		id: CommandSpawnFailedId,
		mdMsg: `
# Failed to start a recipe command!

The first word of a recipe line is run directly as a program, without a shell.

## Things you can try:
- Check that the program is installed and on your PATH
- Shell syntax (pipes, redirections, quotes) needs an explicit shell:
~~~
build:
	sh -c make&&make-install
~~~
- Or switch to the embedded shell:
~~~
$ bake --runtime virtual --rule build
~~~`,
		extLinks: []HttpLink{"https://pkg.go.dev/mvdan.cc/sh/v3/interp"},
	}

	commandFailedIssue = &Issue{
		id: CommandFailedId,
		mdMsg: `
# A recipe command failed!

bake stops at the first command that exits with a non-zero status.

## Things you can try:
- Re-run with ` + "`--verbose`" + ` to see the output of every command
- Use ` + "`--dry-run`" + ` to print the commands without running them`,
	}

	dependencyCycleIssue = &Issue{
		id: DependencyCycleId,
		mdMsg: `
# Dependency cycle detected!

A target depends on itself, directly or through other targets.

## Things you can try:
- Run ` + "`bake validate`" + ` to list every cycle in the rule file
- Remove one of the dependencies that closes the loop`,
		extLinks: []HttpLink{"https://en.wikipedia.org/wiki/Topological_sorting"},
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

## Things you can try:
- Check the CUE syntax of your config file
- Run ` + "`bake config path`" + ` to see which file is read
- Run ` + "`bake config dump`" + ` to see the defaults`,
		extLinks: []HttpLink{"https://cuelang.org/docs/"},
	}

	invalidRuntimeModeIssue = &Issue{
		id: InvalidRuntimeModeId,
		mdMsg: `
# Invalid runtime!

## Valid runtimes:
- ` + "`native`" + `: spawn the command word directly (default)
- ` + "`virtual`" + `: run the line in the embedded shell interpreter`,
	}

	issues = map[Id]*Issue{
		bakefileNotFoundIssue.Id():    bakefileNotFoundIssue,
		includeFileNotFoundIssue.Id(): includeFileNotFoundIssue,
		invalidIncludeURLIssue.Id():   invalidIncludeURLIssue,
		includeFetchFailedIssue.Id():  includeFetchFailedIssue,
		commandSpawnFailedIssue.Id():  commandSpawnFailedIssue,
		commandFailedIssue.Id():       commandFailedIssue,
		dependencyCycleIssue.Id():     dependencyCycleIssue,
		configLoadFailedIssue.Id():    configLoadFailedIssue,
		invalidRuntimeModeIssue.Id():  invalidRuntimeModeIssue,
	}
)

// Values returns every registered issue ordered by Id.
func Values() []*Issue {
	return slices.SortedFunc(maps.Values(issues), func(a, b *Issue) int {
		return int(a.id) - int(b.id)
	})
}

func Get(id Id) *Issue {
	return issues[id]
}
