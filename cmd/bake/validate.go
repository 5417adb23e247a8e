// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bakebuild/bake/internal/dag"
	"github.com/bakebuild/bake/internal/executor"
	"github.com/bakebuild/bake/pkg/bakefile"

	"github.com/spf13/cobra"
)

type (
	// validationReport collects graph problems of a loaded Bakefile.
	validationReport struct {
		cycles   []*dag.CycleError
		dangling []danglingDependency
	}

	// danglingDependency is a dependency with neither a rule nor a file on disk.
	// It is skipped at run time.
	danglingDependency struct {
		target string
		dep    string
	}
)

func newValidateCommand(app *App, s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the Bakefile for dependency cycles and dangling dependencies",
		Long: `Load the Bakefile with all includes and check its dependency graph.

Cycles are errors. Dependencies that name neither a rule nor an existing
file are reported as warnings: bake treats them as no-ops.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bf, err := s.load(cmd, app)
			if err != nil {
				return err
			}

			report := validateBakefile(bf, filepath.Dir(s.file))
			for _, d := range report.dangling {
				fmt.Fprintf(app.stdout, "%s target %q: dependency %q has no rule and no file\n",
					WarningStyle.Render("warning:"), d.target, d.dep)
			}
			if len(report.cycles) > 0 {
				for _, c := range report.cycles {
					fmt.Fprintf(app.stdout, "%s %s\n", ErrorStyle.Render("cycle:"), strings.Join(c.Cycle, " -> "))
				}
				return s.fail(app, report.cycles[0])
			}

			fmt.Fprintf(app.stdout, "%s %d targets, %d variables, %d sources\n",
				SuccessStyle.Render("✓ valid:"), len(bf.Targets()), len(bf.Variables), len(bf.Sources))
			return nil
		},
	}
}

// validateBakefile reports every distinct dependency cycle and every
// dependency that is neither a target nor a file under dir.
func validateBakefile(bf *bakefile.Bakefile, dir string) validationReport {
	var report validationReport

	graph := dag.FromBakefile(bf)
	if _, err := graph.TopologicalSort(); err != nil {
		var cycleErr *dag.CycleError
		if errors.As(err, &cycleErr) {
			report.cycles = distinctCycles(bf, cycleErr.Cycle)
		}
	}

	for _, target := range bf.Targets() {
		rule, _ := bf.Lookup(target)
		for _, dep := range rule.Dependencies {
			if _, ok := bf.Lookup(dep); ok {
				continue
			}
			if _, err := os.Stat(filepath.Join(dir, dep)); err == nil {
				continue
			}
			report.dangling = append(report.dangling, danglingDependency{target: target, dep: dep})
		}
	}

	return report
}

// distinctCycles walks from each node Kahn's algorithm could not order and
// keeps one path per set of cycle members.
func distinctCycles(bf *bakefile.Bakefile, candidates []string) []*dag.CycleError {
	planner := executor.New(bf)
	seen := make(map[string]bool)

	var cycles []*dag.CycleError
	for _, node := range candidates {
		_, err := planner.Plan(node)
		var cycleErr *dag.CycleError
		if !errors.As(err, &cycleErr) {
			continue
		}
		members := slices.Clone(cycleErr.Cycle[:len(cycleErr.Cycle)-1])
		slices.Sort(members)
		key := strings.Join(members, "\x00")
		if seen[key] {
			continue
		}
		seen[key] = true
		cycles = append(cycles, cycleErr)
	}
	return cycles
}
