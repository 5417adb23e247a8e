// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func TestIds_AreUniqueAndRegistered(t *testing.T) {
	t.Parallel()

	ids := []Id{
		BakefileNotFoundId,
		IncludeFileNotFoundId,
		InvalidIncludeURLId,
		IncludeFetchFailedId,
		CommandSpawnFailedId,
		CommandFailedId,
		DependencyCycleId,
		ConfigLoadFailedId,
		InvalidRuntimeModeId,
	}

	seen := make(map[Id]bool)
	for _, id := range ids {
		if seen[id] {
			t.Errorf("duplicate ID: %d", id)
		}
		seen[id] = true

		page := Get(id)
		if page == nil {
			t.Fatalf("Get(%d) returned nil", id)
		}
		if page.Id() != id {
			t.Errorf("Get(%d).Id() = %d", id, page.Id())
		}
		if !strings.HasPrefix(strings.TrimSpace(string(page.mdMsg)), "# ") {
			t.Errorf("issue %d markdown must start with a heading", id)
		}
	}

	if BakefileNotFoundId != 1 {
		t.Errorf("BakefileNotFoundId = %d, want 1", BakefileNotFoundId)
	}
	if got := len(Values()); got != len(ids) {
		t.Errorf("Values() returned %d issues, want %d", got, len(ids))
	}
}

func TestValues_SortedById(t *testing.T) {
	t.Parallel()

	values := Values()
	for i := 1; i < len(values); i++ {
		if values[i-1].Id() >= values[i].Id() {
			t.Fatalf("Values() not sorted at index %d: %d >= %d", i, values[i-1].Id(), values[i].Id())
		}
	}
}

func TestGet_Unknown(t *testing.T) {
	t.Parallel()

	if Get(Id(9999)) != nil {
		t.Error("Get(9999) should return nil")
	}
}

func TestIssues_ExternalLinksAreHTTPS(t *testing.T) {
	t.Parallel()

	for _, page := range Values() {
		for _, link := range page.extLinks {
			if !strings.HasPrefix(string(link), "https://") {
				t.Errorf("issue %d: link %q is not https", page.Id(), link)
			}
		}
	}
}

// TestIssue_Render is not parallel: it swaps the package-level renderer.
func TestIssue_Render(t *testing.T) {
	var gotMarkdown, gotStyle string
	orig := render
	t.Cleanup(func() { render = orig })
	render = func(in, stylePath string) (string, error) {
		gotMarkdown, gotStyle = in, stylePath
		return "rendered", nil
	}

	page := &Issue{
		id:       99,
		mdMsg:    "# Title",
		extLinks: []HttpLink{"https://example.com/docs", "https://example.com/ext"},
	}
	out, err := page.Render("notty")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if out != "rendered" || gotStyle != "notty" {
		t.Errorf("Render() = %q with style %q", out, gotStyle)
	}
	for _, want := range []string{"# Title", "## See also", "https://example.com/docs", "https://example.com/ext"} {
		if !strings.Contains(gotMarkdown, want) {
			t.Errorf("rendered markdown missing %q:\n%s", want, gotMarkdown)
		}
	}
}

func TestIssue_RenderWithGlamour(t *testing.T) {
	t.Parallel()

	out, err := Get(DependencyCycleId).Render("notty")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	for _, want := range []string{"Dependency cycle detected", "See also"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() output missing %q:\n%s", want, out)
		}
	}
}
