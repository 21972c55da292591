// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func TestValues_SortedAndComplete(t *testing.T) {
	t.Parallel()

	values := Values()
	if len(values) != len(issues) {
		t.Fatalf("len(Values()) = %d, want %d", len(values), len(issues))
	}
	for i, iss := range values {
		if int(iss.Id()) != i+1 {
			t.Errorf("Values()[%d].Id() = %d, want %d", i, iss.Id(), i+1)
		}
		if iss.Name() == "" || iss.MarkdownMsg() == "" {
			t.Errorf("issue %d has empty name or message", iss.Id())
		}
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	if got := Lookup("config-load-failed"); got != Get(ConfigLoadFailedId) {
		t.Errorf("Lookup() = %v, want config issue", got)
	}
	if got := Lookup("nope"); got != nil {
		t.Errorf("Lookup(nope) = %v, want nil", got)
	}
}

func TestIssue_DocLinksIsCopy(t *testing.T) {
	t.Parallel()

	iss := Get(DocRootNotFoundId)
	links := iss.DocLinks()
	links[0] = "mutated"
	if iss.DocLinks()[0] == "mutated" {
		t.Error("DocLinks() should return a copy")
	}
}

func TestIssue_Render(t *testing.T) {
	t.Parallel()

	out, err := Get(ExamplesFailedId).Render("notty")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(out, "documented examples") {
		t.Errorf("Render() output missing heading:\n%s", out)
	}
}
