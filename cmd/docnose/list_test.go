// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"strings"
	"testing"

	"github.com/invowk/docnose/internal/testutil"
)

func TestList_Markdown(t *testing.T) {
	t.Parallel()

	tree := testutil.NewDocTree(t)
	tree.WriteDoc("install.md", passingDoc)

	stdout, _, err := execute(t, "list", tree.Base)
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	for _, want := range []string{
		"| case | mode | examples | source |",
		"`install[default]/default:install:",
		"| interactive | 2 |",
		"| module | 1 |",
		"| install.md:",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("list output missing %q:\n%s", want, stdout)
		}
	}
}

func TestList_Rendered(t *testing.T) {
	t.Parallel()

	tree := testutil.NewDocTree(t)
	tree.WriteDoc("install.md", passingDoc)

	stdout, _, err := execute(t, "list", "--render", "--style", "notty", "--width", "200", tree.Base)
	if err != nil {
		t.Fatalf("list --render error = %v", err)
	}
	if strings.Contains(stdout, "|---|") {
		t.Errorf("rendered output still holds raw markdown:\n%s", stdout)
	}
	for _, want := range []string{"interactive", "module", "install.md:"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("rendered output missing %q:\n%s", want, stdout)
		}
	}
}

func TestList_EmptyTree(t *testing.T) {
	t.Parallel()

	tree := testutil.NewDocTree(t)
	stdout, _, err := execute(t, "list", tree.Base)
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	if !strings.Contains(stdout, "No cases.") {
		t.Errorf("stdout = %q", stdout)
	}
}
