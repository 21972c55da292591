// SPDX-License-Identifier: MPL-2.0

// Package cli contains CLI integration tests using testscript.
//
// Each script under testdata builds a small documentation tree in its work
// directory and drives the docnose command against it.
package cli

import (
	"os"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"

	cmd "github.com/invowk/docnose/cmd/docnose"
)

func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"docnose": func() int {
			cmd.Execute()
			return 0
		},
	}))
}

// TestCLI runs all testscript tests in the testdata directory.
func TestCLI(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata",
		Setup: func(env *testscript.Env) error {
			env.Setenv("NO_COLOR", "1")
			return nil
		},
		// Continue running all tests even if one fails
		ContinueOnError: true,
	})
}
