// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/invowk/docnose/cmd/docnose"

func main() {
	cmd.Execute()
}
