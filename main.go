// SPDX-License-Identifier: MPL-2.0

// modhook runs a linter once per Go module owning a changed file.
package main

import cmd "github.com/modhook/modhook/cmd/modhook"

func main() {
	cmd.Execute()
}
