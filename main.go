// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/bakebuild/bake/cmd/bake"

func main() {
	cmd.Execute()
}
