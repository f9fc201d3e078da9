// SPDX-License-Identifier: MPL-2.0

package main

import cmd "importmap-cli/cmd/importmap"

func main() {
	cmd.Execute()
}
