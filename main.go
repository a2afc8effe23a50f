// SPDX-License-Identifier: MPL-2.0

package main

import cmd "ujar-cli/cmd/ujar"

func main() {
	cmd.Execute()
}
