// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/jandreu1/azure-pipelines-agent/cmd/agent-worker"

func main() {
	cmd.Execute()
}
