package main

import "github.com/dgsolve/gomcl/cmd"

func main() {
	cmd.Execute()
}
