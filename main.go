// The main package for the lexprobe executable.
package main

import "github.com/calderonlabs/lexprobe/cmd"

func main() {
	cmd.Execute()
}
