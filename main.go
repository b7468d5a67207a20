// Command nacalc computes voltage drop and load for power-limited
// notification appliance circuits.
package main

import "github.com/emberfield/nacalc/cmd"

func main() {
	cmd.Execute()
}
