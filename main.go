// Package main provides a landing entry point for rv32sim.
//
// For the full CLI, use: go run ./cmd/rv32sim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("rv32sim - RV32I five-stage pipeline simulator")
	fmt.Println("")
	fmt.Println("Usage: rv32sim <command> [flags] <program.bin>")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  run    run a program until the cycle ceiling is reached")
	fmt.Println("  step   clock a fixed number of ticks and dump state")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/rv32sim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: you provided arguments. Use 'go run ./cmd/rv32sim' instead.")
	}
}
