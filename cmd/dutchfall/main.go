package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "price":
		if err := price(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "simulate":
		if err := simulate(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "events":
		if err := events(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "help", "-h", "--help":
		printUsage()
	case "version", "-v", "--version":
		fmt.Println("dutchfall version 1.0.0")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`dutchfall - Dutch auction settlement engine

Usage:
  dutchfall <command> [options]

Commands:
  price      Print the price schedule for a set of auction parameters
  simulate   Run a full auction lifecycle against in-memory registries
  events     Show the journaled event timeline from a journal database
  help       Show this help message
  version    Show version information

Examples:
  # Inspect a price curve
  dutchfall price --reserve 1000 --duration 1000 --decrement 1

  # Run a token-mode auction end to end, journaling to auction.db
  dutchfall simulate --mode token --db auction.db

  # Review what happened
  dutchfall events auction.db

For command-specific help, run:
  dutchfall <command> --help`)
}
