package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dutchfall-xyz/go-dutchfall/journal"
)

func events(args []string) error {
	fs := flag.NewFlagSet("events", flag.ExitOnError)
	streamFilter := fs.String("stream", "", "Filter by auction stream ID")
	typeFilter := fs.String("type", "", "Filter by event type")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: dutchfall events <journal.db> [options]

Display the journaled auction lifecycle timeline.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Show all events
  dutchfall events auction.db

  # Only settlements
  dutchfall events auction.db --type settled

  # One auction's full history
  dutchfall events auction.db --stream 3f2c...
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("journal database required")
	}

	store, err := journal.NewSQLiteStore(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer store.Close()

	filter := journal.Filter{StreamID: *streamFilter}
	if *typeFilter != "" {
		filter.Types = []string{*typeFilter}
	}

	list, err := store.ReadAll(context.Background(), filter)
	if err != nil {
		return fmt.Errorf("read journal: %w", err)
	}

	if len(list) == 0 {
		fmt.Println("No events recorded")
		return nil
	}

	fmt.Printf("%-38s %-4s %-12s %s\n", "stream", "ver", "type", "payload")
	for _, e := range list {
		var payload map[string]any
		detail := ""
		if err := e.Decode(&payload); err == nil {
			detail = formatPayload(payload)
		}
		fmt.Printf("%-38s %-4d %-12s %s\n", e.StreamID, e.Version, e.Type, detail)
	}
	fmt.Printf("\n%d event(s)\n", len(list))
	return nil
}

func formatPayload(payload map[string]any) string {
	// Stable, readable ordering for the fields the engine journals.
	keys := []string{
		"owner", "winner", "offered", "price", "unit",
		"reserve_price", "duration_units", "price_decrement", "start_unit",
		"mode", "logic_version", "from_version", "to_version",
	}
	out := ""
	for _, k := range keys {
		if v, ok := payload[k]; ok {
			if out != "" {
				out += " "
			}
			out += fmt.Sprintf("%s=%v", k, v)
		}
	}
	return out
}
