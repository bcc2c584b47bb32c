package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/holiman/uint256"

	"github.com/dutchfall-xyz/go-dutchfall/curve"
)

func price(args []string) error {
	fs := flag.NewFlagSet("price", flag.ExitOnError)
	reserve := fs.Uint64("reserve", 1000, "Reserve price (price floor)")
	duration := fs.Uint64("duration", 1000, "Auction duration in time units")
	decrement := fs.Uint64("decrement", 1, "Price drop per elapsed time unit")
	start := fs.Uint64("start", 0, "Time unit at which the auction opens")
	step := fs.Uint64("step", 0, "Sampling interval (default: duration/10)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: dutchfall price [options]

Print the descending price schedule for a parameter set.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Default curve: 2000 down to 1000 over 1000 units
  dutchfall price

  # Steeper curve sampled every 50 units
  dutchfall price --reserve 500 --duration 200 --decrement 10 --step 50
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	params, err := curve.NewParams(
		uint256.NewInt(*reserve), uint256.NewInt(*decrement),
		*duration, *start,
	)
	if err != nil {
		return err
	}

	interval := *step
	if interval == 0 {
		interval = *duration / 10
		if interval == 0 {
			interval = 1
		}
	}

	fmt.Printf("initial price: %s\n", params.InitialPrice().Dec())
	fmt.Printf("reserve price: %s\n", params.ReservePrice.Dec())
	fmt.Printf("open interval: units %d..%d\n\n", params.StartUnit, params.EndUnit())

	fmt.Printf("%-12s %s\n", "unit", "price")
	end := params.EndUnit()
	for unit := params.StartUnit; unit < end; unit += interval {
		fmt.Printf("%-12d %s\n", unit, params.CurrentPrice(unit).Dec())
	}
	// The final unit always prints: the price sits at reserve there.
	fmt.Printf("%-12d %s\n", end, params.CurrentPrice(end).Dec())
	return nil
}
