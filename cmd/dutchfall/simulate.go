package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/rs/zerolog"

	"github.com/dutchfall-xyz/go-dutchfall/auction"
	"github.com/dutchfall-xyz/go-dutchfall/journal"
	"github.com/dutchfall-xyz/go-dutchfall/proxy"
	"github.com/dutchfall-xyz/go-dutchfall/registry"
	"github.com/dutchfall-xyz/go-dutchfall/settle"
)

// simulate drives one auction through its whole lifecycle against in-memory
// registries: mint, approve (or permit), a few losing bids, the winning bid,
// and a logic upgrade afterwards.
func simulate(args []string) error {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	mode := fs.String("mode", "token", "Payment mode: token or native")
	reserve := fs.Uint64("reserve", 1000, "Reserve price")
	duration := fs.Uint64("duration", 1000, "Auction duration in time units")
	decrement := fs.Uint64("decrement", 1, "Price drop per time unit")
	bidUnit := fs.Uint64("bid-unit", 500, "Time unit of the winning bid")
	dbPath := fs.String("db", "", "Journal database path (default: in-memory)")
	permit := fs.Bool("permit", false, "Grant the token allowance via signed permit instead of approve")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: dutchfall simulate [options]

Run a complete auction lifecycle and log every transition.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Token-mode auction, allowance set via approve
  dutchfall simulate --mode token

  # Native-currency auction journaled to disk
  dutchfall simulate --mode native --db auction.db

  # Allowance granted by signed permit
  dutchfall simulate --permit
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	var store journal.Store
	var err error
	if *dbPath != "" {
		store, err = journal.NewSQLiteStore(*dbPath)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
	} else {
		store = journal.NewMemoryStore()
	}
	defer store.Close()

	// Identities. Real keys so the permit path exercises actual signatures.
	sellerKey, err := crypto.GenerateKey()
	if err != nil {
		return err
	}
	buyerKey, err := crypto.GenerateKey()
	if err != nil {
		return err
	}
	rivalKey, err := crypto.GenerateKey()
	if err != nil {
		return err
	}
	seller := crypto.PubkeyToAddress(sellerKey.PublicKey)
	buyer := crypto.PubkeyToAddress(buyerKey.PublicKey)
	rival := crypto.PubkeyToAddress(rivalKey.PublicKey)

	// Registries and the settlement coordinator.
	tokens := registry.NewLedger("Dutchfall Token")
	bank := registry.NewBank()
	assets := registry.NewCollection("Dutchfall Collectibles")
	coordAddr := crypto.CreateAddress(seller, 0)
	assetsAddr := crypto.CreateAddress(seller, 1)
	coordinator := settle.New(settle.Config{
		Self:   coordAddr,
		Tokens: tokens,
		Native: bank,
		Assets: assets,
	})

	// The seller lists one collectible and pre-approves its transfer.
	assetID, err := assets.Mint(seller)
	if err != nil {
		return err
	}
	if err := assets.Approve(seller, coordAddr, assetID); err != nil {
		return err
	}
	log.Info().Str("seller", seller.Hex()).Str("asset", assetID.Dec()).
		Msg("asset minted and approved for settlement")

	initial := *reserve + *decrement**duration
	funding := uint256.NewInt(initial)

	paymentMode := auction.FungibleToken
	switch *mode {
	case "token":
		if err := tokens.Mint(buyer, funding); err != nil {
			return err
		}
		if *permit {
			msg := registry.PermitMessage{
				Owner:    buyer,
				Spender:  coordAddr,
				Value:    funding,
				Nonce:    tokens.Nonce(buyer),
				Deadline: *bidUnit,
			}
			digest := tokens.PermitDigest(msg)
			sig, err := crypto.Sign(digest.Bytes(), buyerKey)
			if err != nil {
				return err
			}
			if err := tokens.Permit(msg, sig, *bidUnit); err != nil {
				return err
			}
			log.Info().Str("buyer", buyer.Hex()).Msg("allowance granted by permit")
		} else {
			if err := tokens.Approve(buyer, coordAddr, funding); err != nil {
				return err
			}
			log.Info().Str("buyer", buyer.Hex()).Msg("allowance granted by approve")
		}
	case "native":
		paymentMode = auction.Native
		if err := bank.Deposit(buyer, funding); err != nil {
			return err
		}
		log.Info().Str("buyer", buyer.Hex()).Str("amount", funding.Dec()).
			Msg("native balance funded")
	default:
		return fmt.Errorf("unknown mode %q (want token or native)", *mode)
	}

	// Deploy: proxy over v1 logic, journaled.
	p, err := proxy.New(auction.NewEngine(coordinator))
	if err != nil {
		return err
	}
	p.SetRecorder(journal.NewRecorder(store, log))

	err = p.Initialize(seller, proxy.InitParams{
		ReservePrice:   uint256.NewInt(*reserve),
		DurationUnits:  *duration,
		PriceDecrement: uint256.NewInt(*decrement),
		Mode:           paymentMode,
		Asset: &auction.AssetRef{
			Registry: assetsAddr,
			TokenID:  assetID,
		},
	})
	if err != nil {
		return err
	}
	log.Info().Str("stream", p.ID()).Str("mode", paymentMode.String()).
		Uint64("duration", *duration).Msg("auction initialized")

	// An underfunded rival loses twice: once under the reserve (when one
	// exists), once unfunded at the live price.
	if *reserve > 0 {
		if err := p.Bid(rival, uint256.NewInt(*reserve-1), *bidUnit); err != nil {
			log.Info().Err(err).Str("bidder", rival.Hex()).Msg("bid rejected")
		}
	}
	if err := p.Bid(rival, funding, *bidUnit); err != nil {
		log.Info().Err(err).Str("bidder", rival.Hex()).Msg("bid rejected")
	}

	// The funded buyer wins at the live price.
	livePrice, err := p.CurrentPrice(*bidUnit)
	if err != nil {
		return err
	}
	if err := p.Bid(buyer, funding, *bidUnit); err != nil {
		return fmt.Errorf("winning bid failed: %w", err)
	}
	log.Info().Str("winner", p.Winner().Hex()).
		Str("offered", funding.Dec()).
		Str("charged", livePrice.Dec()).
		Msg("auction settled")

	owner, err := assets.OwnerOf(assetID)
	if err != nil {
		return err
	}
	log.Info().Str("asset", assetID.Dec()).Str("owner", owner.Hex()).
		Msg("asset transferred")
	switch paymentMode {
	case auction.FungibleToken:
		log.Info().Str("seller_balance", tokens.BalanceOf(seller).Dec()).
			Str("buyer_balance", tokens.BalanceOf(buyer).Dec()).
			Msg("token balances after settlement")
	case auction.Native:
		log.Info().Str("seller_balance", bank.BalanceOf(seller).Dec()).
			Str("buyer_balance", bank.BalanceOf(buyer).Dec()).
			Msg("native balances after settlement")
	}

	// The ended auction survives a logic upgrade intact.
	if err := p.UpgradeTo(seller, auction.NewEngine(coordinator)); err != nil {
		return err
	}
	log.Info().Str("version", p.Version()).Bool("ended", p.IsEnded()).
		Msg("logic upgraded")

	if *dbPath != "" {
		fmt.Printf("journal written to %s (stream %s)\n", *dbPath, p.ID())
	}
	return nil
}
