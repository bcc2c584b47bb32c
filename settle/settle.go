// Package settle implements the settlement coordinator: the component that
// turns a validated bid into an atomic two-leg exchange of payment and, when
// configured, a non-fungible asset.
//
// The coordinator never compensates or rolls back. It relies on the host's
// all-or-nothing execution by structuring every settlement as a pre-flight
// phase (read-only checks against both registries) followed by a commit
// phase (the transfers themselves). Every condition that could fail a leg is
// verified before the first balance moves, so a rejected settlement leaves
// all registries untouched.
package settle

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/dutchfall-xyz/go-dutchfall/auction"
)

// Settlement precondition and transfer failures.
var (
	// ErrInsufficientAllowance rejects token-mode bids whose allowance to
	// the coordinator does not cover the offered amount.
	ErrInsufficientAllowance = errors.New("settle: insufficient allowance for bid")

	// ErrInsufficientBalance rejects bids whose spendable balance does not
	// cover the offered amount.
	ErrInsufficientBalance = errors.New("settle: insufficient balance for bid")

	// ErrTransferFailed reports a settlement leg rejected by its registry:
	// asset no longer held by the seller, approval revoked out of band, or
	// a transfer refused at commit time.
	ErrTransferFailed = errors.New("settle: settlement transfer failed")

	// ErrNotConfigured reports a coordinator missing the registry a bid's
	// payment mode or asset leg requires.
	ErrNotConfigured = errors.New("settle: coordinator not configured for this auction")
)

// TokenLedger is the fungible payment-token surface the coordinator
// consumes. The spender argument makes the acting identity explicit: the
// coordinator only ever spends allowances granted to itself.
type TokenLedger interface {
	BalanceOf(owner common.Address) *uint256.Int
	Allowance(owner, spender common.Address) *uint256.Int
	TransferFrom(spender, from, to common.Address, amount *uint256.Int) error
}

// AssetRegistry is the non-fungible registry surface the coordinator
// consumes. TransferFrom must reject spenders lacking approval.
type AssetRegistry interface {
	OwnerOf(id *uint256.Int) (common.Address, error)
	GetApproved(id *uint256.Int) (common.Address, error)
	TransferFrom(spender, from, to common.Address, id *uint256.Int) error
}

// NativeLedger moves the host ledger's native currency.
type NativeLedger interface {
	BalanceOf(owner common.Address) *uint256.Int
	Transfer(from, to common.Address, amount *uint256.Int) error
}

// Config wires a coordinator to its registries. Tokens may be nil for
// native-only auctions, Native nil for token-only ones, and Assets nil when
// no asset leg is configured.
type Config struct {
	// Self is the coordinator's own identity: the spender named in
	// allowances and asset approvals.
	Self common.Address

	Tokens TokenLedger
	Native NativeLedger
	Assets AssetRegistry
}

// Coordinator performs atomic settlements on behalf of auction instances.
type Coordinator struct {
	self   common.Address
	tokens TokenLedger
	native NativeLedger
	assets AssetRegistry
}

// New creates a coordinator from cfg.
func New(cfg Config) *Coordinator {
	return &Coordinator{
		self:   cfg.Self,
		tokens: cfg.Tokens,
		native: cfg.Native,
		assets: cfg.Assets,
	}
}

// Self returns the coordinator's spender identity.
func (c *Coordinator) Self() common.Address { return c.self }

// Settle executes both settlement legs for a winning bid.
//
// The buyer is charged price — the live price at settlement time — not the
// full offered amount; the overage never leaves the buyer. The offered
// amount still bounds the funding preconditions, mirroring what the buyer
// put up with the bid.
//
// Check order (each failure distinct, nothing mutated): token allowance,
// payer balance, asset ownership, asset approval. Only then do the payment
// leg and the asset leg commit.
func (c *Coordinator) Settle(inst *auction.Instance, buyer common.Address, offered, price *uint256.Int) error {
	// Pre-flight: payment leg.
	switch inst.Mode {
	case auction.FungibleToken:
		if c.tokens == nil {
			return ErrNotConfigured
		}
		if c.tokens.Allowance(buyer, c.self).Lt(offered) {
			return ErrInsufficientAllowance
		}
		if c.tokens.BalanceOf(buyer).Lt(offered) {
			return ErrInsufficientBalance
		}
	case auction.Native:
		if c.native == nil {
			return ErrNotConfigured
		}
		if c.native.BalanceOf(buyer).Lt(offered) {
			return ErrInsufficientBalance
		}
	default:
		return ErrNotConfigured
	}

	// Pre-flight: asset leg.
	if inst.Asset != nil {
		if c.assets == nil {
			return ErrNotConfigured
		}
		owner, err := c.assets.OwnerOf(inst.Asset.TokenID)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrTransferFailed, err)
		}
		if owner != inst.Seller {
			return fmt.Errorf("%w: asset no longer held by seller", ErrTransferFailed)
		}
		approved, err := c.assets.GetApproved(inst.Asset.TokenID)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrTransferFailed, err)
		}
		if approved != c.self {
			return fmt.Errorf("%w: transfer approval missing or revoked", ErrTransferFailed)
		}
	}

	// Commit: payment leg.
	switch inst.Mode {
	case auction.FungibleToken:
		if err := c.tokens.TransferFrom(c.self, buyer, inst.Seller, price); err != nil {
			return fmt.Errorf("%w: payment leg: %v", ErrTransferFailed, err)
		}
	case auction.Native:
		if err := c.native.Transfer(buyer, inst.Seller, price); err != nil {
			return fmt.Errorf("%w: payment leg: %v", ErrTransferFailed, err)
		}
	}

	// Commit: asset leg.
	if inst.Asset != nil {
		if err := c.assets.TransferFrom(c.self, inst.Seller, buyer, inst.Asset.TokenID); err != nil {
			return fmt.Errorf("%w: asset leg: %v", ErrTransferFailed, err)
		}
	}

	return nil
}
