// Package auction implements the single-winner Dutch auction state machine.
//
// An auction instance owns one lifecycle: it opens at a fixed start unit,
// its price falls along a curve.Params schedule, and the first bid that
// clears every precondition wins, settles, and permanently ends the auction.
// There is no second state transition: Ended is monotonic and Winner is set
// exactly when a settlement commits.
//
// The instance is an explicit struct passed by reference into each
// operation; the package holds no ambient state.
package auction

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/dutchfall-xyz/go-dutchfall/curve"
)

// PaymentMode selects how the winning bid is paid.
type PaymentMode uint8

const (
	// Native pays in the ledger's native currency, bundled with the bid.
	Native PaymentMode = iota
	// FungibleToken pays in a fungible token via a pre-granted allowance.
	FungibleToken
)

func (m PaymentMode) String() string {
	switch m {
	case Native:
		return "native"
	case FungibleToken:
		return "token"
	default:
		return "unknown"
	}
}

// AssetRef identifies exactly one non-fungible unit held by the seller and
// pre-approved for transfer by the settlement coordinator. Fixed at creation.
type AssetRef struct {
	Registry common.Address
	TokenID  *uint256.Int
}

// State is the mutable portion of an instance. It transitions at most once.
type State struct {
	Winner common.Address // zero until a bid settles
	Ended  bool           // monotonic: false -> true, never reset
}

// Instance is the full persistent state of one auction.
//
// Field order is part of the storage contract: upgraded logic modules read
// the same layout, so fields are only ever appended, never reordered.
type Instance struct {
	Params *curve.Params
	Seller common.Address
	Mode   PaymentMode
	Token  common.Address // fungible payment token; zero in native mode
	Asset  *AssetRef      // nil when the auction carries no asset leg
	State  State
}

// CurrentPrice returns the minimum acceptable bid at now.
func (in *Instance) CurrentPrice(now uint64) *uint256.Int {
	return in.Params.CurrentPrice(now)
}

// Winner returns the winning bidder, or the zero address while none exists.
func (in *Instance) Winner() common.Address {
	return in.State.Winner
}

// IsEnded reports whether a winning bid has permanently closed the auction.
func (in *Instance) IsEnded() bool {
	return in.State.Ended
}
