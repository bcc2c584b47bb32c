package auction

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Settler finalizes a winning bid. Implementations must treat the payment
// leg and the asset leg as one unit: either both complete, or the call
// returns an error with every balance untouched. The price argument is the
// amount actually charged; offered is the full amount the buyer put up and
// bounds the funding preconditions.
type Settler interface {
	Settle(inst *Instance, buyer common.Address, offered, price *uint256.Int) error
}

// SettlerFunc adapts a function to the Settler interface.
type SettlerFunc func(inst *Instance, buyer common.Address, offered, price *uint256.Int) error

func (f SettlerFunc) Settle(inst *Instance, buyer common.Address, offered, price *uint256.Int) error {
	return f(inst, buyer, offered, price)
}

// Engine is the executable logic module of the auction state machine.
// It carries no per-auction state of its own, so one engine value can drive
// any number of instances behind a proxy.
type Engine struct {
	settler Settler
}

// NewEngine creates an engine that delegates winning bids to settler.
func NewEngine(settler Settler) *Engine {
	return &Engine{settler: settler}
}

// Version identifies the logic module across upgrades.
func (e *Engine) Version() string { return "1" }

// Bid attempts to win the auction with offered at time unit now.
//
// Preconditions are checked in order, each a distinct failure: the auction
// must not be ended, must not be expired, and the offer must clear both the
// reserve price and the current price. Payment-asset preconditions and the
// transfer legs belong to the settler; only after it returns success does
// the state transition commit. A failed settlement leaves the instance
// byte-for-byte unchanged.
func (e *Engine) Bid(inst *Instance, caller common.Address, offered *uint256.Int, now uint64) error {
	if inst.State.Ended {
		return ErrAlreadyEnded
	}
	if inst.Params.Expired(now) {
		return ErrExpired
	}
	if offered == nil {
		return ErrNilOffer
	}
	if offered.Lt(inst.Params.ReservePrice) {
		return ErrBelowReserve
	}
	price := inst.Params.CurrentPrice(now)
	if offered.Lt(price) {
		return ErrBelowCurrentPrice
	}

	if err := e.settler.Settle(inst, caller, offered, price); err != nil {
		return err
	}

	inst.State.Winner = caller
	inst.State.Ended = true
	return nil
}
