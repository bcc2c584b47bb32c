// Package curve implements the descending price schedule of a Dutch auction.
//
// A schedule is fixed by four parameters: the reserve price (the floor the
// price never falls below), the number of time units the auction stays open,
// the per-unit price decrement, and the unit at which the auction started.
// The opening price is derived rather than stored:
//
//	initialPrice = reservePrice + priceDecrement * durationUnits
//
// so the price reaches exactly the reserve when the duration elapses.
// Prices are uint256 values in the payment asset's smallest unit; time is an
// abstract monotonic unit index (block heights in on-chain deployments).
package curve

import (
	"errors"

	"github.com/holiman/uint256"
)

var (
	ErrZeroDuration  = errors.New("curve: duration must be at least one unit")
	ErrNilPrice      = errors.New("curve: reserve price and decrement must be set")
	ErrPriceOverflow = errors.New("curve: initial price overflows uint256")
	ErrEndOverflow   = errors.New("curve: auction end unit overflows uint64")
)

// Params fixes the shape of a price schedule. Immutable after creation.
type Params struct {
	ReservePrice   *uint256.Int
	DurationUnits  uint64
	PriceDecrement *uint256.Int
	StartUnit      uint64

	// initial caches ReservePrice + PriceDecrement*DurationUnits,
	// validated against overflow by NewParams.
	initial *uint256.Int
}

// NewParams validates and freezes a price schedule.
// The reserve price may be zero; the decrement may be zero (a flat schedule).
func NewParams(reserve, decrement *uint256.Int, duration, start uint64) (*Params, error) {
	if reserve == nil || decrement == nil {
		return nil, ErrNilPrice
	}
	if duration == 0 {
		return nil, ErrZeroDuration
	}
	if start > ^uint64(0)-duration {
		return nil, ErrEndOverflow
	}

	drop, overflow := new(uint256.Int).MulOverflow(decrement, uint256.NewInt(duration))
	if overflow {
		return nil, ErrPriceOverflow
	}
	initial, overflow := new(uint256.Int).AddOverflow(reserve, drop)
	if overflow {
		return nil, ErrPriceOverflow
	}

	return &Params{
		ReservePrice:   reserve.Clone(),
		DurationUnits:  duration,
		PriceDecrement: decrement.Clone(),
		StartUnit:      start,
		initial:        initial,
	}, nil
}

// InitialPrice returns the opening price of the schedule.
func (p *Params) InitialPrice() *uint256.Int {
	return p.initial.Clone()
}

// EndUnit returns the last unit at which a bid is still acceptable.
func (p *Params) EndUnit() uint64 {
	return p.StartUnit + p.DurationUnits
}

// Expired reports whether the schedule has run past its duration at now.
// A bid placed exactly at EndUnit is still valid (at the reserve price).
func (p *Params) Expired(now uint64) bool {
	return now > p.EndUnit()
}

// Elapsed returns the number of units elapsed at now, clamped to
// [0, DurationUnits]. Values of now before StartUnit count as zero.
func (p *Params) Elapsed(now uint64) uint64 {
	if now <= p.StartUnit {
		return 0
	}
	elapsed := now - p.StartUnit
	if elapsed > p.DurationUnits {
		return p.DurationUnits
	}
	return elapsed
}

// CurrentPrice returns the minimum acceptable bid at now.
//
// The result is monotonically non-increasing in now, equals InitialPrice at
// zero elapsed units, and clamps to ReservePrice once the duration elapses.
// Pure: repeated calls with the same now return equal values.
func (p *Params) CurrentPrice(now uint64) *uint256.Int {
	elapsed := p.Elapsed(now)
	drop := new(uint256.Int).Mul(p.PriceDecrement, uint256.NewInt(elapsed))
	return new(uint256.Int).Sub(p.initial, drop)
}
