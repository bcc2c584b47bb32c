package auction

import "errors"

// Bid precondition failures. Each rejected bid surfaces exactly one of
// these; none of them mutates instance state.
var (
	// ErrAlreadyEnded rejects bids after a winner has been recorded.
	ErrAlreadyEnded = errors.New("auction: auction has ended")

	// ErrExpired rejects bids after the duration elapsed with no winner.
	// The instance stays open and queryable; nothing flips Ended.
	ErrExpired = errors.New("auction: auction expired")

	// ErrBelowReserve rejects offers under the reserve price.
	ErrBelowReserve = errors.New("auction: bid below reserve price")

	// ErrBelowCurrentPrice rejects offers under the live computed price.
	ErrBelowCurrentPrice = errors.New("auction: bid below current price")

	// ErrNilOffer rejects bids with no offered amount.
	ErrNilOffer = errors.New("auction: offered amount must be set")
)
