// Package proxy provides the upgradeable shell around an auction instance.
//
// The proxy owns the persistent storage root and an indirection to a
// swappable Logic module. Swapping logic preserves storage: the Storage
// struct's field layout is frozen, so a v2 module reads exactly the bytes a
// v1 module wrote. Initialization happens exactly once per proxy (ledger-
// hosted code deployed behind a proxy has no constructor), and upgrades are
// restricted to the identity that initialized the proxy.
package proxy

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/holiman/uint256"

	"github.com/dutchfall-xyz/go-dutchfall/auction"
	"github.com/dutchfall-xyz/go-dutchfall/curve"
)

var (
	// ErrAlreadyInitialized rejects a second initialize call. The first
	// call's parameters stay untouched.
	ErrAlreadyInitialized = errors.New("proxy: already initialized")

	// ErrNotInitialized rejects operations on an uninitialized proxy.
	ErrNotInitialized = errors.New("proxy: not initialized")

	// ErrUnauthorized rejects upgrade attempts by anyone but the owner.
	ErrUnauthorized = errors.New("proxy: caller is not the owner")

	// ErrNilLogic rejects a nil logic module.
	ErrNilLogic = errors.New("proxy: logic module must be set")
)

// Logic is the executable module behind the proxy. Implementations must
// treat the instance as their only persistent state so an upgraded module
// can resume from storage written by its predecessor.
type Logic interface {
	Bid(inst *auction.Instance, caller common.Address, offered *uint256.Int, now uint64) error
	Version() string
}

// Recorder receives accepted lifecycle transitions. Recording is
// observational and must not influence the operation that triggered it.
type Recorder interface {
	Record(streamID, eventType string, payload any)
}

// InitParams carries everything initialize sets.
type InitParams struct {
	ReservePrice   *uint256.Int
	DurationUnits  uint64
	PriceDecrement *uint256.Int
	StartUnit      uint64
	Mode           auction.PaymentMode
	Token          common.Address    // payment token, zero in native mode
	Asset          *auction.AssetRef // nil for assetless auctions
}

// Storage is the persistent root behind the proxy.
//
// Field order is the storage contract: fields are only ever appended across
// versions, never reordered or resized, so every Logic version reads the
// same layout.
type Storage struct {
	Instance    auction.Instance
	Owner       common.Address
	Initialized bool
}

// Proxy pairs a storage root with the current logic module.
type Proxy struct {
	id       string
	storage  Storage
	impl     Logic
	recorder Recorder
}

// New creates an uninitialized proxy backed by impl.
func New(impl Logic) (*Proxy, error) {
	if impl == nil {
		return nil, ErrNilLogic
	}
	return &Proxy{id: uuid.NewString(), impl: impl}, nil
}

// SetRecorder attaches a lifecycle recorder. A nil recorder disables
// recording.
func (p *Proxy) SetRecorder(r Recorder) { p.recorder = r }

// ID identifies this proxy's journal stream.
func (p *Proxy) ID() string { return p.id }

// Initialize sets the auction parameters and claims ownership for caller.
// It succeeds exactly once per proxy; every later call fails with
// ErrAlreadyInitialized and changes nothing. The caller becomes both the
// proxy owner and the auction's seller.
func (p *Proxy) Initialize(caller common.Address, params InitParams) error {
	if p.storage.Initialized {
		return ErrAlreadyInitialized
	}
	if caller == (common.Address{}) {
		return ErrUnauthorized
	}

	schedule, err := curve.NewParams(
		params.ReservePrice, params.PriceDecrement,
		params.DurationUnits, params.StartUnit,
	)
	if err != nil {
		return err
	}

	p.storage.Instance = auction.Instance{
		Params: schedule,
		Seller: caller,
		Mode:   params.Mode,
		Token:  params.Token,
		Asset:  params.Asset,
	}
	p.storage.Owner = caller
	p.storage.Initialized = true

	p.record("initialized", initializedPayload{
		Owner:          caller.Hex(),
		ReservePrice:   schedule.ReservePrice.Dec(),
		DurationUnits:  schedule.DurationUnits,
		PriceDecrement: schedule.PriceDecrement.Dec(),
		StartUnit:      schedule.StartUnit,
		Mode:           params.Mode.String(),
		LogicVersion:   p.impl.Version(),
	})
	return nil
}

// UpgradeTo swaps the logic module. Only the owner may upgrade; storage is
// untouched, so the new module resumes the same auction.
func (p *Proxy) UpgradeTo(caller common.Address, impl Logic) error {
	if !p.storage.Initialized {
		return ErrNotInitialized
	}
	if caller != p.storage.Owner {
		return ErrUnauthorized
	}
	if impl == nil {
		return ErrNilLogic
	}

	previous := p.impl.Version()
	p.impl = impl

	p.record("upgraded", upgradedPayload{
		FromVersion: previous,
		ToVersion:   impl.Version(),
	})
	return nil
}

// Bid forwards a bid to the current logic module against this proxy's
// storage. A successful bid is journaled as a settlement.
func (p *Proxy) Bid(caller common.Address, offered *uint256.Int, now uint64) error {
	if !p.storage.Initialized {
		return ErrNotInitialized
	}

	if err := p.impl.Bid(&p.storage.Instance, caller, offered, now); err != nil {
		return err
	}

	p.record("settled", settledPayload{
		Winner:  caller.Hex(),
		Offered: offered.Dec(),
		Price:   p.storage.Instance.CurrentPrice(now).Dec(),
		Unit:    now,
	})
	return nil
}

// Owner returns the identity allowed to authorize upgrades.
func (p *Proxy) Owner() common.Address { return p.storage.Owner }

// Version returns the current logic module's version.
func (p *Proxy) Version() string { return p.impl.Version() }

// Initialized reports whether initialize has run.
func (p *Proxy) Initialized() bool { return p.storage.Initialized }

// CurrentPrice returns the live price at now.
func (p *Proxy) CurrentPrice(now uint64) (*uint256.Int, error) {
	if !p.storage.Initialized {
		return nil, ErrNotInitialized
	}
	return p.storage.Instance.CurrentPrice(now), nil
}

// Winner returns the winning bidder, zero while none exists.
func (p *Proxy) Winner() common.Address { return p.storage.Instance.Winner() }

// IsEnded reports whether a winning bid closed the auction.
func (p *Proxy) IsEnded() bool { return p.storage.Instance.IsEnded() }

// Seller returns the auction's seller identity.
func (p *Proxy) Seller() common.Address { return p.storage.Instance.Seller }

// Mode returns the configured payment mode.
func (p *Proxy) Mode() auction.PaymentMode { return p.storage.Instance.Mode }

// Asset returns the configured asset reference, nil when absent.
func (p *Proxy) Asset() *auction.AssetRef { return p.storage.Instance.Asset }

// ReservePrice returns the auction's price floor.
func (p *Proxy) ReservePrice() (*uint256.Int, error) {
	if !p.storage.Initialized {
		return nil, ErrNotInitialized
	}
	return p.storage.Instance.Params.ReservePrice.Clone(), nil
}

// DurationUnits returns how many units the auction stays open.
func (p *Proxy) DurationUnits() (uint64, error) {
	if !p.storage.Initialized {
		return 0, ErrNotInitialized
	}
	return p.storage.Instance.Params.DurationUnits, nil
}

// PriceDecrement returns the per-unit price drop.
func (p *Proxy) PriceDecrement() (*uint256.Int, error) {
	if !p.storage.Initialized {
		return nil, ErrNotInitialized
	}
	return p.storage.Instance.Params.PriceDecrement.Clone(), nil
}

// StartUnit returns the unit at which the auction opened.
func (p *Proxy) StartUnit() (uint64, error) {
	if !p.storage.Initialized {
		return 0, ErrNotInitialized
	}
	return p.storage.Instance.Params.StartUnit, nil
}

func (p *Proxy) record(eventType string, payload any) {
	if p.recorder != nil {
		p.recorder.Record(p.id, eventType, payload)
	}
}

type initializedPayload struct {
	Owner          string `cbor:"owner"`
	ReservePrice   string `cbor:"reserve_price"`
	DurationUnits  uint64 `cbor:"duration_units"`
	PriceDecrement string `cbor:"price_decrement"`
	StartUnit      uint64 `cbor:"start_unit"`
	Mode           string `cbor:"mode"`
	LogicVersion   string `cbor:"logic_version"`
}

type settledPayload struct {
	Winner  string `cbor:"winner"`
	Offered string `cbor:"offered"`
	Price   string `cbor:"price"`
	Unit    uint64 `cbor:"unit"`
}

type upgradedPayload struct {
	FromVersion string `cbor:"from_version"`
	ToVersion   string `cbor:"to_version"`
}
