// Package registry provides in-memory reference implementations of the
// external registries a Dutch auction settles against: a fungible payment
// token ledger with allowance and permit semantics, a non-fungible asset
// collection, and a native-currency bank.
//
// These back the settlement coordinator in simulations and tests. State
// mutations follow the check-then-commit discipline the settlement protocol
// relies on: every precondition failure returns before anything changes.
package registry

import (
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var (
	ErrZeroAddress       = errors.New("registry: zero address")
	ErrNilAmount         = errors.New("registry: amount must be set")
	ErrInsufficientFunds = errors.New("registry: transfer exceeds balance")
	ErrExceedsAllowance  = errors.New("registry: transfer exceeds allowance")
	ErrSupplyOverflow    = errors.New("registry: total supply overflows uint256")
)

// Ledger is a fungible token registry: balances, spender allowances, and
// per-owner permit nonces.
type Ledger struct {
	mu sync.RWMutex

	name        string
	totalSupply *uint256.Int
	balances    map[common.Address]*uint256.Int
	allowances  map[common.Address]map[common.Address]*uint256.Int
	nonces      map[common.Address]uint64
}

// NewLedger creates an empty ledger. The name feeds the permit domain
// separator, so two ledgers with different names never share signatures.
func NewLedger(name string) *Ledger {
	return &Ledger{
		name:        name,
		totalSupply: uint256.NewInt(0),
		balances:    make(map[common.Address]*uint256.Int),
		allowances:  make(map[common.Address]map[common.Address]*uint256.Int),
		nonces:      make(map[common.Address]uint64),
	}
}

// Name returns the ledger's permit domain name.
func (l *Ledger) Name() string { return l.name }

// TotalSupply returns the aggregate minted amount.
func (l *Ledger) TotalSupply() *uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.totalSupply.Clone()
}

// BalanceOf returns the spendable balance of owner.
func (l *Ledger) BalanceOf(owner common.Address) *uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balanceLocked(owner).Clone()
}

// Allowance returns the amount spender may move out of owner's balance.
func (l *Ledger) Allowance(owner, spender common.Address) *uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.allowanceLocked(owner, spender).Clone()
}

// Nonce returns the next permit nonce expected for owner.
func (l *Ledger) Nonce(owner common.Address) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.nonces[owner]
}

// Mint credits amount to the faucet recipient.
func (l *Ledger) Mint(to common.Address, amount *uint256.Int) error {
	if to == (common.Address{}) {
		return ErrZeroAddress
	}
	if amount == nil {
		return ErrNilAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	supply, overflow := new(uint256.Int).AddOverflow(l.totalSupply, amount)
	if overflow {
		return ErrSupplyOverflow
	}
	l.totalSupply = supply
	l.credit(to, amount)
	return nil
}

// Approve sets spender's allowance over owner's balance to amount,
// replacing any previous allowance.
func (l *Ledger) Approve(owner, spender common.Address, amount *uint256.Int) error {
	if owner == (common.Address{}) || spender == (common.Address{}) {
		return ErrZeroAddress
	}
	if amount == nil {
		return ErrNilAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.setAllowanceLocked(owner, spender, amount.Clone())
	return nil
}

// Transfer moves amount from from to to.
func (l *Ledger) Transfer(from, to common.Address, amount *uint256.Int) error {
	if from == (common.Address{}) || to == (common.Address{}) {
		return ErrZeroAddress
	}
	if amount == nil {
		return ErrNilAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.moveLocked(from, to, amount)
}

// TransferFrom moves amount from from to to, spending spender's allowance.
// The allowance check precedes the balance check, and both precede any
// mutation, so a rejected call changes nothing.
func (l *Ledger) TransferFrom(spender, from, to common.Address, amount *uint256.Int) error {
	if spender == (common.Address{}) || from == (common.Address{}) || to == (common.Address{}) {
		return ErrZeroAddress
	}
	if amount == nil {
		return ErrNilAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	allowed := l.allowanceLocked(from, spender)
	if allowed.Lt(amount) {
		return ErrExceedsAllowance
	}
	if l.balanceLocked(from).Lt(amount) {
		return ErrInsufficientFunds
	}

	l.setAllowanceLocked(from, spender, new(uint256.Int).Sub(allowed, amount))
	return l.moveLocked(from, to, amount)
}

func (l *Ledger) balanceLocked(owner common.Address) *uint256.Int {
	if b, ok := l.balances[owner]; ok {
		return b
	}
	return uint256.NewInt(0)
}

func (l *Ledger) allowanceLocked(owner, spender common.Address) *uint256.Int {
	if m, ok := l.allowances[owner]; ok {
		if a, ok := m[spender]; ok {
			return a
		}
	}
	return uint256.NewInt(0)
}

func (l *Ledger) setAllowanceLocked(owner, spender common.Address, amount *uint256.Int) {
	m, ok := l.allowances[owner]
	if !ok {
		m = make(map[common.Address]*uint256.Int)
		l.allowances[owner] = m
	}
	m[spender] = amount
}

func (l *Ledger) credit(to common.Address, amount *uint256.Int) {
	l.balances[to] = new(uint256.Int).Add(l.balanceLocked(to), amount)
}

func (l *Ledger) moveLocked(from, to common.Address, amount *uint256.Int) error {
	balance := l.balanceLocked(from)
	if balance.Lt(amount) {
		return ErrInsufficientFunds
	}
	l.balances[from] = new(uint256.Int).Sub(balance, amount)
	l.credit(to, amount)
	return nil
}
