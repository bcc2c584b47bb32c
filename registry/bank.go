package registry

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Bank tracks native-currency balances. It stands in for the host ledger's
// value transfer: a native-mode bid bundles its payment, which the
// settlement coordinator moves through the bank.
type Bank struct {
	mu       sync.RWMutex
	balances map[common.Address]*uint256.Int
}

// NewBank creates an empty bank.
func NewBank() *Bank {
	return &Bank{balances: make(map[common.Address]*uint256.Int)}
}

// BalanceOf returns the native balance of owner.
func (b *Bank) BalanceOf(owner common.Address) *uint256.Int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if bal, ok := b.balances[owner]; ok {
		return bal.Clone()
	}
	return uint256.NewInt(0)
}

// Deposit credits amount to owner, creating value out of band. Simulation
// and test setup only.
func (b *Bank) Deposit(owner common.Address, amount *uint256.Int) error {
	if owner == (common.Address{}) {
		return ErrZeroAddress
	}
	if amount == nil {
		return ErrNilAmount
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances[owner] = new(uint256.Int).Add(b.balance(owner), amount)
	return nil
}

// Transfer moves amount from from to to, failing without mutation when the
// source balance is short.
func (b *Bank) Transfer(from, to common.Address, amount *uint256.Int) error {
	if from == (common.Address{}) || to == (common.Address{}) {
		return ErrZeroAddress
	}
	if amount == nil {
		return ErrNilAmount
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	balance := b.balance(from)
	if balance.Lt(amount) {
		return ErrInsufficientFunds
	}
	b.balances[from] = new(uint256.Int).Sub(balance, amount)
	b.balances[to] = new(uint256.Int).Add(b.balance(to), amount)
	return nil
}

func (b *Bank) balance(owner common.Address) *uint256.Int {
	if bal, ok := b.balances[owner]; ok {
		return bal
	}
	return uint256.NewInt(0)
}
