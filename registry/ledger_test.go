package registry

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var (
	alice   = common.HexToAddress("0x0a")
	bob     = common.HexToAddress("0x0b")
	spender = common.HexToAddress("0x0c")
)

func u(v uint64) *uint256.Int { return uint256.NewInt(v) }

func TestMintAndTransfer(t *testing.T) {
	l := NewLedger("Test USD")

	if err := l.Mint(alice, u(1000)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if !l.TotalSupply().Eq(u(1000)) {
		t.Errorf("supply = %s, want 1000", l.TotalSupply().Dec())
	}

	if err := l.Transfer(alice, bob, u(400)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if !l.BalanceOf(alice).Eq(u(600)) || !l.BalanceOf(bob).Eq(u(400)) {
		t.Errorf("balances = %s/%s, want 600/400",
			l.BalanceOf(alice).Dec(), l.BalanceOf(bob).Dec())
	}

	if err := l.Transfer(alice, bob, u(601)); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("expected ErrInsufficientFunds, got %v", err)
	}
	if !l.BalanceOf(alice).Eq(u(600)) {
		t.Error("rejected transfer mutated balance")
	}
}

func TestMintValidation(t *testing.T) {
	l := NewLedger("Test USD")

	if err := l.Mint(common.Address{}, u(1)); !errors.Is(err, ErrZeroAddress) {
		t.Errorf("expected ErrZeroAddress, got %v", err)
	}
	if err := l.Mint(alice, nil); !errors.Is(err, ErrNilAmount) {
		t.Errorf("expected ErrNilAmount, got %v", err)
	}

	max := new(uint256.Int).Not(u(0))
	if err := l.Mint(alice, max); err != nil {
		t.Fatalf("mint max: %v", err)
	}
	if err := l.Mint(bob, u(1)); !errors.Is(err, ErrSupplyOverflow) {
		t.Errorf("expected ErrSupplyOverflow, got %v", err)
	}
}

func TestTransferFromSpendsAllowance(t *testing.T) {
	l := NewLedger("Test USD")
	if err := l.Mint(alice, u(1000)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := l.Approve(alice, spender, u(700)); err != nil {
		t.Fatalf("approve: %v", err)
	}

	if err := l.TransferFrom(spender, alice, bob, u(300)); err != nil {
		t.Fatalf("transferFrom: %v", err)
	}
	if !l.Allowance(alice, spender).Eq(u(400)) {
		t.Errorf("allowance = %s, want 400", l.Allowance(alice, spender).Dec())
	}
	if !l.BalanceOf(bob).Eq(u(300)) {
		t.Errorf("bob = %s, want 300", l.BalanceOf(bob).Dec())
	}

	// Remaining allowance 400 cannot move 500.
	if err := l.TransferFrom(spender, alice, bob, u(500)); !errors.Is(err, ErrExceedsAllowance) {
		t.Errorf("expected ErrExceedsAllowance, got %v", err)
	}

	// Allowance exceeding balance still fails on funds, untouched.
	if err := l.Approve(alice, spender, u(5000)); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := l.TransferFrom(spender, alice, bob, u(800)); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("expected ErrInsufficientFunds, got %v", err)
	}
	if !l.Allowance(alice, spender).Eq(u(5000)) {
		t.Error("failed transferFrom burned allowance")
	}
}

func TestTransferFromWithoutApproval(t *testing.T) {
	l := NewLedger("Test USD")
	if err := l.Mint(alice, u(1000)); err != nil {
		t.Fatalf("mint: %v", err)
	}

	if err := l.TransferFrom(spender, alice, bob, u(1)); !errors.Is(err, ErrExceedsAllowance) {
		t.Errorf("expected ErrExceedsAllowance, got %v", err)
	}
}

func TestBalanceQueriesReturnCopies(t *testing.T) {
	l := NewLedger("Test USD")
	if err := l.Mint(alice, u(100)); err != nil {
		t.Fatalf("mint: %v", err)
	}

	l.BalanceOf(alice).Clear()
	if !l.BalanceOf(alice).Eq(u(100)) {
		t.Error("mutating a query result corrupted the ledger")
	}
}
