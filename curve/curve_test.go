package curve

import (
	"testing"

	"github.com/holiman/uint256"
)

func u(v uint64) *uint256.Int { return uint256.NewInt(v) }

func TestNewParamsValidation(t *testing.T) {
	if _, err := NewParams(nil, u(1), 10, 0); err != ErrNilPrice {
		t.Errorf("expected ErrNilPrice, got %v", err)
	}
	if _, err := NewParams(u(100), u(1), 0, 0); err != ErrZeroDuration {
		t.Errorf("expected ErrZeroDuration, got %v", err)
	}
	if _, err := NewParams(u(100), u(1), 10, ^uint64(0)-5); err != ErrEndOverflow {
		t.Errorf("expected ErrEndOverflow, got %v", err)
	}

	// decrement * duration overflows uint256
	huge := new(uint256.Int).Not(u(0)) // 2^256 - 1
	if _, err := NewParams(u(0), huge, 2, 0); err != ErrPriceOverflow {
		t.Errorf("expected ErrPriceOverflow for decrement overflow, got %v", err)
	}

	// reserve + drop overflows uint256
	if _, err := NewParams(huge, u(1), 1, 0); err != ErrPriceOverflow {
		t.Errorf("expected ErrPriceOverflow for reserve overflow, got %v", err)
	}
}

func TestPriceSchedule(t *testing.T) {
	// reserve 1000, 1000 units open, decrement 1 per unit, starting at unit 50.
	p, err := NewParams(u(1000), u(1), 1000, 50)
	if err != nil {
		t.Fatalf("NewParams: %v", err)
	}

	tests := []struct {
		name string
		now  uint64
		want uint64
	}{
		{"at start", 50, 2000},
		{"one unit in", 51, 1999},
		{"halfway", 550, 1500},
		{"at end of duration", 1050, 1000},
		{"long after expiry", 5050, 1000},
		{"before start clamps to initial", 10, 2000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.CurrentPrice(tt.now)
			if !got.Eq(u(tt.want)) {
				t.Errorf("CurrentPrice(%d) = %s, want %d", tt.now, got.Dec(), tt.want)
			}
		})
	}

	if !p.InitialPrice().Eq(u(2000)) {
		t.Errorf("InitialPrice = %s, want 2000", p.InitialPrice().Dec())
	}
	if p.EndUnit() != 1050 {
		t.Errorf("EndUnit = %d, want 1050", p.EndUnit())
	}
}

func TestPriceMonotonicity(t *testing.T) {
	p, err := NewParams(u(500), u(7), 200, 100)
	if err != nil {
		t.Fatalf("NewParams: %v", err)
	}

	prev := p.CurrentPrice(100)
	for now := uint64(101); now <= 350; now++ {
		cur := p.CurrentPrice(now)
		if cur.Gt(prev) {
			t.Fatalf("price increased at unit %d: %s > %s", now, cur.Dec(), prev.Dec())
		}
		prev = cur
	}
	if !prev.Eq(u(500)) {
		t.Errorf("price after expiry = %s, want reserve 500", prev.Dec())
	}
}

func TestExpired(t *testing.T) {
	p, err := NewParams(u(100), u(1), 10, 20)
	if err != nil {
		t.Fatalf("NewParams: %v", err)
	}

	if p.Expired(30) {
		t.Error("auction should still be open at the final unit")
	}
	if !p.Expired(31) {
		t.Error("auction should be expired one unit past the end")
	}
}

func TestCurrentPriceIsPure(t *testing.T) {
	p, err := NewParams(u(100), u(2), 50, 0)
	if err != nil {
		t.Fatalf("NewParams: %v", err)
	}

	a := p.CurrentPrice(25)
	b := p.CurrentPrice(25)
	if !a.Eq(b) {
		t.Errorf("repeated calls disagree: %s vs %s", a.Dec(), b.Dec())
	}
	// Mutating a returned value must not corrupt the schedule.
	a.Clear()
	if !p.CurrentPrice(25).Eq(b) {
		t.Error("mutating a returned price corrupted the schedule")
	}
}
