package registry

import (
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var (
	ErrUnknownToken = errors.New("registry: unknown token id")
	ErrNotOwner     = errors.New("registry: transfer from non-owner")
	ErrNotApproved  = errors.New("registry: spender lacks approval")
)

// Collection is a non-fungible asset registry. Each minted item has exactly
// one owner and at most one approved transfer spender; transferring an item
// clears its approval.
type Collection struct {
	mu sync.RWMutex

	name     string
	nextID   uint64
	owners   map[[32]byte]common.Address
	approved map[[32]byte]common.Address
	balances map[common.Address]uint64
}

// NewCollection creates an empty collection.
func NewCollection(name string) *Collection {
	return &Collection{
		name:     name,
		nextID:   1,
		owners:   make(map[[32]byte]common.Address),
		approved: make(map[[32]byte]common.Address),
		balances: make(map[common.Address]uint64),
	}
}

// Name returns the collection name.
func (c *Collection) Name() string { return c.name }

// TotalSupply returns the number of minted items.
func (c *Collection) TotalSupply() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return uint64(len(c.owners))
}

// BalanceOf returns the number of items owned by owner.
func (c *Collection) BalanceOf(owner common.Address) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.balances[owner]
}

// Mint creates a new item owned by to and returns its id. Ids are assigned
// sequentially starting from 1.
func (c *Collection) Mint(to common.Address) (*uint256.Int, error) {
	if to == (common.Address{}) {
		return nil, ErrZeroAddress
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	id := uint256.NewInt(c.nextID)
	c.nextID++
	c.owners[id.Bytes32()] = to
	c.balances[to]++
	return id, nil
}

// OwnerOf returns the current owner of id.
func (c *Collection) OwnerOf(id *uint256.Int) (common.Address, error) {
	if id == nil {
		return common.Address{}, ErrUnknownToken
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	owner, ok := c.owners[id.Bytes32()]
	if !ok {
		return common.Address{}, ErrUnknownToken
	}
	return owner, nil
}

// GetApproved returns the address approved to transfer id, or the zero
// address when no approval stands.
func (c *Collection) GetApproved(id *uint256.Int) (common.Address, error) {
	if id == nil {
		return common.Address{}, ErrUnknownToken
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, ok := c.owners[id.Bytes32()]; !ok {
		return common.Address{}, ErrUnknownToken
	}
	return c.approved[id.Bytes32()], nil
}

// Approve grants spender the right to transfer id out of owner's holding.
// Only the current owner may approve; a later approval replaces the earlier.
func (c *Collection) Approve(owner, spender common.Address, id *uint256.Int) error {
	if id == nil {
		return ErrUnknownToken
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	key := id.Bytes32()
	current, ok := c.owners[key]
	if !ok {
		return ErrUnknownToken
	}
	if current != owner {
		return ErrNotOwner
	}
	c.approved[key] = spender
	return nil
}

// Revoke clears any standing approval on id. Only the owner may revoke.
func (c *Collection) Revoke(owner common.Address, id *uint256.Int) error {
	return c.Approve(owner, common.Address{}, id)
}

// TransferFrom moves id from from to to on behalf of spender. The spender
// must be the owner or hold the item's approval; the approval is consumed
// by the transfer.
func (c *Collection) TransferFrom(spender, from, to common.Address, id *uint256.Int) error {
	if to == (common.Address{}) {
		return ErrZeroAddress
	}
	if id == nil {
		return ErrUnknownToken
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	key := id.Bytes32()
	owner, ok := c.owners[key]
	if !ok {
		return ErrUnknownToken
	}
	if owner != from {
		return ErrNotOwner
	}
	if spender != owner && c.approved[key] != spender {
		return ErrNotApproved
	}

	delete(c.approved, key)
	c.owners[key] = to
	c.balances[from]--
	c.balances[to]++
	return nil
}
