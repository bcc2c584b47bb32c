package registry

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

var (
	ErrPermitExpired = errors.New("registry: permit deadline passed")
	ErrBadNonce      = errors.New("registry: permit nonce mismatch")
	ErrBadSignature  = errors.New("registry: permit signature invalid")
)

// permitTypeHash commits to the field layout of a permit message.
var permitTypeHash = crypto.Keccak256(
	[]byte("Permit(address owner,address spender,uint256 value,uint256 nonce,uint256 deadline)"),
)

// PermitMessage is a signed authorization to set an allowance without a
// separate approval transaction. The deadline is a time-unit index; the
// nonce must match the owner's next expected nonce.
type PermitMessage struct {
	Owner    common.Address
	Spender  common.Address
	Value    *uint256.Int
	Nonce    uint64
	Deadline uint64
}

// DomainSeparator binds permit signatures to this ledger instance.
func (l *Ledger) DomainSeparator() common.Hash {
	return common.BytesToHash(crypto.Keccak256(
		crypto.Keccak256([]byte("DutchfallLedger")),
		crypto.Keccak256([]byte(l.name)),
	))
}

// PermitDigest computes the signing digest for msg against this ledger's
// domain. Pure: it reads no mutable ledger state.
func (l *Ledger) PermitDigest(msg PermitMessage) common.Hash {
	structHash := crypto.Keccak256(
		permitTypeHash,
		common.LeftPadBytes(msg.Owner.Bytes(), 32),
		common.LeftPadBytes(msg.Spender.Bytes(), 32),
		valueBytes(msg.Value),
		uint256.NewInt(msg.Nonce).PaddedBytes(32),
		uint256.NewInt(msg.Deadline).PaddedBytes(32),
	)
	domain := l.DomainSeparator()
	return common.BytesToHash(crypto.Keccak256(
		[]byte{0x19, 0x01},
		domain.Bytes(),
		structHash,
	))
}

// RecoverSigner returns the address that produced sig over digest.
//
// This is the pure half of the permit flow: signature in, authorizing
// identity out, no ledger state touched. Recovery identifiers of 27/28
// (transaction style) and 0/1 (raw secp256k1) are both accepted.
func RecoverSigner(digest common.Hash, sig []byte) (common.Address, error) {
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("%w: signature must be %d bytes, got %d",
			ErrBadSignature, crypto.SignatureLength, len(sig))
	}

	normalized := make([]byte, crypto.SignatureLength)
	copy(normalized, sig)
	if normalized[crypto.RecoveryIDOffset] >= 27 {
		normalized[crypto.RecoveryIDOffset] -= 27
	}
	if v := normalized[crypto.RecoveryIDOffset]; v != 0 && v != 1 {
		return common.Address{}, fmt.Errorf("%w: invalid recovery id %d", ErrBadSignature, v)
	}

	pub, err := crypto.SigToPub(digest.Bytes(), normalized)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// Permit sets the allowance authorized by a signed message, collapsing the
// approve-then-bid flow into a single call.
//
// The deadline, nonce, and signer checks all run before the allowance
// mutates; a rejected permit changes nothing. On success the owner's nonce
// increments, so a permit can never be replayed.
func (l *Ledger) Permit(msg PermitMessage, sig []byte, now uint64) error {
	if msg.Owner == (common.Address{}) || msg.Spender == (common.Address{}) {
		return ErrZeroAddress
	}
	if msg.Value == nil {
		return ErrNilAmount
	}
	if now > msg.Deadline {
		return ErrPermitExpired
	}

	signer, err := RecoverSigner(l.PermitDigest(msg), sig)
	if err != nil {
		return err
	}
	if signer != msg.Owner {
		return fmt.Errorf("%w: recovered %s, want %s", ErrBadSignature, signer, msg.Owner)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if msg.Nonce != l.nonces[msg.Owner] {
		return ErrBadNonce
	}
	l.nonces[msg.Owner]++
	l.setAllowanceLocked(msg.Owner, msg.Spender, msg.Value.Clone())
	return nil
}

func valueBytes(v *uint256.Int) []byte {
	if v == nil {
		v = uint256.NewInt(0)
	}
	return v.PaddedBytes(32)
}
