// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package quorum

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/luxfi/crypto/bls"
	"github.com/luxfi/crypto/bls/signer/localsigner"
	"github.com/luxfi/ids"
)

// Epoch identifies one committee configuration. Epochs increase
// monotonically; certificates are only valid within the epoch they were
// produced for.
type Epoch uint64

const (
	secretKeyLen = 32
	addressLen   = 20

	// seedAttempts bounds rejection sampling during seeded key
	// generation. Each draw fails with probability well under 1/2, so
	// exhausting this bound means the randomness source is broken.
	seedAttempts = 128
)

// AuthorityID names a validator on the wire: its compressed BLS public
// key bytes. It is stable for as long as the validator keeps its key,
// and in particular within an epoch.
type AuthorityID [bls.PublicKeyLen]byte

// AuthorityIDFromPublicKey returns the wire name for a public key.
func AuthorityIDFromPublicKey(pk *bls.PublicKey) AuthorityID {
	var id AuthorityID
	copy(id[:], bls.PublicKeyToCompressedBytes(pk))
	return id
}

// PublicKey parses the compressed key bytes this identity consists of.
func (id AuthorityID) PublicKey() (*bls.PublicKey, error) {
	pk, err := bls.PublicKeyFromCompressedBytes(id[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	return pk, nil
}

// Address returns the short account address derived from this identity.
func (id AuthorityID) Address() ids.ShortID {
	return addressFromPublicKeyBytes(id[:])
}

func (id AuthorityID) String() string {
	return hex.EncodeToString(id[:])
}

// Compare orders identities lexicographically by their key bytes.
func (id AuthorityID) Compare(other AuthorityID) int {
	for i := range id {
		switch {
		case id[i] < other[i]:
			return -1
		case id[i] > other[i]:
			return 1
		}
	}
	return 0
}

// addressFromPublicKeyBytes derives the 20-byte account address from
// compressed public key bytes: the truncated SHA-256 of the key.
func addressFromPublicKeyBytes(pkBytes []byte) ids.ShortID {
	digest := ComputeHash256(pkBytes)
	addr, _ := ids.ToShortID(digest[:addressLen])
	return addr
}

// AddressFromPublicKey derives the account address for a public key.
func AddressFromPublicKey(pk *bls.PublicKey) ids.ShortID {
	return addressFromPublicKeyBytes(bls.PublicKeyToCompressedBytes(pk))
}

// NewSigner generates a fresh key pair from the operating system's
// CSPRNG and returns it with its derived identity.
func NewSigner() (bls.Signer, AuthorityID, error) {
	sk, err := localsigner.New()
	if err != nil {
		return nil, AuthorityID{}, fmt.Errorf("%w: %w", ErrInvalidKeypair, err)
	}
	return sk, AuthorityIDFromPublicKey(sk.PublicKey()), nil
}

// NewSignerFromSeed generates a key pair from an explicit randomness
// source. A deterministic reader yields a deterministic key, which keeps
// generation testable with fixed seeds. Candidate scalars outside the
// key space are rejected and redrawn.
func NewSignerFromSeed(rand io.Reader) (bls.Signer, AuthorityID, error) {
	seed := make([]byte, secretKeyLen)
	for range seedAttempts {
		if _, err := io.ReadFull(rand, seed); err != nil {
			return nil, AuthorityID{}, fmt.Errorf("%w: %w", ErrInvalidKeypair, err)
		}
		sk, err := localsigner.FromBytes(seed)
		if err != nil {
			continue
		}
		return sk, AuthorityIDFromPublicKey(sk.PublicKey()), nil
	}
	return nil, AuthorityID{}, fmt.Errorf("%w: no valid secret key after %d draws", ErrInvalidKeypair, seedAttempts)
}

// SignerFromBytes reconstructs a key pair from serialized secret key
// bytes.
func SignerFromBytes(b []byte) (bls.Signer, AuthorityID, error) {
	sk, err := localsigner.FromBytes(b)
	if err != nil {
		return nil, AuthorityID{}, fmt.Errorf("%w: %w", ErrInvalidKeypair, err)
	}
	return sk, AuthorityIDFromPublicKey(sk.PublicKey()), nil
}
