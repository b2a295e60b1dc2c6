// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package quorum

import (
	"fmt"
	"runtime"

	"github.com/luxfi/crypto/bls"
	"golang.org/x/sync/errgroup"
)

// KeyCache memoizes parsed public keys by authority identity. Parsing
// cost is paid at most once per distinct authority for the lifetime of
// the cache, no matter how many certificates reference it. The cache
// holds no security-relevant state and may be carried from one
// obligation to the next.
type KeyCache map[AuthorityID]*bls.PublicKey

// VerificationObligation accumulates (message, partial aggregate
// signature, contributing public keys) entries, possibly from unrelated
// certificates, and discharges them with one batched cryptographic
// check. It is owned by the single caller assembling it and must not be
// mutated concurrently. VerifyAll consumes it; an obligation is
// discharged at most once.
type VerificationObligation struct {
	lookup KeyCache

	// The three slices below are parallel: index i in each refers to the
	// same logical message.
	messages   [][]byte
	signatures []*bls.Signature
	publicKeys [][]*bls.PublicKey

	consumed bool
}

// NewVerificationObligation returns an empty obligation seeded with
// lookup, which may be nil or the cache returned by a previous
// obligation's VerifyAll.
func NewVerificationObligation(lookup KeyCache) *VerificationObligation {
	if lookup == nil {
		lookup = make(KeyCache)
	}
	return &VerificationObligation{lookup: lookup}
}

// AddMessage appends a new entry with an empty aggregate and key list,
// returning its index. Certificates and attestations over exactly this
// message are folded in under the returned index.
func (ob *VerificationObligation) AddMessage(msg []byte) int {
	ob.messages = append(ob.messages, msg)
	ob.signatures = append(ob.signatures, nil)
	ob.publicKeys = append(ob.publicKeys, nil)
	return len(ob.messages) - 1
}

// LookupPublicKey returns the parsed public key for an authority
// identity, parsing and memoizing it on first sight. Malformed identity
// bytes fail with ErrInvalidAddress.
func (ob *VerificationObligation) LookupPublicKey(author AuthorityID) (*bls.PublicKey, error) {
	if pk, ok := ob.lookup[author]; ok {
		return pk, nil
	}
	pk, err := author.PublicKey()
	if err != nil {
		return nil, err
	}
	ob.lookup[author] = pk
	return pk, nil
}

func (ob *VerificationObligation) checkIndex(msgIndex int) error {
	if msgIndex < 0 || msgIndex >= len(ob.messages) {
		return fmt.Errorf("message index %d out of range [0, %d)", msgIndex, len(ob.messages))
	}
	return nil
}

// pushPublicKey appends a contributing key to the entry at msgIndex.
func (ob *VerificationObligation) pushPublicKey(msgIndex int, pk *bls.PublicKey) error {
	if err := ob.checkIndex(msgIndex); err != nil {
		return err
	}
	ob.publicKeys[msgIndex] = append(ob.publicKeys[msgIndex], pk)
	return nil
}

// addSignature folds a single signature into the partial aggregate at
// msgIndex.
func (ob *VerificationObligation) addSignature(msgIndex int, sig *bls.Signature) error {
	return ob.addAggregate(msgIndex, sig)
}

// addAggregate folds an aggregate signature into the partial aggregate
// at msgIndex. Aggregating an aggregate and a single signature is the
// same group operation.
func (ob *VerificationObligation) addAggregate(msgIndex int, sig *bls.Signature) error {
	if err := ob.checkIndex(msgIndex); err != nil {
		return err
	}
	if sig == nil {
		return fmt.Errorf("%w: nil signature", ErrInvalidSignature)
	}
	if ob.signatures[msgIndex] == nil {
		ob.signatures[msgIndex] = sig
		return nil
	}
	agg, err := bls.AggregateSignatures([]*bls.Signature{ob.signatures[msgIndex], sig})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	ob.signatures[msgIndex] = agg
	return nil
}

// VerifyAll discharges the obligation with one batched check over all
// accumulated entries and is terminal: the obligation cannot be reused
// afterwards. The batch succeeds only if every entry is individually
// valid; any single failure fails the whole call with
// ErrInvalidSignature and no indication of which entry failed. Callers
// needing to isolate a failure re-verify with single-entry obligations.
// On success the key cache is returned for reuse.
//
// The batch is pure computation over immutable inputs, so it is sharded
// across available cores; parallelism never changes the result.
func (ob *VerificationObligation) VerifyAll() (KeyCache, error) {
	if ob.consumed {
		return nil, ErrObligationConsumed
	}
	ob.consumed = true

	eg := errgroup.Group{}
	eg.SetLimit(runtime.NumCPU())
	for i := range ob.messages {
		eg.Go(func() error {
			return verifyEntry(ob.signatures[i], ob.publicKeys[i], ob.messages[i])
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return ob.lookup, nil
}

func verifyEntry(sig *bls.Signature, pks []*bls.PublicKey, msg []byte) error {
	if sig == nil || len(pks) == 0 {
		return fmt.Errorf("%w: entry has no contributions", ErrInvalidSignature)
	}
	aggPK, err := bls.AggregatePublicKeys(pks)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	if !bls.Verify(aggPK, sig, msg) {
		return fmt.Errorf("%w: batch verification failed", ErrInvalidSignature)
	}
	return nil
}
