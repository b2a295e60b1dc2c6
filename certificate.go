// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package quorum

import (
	"fmt"
	"iter"
	"slices"

	"github.com/luxfi/crypto/bls"
	"github.com/luxfi/math/set"
)

// ThresholdKind statically selects which committee threshold a
// certificate must clear. The set is sealed: only StrongQuorum and
// WeakQuorum satisfy it, so a weak certificate can never be passed
// where *Certificate[StrongQuorum] is required.
type ThresholdKind interface {
	StrongQuorum | WeakQuorum
	threshold(Committee) uint64
}

// StrongQuorum requires the committee's supermajority threshold.
type StrongQuorum struct{}

func (StrongQuorum) threshold(c Committee) uint64 {
	return c.QuorumThreshold()
}

// WeakQuorum requires the committee's minimum-validity threshold.
type WeakQuorum struct{}

func (WeakQuorum) threshold(c Committee) uint64 {
	return c.ValidityThreshold()
}

// Certificate is a compact proof that a stake-weighted quorum of
// validators attested to one message in one epoch: the aggregate of the
// signers' signatures plus a bitset of their committee indices. A
// certificate is immutable once constructed.
type Certificate[T ThresholdKind] struct {
	Epoch     Epoch
	Signature *bls.Signature
	Signers   set.Bits
}

type (
	// StrongCertificate proves a supermajority of stake attested.
	StrongCertificate = Certificate[StrongQuorum]
	// WeakCertificate proves a minimum-validity fraction of stake
	// attested.
	WeakCertificate = Certificate[WeakQuorum]
)

// AuthoritySignature pairs a signer with its raw signature: the input
// shape for certificate construction.
type AuthoritySignature struct {
	Authority AuthorityID
	Signature *bls.Signature
}

// Compare orders pairs by authority identity.
func (a AuthoritySignature) Compare(other AuthoritySignature) int {
	return a.Authority.Compare(other.Authority)
}

// NewCertificate aggregates the given signatures into a certificate for
// epoch. Pairs are sorted by authority first, so constructions over the
// same signer set produce byte-identical certificates regardless of
// input order. Each authority must resolve to a committee member
// (ErrUnknownSigner otherwise) and must appear at most once. The stake
// threshold is deliberately not checked here: construction may be
// attempted speculatively before the caller has confirmed quorum, and
// verification enforces the threshold.
func NewCertificate[T ThresholdKind](epoch Epoch, signatures []AuthoritySignature, committee Committee) (*Certificate[T], error) {
	if len(signatures) == 0 {
		return nil, fmt.Errorf("%w: certificate requires at least one signer", ErrInvalidSignature)
	}

	sorted := slices.Clone(signatures)
	slices.SortFunc(sorted, AuthoritySignature.Compare)

	signers := set.NewBits()
	sigs := make([]*bls.Signature, 0, len(sorted))
	for _, s := range sorted {
		index, ok := committee.AuthorityIndex(s.Authority)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSigner, s.Authority)
		}
		signers.Add(int(index))
		sigs = append(sigs, s.Signature)
	}
	if signers.Len() != len(sigs) {
		return nil, fmt.Errorf("%w: duplicate signer", ErrInvalidSignature)
	}

	aggSig, err := bls.AggregateSignatures(sigs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	return &Certificate[T]{
		Epoch:     epoch,
		Signature: aggSig,
		Signers:   signers,
	}, nil
}

// AddToVerificationObligation stages this certificate into the batch
// entry at msgIndex and eagerly validates the cheap invariants: the
// epoch must match the committee's, every signer index must resolve to
// a member with non-zero stake, and the accumulated stake must meet the
// threshold selected by T. The expensive cryptographic check is
// deferred to the obligation's VerifyAll.
func (c *Certificate[T]) AddToVerificationObligation(committee Committee, obligation *VerificationObligation, msgIndex int) error {
	if c.Epoch != committee.Epoch() {
		return fmt.Errorf("%w: certificate epoch %d, committee epoch %d", ErrWrongEpoch, c.Epoch, committee.Epoch())
	}

	if err := obligation.addAggregate(msgIndex, c.Signature); err != nil {
		return err
	}

	var weight uint64
	for i := 0; i < c.Signers.BitLen(); i++ {
		if !c.Signers.Contains(i) {
			continue
		}
		authority, ok := committee.AuthorityByIndex(uint32(i))
		if !ok {
			return fmt.Errorf("%w: signer index %d", ErrUnknownSigner, i)
		}
		// A zero-weight entry cannot contribute to quorum; its presence
		// means the certificate is malformed.
		votingRights := committee.Weight(authority)
		if votingRights == 0 {
			return fmt.Errorf("%w: %s has no stake", ErrUnknownSigner, authority)
		}
		var err error
		weight, err = AddWeight(weight, votingRights)
		if err != nil {
			return err
		}

		pk, err := obligation.LookupPublicKey(authority)
		if err != nil {
			return err
		}
		if err := obligation.pushPublicKey(msgIndex, pk); err != nil {
			return err
		}
	}

	var kind T
	if threshold := kind.threshold(committee); weight < threshold {
		return fmt.Errorf("%w: %d < %d", ErrCertificateRequiresQuorum, weight, threshold)
	}
	return nil
}

// Authorities returns the certificate's signers as identities, mapped
// through committee in ascending index order. The sequence is lazy and
// can be ranged over repeatedly; an index that does not resolve yields
// ErrUnknownSigner for that position.
func (c *Certificate[T]) Authorities(committee Committee) iter.Seq2[AuthorityID, error] {
	return func(yield func(AuthorityID, error) bool) {
		for i := 0; i < c.Signers.BitLen(); i++ {
			if !c.Signers.Contains(i) {
				continue
			}
			authority, ok := committee.AuthorityByIndex(uint32(i))
			if !ok {
				if !yield(AuthorityID{}, fmt.Errorf("%w: signer index %d", ErrUnknownSigner, i)) {
					return
				}
				continue
			}
			if !yield(authority, nil) {
				return
			}
		}
	}
}

// NumSigners returns the number of validators that contributed to this
// certificate.
func (c *Certificate[T]) NumSigners() int {
	return c.Signers.Len()
}
