// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package quorum

import (
	"fmt"

	"github.com/luxfi/crypto/bls"
)

// AttestationKind is the closed set of attestation states a payload can
// carry. The set is fixed so consumers can switch exhaustively.
type AttestationKind uint8

const (
	// Unsigned carries no attestation.
	Unsigned AttestationKind = iota
	// SingleAttested carries one validator's vote.
	SingleAttested
	// QuorumCertified carries an aggregated quorum certificate.
	QuorumCertified
)

func (k AttestationKind) String() string {
	switch k {
	case Unsigned:
		return "unsigned"
	case SingleAttested:
		return "single-attested"
	case QuorumCertified:
		return "quorum-certified"
	default:
		return fmt.Sprintf("unknown attestation kind %d", uint8(k))
	}
}

// SingleAttestation is one validator's vote over a message for an
// epoch: the atomic unit collected before aggregation.
type SingleAttestation struct {
	Epoch     Epoch
	Authority AuthorityID
	Signature *bls.Signature
}

// NewSingleAttestation signs msg with signer and returns the resulting
// vote for epoch.
func NewSingleAttestation(epoch Epoch, msg []byte, signer bls.Signer) (*SingleAttestation, error) {
	sig, err := signer.Sign(msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	return &SingleAttestation{
		Epoch:     epoch,
		Authority: AuthorityIDFromPublicKey(signer.PublicKey()),
		Signature: sig,
	}, nil
}

// VoteKey identifies a vote for deduplication. Signature bytes are
// deliberately excluded: an authority that produces two different valid
// signatures over the same content has still cast only one vote.
type VoteKey struct {
	Epoch     Epoch
	Authority AuthorityID
}

// VoteKey returns the deduplication key for this attestation.
func (a *SingleAttestation) VoteKey() VoteKey {
	return VoteKey{Epoch: a.Epoch, Authority: a.Authority}
}

// Equal reports whether two attestations are the same vote. Like
// VoteKey, it ignores the signature bytes.
func (a *SingleAttestation) Equal(other *SingleAttestation) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.Epoch == other.Epoch && a.Authority == other.Authority
}

// AddToObligation folds this attestation into the batch entry at
// msgIndex: the attesting validator's public key is appended to the
// entry's key list and the raw signature is added to its partial
// aggregate. This is the only verification path for an attestation; it
// is never checked in isolation on the hot path. The attestation itself
// is not modified.
func (a *SingleAttestation) AddToObligation(committee Committee, obligation *VerificationObligation, msgIndex int) error {
	pk, err := committee.PublicKey(a.Authority)
	if err != nil {
		return err
	}
	if err := obligation.pushPublicKey(msgIndex, pk); err != nil {
		return err
	}
	return obligation.addSignature(msgIndex, a.Signature)
}
