// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package quorum

import (
	"fmt"

	"github.com/luxfi/crypto/bls"
	"github.com/luxfi/geth/rlp"
	"github.com/luxfi/math/set"
)

// PayloadKind tags the canonical signing bytes with the logical message
// type, so a signature over one kind can never be replayed as valid for
// a structurally different kind, even when the body bytes overlap.
type PayloadKind uint8

const (
	PayloadTransaction PayloadKind = iota + 1
	PayloadCheckpoint
	PayloadConfirmation
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadTransaction:
		return "transaction"
	case PayloadCheckpoint:
		return "checkpoint"
	case PayloadConfirmation:
		return "confirmation"
	default:
		return fmt.Sprintf("unknown payload kind %d", uint8(k))
	}
}

type signingPayload struct {
	Kind    uint8
	Epoch   uint64
	Payload []byte
}

// SigningBytes produces the canonical bytes validators sign for a
// payload: a deterministic serialization prefixed by the payload kind.
func SigningBytes(kind PayloadKind, epoch Epoch, payload []byte) ([]byte, error) {
	return rlp.EncodeToBytes(&signingPayload{
		Kind:    uint8(kind),
		Epoch:   uint64(epoch),
		Payload: payload,
	})
}

type certificateWire struct {
	Epoch     uint64
	Signature []byte
	Signers   []byte
}

// Bytes returns the wire form of the certificate.
func (c *Certificate[T]) Bytes() ([]byte, error) {
	return rlp.EncodeToBytes(&certificateWire{
		Epoch:     uint64(c.Epoch),
		Signature: bls.SignatureToBytes(c.Signature),
		Signers:   c.Signers.Bytes(),
	})
}

// ParseCertificate decodes a certificate from its wire form. The signer
// bitset must carry no trailing zero padding and must not be empty, and
// the aggregate signature must parse under the scheme.
func ParseCertificate[T ThresholdKind](b []byte) (*Certificate[T], error) {
	wire := certificateWire{}
	if err := rlp.DecodeBytes(b, &wire); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	sig, err := bls.SignatureFromBytes(wire.Signature)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	// Reject padded bitset encodings so the wire form of a signer set is
	// unique.
	signers := set.BitsFromBytes(wire.Signers)
	if len(signers.Bytes()) != len(wire.Signers) {
		return nil, fmt.Errorf("%w: padded signer bitset", ErrInvalidSignature)
	}
	if signers.Len() == 0 {
		return nil, fmt.Errorf("%w: certificate has no signers", ErrInvalidSignature)
	}

	return &Certificate[T]{
		Epoch:     Epoch(wire.Epoch),
		Signature: sig,
		Signers:   signers,
	}, nil
}

type attestationWire struct {
	Epoch     uint64
	Authority []byte
	Signature []byte
}

// Bytes returns the wire form of the attestation.
func (a *SingleAttestation) Bytes() ([]byte, error) {
	return rlp.EncodeToBytes(&attestationWire{
		Epoch:     uint64(a.Epoch),
		Authority: a.Authority[:],
		Signature: bls.SignatureToBytes(a.Signature),
	})
}

// ParseSingleAttestation decodes an attestation from its wire form.
func ParseSingleAttestation(b []byte) (*SingleAttestation, error) {
	wire := attestationWire{}
	if err := rlp.DecodeBytes(b, &wire); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	if len(wire.Authority) != bls.PublicKeyLen {
		return nil, fmt.Errorf("%w: authority must be %d bytes, got %d", ErrInvalidAddress, bls.PublicKeyLen, len(wire.Authority))
	}
	sig, err := bls.SignatureFromBytes(wire.Signature)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	att := &SingleAttestation{
		Epoch:     Epoch(wire.Epoch),
		Signature: sig,
	}
	copy(att.Authority[:], wire.Authority)
	return att, nil
}
