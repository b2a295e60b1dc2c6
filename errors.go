// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package quorum

import "errors"

// Every failure in this package is terminal for the verification attempt
// it belongs to: inputs are deterministic, so retrying with the same
// inputs cannot succeed. Callers recover by collecting different
// attestations and trying again.
var (
	// ErrInvalidAddress is returned when identity or public key bytes are
	// malformed.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrInvalidSignature is returned when a cryptographic check fails,
	// aggregation rejects its inputs, or an encoded signature has the
	// wrong length.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrIncorrectSigner is returned when a signature is cryptographically
	// valid but was produced under a key that does not belong to the
	// claimed signer.
	ErrIncorrectSigner = errors.New("incorrect signer")

	// ErrUnknownSigner is returned when an identity or signer index does
	// not resolve to a committee member with non-zero weight.
	ErrUnknownSigner = errors.New("unknown signer")

	// ErrWrongEpoch is returned when a certificate's epoch does not match
	// the committee it is being verified against.
	ErrWrongEpoch = errors.New("wrong epoch")

	// ErrCertificateRequiresQuorum is returned when the accumulated stake
	// of a certificate's signers is below the required threshold.
	ErrCertificateRequiresQuorum = errors.New("certificate requires quorum")

	// ErrInvalidKeypair is returned when key material cannot be generated
	// or parsed.
	ErrInvalidKeypair = errors.New("invalid keypair")

	// ErrObligationConsumed is returned when a verification obligation is
	// discharged more than once.
	ErrObligationConsumed = errors.New("verification obligation already consumed")
)
