// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package quorum

import (
	"testing"

	"github.com/luxfi/crypto/bls"
	"github.com/luxfi/geth/rlp"
	"github.com/stretchr/testify/require"
)

func TestSigningBytesDomainSeparation(t *testing.T) {
	require := require.New(t)

	payload := []byte("shared body")

	// The same body under different kinds or epochs signs differently.
	tx, err := SigningBytes(PayloadTransaction, 1, payload)
	require.NoError(err)
	checkpoint, err := SigningBytes(PayloadCheckpoint, 1, payload)
	require.NoError(err)
	confirmation, err := SigningBytes(PayloadConfirmation, 1, payload)
	require.NoError(err)
	laterEpoch, err := SigningBytes(PayloadTransaction, 2, payload)
	require.NoError(err)

	require.NotEqual(tx, checkpoint)
	require.NotEqual(tx, confirmation)
	require.NotEqual(checkpoint, confirmation)
	require.NotEqual(tx, laterEpoch)

	// Deterministic for identical inputs.
	again, err := SigningBytes(PayloadTransaction, 1, payload)
	require.NoError(err)
	require.Equal(tx, again)
}

func TestPayloadKindString(t *testing.T) {
	require := require.New(t)

	require.Equal("transaction", PayloadTransaction.String())
	require.Equal("checkpoint", PayloadCheckpoint.String())
	require.Equal("confirmation", PayloadConfirmation.String())
	require.Contains(PayloadKind(0).String(), "unknown")
}

func TestParseCertificateMalformedBitset(t *testing.T) {
	require := require.New(t)

	authorities, committee := newTestCommittee(t, 1, 1, 1, 1)
	msg := []byte("bitset payload")

	cert, err := NewCertificate[WeakQuorum](1, signAll(t, msg, authorities[:2]...), committee)
	require.NoError(err)

	// The bitset serializes big-endian, so a leading zero byte is a
	// redundant encoding of the same set and must be rejected.
	padded, err := rlp.EncodeToBytes(&certificateWire{
		Epoch:     uint64(cert.Epoch),
		Signature: bls.SignatureToBytes(cert.Signature),
		Signers:   append([]byte{0x00}, cert.Signers.Bytes()...),
	})
	require.NoError(err)
	_, err = ParseCertificate[WeakQuorum](padded)
	require.ErrorIs(err, ErrInvalidSignature)

	// As must an empty signer set.
	empty, err := rlp.EncodeToBytes(&certificateWire{
		Epoch:     uint64(cert.Epoch),
		Signature: bls.SignatureToBytes(cert.Signature),
		Signers:   nil,
	})
	require.NoError(err)
	_, err = ParseCertificate[WeakQuorum](empty)
	require.ErrorIs(err, ErrInvalidSignature)
}

func TestParseSingleAttestationErrors(t *testing.T) {
	require := require.New(t)

	a := newTestAuthority(t, 1)
	attestation, err := NewSingleAttestation(1, []byte("payload"), a.signer)
	require.NoError(err)

	_, err = ParseSingleAttestation([]byte("not an attestation"))
	require.ErrorIs(err, ErrInvalidSignature)

	// Wrong-length authority bytes.
	short, err := rlp.EncodeToBytes(&attestationWire{
		Epoch:     1,
		Authority: attestation.Authority[:12],
		Signature: bls.SignatureToBytes(attestation.Signature),
	})
	require.NoError(err)
	_, err = ParseSingleAttestation(short)
	require.ErrorIs(err, ErrInvalidAddress)
}
