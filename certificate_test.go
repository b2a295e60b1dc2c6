// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package quorum

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// verifyCertificate stages cert into a fresh single-entry obligation
// and discharges it.
func verifyCertificate[T ThresholdKind](committee Committee, cert *Certificate[T], msg []byte) error {
	obligation := NewVerificationObligation(nil)
	index := obligation.AddMessage(msg)
	if err := cert.AddToVerificationObligation(committee, obligation, index); err != nil {
		return err
	}
	_, err := obligation.VerifyAll()
	return err
}

func TestCertificateOrderIndependence(t *testing.T) {
	require := require.New(t)

	authorities, committee := newTestCommittee(t, 1, 1, 1, 1, 1)
	msg := []byte("order independent payload")

	signatures := signAll(t, msg, authorities...)
	permutations := [][]AuthoritySignature{
		{signatures[0], signatures[1], signatures[2], signatures[3]},
		{signatures[3], signatures[1], signatures[0], signatures[2]},
		{signatures[2], signatures[3], signatures[1], signatures[0]},
	}

	var reference []byte
	for i, perm := range permutations {
		cert, err := NewCertificate[StrongQuorum](1, perm, committee)
		require.NoError(err)

		b, err := cert.Bytes()
		require.NoError(err)
		if i == 0 {
			reference = b
			continue
		}
		require.Equal(reference, b)
	}
}

func TestCertificateThresholds(t *testing.T) {
	// Committee of 4 with weights [1,1,1,1]: quorum threshold 3,
	// validity threshold 2.
	authorities, committee := newTestCommittee(t, 1, 1, 1, 1, 1)
	require.Equal(t, uint64(3), committee.QuorumThreshold())
	require.Equal(t, uint64(2), committee.ValidityThreshold())

	msg := []byte("threshold payload")

	tests := []struct {
		name    string
		signers []*testAuthority
		strong  bool
		err     error
	}{
		{
			name:    "strong quorum with three signers",
			signers: authorities[:3],
			strong:  true,
		},
		{
			name:    "strong quorum with two signers fails",
			signers: authorities[:2],
			strong:  true,
			err:     ErrCertificateRequiresQuorum,
		},
		{
			name:    "weak quorum with two signers",
			signers: authorities[:2],
		},
		{
			name:    "weak quorum with one signer fails",
			signers: authorities[:1],
			err:     ErrCertificateRequiresQuorum,
		},
		{
			name:    "all signers",
			signers: authorities,
			strong:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			signatures := signAll(t, msg, tt.signers...)

			if tt.strong {
				cert, err := NewCertificate[StrongQuorum](1, signatures, committee)
				require.NoError(err)
				require.ErrorIs(verifyCertificate(committee, cert, msg), tt.err)
			} else {
				cert, err := NewCertificate[WeakQuorum](1, signatures, committee)
				require.NoError(err)
				require.ErrorIs(verifyCertificate(committee, cert, msg), tt.err)
			}
		})
	}
}

func TestCertificateEpochFencing(t *testing.T) {
	require := require.New(t)

	authorities, committee := newTestCommittee(t, 1, 1, 1, 1, 1)
	msg := []byte("epoch fenced payload")

	cert, err := NewCertificate[StrongQuorum](1, signAll(t, msg, authorities...), committee)
	require.NoError(err)
	require.NoError(verifyCertificate(committee, cert, msg))

	// Same authorities and stakes at a later epoch: still fenced out.
	later := sameCommitteeAtEpoch(t, 2, authorities)
	err = verifyCertificate(later, cert, msg)
	require.ErrorIs(err, ErrWrongEpoch)
}

func TestCertificateUnknownSigner(t *testing.T) {
	require := require.New(t)

	authorities, committee := newTestCommittee(t, 1, 1, 1)
	outsider := newTestAuthority(t, 1)
	msg := []byte("unknown signer payload")

	signatures := signAll(t, msg, authorities[0], outsider)
	_, err := NewCertificate[WeakQuorum](1, signatures, committee)
	require.ErrorIs(err, ErrUnknownSigner)
}

func TestCertificateStaleIndex(t *testing.T) {
	require := require.New(t)

	authorities, committee := newTestCommittee(t, 1, 1, 1, 1, 1)
	msg := []byte("stale index payload")

	cert, err := NewCertificate[StrongQuorum](1, signAll(t, msg, authorities...), committee)
	require.NoError(err)

	// A committee with fewer members cannot resolve the high signer
	// indices.
	_, smaller := newTestCommittee(t, 1, 1)
	err = verifyCertificate(smaller, cert, msg)
	require.ErrorIs(err, ErrUnknownSigner)
}

func TestCertificateZeroSigners(t *testing.T) {
	_, committee := newTestCommittee(t, 1, 1, 1)
	_, err := NewCertificate[StrongQuorum](1, nil, committee)
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestCertificateDuplicateSigner(t *testing.T) {
	require := require.New(t)

	authorities, committee := newTestCommittee(t, 1, 1, 1, 1)
	msg := []byte("duplicate signer payload")

	signatures := signAll(t, msg, authorities[0], authorities[0])
	_, err := NewCertificate[WeakQuorum](1, signatures, committee)
	require.ErrorIs(err, ErrInvalidSignature)
}

func TestCertificateWireRoundTrip(t *testing.T) {
	require := require.New(t)

	authorities, committee := newTestCommittee(t, 1, 1, 1, 1, 1)
	msg := []byte("wire payload")

	cert, err := NewCertificate[StrongQuorum](1, signAll(t, msg, authorities...), committee)
	require.NoError(err)

	b, err := cert.Bytes()
	require.NoError(err)

	parsed, err := ParseCertificate[StrongQuorum](b)
	require.NoError(err)
	require.Equal(cert.Epoch, parsed.Epoch)
	require.Equal(cert.NumSigners(), parsed.NumSigners())
	require.NoError(verifyCertificate(committee, parsed, msg))

	_, err = ParseCertificate[StrongQuorum]([]byte("not a certificate"))
	require.ErrorIs(err, ErrInvalidSignature)
}

func TestCertificateAuthorities(t *testing.T) {
	require := require.New(t)

	authorities, committee := newTestCommittee(t, 1, 1, 1, 1)
	msg := []byte("authorities payload")

	signers := authorities[:2]
	cert, err := NewCertificate[WeakQuorum](1, signAll(t, msg, signers...), committee)
	require.NoError(err)

	want := make(map[AuthorityID]struct{}, len(signers))
	for _, a := range signers {
		want[a.id] = struct{}{}
	}

	// The sequence is restartable: range it twice.
	for range 2 {
		got := make(map[AuthorityID]struct{})
		for id, err := range cert.Authorities(committee) {
			require.NoError(err)
			got[id] = struct{}{}
		}
		require.Equal(want, got)
	}

	// Against a shrunken committee the stale indices surface as errors.
	_, smaller := newTestCommittee(t, 1, 1)
	var errs int
	for _, err := range cert.Authorities(smaller) {
		if err != nil {
			require.ErrorIs(err, ErrUnknownSigner)
			errs++
		}
	}
	require.NotZero(errs)
}
