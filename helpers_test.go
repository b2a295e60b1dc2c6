// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package quorum

import (
	"testing"

	"github.com/luxfi/crypto/bls"
	"github.com/luxfi/crypto/bls/signer/localsigner"
	"github.com/stretchr/testify/require"
)

type testAuthority struct {
	signer bls.Signer
	id     AuthorityID
	weight uint64
}

func newTestAuthority(t *testing.T, weight uint64) *testAuthority {
	t.Helper()

	sk, err := localsigner.New()
	require.NoError(t, err)
	return &testAuthority{
		signer: sk,
		id:     AuthorityIDFromPublicKey(sk.PublicKey()),
		weight: weight,
	}
}

// newTestCommittee builds a committee for epoch with one authority per
// weight.
func newTestCommittee(t *testing.T, epoch Epoch, weights ...uint64) ([]*testAuthority, *StaticCommittee) {
	t.Helper()

	authorities := make([]*testAuthority, 0, len(weights))
	members := make([]Member, 0, len(weights))
	for _, w := range weights {
		a := newTestAuthority(t, w)
		authorities = append(authorities, a)
		members = append(members, Member{
			PublicKey: a.signer.PublicKey(),
			Weight:    w,
		})
	}

	committee, err := NewStaticCommittee(epoch, members)
	require.NoError(t, err)
	return authorities, committee
}

// sameCommitteeAtEpoch rebuilds a committee over the same authorities
// for a different epoch.
func sameCommitteeAtEpoch(t *testing.T, epoch Epoch, authorities []*testAuthority) *StaticCommittee {
	t.Helper()

	members := make([]Member, 0, len(authorities))
	for _, a := range authorities {
		members = append(members, Member{
			PublicKey: a.signer.PublicKey(),
			Weight:    a.weight,
		})
	}
	committee, err := NewStaticCommittee(epoch, members)
	require.NoError(t, err)
	return committee
}

// signAll collects one AuthoritySignature over msg from each authority.
func signAll(t *testing.T, msg []byte, authorities ...*testAuthority) []AuthoritySignature {
	t.Helper()

	signatures := make([]AuthoritySignature, 0, len(authorities))
	for _, a := range authorities {
		sig, err := a.signer.Sign(msg)
		require.NoError(t, err)
		signatures = append(signatures, AuthoritySignature{
			Authority: a.id,
			Signature: sig,
		})
	}
	return signatures
}
