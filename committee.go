// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package quorum

import (
	"fmt"
	"slices"

	"github.com/holiman/uint256"
	"github.com/luxfi/crypto/bls"
)

// Committee is the epoch-scoped view of the validator set consumed by
// certificate construction and verification: identity to index mapping,
// per-validator stake, precomputed thresholds, and public key lookup.
// Implementations must be immutable snapshots, safe for concurrent
// readers.
type Committee interface {
	Epoch() Epoch

	// QuorumThreshold is the supermajority stake required for a strong
	// certificate (more than two thirds of total stake).
	QuorumThreshold() uint64

	// ValidityThreshold is the minimum stake required for a weak
	// certificate (more than one third of total stake).
	ValidityThreshold() uint64

	TotalWeight() uint64

	// Weight returns the stake of an authority, or 0 if it is not a
	// committee member.
	Weight(AuthorityID) uint64

	// AuthorityIndex returns the canonical index of an authority.
	AuthorityIndex(AuthorityID) (uint32, bool)

	// AuthorityByIndex returns the authority at a canonical index.
	AuthorityByIndex(uint32) (AuthorityID, bool)

	// PublicKey returns the parsed public key of a member, or
	// ErrUnknownSigner if the identity is not in the committee.
	PublicKey(AuthorityID) (*bls.PublicKey, error)
}

// Member is one validator's entry in a committee snapshot.
type Member struct {
	PublicKey *bls.PublicKey
	Weight    uint64
}

type indexedMember struct {
	id     AuthorityID
	pk     *bls.PublicKey
	weight uint64
}

func (m *indexedMember) Compare(other *indexedMember) int {
	return m.id.Compare(other.id)
}

// StaticCommittee is an immutable committee snapshot for one epoch.
// Members are held in canonical order (sorted by identity) so index
// assignments are deterministic across constructions from the same set.
type StaticCommittee struct {
	epoch   Epoch
	members []*indexedMember
	byID    map[AuthorityID]uint32

	totalWeight       uint64
	quorumThreshold   uint64
	validityThreshold uint64
}

// NewStaticCommittee builds a committee snapshot for epoch from the
// given members. Empty sets, nil or duplicate keys, and zero weights
// are rejected. Thresholds are precomputed from total stake: quorum is
// 2f+1 and validity is f+1 out of 3f+1 total.
func NewStaticCommittee(epoch Epoch, members []Member) (*StaticCommittee, error) {
	if len(members) == 0 {
		return nil, fmt.Errorf("%w: empty committee", ErrInvalidAddress)
	}

	indexed := make([]*indexedMember, 0, len(members))
	var totalWeight uint64
	for _, m := range members {
		if m.PublicKey == nil {
			return nil, fmt.Errorf("%w: nil public key", ErrInvalidAddress)
		}
		if m.Weight == 0 {
			return nil, fmt.Errorf("%w: zero weight member", ErrInvalidAddress)
		}
		var err error
		totalWeight, err = AddWeight(totalWeight, m.Weight)
		if err != nil {
			return nil, err
		}
		indexed = append(indexed, &indexedMember{
			id:     AuthorityIDFromPublicKey(m.PublicKey),
			pk:     m.PublicKey,
			weight: m.Weight,
		})
	}

	slices.SortFunc(indexed, (*indexedMember).Compare)

	byID := make(map[AuthorityID]uint32, len(indexed))
	for i, m := range indexed {
		if _, ok := byID[m.id]; ok {
			return nil, fmt.Errorf("%w: duplicate member %s", ErrInvalidAddress, m.id)
		}
		byID[m.id] = uint32(i)
	}

	return &StaticCommittee{
		epoch:             epoch,
		members:           indexed,
		byID:              byID,
		totalWeight:       totalWeight,
		quorumThreshold:   thresholdFraction(totalWeight, 2, 3),
		validityThreshold: thresholdFraction(totalWeight, 1, 3),
	}, nil
}

// thresholdFraction computes total*num/den + 1 without overflowing on
// the intermediate product.
func thresholdFraction(total, num, den uint64) uint64 {
	t := new(uint256.Int).Mul(uint256.NewInt(total), uint256.NewInt(num))
	t.Div(t, uint256.NewInt(den))
	t.AddUint64(t, 1)
	return t.Uint64()
}

func (c *StaticCommittee) Epoch() Epoch {
	return c.epoch
}

func (c *StaticCommittee) QuorumThreshold() uint64 {
	return c.quorumThreshold
}

func (c *StaticCommittee) ValidityThreshold() uint64 {
	return c.validityThreshold
}

func (c *StaticCommittee) TotalWeight() uint64 {
	return c.totalWeight
}

// Len returns the number of committee members.
func (c *StaticCommittee) Len() int {
	return len(c.members)
}

func (c *StaticCommittee) Weight(id AuthorityID) uint64 {
	i, ok := c.byID[id]
	if !ok {
		return 0
	}
	return c.members[i].weight
}

func (c *StaticCommittee) AuthorityIndex(id AuthorityID) (uint32, bool) {
	i, ok := c.byID[id]
	return i, ok
}

func (c *StaticCommittee) AuthorityByIndex(i uint32) (AuthorityID, bool) {
	if int(i) >= len(c.members) {
		return AuthorityID{}, false
	}
	return c.members[i].id, true
}

func (c *StaticCommittee) PublicKey(id AuthorityID) (*bls.PublicKey, error) {
	i, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSigner, id)
	}
	return c.members[i].pk, nil
}
