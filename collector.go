// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package quorum

import (
	"fmt"

	"github.com/luxfi/log"
)

// Collector accumulates single attestations over one message until the
// committee's stake thresholds are reached. Votes are deduplicated by
// (epoch, authority), unknown signers and wrong-epoch votes are
// rejected eagerly, and each accepted vote is verified before its stake
// is counted. A collector is owned by the single caller assembling it
// and is not safe for concurrent use.
type Collector struct {
	log       log.Logger
	committee Committee
	message   []byte

	votes  map[VoteKey]*SingleAttestation
	lookup KeyCache
	weight uint64
}

// NewCollector returns a collector for attestations over message in the
// committee's epoch. A nil-safe logger such as log.NoLog{} may be
// passed to silence it.
func NewCollector(logger log.Logger, committee Committee, message []byte) *Collector {
	return &Collector{
		log:       logger,
		committee: committee,
		message:   message,
		votes:     make(map[VoteKey]*SingleAttestation),
		lookup:    make(KeyCache),
	}
}

// Add records one attestation. Duplicate votes are dropped silently: a
// second signature from the same authority for the same epoch is the
// same vote and must not double-count its stake. Invalid attestations
// are rejected without affecting collected state.
func (c *Collector) Add(attestation *SingleAttestation) error {
	if attestation.Epoch != c.committee.Epoch() {
		return fmt.Errorf("%w: attestation epoch %d, committee epoch %d", ErrWrongEpoch, attestation.Epoch, c.committee.Epoch())
	}
	votingRights := c.committee.Weight(attestation.Authority)
	if votingRights == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownSigner, attestation.Authority)
	}

	key := attestation.VoteKey()
	if _, ok := c.votes[key]; ok {
		c.log.Debug(
			"dropping duplicate attestation",
			log.Stringer("authority", attestation.Authority),
			log.Uint64("epoch", uint64(attestation.Epoch)),
		)
		return nil
	}

	if err := c.verify(attestation); err != nil {
		return err
	}

	weight, err := AddWeight(c.weight, votingRights)
	if err != nil {
		return err
	}
	c.votes[key] = attestation
	c.weight = weight

	c.log.Debug(
		"collected attestation",
		log.Stringer("authority", attestation.Authority),
		log.Uint64("weight", c.weight),
		log.Uint64("quorumThreshold", c.committee.QuorumThreshold()),
	)
	if c.weight >= c.committee.QuorumThreshold() {
		c.log.Info(
			"reached quorum",
			log.Uint64("weight", c.weight),
			log.Int("signers", len(c.votes)),
		)
	}
	return nil
}

// verify checks one attestation through a single-entry obligation,
// reusing the collector's key cache across votes.
func (c *Collector) verify(attestation *SingleAttestation) error {
	obligation := NewVerificationObligation(c.lookup)
	index := obligation.AddMessage(c.message)
	if err := attestation.AddToObligation(c.committee, obligation, index); err != nil {
		return err
	}
	lookup, err := obligation.VerifyAll()
	if err != nil {
		return err
	}
	c.lookup = lookup
	return nil
}

// SignedWeight returns the stake collected so far.
func (c *Collector) SignedWeight() uint64 {
	return c.weight
}

// ReachedQuorum reports whether collected stake meets the supermajority
// threshold.
func (c *Collector) ReachedQuorum() bool {
	return c.weight >= c.committee.QuorumThreshold()
}

// ReachedValidity reports whether collected stake meets the
// minimum-validity threshold.
func (c *Collector) ReachedValidity() bool {
	return c.weight >= c.committee.ValidityThreshold()
}

// StrongCertificate folds the collected votes into a supermajority
// certificate, failing with ErrCertificateRequiresQuorum if the quorum
// threshold has not been reached.
func (c *Collector) StrongCertificate() (*StrongCertificate, error) {
	return buildCertificate[StrongQuorum](c)
}

// WeakCertificate folds the collected votes into a minimum-validity
// certificate, failing with ErrCertificateRequiresQuorum if the
// validity threshold has not been reached.
func (c *Collector) WeakCertificate() (*WeakCertificate, error) {
	return buildCertificate[WeakQuorum](c)
}

func buildCertificate[T ThresholdKind](c *Collector) (*Certificate[T], error) {
	var kind T
	if threshold := kind.threshold(c.committee); c.weight < threshold {
		return nil, fmt.Errorf("%w: %d < %d", ErrCertificateRequiresQuorum, c.weight, threshold)
	}

	signatures := make([]AuthoritySignature, 0, len(c.votes))
	for _, vote := range c.votes {
		signatures = append(signatures, AuthoritySignature{
			Authority: vote.Authority,
			Signature: vote.Signature,
		})
	}
	return NewCertificate[T](c.committee.Epoch(), signatures, c.committee)
}
