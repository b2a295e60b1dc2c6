// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package quorum

import (
	"bytes"
	"fmt"

	"github.com/luxfi/crypto/bls"
	"github.com/luxfi/ids"
)

// FlagLen is the width of the scheme tag prefixing every tagged
// signature.
const FlagLen = 2

// blsFlag tags signatures produced under BLS12-381.
var blsFlag = [FlagLen]byte{0xb1, 0x2c}

// scheme describes the fixed wire layout of one signature scheme. The
// set of schemes is closed: the flag on the wire selects an entry here
// and an unrecognized flag is a decode error, never a fallback.
type scheme struct {
	flag   [FlagLen]byte
	sigLen int
	pkLen  int
}

func (s *scheme) totalLen() int {
	return FlagLen + s.sigLen + s.pkLen
}

var blsScheme = &scheme{
	flag:   blsFlag,
	sigLen: bls.SignatureLen,
	pkLen:  bls.PublicKeyLen,
}

func schemeForFlag(flag []byte) (*scheme, bool) {
	if bytes.Equal(flag, blsScheme.flag[:]) {
		return blsScheme, true
	}
	return nil, false
}

// TaggedSignature bundles a scheme tag, a signature, and the signer's
// public key in one fixed-layout buffer: flag || signature || public
// key, total length fixed per scheme. The zero value is the explicit
// empty signature: it serializes to zero bytes and never verifies,
// letting containers represent "not yet signed" without an extra
// wrapper.
type TaggedSignature struct {
	sch   *scheme
	bytes []byte
}

// NewTaggedSignature signs msg and bundles the signature with the
// signer's public key under the BLS scheme tag.
func NewTaggedSignature(msg []byte, signer bls.Signer) (TaggedSignature, error) {
	sig, err := signer.Sign(msg)
	if err != nil {
		return TaggedSignature{}, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	buf := make([]byte, 0, blsScheme.totalLen())
	buf = append(buf, blsScheme.flag[:]...)
	buf = append(buf, bls.SignatureToBytes(sig)...)
	buf = append(buf, bls.PublicKeyToCompressedBytes(signer.PublicKey())...)
	return TaggedSignature{sch: blsScheme, bytes: buf}, nil
}

// ParseTaggedSignature decodes a tagged signature from its wire form.
// Zero bytes decode to the empty signature. Otherwise the first two
// bytes must name a known scheme and the total length must match that
// scheme exactly.
func ParseTaggedSignature(b []byte) (TaggedSignature, error) {
	if len(b) == 0 {
		return TaggedSignature{}, nil
	}
	if len(b) < FlagLen {
		return TaggedSignature{}, fmt.Errorf("%w: %d bytes is too short for a scheme tag", ErrInvalidSignature, len(b))
	}
	sch, ok := schemeForFlag(b[:FlagLen])
	if !ok {
		return TaggedSignature{}, fmt.Errorf("%w: unrecognized scheme tag %x", ErrInvalidSignature, b[:FlagLen])
	}
	if len(b) != sch.totalLen() {
		return TaggedSignature{}, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidSignature, sch.totalLen(), len(b))
	}
	buf := make([]byte, sch.totalLen())
	copy(buf, b)
	return TaggedSignature{sch: sch, bytes: buf}, nil
}

// IsEmpty reports whether this is the explicit empty signature.
func (s TaggedSignature) IsEmpty() bool {
	return s.sch == nil
}

// Bytes returns the wire form of the signature. Empty signatures have
// no bytes.
func (s TaggedSignature) Bytes() []byte {
	return s.bytes
}

// FlagBytes returns the scheme tag, or nil for the empty signature.
// Construction validates lengths, so the slices below never panic.
func (s TaggedSignature) FlagBytes() []byte {
	if s.sch == nil {
		return nil
	}
	return s.bytes[:FlagLen]
}

// SignatureBytes returns the raw signature bytes, or nil for the empty
// signature.
func (s TaggedSignature) SignatureBytes() []byte {
	if s.sch == nil {
		return nil
	}
	return s.bytes[FlagLen : FlagLen+s.sch.sigLen]
}

// PublicKeyBytes returns the embedded public key bytes, or nil for the
// empty signature.
func (s TaggedSignature) PublicKeyBytes() []byte {
	if s.sch == nil {
		return nil
	}
	return s.bytes[FlagLen+s.sch.sigLen:]
}

// Equal reports whether two tagged signatures have identical wire
// bytes.
func (s TaggedSignature) Equal(other TaggedSignature) bool {
	return bytes.Equal(s.bytes, other.bytes)
}

// Verify checks that this signature covers msg and was produced by the
// key belonging to author. The address embedded in the signature is
// re-derived from the public key first: a signature that is
// cryptographically valid under some key K is still rejected with
// ErrIncorrectSigner when K does not belong to author. Any other
// failure, including the empty signature, is ErrInvalidSignature.
func (s TaggedSignature) Verify(msg []byte, author ids.ShortID) error {
	if s.sch == nil {
		return fmt.Errorf("%w: empty signature", ErrInvalidSignature)
	}

	pkBytes := s.PublicKeyBytes()
	signer := addressFromPublicKeyBytes(pkBytes)
	if signer != author {
		return fmt.Errorf("%w: expected %s, signed by %s", ErrIncorrectSigner, author, signer)
	}

	pk, err := bls.PublicKeyFromCompressedBytes(pkBytes)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	sig, err := bls.SignatureFromBytes(s.SignatureBytes())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	if !bls.Verify(pk, sig, msg) {
		return fmt.Errorf("%w: signature does not cover message", ErrInvalidSignature)
	}
	return nil
}
