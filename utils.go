// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package quorum

import (
	"crypto/sha256"
	"errors"
	"math"
)

// AddWeight adds two stake weights and returns an error on overflow.
func AddWeight(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, errors.New("weight addition would overflow")
	}
	return a + b, nil
}

// ComputeHash256 computes the SHA-256 digest of data.
func ComputeHash256(data []byte) []byte {
	hash := sha256.Sum256(data)
	return hash[:]
}
