// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

package graph

import (
	"math/big"
	"strings"
)

// Less orders user identifiers naturally: identifiers that are base-10
// integers sort numerically and before any non-numeric identifier;
// non-numeric identifiers sort lexicographically. Numerically equal
// identifiers with different spellings ("7", "007") fall back to string
// order so the ordering stays total.
func Less(a, b string) bool {
	an, aok := parseInt(a)
	bn, bok := parseInt(b)

	switch {
	case aok && bok:
		if c := an.Cmp(bn); c != 0 {
			return c < 0
		}
		return a < b
	case aok:
		return true
	case bok:
		return false
	default:
		return a < b
	}
}

// parseInt parses arbitrary-length integers so very long numeric IDs
// still compare numerically.
func parseInt(s string) (*big.Int, bool) {
	if s == "" {
		return nil, false
	}
	digits := strings.TrimPrefix(s, "-")
	if digits == "" {
		return nil, false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return nil, false
		}
	}
	n, ok := new(big.Int).SetString(s, 10)
	return n, ok
}
