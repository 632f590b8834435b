// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

package recommend

import "strconv"

// Weighting computes the demographic term of a candidate's score.
type Weighting interface {
	// Name returns the weighting identifier used in config and stats.
	Name() string

	// Demographic returns the score contribution for a pair of attribute
	// maps and the number of attributes with equal values. Either map may
	// be nil; the result is then (0, 0). The contribution is never negative.
	Demographic(source, candidate map[string]string) (contribution float64, matched int)
}

// matchCount counts attribute names present on both sides with equal values.
func matchCount(a, b map[string]string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	n := 0
	for k, v := range a {
		if w, ok := b[k]; ok && w == v {
			n++
		}
	}
	return n
}

// LinearWeighting scores Weight per equal attribute.
type LinearWeighting struct {
	Weight float64
}

// Name implements Weighting.
func (LinearWeighting) Name() string { return WeightingLinear }

// Demographic implements Weighting.
func (w LinearWeighting) Demographic(source, candidate map[string]string) (float64, int) {
	m := matchCount(source, candidate)
	return w.Weight * float64(m), m
}

// ProbabilityWeighting scores Weight times an estimated friendship
// probability in [0, 1]:
//
//	gender   equal +0.3, different +0.1
//	age      |gap| < 5 +0.4, < 10 +0.2, otherwise -0.2
//	city     equal +0.5
//	education both "1" +0.3, one "1" +0.1
//
// Missing or unparsable attributes contribute nothing.
type ProbabilityWeighting struct {
	Weight float64
}

// Name implements Weighting.
func (ProbabilityWeighting) Name() string { return WeightingProbability }

// Demographic implements Weighting.
func (w ProbabilityWeighting) Demographic(source, candidate map[string]string) (float64, int) {
	return w.Weight * Probability(source, candidate), matchCount(source, candidate)
}

// Probability returns the friendship probability for two attribute maps.
func Probability(a, b map[string]string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	p := 0.0
	if ga, gb, ok := both(a, b, "gender"); ok {
		if ga == gb {
			p += 0.3
		} else {
			p += 0.1
		}
	}

	if aa, ab, ok := both(a, b, "age"); ok {
		x, errA := strconv.Atoi(aa)
		y, errB := strconv.Atoi(ab)
		if errA == nil && errB == nil {
			gap := x - y
			if gap < 0 {
				gap = -gap
			}
			switch {
			case gap < 5:
				p += 0.4
			case gap < 10:
				p += 0.2
			default:
				p -= 0.2
			}
		}
	}

	if ca, cb, ok := both(a, b, "city"); ok && ca == cb {
		p += 0.5
	}

	if ea, eb, ok := both(a, b, "education"); ok {
		switch {
		case ea == "1" && eb == "1":
			p += 0.3
		case ea == "1" || eb == "1":
			p += 0.1
		}
	}

	switch {
	case p > 1:
		return 1
	case p < 0:
		return 0
	}
	return p
}

func both(a, b map[string]string, key string) (string, string, bool) {
	va, okA := a[key]
	vb, okB := b[key]
	return va, vb, okA && okB
}
