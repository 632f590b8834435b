// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

package recommend

import (
	"fmt"

	"github.com/tomtom215/friendrec/internal/graph"
)

// Scorer ranks friend candidates for a single user.
type Scorer struct {
	weighting Weighting
	fallback  bool
}

// NewScorer creates a Scorer from the configuration.
func NewScorer(cfg *Config) (*Scorer, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	w, err := cfg.NewWeighting()
	if err != nil {
		return nil, err
	}
	return &Scorer{weighting: w, fallback: cfg.DemographicFallback}, nil
}

// Weighting returns the scorer's demographic weighting.
func (s *Scorer) Weighting() Weighting {
	return s.weighting
}

// Score returns at most n recommendations for u, best first. The result
// is empty (never nil) when u is unknown, has no candidates, or n <= 0.
func (s *Scorer) Score(g *graph.Graph, u string, n int) []Recommendation {
	if n <= 0 || !g.HasUser(u) {
		return []Recommendation{}
	}

	friends := g.Neighbors(u)
	mutual := make(map[string]int)
	for f := range friends {
		for c := range g.Neighbors(f) {
			if c == u || friends.Has(c) {
				continue
			}
			mutual[c]++
		}
	}

	srcAttrs := g.Attributes(u)
	top := newTopN(n)

	if len(mutual) == 0 {
		if s.fallback && len(srcAttrs) > 0 {
			s.scoreDemographicOnly(g, u, friends, srcAttrs, top)
		}
		return top.sorted()
	}

	for c, m := range mutual {
		demo, matched := s.weighting.Demographic(srcAttrs, g.Attributes(c))
		top.offer(Recommendation{
			Source:    u,
			Candidate: c,
			Score:     float64(m) + demo,
			Mutual:    m,
			Matched:   matched,
		})
	}
	return top.sorted()
}

// scoreDemographicOnly offers every non-friend sharing at least one
// attribute value with u.
func (s *Scorer) scoreDemographicOnly(g *graph.Graph, u string, friends graph.Set, srcAttrs map[string]string, top *topN) {
	for _, c := range g.Users() {
		if c == u || friends.Has(c) {
			continue
		}
		attrs := g.Attributes(c)
		if matchCount(srcAttrs, attrs) == 0 {
			continue
		}
		demo, matched := s.weighting.Demographic(srcAttrs, attrs)
		top.offer(Recommendation{
			Source:    u,
			Candidate: c,
			Score:     demo,
			Matched:   matched,
		})
	}
}
