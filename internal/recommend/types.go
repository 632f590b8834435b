// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

package recommend

import "time"

// Recommendation is one suggested friendship for a source user.
type Recommendation struct {
	// Source is the user receiving the recommendation.
	Source string `json:"-"`

	// Candidate is the suggested friend. Never equal to Source and never
	// an existing friend of Source.
	Candidate string `json:"candidate"`

	// Score is the ranking score, always >= 0.
	Score float64 `json:"score"`

	// Mutual is the number of friends shared with Source.
	Mutual int `json:"mutual"`

	// Matched is the number of demographic attributes with equal values.
	Matched int `json:"matched"`
}

// Result is the merged output of a full run over a graph.
type Result struct {
	// Order lists every user of the graph in natural order.
	Order []string `json:"order"`

	// ByUser maps each user to its ranked recommendations. Users without
	// candidates map to an empty, non-nil slice.
	ByUser map[string][]Recommendation `json:"recommendations"`

	// Stats describes the run.
	Stats RunStats `json:"stats"`
}

// Len returns the total number of recommendations across all users.
func (r *Result) Len() int {
	n := 0
	for _, recs := range r.ByUser {
		n += len(recs)
	}
	return n
}

// RunStats holds run-level counters.
type RunStats struct {
	Users           int           `json:"users"`
	Edges           int           `json:"edges"`
	Shards          int           `json:"shards"`
	Recommendations int           `json:"recommendations"`
	Weighting       string        `json:"weighting"`
	Duration        time.Duration `json:"duration_ns"`
}
