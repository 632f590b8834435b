// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

package recommend

import (
	"container/heap"
	"sort"

	"github.com/tomtom215/friendrec/internal/graph"
)

// ranksBefore reports whether a ranks ahead of b: higher score first,
// then candidate identifier in natural order.
func ranksBefore(a, b *Recommendation) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return graph.Less(a.Candidate, b.Candidate)
}

// worstFirst is a heap whose root is the lowest-ranked recommendation.
type worstFirst []Recommendation

func (h worstFirst) Len() int           { return len(h) }
func (h worstFirst) Less(i, j int) bool { return ranksBefore(&h[j], &h[i]) }
func (h worstFirst) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *worstFirst) Push(x any) {
	*h = append(*h, x.(Recommendation)) //nolint:errcheck,forcetypeassert // heap only receives Recommendation
}

func (h *worstFirst) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// topN keeps the n best recommendations seen so far.
// O(log n) per offer, O(n log n) to drain.
type topN struct {
	n int
	h worstFirst
}

func newTopN(n int) *topN {
	return &topN{n: n, h: make(worstFirst, 0, min(n, 64))}
}

func (t *topN) offer(r Recommendation) {
	if t.n <= 0 {
		return
	}
	if len(t.h) < t.n {
		heap.Push(&t.h, r)
		return
	}
	if ranksBefore(&r, &t.h[0]) {
		t.h[0] = r
		heap.Fix(&t.h, 0)
	}
}

// sorted returns the kept recommendations best first.
func (t *topN) sorted() []Recommendation {
	out := make([]Recommendation, len(t.h))
	copy(out, t.h)
	sort.Slice(out, func(i, j int) bool { return ranksBefore(&out[i], &out[j]) })
	return out
}
