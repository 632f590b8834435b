// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

// Package recommend scores friend-of-a-friend candidates over a frozen
// graph.Graph and runs the scorer across every user in sharded batches.
//
// # Scoring
//
// For a source user u the candidate set is the 2-hop neighborhood:
// friends of u's friends, minus u and minus u's existing friends. Each
// candidate c is scored as
//
//	score(c) = mutual(u, c) + Weighting(attrs(u), attrs(c))
//
// where mutual is the number of shared friends. Two weightings ship:
//
//   - LinearWeighting: weight * (number of equal attribute values)
//   - ProbabilityWeighting: weight * friendship probability derived from
//     gender, age gap, city and education
//
// Ranking is score descending, then identifier ascending in natural
// order (graph.Less), so output is a total order independent of map
// iteration.
//
// # Sharding
//
// Runner splits the user list into contiguous shards over the natural
// order. Shards run on a bounded errgroup; each writes only its own slot,
// and the merge concatenates slots in shard order. The graph is read-only
// throughout, so no locks are taken on it.
//
// # Usage
//
//	runner, err := recommend.NewRunner(recommend.DefaultConfig(), logger)
//	if err != nil {
//	    return err
//	}
//	result, err := runner.Run(ctx, g, 10)
//
// # Thread Safety
//
// Scorer and Runner hold no mutable state after construction and are safe
// for concurrent use.
package recommend
