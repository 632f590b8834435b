// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

package graph

import (
	"errors"
	"fmt"
	"sort"
)

// Graph construction errors.
var (
	// ErrUnknownUser is returned when an edge references a user that was never added.
	ErrUnknownUser = errors.New("unknown user")

	// ErrInvalidEdge is returned for self-loops.
	ErrInvalidEdge = errors.New("invalid edge")

	// ErrInvalidUser is returned for empty user identifiers.
	ErrInvalidUser = errors.New("invalid user")

	// ErrFrozen is returned when mutating a graph after Freeze.
	ErrFrozen = errors.New("graph is frozen")
)

// Set is a set of user identifiers.
type Set map[string]struct{}

// Has reports whether id is in the set.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// node holds the adjacency and attributes for one user.
type node struct {
	attrs   map[string]string
	friends Set
}

// Graph is an undirected friendship graph with optional per-user attributes.
//
// A Graph is not safe for concurrent mutation. Once Freeze has been called
// it is read-only and may be shared by any number of readers.
type Graph struct {
	users  map[string]*node
	edges  int
	frozen bool
	order  []string
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{users: make(map[string]*node)}
}

// AddUser adds a user. Adding an existing user merges attrs into the
// existing attribute map, later values winning.
func (g *Graph) AddUser(id string, attrs map[string]string) error {
	if g.frozen {
		return ErrFrozen
	}
	if id == "" {
		return ErrInvalidUser
	}

	n, ok := g.users[id]
	if !ok {
		n = &node{friends: make(Set)}
		g.users[id] = n
	}
	if len(attrs) > 0 {
		if n.attrs == nil {
			n.attrs = make(map[string]string, len(attrs))
		}
		for k, v := range attrs {
			n.attrs[k] = v
		}
	}
	return nil
}

// AddEdge records a friendship between a and b. Both users must already
// exist. Adding an edge that is already present is a no-op.
func (g *Graph) AddEdge(a, b string) error {
	if g.frozen {
		return ErrFrozen
	}
	if a == b {
		return fmt.Errorf("%w: self-loop on %q", ErrInvalidEdge, a)
	}

	na, ok := g.users[a]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownUser, a)
	}
	nb, ok := g.users[b]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownUser, b)
	}

	if na.friends.Has(b) {
		return nil
	}
	na.friends[b] = struct{}{}
	nb.friends[a] = struct{}{}
	g.edges++
	return nil
}

// Neighbors returns the friends of id. The returned set is owned by the
// graph and must not be modified. Unknown users have no neighbors.
func (g *Graph) Neighbors(id string) Set {
	if n, ok := g.users[id]; ok {
		return n.friends
	}
	return nil
}

// HasEdge reports whether a and b are friends.
func (g *Graph) HasEdge(a, b string) bool {
	n, ok := g.users[a]
	if !ok {
		return false
	}
	return n.friends.Has(b)
}

// Attributes returns the attributes of id, or nil if it has none.
// The returned map must not be modified.
func (g *Graph) Attributes(id string) map[string]string {
	if n, ok := g.users[id]; ok {
		return n.attrs
	}
	return nil
}

// HasUser reports whether id is a known user.
func (g *Graph) HasUser(id string) bool {
	_, ok := g.users[id]
	return ok
}

// Degree returns the number of friends of id.
func (g *Graph) Degree(id string) int {
	return len(g.Neighbors(id))
}

// NumUsers returns the number of users.
func (g *Graph) NumUsers() int {
	return len(g.users)
}

// NumEdges returns the number of distinct undirected edges.
func (g *Graph) NumEdges() int {
	return g.edges
}

// Users returns all user identifiers in natural order (see Less).
// The result is cached once the graph is frozen.
func (g *Graph) Users() []string {
	if g.frozen && g.order != nil {
		return g.order
	}
	ids := make([]string, 0, len(g.users))
	for id := range g.users {
		ids = append(ids, id)
	}
	SortIDs(ids)
	if g.frozen {
		g.order = ids
	}
	return ids
}

// Freeze marks the graph read-only.
func (g *Graph) Freeze() {
	if g.frozen {
		return
	}
	g.frozen = true
	g.order = nil
	g.order = g.Users()
}

// Frozen reports whether Freeze has been called.
func (g *Graph) Frozen() bool {
	return g.frozen
}

// SortIDs sorts identifiers in natural order.
func SortIDs(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		return Less(ids[i], ids[j])
	})
}
