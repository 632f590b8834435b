// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

package ingest

import (
	"fmt"
	"strings"
)

// parseEdgeRecord parses one edge record. It returns a non-empty reason
// when the record is malformed.
//
// Accepted layouts:
//
//	A B          pair
//	A,B          pair
//	A, B         pair
//	A B1,B2,B3   adjacency list
func parseEdgeRecord(text string) (user string, friends []string, reason string) {
	fields := strings.Fields(text)

	// "A, B" is the comma pair form with padding after the comma.
	if len(fields) > 1 && strings.HasSuffix(fields[0], ",") {
		fields = []string{strings.Join(fields, "")}
	}

	if len(fields) == 1 {
		parts := strings.Split(fields[0], ",")
		if len(parts) != 2 {
			return "", nil, fmt.Sprintf("wrong field count: want 2 identifiers, got %d", len(parts))
		}
		if parts[0] == "" || parts[1] == "" {
			return "", nil, "empty identifier"
		}
		return parts[0], parts[1:], ""
	}

	user = fields[0]
	if strings.Contains(user, ",") {
		return "", nil, fmt.Sprintf("invalid identifier %q", user)
	}

	rest := strings.Join(fields[1:], " ")
	for _, raw := range strings.Split(rest, ",") {
		id := strings.TrimSpace(raw)
		if id == "" {
			return "", nil, "empty identifier"
		}
		if strings.ContainsAny(id, " \t") {
			return "", nil, fmt.Sprintf("wrong field count: identifiers %q must be comma-separated", id)
		}
		friends = append(friends, id)
	}
	return user, friends, ""
}

// parseDemographicRecord parses "ID v1, v2, ..." (or "ID,v1,v2,...")
// against the attribute schema.
func parseDemographicRecord(text string, names []string) (id string, attrs map[string]string, reason string) {
	cut := strings.IndexAny(text, " \t,")
	if cut <= 0 {
		if cut == 0 {
			return "", nil, "empty identifier"
		}
		return "", nil, fmt.Sprintf("wrong field count: want %d attributes, got 0", len(names))
	}

	id = text[:cut]
	values := strings.Split(strings.TrimSpace(text[cut+1:]), ",")
	if len(values) != len(names) {
		return "", nil, fmt.Sprintf("wrong field count: want %d attributes, got %d", len(names), len(values))
	}

	attrs = make(map[string]string, len(names))
	for i, raw := range values {
		v := strings.TrimSpace(raw)
		if v == "" {
			return "", nil, fmt.Sprintf("empty value for attribute %q", names[i])
		}
		attrs[names[i]] = v
	}
	return id, attrs, ""
}
