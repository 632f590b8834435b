// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

package jobs

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/tomtom215/friendrec/internal/recommend"
)

// Artifact is the materialized output of a completed job. It holds only
// data determined by the inputs and N, so identical inputs encode to
// identical bytes. Job identity and timing live on the Snapshot.
type Artifact struct {
	N int `json:"n"`

	// Order lists every user in natural order and fixes the text layout.
	Order []string `json:"order"`

	// Recommendations maps each user to its ranked list. Users without
	// candidates map to an empty list.
	Recommendations map[string][]recommend.Recommendation `json:"recommendations"`

	Stats ArtifactStats `json:"stats"`
}

// ArtifactStats are the run counters that do not vary between runs.
type ArtifactStats struct {
	Users           int    `json:"users"`
	Edges           int    `json:"edges"`
	Shards          int    `json:"shards"`
	Recommendations int    `json:"recommendations"`
	Weighting       string `json:"weighting"`
}

// NewArtifact builds the artifact for a finished run.
func NewArtifact(n int, res *recommend.Result) *Artifact {
	return &Artifact{
		N:               n,
		Order:           res.Order,
		Recommendations: res.ByUser,
		Stats: ArtifactStats{
			Users:           res.Stats.Users,
			Edges:           res.Stats.Edges,
			Shards:          res.Stats.Shards,
			Recommendations: res.Stats.Recommendations,
			Weighting:       res.Stats.Weighting,
		},
	}
}

// Encode serializes the artifact for storage.
func (a *Artifact) Encode() ([]byte, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal artifact: %w", err)
	}
	return data, nil
}

// DecodeArtifact parses a stored artifact.
func DecodeArtifact(data []byte) (*Artifact, error) {
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("unmarshal artifact: %w", err)
	}
	if a.Recommendations == nil {
		a.Recommendations = make(map[string][]recommend.Recommendation)
	}
	return &a, nil
}

// WriteText writes the download format: one "user candidate, score" line
// per recommendation, users in natural order, each user's lines in rank
// order. Users without recommendations produce no lines.
func (a *Artifact) WriteText(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, u := range a.Order {
		for _, r := range a.Recommendations[u] {
			if _, err := fmt.Fprintf(bw, "%s %s, %s\n", u, r.Candidate, formatScore(r.Score)); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

func formatScore(s float64) string {
	return strconv.FormatFloat(s, 'f', -1, 64)
}
