// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

package recommend

import (
	"math"
	"testing"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestLinearWeighting(t *testing.T) {
	w := LinearWeighting{Weight: 0.5}
	tests := []struct {
		name        string
		a, b        map[string]string
		wantScore   float64
		wantMatched int
	}{
		{"nil source", nil, map[string]string{"city": "X"}, 0, 0},
		{"nil candidate", map[string]string{"city": "X"}, nil, 0, 0},
		{"one match", map[string]string{"city": "X", "age": "1"}, map[string]string{"city": "X", "age": "2"}, 0.5, 1},
		{"all match", map[string]string{"city": "X", "age": "1"}, map[string]string{"city": "X", "age": "1"}, 1, 2},
		{"disjoint keys", map[string]string{"city": "X"}, map[string]string{"age": "X"}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, matched := w.Demographic(tt.a, tt.b)
			if !approx(score, tt.wantScore) || matched != tt.wantMatched {
				t.Errorf("Demographic() = (%v, %d), want (%v, %d)", score, matched, tt.wantScore, tt.wantMatched)
			}
		})
	}
}

func TestProbability(t *testing.T) {
	person := func(gender, age, city, edu string) map[string]string {
		return map[string]string{"gender": gender, "age": age, "city": city, "education": edu}
	}

	tests := []struct {
		name string
		a, b map[string]string
		want float64
	}{
		{"missing side", nil, person("1", "20", "0", "1"), 0},
		{"everything aligned clamps to 1", person("1", "20", "0", "1"), person("1", "22", "0", "1"), 1},
		{"different gender, mid gap", person("1", "20", "0", "0"), person("0", "27", "1", "0"), 0.3},
		{"large gap clamps to 0", person("1", "20", "0", "0"), person("0", "60", "1", "0"), 0},
		{"one educated", person("1", "30", "2", "1"), person("1", "50", "3", "0"), 0.2},
		{"unparsable age ignored", person("0", "old", "2", "0"), person("0", "30", "2", "0"), 0.8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Probability(tt.a, tt.b); !approx(got, tt.want) {
				t.Errorf("Probability() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"probability weighting", func(c *Config) { c.Weighting = WeightingProbability }, false},
		{"negative weight", func(c *Config) { c.DemographicWeight = -1 }, true},
		{"unknown weighting", func(c *Config) { c.Weighting = "cosine" }, true},
		{"zero shard size", func(c *Config) { c.ShardSize = 0 }, true},
		{"zero workers", func(c *Config) { c.Workers = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_NewWeighting(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DemographicWeight = 2
	w, err := cfg.NewWeighting()
	if err != nil {
		t.Fatal(err)
	}
	if lw, ok := w.(LinearWeighting); !ok || lw.Weight != 2 {
		t.Errorf("NewWeighting() = %#v, want LinearWeighting{2}", w)
	}

	cfg.Weighting = WeightingProbability
	w, err = cfg.NewWeighting()
	if err != nil {
		t.Fatal(err)
	}
	if w.Name() != WeightingProbability {
		t.Errorf("Name() = %q, want %q", w.Name(), WeightingProbability)
	}
}
