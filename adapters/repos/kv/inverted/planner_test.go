//                           _       _
// __      _____  __ ___   ___  __ _| |_ ___
// \ \ /\ / / _ \/ _` \ \ / / |/ _` | __/ _ \
//  \ V  V /  __/ (_| |\ V /| | (_| | ||  __/
//   \_/\_/ \___|\__,_| \_/ |_|\__,_|\__\___|
//
//  Copyright © 2016 - 2024 Weaviate B.V. All rights reserved.
//
//  CONTACT: hello@weaviate.io
//

package inverted

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/DataNirvana/Database-sub000/entities/filters"
	"github.com/DataNirvana/Database-sub000/entities/schema"
)

func TestSortPlanHeuristic(t *testing.T) {
	plan := filters.Plan{
		filters.BoolEqual("Active", true),
		filters.ScoreAtLeast("Price", 3),
		filters.ScoreBetween("Price", 1, 2),
		filters.DateTimeEqual("Created", epoch),
		filters.TextPrefix("Name", "wi"),
		filters.PrimaryKey("ID", 9),
	}

	sorted := SortPlan(plan, nil)
	assert.Equal(t, filters.Plan{
		filters.PrimaryKey("ID", 9),
		filters.TextPrefix("Name", "wi"),
		filters.DateTimeEqual("Created", epoch),
		filters.ScoreBetween("Price", 1, 2),
		filters.ScoreAtLeast("Price", 3),
		filters.BoolEqual("Active", true),
	}, sorted)

	assert.Equal(t, filters.BoolEqual("Active", true), plan[0], "the input plan is not reordered")
}

func TestSortPlanWithIndexInfo(t *testing.T) {
	info := IndexInfo{
		"Price":  {Kind: schema.IndexKindScore, Exists: true, Cardinality: 1000, Min: 0, Max: 100, HasBounds: true},
		"Name":   {Kind: schema.IndexKindText, Exists: true, Cardinality: 1000, Buckets: 4},
		"Active": {Kind: schema.IndexKindBool, Exists: true, Cardinality: 1000, Buckets: 2},
	}

	sorted := SortPlan(filters.Plan{
		filters.TextPrefix("Name", "wi"),
		filters.BoolEqual("Active", true),
		filters.ScoreBetween("Price", 10, 20),
		filters.DateTimeAtLeast("Created", epoch),
	}, info)

	assert.Equal(t, filters.Plan{
		filters.ScoreBetween("Price", 10, 20),
		filters.TextPrefix("Name", "wi"),
		filters.BoolEqual("Active", true),
		filters.DateTimeAtLeast("Created", epoch),
	}, sorted, "estimated 100, 250 and 500 matches, then the undescribed field")
}

func TestEstimate(t *testing.T) {
	score := IndexDescriptor{Kind: schema.IndexKindScore, Exists: true, Cardinality: 200, Min: 10, Max: 20, HasBounds: true}
	single := IndexDescriptor{Kind: schema.IndexKindScore, Exists: true, Cardinality: 50, Min: 5, Max: 5, HasBounds: true}

	type testCase struct {
		name     string
		pattern  filters.Pattern
		info     IndexInfo
		expected float64
		known    bool
	}

	testCases := []testCase{
		{"primary key", filters.PrimaryKey("ID", 1), nil, 0, true},
		{"undescribed field", filters.ScoreAtLeast("Price", 1), nil, 0, false},
		{"missing index", filters.ScoreAtLeast("Price", 1), IndexInfo{"Price": {Kind: schema.IndexKindScore}}, 0, false},
		{"no bounds", filters.ScoreAtLeast("Price", 1), IndexInfo{"Price": {Kind: schema.IndexKindScore, Exists: true}}, 0, false},
		{"half of the range", filters.ScoreBetween("Price", 15, 30), IndexInfo{"Price": score}, 100, true},
		{"open upper end", filters.ScoreAtLeast("Price", 12), IndexInfo{"Price": score}, 160, true},
		{"open lower end", filters.ScoreAtMost("Price", 11), IndexInfo{"Price": score}, 20, true},
		{"disjoint", filters.ScoreBetween("Price", 21, 30), IndexInfo{"Price": score}, 0, true},
		{"point", filters.ScoreEqual("Price", 15), IndexInfo{"Price": score}, 1, true},
		{"single valued index", filters.ScoreAtLeast("Price", 1), IndexInfo{"Price": single}, 50, true},
		{"bool", filters.BoolEqual("Active", true), IndexInfo{"Active": {Kind: schema.IndexKindBool, Exists: true, Cardinality: 30}}, 15, true},
		{"text", filters.TextPrefix("Name", "wi"), IndexInfo{"Name": {Kind: schema.IndexKindText, Exists: true, Cardinality: 30, Buckets: 3}}, 10, true},
		{"text without buckets", filters.TextPrefix("Name", "wi"), IndexInfo{"Name": {Kind: schema.IndexKindText, Exists: true, Cardinality: 30}}, 30, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, known := estimate(tc.pattern, tc.info)
			assert.Equal(t, tc.known, known)
			assert.InDelta(t, tc.expected, got, 1e-9)
		})
	}

	t.Run("datetime ranges use tick bounds", func(t *testing.T) {
		lo, hi := float64(schema.Ticks(epoch)), float64(schema.Ticks(epoch.Add(10*time.Hour)))
		info := IndexInfo{"Created": {Kind: schema.IndexKindDateTime, Exists: true, Cardinality: 10, Min: lo, Max: hi, HasBounds: true}}

		got, known := estimate(filters.DateTimeAtLeast("Created", epoch.Add(5*time.Hour)), info)
		assert.True(t, known)
		assert.InDelta(t, 5, got, 1e-6)
		assert.False(t, math.IsNaN(got))
	})
}
