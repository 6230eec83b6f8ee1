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
	"sort"

	"github.com/DataNirvana/Database-sub000/entities/filters"
	"github.com/DataNirvana/Database-sub000/entities/schema"
)

// heuristicRank orders patterns when nothing is known about their indexes.
// Lower ranks are expected to be more selective.
func heuristicRank(p filters.Pattern) int {
	switch p.Kind {
	case schema.IndexKindPrimaryKey:
		return 0
	case schema.IndexKindText:
		return 1
	case schema.IndexKindScore, schema.IndexKindDateTime:
		switch p.Operator {
		case filters.OperatorEqual:
			return 2
		case filters.OperatorBetween:
			return 3
		default:
			return 4
		}
	case schema.IndexKindBool:
		return 5
	default:
		return 6
	}
}

// estimate returns the expected number of matches of p, and false if info
// does not describe p's index well enough to tell.
func estimate(p filters.Pattern, info IndexInfo) (float64, bool) {
	if p.Kind == schema.IndexKindPrimaryKey {
		return 0, true
	}

	d, ok := info[p.Field]
	if !ok || !d.Exists {
		return 0, false
	}

	card := float64(d.Cardinality)
	switch p.Kind {
	case schema.IndexKindScore, schema.IndexKindDateTime:
		if !d.HasBounds {
			return 0, false
		}
		min, max := p.Bounds()
		lo, hi := math.Max(min, d.Min), math.Min(max, d.Max)
		switch {
		case lo > hi:
			return 0, true
		case d.Max == d.Min:
			return card, true
		case lo == hi:
			return math.Min(1, card), true
		default:
			return card * (hi - lo) / (d.Max - d.Min), true
		}
	case schema.IndexKindBool:
		return card / 2, true
	case schema.IndexKindText:
		return card / math.Max(1, float64(d.Buckets)), true
	default:
		return 0, false
	}
}

// SortPlan returns a copy of plan ordered by expected selectivity, most
// selective first. Primary-key patterns always lead. With info, patterns
// whose index is described are ordered by estimated match count and come
// before the others; the remaining ties keep the heuristic order PK, Text,
// score equality, bounded range, half-open range, Bool.
func SortPlan(plan filters.Plan, info IndexInfo) filters.Plan {
	type ranked struct {
		pattern  filters.Pattern
		class    int
		estimate float64
		rank     int
	}

	items := make([]ranked, len(plan))
	for i, p := range plan {
		item := ranked{pattern: p, class: 2, rank: heuristicRank(p)}
		if p.Kind == schema.IndexKindPrimaryKey {
			item.class = 0
		} else if est, ok := estimate(p, info); ok {
			item.class, item.estimate = 1, est
		}
		items[i] = item
	}

	sort.SliceStable(items, func(a, b int) bool {
		if items[a].class != items[b].class {
			return items[a].class < items[b].class
		}
		if items[a].estimate != items[b].estimate {
			return items[a].estimate < items[b].estimate
		}
		return items[a].rank < items[b].rank
	})

	out := make(filters.Plan, len(items))
	for i, item := range items {
		out[i] = item.pattern
	}
	return out
}
