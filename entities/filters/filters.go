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

package filters

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/DataNirvana/Database-sub000/entities/schema"
)

type Operator int

const (
	OperatorEqual Operator = iota + 1
	OperatorGreaterThanEqual
	OperatorLessThanEqual
	OperatorBetween
	OperatorPrimaryKey
)

func (o Operator) Name() string {
	switch o {
	case OperatorEqual:
		return "Equal"
	case OperatorGreaterThanEqual:
		return "GreaterThanEqual"
	case OperatorLessThanEqual:
		return "LessThanEqual"
	case OperatorBetween:
		return "Between"
	case OperatorPrimaryKey:
		return "PrimaryKey"
	default:
		panic("Unknown operator")
	}
}

func (o Operator) symbol() string {
	switch o {
	case OperatorEqual:
		return "="
	case OperatorGreaterThanEqual:
		return ">="
	case OperatorLessThanEqual:
		return "<="
	case OperatorBetween:
		return "between"
	default:
		return "pk"
	}
}

// IsRange reports whether the operator selects an interval with at least one
// open end.
func (o Operator) IsRange() bool {
	return o == OperatorGreaterThanEqual || o == OperatorLessThanEqual
}

type CombineMode int

const (
	Intersect CombineMode = iota
	Union
)

func (m CombineMode) Name() string {
	if m == Union {
		return "union"
	}
	return "intersect"
}

func ParseCombineMode(in string) (CombineMode, error) {
	switch strings.ToLower(in) {
	case "", "intersect", "and":
		return Intersect, nil
	case "union", "or":
		return Union, nil
	default:
		return Intersect, fmt.Errorf("unrecognized combine mode %q", in)
	}
}

// Pattern is a single predicate on one field. Which value fields are
// relevant depends on Kind and Operator: Score for equality and half-open
// ranges, Min and Max for Between, Text for text buckets, Bool for boolean
// buckets and ID for primary-key lookups. DateTime bounds are tick counts.
type Pattern struct {
	Field    string
	Kind     schema.IndexKind
	Operator Operator
	Score    float64
	Min      float64
	Max      float64
	Text     string
	Bool     bool
	ID       uint32
}

func PrimaryKey(field string, id uint32) Pattern {
	return Pattern{Field: field, Kind: schema.IndexKindPrimaryKey, Operator: OperatorPrimaryKey, ID: id}
}

func ScoreEqual(field string, v float64) Pattern {
	return Pattern{Field: field, Kind: schema.IndexKindScore, Operator: OperatorEqual, Score: v}
}

func ScoreAtLeast(field string, v float64) Pattern {
	return Pattern{Field: field, Kind: schema.IndexKindScore, Operator: OperatorGreaterThanEqual, Score: v}
}

func ScoreAtMost(field string, v float64) Pattern {
	return Pattern{Field: field, Kind: schema.IndexKindScore, Operator: OperatorLessThanEqual, Score: v}
}

func ScoreBetween(field string, min, max float64) Pattern {
	return Pattern{Field: field, Kind: schema.IndexKindScore, Operator: OperatorBetween, Min: min, Max: max}
}

// DateTimeEqual matches t on its float64 tick score. Present-day ticks exceed
// 2^53, so scores step in 128 ticks (12.8µs) and instants closer than that
// compare equal.
func DateTimeEqual(field string, t time.Time) Pattern {
	return Pattern{Field: field, Kind: schema.IndexKindDateTime, Operator: OperatorEqual, Score: ticks(t)}
}

func DateTimeAtLeast(field string, t time.Time) Pattern {
	return Pattern{Field: field, Kind: schema.IndexKindDateTime, Operator: OperatorGreaterThanEqual, Score: ticks(t)}
}

func DateTimeAtMost(field string, t time.Time) Pattern {
	return Pattern{Field: field, Kind: schema.IndexKindDateTime, Operator: OperatorLessThanEqual, Score: ticks(t)}
}

func DateTimeBetween(field string, from, to time.Time) Pattern {
	return Pattern{
		Field: field, Kind: schema.IndexKindDateTime, Operator: OperatorBetween,
		Min: ticks(from), Max: ticks(to),
	}
}

func BoolEqual(field string, v bool) Pattern {
	return Pattern{Field: field, Kind: schema.IndexKindBool, Operator: OperatorEqual, Bool: v}
}

// TextPrefix matches records whose field falls into the same fixed-width
// prefix bucket as v.
func TextPrefix(field string, v string) Pattern {
	return Pattern{Field: field, Kind: schema.IndexKindText, Operator: OperatorEqual, Text: v}
}

// ticks is the score of t. It is exact only within ±2^53 ticks of year 1.
func ticks(t time.Time) float64 {
	return float64(schema.Ticks(t))
}

// Bounds returns the inclusive score interval selected by a Score or
// DateTime pattern. Open ends are infinite.
func (p Pattern) Bounds() (float64, float64) {
	switch p.Operator {
	case OperatorGreaterThanEqual:
		return p.Score, math.Inf(1)
	case OperatorLessThanEqual:
		return math.Inf(-1), p.Score
	case OperatorBetween:
		return p.Min, p.Max
	default:
		return p.Score, p.Score
	}
}

func (p Pattern) Validate() error {
	if p.Field == "" {
		return fmt.Errorf("pattern has no field")
	}

	switch p.Kind {
	case schema.IndexKindPrimaryKey:
		if p.Operator != OperatorPrimaryKey {
			return fmt.Errorf("%s: primary key patterns only support the PrimaryKey operator", p)
		}
	case schema.IndexKindBool, schema.IndexKindText:
		if p.Operator != OperatorEqual {
			return fmt.Errorf("%s: %s patterns only support the Equal operator", p, p.Kind.Name())
		}
	case schema.IndexKindScore, schema.IndexKindDateTime:
		if p.Operator == OperatorPrimaryKey || p.Operator < OperatorEqual || p.Operator > OperatorPrimaryKey {
			return fmt.Errorf("%s: invalid operator for %s pattern", p, p.Kind.Name())
		}
		min, max := p.Bounds()
		if math.IsNaN(min) || math.IsNaN(max) {
			return fmt.Errorf("%s: bound is not a number", p)
		}
		if min > max {
			return fmt.Errorf("%s: lower bound exceeds upper bound", p)
		}
	default:
		return fmt.Errorf("pattern on %q has unknown kind %d", p.Field, int(p.Kind))
	}

	return nil
}

// String renders the predicate for log lines and error messages.
func (p Pattern) String() string {
	switch p.Kind {
	case schema.IndexKindPrimaryKey:
		return fmt.Sprintf("%s pk %d", p.Field, p.ID)
	case schema.IndexKindBool:
		return fmt.Sprintf("%s = %t", p.Field, p.Bool)
	case schema.IndexKindText:
		return fmt.Sprintf("%s starts %q", p.Field, p.Text)
	case schema.IndexKindDateTime:
		if p.Operator == OperatorBetween {
			return fmt.Sprintf("%s between %s and %s", p.Field, formatTicks(p.Min), formatTicks(p.Max))
		}
		return fmt.Sprintf("%s %s %s", p.Field, p.Operator.symbol(), formatTicks(p.Score))
	default:
		if p.Operator == OperatorBetween {
			return fmt.Sprintf("%s between %s and %s", p.Field, formatScore(p.Min), formatScore(p.Max))
		}
		return fmt.Sprintf("%s %s %s", p.Field, p.Operator.symbol(), formatScore(p.Score))
	}
}

func formatScore(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func formatTicks(f float64) string {
	return schema.FromTicks(int64(f)).Format(time.RFC3339Nano)
}

// Plan is the list of predicates of one query. The searcher reorders a copy
// by selectivity before evaluating it.
type Plan []Pattern

func (p Plan) HasPrimaryKey() bool {
	return p.PrimaryKeyIndex() >= 0
}

// PrimaryKeyIndex returns the position of the first primary-key pattern or
// -1.
func (p Plan) PrimaryKeyIndex() int {
	for i, pattern := range p {
		if pattern.Kind == schema.IndexKindPrimaryKey {
			return i
		}
	}
	return -1
}

func (p Plan) Validate() error {
	if len(p) == 0 {
		return fmt.Errorf("plan has no patterns")
	}
	for _, pattern := range p {
		if err := pattern.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (p Plan) String() string {
	parts := make([]string, len(p))
	for i, pattern := range p {
		parts[i] = pattern.String()
	}
	return strings.Join(parts, ", ")
}
