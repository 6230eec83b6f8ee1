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

// Package comparison runs the same query against the index engine and a
// relational database and reports whether both return the same records.
package comparison

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/DataNirvana/Database-sub000/adapters/repos/kv/inverted"
	"github.com/DataNirvana/Database-sub000/adapters/repos/kv/roaringset"
	"github.com/DataNirvana/Database-sub000/entities/filters"
	"github.com/DataNirvana/Database-sub000/entities/schema"
)

// Row is one result row of a relational query keyed by column name.
type Row map[string]interface{}

// RelationalQuerier runs a parameterized query and reports how long the
// database took.
type RelationalQuerier interface {
	Query(ctx context.Context, query string, args ...interface{}) ([]Row, time.Duration, error)
}

type Searcher interface {
	Search(ctx context.Context, namespace string, plan filters.Plan, mode filters.CombineMode,
		info inverted.IndexInfo) (*roaringset.IDSet, error)
}

// Case is one query expressed for both sides.
type Case struct {
	Namespace string
	Plan      filters.Plan
	Mode      filters.CombineMode
	Info      inverted.IndexInfo

	Query    string
	Args     []interface{}
	IDColumn string
}

type Report struct {
	Namespace          string
	Plan               string
	EngineCount        int
	RelationalCount    int
	EngineDuration     time.Duration
	RelationalDuration time.Duration
	// Missing are ids only the relational side returned, Extra ids only the
	// engine returned.
	Missing []uint32
	Extra   []uint32
}

func (r Report) Agree() bool {
	return len(r.Missing) == 0 && len(r.Extra) == 0
}

func (r Report) String() string {
	return fmt.Sprintf("%s [%s]: engine %d ids in %s, relational %d ids in %s, agree=%t",
		r.Namespace, r.Plan, r.EngineCount, r.EngineDuration,
		r.RelationalCount, r.RelationalDuration, r.Agree())
}

type Runner struct {
	engine     Searcher
	relational RelationalQuerier
	logger     logrus.FieldLogger
}

func NewRunner(engine Searcher, relational RelationalQuerier, logger logrus.FieldLogger) *Runner {
	return &Runner{engine: engine, relational: relational, logger: logger}
}

// Compare runs c on both sides. A relational row whose id column is missing
// or not an id fails the comparison.
func (r *Runner) Compare(ctx context.Context, c Case) (Report, error) {
	report := Report{Namespace: c.Namespace, Plan: c.Plan.String()}
	if c.IDColumn == "" {
		return report, errors.New("comparison case has no id column")
	}

	before := time.Now()
	engineIDs, err := r.engine.Search(ctx, c.Namespace, c.Plan, c.Mode, c.Info)
	report.EngineDuration = time.Since(before)
	if err != nil {
		return report, errors.Wrap(err, "engine search")
	}

	rows, took, err := r.relational.Query(ctx, c.Query, c.Args...)
	report.RelationalDuration = took
	if err != nil {
		return report, errors.Wrap(err, "relational query")
	}

	relationalIDs := roaringset.New()
	for i, row := range rows {
		raw, ok := row[c.IDColumn]
		if !ok {
			return report, errors.Errorf("row %d has no column %q", i, c.IDColumn)
		}
		id, err := schema.CanonicalID(raw)
		if err != nil {
			return report, errors.Wrapf(err, "row %d", i)
		}
		relationalIDs.Add(id)
	}

	report.EngineCount = engineIDs.Len()
	report.RelationalCount = relationalIDs.Len()
	report.Missing = difference(relationalIDs, engineIDs)
	report.Extra = difference(engineIDs, relationalIDs)

	entry := r.logger.WithField("action", "compare").
		WithField("namespace", c.Namespace).
		WithField("plan", report.Plan).
		WithField("engine_took", report.EngineDuration).
		WithField("relational_took", report.RelationalDuration)
	if report.Agree() {
		entry.Debug("engine and relational results agree")
	} else {
		entry.WithField("missing", len(report.Missing)).
			WithField("extra", len(report.Extra)).
			Warn("engine and relational results differ")
	}
	return report, nil
}

func difference(a, b *roaringset.IDSet) []uint32 {
	var out []uint32
	for _, id := range a.IDs() {
		if !b.Contains(id) {
			out = append(out, id)
		}
	}
	return out
}
