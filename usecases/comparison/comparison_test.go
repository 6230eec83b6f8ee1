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

package comparison

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DataNirvana/Database-sub000/adapters/repos/kv/roaringset"
	"github.com/DataNirvana/Database-sub000/entities/filters"
)

const widgetQuery = "SELECT ID FROM Widget WHERE Price BETWEEN ? AND ? AND Name LIKE ?"

func widgetCase() Case {
	return Case{
		Namespace: "Widget",
		Plan:      filters.Plan{filters.ScoreBetween("Price", 1, 5), filters.TextPrefix("Name", "wi")},
		Mode:      filters.Intersect,
		Query:     widgetQuery,
		Args:      []interface{}{1.0, 5.0, "wi%"},
		IDColumn:  "ID",
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name    string
		engine  []uint32
		rows    []Row
		agree   bool
		missing []uint32
		extra   []uint32
	}{
		{
			name:   "same ids",
			engine: []uint32{1, 2},
			rows:   []Row{{"ID": int64(2)}, {"ID": int64(1)}},
			agree:  true,
		},
		{
			name:   "both empty",
			engine: nil,
			rows:   []Row{},
			agree:  true,
		},
		{
			name:    "engine misses a record",
			engine:  []uint32{1},
			rows:    []Row{{"ID": int32(1)}, {"ID": "2"}},
			missing: []uint32{2},
		},
		{
			name:   "engine returns an extra record",
			engine: []uint32{1, 2, 3},
			rows:   []Row{{"ID": uint32(1)}, {"ID": uint32(2)}},
			extra:  []uint32{3},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			logger, hook := newLogger()
			c := widgetCase()

			engine := &fakeSearcher{}
			engine.On("Search", c.Namespace, c.Plan, c.Mode).Return(roaringset.New(test.engine...), nil)
			relational := &fakeRelational{}
			relational.On("Query", widgetQuery, 1.0, 5.0, "wi%").Return(test.rows, 3*time.Millisecond, nil)

			report, err := NewRunner(engine, relational, logger).Compare(context.Background(), c)
			require.Nil(t, err)
			engine.AssertExpectations(t)
			relational.AssertExpectations(t)

			assert.Equal(t, test.agree, report.Agree())
			assert.Equal(t, test.missing, report.Missing)
			assert.Equal(t, test.extra, report.Extra)
			assert.Equal(t, len(test.engine), report.EngineCount)
			assert.Equal(t, len(test.rows), report.RelationalCount)
			assert.Equal(t, 3*time.Millisecond, report.RelationalDuration)

			if test.agree {
				assert.Equal(t, logrus.DebugLevel, hook.LastEntry().Level)
			} else {
				assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
			}
		})
	}
}

func TestCompareErrors(t *testing.T) {
	c := widgetCase()

	t.Run("engine fails", func(t *testing.T) {
		logger, _ := newLogger()
		engine := &fakeSearcher{}
		engine.On("Search", c.Namespace, c.Plan, c.Mode).Return(nil, errors.New("connection refused"))
		relational := &fakeRelational{}

		_, err := NewRunner(engine, relational, logger).Compare(context.Background(), c)
		assert.ErrorContains(t, err, "engine search")
		relational.AssertNotCalled(t, "Query")
	})

	t.Run("relational fails", func(t *testing.T) {
		logger, _ := newLogger()
		engine := &fakeSearcher{}
		engine.On("Search", c.Namespace, c.Plan, c.Mode).Return(roaringset.New(1), nil)
		relational := &fakeRelational{}
		relational.On("Query", widgetQuery, 1.0, 5.0, "wi%").Return(nil, time.Duration(0), errors.New("syntax error"))

		_, err := NewRunner(engine, relational, logger).Compare(context.Background(), c)
		assert.ErrorContains(t, err, "relational query")
	})

	t.Run("rows without ids", func(t *testing.T) {
		for _, rows := range [][]Row{
			{{"id": 1}},
			{{"ID": "one"}},
		} {
			logger, _ := newLogger()
			engine := &fakeSearcher{}
			engine.On("Search", c.Namespace, c.Plan, c.Mode).Return(roaringset.New(1), nil)
			relational := &fakeRelational{}
			relational.On("Query", widgetQuery, 1.0, 5.0, "wi%").Return(rows, time.Millisecond, nil)

			_, err := NewRunner(engine, relational, logger).Compare(context.Background(), c)
			assert.Error(t, err)
		}
	})

	t.Run("no id column", func(t *testing.T) {
		logger, _ := newLogger()
		noColumn := c
		noColumn.IDColumn = ""
		_, err := NewRunner(&fakeSearcher{}, &fakeRelational{}, logger).Compare(context.Background(), noColumn)
		assert.Error(t, err)
	})
}

func newLogger() (*logrus.Logger, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return logger, hook
}
