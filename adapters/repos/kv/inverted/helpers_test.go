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
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/DataNirvana/Database-sub000/adapters/repos/kv/bulk"
	"github.com/DataNirvana/Database-sub000/adapters/repos/kv/fanout"
	"github.com/DataNirvana/Database-sub000/adapters/repos/kv/keys"
	"github.com/DataNirvana/Database-sub000/adapters/repos/kv/pool"
	"github.com/DataNirvana/Database-sub000/entities/schema"
	"github.com/DataNirvana/Database-sub000/usecases/config"
)

const widgets = "Widget"

type fixture struct {
	mr       *miniredis.Miniredis
	hook     *test.Hook
	pool     *pool.Pool
	builder  *Builder
	searcher *Searcher
}

func newFixture(t *testing.T, query config.Query, chunkSize int) *fixture {
	mr := miniredis.RunT(t)
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	cfg := config.Default()
	cfg.Pool.Endpoints = []string{mr.Addr()}
	cfg.Pool.Size = 2
	cfg.Pool.RequestTimeout = config.Duration(5 * time.Second)
	cfg.Pool.ConnectRetries = 1
	p, err := pool.Connect(context.Background(), cfg.Pool, logger)
	require.Nil(t, err)
	t.Cleanup(func() { p.Disconnect() })

	if query.MissingIndex == "" {
		query.MissingIndex = config.MissingIndexFail
	}

	collector := fanout.NewCollector(64, 5*time.Second, logger, nil)
	writer := bulk.NewWriter(p, collector, config.Chunking{ChunkSize: chunkSize, PauseThreshold: 1 << 30}, 3, logger, nil)

	return &fixture{
		mr:       mr,
		hook:     hook,
		pool:     p,
		builder:  NewBuilder(p, writer, query.TextPrefixWidth, logger),
		searcher: NewSearcher(p, collector, query, logger, nil),
	}
}

func defaultQuery() config.Query {
	return config.Default().Query
}

type widget struct {
	id      uint32
	price   float64
	name    string
	active  bool
	created time.Time
}

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func sampleWidgets() []widget {
	return []widget{
		{1, 2.50, "wind", true, epoch},
		{2, 4.00, "wing", false, epoch.Add(24 * time.Hour)},
		{3, 9.99, "wolf", true, epoch.Add(48 * time.Hour)},
	}
}

func widgetClass() *schema.Class {
	return &schema.Class{
		Name: widgets,
		Properties: []schema.Property{
			{Name: "ID", DataType: schema.DataTypeUint32},
			{Name: "Price", DataType: schema.DataTypeDouble},
			{Name: "Name", DataType: schema.DataTypeString},
			{Name: "Active", DataType: schema.DataTypeBool},
			{Name: "Created", DataType: schema.DataTypeDateTime},
		},
	}
}

// storeWidgets writes the record hashes and the primary-key set directly.
func (f *fixture) storeWidgets(t *testing.T, ws []widget) {
	for _, w := range ws {
		id := strconv.FormatUint(uint64(w.id), 10)
		f.mr.HSet(keys.Record(widgets, w.id),
			"ID", id,
			"Price", strconv.FormatFloat(w.price, 'g', -1, 64),
			"Name", w.name,
			"Active", schema.EncodeBool(w.active),
			"Created", strconv.FormatInt(schema.Ticks(w.created), 10),
		)
		_, err := f.mr.SetAdd(keys.PrimaryKeySet(widgets), id)
		require.Nil(t, err)
	}
}

// buildIndexes builds the indexes of the named fields, or all of them.
func (f *fixture) buildIndexes(t *testing.T, ws []widget, fields ...string) {
	if len(fields) == 0 {
		fields = []string{"Price", "Name", "Active", "Created"}
	}
	ctx := context.Background()

	for _, field := range fields {
		var (
			ok  bool
			err error
		)
		switch field {
		case "Price":
			pairs := make([]ScorePair, len(ws))
			for i, w := range ws {
				pairs[i] = ScorePair{ID: w.id, Value: w.price}
			}
			ok, err = f.builder.BuildScoreIndex(ctx, widgets, field, schema.DataTypeDouble, pairs)
		case "Name":
			pairs := make([]TextPair, len(ws))
			for i, w := range ws {
				pairs[i] = TextPair{ID: w.id, Value: w.name}
			}
			ok, err = f.builder.BuildTextIndex(ctx, widgets, field, pairs)
		case "Active":
			pairs := make([]BoolPair, len(ws))
			for i, w := range ws {
				pairs[i] = BoolPair{ID: w.id, Value: w.active}
			}
			ok, err = f.builder.BuildBoolIndex(ctx, widgets, field, pairs)
		case "Created":
			pairs := make([]DateTimePair, len(ws))
			for i, w := range ws {
				pairs[i] = DateTimePair{ID: w.id, Value: w.created}
			}
			ok, err = f.builder.BuildDateTimeIndex(ctx, widgets, field, pairs)
		default:
			t.Fatalf("unknown field %s", field)
		}
		require.Nil(t, err, field)
		require.True(t, ok, field)
	}
}

func entriesWithAction(hook *test.Hook, action string, level logrus.Level) []*logrus.Entry {
	var out []*logrus.Entry
	for _, entry := range hook.AllEntries() {
		if entry.Data["action"] == action && entry.Level == level {
			out = append(out, entry)
		}
	}
	return out
}
