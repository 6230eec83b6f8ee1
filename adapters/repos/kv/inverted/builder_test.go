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
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DataNirvana/Database-sub000/adapters/repos/kv/keys"
	"github.com/DataNirvana/Database-sub000/entities/schema"
)

func TestBuilderWritesIndexes(t *testing.T) {
	f := newFixture(t, defaultQuery(), 2)
	f.buildIndexes(t, sampleWidgets())

	t.Run("score", func(t *testing.T) {
		key := keys.MustIndex(widgets, "Price", schema.IndexKindScore, "")
		members, err := f.mr.SortedSet(key)
		require.Nil(t, err)
		assert.Equal(t, map[string]float64{"1": 2.5, "2": 4, "3": 9.99}, members)
	})

	t.Run("datetime", func(t *testing.T) {
		key := keys.MustIndex(widgets, "Created", schema.IndexKindDateTime, "")
		score, err := f.mr.ZScore(key, "2")
		require.Nil(t, err)
		assert.Equal(t, float64(schema.Ticks(epoch.Add(24*time.Hour))), score)
	})

	t.Run("bool", func(t *testing.T) {
		truthy, err := f.mr.Members(keys.MustIndex(widgets, "Active", schema.IndexKindBool, "1"))
		require.Nil(t, err)
		assert.Equal(t, []string{"1", "3"}, truthy)

		falsy, err := f.mr.Members(keys.MustIndex(widgets, "Active", schema.IndexKindBool, "0"))
		require.Nil(t, err)
		assert.Equal(t, []string{"2"}, falsy)
	})

	t.Run("text", func(t *testing.T) {
		wi, err := f.mr.Members(keys.MustIndex(widgets, "Name", schema.IndexKindText, "wi"))
		require.Nil(t, err)
		assert.Equal(t, []string{"1", "2"}, wi)

		wo, err := f.mr.Members(keys.MustIndex(widgets, "Name", schema.IndexKindText, "wo"))
		require.Nil(t, err)
		assert.Equal(t, []string{"3"}, wo)
	})

	t.Run("registry", func(t *testing.T) {
		expected := map[string]string{
			"Price":   "Score:double",
			"Name":    "Text:string",
			"Active":  "Bool:bool",
			"Created": "DateTime:datetime",
		}
		for field, entry := range expected {
			assert.Equal(t, entry, f.mr.HGet(keys.Registry(widgets), field), field)
		}
	})
}

func TestBuilderChunkInvariance(t *testing.T) {
	var ws []widget
	for i := 0; i < 23; i++ {
		ws = append(ws, widget{
			id:      uint32(i),
			price:   float64(i % 7),
			name:    []string{"alpha", "beta", "gamma"}[i%3],
			active:  i%2 == 0,
			created: epoch.Add(time.Duration(i) * time.Minute),
		})
	}

	snapshot := func(chunkSize int) map[string][]string {
		f := newFixture(t, defaultQuery(), chunkSize)
		f.buildIndexes(t, ws)

		out := map[string][]string{}
		for _, key := range f.mr.Keys() {
			switch f.mr.Type(key) {
			case "set":
				members, err := f.mr.Members(key)
				require.Nil(t, err)
				out[key] = members
			case "zset":
				members, err := f.mr.ZMembers(key)
				require.Nil(t, err)
				out[key] = members
			case "hash":
				fields, err := f.mr.HKeys(key)
				require.Nil(t, err)
				out[key] = fields
			}
		}
		return out
	}

	reference := snapshot(len(ws))
	require.NotEmpty(t, reference)
	for _, chunkSize := range []int{1, 2, 5, 22} {
		assert.Equal(t, reference, snapshot(chunkSize), "chunk size %d", chunkSize)
	}
}

func TestBuilderSkipsUncoercibleValues(t *testing.T) {
	f := newFixture(t, defaultQuery(), 10)
	ctx := context.Background()

	ok, err := f.builder.BuildScoreIndex(ctx, widgets, "Stock", schema.DataTypeInt32, []ScorePair{
		{ID: 1, Value: int32(4)},
		{ID: 2, Value: "four"},
		{ID: 3, Value: int64(1) << 40},
		{ID: 4, Value: 9},
	})
	require.Nil(t, err)
	assert.False(t, ok)

	members, err := f.mr.SortedSet(keys.MustIndex(widgets, "Stock", schema.IndexKindScore, ""))
	require.Nil(t, err)
	assert.Equal(t, map[string]float64{"1": 4, "4": 9}, members)

	warnings := entriesWithAction(f.hook, "bulk_index_build", logrus.WarnLevel)
	require.Len(t, warnings, 2)
	assert.Equal(t, uint32(2), warnings[0].Data["id"])
	assert.Equal(t, uint32(3), warnings[1].Data["id"])
}

func TestBuilderRejectsInvalidInput(t *testing.T) {
	f := newFixture(t, defaultQuery(), 10)
	ctx := context.Background()

	_, err := f.builder.BuildScoreIndex(ctx, widgets, "Name", schema.DataTypeString, nil)
	assert.Error(t, err)

	_, err = f.builder.BuildBoolIndex(ctx, "bad:namespace", "Active", nil)
	assert.Error(t, err)

	_, err = f.builder.BuildTextIndex(ctx, widgets, "", nil)
	assert.Error(t, err)

	ok, err := f.builder.BuildTextIndex(ctx, widgets, "Name", nil)
	require.Nil(t, err)
	assert.True(t, ok, "an empty build registers the index")
	assert.Equal(t, "Text:string", f.mr.HGet(keys.Registry(widgets), "Name"))
}

func TestBuilderOnFailingStore(t *testing.T) {
	f := newFixture(t, defaultQuery(), 10)
	f.mr.SetError("ERR injected failure")
	defer f.mr.SetError("")

	ok, err := f.builder.BuildBoolIndex(context.Background(), widgets, "Active", []BoolPair{{ID: 1, Value: true}})
	require.Nil(t, err, "per-command faults are reported through the result")
	assert.False(t, ok)
}
