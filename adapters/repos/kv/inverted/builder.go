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
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/DataNirvana/Database-sub000/adapters/repos/kv/bulk"
	"github.com/DataNirvana/Database-sub000/adapters/repos/kv/keys"
	"github.com/DataNirvana/Database-sub000/adapters/repos/kv/pool"
	"github.com/DataNirvana/Database-sub000/entities/schema"
)

type ScorePair struct {
	ID    uint32
	Value interface{}
}

type BoolPair struct {
	ID    uint32
	Value bool
}

type DateTimePair struct {
	ID    uint32
	Value time.Time
}

type TextPair struct {
	ID    uint32
	Value string
}

// Builder writes attribute indexes from (id, value) pairs. Builds are best
// effort: a failing write is logged and makes the build report false, all
// other writes still complete.
type Builder struct {
	pool      *pool.Pool
	writer    *bulk.Writer
	textWidth int
	logger    logrus.FieldLogger
}

func NewBuilder(p *pool.Pool, writer *bulk.Writer, textWidth int, logger logrus.FieldLogger) *Builder {
	if textWidth < 1 {
		textWidth = keys.DefaultTextPrefixWidth
	}
	return &Builder{pool: p, writer: writer, textWidth: textWidth, logger: logger}
}

// BuildScoreIndex adds every pair to the sorted set of a numeric field.
// Values that cannot be coerced to dt are skipped with a warning and make
// the build report false.
func (b *Builder) BuildScoreIndex(ctx context.Context, namespace, field string,
	dt schema.DataType, data []ScorePair,
) (bool, error) {
	if !dt.IsNumeric() {
		return false, errors.Errorf("score index on %s.%s: %s is not numeric", namespace, field, dt)
	}

	ids := make([]uint32, 0, len(data))
	scores := make([]float64, 0, len(data))
	skipped := 0
	for _, pair := range data {
		score, err := schema.ScoreOf(dt, pair.Value)
		if err != nil {
			skipped++
			b.logger.WithField("action", "bulk_index_build").
				WithField("namespace", namespace).
				WithField("field", field).
				WithField("id", pair.ID).
				WithError(err).
				Warn("skipping value")
			continue
		}
		ids = append(ids, pair.ID)
		scores = append(scores, score)
	}

	ok, err := b.buildSortedSet(ctx, namespace, field, schema.IndexKindScore, dt, ids, scores)
	return ok && skipped == 0, err
}

func (b *Builder) BuildDateTimeIndex(ctx context.Context, namespace, field string,
	data []DateTimePair,
) (bool, error) {
	ids := make([]uint32, len(data))
	scores := make([]float64, len(data))
	for i, pair := range data {
		ids[i] = pair.ID
		scores[i] = float64(schema.Ticks(pair.Value))
	}

	return b.buildSortedSet(ctx, namespace, field, schema.IndexKindDateTime, schema.DataTypeDateTime, ids, scores)
}

func (b *Builder) BuildBoolIndex(ctx context.Context, namespace, field string,
	data []BoolPair,
) (bool, error) {
	zero, err := keys.Index(namespace, field, schema.IndexKindBool, keys.BoolBucket(false))
	if err != nil {
		return false, err
	}
	one := keys.MustIndex(namespace, field, schema.IndexKindBool, keys.BoolBucket(true))

	return b.build(ctx, namespace, field, registryEntry{schema.IndexKindBool, schema.DataTypeBool}, len(data),
		func(ctx context.Context, pipe redis.Pipeliner, i int) {
			key := zero
			if data[i].Value {
				key = one
			}
			pipe.SAdd(ctx, key, member(data[i].ID))
		})
}

// BuildTextIndex adds every id to the bucket selected by the lowercase,
// fixed-width prefix of its value.
func (b *Builder) BuildTextIndex(ctx context.Context, namespace, field string,
	data []TextPair,
) (bool, error) {
	return b.build(ctx, namespace, field, registryEntry{schema.IndexKindText, schema.DataTypeString}, len(data),
		func(ctx context.Context, pipe redis.Pipeliner, i int) {
			bucket := keys.TextBucket(data[i].Value, b.textWidth)
			pipe.SAdd(ctx, keys.MustIndex(namespace, field, schema.IndexKindText, bucket), member(data[i].ID))
		})
}

func (b *Builder) buildSortedSet(ctx context.Context, namespace, field string, kind schema.IndexKind,
	dt schema.DataType, ids []uint32, scores []float64,
) (bool, error) {
	key, err := keys.Index(namespace, field, kind, "")
	if err != nil {
		return false, err
	}

	return b.build(ctx, namespace, field, registryEntry{kind, dt}, len(ids),
		func(ctx context.Context, pipe redis.Pipeliner, i int) {
			pipe.ZAdd(ctx, key, redis.Z{Score: scores[i], Member: member(ids[i])})
		})
}

func (b *Builder) build(ctx context.Context, namespace, field string, entry registryEntry, n int,
	queue bulk.Queue,
) (bool, error) {
	if err := validateNames(namespace, field); err != nil {
		return false, err
	}

	logger := b.logger.WithField("action", "bulk_index_build").
		WithField("namespace", namespace).
		WithField("field", field).
		WithField("kind", entry.kind.Name())

	before := time.Now()
	ok, res, err := b.writer.Run(ctx, "bulk_index_build", n, queue)
	if err != nil {
		logger.WithError(err).Error("index build failed")
		return false, errors.Wrapf(err, "build %s index on %s.%s", entry.kind.Name(), namespace, field)
	}

	session, err := b.pool.Session()
	if err != nil {
		return false, err
	}
	if err := register(ctx, session, namespace, field, entry); err != nil {
		logger.WithError(err).Error("could not register index")
		ok = false
	}

	logger.WithField("elements", n).
		WithField("faulted", res.Faulted).
		WithField("took", time.Since(before)).
		Debug("index build finished")

	return ok, nil
}

func validateNames(namespace, field string) error {
	if err := keys.ValidateName(namespace); err != nil {
		return errors.Wrap(err, "namespace")
	}
	if err := keys.ValidateName(field); err != nil {
		return errors.Wrap(err, "field")
	}
	return nil
}

func member(id uint32) string {
	return strconv.FormatUint(uint64(id), 10)
}
