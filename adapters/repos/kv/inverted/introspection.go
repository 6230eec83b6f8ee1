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
	"sync"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/DataNirvana/Database-sub000/adapters/repos/kv/keys"
	enterrors "github.com/DataNirvana/Database-sub000/entities/errors"
	"github.com/DataNirvana/Database-sub000/entities/filters"
	"github.com/DataNirvana/Database-sub000/entities/schema"
)

// IndexDescriptor is what the store reveals about the index of one field.
// Min and Max are only meaningful when HasBounds is set.
type IndexDescriptor struct {
	Field       string
	DataType    schema.DataType
	Kind        schema.IndexKind
	Operators   []filters.Operator
	Exists      bool
	Cardinality int64
	Buckets     int
	Min         float64
	Max         float64
	HasBounds   bool
}

// IndexInfo maps field names to their descriptors.
type IndexInfo map[string]IndexDescriptor

const introspectionConcurrency = 8

// sentinelTextProbe is the value whose bucket is checked when the registry
// does not know a text index.
const sentinelTextProbe = "aaaaaaaa"

// Introspect describes the index of every field of class. Fields the
// registry does not list are probed directly, so indexes written by older
// builders are still found.
func (s *Searcher) Introspect(ctx context.Context, class *schema.Class) (IndexInfo, error) {
	if err := class.Validate(); err != nil {
		return nil, err
	}
	namespace := class.Name
	if err := keys.ValidateName(namespace); err != nil {
		return nil, errors.Wrap(err, "namespace")
	}

	session, err := s.pool.Session()
	if err != nil {
		return nil, err
	}

	registry, err := readRegistry(ctx, session, namespace)
	if err != nil {
		return nil, errors.Wrapf(err, "read index registry of %s", namespace)
	}

	var (
		mu   sync.Mutex
		info = make(IndexInfo, len(class.Properties))
	)

	eg := enterrors.NewErrorGroupWrapper(s.logger, "action", "introspect", "namespace", namespace)
	eg.SetLimit(introspectionConcurrency)
	for _, prop := range class.Properties {
		prop := prop
		eg.Go(func() error {
			d, ok, err := s.describe(ctx, session, class, prop, registry)
			if err != nil {
				return errors.Wrapf(err, "introspect %s.%s", namespace, prop.Name)
			}
			if !ok {
				return nil
			}

			mu.Lock()
			info[prop.Name] = d
			mu.Unlock()
			return nil
		}, prop.Name)
	}

	if err := eg.Wait(); err != nil {
		s.logger.WithField("action", "introspect").
			WithField("namespace", namespace).
			WithError(err).
			Error("index introspection failed")
		return nil, err
	}

	s.logger.WithField("action", "introspect").
		WithField("namespace", namespace).
		WithField("fields", len(info)).
		Debug("introspected indexes")

	return info, nil
}

func (s *Searcher) describe(ctx context.Context, session redis.UniversalClient, class *schema.Class,
	prop schema.Property, registry map[string]registryEntry,
) (IndexDescriptor, bool, error) {
	namespace := class.Name

	if class.IsIDProperty(prop.Name) {
		d := IndexDescriptor{
			Field:     prop.Name,
			DataType:  prop.DataType,
			Kind:      schema.IndexKindPrimaryKey,
			Operators: []filters.Operator{filters.OperatorPrimaryKey},
		}
		card, err := session.SCard(ctx, keys.PrimaryKeySet(namespace)).Result()
		if err != nil {
			return d, false, err
		}
		d.Exists, d.Cardinality = card > 0, card
		return d, true, nil
	}

	kind, err := schema.KindFor(prop.DataType)
	if err != nil {
		s.logger.WithField("action", "introspect").
			WithField("namespace", namespace).
			WithField("field", prop.Name).
			WithError(err).
			Warn("field is not indexable")
		return IndexDescriptor{}, false, nil
	}
	if err := keys.ValidateName(prop.Name); err != nil {
		return IndexDescriptor{}, false, err
	}

	d := IndexDescriptor{
		Field:     prop.Name,
		DataType:  prop.DataType,
		Kind:      kind,
		Operators: operatorsFor(kind),
	}
	entry, registered := registry[prop.Name]
	d.Exists = registered && entry.kind == kind

	switch kind {
	case schema.IndexKindScore, schema.IndexKindDateTime:
		err = s.describeSortedSet(ctx, session, namespace, &d)
	case schema.IndexKindBool:
		err = s.describeBool(ctx, session, namespace, &d)
	case schema.IndexKindText:
		err = s.describeText(ctx, session, namespace, &d)
	}
	return d, true, err
}

func (s *Searcher) describeSortedSet(ctx context.Context, session redis.UniversalClient,
	namespace string, d *IndexDescriptor,
) error {
	key := keys.MustIndex(namespace, d.Field, d.Kind, "")

	pipe := session.Pipeline()
	card := pipe.ZCard(ctx, key)
	lowest := pipe.ZRangeWithScores(ctx, key, 0, 0)
	highest := pipe.ZRangeWithScores(ctx, key, -1, -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	d.Cardinality = card.Val()
	if d.Cardinality > 0 {
		d.Exists = true
	}
	if lo, hi := lowest.Val(), highest.Val(); len(lo) > 0 && len(hi) > 0 {
		d.Min, d.Max, d.HasBounds = lo[0].Score, hi[0].Score, true
	}
	return nil
}

func (s *Searcher) describeBool(ctx context.Context, session redis.UniversalClient,
	namespace string, d *IndexDescriptor,
) error {
	pipe := session.Pipeline()
	counts := []*redis.IntCmd{
		pipe.SCard(ctx, keys.MustIndex(namespace, d.Field, d.Kind, keys.BoolBucket(false))),
		pipe.SCard(ctx, keys.MustIndex(namespace, d.Field, d.Kind, keys.BoolBucket(true))),
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	for _, count := range counts {
		if count.Val() > 0 {
			d.Buckets++
			d.Cardinality += count.Val()
		}
	}
	if d.Buckets > 0 {
		d.Exists = true
	}
	return nil
}

func (s *Searcher) describeText(ctx context.Context, session redis.UniversalClient,
	namespace string, d *IndexDescriptor,
) error {
	if !d.Exists {
		probe := keys.MustIndex(namespace, d.Field, d.Kind, keys.TextBucket(sentinelTextProbe, s.cfg.TextPrefixWidth))
		n, err := session.Exists(ctx, probe).Result()
		if err != nil {
			return err
		}
		d.Exists = n > 0
	}

	pattern, err := keys.FieldPattern(namespace, d.Field, d.Kind)
	if err != nil {
		return err
	}
	buckets, err := s.pool.ScanKeys(ctx, pattern, int64(s.scanPageSize()))
	if err != nil {
		return err
	}
	if len(buckets) == 0 {
		return nil
	}

	pipe := session.Pipeline()
	counts := make([]*redis.IntCmd, len(buckets))
	for i, key := range buckets {
		counts[i] = pipe.SCard(ctx, key)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	d.Exists = true
	d.Buckets = len(buckets)
	for _, count := range counts {
		d.Cardinality += count.Val()
	}
	return nil
}

func operatorsFor(kind schema.IndexKind) []filters.Operator {
	switch kind {
	case schema.IndexKindPrimaryKey:
		return []filters.Operator{filters.OperatorPrimaryKey}
	case schema.IndexKindScore, schema.IndexKindDateTime:
		return []filters.Operator{
			filters.OperatorEqual, filters.OperatorGreaterThanEqual,
			filters.OperatorLessThanEqual, filters.OperatorBetween,
		}
	default:
		return []filters.Operator{filters.OperatorEqual}
	}
}
