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

package kv

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/DataNirvana/Database-sub000/adapters/repos/kv/inverted"
	"github.com/DataNirvana/Database-sub000/adapters/repos/kv/objects"
	"github.com/DataNirvana/Database-sub000/entities/schema"
)

// BuildIndexes builds the index of every named field of class from records,
// or of every indexable field when no field is named. Ids are resolved with
// the configured zero-id policy, so records must be passed in the order they
// were written. Records of another class, records without a valid id and
// values of the wrong Go type are logged and left out, which makes the
// result false.
func (e *Engine) BuildIndexes(ctx context.Context, class *schema.Class, records []schema.Record,
	fields ...string,
) (bool, error) {
	if err := class.Validate(); err != nil {
		return false, err
	}

	props := class.IndexableProperties()
	if len(fields) > 0 {
		props = make([]schema.Property, 0, len(fields))
		for _, name := range fields {
			prop, ok := class.Property(name)
			if !ok || class.IsIDProperty(name) {
				return false, errors.Errorf("class %s has no indexable property %q", class.Name, name)
			}
			props = append(props, prop)
		}
	}

	ids, clean := e.recordIDs(class, records)
	for _, prop := range props {
		ok, err := e.buildIndex(ctx, class.Name, prop, records, ids)
		if err != nil {
			return false, err
		}
		clean = clean && ok
	}
	return clean, nil
}

// recordIDs returns the id every record is stored under, or -1 for records
// the writer skips. It resolves ids exactly like WriteDataAsHash, so records
// must be passed in the same order.
func (e *Engine) recordIDs(class *schema.Class, records []schema.Record) ([]int64, bool) {
	resolver := objects.NewIDResolver(e.cfg.IDs)
	logger := e.logger.WithField("action", "bulk_index_build").WithField("namespace", class.Name)
	out := make([]int64, len(records))
	clean := true
	for i, record := range records {
		out[i] = -1
		if record.Class() == nil || record.Class().Name != class.Name {
			clean = false
			continue
		}
		id, ok := resolver.Resolve(i, record, class, logger)
		if !ok {
			clean = false
			continue
		}
		out[i] = int64(id)
	}
	return out, clean
}

func (e *Engine) buildIndex(ctx context.Context, namespace string, prop schema.Property,
	records []schema.Record, ids []int64,
) (bool, error) {
	kind, err := schema.KindFor(prop.DataType)
	if err != nil {
		e.logger.WithField("action", "bulk_index_build").
			WithField("namespace", namespace).
			WithField("field", prop.Name).
			WithError(err).
			Warn("field has no index kind")
		return false, nil
	}

	clean := true
	wrongType := func(id uint32, value interface{}) {
		clean = false
		e.logger.WithField("action", "bulk_index_build").
			WithField("namespace", namespace).
			WithField("field", prop.Name).
			WithField("id", id).
			Warnf("skipping value of type %T", value)
	}

	var (
		scores []inverted.ScorePair
		bools  []inverted.BoolPair
		times  []inverted.DateTimePair
		texts  []inverted.TextPair
	)
	for i, record := range records {
		if ids[i] < 0 {
			continue
		}
		id := uint32(ids[i])
		value, ok := record.Value(prop.Name)
		if !ok || value == nil {
			continue
		}

		switch kind {
		case schema.IndexKindScore:
			scores = append(scores, inverted.ScorePair{ID: id, Value: value})
		case schema.IndexKindBool:
			b, ok := value.(bool)
			if !ok {
				wrongType(id, value)
				continue
			}
			bools = append(bools, inverted.BoolPair{ID: id, Value: b})
		case schema.IndexKindDateTime:
			t, ok := value.(time.Time)
			if !ok {
				wrongType(id, value)
				continue
			}
			times = append(times, inverted.DateTimePair{ID: id, Value: t})
		case schema.IndexKindText:
			s, ok := value.(string)
			if !ok {
				wrongType(id, value)
				continue
			}
			texts = append(texts, inverted.TextPair{ID: id, Value: s})
		}
	}

	var built bool
	switch kind {
	case schema.IndexKindScore:
		built, err = e.BuildScoreIndex(ctx, namespace, prop.Name, prop.DataType, scores)
	case schema.IndexKindBool:
		built, err = e.BuildBoolIndex(ctx, namespace, prop.Name, bools)
	case schema.IndexKindDateTime:
		built, err = e.BuildDateTimeIndex(ctx, namespace, prop.Name, times)
	case schema.IndexKindText:
		built, err = e.BuildTextIndex(ctx, namespace, prop.Name, texts)
	}
	return built && clean, err
}
