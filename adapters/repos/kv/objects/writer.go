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

// Package objects stores records as one field map per id and keeps the
// primary-key set of every namespace.
package objects

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
	"github.com/DataNirvana/Database-sub000/usecases/config"
)

type Writer struct {
	pool   *pool.Pool
	writer *bulk.Writer
	ids    IDResolver
	logger logrus.FieldLogger
}

func NewWriter(p *pool.Pool, writer *bulk.Writer, ids config.IDs, logger logrus.FieldLogger) *Writer {
	return &Writer{pool: p, writer: writer, ids: NewIDResolver(ids), logger: logger}
}

type hashRecord struct {
	namespace string
	id        uint32
	fields    map[string]interface{}
}

// WriteDataAsHash stores every record as a field map at its record key and
// registers its id in the primary-key set. Records may belong to different
// classes. The result is false if any record or field was skipped or any
// write failed; the error is reserved for an unusable pool.
func (w *Writer) WriteDataAsHash(ctx context.Context, records []schema.Record) (bool, error) {
	before := time.Now()
	prepared := make([]hashRecord, 0, len(records))
	validated := map[*schema.Class]error{}
	clean := true

	for i, record := range records {
		rec, complete, ok := w.encode(i, record, validated)
		clean = clean && complete
		if ok {
			prepared = append(prepared, rec)
		}
	}

	ok, res, err := w.writer.Run(ctx, "write_hash", len(prepared),
		func(ctx context.Context, pipe redis.Pipeliner, i int) {
			rec := prepared[i]
			pipe.HSet(ctx, keys.Record(rec.namespace, rec.id), rec.fields)
			pipe.SAdd(ctx, keys.PrimaryKeySet(rec.namespace), strconv.FormatUint(uint64(rec.id), 10))
		})
	if err != nil {
		w.logger.WithField("action", "write_hash").WithError(err).Error("record write failed")
		return false, errors.Wrap(err, "write records")
	}

	w.logger.WithField("action", "write_hash").
		WithField("records", len(prepared)).
		WithField("skipped", len(records)-len(prepared)).
		WithField("faulted", res.Faulted).
		WithField("took", time.Since(before)).
		Debug("records written")

	return ok && clean, nil
}

// encode returns the field map of one record. complete is false if anything
// was skipped, ok is false if the whole record was.
func (w *Writer) encode(position int, record schema.Record, validated map[*schema.Class]error,
) (rec hashRecord, complete bool, ok bool) {
	class := record.Class()
	if class == nil {
		w.logger.WithField("action", "write_hash").
			WithField("position", position).
			Warn("skipping record without a class")
		return rec, false, false
	}

	invalid, seen := validated[class]
	if !seen {
		invalid = class.Validate()
		if invalid == nil {
			invalid = keys.ValidateName(class.Name)
		}
		validated[class] = invalid
	}
	logger := w.logger.WithField("action", "write_hash").WithField("namespace", class.Name)
	if invalid != nil {
		logger.WithField("position", position).WithError(invalid).Warn("skipping record of an invalid class")
		return rec, false, false
	}

	id, ok := w.ids.Resolve(position, record, class, logger)
	if !ok {
		return rec, false, false
	}

	complete = true
	rec = hashRecord{namespace: class.Name, id: id, fields: make(map[string]interface{}, len(class.Properties))}
	for _, prop := range class.Properties {
		if class.IsIDProperty(prop.Name) {
			rec.fields[prop.Name] = strconv.FormatUint(uint64(id), 10)
			continue
		}

		value, present := record.Value(prop.Name)
		if !present || value == nil {
			continue
		}

		encoded, err := schema.EncodeValue(prop.DataType, value)
		if err != nil {
			complete = false
			logger.WithField("id", id).
				WithField("field", prop.Name).
				WithField("data_type", prop.DataType).
				WithError(err).
				Warn("skipping field")
			continue
		}
		rec.fields[prop.Name] = encoded
	}
	return rec, complete, true
}
