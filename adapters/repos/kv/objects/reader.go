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

package objects

import (
	"context"
	"strconv"

	"github.com/pkg/errors"

	"github.com/DataNirvana/Database-sub000/adapters/repos/kv/keys"
	"github.com/DataNirvana/Database-sub000/entities/schema"
)

// Get returns the raw stored fields of one record, all of them when fields is
// empty. Fields that are not stored are absent from the map.
func (w *Writer) Get(ctx context.Context, namespace string, id uint32, fields ...string) (map[string]string, error) {
	session, err := w.pool.Session()
	if err != nil {
		return nil, err
	}

	key := keys.Record(namespace, id)
	if len(fields) == 0 {
		all, err := session.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, errors.Wrapf(err, "get %s", key)
		}
		return all, nil
	}

	values, err := session.HMGet(ctx, key, fields...).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "get %s", key)
	}
	out := make(map[string]string, len(fields))
	for i, field := range fields {
		if s, ok := values[i].(string); ok {
			out[field] = s
		}
	}
	return out, nil
}

// GetTyped reads one record and decodes every declared field into its Go
// type. It returns nil if the id is not registered. Values that do not decode
// are logged and left out.
func (w *Writer) GetTyped(ctx context.Context, class *schema.Class, id uint32) (map[string]interface{}, error) {
	session, err := w.pool.Session()
	if err != nil {
		return nil, err
	}

	pipe := session.Pipeline()
	exists := pipe.SIsMember(ctx, keys.PrimaryKeySet(class.Name), strconv.FormatUint(uint64(id), 10))
	stored := pipe.HGetAll(ctx, keys.Record(class.Name, id))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "get %s", keys.Record(class.Name, id))
	}
	if !exists.Val() {
		return nil, nil
	}

	raw := stored.Val()
	out := make(map[string]interface{}, len(raw))
	for _, prop := range class.Properties {
		value, ok := raw[prop.Name]
		if !ok {
			continue
		}
		decoded, err := schema.DecodeValue(prop.DataType, value)
		if err != nil {
			w.logger.WithField("action", "get").
				WithField("namespace", class.Name).
				WithField("id", id).
				WithField("field", prop.Name).
				WithError(err).
				Warn("stored value does not decode")
			continue
		}
		out[prop.Name] = decoded
	}
	return out, nil
}

// Exists reports whether id is registered in the primary-key set.
func (w *Writer) Exists(ctx context.Context, namespace string, id uint32) (bool, error) {
	session, err := w.pool.Session()
	if err != nil {
		return false, err
	}
	return session.SIsMember(ctx, keys.PrimaryKeySet(namespace), strconv.FormatUint(uint64(id), 10)).Result()
}

// Count returns the number of registered records of a namespace.
func (w *Writer) Count(ctx context.Context, namespace string) (int64, error) {
	if err := keys.ValidateName(namespace); err != nil {
		return 0, errors.Wrap(err, "namespace")
	}
	session, err := w.pool.Session()
	if err != nil {
		return 0, err
	}
	return session.SCard(ctx, keys.PrimaryKeySet(namespace)).Result()
}
