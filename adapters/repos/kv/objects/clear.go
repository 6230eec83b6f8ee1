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
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/DataNirvana/Database-sub000/adapters/repos/kv/keys"
)

const clearScanCount = 1000

// ErrAdminDisabled is returned by operations that need the allow_admin
// pool option.
var ErrAdminDisabled = errors.New("admin operations are disabled")

// Clear removes a namespace: every registered record, every index key found
// on any node, the registry and the primary-key set. Scanned keys that do not
// parse as an index of the namespace are left in place. The primary-key set is
// removed last, so an interrupted clear can be repeated.
func (w *Writer) Clear(ctx context.Context, namespace string) (bool, error) {
	if err := keys.ValidateName(namespace); err != nil {
		return false, errors.Wrap(err, "namespace")
	}
	if !w.pool.AllowAdmin() {
		return false, errors.Wrapf(ErrAdminDisabled, "clear %s", namespace)
	}

	before := time.Now()
	session, err := w.pool.Session()
	if err != nil {
		return false, err
	}

	var doomed []string
	iter := session.SScan(ctx, keys.PrimaryKeySet(namespace), 0, "", clearScanCount).Iterator()
	for iter.Next(ctx) {
		id, err := strconv.ParseUint(iter.Val(), 10, 32)
		if err != nil {
			w.logger.WithField("action", "namespace_clear").
				WithField("namespace", namespace).
				WithField("member", iter.Val()).
				Warn("primary-key set holds a malformed id")
			continue
		}
		doomed = append(doomed, keys.Record(namespace, uint32(id)))
	}
	if err := iter.Err(); err != nil {
		return false, errors.Wrapf(err, "clear %s", namespace)
	}

	scanned, err := w.pool.ScanKeys(ctx, keys.IndexPattern(namespace), clearScanCount)
	if err != nil {
		return false, errors.Wrapf(err, "clear %s", namespace)
	}
	indexes := make([]string, 0, len(scanned))
	for _, key := range scanned {
		parsed, err := keys.Parse(key)
		if err != nil || parsed.Type != keys.KeyTypeIndex || parsed.Namespace != namespace {
			w.logger.WithField("action", "namespace_clear").
				WithField("namespace", namespace).
				WithField("key", key).
				Warn("leaving key that is not an index of the namespace")
			continue
		}
		indexes = append(indexes, key)
	}
	doomed = append(doomed, indexes...)
	doomed = append(doomed, keys.Registry(namespace))

	ok, _, err := w.writer.Run(ctx, "namespace_clear", len(doomed),
		func(ctx context.Context, pipe redis.Pipeliner, i int) {
			pipe.Del(ctx, doomed[i])
		})
	if err != nil {
		return false, errors.Wrapf(err, "clear %s", namespace)
	}
	if ok {
		if err := session.Del(ctx, keys.PrimaryKeySet(namespace)).Err(); err != nil {
			return false, errors.Wrapf(err, "clear %s", namespace)
		}
	}

	w.logger.WithField("action", "namespace_clear").
		WithField("namespace", namespace).
		WithField("records", len(doomed)-len(indexes)-1).
		WithField("indexes", len(indexes)).
		WithField("took", time.Since(before)).
		Info("namespace cleared")

	return ok, nil
}
