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
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/DataNirvana/Database-sub000/adapters/repos/kv/fanout"
	"github.com/DataNirvana/Database-sub000/adapters/repos/kv/keys"
	"github.com/DataNirvana/Database-sub000/adapters/repos/kv/roaringset"
	"github.com/DataNirvana/Database-sub000/entities/filters"
)

// ScanSearch evaluates plan by reading every record of the namespace instead
// of using any index. It is the fallback for fields without an index and
// the reference the indexed paths are checked against. A primary-key
// pattern turns a union into an intersection, as in Search.
func (s *Searcher) ScanSearch(ctx context.Context, namespace string, plan filters.Plan,
	mode filters.CombineMode,
) (*roaringset.IDSet, error) {
	if err := keys.ValidateName(namespace); err != nil {
		return nil, errors.Wrap(err, "namespace")
	}
	if err := plan.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid plan")
	}

	before := time.Now()
	ids, err := s.scan(ctx, namespace, plan, mode)
	s.metrics.ObserveSearch(string(PathScan), time.Since(before))
	return ids, err
}

// scan is ScanSearch on an already validated plan.
func (s *Searcher) scan(ctx context.Context, namespace string, plan filters.Plan,
	mode filters.CombineMode,
) (*roaringset.IDSet, error) {
	if plan.HasPrimaryKey() {
		mode = filters.Intersect
	}

	session, err := s.pool.Session()
	if err != nil {
		return nil, err
	}

	all, err := s.members(ctx, session, keys.PrimaryKeySet(namespace))
	if err != nil {
		return nil, errors.Wrapf(err, "scan %s", namespace)
	}

	ids := all.IDs()
	fields := fieldsOf(plan)
	page := s.scanPageSize()
	reqs := make([]fanout.Request[[]uint32], 0, len(ids)/page+1)
	for start := 0; start < len(ids); start += page {
		batch := ids[start:min(start+page, len(ids))]
		reqs = append(reqs, fanout.Request[[]uint32]{
			Label: keys.Record(namespace, batch[0]),
			Do: func(ctx context.Context) ([]uint32, error) {
				return s.scanBatch(ctx, session, namespace, batch, fields, plan, mode)
			},
		})
	}

	matched, res := fanout.CollectIDs(ctx, s.collector, "search_scan", reqs)
	if res.Err != nil {
		s.logger.WithField("action", "search_scan").
			WithField("namespace", namespace).
			WithField("plan", plan.String()).
			WithError(res.Err).
			Error("scan search incomplete")
		return matched, errors.Wrapf(res.Err, "scan %s for %s", namespace, plan)
	}
	return matched, nil
}

func (s *Searcher) scanBatch(ctx context.Context, session redis.UniversalClient, namespace string,
	batch []uint32, fields []string, plan filters.Plan, mode filters.CombineMode,
) ([]uint32, error) {
	var out []uint32
	if len(fields) == 0 {
		for _, id := range batch {
			if s.matchRecord(namespace, id, nil, plan, mode) {
				out = append(out, id)
			}
		}
		return out, nil
	}

	pipe := session.Pipeline()
	cmds := make([]*redis.SliceCmd, len(batch))
	for i, id := range batch {
		cmds[i] = pipe.HMGet(ctx, keys.Record(namespace, id), fields...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	for i, id := range batch {
		if s.matchRecord(namespace, id, zipFields(fields, cmds[i].Val()), plan, mode) {
			out = append(out, id)
		}
	}
	return out, nil
}
