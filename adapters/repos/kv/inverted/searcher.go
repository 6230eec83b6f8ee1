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
	"math"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/DataNirvana/Database-sub000/adapters/repos/kv/fanout"
	"github.com/DataNirvana/Database-sub000/adapters/repos/kv/keys"
	"github.com/DataNirvana/Database-sub000/adapters/repos/kv/pool"
	"github.com/DataNirvana/Database-sub000/adapters/repos/kv/roaringset"
	enterrors "github.com/DataNirvana/Database-sub000/entities/errors"
	"github.com/DataNirvana/Database-sub000/entities/filters"
	"github.com/DataNirvana/Database-sub000/entities/schema"
	"github.com/DataNirvana/Database-sub000/usecases/config"
	"github.com/DataNirvana/Database-sub000/usecases/monitoring"
)

// Path names the strategy a search was evaluated with.
type Path string

const (
	PathPrimaryKey   Path = "primary_key"
	PathSingle       Path = "single"
	PathRefine       Path = "refine"
	PathCombine      Path = "combine"
	PathShortCircuit Path = "short_circuit"
	PathScan         Path = "scan"
)

const defaultScanPageSize = 1000

type Searcher struct {
	pool      *pool.Pool
	collector *fanout.Collector
	cfg       config.Query
	logger    logrus.FieldLogger
	metrics   *monitoring.Metrics
}

func NewSearcher(p *pool.Pool, collector *fanout.Collector, cfg config.Query,
	logger logrus.FieldLogger, metrics *monitoring.Metrics,
) *Searcher {
	if cfg.TextPrefixWidth < 1 {
		cfg.TextPrefixWidth = keys.DefaultTextPrefixWidth
	}
	if cfg.MissingIndex == "" {
		cfg.MissingIndex = config.MissingIndexFail
	}
	return &Searcher{pool: p, collector: collector, cfg: cfg, logger: logger, metrics: metrics}
}

func (s *Searcher) scanPageSize() int {
	if s.cfg.ScanPageSize < 1 {
		return defaultScanPageSize
	}
	return s.cfg.ScanPageSize
}

// Search returns the ids of the records in namespace that satisfy plan under
// mode. info is optional; with it, patterns are ordered by estimated match
// count instead of the fixed heuristic.
//
// Patterns on fields without an index are settled for the whole plan before
// a path is chosen: the fail policy returns ErrIndexAbsent with a nil set,
// empty makes those patterns match nothing and scan evaluates the plan
// against every record.
//
// When some concurrent sub-requests fault, the returned set holds the merged
// result of the requests that completed and the error wraps
// ErrFaultedRequest. Any other error comes with a nil set.
func (s *Searcher) Search(ctx context.Context, namespace string, plan filters.Plan,
	mode filters.CombineMode, info IndexInfo,
) (*roaringset.IDSet, error) {
	ids, _, err := s.SearchPath(ctx, namespace, plan, mode, info)
	return ids, err
}

// SearchPath is Search that also reports the evaluation strategy used.
func (s *Searcher) SearchPath(ctx context.Context, namespace string, plan filters.Plan,
	mode filters.CombineMode, info IndexInfo,
) (*roaringset.IDSet, Path, error) {
	if err := keys.ValidateName(namespace); err != nil {
		return nil, "", errors.Wrap(err, "namespace")
	}
	if err := plan.Validate(); err != nil {
		return nil, "", errors.Wrap(err, "invalid plan")
	}

	before := time.Now()
	sorted := SortPlan(plan, info)

	var (
		ids  *roaringset.IDSet
		path Path
	)
	missing, err := s.missingIndexes(ctx, namespace, sorted, info)
	if err == nil && len(missing) > 0 {
		ids, path, sorted, err = s.withoutIndexes(ctx, namespace, sorted, mode, missing)
	}

	switch {
	case err != nil || ids != nil:
	case sorted[0].Kind == schema.IndexKindPrimaryKey:
		if mode == filters.Union && len(sorted) > 1 {
			s.logger.WithField("action", "search_plan").
				WithField("namespace", namespace).
				WithField("plan", plan.String()).
				WithError(enterrors.NewPlanningInconsistency("primary key predicate in a union")).
				Warn("evaluating union with a primary key predicate as an intersection")
		}
		path = PathPrimaryKey
		ids, err = s.point(ctx, namespace, sorted)
	case len(sorted) == 1:
		path = PathSingle
		ids, err = s.evaluate(ctx, namespace, sorted[0])
	default:
		ids, path, err = s.multi(ctx, namespace, sorted, mode)
	}

	if path != "" {
		s.metrics.ObserveSearch(string(path), time.Since(before))
	}
	if err != nil {
		s.logger.WithField("action", "search").
			WithField("namespace", namespace).
			WithField("plan", plan.String()).
			WithField("path", path).
			WithError(err).
			Error("search failed")
		return ids, path, err
	}

	s.logger.WithField("action", "search").
		WithField("namespace", namespace).
		WithField("plan", plan.String()).
		WithField("path", path).
		WithField("results", ids.Len()).
		WithField("took", time.Since(before)).
		Debug("search finished")
	return ids, path, nil
}

// point answers a plan led by a primary-key pattern with a single lookup of
// the record.
func (s *Searcher) point(ctx context.Context, namespace string, sorted filters.Plan) (*roaringset.IDSet, error) {
	id := sorted[0].ID
	ok, err := s.pointMatches(ctx, namespace, id, sorted)
	if err != nil {
		return nil, err
	}
	if !ok {
		return roaringset.New(), nil
	}
	return roaringset.New(id), nil
}

func (s *Searcher) multi(ctx context.Context, namespace string, sorted filters.Plan,
	mode filters.CombineMode,
) (*roaringset.IDSet, Path, error) {
	first, rest := sorted[0], sorted[1:]

	candidates, err := s.evaluate(ctx, namespace, first)
	if err != nil {
		return nil, PathCombine, err
	}

	if mode == filters.Intersect {
		if candidates.IsEmpty() {
			return candidates, PathShortCircuit, nil
		}
		if candidates.Len() < s.cfg.ScanThreshold() ||
			(s.cfg.ForcesBoolRefinement() && hasKind(rest, schema.IndexKindBool)) {
			ids, err := s.refine(ctx, namespace, candidates, rest)
			return ids, PathRefine, err
		}
	}

	ids, err := s.combine(ctx, namespace, candidates, rest, mode)
	return ids, PathCombine, err
}

// refine checks every candidate against the remaining patterns by reading
// the record itself.
func (s *Searcher) refine(ctx context.Context, namespace string, candidates *roaringset.IDSet,
	rest filters.Plan,
) (*roaringset.IDSet, error) {
	ids := candidates.IDs()
	reqs := make([]fanout.Request[[]uint32], len(ids))
	for i, id := range ids {
		id := id
		reqs[i] = fanout.Request[[]uint32]{
			Label: keys.Record(namespace, id),
			Do: func(ctx context.Context) ([]uint32, error) {
				ok, err := s.pointMatches(ctx, namespace, id, rest)
				if err != nil || !ok {
					return nil, err
				}
				return []uint32{id}, nil
			},
		}
	}

	matched, res := fanout.CollectIDs(ctx, s.collector, "search_refine", reqs)
	if res.Err != nil {
		return matched, errors.Wrapf(res.Err, "refine %d candidates against %s", len(ids), rest)
	}
	return matched, nil
}

// combine evaluates the remaining patterns concurrently and merges each
// result into acc as it arrives. An intersection that became empty ignores
// every later result.
func (s *Searcher) combine(ctx context.Context, namespace string, acc *roaringset.IDSet,
	rest filters.Plan, mode filters.CombineMode,
) (*roaringset.IDSet, error) {
	reqs := make([]fanout.Request[*roaringset.IDSet], len(rest))
	for i, p := range rest {
		p := p
		reqs[i] = fanout.Request[*roaringset.IDSet]{
			Label: p.String(),
			Do: func(ctx context.Context) (*roaringset.IDSet, error) {
				return s.evaluate(ctx, namespace, p)
			},
		}
	}

	settled := false
	res := fanout.Collect(ctx, s.collector, "search_combine", reqs, func(set *roaringset.IDSet) {
		if settled {
			return
		}
		if mode == filters.Union {
			acc.Or(set)
			return
		}
		acc.And(set)
		settled = acc.IsEmpty()
	})
	if res.Err != nil {
		return acc, errors.Wrapf(res.Err, "combine %s", rest)
	}
	return acc, nil
}

// evaluate returns the ids matched by a single pattern through its index.
// The index must exist; SearchPath settles unindexed patterns beforehand.
func (s *Searcher) evaluate(ctx context.Context, namespace string, p filters.Pattern,
) (*roaringset.IDSet, error) {
	session, err := s.pool.Session()
	if err != nil {
		return nil, err
	}

	var ids *roaringset.IDSet
	switch p.Kind {
	case schema.IndexKindPrimaryKey:
		ids, err = s.primaryKey(ctx, session, namespace, p.ID)
	case schema.IndexKindScore, schema.IndexKindDateTime:
		ids, err = s.scoreRange(ctx, session, namespace, p)
	case schema.IndexKindBool:
		ids, err = s.members(ctx, session, keys.MustIndex(namespace, p.Field, p.Kind, keys.BoolBucket(p.Bool)))
	case schema.IndexKindText:
		ids, err = s.members(ctx, session,
			keys.MustIndex(namespace, p.Field, p.Kind, keys.TextBucket(p.Text, s.cfg.TextPrefixWidth)))
	default:
		err = errors.Errorf("unknown index kind %d", p.Kind)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "evaluate %s", p)
	}
	return ids, nil
}

// missingIndexes returns the patterns of plan whose field has no index of
// the pattern's kind. info answers for the fields it describes, the registry
// for all others.
func (s *Searcher) missingIndexes(ctx context.Context, namespace string, plan filters.Plan,
	info IndexInfo,
) (filters.Plan, error) {
	var missing, lookup filters.Plan
	for _, p := range plan {
		if p.Kind == schema.IndexKindPrimaryKey {
			continue
		}
		if d, ok := info[p.Field]; ok {
			if !d.Exists || d.Kind != p.Kind {
				missing = append(missing, p)
			}
			continue
		}
		lookup = append(lookup, p)
	}
	if len(lookup) == 0 {
		return missing, nil
	}

	session, err := s.pool.Session()
	if err != nil {
		return nil, err
	}
	fields := fieldsOf(lookup)
	values, err := session.HMGet(ctx, keys.Registry(namespace), fields...).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "resolve indexes for %s", plan)
	}

	registered := make(map[string]schema.IndexKind, len(fields))
	for i, field := range fields {
		raw, ok := values[i].(string)
		if !ok {
			continue
		}
		entry, err := decodeRegistryEntry(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "resolve indexes for %s", plan)
		}
		registered[field] = entry.kind
	}

	for _, p := range lookup {
		if kind, ok := registered[p.Field]; !ok || kind != p.Kind {
			missing = append(missing, p)
		}
	}
	return missing, nil
}

// withoutIndexes applies the missing-index policy to the whole plan before
// any path is chosen, so every path sees the same decision. It returns a
// non-nil set when the policy settled the search. Otherwise it returns the
// patterns that are left for the indexed paths.
func (s *Searcher) withoutIndexes(ctx context.Context, namespace string, plan filters.Plan,
	mode filters.CombineMode, missing filters.Plan,
) (*roaringset.IDSet, Path, filters.Plan, error) {
	logger := s.logger.WithField("action", "search_plan").
		WithField("namespace", namespace).
		WithField("plan", plan.String()).
		WithField("unindexed", missing.String()).
		WithField("policy", s.cfg.MissingIndex)

	switch s.cfg.MissingIndex {
	case config.MissingIndexScan:
		logger.Warn("unindexed predicates, scanning every record")
		ids, err := s.scan(ctx, namespace, plan, mode)
		return ids, PathScan, plan, err
	case config.MissingIndexEmpty:
		logger.Debug("unindexed predicates match nothing")
		if mode == filters.Intersect || plan.HasPrimaryKey() {
			return roaringset.New(), PathShortCircuit, plan, nil
		}
		remaining := make(filters.Plan, 0, len(plan))
		for _, p := range plan {
			if !containsPattern(missing, p) {
				remaining = append(remaining, p)
			}
		}
		if len(remaining) == 0 {
			return roaringset.New(), PathShortCircuit, plan, nil
		}
		return nil, "", remaining, nil
	default:
		p := missing[0]
		return nil, "", plan, errors.Wrapf(enterrors.NewIndexAbsent(namespace, p.Field), "evaluate %s", p)
	}
}

func containsPattern(plan filters.Plan, p filters.Pattern) bool {
	for _, candidate := range plan {
		if candidate == p {
			return true
		}
	}
	return false
}

func (s *Searcher) primaryKey(ctx context.Context, session redis.UniversalClient, namespace string,
	id uint32,
) (*roaringset.IDSet, error) {
	ok, err := session.SIsMember(ctx, keys.PrimaryKeySet(namespace), member(id)).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return roaringset.New(), nil
	}
	return roaringset.New(id), nil
}

func (s *Searcher) scoreRange(ctx context.Context, session redis.UniversalClient, namespace string,
	p filters.Pattern,
) (*roaringset.IDSet, error) {
	min, max := p.Bounds()
	members, err := session.ZRangeByScore(ctx, keys.MustIndex(namespace, p.Field, p.Kind, ""), &redis.ZRangeBy{
		Min: scoreBound(min),
		Max: scoreBound(max),
	}).Result()
	if err != nil {
		return nil, err
	}
	return parseMembers(members)
}

// members reads a set with SSCAN so large buckets never block the server.
func (s *Searcher) members(ctx context.Context, session redis.Cmdable, key string) (*roaringset.IDSet, error) {
	ids := roaringset.New()
	iter := session.SScan(ctx, key, 0, "", int64(s.scanPageSize())).Iterator()
	for iter.Next(ctx) {
		id, err := parseMember(iter.Val())
		if err != nil {
			return nil, err
		}
		ids.Add(id)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// pointMatches reads the fields patterns refer to from one record and
// reports whether the record exists and satisfies all of them.
func (s *Searcher) pointMatches(ctx context.Context, namespace string, id uint32,
	patterns filters.Plan,
) (bool, error) {
	session, err := s.pool.Session()
	if err != nil {
		return false, err
	}

	fields := fieldsOf(patterns)
	pipe := session.Pipeline()
	exists := pipe.SIsMember(ctx, keys.PrimaryKeySet(namespace), member(id))
	var values *redis.SliceCmd
	if len(fields) > 0 {
		values = pipe.HMGet(ctx, keys.Record(namespace, id), fields...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	if !exists.Val() {
		return false, nil
	}

	var raw map[string]interface{}
	if values != nil {
		raw = zipFields(fields, values.Val())
	}
	return s.matchRecord(namespace, id, raw, patterns, filters.Intersect), nil
}

// matchRecord decides patterns against the stored fields of one record. A
// missing or malformed field fails its pattern.
func (s *Searcher) matchRecord(namespace string, id uint32, raw map[string]interface{},
	patterns filters.Plan, mode filters.CombineMode,
) bool {
	for _, p := range patterns {
		matched := s.matchField(namespace, id, raw, p)
		if mode == filters.Union && matched {
			return true
		}
		if mode == filters.Intersect && !matched {
			return false
		}
	}
	return mode == filters.Intersect
}

func (s *Searcher) matchField(namespace string, id uint32, raw map[string]interface{},
	p filters.Pattern,
) bool {
	value := member(id)
	if p.Kind != schema.IndexKindPrimaryKey {
		str, ok := raw[p.Field].(string)
		if !ok {
			return false
		}
		value = str
	}

	matched, err := Matches(value, p, s.cfg.TextPrefixWidth)
	if err != nil {
		s.logger.WithField("action", "search").
			WithField("namespace", namespace).
			WithField("id", id).
			WithField("field", p.Field).
			WithError(err).
			Warn("stored value does not fit its pattern")
		return false
	}
	return matched
}

func fieldsOf(patterns filters.Plan) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, p := range patterns {
		if p.Kind == schema.IndexKindPrimaryKey {
			continue
		}
		if _, ok := seen[p.Field]; ok {
			continue
		}
		seen[p.Field] = struct{}{}
		out = append(out, p.Field)
	}
	return out
}

func zipFields(fields []string, values []interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for i, field := range fields {
		if i < len(values) && values[i] != nil {
			out[field] = values[i]
		}
	}
	return out
}

func hasKind(patterns filters.Plan, kind schema.IndexKind) bool {
	for _, p := range patterns {
		if p.Kind == kind {
			return true
		}
	}
	return false
}

func scoreBound(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "+inf"
	case math.IsInf(f, -1):
		return "-inf"
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}

func parseMember(raw string) (uint32, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, enterrors.NewTypeCoercion("parse index member %q: %v", raw, err)
	}
	return uint32(id), nil
}

func parseMembers(members []string) (*roaringset.IDSet, error) {
	ids := make([]uint32, len(members))
	for i, raw := range members {
		id, err := parseMember(raw)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return roaringset.New(ids...), nil
}
