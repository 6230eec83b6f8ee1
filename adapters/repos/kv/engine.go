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

// Package kv is the secondary-index engine over a key-value store. An Engine
// owns the connection pool, the configuration and the debug trace; every
// operation goes through it.
package kv

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/DataNirvana/Database-sub000/adapters/repos/kv/bulk"
	"github.com/DataNirvana/Database-sub000/adapters/repos/kv/fanout"
	"github.com/DataNirvana/Database-sub000/adapters/repos/kv/inverted"
	"github.com/DataNirvana/Database-sub000/adapters/repos/kv/objects"
	"github.com/DataNirvana/Database-sub000/adapters/repos/kv/pool"
	"github.com/DataNirvana/Database-sub000/adapters/repos/kv/roaringset"
	enterrors "github.com/DataNirvana/Database-sub000/entities/errors"
	"github.com/DataNirvana/Database-sub000/entities/filters"
	"github.com/DataNirvana/Database-sub000/entities/schema"
	"github.com/DataNirvana/Database-sub000/usecases/config"
	"github.com/DataNirvana/Database-sub000/usecases/monitoring"
)

type Engine struct {
	cfg     config.Config
	logger  logrus.FieldLogger
	metrics *monitoring.Metrics

	mu      sync.RWMutex
	session *session

	trace *trace
}

// session holds everything that lives between Connect and Disconnect.
type session struct {
	pool     *pool.Pool
	objects  *objects.Writer
	builder  *inverted.Builder
	searcher *inverted.Searcher
}

// New creates a disconnected engine. Missing options take their defaults.
// reg may be nil, in which case no metrics are collected.
func New(cfg config.Config, logger logrus.FieldLogger, reg prometheus.Registerer) *Engine {
	cfg.SetDefaults()
	e := &Engine{
		cfg:     cfg,
		logger:  logger,
		metrics: monitoring.NewMetrics(reg),
	}
	if cfg.Debug.Trace {
		e.trace = newTrace(cfg.Debug.TraceLimit)
	}
	return e
}

func (e *Engine) Config() config.Config {
	return e.cfg
}

// Metrics returns the engine's collectors, nil when no registerer was given.
func (e *Engine) Metrics() *monitoring.Metrics {
	return e.metrics
}

// Connect establishes the pool. Connecting a connected engine is a no-op.
func (e *Engine) Connect(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session != nil {
		return nil
	}

	p, err := pool.Connect(ctx, e.cfg.Pool, e.logger)
	if err != nil {
		return err
	}

	collector := fanout.NewCollector(e.cfg.Fanout.MaxInFlight, e.cfg.Pool.RequestTimeout.Std(), e.logger, e.metrics)
	writes := bulk.NewWriter(p, collector, e.cfg.Write, e.cfg.Fanout.PipelineSize, e.logger, e.metrics)
	builds := bulk.NewWriter(p, collector, e.cfg.IndexBuild, e.cfg.Fanout.PipelineSize, e.logger, e.metrics)

	e.session = &session{
		pool:     p,
		objects:  objects.NewWriter(p, writes, e.cfg.IDs, e.logger),
		builder:  inverted.NewBuilder(p, builds, e.cfg.Query.TextPrefixWidth, e.logger),
		searcher: inverted.NewSearcher(p, collector, e.cfg.Query, e.logger, e.metrics),
	}
	return nil
}

// Disconnect tears down the pool. Operations fail with ErrConnection until
// the next Connect.
func (e *Engine) Disconnect() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil {
		return nil
	}
	err := e.session.pool.Disconnect()
	e.session = nil
	return err
}

func (e *Engine) current() (*session, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.session == nil {
		return nil, enterrors.NewConnection("engine is not connected", nil)
	}
	return e.session, nil
}

func (e *Engine) WriteDataAsHash(ctx context.Context, records []schema.Record) (bool, error) {
	s, err := e.current()
	if err != nil {
		return false, err
	}
	return s.objects.WriteDataAsHash(ctx, records)
}

func (e *Engine) BuildScoreIndex(ctx context.Context, namespace, field string, dt schema.DataType,
	data []inverted.ScorePair,
) (bool, error) {
	s, err := e.current()
	if err != nil {
		return false, err
	}
	return s.builder.BuildScoreIndex(ctx, namespace, field, dt, data)
}

func (e *Engine) BuildDateTimeIndex(ctx context.Context, namespace, field string,
	data []inverted.DateTimePair,
) (bool, error) {
	s, err := e.current()
	if err != nil {
		return false, err
	}
	return s.builder.BuildDateTimeIndex(ctx, namespace, field, data)
}

func (e *Engine) BuildBoolIndex(ctx context.Context, namespace, field string,
	data []inverted.BoolPair,
) (bool, error) {
	s, err := e.current()
	if err != nil {
		return false, err
	}
	return s.builder.BuildBoolIndex(ctx, namespace, field, data)
}

func (e *Engine) BuildTextIndex(ctx context.Context, namespace, field string,
	data []inverted.TextPair,
) (bool, error) {
	s, err := e.current()
	if err != nil {
		return false, err
	}
	return s.builder.BuildTextIndex(ctx, namespace, field, data)
}

// Search returns the ids of the records of namespace that satisfy plan. See
// inverted.Searcher.Search for the fault semantics.
func (e *Engine) Search(ctx context.Context, namespace string, plan filters.Plan,
	mode filters.CombineMode, info inverted.IndexInfo,
) (*roaringset.IDSet, error) {
	s, err := e.current()
	if err != nil {
		return nil, err
	}

	before := time.Now()
	ids, path, err := s.searcher.SearchPath(ctx, namespace, plan, mode, info)
	e.trace.record(namespace, plan, mode, string(path), ids, time.Since(before), err)
	return ids, err
}

// ScanSearch evaluates plan against every record without using indexes.
func (e *Engine) ScanSearch(ctx context.Context, namespace string, plan filters.Plan,
	mode filters.CombineMode,
) (*roaringset.IDSet, error) {
	s, err := e.current()
	if err != nil {
		return nil, err
	}

	before := time.Now()
	ids, err := s.searcher.ScanSearch(ctx, namespace, plan, mode)
	e.trace.record(namespace, plan, mode, string(inverted.PathScan), ids, time.Since(before), err)
	return ids, err
}

func (e *Engine) Introspect(ctx context.Context, class *schema.Class) (inverted.IndexInfo, error) {
	s, err := e.current()
	if err != nil {
		return nil, err
	}
	return s.searcher.Introspect(ctx, class)
}

func (e *Engine) Get(ctx context.Context, namespace string, id uint32, fields ...string) (map[string]string, error) {
	s, err := e.current()
	if err != nil {
		return nil, err
	}
	return s.objects.Get(ctx, namespace, id, fields...)
}

func (e *Engine) GetTyped(ctx context.Context, class *schema.Class, id uint32) (map[string]interface{}, error) {
	s, err := e.current()
	if err != nil {
		return nil, err
	}
	return s.objects.GetTyped(ctx, class, id)
}

func (e *Engine) Exists(ctx context.Context, namespace string, id uint32) (bool, error) {
	s, err := e.current()
	if err != nil {
		return false, err
	}
	return s.objects.Exists(ctx, namespace, id)
}

func (e *Engine) Count(ctx context.Context, namespace string) (int64, error) {
	s, err := e.current()
	if err != nil {
		return 0, err
	}
	return s.objects.Count(ctx, namespace)
}

// Clear drops a namespace with its records and indexes. It needs the
// allow_admin pool option.
func (e *Engine) Clear(ctx context.Context, namespace string) (bool, error) {
	s, err := e.current()
	if err != nil {
		return false, err
	}
	return s.objects.Clear(ctx, namespace)
}

// DebugTrace returns the recorded searches, oldest first. It is empty unless
// debug.trace is enabled.
func (e *Engine) DebugTrace() []TraceEntry {
	return e.trace.entries()
}
