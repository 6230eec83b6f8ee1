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

// Package bulk writes large batches of independent store commands. A batch
// is split into chunks that are written one after the other; inside a chunk
// commands are grouped into pipelines that are all in flight at once.
package bulk

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/DataNirvana/Database-sub000/adapters/repos/kv/fanout"
	"github.com/DataNirvana/Database-sub000/adapters/repos/kv/pool"
	"github.com/DataNirvana/Database-sub000/usecases/config"
	"github.com/DataNirvana/Database-sub000/usecases/monitoring"
)

// Queue adds the commands of element i to pipe.
type Queue func(ctx context.Context, pipe redis.Pipeliner, i int)

type Writer struct {
	pool         *pool.Pool
	collector    *fanout.Collector
	chunking     config.Chunking
	pipelineSize int
	logger       logrus.FieldLogger
	metrics      *monitoring.Metrics
}

func NewWriter(p *pool.Pool, collector *fanout.Collector, chunking config.Chunking,
	pipelineSize int, logger logrus.FieldLogger, metrics *monitoring.Metrics,
) *Writer {
	if pipelineSize < 1 {
		pipelineSize = 1
	}
	return &Writer{
		pool:         p,
		collector:    collector,
		chunking:     chunking,
		pipelineSize: pipelineSize,
		logger:       logger,
		metrics:      metrics,
	}
}

// Run writes n elements. The returned bool is true only if every command
// succeeded. Failing commands are logged one by one and never stop the
// batch; the error is reserved for an unusable pool.
func (w *Writer) Run(ctx context.Context, operation string, n int, queue Queue) (bool, fanout.Result, error) {
	total := fanout.Result{}
	if n == 0 {
		return true, total, nil
	}

	if _, err := w.pool.Session(); err != nil {
		return false, total, err
	}

	chunkSize := w.chunking.ChunkSize
	if chunkSize < 1 {
		chunkSize = n
	}
	pause := n > w.chunking.PauseThreshold && w.chunking.PauseLength > 0

	ok := true
	for start := 0; start < n; start += chunkSize {
		if start > 0 && pause {
			select {
			case <-time.After(w.chunking.PauseLength.Std()):
			case <-ctx.Done():
			}
		}

		end := min(start+chunkSize, n)
		before := time.Now()
		chunkOK, res := fanout.CollectAll(ctx, w.collector, operation, w.pipelines(operation, start, end, queue))
		w.metrics.ObserveChunk(operation, time.Since(before))

		ok = ok && chunkOK
		total.Add(res)
	}

	return ok, total, nil
}

func (w *Writer) pipelines(operation string, start, end int, queue Queue) []fanout.Request[bool] {
	reqs := make([]fanout.Request[bool], 0, (end-start+w.pipelineSize-1)/w.pipelineSize)
	for from := start; from < end; from += w.pipelineSize {
		from, to := from, min(from+w.pipelineSize, end)
		reqs = append(reqs, fanout.Request[bool]{
			Label: fmt.Sprintf("%s[%d:%d]", operation, from, to),
			Do: func(ctx context.Context) (bool, error) {
				return w.flush(ctx, operation, from, to, queue)
			},
		})
	}
	return reqs
}

func (w *Writer) flush(ctx context.Context, operation string, from, to int, queue Queue) (bool, error) {
	session, err := w.pool.Session()
	if err != nil {
		return false, err
	}

	pipe := session.Pipeline()
	for i := from; i < to; i++ {
		queue(ctx, pipe, i)
	}

	cmds, err := pipe.Exec(ctx)
	if err == nil {
		return true, nil
	}

	failed := 0
	for _, cmd := range cmds {
		if cmd.Err() == nil {
			continue
		}
		failed++
		w.logger.WithField("action", operation).
			WithField("command", fmt.Sprintf("%v", cmd.Args())).
			WithError(cmd.Err()).
			Error("store write failed")
	}
	if failed == 0 {
		return false, err
	}
	return false, fmt.Errorf("%d of %d commands failed: %w", failed, len(cmds), err)
}
