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

// Package fanout dispatches many independent store requests at once and
// merges their results as they complete.
package fanout

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	enterrors "github.com/DataNirvana/Database-sub000/entities/errors"
	"github.com/DataNirvana/Database-sub000/usecases/monitoring"
)

// Request is one independent sub-request. Label identifies it in fault logs.
type Request[T any] struct {
	Label string
	Do    func(ctx context.Context) (T, error)
}

// Result summarizes one batch. Err joins every fault of the batch.
type Result struct {
	Dispatched int
	Completed  int
	Faulted    int
	Err        error
}

func (r Result) OK() bool {
	return r.Faulted == 0
}

// Add accumulates the counters of another batch into r.
func (r *Result) Add(other Result) {
	r.Dispatched += other.Dispatched
	r.Completed += other.Completed
	r.Faulted += other.Faulted
	if other.Err != nil {
		r.Err = multierror.Append(r.Err, other.Err)
	}
}

type Collector struct {
	maxInFlight int64
	timeout     time.Duration
	logger      logrus.FieldLogger
	metrics     *monitoring.Metrics
}

// NewCollector bounds the number of pending requests to maxInFlight and the
// lifetime of each request to timeout. A timeout <= 0 disables it.
func NewCollector(maxInFlight int, timeout time.Duration, logger logrus.FieldLogger,
	metrics *monitoring.Metrics,
) *Collector {
	if maxInFlight < 1 {
		maxInFlight = 1
	}
	return &Collector{
		maxInFlight: int64(maxInFlight),
		timeout:     timeout,
		logger:      logger,
		metrics:     metrics,
	}
}

type outcome[T any] struct {
	label string
	value T
	err   error
}

// Collect runs every request in its own goroutine and drains their outcomes
// until all of them reported back. Successful values are passed to merge in
// the calling goroutine, in completion order. A failing request is logged
// and counted but never stops the others. Collect returns once every
// dispatched request resolved; a cancelled ctx faults the requests that were
// not dispatched yet.
func Collect[T any](ctx context.Context, c *Collector, operation string, reqs []Request[T],
	merge func(T),
) Result {
	res := Result{Dispatched: len(reqs)}
	if len(reqs) == 0 {
		return res
	}

	c.metrics.Dispatched(operation, len(reqs))

	sem := semaphore.NewWeighted(c.maxInFlight)
	outcomes := make(chan outcome[T], min(len(reqs), int(c.maxInFlight)))

	enterrors.GoWrapper(func() {
		for i, req := range reqs {
			if err := sem.Acquire(ctx, 1); err != nil {
				for _, skipped := range reqs[i:] {
					outcomes <- outcome[T]{label: skipped.Label, err: err}
				}
				return
			}

			go func(req Request[T]) {
				defer sem.Release(1)
				c.metrics.RequestStarted()
				defer c.metrics.RequestDone()

				v, err := run(ctx, c.timeout, req)
				outcomes <- outcome[T]{label: req.Label, value: v, err: err}
			}(req)
		}
	}, c.logger)

	var faults *multierror.Error
	for received := 0; received < len(reqs); received++ {
		o := <-outcomes
		if o.err != nil {
			res.Faulted++
			c.metrics.Faulted(operation)
			c.logger.WithField("action", "fanout_fault").
				WithField("operation", operation).
				WithField("request", o.label).
				WithError(o.err).
				Error("store request failed")
			faults = multierror.Append(faults, enterrors.NewFaultedRequest(o.label, o.err))
			continue
		}

		res.Completed++
		if merge != nil {
			merge(o.value)
		}
	}

	res.Err = faults.ErrorOrNil()
	return res
}

func run[T any](ctx context.Context, timeout time.Duration, req Request[T]) (v T, err error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic occurred: %v", r)
		}
	}()

	return req.Do(ctx)
}
