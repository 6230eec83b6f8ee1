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
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/DataNirvana/Database-sub000/adapters/repos/kv/roaringset"
	"github.com/DataNirvana/Database-sub000/entities/filters"
)

// TraceEntry describes one executed search.
type TraceEntry struct {
	QueryID   uuid.UUID     `json:"queryId"`
	Namespace string        `json:"namespace"`
	Plan      string        `json:"plan"`
	Mode      string        `json:"mode"`
	Path      string        `json:"path"`
	Results   int           `json:"results"`
	Duration  time.Duration `json:"duration"`
	Err       string        `json:"error,omitempty"`
}

// trace keeps the most recent searches. A nil trace records nothing.
type trace struct {
	sync.Mutex
	limit int
	items []TraceEntry
}

func newTrace(limit int) *trace {
	if limit < 1 {
		limit = 1
	}
	return &trace{limit: limit}
}

func (t *trace) record(namespace string, plan filters.Plan, mode filters.CombineMode, path string,
	ids *roaringset.IDSet, took time.Duration, err error,
) {
	if t == nil {
		return
	}

	entry := TraceEntry{
		QueryID:   uuid.New(),
		Namespace: namespace,
		Plan:      plan.String(),
		Mode:      mode.Name(),
		Path:      path,
		Duration:  took,
	}
	if ids != nil {
		entry.Results = ids.Len()
	}
	if err != nil {
		entry.Err = err.Error()
	}

	t.Lock()
	defer t.Unlock()
	if len(t.items) == t.limit {
		copy(t.items, t.items[1:])
		t.items = t.items[:len(t.items)-1]
	}
	t.items = append(t.items, entry)
}

func (t *trace) entries() []TraceEntry {
	if t == nil {
		return []TraceEntry{}
	}

	t.Lock()
	defer t.Unlock()
	out := make([]TraceEntry, len(t.items))
	copy(out, t.items)
	return out
}
