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

// Package roaringset holds the id sets produced by index lookups. Ids are
// canonical uint32 values stored in a roaring bitmap.
package roaringset

import (
	"sync"

	"github.com/weaviate/sroar"
)

// IDSet is safe for concurrent use. An empty IDSet is the answer of a query
// that matched nothing; a nil *IDSet never is.
type IDSet struct {
	mu sync.Mutex
	bm *sroar.Bitmap
}

func New(ids ...uint32) *IDSet {
	s := &IDSet{bm: sroar.NewBitmap()}
	s.AddMany(ids)
	return s
}

func (s *IDSet) Add(id uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bm.Set(uint64(id))
}

func (s *IDSet) AddMany(ids []uint32) {
	if len(ids) == 0 {
		return
	}

	values := make([]uint64, len(ids))
	for i, id := range ids {
		values[i] = uint64(id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.bm.SetMany(values)
}

func (s *IDSet) Contains(id uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bm.Contains(uint64(id))
}

func (s *IDSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bm.GetCardinality()
}

func (s *IDSet) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bm.IsEmpty()
}

// IDs returns the members in ascending order.
func (s *IDSet) IDs() []uint32 {
	s.mu.Lock()
	values := s.bm.ToArray()
	s.mu.Unlock()

	out := make([]uint32, len(values))
	for i, v := range values {
		out[i] = uint32(v)
	}
	return out
}

func (s *IDSet) snapshot() *sroar.Bitmap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bm.Clone()
}

func (s *IDSet) Clone() *IDSet {
	return &IDSet{bm: s.snapshot()}
}

// Or merges other into s.
func (s *IDSet) Or(other *IDSet) *IDSet {
	if other == nil || other == s {
		return s
	}
	bm := other.snapshot()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.bm.Or(bm)
	return s
}

// And keeps only the members of s that are also in other. other is
// snapshotted before s is locked, so a.And(b) and b.And(a) may run
// concurrently.
func (s *IDSet) And(other *IDSet) *IDSet {
	if other == s {
		return s
	}

	var bm *sroar.Bitmap
	if other != nil {
		bm = other.snapshot()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if bm == nil {
		s.bm = sroar.NewBitmap()
		return s
	}
	s.bm.And(bm)
	return s
}
