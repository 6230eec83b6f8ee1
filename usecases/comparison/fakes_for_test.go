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

package comparison

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/DataNirvana/Database-sub000/adapters/repos/kv/inverted"
	"github.com/DataNirvana/Database-sub000/adapters/repos/kv/roaringset"
	"github.com/DataNirvana/Database-sub000/entities/filters"
)

type fakeSearcher struct {
	mock.Mock
}

func (f *fakeSearcher) Search(ctx context.Context, namespace string, plan filters.Plan,
	mode filters.CombineMode, info inverted.IndexInfo,
) (*roaringset.IDSet, error) {
	args := f.Called(namespace, plan, mode)
	if args.Get(0) != nil {
		return args.Get(0).(*roaringset.IDSet), args.Error(1)
	}
	return nil, args.Error(1)
}

type fakeRelational struct {
	mock.Mock
}

func (f *fakeRelational) Query(ctx context.Context, query string, args ...interface{}) ([]Row, time.Duration, error) {
	called := f.Called(append([]interface{}{query}, args...)...)
	var rows []Row
	if called.Get(0) != nil {
		rows = called.Get(0).([]Row)
	}
	return rows, called.Get(1).(time.Duration), called.Error(2)
}
