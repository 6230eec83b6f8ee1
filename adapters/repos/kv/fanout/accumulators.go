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

package fanout

import (
	"context"

	"github.com/DataNirvana/Database-sub000/adapters/repos/kv/roaringset"
)

// CollectIDs unions the ids returned by every successful request. The set is
// never nil.
func CollectIDs(ctx context.Context, c *Collector, operation string,
	reqs []Request[[]uint32],
) (*roaringset.IDSet, Result) {
	ids := roaringset.New()
	res := Collect(ctx, c, operation, reqs, func(batch []uint32) {
		ids.AddMany(batch)
	})
	return ids, res
}

// CollectAll is the logical AND of every request's value. A faulted request
// counts as false.
func CollectAll(ctx context.Context, c *Collector, operation string,
	reqs []Request[bool],
) (bool, Result) {
	all := true
	res := Collect(ctx, c, operation, reqs, func(ok bool) {
		all = all && ok
	})
	return all && res.OK(), res
}
