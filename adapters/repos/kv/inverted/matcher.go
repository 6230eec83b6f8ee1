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
	"strconv"

	"github.com/DataNirvana/Database-sub000/adapters/repos/kv/keys"
	enterrors "github.com/DataNirvana/Database-sub000/entities/errors"
	"github.com/DataNirvana/Database-sub000/entities/filters"
	"github.com/DataNirvana/Database-sub000/entities/schema"
)

// Matches re-derives, from the raw stored value of a field, the decision the
// index lookup makes for pattern: inclusive score bounds, the same text
// bucket for the given prefix width and the "0"/"1" bool encoding. For
// primary-key patterns raw is the record id.
func Matches(raw string, pattern filters.Pattern, width int) (bool, error) {
	switch pattern.Kind {
	case schema.IndexKindPrimaryKey:
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return false, enterrors.NewTypeCoercion("parse id %q: %v", raw, err)
		}
		return uint32(id) == pattern.ID, nil

	case schema.IndexKindScore, schema.IndexKindDateTime:
		dt := schema.DataTypeDouble
		if pattern.Kind == schema.IndexKindDateTime {
			dt = schema.DataTypeDateTime
		}
		score, err := schema.ParseScore(dt, raw)
		if err != nil {
			return false, err
		}
		min, max := pattern.Bounds()
		return score >= min && score <= max, nil

	case schema.IndexKindBool:
		if _, err := schema.DecodeBool(raw); err != nil {
			return false, err
		}
		return raw == keys.BoolBucket(pattern.Bool), nil

	case schema.IndexKindText:
		return keys.TextBucket(raw, width) == keys.TextBucket(pattern.Text, width), nil

	default:
		return false, enterrors.NewTypeCoercion("pattern %s has unknown kind", pattern)
	}
}
