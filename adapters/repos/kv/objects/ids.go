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

package objects

import (
	"github.com/sirupsen/logrus"

	"github.com/DataNirvana/Database-sub000/entities/schema"
	"github.com/DataNirvana/Database-sub000/usecases/config"
)

// IDResolver turns the id field of a record into the id it is stored and
// indexed under. Writers and index builders must share one resolver and pass
// the same batch positions, otherwise index entries point at ids that were
// never stored.
type IDResolver struct {
	policy config.ZeroIDPolicy
}

func NewIDResolver(ids config.IDs) IDResolver {
	if ids.ZeroIDPolicy == "" {
		ids.ZeroIDPolicy = config.ZeroIDKeep
	}
	return IDResolver{policy: ids.ZeroIDPolicy}
}

// Resolve returns the id of the record at position in its batch. ok is false
// if the record has no usable id or the zero-id policy rejects it.
func (r IDResolver) Resolve(position int, record schema.Record, class *schema.Class,
	logger logrus.FieldLogger,
) (uint32, bool) {
	prop, _ := class.IDField()
	raw, present := record.Value(prop.Name)
	if !present {
		logger.WithField("position", position).Warn("skipping record without an id")
		return 0, false
	}

	id, err := schema.CanonicalID(raw)
	if err != nil {
		logger.WithField("position", position).WithError(err).Warn("skipping record with an invalid id")
		return 0, false
	}
	if id != 0 {
		return id, true
	}

	switch r.policy {
	case config.ZeroIDReject:
		logger.WithField("position", position).Warn("skipping record with id 0")
		return 0, false
	case config.ZeroIDCounter:
		substitute := uint32(position + 1)
		logger.WithField("position", position).
			WithField("id", substitute).
			Warn("record id is 0, using its position in the batch")
		return substitute, true
	default:
		return 0, true
	}
}
