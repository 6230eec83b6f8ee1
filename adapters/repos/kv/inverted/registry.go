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
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/DataNirvana/Database-sub000/adapters/repos/kv/keys"
	"github.com/DataNirvana/Database-sub000/entities/schema"
)

// registryEntry is the value stored per field in the namespace registry hash.
type registryEntry struct {
	kind     schema.IndexKind
	dataType schema.DataType
}

func (e registryEntry) encode() string {
	return e.kind.Name() + ":" + string(e.dataType)
}

func decodeRegistryEntry(raw string) (registryEntry, error) {
	name, dt, ok := strings.Cut(raw, ":")
	if !ok {
		return registryEntry{}, fmt.Errorf("malformed registry entry %q", raw)
	}

	for _, kind := range []schema.IndexKind{
		schema.IndexKindScore, schema.IndexKindDateTime, schema.IndexKindBool, schema.IndexKindText,
	} {
		if kind.Name() == name {
			return registryEntry{kind: kind, dataType: schema.DataType(dt)}, nil
		}
	}
	return registryEntry{}, fmt.Errorf("registry entry %q has unknown kind", raw)
}

func register(ctx context.Context, c redis.Cmdable, namespace, field string, entry registryEntry) error {
	return c.HSet(ctx, keys.Registry(namespace), field, entry.encode()).Err()
}

func readRegistry(ctx context.Context, c redis.Cmdable, namespace string) (map[string]registryEntry, error) {
	raw, err := c.HGetAll(ctx, keys.Registry(namespace)).Result()
	if err != nil {
		return nil, err
	}

	out := make(map[string]registryEntry, len(raw))
	for field, value := range raw {
		entry, err := decodeRegistryEntry(value)
		if err != nil {
			return nil, err
		}
		out[field] = entry
	}
	return out, nil
}
