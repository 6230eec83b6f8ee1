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

package schema

import (
	"math"
	"strconv"
	"time"

	enterrors "github.com/DataNirvana/Database-sub000/entities/errors"
)

// ticksAtUnixEpoch is the number of 100ns ticks between
// 0001-01-01T00:00:00Z and the unix epoch.
const ticksAtUnixEpoch = int64(621355968000000000)

// Ticks converts t into the number of 100ns intervals elapsed since
// 0001-01-01T00:00:00Z. Precision below 100ns is truncated.
func Ticks(t time.Time) int64 {
	return t.Unix()*1e7 + int64(t.Nanosecond())/100 + ticksAtUnixEpoch
}

// FromTicks is the inverse of Ticks. The result is in UTC.
func FromTicks(ticks int64) time.Time {
	d := ticks - ticksAtUnixEpoch
	sec, rem := d/1e7, d%1e7
	if rem < 0 {
		sec--
		rem += 1e7
	}
	return time.Unix(sec, rem*100).UTC()
}

// EncodeValue renders v as the string stored in a record's field map:
// integers in base 10, doubles in the shortest form that parses back to the
// same value, bools as "0"/"1" and datetimes as a tick count.
func EncodeValue(dt DataType, v interface{}) (string, error) {
	switch dt {
	case DataTypeInt32, DataTypeInt64:
		i, err := toInt64(dt, v)
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(i, 10), nil
	case DataTypeUint32, DataTypeUint64:
		u, err := toUint64(dt, v)
		if err != nil {
			return "", err
		}
		return strconv.FormatUint(u, 10), nil
	case DataTypeDouble:
		f, err := toFloat64(v)
		if err != nil {
			return "", err
		}
		return strconv.FormatFloat(f, 'g', -1, 64), nil
	case DataTypeBool:
		b, ok := v.(bool)
		if !ok {
			return "", enterrors.NewTypeCoercion("expected bool, got %T", v)
		}
		return EncodeBool(b), nil
	case DataTypeString:
		s, ok := v.(string)
		if !ok {
			return "", enterrors.NewTypeCoercion("expected string, got %T", v)
		}
		return s, nil
	case DataTypeDateTime:
		t, ok := v.(time.Time)
		if !ok {
			return "", enterrors.NewTypeCoercion("expected time.Time, got %T", v)
		}
		return strconv.FormatInt(Ticks(t), 10), nil
	default:
		return "", enterrors.NewTypeCoercion("unsupported data type %q", dt)
	}
}

// DecodeValue parses a stored field string back into the Go type of its
// declared data type.
func DecodeValue(dt DataType, raw string) (interface{}, error) {
	switch dt {
	case DataTypeInt32:
		i, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return nil, enterrors.NewTypeCoercion("parse %q as %s: %v", raw, dt, err)
		}
		return int32(i), nil
	case DataTypeInt64:
		i, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, enterrors.NewTypeCoercion("parse %q as %s: %v", raw, dt, err)
		}
		return i, nil
	case DataTypeUint32:
		u, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return nil, enterrors.NewTypeCoercion("parse %q as %s: %v", raw, dt, err)
		}
		return uint32(u), nil
	case DataTypeUint64:
		u, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, enterrors.NewTypeCoercion("parse %q as %s: %v", raw, dt, err)
		}
		return u, nil
	case DataTypeDouble:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, enterrors.NewTypeCoercion("parse %q as %s: %v", raw, dt, err)
		}
		return f, nil
	case DataTypeBool:
		return DecodeBool(raw)
	case DataTypeString:
		return raw, nil
	case DataTypeDateTime:
		ticks, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, enterrors.NewTypeCoercion("parse %q as %s: %v", raw, dt, err)
		}
		return FromTicks(ticks), nil
	default:
		return nil, enterrors.NewTypeCoercion("unsupported data type %q", dt)
	}
}

// ScoreOf returns the sorted-set score of a numeric or datetime value.
func ScoreOf(dt DataType, v interface{}) (float64, error) {
	switch dt {
	case DataTypeInt32, DataTypeInt64:
		i, err := toInt64(dt, v)
		return float64(i), err
	case DataTypeUint32, DataTypeUint64:
		u, err := toUint64(dt, v)
		return float64(u), err
	case DataTypeDouble:
		return toFloat64(v)
	case DataTypeDateTime:
		t, ok := v.(time.Time)
		if !ok {
			return 0, enterrors.NewTypeCoercion("expected time.Time, got %T", v)
		}
		return float64(Ticks(t)), nil
	default:
		return 0, enterrors.NewTypeCoercion("data type %q has no score", dt)
	}
}

// ParseScore reads a stored field string as the score the index would hold
// for it. Integers and tick counts go through the same float64 conversion as
// ScoreOf so both paths round identically.
func ParseScore(dt DataType, raw string) (float64, error) {
	switch dt {
	case DataTypeInt32, DataTypeInt64, DataTypeDateTime:
		i, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, enterrors.NewTypeCoercion("parse %q as %s: %v", raw, dt, err)
		}
		return float64(i), nil
	case DataTypeUint32, DataTypeUint64:
		u, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return 0, enterrors.NewTypeCoercion("parse %q as %s: %v", raw, dt, err)
		}
		return float64(u), nil
	default:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, enterrors.NewTypeCoercion("parse %q as score: %v", raw, err)
		}
		return f, nil
	}
}

func EncodeBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func DecodeBool(raw string) (bool, error) {
	switch raw {
	case "1":
		return true, nil
	case "0":
		return false, nil
	default:
		return false, enterrors.NewTypeCoercion("parse %q as bool: expected \"0\" or \"1\"", raw)
	}
}

// CanonicalID converts a record identity into the unsigned 32-bit form used
// by every index.
func CanonicalID(v interface{}) (uint32, error) {
	switch id := v.(type) {
	case uint32:
		return id, nil
	case string:
		u, err := strconv.ParseUint(id, 10, 32)
		if err != nil {
			return 0, enterrors.NewTypeCoercion("parse id %q: %v", id, err)
		}
		return uint32(u), nil
	case float64, float32:
		return 0, enterrors.NewTypeCoercion("id must be an integer, got %T", v)
	}

	if u, err := toUint64(DataTypeUint64, v); err == nil {
		if u > math.MaxUint32 {
			return 0, enterrors.NewTypeCoercion("id %d exceeds the uint32 range", u)
		}
		return uint32(u), nil
	}

	i, err := toInt64(DataTypeInt64, v)
	if err != nil {
		return 0, err
	}
	if i < 0 || i > math.MaxUint32 {
		return 0, enterrors.NewTypeCoercion("id %d outside the uint32 range", i)
	}
	return uint32(i), nil
}

func toInt64(dt DataType, v interface{}) (int64, error) {
	var i int64
	switch n := v.(type) {
	case int:
		i = int64(n)
	case int8:
		i = int64(n)
	case int16:
		i = int64(n)
	case int32:
		i = int64(n)
	case int64:
		i = n
	case uint8:
		i = int64(n)
	case uint16:
		i = int64(n)
	case uint32:
		i = int64(n)
	case uint64:
		if n > math.MaxInt64 {
			return 0, enterrors.NewTypeCoercion("value %d overflows %s", n, dt)
		}
		i = int64(n)
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, enterrors.NewTypeCoercion("value %d overflows %s", n, dt)
		}
		i = int64(n)
	default:
		return 0, enterrors.NewTypeCoercion("expected integer for %s, got %T", dt, v)
	}

	if dt == DataTypeInt32 && (i < math.MinInt32 || i > math.MaxInt32) {
		return 0, enterrors.NewTypeCoercion("value %d overflows %s", i, dt)
	}
	return i, nil
}

func toUint64(dt DataType, v interface{}) (uint64, error) {
	var u uint64
	switch n := v.(type) {
	case uint:
		u = uint64(n)
	case uint8:
		u = uint64(n)
	case uint16:
		u = uint64(n)
	case uint32:
		u = uint64(n)
	case uint64:
		u = n
	case int, int8, int16, int32, int64:
		i, err := toInt64(DataTypeInt64, v)
		if err != nil {
			return 0, err
		}
		if i < 0 {
			return 0, enterrors.NewTypeCoercion("negative value %d for %s", i, dt)
		}
		u = uint64(i)
	default:
		return 0, enterrors.NewTypeCoercion("expected integer for %s, got %T", dt, v)
	}

	if dt == DataTypeUint32 && u > math.MaxUint32 {
		return 0, enterrors.NewTypeCoercion("value %d overflows %s", u, dt)
	}
	return u, nil
}

func toFloat64(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int, int8, int16, int32, int64:
		i, err := toInt64(DataTypeInt64, v)
		return float64(i), err
	case uint, uint8, uint16, uint32, uint64:
		u, err := toUint64(DataTypeUint64, v)
		return float64(u), err
	default:
		return 0, enterrors.NewTypeCoercion("expected number, got %T", v)
	}
}
