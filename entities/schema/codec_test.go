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
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	enterrors "github.com/DataNirvana/Database-sub000/entities/errors"
)

func TestTicks(t *testing.T) {
	t.Run("unix epoch", func(t *testing.T) {
		assert.Equal(t, ticksAtUnixEpoch, Ticks(time.Unix(0, 0)))
	})

	t.Run("year one", func(t *testing.T) {
		assert.Equal(t, int64(0), Ticks(time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("round trip", func(t *testing.T) {
		in := time.Date(2021, 3, 14, 15, 9, 26, 535897900, time.UTC)
		assert.True(t, in.Equal(FromTicks(Ticks(in))))
	})

	t.Run("before the unix epoch", func(t *testing.T) {
		in := time.Date(1969, 12, 31, 23, 59, 59, 500, time.UTC)
		assert.True(t, in.Equal(FromTicks(Ticks(in))))
	})

	t.Run("sub-tick precision is truncated", func(t *testing.T) {
		in := time.Date(2020, 1, 1, 0, 0, 0, 199, time.UTC)
		assert.Equal(t, 100, FromTicks(Ticks(in)).Nanosecond())
	})
}

func TestEncodeDecodeValue(t *testing.T) {
	created := time.Date(2022, 6, 1, 12, 0, 0, 0, time.UTC)

	type testCase struct {
		name     string
		dataType DataType
		in       interface{}
		encoded  string
		decoded  interface{}
	}

	testCases := []testCase{
		{"int32", DataTypeInt32, int32(-7), "-7", int32(-7)},
		{"int32 from int", DataTypeInt32, 42, "42", int32(42)},
		{"int64", DataTypeInt64, int64(math.MinInt64), "-9223372036854775808", int64(math.MinInt64)},
		{"uint32", DataTypeUint32, uint32(math.MaxUint32), "4294967295", uint32(math.MaxUint32)},
		{"uint64", DataTypeUint64, uint64(math.MaxUint64), "18446744073709551615", uint64(math.MaxUint64)},
		{"double", DataTypeDouble, 2.5, "2.5", 2.5},
		{"double shortest form", DataTypeDouble, 0.1, "0.1", 0.1},
		{"double from int", DataTypeDouble, 4, "4", 4.0},
		{"bool true", DataTypeBool, true, "1", true},
		{"bool false", DataTypeBool, false, "0", false},
		{"string", DataTypeString, "Wind", "Wind", "Wind"},
		{"datetime", DataTypeDateTime, created, "637896816000000000", created},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := EncodeValue(tc.dataType, tc.in)
			require.Nil(t, err)
			assert.Equal(t, tc.encoded, encoded)

			decoded, err := DecodeValue(tc.dataType, encoded)
			require.Nil(t, err)
			assert.Equal(t, tc.decoded, decoded)
		})
	}
}

func TestEncodeValue_Coercion(t *testing.T) {
	type testCase struct {
		name     string
		dataType DataType
		in       interface{}
	}

	testCases := []testCase{
		{"int32 overflow", DataTypeInt32, int64(math.MaxInt32) + 1},
		{"negative uint", DataTypeUint32, -1},
		{"uint32 overflow", DataTypeUint32, uint64(math.MaxUint32) + 1},
		{"string as int", DataTypeInt64, "12"},
		{"int as bool", DataTypeBool, 1},
		{"string as datetime", DataTypeDateTime, "2020-01-01"},
		{"unknown type", DataType("decimal"), 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := EncodeValue(tc.dataType, tc.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, enterrors.ErrTypeCoercion))
		})
	}
}

func TestDecodeValue_Coercion(t *testing.T) {
	_, err := DecodeValue(DataTypeBool, "true")
	assert.True(t, errors.Is(err, enterrors.ErrTypeCoercion))

	_, err = DecodeValue(DataTypeInt32, "4294967295")
	assert.True(t, errors.Is(err, enterrors.ErrTypeCoercion))

	_, err = DecodeValue(DataTypeDouble, "cheap")
	assert.True(t, errors.Is(err, enterrors.ErrTypeCoercion))
}

func TestScoreOfMatchesParseScore(t *testing.T) {
	created := time.Date(2023, 1, 2, 3, 4, 5, 600, time.UTC)

	inputs := []struct {
		dataType DataType
		value    interface{}
	}{
		{DataTypeInt64, int64(9007199254740993)},
		{DataTypeUint64, uint64(math.MaxUint64)},
		{DataTypeDouble, 9.99},
		{DataTypeInt32, int32(-12)},
		{DataTypeDateTime, created},
	}

	for _, in := range inputs {
		t.Run(string(in.dataType), func(t *testing.T) {
			score, err := ScoreOf(in.dataType, in.value)
			require.Nil(t, err)

			raw, err := EncodeValue(in.dataType, in.value)
			require.Nil(t, err)

			parsed, err := ParseScore(in.dataType, raw)
			require.Nil(t, err)
			assert.Equal(t, score, parsed)
		})
	}
}

func TestCanonicalID(t *testing.T) {
	valid := []struct {
		in       interface{}
		expected uint32
	}{
		{uint32(7), 7},
		{int(12), 12},
		{int64(math.MaxUint32), math.MaxUint32},
		{uint64(3), 3},
		{int32(0), 0},
		{"99", 99},
	}
	for _, v := range valid {
		id, err := CanonicalID(v.in)
		require.Nil(t, err, "input %v", v.in)
		assert.Equal(t, v.expected, id)
	}

	invalid := []interface{}{-1, int64(math.MaxUint32) + 1, uint64(math.MaxUint32) + 1, 1.5, "abc", true}
	for _, in := range invalid {
		_, err := CanonicalID(in)
		assert.True(t, errors.Is(err, enterrors.ErrTypeCoercion), "input %v", in)
	}
}
