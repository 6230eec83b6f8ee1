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

import "fmt"

type DataType string

const (
	// DataTypeInt32 is a signed 32-bit integer
	DataTypeInt32 DataType = "int32"
	// DataTypeInt64 is a signed 64-bit integer
	DataTypeInt64 DataType = "int64"
	// DataTypeUint32 is an unsigned 32-bit integer
	DataTypeUint32 DataType = "uint32"
	// DataTypeUint64 is an unsigned 64-bit integer
	DataTypeUint64 DataType = "uint64"
	// DataTypeDouble is a 64-bit floating point number
	DataTypeDouble DataType = "double"
	// DataTypeBool is a boolean, stored as "0" or "1"
	DataTypeBool DataType = "bool"
	// DataTypeString is a string, indexed by its lowercase prefix
	DataTypeString DataType = "string"
	// DataTypeDateTime is a point in time, stored as a tick count
	DataTypeDateTime DataType = "datetime"
)

var ScalarDataTypes = []DataType{
	DataTypeInt32, DataTypeInt64, DataTypeUint32, DataTypeUint64,
	DataTypeDouble, DataTypeBool, DataTypeString, DataTypeDateTime,
}

func (dt DataType) String() string {
	return string(dt)
}

func (dt DataType) Valid() bool {
	for _, known := range ScalarDataTypes {
		if dt == known {
			return true
		}
	}
	return false
}

func (dt DataType) IsNumeric() bool {
	switch dt {
	case DataTypeInt32, DataTypeInt64, DataTypeUint32, DataTypeUint64, DataTypeDouble:
		return true
	default:
		return false
	}
}

// IndexKind names the structure that serves predicates on a field.
type IndexKind int

const (
	IndexKindPrimaryKey IndexKind = iota + 1
	// IndexKindScore is a sorted set keyed by numeric value
	IndexKindScore
	// IndexKindDateTime is a sorted set keyed by tick count
	IndexKindDateTime
	// IndexKindBool is a pair of disjoint sets, one per boolean value
	IndexKindBool
	// IndexKindText is a family of sets, one per fixed-width prefix bucket
	IndexKindText
)

func (k IndexKind) Name() string {
	switch k {
	case IndexKindPrimaryKey:
		return "PrimaryKey"
	case IndexKindScore:
		return "Score"
	case IndexKindDateTime:
		return "DateTime"
	case IndexKindBool:
		return "Bool"
	case IndexKindText:
		return "Text"
	default:
		return fmt.Sprintf("IndexKind(%d)", int(k))
	}
}

// RangeCapable reports whether the kind is a sorted set with observable
// bounds.
func (k IndexKind) RangeCapable() bool {
	return k == IndexKindScore || k == IndexKindDateTime
}

// KindFor maps a declared scalar type to the index kind built for it.
func KindFor(dt DataType) (IndexKind, error) {
	switch dt {
	case DataTypeInt32, DataTypeInt64, DataTypeUint32, DataTypeUint64, DataTypeDouble:
		return IndexKindScore, nil
	case DataTypeDateTime:
		return IndexKindDateTime, nil
	case DataTypeBool:
		return IndexKindBool, nil
	case DataTypeString:
		return IndexKindText, nil
	case "":
		return 0, fmt.Errorf("data type cannot be empty")
	default:
		return 0, fmt.Errorf("data type %q has no index kind", dt)
	}
}
