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

// Package keys derives every store key of a namespace. Index keys wrap
// "namespace:field" in a hash tag so all buckets of one field land on the
// same cluster slot.
package keys

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/DataNirvana/Database-sub000/entities/schema"
)

const (
	// DefaultTextPrefixWidth is the number of leading characters of a string
	// value that select its text bucket.
	DefaultTextPrefixWidth = 2

	// TextFiller pads values shorter than the prefix width.
	TextFiller = '_'

	primaryKeySuffix = "pk"
	registrySuffix   = "indexes"
)

var validName = regexp.MustCompile(`^[A-Za-z0-9_.\-]+$`)

// ValidateName rejects names that could make two addressed entities share a
// key or that carry glob metacharacters.
func ValidateName(name string) error {
	if !validName.MatchString(name) {
		return fmt.Errorf("invalid name %q: only letters, digits, '_', '.' and '-' are allowed", name)
	}
	return nil
}

// PrimaryKeySet is the set of every id registered in the namespace. It is not
// hash tagged.
func PrimaryKeySet(namespace string) string {
	return namespace + ":" + primaryKeySuffix
}

// Record is the hash holding the field map of one record.
func Record(namespace string, id uint32) string {
	return namespace + ":" + strconv.FormatUint(uint64(id), 10)
}

// Registry is the hash mapping field names to the descriptors of the indexes
// built for them.
func Registry(namespace string) string {
	return namespace + ":" + registrySuffix
}

func kindToken(kind schema.IndexKind) (string, error) {
	switch kind {
	case schema.IndexKindScore:
		return "score", nil
	case schema.IndexKindDateTime:
		return "dt", nil
	case schema.IndexKindBool:
		return "bool", nil
	case schema.IndexKindText:
		return "text", nil
	default:
		return "", fmt.Errorf("index kind %s has no key", kind.Name())
	}
}

func tokenKind(token string) (schema.IndexKind, bool) {
	switch token {
	case "score":
		return schema.IndexKindScore, true
	case "dt":
		return schema.IndexKindDateTime, true
	case "bool":
		return schema.IndexKindBool, true
	case "text":
		return schema.IndexKindText, true
	default:
		return 0, false
	}
}

func tag(namespace, field string) string {
	return "{" + namespace + ":" + field + "}"
}

// Index is the key of one attribute index. Bool and Text indexes are a
// family of sets and need a bucket, Score and DateTime indexes take none.
func Index(namespace, field string, kind schema.IndexKind, bucket string) (string, error) {
	token, err := kindToken(kind)
	if err != nil {
		return "", err
	}

	switch kind {
	case schema.IndexKindBool, schema.IndexKindText:
		if bucket == "" {
			return "", fmt.Errorf("%s index on %s.%s needs a bucket", kind.Name(), namespace, field)
		}
		return tag(namespace, field) + ":" + token + ":" + bucket, nil
	default:
		if bucket != "" {
			return "", fmt.Errorf("%s index on %s.%s takes no bucket", kind.Name(), namespace, field)
		}
		return tag(namespace, field) + ":" + token, nil
	}
}

// MustIndex is Index for callers that validated the kind already.
func MustIndex(namespace, field string, kind schema.IndexKind, bucket string) string {
	key, err := Index(namespace, field, kind, bucket)
	if err != nil {
		panic(err)
	}
	return key
}

// IndexPattern matches every index key of the namespace.
func IndexPattern(namespace string) string {
	return "{" + namespace + ":*"
}

// FieldPattern matches every bucket of one field's index.
func FieldPattern(namespace, field string, kind schema.IndexKind) (string, error) {
	token, err := kindToken(kind)
	if err != nil {
		return "", err
	}
	return tag(namespace, field) + ":" + token + "*", nil
}

// TextBucket lowercases value, truncates it to width characters and pads it
// with TextFiller. Build and query paths must use the same width.
func TextBucket(value string, width int) string {
	if width < 1 {
		width = DefaultTextPrefixWidth
	}

	var sb strings.Builder
	sb.Grow(width)
	n := 0
	for _, r := range strings.ToLower(value) {
		if n == width {
			break
		}
		sb.WriteRune(r)
		n++
	}
	for ; n < width; n++ {
		sb.WriteByte(TextFiller)
	}
	return sb.String()
}

func BoolBucket(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

type KeyType int

const (
	KeyTypePrimaryKeySet KeyType = iota + 1
	KeyTypeRecord
	KeyTypeRegistry
	KeyTypeIndex
)

// Parsed is the decomposition of an addressed key.
type Parsed struct {
	Type      KeyType
	Namespace string
	ID        uint32
	Field     string
	Kind      schema.IndexKind
	Bucket    string
}

// Parse inverts PrimaryKeySet, Record, Registry and Index.
func Parse(key string) (Parsed, error) {
	if strings.HasPrefix(key, "{") {
		return parseIndex(key)
	}

	ns, rest, ok := strings.Cut(key, ":")
	if !ok || ValidateName(ns) != nil {
		return Parsed{}, fmt.Errorf("key %q is not addressed", key)
	}

	switch rest {
	case primaryKeySuffix:
		return Parsed{Type: KeyTypePrimaryKeySet, Namespace: ns}, nil
	case registrySuffix:
		return Parsed{Type: KeyTypeRegistry, Namespace: ns}, nil
	}

	id, err := strconv.ParseUint(rest, 10, 32)
	if err != nil || strconv.FormatUint(id, 10) != rest {
		return Parsed{}, fmt.Errorf("key %q is not addressed", key)
	}
	return Parsed{Type: KeyTypeRecord, Namespace: ns, ID: uint32(id)}, nil
}

func parseIndex(key string) (Parsed, error) {
	end := strings.IndexByte(key, '}')
	if end < 0 {
		return Parsed{}, fmt.Errorf("index key %q has no closing tag", key)
	}

	ns, field, ok := strings.Cut(key[1:end], ":")
	if !ok || ValidateName(ns) != nil || ValidateName(field) != nil {
		return Parsed{}, fmt.Errorf("index key %q has an invalid tag", key)
	}

	rest, ok := strings.CutPrefix(key[end+1:], ":")
	if !ok {
		return Parsed{}, fmt.Errorf("index key %q has no kind", key)
	}
	token, bucket, hasBucket := strings.Cut(rest, ":")
	kind, ok := tokenKind(token)
	if !ok {
		return Parsed{}, fmt.Errorf("index key %q has unknown kind %q", key, token)
	}

	needsBucket := kind == schema.IndexKindBool || kind == schema.IndexKindText
	if needsBucket != hasBucket || (hasBucket && bucket == "") {
		return Parsed{}, fmt.Errorf("index key %q has a malformed bucket", key)
	}
	if kind == schema.IndexKindText && !utf8.ValidString(bucket) {
		return Parsed{}, fmt.Errorf("index key %q has a malformed bucket", key)
	}

	return Parsed{Type: KeyTypeIndex, Namespace: ns, Field: field, Kind: kind, Bucket: bucket}, nil
}
