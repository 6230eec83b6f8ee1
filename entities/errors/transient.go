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

package errors

import (
	"errors"
	"fmt"
)

// Sentinels of the error taxonomy. Callers match them with errors.Is, the
// constructors below attach context while keeping the sentinel in the chain.
var (
	// ErrConnection means the pool or its transport is unavailable. It is fatal
	// for the calling operation, not for the process.
	ErrConnection = errors.New("connection unavailable")

	// ErrFaultedRequest marks a single asynchronous sub-request that failed.
	// It never aborts the batch that contains it.
	ErrFaultedRequest = errors.New("faulted request")

	// ErrTypeCoercion marks a field value that cannot be parsed or is not
	// supported for its declared type.
	ErrTypeCoercion = errors.New("type coercion")

	// ErrPlanningInconsistency marks a query whose requested combine mode had
	// to be overridden.
	ErrPlanningInconsistency = errors.New("planning inconsistency")

	// ErrIndexAbsent marks a predicate on a field without a built index.
	ErrIndexAbsent = errors.New("index absent")
)

func NewConnection(msg string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%s: %w", msg, ErrConnection)
	}
	return fmt.Errorf("%s: %w: %w", msg, ErrConnection, cause)
}

func NewFaultedRequest(label string, cause error) error {
	return fmt.Errorf("%s: %w: %w", label, ErrFaultedRequest, cause)
}

func NewTypeCoercion(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrTypeCoercion)
}

func NewPlanningInconsistency(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrPlanningInconsistency)
}

func NewIndexAbsent(namespace, field string) error {
	return fmt.Errorf("no index for %s.%s: %w", namespace, field, ErrIndexAbsent)
}

// IsTransient reports whether retrying the failed operation may succeed.
func IsTransient(err error) bool {
	return errors.Is(err, ErrFaultedRequest) || errors.Is(err, ErrConnection)
}
