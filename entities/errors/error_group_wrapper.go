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
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrorGroupWrapper is an errgroup.Group whose goroutines turn panics into
// errors returned from Wait.
type ErrorGroupWrapper struct {
	*errgroup.Group
	logger logrus.FieldLogger

	mu          sync.Mutex
	returnError error
	variables   []interface{}
}

func NewErrorGroupWrapper(logger logrus.FieldLogger, vars ...interface{}) *ErrorGroupWrapper {
	return &ErrorGroupWrapper{
		Group:     new(errgroup.Group),
		logger:    logger,
		variables: vars,
	}
}

func (egw *ErrorGroupWrapper) Go(f func() error, localVars ...interface{}) {
	egw.Group.Go(func() error {
		defer func() {
			if recoveryDisabled() {
				return
			}
			if r := recover(); r != nil {
				egw.logger.WithField("action", "recover_panic").
					WithField("local_vars", localVars).
					WithField("vars", egw.variables).
					Errorf("Recovered from panic: %v", r)
				debug.PrintStack()

				egw.mu.Lock()
				egw.returnError = fmt.Errorf("panic occurred: %v", r)
				egw.mu.Unlock()
			}
		}()
		return f()
	})
}

func (egw *ErrorGroupWrapper) Wait() error {
	if err := egw.Group.Wait(); err != nil {
		return err
	}

	egw.mu.Lock()
	defer egw.mu.Unlock()
	return egw.returnError
}
