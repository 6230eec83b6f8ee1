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

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"

	enterrors "github.com/DataNirvana/Database-sub000/entities/errors"
	"github.com/DataNirvana/Database-sub000/usecases/config"
)

// Options are the global command line options. They apply to every command.
type Options struct {
	Config config.Flags `group:"Engine options"`
}

func main() {
	var opts Options
	log := logrus.WithFields(logrus.Fields{"app": "kvindex"}).Logger

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a := &app{ctx: ctx, opts: &opts, log: log}
	parser := flags.NewParser(&opts, flags.Default)
	parser.AddCommand("demo", "load and query the Widget sample",
		"Clears the Widget namespace, writes three widgets, builds their indexes and runs "+
			"{Price between 1 and 5} and {Name starts \"wi\"}.", &demoCommand{app: a})
	parser.AddCommand("count", "count the records of a namespace", "", &countCommand{app: a})
	parser.AddCommand("clear", "drop a namespace with its records and indexes",
		"Needs the allow_admin option.", &clearCommand{app: a})

	_, err := parser.Parse()
	os.Exit(exitCode(err))
}

// exitTempFail is EX_TEMPFAIL from sysexits.h. Scripts may retry on it.
const exitTempFail = 75

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
		return 0
	}
	if enterrors.IsTransient(err) {
		return exitTempFail
	}
	return 1
}
