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

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/DataNirvana/Database-sub000/adapters/repos/kv"
	enterrors "github.com/DataNirvana/Database-sub000/entities/errors"
	"github.com/DataNirvana/Database-sub000/usecases/config"
	"github.com/DataNirvana/Database-sub000/usecases/monitoring"
)

type app struct {
	ctx  context.Context
	opts *Options
	log  *logrus.Logger
}

// engine loads the configuration, starts the metrics endpoint when enabled
// and returns a connected engine. The returned func disconnects it.
func (a *app) engine() (*kv.Engine, logrus.FieldLogger, func(), error) {
	var loaded config.KVIndexConfig
	if err := loaded.LoadConfig(&a.opts.Config, a.log); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load config")
	}
	cfg := loaded.Config

	logger, err := cfg.NewLogger()
	if err != nil {
		return nil, nil, nil, err
	}
	log := logger.WithField("app", "kvindex")

	ctx, cancel := context.WithCancel(a.ctx)
	reg := prometheus.NewRegistry()
	engine := kv.New(cfg, log, monitoring.Registerer(cfg.Monitoring.Enabled, reg))
	if cfg.Monitoring.Enabled {
		enterrors.GoWrapper(func() {
			if err := monitoring.Serve(ctx, cfg.Monitoring.Port, reg, engine.Metrics(), log); err != nil {
				log.WithField("action", "metrics_serve").WithError(err).Error("metrics endpoint stopped")
			}
		}, log)
	}

	if err := engine.Connect(ctx); err != nil {
		cancel()
		return nil, nil, nil, err
	}

	return engine, log, func() {
		if err := engine.Disconnect(); err != nil {
			log.WithField("action", "pool_disconnect").WithError(err).Warn("disconnect")
		}
		cancel()
	}, nil
}
