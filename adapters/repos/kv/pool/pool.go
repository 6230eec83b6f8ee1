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

package pool

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	enterrors "github.com/DataNirvana/Database-sub000/entities/errors"
	"github.com/DataNirvana/Database-sub000/usecases/config"
)

// Pool is a fixed set of independent sessions to the store. Each session
// multiplexes its own connections, so many requests can be in flight on one
// session at a time.
type Pool struct {
	sessions   atomic.Pointer[[]redis.UniversalClient]
	cluster    bool
	allowAdmin bool
	logger     logrus.FieldLogger
}

// Connect establishes cfg.Size sessions and pings each of them. It fails if
// any session cannot be established.
func Connect(ctx context.Context, cfg config.Pool, logger logrus.FieldLogger) (*Pool, error) {
	logger = logger.WithField("action", "pool_connect")

	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Error("invalid pool configuration")
		return nil, enterrors.NewConnection("connect", err)
	}

	sessions := make([]redis.UniversalClient, cfg.Size)
	for i := range sessions {
		sessions[i] = newSession(cfg)
	}

	eg := enterrors.NewErrorGroupWrapper(logger, "endpoints", cfg.Endpoints)
	for i := range sessions {
		i := i
		eg.Go(func() error {
			return ping(ctx, sessions[i], cfg)
		}, "session", i)
	}

	if err := eg.Wait(); err != nil {
		for _, s := range sessions {
			s.Close()
		}
		logger.WithError(err).
			WithField("endpoints", cfg.Endpoints).
			Error("could not establish store sessions")
		return nil, enterrors.NewConnection(fmt.Sprintf("connect to %v", cfg.Endpoints), err)
	}

	p := &Pool{
		cluster:    cfg.ClusterMode,
		allowAdmin: cfg.AllowAdmin,
		logger:     logger,
	}
	p.sessions.Store(&sessions)

	logger.WithField("sessions", len(sessions)).
		WithField("cluster_mode", cfg.ClusterMode).
		Debug("store sessions established")

	return p, nil
}

func newSession(cfg config.Pool) redis.UniversalClient {
	if cfg.ClusterMode {
		return redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:                 cfg.Endpoints,
			Password:              cfg.Password,
			ContextTimeoutEnabled: true,
		})
	}

	return redis.NewClient(&redis.Options{
		Addr:                  cfg.Endpoints[0],
		Password:              cfg.Password,
		DB:                    cfg.DB,
		ContextTimeoutEnabled: true,
	})
}

func ping(ctx context.Context, s redis.UniversalClient, cfg config.Pool) error {
	b := backoff.WithMaxRetries(
		backoff.NewConstantBackOff(cfg.ConnectRetryInterval.Std()), uint64(cfg.ConnectRetries))

	return backoff.Retry(func() error {
		pingCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout.Std())
		defer cancel()
		return s.Ping(pingCtx).Err()
	}, backoff.WithContext(b, ctx))
}

// Session picks a session from the sub-second part of the wall clock. It
// returns ErrConnection once the pool was disconnected.
func (p *Pool) Session() (redis.UniversalClient, error) {
	sessions := p.sessions.Load()
	if sessions == nil {
		return nil, enterrors.NewConnection("pool is disconnected", nil)
	}
	return (*sessions)[selectIndex(time.Now(), len(*sessions))], nil
}

func selectIndex(now time.Time, n int) int {
	return int(int64(now.Nanosecond()) * int64(n) / int64(time.Second))
}

// Size is the number of sessions, 0 after Disconnect.
func (p *Pool) Size() int {
	sessions := p.sessions.Load()
	if sessions == nil {
		return 0
	}
	return len(*sessions)
}

func (p *Pool) AllowAdmin() bool {
	return p.allowAdmin
}

func (p *Pool) ClusterMode() bool {
	return p.cluster
}

// ForEachNode runs fn once per master node in cluster mode and once against
// a single session otherwise. It is used for keyspace-wide enumeration.
func (p *Pool) ForEachNode(ctx context.Context, fn func(ctx context.Context, node redis.Cmdable) error) error {
	session, err := p.Session()
	if err != nil {
		return err
	}

	if cc, ok := session.(*redis.ClusterClient); ok {
		return cc.ForEachMaster(ctx, func(ctx context.Context, node *redis.Client) error {
			return fn(ctx, node)
		})
	}
	return fn(ctx, session)
}

// Disconnect closes every session. Later calls to Session fail until a new
// pool is connected.
func (p *Pool) Disconnect() error {
	sessions := p.sessions.Swap(nil)
	if sessions == nil {
		return nil
	}

	var result *multierror.Error
	for i, s := range *sessions {
		if err := s.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("close session %d: %w", i, err))
		}
	}

	p.logger.WithField("sessions", len(*sessions)).Debug("store sessions closed")
	return result.ErrorOrNil()
}

// ScanKeys collects every key matching the glob on every node.
func (p *Pool) ScanKeys(ctx context.Context, match string, count int64) ([]string, error) {
	var (
		mu  sync.Mutex
		out []string
	)

	err := p.ForEachNode(ctx, func(ctx context.Context, node redis.Cmdable) error {
		iter := node.Scan(ctx, 0, match, count).Iterator()
		var found []string
		for iter.Next(ctx) {
			found = append(found, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return err
		}

		mu.Lock()
		out = append(out, found...)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %q: %w", match, err)
	}
	return out, nil
}
