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

package monitoring

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

type countingListener struct {
	net.Listener
	open prometheus.Gauge
}

func (c *countingListener) Accept() (net.Conn, error) {
	conn, err := c.Listener.Accept()
	if err != nil {
		return nil, err
	}
	c.open.Inc()
	return &countingConn{Conn: conn, open: c.open}, nil
}

type countingConn struct {
	net.Conn
	open prometheus.Gauge
	once sync.Once
}

// Close may be called more than once, the gauge is decremented only on the
// first call.
func (c *countingConn) Close() error {
	err := c.Conn.Close()
	c.once.Do(c.open.Dec)
	return err
}

// Serve exposes the gatherer on /metrics until ctx is cancelled. When m is
// non-nil, open scrape connections are counted.
func Serve(ctx context.Context, port int, gatherer prometheus.Gatherer, m *Metrics,
	logger logrus.FieldLogger,
) error {
	l, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("listen on metrics port %d: %w", port, err)
	}
	if m != nil {
		l = &countingListener{Listener: l, open: m.OpenConnections}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.WithField("action", "metrics_serve").
		WithField("port", port).
		Info("serving prometheus metrics")

	if err := srv.Serve(l); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
