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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	c := Default()
	require.Nil(t, c.Validate())

	assert.Equal(t, []string{"localhost:6379"}, c.Pool.Endpoints)
	assert.Equal(t, 10, c.Pool.Size)
	assert.Equal(t, 336*time.Second, c.Pool.RequestTimeout.Std())
	assert.Equal(t, 5_000_000, c.Write.ChunkSize)
	assert.Equal(t, 10_000_000, c.IndexBuild.PauseThreshold)
	assert.Equal(t, 10*time.Millisecond, c.IndexBuild.PauseLength.Std())
	assert.Equal(t, 2, c.Query.TextPrefixWidth)
	assert.Equal(t, 1000, c.Query.ScanThreshold())
	assert.True(t, c.Query.ForcesBoolRefinement())
	assert.Equal(t, MissingIndexFail, c.Query.MissingIndex)
	assert.Equal(t, ZeroIDKeep, c.IDs.ZeroIDPolicy)
	assert.Equal(t, 4096, c.Fanout.MaxInFlight)
	assert.Equal(t, 500, c.Fanout.PipelineSize)

	disabled := false
	c.Query.BoolForcesRefinement = &disabled
	assert.False(t, c.Query.ForcesBoolRefinement())
}

func TestValidate(t *testing.T) {
	type testCase struct {
		name   string
		modify func(c *Config)
	}

	testCases := []testCase{
		{"no endpoints", func(c *Config) { c.Pool.Endpoints = []string{} }},
		{"blank endpoint", func(c *Config) { c.Pool.Endpoints = []string{" "} }},
		{"negative pool size", func(c *Config) { c.Pool.Size = -1 }},
		{"db in cluster mode", func(c *Config) { c.Pool.ClusterMode = true; c.Pool.DB = 2 }},
		{"negative chunk size", func(c *Config) { c.Write.ChunkSize = -5 }},
		{"negative prefix width", func(c *Config) { c.Query.TextPrefixWidth = -1 }},
		{"negative scan threshold", func(c *Config) { n := -1; c.Query.RangeScanThreshold = &n }},
		{"unknown missing index policy", func(c *Config) { c.Query.MissingIndex = "ignore" }},
		{"unknown zero id policy", func(c *Config) { c.IDs.ZeroIDPolicy = "random" }},
		{"negative pipeline size", func(c *Config) { c.Fanout.PipelineSize = -1 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := Default()
			tc.modify(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid config")
		})
	}
}

func TestFromEnv(t *testing.T) {
	t.Run("overrides", func(t *testing.T) {
		t.Setenv("KVINDEX_ENDPOINTS", "a:1, b:2,")
		t.Setenv("KVINDEX_POOL_SIZE", "4")
		t.Setenv("KVINDEX_REQUEST_TIMEOUT", "1500")
		t.Setenv("KVINDEX_CLUSTER_MODE", "true")
		t.Setenv("KVINDEX_ALLOW_ADMIN", "on")
		t.Setenv("KVINDEX_TEXT_PREFIX_WIDTH", "3")
		t.Setenv("KVINDEX_RANGE_SCAN_THRESHOLD", "0")
		t.Setenv("KVINDEX_MISSING_INDEX", "SCAN")
		t.Setenv("KVINDEX_ZERO_ID_POLICY", "counter")
		t.Setenv("PROMETHEUS_MONITORING_ENABLED", "1")

		c := Config{}
		require.Nil(t, FromEnv(&c))

		assert.Equal(t, []string{"a:1", "b:2"}, c.Pool.Endpoints)
		assert.Equal(t, 4, c.Pool.Size)
		assert.Equal(t, 1500*time.Millisecond, c.Pool.RequestTimeout.Std())
		assert.True(t, c.Pool.ClusterMode)
		assert.True(t, c.Pool.AllowAdmin)
		assert.Equal(t, 3, c.Query.TextPrefixWidth)
		require.NotNil(t, c.Query.RangeScanThreshold)
		c.SetDefaults()
		assert.Equal(t, 0, c.Query.ScanThreshold())
		assert.Equal(t, MissingIndexScan, c.Query.MissingIndex)
		assert.Equal(t, ZeroIDCounter, c.IDs.ZeroIDPolicy)
		assert.True(t, c.Monitoring.Enabled)
	})

	t.Run("duration strings", func(t *testing.T) {
		t.Setenv("KVINDEX_REQUEST_TIMEOUT", "2s")
		c := Config{}
		require.Nil(t, FromEnv(&c))
		assert.Equal(t, 2*time.Second, c.Pool.RequestTimeout.Std())
	})

	invalid := []struct {
		name  string
		value string
	}{
		{"KVINDEX_POOL_SIZE", "0"},
		{"KVINDEX_POOL_SIZE", "ten"},
		{"KVINDEX_WRITE_CHUNK_SIZE", "-3"},
		{"KVINDEX_DB", "x"},
		{"KVINDEX_REQUEST_TIMEOUT", "soon"},
	}
	for _, tt := range invalid {
		t.Run(tt.name+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.name, tt.value)
			c := Config{}
			require.NotNil(t, FromEnv(&c))
		})
	}
}

func TestLoadConfig(t *testing.T) {
	logger, _ := test.NewNullLogger()

	t.Run("yaml file, env and flags in order", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "kvindex.yaml")
		require.Nil(t, os.WriteFile(path, []byte(`
pool:
  endpoints: ["file:6379"]
  size: 3
  request_timeout: 250ms
write:
  chunk_size: 100
  pause_length: 5
query:
  bool_forces_refinement: false
  range_scan_threshold: 0
`), 0o644))

		t.Setenv("KVINDEX_POOL_SIZE", "6")

		cfg := KVIndexConfig{}
		err := cfg.LoadConfig(&Flags{ConfigFile: path, Endpoints: []string{"flag:6379"}}, logger)
		require.Nil(t, err)

		assert.Equal(t, []string{"flag:6379"}, cfg.Config.Pool.Endpoints)
		assert.Equal(t, 6, cfg.Config.Pool.Size)
		assert.Equal(t, 250*time.Millisecond, cfg.Config.Pool.RequestTimeout.Std())
		assert.Equal(t, 100, cfg.Config.Write.ChunkSize)
		assert.Equal(t, 5*time.Millisecond, cfg.Config.Write.PauseLength.Std())
		assert.Equal(t, DefaultChunkSize, cfg.Config.IndexBuild.ChunkSize)
		assert.False(t, cfg.Config.Query.ForcesBoolRefinement())
		assert.Equal(t, 0, cfg.Config.Query.ScanThreshold())
	})

	t.Run("json file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "kvindex.json")
		require.Nil(t, os.WriteFile(path,
			[]byte(`{"pool":{"size":2,"connect_retry_interval":"1s"},"ids":{"zero_id_policy":"reject"}}`), 0o644))

		cfg := KVIndexConfig{}
		require.Nil(t, cfg.LoadConfig(&Flags{ConfigFile: path}, logger))
		assert.Equal(t, 2, cfg.Config.Pool.Size)
		assert.Equal(t, time.Second, cfg.Config.Pool.ConnectRetryInterval.Std())
		assert.Equal(t, ZeroIDReject, cfg.Config.IDs.ZeroIDPolicy)
	})

	t.Run("missing explicit file", func(t *testing.T) {
		cfg := KVIndexConfig{}
		err := cfg.LoadConfig(&Flags{ConfigFile: filepath.Join(t.TempDir(), "nope.yaml")}, logger)
		require.Error(t, err)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "kvindex.toml")
		require.Nil(t, os.WriteFile(path, []byte("size = 1"), 0o644))

		cfg := KVIndexConfig{}
		err := cfg.LoadConfig(&Flags{ConfigFile: path}, logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported config file extension")
	})

	t.Run("invalid result", func(t *testing.T) {
		t.Setenv("KVINDEX_MISSING_INDEX", "maybe")
		cfg := KVIndexConfig{}
		err := cfg.LoadConfig(&Flags{}, logger)
		require.Error(t, err)
	})
}

func TestNewLogger(t *testing.T) {
	c := Default()
	c.Logging.Level = "debug"
	c.Logging.Format = "json"

	logger, err := c.NewLogger()
	require.Nil(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)
}
