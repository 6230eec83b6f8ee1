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
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultPoolSize             = 10
	DefaultRequestTimeout       = 336000 * time.Millisecond
	DefaultConnectRetries       = 3
	DefaultConnectRetryInterval = 100 * time.Millisecond

	DefaultChunkSize      = 5_000_000
	DefaultPauseThreshold = 10_000_000
	DefaultPauseLength    = 10 * time.Millisecond

	DefaultTextPrefixWidth    = 2
	DefaultRangeScanThreshold = 1000
	DefaultScanPageSize       = 1000

	DefaultMaxInFlight  = 4096
	DefaultPipelineSize = 500

	DefaultTraceLimit     = 1000
	DefaultMonitoringPort = 2112
)

var DefaultEndpoints = []string{"localhost:6379"}

// MissingIndexPolicy decides what a predicate on a field without a built
// index evaluates to.
type MissingIndexPolicy string

const (
	// MissingIndexFail fails the query with an IndexAbsent error
	MissingIndexFail MissingIndexPolicy = "fail"
	// MissingIndexScan evaluates the predicate against every record
	MissingIndexScan MissingIndexPolicy = "scan"
	// MissingIndexEmpty treats the predicate as matching nothing
	MissingIndexEmpty MissingIndexPolicy = "empty"
)

// ZeroIDPolicy decides what happens to records whose id field parses as 0.
type ZeroIDPolicy string

const (
	// ZeroIDKeep stores the record under id 0
	ZeroIDKeep ZeroIDPolicy = "keep"
	// ZeroIDCounter substitutes the record's position in the written batch
	ZeroIDCounter ZeroIDPolicy = "counter"
	// ZeroIDReject skips the record and reports it
	ZeroIDReject ZeroIDPolicy = "reject"
)

// Config of the indexing engine. Zero values are replaced by defaults in
// SetDefaults.
type Config struct {
	Pool       Pool       `json:"pool" yaml:"pool"`
	Write      Chunking   `json:"write" yaml:"write"`
	IndexBuild Chunking   `json:"index_build" yaml:"index_build"`
	Query      Query      `json:"query" yaml:"query"`
	Fanout     Fanout     `json:"fanout" yaml:"fanout"`
	IDs        IDs        `json:"ids" yaml:"ids"`
	Debug      Debug      `json:"debug" yaml:"debug"`
	Monitoring Monitoring `json:"monitoring" yaml:"monitoring"`
	Logging    Logging    `json:"logging" yaml:"logging"`
}

type Pool struct {
	Endpoints            []string `json:"endpoints" yaml:"endpoints"`
	Password             string   `json:"password" yaml:"password"`
	DB                   int      `json:"db" yaml:"db"`
	Size                 int      `json:"size" yaml:"size"`
	RequestTimeout       Duration `json:"request_timeout" yaml:"request_timeout"`
	ClusterMode          bool     `json:"cluster_mode" yaml:"cluster_mode"`
	AllowAdmin           bool     `json:"allow_admin" yaml:"allow_admin"`
	ConnectRetries       int      `json:"connect_retries" yaml:"connect_retries"`
	ConnectRetryInterval Duration `json:"connect_retry_interval" yaml:"connect_retry_interval"`
}

// Chunking controls how bulk writes are split. Chunks are written one after
// the other; totals above PauseThreshold sleep PauseLength between chunks.
type Chunking struct {
	ChunkSize      int      `json:"chunk_size" yaml:"chunk_size"`
	PauseThreshold int      `json:"pause_threshold" yaml:"pause_threshold"`
	PauseLength    Duration `json:"pause_length" yaml:"pause_length"`
}

type Query struct {
	TextPrefixWidth      int                `json:"text_prefix_width" yaml:"text_prefix_width"`
	RangeScanThreshold   *int               `json:"range_scan_threshold" yaml:"range_scan_threshold"`
	BoolForcesRefinement *bool              `json:"bool_forces_refinement" yaml:"bool_forces_refinement"`
	MissingIndex         MissingIndexPolicy `json:"missing_index" yaml:"missing_index"`
	ScanPageSize         int                `json:"scan_page_size" yaml:"scan_page_size"`
}

// ScanThreshold is the candidate count below which a multi-predicate
// intersection switches to point refinement. An explicit 0 disables
// refinement by size.
func (q Query) ScanThreshold() int {
	if q.RangeScanThreshold == nil {
		return DefaultRangeScanThreshold
	}
	return *q.RangeScanThreshold
}

// ForcesBoolRefinement reports whether a remaining Bool predicate switches a
// multi-predicate intersection to point refinement. Defaults to true.
func (q Query) ForcesBoolRefinement() bool {
	return q.BoolForcesRefinement == nil || *q.BoolForcesRefinement
}

type Fanout struct {
	MaxInFlight  int `json:"max_in_flight" yaml:"max_in_flight"`
	PipelineSize int `json:"pipeline_size" yaml:"pipeline_size"`
}

type IDs struct {
	ZeroIDPolicy ZeroIDPolicy `json:"zero_id_policy" yaml:"zero_id_policy"`
}

type Debug struct {
	Trace      bool `json:"trace" yaml:"trace"`
	TraceLimit int  `json:"trace_limit" yaml:"trace_limit"`
}

type Monitoring struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	Port    int  `json:"port" yaml:"port"`
}

type Logging struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// Default returns a Config with every option at its default.
func Default() Config {
	var c Config
	c.SetDefaults()
	return c
}

func (c *Config) SetDefaults() {
	if len(c.Pool.Endpoints) == 0 {
		c.Pool.Endpoints = append([]string(nil), DefaultEndpoints...)
	}
	if c.Pool.Size == 0 {
		c.Pool.Size = DefaultPoolSize
	}
	if c.Pool.RequestTimeout == 0 {
		c.Pool.RequestTimeout = Duration(DefaultRequestTimeout)
	}
	if c.Pool.ConnectRetries == 0 {
		c.Pool.ConnectRetries = DefaultConnectRetries
	}
	if c.Pool.ConnectRetryInterval == 0 {
		c.Pool.ConnectRetryInterval = Duration(DefaultConnectRetryInterval)
	}

	c.Write.setDefaults()
	c.IndexBuild.setDefaults()

	if c.Query.TextPrefixWidth == 0 {
		c.Query.TextPrefixWidth = DefaultTextPrefixWidth
	}
	if c.Query.RangeScanThreshold == nil {
		threshold := DefaultRangeScanThreshold
		c.Query.RangeScanThreshold = &threshold
	}
	if c.Query.MissingIndex == "" {
		c.Query.MissingIndex = MissingIndexFail
	}
	if c.Query.ScanPageSize == 0 {
		c.Query.ScanPageSize = DefaultScanPageSize
	}

	if c.Fanout.MaxInFlight == 0 {
		c.Fanout.MaxInFlight = DefaultMaxInFlight
	}
	if c.Fanout.PipelineSize == 0 {
		c.Fanout.PipelineSize = DefaultPipelineSize
	}

	if c.IDs.ZeroIDPolicy == "" {
		c.IDs.ZeroIDPolicy = ZeroIDKeep
	}

	if c.Debug.TraceLimit == 0 {
		c.Debug.TraceLimit = DefaultTraceLimit
	}
	if c.Monitoring.Port == 0 {
		c.Monitoring.Port = DefaultMonitoringPort
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

func (c *Chunking) setDefaults() {
	if c.ChunkSize == 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.PauseThreshold == 0 {
		c.PauseThreshold = DefaultPauseThreshold
	}
	if c.PauseLength == 0 {
		c.PauseLength = Duration(DefaultPauseLength)
	}
}

func (c Config) Validate() error {
	if err := c.Pool.Validate(); err != nil {
		return configErr(err)
	}
	if err := c.Write.validate("write"); err != nil {
		return configErr(err)
	}
	if err := c.IndexBuild.validate("index_build"); err != nil {
		return configErr(err)
	}
	if err := c.Query.Validate(); err != nil {
		return configErr(err)
	}

	if c.Fanout.MaxInFlight < 1 {
		return configErr(fmt.Errorf("fanout.max_in_flight must be at least 1, got %d", c.Fanout.MaxInFlight))
	}
	if c.Fanout.PipelineSize < 1 {
		return configErr(fmt.Errorf("fanout.pipeline_size must be at least 1, got %d", c.Fanout.PipelineSize))
	}

	switch c.IDs.ZeroIDPolicy {
	case ZeroIDKeep, ZeroIDCounter, ZeroIDReject:
	default:
		return configErr(fmt.Errorf("ids.zero_id_policy must be one of keep, counter, reject, got %q",
			c.IDs.ZeroIDPolicy))
	}

	if c.Debug.TraceLimit < 0 {
		return configErr(fmt.Errorf("debug.trace_limit must not be negative"))
	}

	if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
		return configErr(fmt.Errorf("logging.level: %w", err))
	}
	if f := strings.ToLower(c.Logging.Format); f != "text" && f != "json" {
		return configErr(fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format))
	}

	return nil
}

func (p Pool) Validate() error {
	if len(p.Endpoints) == 0 {
		return fmt.Errorf("pool.endpoints cannot be empty")
	}
	for _, e := range p.Endpoints {
		if strings.TrimSpace(e) == "" {
			return fmt.Errorf("pool.endpoints contains an empty address")
		}
	}
	if p.Size < 1 {
		return fmt.Errorf("pool.size must be at least 1, got %d", p.Size)
	}
	if p.RequestTimeout <= 0 {
		return fmt.Errorf("pool.request_timeout must be positive")
	}
	if p.ConnectRetries < 0 {
		return fmt.Errorf("pool.connect_retries must not be negative")
	}
	if p.ClusterMode && p.DB != 0 {
		return fmt.Errorf("pool.db must be 0 in cluster mode, got %d", p.DB)
	}
	return nil
}

func (c Chunking) validate(section string) error {
	if c.ChunkSize < 1 {
		return fmt.Errorf("%s.chunk_size must be at least 1, got %d", section, c.ChunkSize)
	}
	if c.PauseThreshold < 0 {
		return fmt.Errorf("%s.pause_threshold must not be negative", section)
	}
	if c.PauseLength < 0 {
		return fmt.Errorf("%s.pause_length must not be negative", section)
	}
	return nil
}

func (q Query) Validate() error {
	if q.TextPrefixWidth < 1 {
		return fmt.Errorf("query.text_prefix_width must be at least 1, got %d", q.TextPrefixWidth)
	}
	if q.ScanThreshold() < 0 {
		return fmt.Errorf("query.range_scan_threshold must not be negative")
	}
	if q.ScanPageSize < 1 {
		return fmt.Errorf("query.scan_page_size must be at least 1, got %d", q.ScanPageSize)
	}
	switch q.MissingIndex {
	case MissingIndexFail, MissingIndexScan, MissingIndexEmpty:
		return nil
	default:
		return fmt.Errorf("query.missing_index must be one of fail, scan, empty, got %q", q.MissingIndex)
	}
}

func configErr(err error) error {
	return fmt.Errorf("invalid config: %w", err)
}
