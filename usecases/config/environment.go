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
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// FromEnv takes a *Config as it will respect initial config that has been
// provided by other means (e.g. a config file) and will only extend those that
// are set
func FromEnv(config *Config) error {
	if v := os.Getenv("KVINDEX_ENDPOINTS"); v != "" {
		endpoints := []string{}
		for _, e := range strings.Split(v, ",") {
			if e = strings.TrimSpace(e); e != "" {
				endpoints = append(endpoints, e)
			}
		}
		config.Pool.Endpoints = endpoints
	}

	if v := os.Getenv("KVINDEX_PASSWORD"); v != "" {
		config.Pool.Password = v
	}

	if err := parseInt("KVINDEX_DB", &config.Pool.DB); err != nil {
		return err
	}

	if err := parsePositiveInt("KVINDEX_POOL_SIZE", &config.Pool.Size); err != nil {
		return err
	}

	if v := os.Getenv("KVINDEX_REQUEST_TIMEOUT"); v != "" {
		d, err := parseMilliseconds(v)
		if err != nil {
			return errors.Wrapf(err, "parse KVINDEX_REQUEST_TIMEOUT")
		}
		config.Pool.RequestTimeout = d
	}

	if enabled(os.Getenv("KVINDEX_CLUSTER_MODE")) {
		config.Pool.ClusterMode = true
	}

	if enabled(os.Getenv("KVINDEX_ALLOW_ADMIN")) {
		config.Pool.AllowAdmin = true
	}

	if err := parsePositiveInt("KVINDEX_WRITE_CHUNK_SIZE", &config.Write.ChunkSize); err != nil {
		return err
	}

	if err := parsePositiveInt("KVINDEX_INDEX_CHUNK_SIZE", &config.IndexBuild.ChunkSize); err != nil {
		return err
	}

	if err := parsePositiveInt("KVINDEX_TEXT_PREFIX_WIDTH", &config.Query.TextPrefixWidth); err != nil {
		return err
	}

	if v := os.Getenv("KVINDEX_RANGE_SCAN_THRESHOLD"); v != "" {
		threshold := 0
		if err := parseInt("KVINDEX_RANGE_SCAN_THRESHOLD", &threshold); err != nil {
			return err
		}
		config.Query.RangeScanThreshold = &threshold
	}

	if v := os.Getenv("KVINDEX_MISSING_INDEX"); v != "" {
		config.Query.MissingIndex = MissingIndexPolicy(strings.ToLower(v))
	}

	if v := os.Getenv("KVINDEX_ZERO_ID_POLICY"); v != "" {
		config.IDs.ZeroIDPolicy = ZeroIDPolicy(strings.ToLower(v))
	}

	if enabled(os.Getenv("KVINDEX_DEBUG_TRACE")) {
		config.Debug.Trace = true
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		config.Logging.Format = v
	}

	if enabled(os.Getenv("PROMETHEUS_MONITORING_ENABLED")) {
		config.Monitoring.Enabled = true
	}

	if err := parsePositiveInt("PROMETHEUS_MONITORING_PORT", &config.Monitoring.Port); err != nil {
		return err
	}

	return nil
}

func parseInt(envName string, target *int) error {
	v := os.Getenv(envName)
	if v == "" {
		return nil
	}

	asInt, err := strconv.Atoi(v)
	if err != nil {
		return errors.Wrapf(err, "parse %s as int", envName)
	}
	*target = asInt
	return nil
}

func parsePositiveInt(envName string, target *int) error {
	v := os.Getenv(envName)
	if v == "" {
		return nil
	}

	asInt, err := strconv.Atoi(v)
	if err != nil {
		return errors.Wrapf(err, "parse %s as int", envName)
	}
	if asInt <= 0 {
		return errors.Errorf("%s must be a positive value larger than 0, got %d", envName, asInt)
	}
	*target = asInt
	return nil
}

func enabled(value string) bool {
	switch strings.ToLower(value) {
	case "on", "enabled", "1", "true":
		return true
	default:
		return false
	}
}
