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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is read when no --config-file flag is given. A missing
// default file is not an error.
const DefaultConfigFile string = "./kvindex.conf.yaml"

// Flags are input options
type Flags struct {
	ConfigFile  string   `long:"config-file" description:"path to config file (default: ./kvindex.conf.yaml)"`
	Endpoints   []string `long:"endpoint" description:"store address, repeat for several nodes"`
	PoolSize    int      `long:"pool-size" description:"number of store sessions"`
	ClusterMode bool     `long:"cluster-mode" description:"talk to a sharded store"`
	AllowAdmin  bool     `long:"allow-admin" description:"allow namespace-wide clear"`
	LogLevel    string   `long:"log-level" description:"panic, fatal, error, warn, info, debug or trace"`
	LogFormat   string   `long:"log-format" description:"text or json"`
	Monitoring  bool     `long:"monitoring" description:"serve prometheus metrics"`
	MetricsPort int      `long:"metrics-port" description:"port of the /metrics endpoint"`
}

// KVIndexConfig holds the effective configuration once LoadConfig ran.
type KVIndexConfig struct {
	Config Config
}

// LoadConfig from config locations. The load order for configuration values is the following
// 1. Config file
// 2. Environment variables
// 3. Command line flags
// If a config option is specified multiple times in different locations, the latest one will be used in this order.
func (f *KVIndexConfig) LoadConfig(flags *Flags, logger logrus.FieldLogger) error {
	configFileName := flags.ConfigFile
	explicit := configFileName != ""
	if !explicit {
		configFileName = DefaultConfigFile
	}

	file, err := os.ReadFile(configFileName)
	if err != nil && explicit {
		return configErr(fmt.Errorf("read config file: %w", err))
	}

	if len(file) > 0 {
		logger.WithField("action", "config_load").
			WithField("config_file_path", configFileName).
			Debug("loading config file")
		config, err := f.parseConfigFile(file, configFileName)
		if err != nil {
			return configErr(err)
		}
		f.Config = config
	}

	if err := FromEnv(&f.Config); err != nil {
		return configErr(err)
	}

	f.fromFlags(flags)
	f.Config.SetDefaults()

	return f.Config.Validate()
}

func (f *KVIndexConfig) parseConfigFile(file []byte, name string) (Config, error) {
	var config Config

	switch ext := strings.TrimPrefix(filepath.Ext(name), "."); ext {
	case "json":
		if err := json.Unmarshal(file, &config); err != nil {
			return config, fmt.Errorf("error unmarshalling the json config file: %w", err)
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(file, &config); err != nil {
			return config, fmt.Errorf("error unmarshalling the yaml config file: %w", err)
		}
	case "":
		return config, fmt.Errorf("config file does not have a file ending, got '%s'", name)
	default:
		return config, fmt.Errorf("unsupported config file extension '%s', use .yaml or .json", ext)
	}

	return config, nil
}

// fromFlags parses values from flags given as parameter and overrides values in the config
func (f *KVIndexConfig) fromFlags(flags *Flags) {
	if len(flags.Endpoints) > 0 {
		f.Config.Pool.Endpoints = flags.Endpoints
	}
	if flags.PoolSize > 0 {
		f.Config.Pool.Size = flags.PoolSize
	}
	if flags.ClusterMode {
		f.Config.Pool.ClusterMode = true
	}
	if flags.AllowAdmin {
		f.Config.Pool.AllowAdmin = true
	}
	if flags.LogLevel != "" {
		f.Config.Logging.Level = flags.LogLevel
	}
	if flags.LogFormat != "" {
		f.Config.Logging.Format = flags.LogFormat
	}
	if flags.Monitoring {
		f.Config.Monitoring.Enabled = true
	}
	if flags.MetricsPort > 0 {
		f.Config.Monitoring.Port = flags.MetricsPort
	}
}

// NewLogger builds the process logger from the logging section.
func (c Config) NewLogger() (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.Logging.Level)
	if err != nil {
		return nil, configErr(err)
	}

	logger := logrus.New()
	logger.SetLevel(level)
	if strings.ToLower(c.Logging.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger, nil
}
