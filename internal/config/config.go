// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package config loads benchmark run settings from a TOML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/petenewcomb/dagbench"
)

type Config struct {
	Mode             string  `toml:"mode"`
	PriorityPolicy   string  `toml:"priority_policy"`
	ReplicationCount int     `toml:"replication_count"`
	WorkerCount      int     `toml:"worker_count"`
	MaxWorkers       int     `toml:"max_workers"`
	BaselineWorkers  int     `toml:"baseline_workers"`
	Instrumented     bool    `toml:"instrumented"`
	LogLevel         string  `toml:"log_level"`
	DAG              string  `toml:"dag"`
	Payload          string  `toml:"payload"`
	Backend          Backend `toml:"backend"`
	Path             string  `toml:"-"`
}

type Backend struct {
	Kind          string  `toml:"kind"`
	URL           string  `toml:"url"`
	TimeoutMS     int     `toml:"timeout_ms"`
	Retries       int     `toml:"retries"`
	SimLatencyMS  int     `toml:"sim_latency_ms"`
	SimPerTokenUS int     `toml:"sim_per_token_us"`
	SimFailRate   float64 `toml:"sim_fail_rate"`
}

func (b Backend) Timeout() time.Duration {
	return time.Duration(b.TimeoutMS) * time.Millisecond
}

func (b Backend) SimLatency() time.Duration {
	return time.Duration(b.SimLatencyMS) * time.Millisecond
}

func (b Backend) SimPerToken() time.Duration {
	return time.Duration(b.SimPerTokenUS) * time.Microsecond
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Mode:             string(dagbench.ModeOracle),
		PriorityPolicy:   "none",
		ReplicationCount: 1,
		MaxWorkers:       dagbench.DefaultMaxWorkers,
		LogLevel:         "info",
		DAG:              "dependency_adjacency.json",
		Payload:          "persona_calls.json",
		Backend: Backend{
			Kind: "http",
			URL:  "http://127.0.0.1:30000",
		},
	}
}

// Load reads a TOML file over the defaults. Keys missing from the file keep
// their default values. Relative document paths are resolved against the
// file's directory.
func Load(path string) (Config, error) {
	cfg := Default()
	resolved := filepath.Clean(path)
	bytes, err := os.ReadFile(resolved)
	if err != nil {
		return Config{}, fmt.Errorf("read config file %s: %w", resolved, err)
	}
	md, err := toml.Decode(string(bytes), &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("decode config file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("config file %s: unknown key %s", resolved, undecoded[0])
	}
	dir := filepath.Dir(resolved)
	if md.IsDefined("dag") && !filepath.IsAbs(cfg.DAG) {
		cfg.DAG = filepath.Join(dir, cfg.DAG)
	}
	if md.IsDefined("payload") && !filepath.IsAbs(cfg.Payload) {
		cfg.Payload = filepath.Join(dir, cfg.Payload)
	}
	cfg.Path = resolved
	return cfg, nil
}

// Validate checks the settings for consistency before anything is loaded or
// run.
func (c Config) Validate() error {
	switch dagbench.Mode(c.Mode) {
	case dagbench.ModeOracle, dagbench.ModeLimit:
	default:
		return fmt.Errorf("unsupported mode %q", c.Mode)
	}
	if _, err := dagbench.ParsePolicy(c.PriorityPolicy); err != nil {
		return err
	}
	if c.ReplicationCount < 1 {
		return fmt.Errorf("replication count must be at least one, got %d", c.ReplicationCount)
	}
	if c.WorkerCount < 0 || c.MaxWorkers < 0 || c.BaselineWorkers < 0 {
		return fmt.Errorf("worker counts must not be negative")
	}
	switch c.Backend.Kind {
	case "http":
		if c.Backend.URL == "" {
			return fmt.Errorf("http backend requires a url")
		}
	case "sim":
		if c.Backend.SimFailRate < 0 || c.Backend.SimFailRate > 1 {
			return fmt.Errorf("sim_fail_rate must be between 0 and 1, got %v", c.Backend.SimFailRate)
		}
	default:
		return fmt.Errorf("unsupported backend kind %q", c.Backend.Kind)
	}
	if c.Backend.Retries < 0 {
		return fmt.Errorf("backend retries must not be negative")
	}
	return nil
}
