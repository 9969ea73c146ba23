// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/petenewcomb/dagbench"
	"github.com/petenewcomb/dagbench/internal/config"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	chk := require.New(t)
	path := writeConfig(t, `
mode = "limit"
priority_policy = "step"
replication_count = 4
worker_count = 16
dag = "traces/dependency_adjacency.json"
payload = "/abs/persona_calls.json"

[backend]
kind = "sim"
sim_latency_ms = 20
sim_per_token_us = 150
sim_fail_rate = 0.25
timeout_ms = 1500
`)
	cfg, err := config.Load(path)
	chk.NoError(err)
	chk.NoError(cfg.Validate())

	chk.Equal("limit", cfg.Mode)
	chk.Equal("step", cfg.PriorityPolicy)
	chk.Equal(4, cfg.ReplicationCount)
	chk.Equal(16, cfg.WorkerCount)
	chk.Equal(dagbench.DefaultMaxWorkers, cfg.MaxWorkers)
	chk.Equal("info", cfg.LogLevel)
	chk.Equal(filepath.Join(filepath.Dir(path), "traces", "dependency_adjacency.json"), cfg.DAG)
	chk.Equal("/abs/persona_calls.json", cfg.Payload)
	chk.Equal(path, cfg.Path)

	chk.Equal("sim", cfg.Backend.Kind)
	chk.Equal(20*time.Millisecond, cfg.Backend.SimLatency())
	chk.Equal(150*time.Microsecond, cfg.Backend.SimPerToken())
	chk.Equal(1500*time.Millisecond, cfg.Backend.Timeout())
	chk.Equal(0.25, cfg.Backend.SimFailRate)
}

func TestLoadErrors(t *testing.T) {
	chk := require.New(t)

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	chk.ErrorIs(err, os.ErrNotExist)

	_, err = config.Load(writeConfig(t, `mode = `))
	chk.ErrorContains(err, "decode config file")

	_, err = config.Load(writeConfig(t, `workers = 3`))
	chk.ErrorContains(err, "unknown key workers")
}

func TestValidate(t *testing.T) {
	chk := require.New(t)
	chk.NoError(config.Default().Validate())

	cfg := config.Default()
	cfg.PriorityPolicy = "random"
	var unsupported *dagbench.UnsupportedPolicyError
	chk.ErrorAs(cfg.Validate(), &unsupported)

	cfg = config.Default()
	cfg.Mode = "chaos"
	chk.ErrorContains(cfg.Validate(), "unsupported mode")

	cfg = config.Default()
	cfg.ReplicationCount = 0
	chk.ErrorContains(cfg.Validate(), "replication count")

	cfg = config.Default()
	cfg.Backend.Kind = "grpc"
	chk.ErrorContains(cfg.Validate(), "unsupported backend")

	cfg = config.Default()
	cfg.Backend.URL = ""
	chk.ErrorContains(cfg.Validate(), "requires a url")

	cfg = config.Default()
	cfg.Backend.Kind = "sim"
	cfg.Backend.SimFailRate = 1.5
	chk.ErrorContains(cfg.Validate(), "sim_fail_rate")
}
