// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Command dagbench replays a recorded multi-agent workload against a
// text-generation server, either honoring the dependencies between agent
// steps (oracle mode) or ignoring them (limit mode), and prints a one-line
// JSON summary of the run.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/petenewcomb/dagbench"
	"github.com/petenewcomb/dagbench/internal/backend"
	"github.com/petenewcomb/dagbench/internal/config"
	"github.com/petenewcomb/dagbench/otdag"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// agentsPerTrace is the number of agents in one recorded trace. The
// -num-agents flag is converted to a replication count by dividing by it.
const agentsPerTrace = 25

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "dagbench: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	configPath   string
	numAgents    int
	checkAcyclic bool
	simLatency   time.Duration
	simPerToken  time.Duration
	timeout      time.Duration
}

func parseFlags(args []string, stderr io.Writer) (config.Config, options, error) {
	fs := flag.NewFlagSet("dagbench", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts options
	var flagCfg config.Config
	fs.StringVar(&opts.configPath, "config", "", "TOML run configuration file")
	fs.StringVar(&flagCfg.DAG, "dag", "", "dependency graph document (.json or .yaml)")
	fs.StringVar(&flagCfg.Payload, "payload", "", "payload document (.json or .yaml)")
	fs.StringVar(&flagCfg.Mode, "mode", "", "oracle honors dependencies, limit ignores them")
	fs.StringVar(&flagCfg.PriorityPolicy, "priority", "", "ready-unit priority: none, step, or predefined")
	fs.IntVar(&flagCfg.ReplicationCount, "replicas", 0, "number of independent copies of the workload")
	fs.IntVar(&opts.numAgents, "num-agents", 0, fmt.Sprintf("total agents; sets -replicas to num-agents/%d", agentsPerTrace))
	fs.IntVar(&flagCfg.WorkerCount, "workers", 0, "fixed worker count (default: one per initially ready unit)")
	fs.IntVar(&flagCfg.MaxWorkers, "max-workers", 0, "cap on the derived worker count")
	fs.IntVar(&flagCfg.BaselineWorkers, "baseline-workers", 0, "concurrent calls in limit mode (default: 8 per CPU)")
	fs.BoolVar(&flagCfg.Instrumented, "instrument", false, "trace and meter every call")
	fs.StringVar(&flagCfg.LogLevel, "log-level", "", "debug, info, warn, or error")
	fs.StringVar(&flagCfg.Backend.Kind, "backend", "", "http or sim")
	fs.StringVar(&flagCfg.Backend.URL, "url", "", "base URL of the generation server")
	fs.IntVar(&flagCfg.Backend.Retries, "retries", 0, "retries for rate-limited or failed HTTP calls")
	fs.DurationVar(&opts.timeout, "timeout", 0, "per-call HTTP timeout")
	fs.DurationVar(&opts.simLatency, "sim-latency", 0, "simulated fixed latency per call")
	fs.DurationVar(&opts.simPerToken, "sim-per-token", 0, "simulated latency per requested output token")
	fs.Float64Var(&flagCfg.Backend.SimFailRate, "sim-fail-rate", 0, "fraction of simulated calls that fail")
	fs.BoolVar(&opts.checkAcyclic, "check-acyclic", false, "reject cyclic graphs before running")
	if err := fs.Parse(args); err != nil {
		return config.Config{}, options{}, err
	}
	if fs.NArg() > 0 {
		return config.Config{}, options{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		cfg, err = config.Load(opts.configPath)
		if err != nil {
			return config.Config{}, options{}, err
		}
	}

	// Flags given on the command line override the file.
	var flagErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "dag":
			cfg.DAG = flagCfg.DAG
		case "payload":
			cfg.Payload = flagCfg.Payload
		case "mode":
			cfg.Mode = flagCfg.Mode
		case "priority":
			cfg.PriorityPolicy = flagCfg.PriorityPolicy
		case "replicas":
			cfg.ReplicationCount = flagCfg.ReplicationCount
		case "num-agents":
			if opts.numAgents <= 0 || opts.numAgents%agentsPerTrace != 0 {
				flagErr = fmt.Errorf("-num-agents must be a positive multiple of %d, got %d", agentsPerTrace, opts.numAgents)
				return
			}
			cfg.ReplicationCount = opts.numAgents / agentsPerTrace
		case "workers":
			cfg.WorkerCount = flagCfg.WorkerCount
		case "max-workers":
			cfg.MaxWorkers = flagCfg.MaxWorkers
		case "baseline-workers":
			cfg.BaselineWorkers = flagCfg.BaselineWorkers
		case "instrument":
			cfg.Instrumented = flagCfg.Instrumented
		case "log-level":
			cfg.LogLevel = flagCfg.LogLevel
		case "backend":
			cfg.Backend.Kind = flagCfg.Backend.Kind
		case "url":
			cfg.Backend.URL = flagCfg.Backend.URL
		case "retries":
			cfg.Backend.Retries = flagCfg.Backend.Retries
		case "timeout":
			cfg.Backend.TimeoutMS = int(opts.timeout / time.Millisecond)
		case "sim-latency":
			cfg.Backend.SimLatencyMS = int(opts.simLatency / time.Millisecond)
		case "sim-per-token":
			cfg.Backend.SimPerTokenUS = int(opts.simPerToken / time.Microsecond)
		case "sim-fail-rate":
			cfg.Backend.SimFailRate = flagCfg.Backend.SimFailRate
		}
	})
	if flagErr != nil {
		return config.Config{}, options{}, flagErr
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, options{}, err
	}
	return cfg, opts, nil
}

func newLogger(level string, stderr io.Writer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.Lock(zapcore.AddSync(stderr)),
		lvl,
	)
	return zap.New(core), nil
}

func newBackend(cfg config.Config, logger *zap.Logger) (dagbench.Backend, error) {
	switch cfg.Backend.Kind {
	case "sim":
		return &backend.Sim{
			Latency:  cfg.Backend.SimLatency(),
			PerToken: cfg.Backend.SimPerToken(),
			FailRate: cfg.Backend.SimFailRate,
		}, nil
	default:
		return backend.NewHTTP(backend.HTTPConfig{
			URL:     cfg.Backend.URL,
			Timeout: cfg.Backend.Timeout(),
			Retries: cfg.Backend.Retries,
			Logger:  logger,
		})
	}
}

// installTracing exports spans to w and returns a function that flushes and
// shuts down the provider.
func installTracing(w io.Writer) (func(context.Context) error, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

type summaryLine struct {
	dagbench.Summary
	Replicas   int `json:"replicas"`
	NumAgents  int `json:"num_agents,omitempty"`
	TotalUnits int `json:"total_units"`
	TotalCalls int `json:"total_calls"`
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel, stderr)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	undo := zap.ReplaceGlobals(logger)
	defer undo()

	policy, err := dagbench.ParsePolicy(cfg.PriorityPolicy)
	if err != nil {
		return err
	}
	graph, err := dagbench.LoadGraph(cfg.DAG)
	if err != nil {
		return err
	}
	payload, err := dagbench.LoadPayload(cfg.Payload)
	if err != nil {
		return err
	}
	if err := dagbench.ValidateWorkload(graph, payload); err != nil {
		return err
	}
	if opts.checkAcyclic {
		if err := graph.CheckAcyclic(); err != nil {
			return err
		}
	}
	if cfg.ReplicationCount > 1 {
		graph, payload = dagbench.Replicate(graph, payload, cfg.ReplicationCount)
	}
	workload := dagbench.Workload{Graph: graph, Payload: payload}
	totalCalls := payload.CallCount()
	logger.Info("loaded workload",
		zap.String("dag", cfg.DAG),
		zap.String("payload", cfg.Payload),
		zap.Int("replicas", cfg.ReplicationCount),
		zap.Int("units", len(payload)),
		zap.Int("edges", graph.EdgeCount()),
		zap.Int("calls", totalCalls))

	b, err := newBackend(cfg, logger)
	if err != nil {
		return err
	}
	observers := []dagbench.Observer{newProgress(logger, totalCalls)}
	if cfg.Instrumented {
		shutdown, err := installTracing(stderr)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Warn("trace shutdown failed", zap.Error(err))
			}
		}()
		b = otdag.Instrumented(logger, b)
		observers = append(observers, otdag.InstrumentedObserver(logger))
	}
	observer := dagbench.Observers(observers...)

	var report *dagbench.Report
	var runErr error
	switch dagbench.Mode(cfg.Mode) {
	case dagbench.ModeLimit:
		report, runErr = dagbench.RunBaseline(ctx, payload, b, dagbench.BaselineOptions{
			Workers:  cfg.BaselineWorkers,
			Logger:   logger,
			Observer: observer,
		})
	default:
		report, runErr = dagbench.Run(ctx, workload, b, dagbench.Options{
			Policy:     policy,
			Workers:    cfg.WorkerCount,
			MaxWorkers: cfg.MaxWorkers,
			Logger:     logger,
			Observer:   observer,
		})
	}
	if report == nil {
		return runErr
	}

	line := summaryLine{
		Summary:    report.Summary(),
		Replicas:   cfg.ReplicationCount,
		NumAgents:  opts.numAgents,
		TotalUnits: len(payload),
		TotalCalls: totalCalls,
	}
	if err := json.NewEncoder(stdout).Encode(line); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return runErr
}
