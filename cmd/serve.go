// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"pii-analyzer/internal/analyzer"
	"pii-analyzer/internal/observability"
	"pii-analyzer/internal/web"
)

// ServeCmd starts the HTTP service
type ServeCmd struct {
	Addr string `help:"Listen address, overrides server.address and PII_ANALYZER_ADDR"`
}

// Run starts the server. A configuration that cannot be built does not stop
// the process: the server starts and reports the failure on every request.
func (c *ServeCmd) Run(g *Globals) error {
	level := observability.ObservabilityMetrics
	cfg, err := g.loadConfiguration()
	if err != nil {
		logger := observability.NewLogger(level, g.stderr)
		return logFatal(logger, "failed to load configuration", err)
	}
	if cfg.Server.Debug {
		level = observability.ObservabilityDebug
	}

	logger := observability.NewLogger(level, g.stderr)
	defer logger.Sync() //nolint:errcheck

	observer := observability.NewStandardObserver(level, logger)
	if level == observability.ObservabilityDebug {
		observer = observability.NewDebugObserver(g.stderr, logger).StandardObserver
	}

	address := cfg.Server.Address
	if c.Addr != "" {
		address = c.Addr
	}

	var opts []web.Option
	engine, err := analyzer.Build(cfg, analyzer.WithObserver(observer))
	if err != nil {
		logger.Error("analyzer engine could not be built", zap.Error(err))
		opts = append(opts, web.WithInitError(err))
	}
	opts = append(opts, web.WithObserver(observer))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := web.NewServer(address, engine, opts...)
	if err := server.Start(ctx); err != nil {
		return logFatal(logger, "server stopped", err)
	}
	return nil
}
