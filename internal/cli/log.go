// Package cli implements the metagraph command-line interface.
//
// This package provides commands for listing the bundled effects, building
// and inspecting graphs, rendering them as diagrams, exporting definitions
// and serving live graph sessions over HTTP. The CLI is built using cobra
// and supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - list: Show the bundled effects
//   - inspect: Print the primary chain, mode switch and exposed parameters
//   - render: Generate DOT, SVG, PNG, PDF or JSON output
//   - validate: Build a definition and report structural problems
//   - export: Write a bundled effect as a TOML or JSON definition
//   - serve: Run the HTTP session API
//   - cache: Manage the artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
//
// # Example
//
//	c := cli.New(os.Stderr, cli.LogInfo)
//	if err := c.RootCommand().ExecuteContext(ctx); err != nil {
//	    os.Exit(1)
//	}
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns a logger writing to w at level, with short
// wall-clock timestamps ("14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// graphLogger scopes l to one graph source, so every line a command logs
// while loading, configuring or rendering carries it.
func graphLogger(l *log.Logger, source string) *log.Logger {
	return l.With("source", source)
}

// progress logs how long a command step took.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Rendered cartoon (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// loggerFromContext returns the logger attached by the root command, or
// log.Default() for commands run without it (tests, direct calls).
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
