// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"
	"golang.org/x/term"

	"pii-analyzer/internal/analyzer"
	"pii-analyzer/internal/config"
	"pii-analyzer/internal/observability"
	"pii-analyzer/internal/version"
)

// errFindings makes the process exit with status 1 without printing anything
var errFindings = errors.New("entities found")

// Globals are flags shared by every command
type Globals struct {
	Config  string `help:"Path to configuration file (YAML)" type:"path" env:"PII_ANALYZER_CONFIG"`
	EnvFile string `name:"env-file" help:"Load environment variables from this file" default:".env"`
	Debug   bool   `help:"Enable debug logging to show the analysis pipeline step by step"`
	NoColor bool   `name:"no-color" help:"Disable colored output"`

	stdout io.Writer
	stderr io.Writer
}

// CLI defines the command-line interface
type CLI struct {
	Globals

	Serve       ServeCmd       `cmd:"" help:"Start the HTTP analysis service"`
	Analyze     AnalyzeCmd     `cmd:"" default:"withargs" help:"Analyze text, files or standard input"`
	Recognizers RecognizersCmd `cmd:"" help:"List recognizers, or describe one"`
	Entities    EntitiesCmd    `cmd:"" help:"List supported entity types"`
	Allowlist   AllowlistCmd   `cmd:"" help:"Manage the allow-list file"`
	Version     VersionCmd     `cmd:"" help:"Print version information"`
}

func main() {
	cli := CLI{Globals: Globals{stdout: os.Stdout, stderr: os.Stderr}}
	ctx := kong.Parse(&cli,
		kong.Name("pii-analyzer"),
		kong.Description("Detects personal data (PII) in French and Belgian text"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	err := ctx.Run(&cli.Globals)
	if errors.Is(err, errFindings) {
		os.Exit(1)
	}
	ctx.FatalIfErrorf(err)
}

// loadConfiguration reads the .env file, the configuration file and the
// environment overrides
func (g *Globals) loadConfiguration() (*config.Config, error) {
	if err := config.LoadDotEnv(g.EnvFile); err != nil {
		return nil, err
	}
	cfg, err := config.LoadConfigOrDefault(g.Config)
	if err != nil {
		return nil, err
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if g.Debug {
		cfg.Server.Debug = true
	}
	return cfg, nil
}

// observer returns the observer for CLI commands: silent unless debugging,
// in which case steps and JSON logs go to stderr
func (g *Globals) observer(debug bool) *observability.StandardObserver {
	if !debug {
		return observability.NewStandardObserver(observability.ObservabilityOff, nil)
	}
	logger := observability.NewLogger(observability.ObservabilityDebug, g.stderr)
	return observability.NewDebugObserver(g.stderr, logger).StandardObserver
}

// buildEngine loads the configuration and assembles the analyzer
func (g *Globals) buildEngine() (*analyzer.Engine, *config.Config, *observability.StandardObserver, error) {
	cfg, err := g.loadConfiguration()
	if err != nil {
		return nil, nil, nil, err
	}
	observer := g.observer(cfg.Server.Debug)
	engine, err := analyzer.Build(cfg, analyzer.WithObserver(observer))
	if err != nil {
		return nil, nil, nil, err
	}
	return engine, cfg, observer, nil
}

// colorDisabled reports whether output to w should be plain
func (g *Globals) colorDisabled(w io.Writer) bool {
	if g.NoColor || os.Getenv("NO_COLOR") != "" {
		return true
	}
	f, ok := w.(*os.File)
	if !ok {
		return true
	}
	return !term.IsTerminal(int(f.Fd()))
}

// VersionCmd prints version information
type VersionCmd struct {
	Verbose bool `short:"v" help:"Print build details"`
}

func (c *VersionCmd) Run(g *Globals) error {
	if !c.Verbose {
		fmt.Fprintln(g.stdout, version.Info())
		return nil
	}
	full := version.Full()
	for _, key := range []string{"version", "commit", "buildDate", "goVersion", "platform"} {
		fmt.Fprintf(g.stdout, "%-10s %s\n", key+":", full[key])
	}
	return nil
}

// logFatal writes a startup failure to the structured log before returning it
func logFatal(logger *zap.Logger, msg string, err error) error {
	logger.Error(msg, zap.Error(err))
	return fmt.Errorf("%s: %w", msg, err)
}
