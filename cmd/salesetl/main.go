// Command salesetl ingests regional sales-order extracts, cleanses and
// combines them, appends the result to a relational store, and prints a
// validation report.
//
// Usage:
//
//	salesetl [-config pipeline.json] [-source A=order_region_a.csv ...] [-db sales_data.db]
//
// Without flags it reads order_region_a.csv and order_region_b.csv from the
// working directory and writes sales_data.db.
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
	"strings"
	"syscall"

	"go.uber.org/zap"

	"salesetl/internal/config"
	"salesetl/internal/datasource/file"
	"salesetl/internal/errs"
	"salesetl/internal/logger"
	"salesetl/internal/metrics"
	"salesetl/internal/metrics/datadog"
	"salesetl/internal/metrics/prompush"
	"salesetl/internal/pipeline"

	// register all backends with the storage factory.
	_ "salesetl/internal/storage/all"
)

// Exit codes.
const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// sourceFlags collects repeatable -source region=path values.
type sourceFlags []file.Entry

func (s *sourceFlags) String() string {
	parts := make([]string, len(*s))
	for i, e := range *s {
		parts[i] = e.Region + "=" + e.Path
	}
	return strings.Join(parts, ",")
}

func (s *sourceFlags) Set(v string) error {
	e, err := file.ParseEntry(v)
	if err != nil {
		return err
	}
	*s = append(*s, e)
	return nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("salesetl", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		cfgPath     string
		sourcesFile string
		dsn         string
		envFile     string
		validate    bool
		asJSON      bool
		verbose     bool
		sources     sourceFlags
	)
	fs.StringVar(&cfgPath, "config", "", "pipeline config JSON path (defaults are used when empty)")
	fs.Var(&sources, "source", "regional extract as region=path; repeatable, overrides config sources")
	fs.StringVar(&sourcesFile, "sources", "", "file listing region=path entries, one per line")
	fs.StringVar(&dsn, "db", "", "storage DSN override (a file path for sqlite)")
	fs.StringVar(&envFile, "env", ".env", "dotenv file loaded before reading the environment")
	fs.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	fs.BoolVar(&asJSON, "json", false, "print the run result as JSON instead of the text report")
	fs.BoolVar(&verbose, "v", false, "enable debug logs")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %v\n", fs.Args())
		return exitUsage
	}

	if err := config.LoadDotEnv(envFile); err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return exitUsage
	}
	p, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return exitUsage
	}

	// Flags win over the file and the environment.
	if sourcesFile != "" {
		entries, err := file.ReadList(sourcesFile)
		if err != nil {
			fmt.Fprintf(stderr, "sources: %v\n", err)
			return exitUsage
		}
		sources = append(sourceFlags(entries), sources...)
	}
	if len(sources) > 0 {
		p.Sources = p.Sources[:0]
		for _, e := range sources {
			p.Sources = append(p.Sources, config.Source{Kind: "file", Region: e.Region, File: config.SourceFile{Path: e.Path}})
		}
	}
	if dsn != "" {
		p.Storage.DB.DSN = dsn
	}
	if verbose {
		p.Log.Level = "debug"
	}

	issues := config.ValidatePipeline(p)
	for _, iss := range issues {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		fmt.Fprintf(stderr, "configuration is invalid\n")
		return exitUsage
	}
	if validate {
		fmt.Fprintf(stdout, "configuration is valid\n")
		return exitOK
	}

	log, err := logger.New(p.Log.Level, p.Log.Format)
	if err != nil {
		fmt.Fprintf(stderr, "logger: %v\n", err)
		return exitUsage
	}
	defer func() { _ = log.Sync() }()

	sess := pipeline.NewSession(p.Job, log)
	flush := setupMetrics(p, sess)
	defer flush()

	res, err := pipeline.Run(ctx, sess, p)
	sess.Close(err)
	if err != nil {
		fmt.Fprintf(stderr, "salesetl: %s: %v\n", errs.Kind(err), err)
		return exitFailed
	}

	if asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			fmt.Fprintf(stderr, "encode result: %v\n", err)
			return exitFailed
		}
		return exitOK
	}
	fmt.Fprint(stdout, res.Report.String())
	return exitOK
}

// setupMetrics installs the configured backend and returns the function
// that flushes it at the end of the run. Backend errors are logged, never
// fatal.
func setupMetrics(p config.Pipeline, sess *pipeline.Session) func() {
	log := sess.Log.Named("metrics")

	var (
		b   metrics.Backend
		err error
	)
	switch p.Metrics.Backend {
	case "pushgateway":
		b, err = prompush.NewBackend(p.Job, p.Metrics.PushgatewayURL, map[string]string{"run_id": sess.RunID})
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:      p.Metrics.DatadogAddr,
			Namespace: "salesetl.",
			Tags:      []string{"job:" + p.Job, "run_id:" + sess.RunID},
		})
	default:
		log.Debug("disabled", zap.String("backend", p.Metrics.Backend))
		return func() {}
	}
	if err != nil {
		log.Warn("backend init failed; using nop", zap.String("backend", p.Metrics.Backend), zap.Error(err))
		return func() {}
	}

	metrics.SetBackend(b)
	log.Info("enabled", zap.String("backend", p.Metrics.Backend))
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Warn("flush failed", zap.Error(err))
		}
	}
}
