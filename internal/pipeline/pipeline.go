// Package pipeline runs one sales ETL pass: ingest and cleanse every
// regional extract, combine them, load the result, validate the store.
//
// Any stage error aborts the run; nothing after the failing stage executes
// and no partial result is returned.
package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"salesetl/internal/config"
	"salesetl/internal/dataset"
	"salesetl/internal/datasource"
	"salesetl/internal/datasource/file"
	"salesetl/internal/datasource/httpds"
	"salesetl/internal/loader"
	"salesetl/internal/metrics"
	"salesetl/internal/parser"
	"salesetl/internal/parser/csv"
	"salesetl/internal/sales"
	"salesetl/internal/transformer"
	"salesetl/internal/validator"
)

// SourceResult describes what happened to one regional extract.
type SourceResult struct {
	Region  string            `json:"region"`
	Path    string            `json:"path"`
	Read    int               `json:"read"`
	Skipped int               `json:"skipped"`
	Cleanse transformer.Stats `json:"cleanse"`
}

// Result is the outcome of a successful run.
type Result struct {
	RunID    string            `json:"run_id"`
	Sources  []SourceResult    `json:"sources"`
	Combined int               `json:"combined"`
	Load     loader.Result     `json:"load"`
	Report   *validator.Report `json:"report"`
	Duration time.Duration     `json:"duration"`
}

// Run executes the pipeline described by cfg. cfg is expected to have passed
// config.ValidatePipeline.
func Run(ctx context.Context, sess *Session, cfg config.Pipeline) (*Result, error) {
	if len(cfg.Sources) == 0 {
		return nil, fmt.Errorf("pipeline: no sources configured")
	}
	res := &Result{RunID: sess.RunID}

	// Ingest + cleanse. Sources are independent until combine; results keep
	// source order regardless of completion order.
	tables := make([]*dataset.Table, len(cfg.Sources))
	res.Sources = make([]SourceResult, len(cfg.Sources))

	g, gctx := errgroup.WithContext(ctx)
	if n := cfg.Runtime.ReaderWorkers; n > 0 {
		g.SetLimit(n)
	}
	for i, src := range cfg.Sources {
		g.Go(func() error {
			tbl, sr, err := prepare(gctx, sess, cfg, src)
			if err != nil {
				return err
			}
			tables[i], res.Sources[i] = tbl, sr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Combine.
	var combined *dataset.Table
	err := step(sess, "combine", func() (err error) {
		combined, err = dataset.Union(tables...)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline: combine: %w", err)
	}
	res.Combined = combined.Len()
	metrics.RecordRow(sess.Job, "combined", int64(res.Combined))

	// Load.
	err = step(sess, "load", func() (err error) {
		res.Load, err = loader.Load(ctx, combined, loader.Options{
			Kind:       cfg.Storage.Kind,
			DSN:        cfg.Storage.DB.DSN,
			Table:      cfg.Storage.DB.Table,
			AutoCreate: cfg.Storage.DB.AutoCreateTable,
			BatchSize:  cfg.Runtime.BatchSize,
			Job:        sess.Job,
			Log:        sess.Log,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordRow(sess.Job, "loaded", res.Load.Rows)

	// Validate.
	err = step(sess, "validate", func() (err error) {
		res.Report, err = validator.Validate(ctx, validator.Options{
			Kind:  cfg.Storage.Kind,
			DSN:   cfg.Storage.DB.DSN,
			Table: cfg.Storage.DB.Table,
			Log:   sess.Log,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	res.Duration = time.Since(sess.Started)
	return res, nil
}

// prepare ingests and cleanses one source.
func prepare(ctx context.Context, sess *Session, cfg config.Pipeline, src config.Source) (*dataset.Table, SourceResult, error) {
	sr := SourceResult{Region: src.Region, Path: src.Location()}
	log := sess.Log.With(zap.String("region", src.Region), zap.String("path", sr.Path))

	opts := cfg.Parser.Options
	p := csv.NewParser(csv.Options{
		Comma:          opts.Rune("delimiter", ','),
		TrimSpace:      opts.Bool("trim_space", true),
		Encoding:       opts.String("encoding", ""),
		MaxLoggedSkips: opts.Int("max_logged_skips", 0),
		TextColumns:    sales.IdentifierColumns,
	}, log)

	var raw *dataset.Table
	err := step(sess, "ingest", func() (err error) {
		raw, sr.Skipped, err = parser.Load(ctx, p, openSource(src), src.Region)
		return err
	})
	if err != nil {
		return nil, sr, fmt.Errorf("pipeline: ingest %s: %w", src.Region, err)
	}
	sr.Read = raw.Len()
	metrics.RecordRow(sess.Job, "read", int64(sr.Read))
	metrics.RecordRow(sess.Job, "skipped", int64(sr.Skipped))

	var clean *dataset.Table
	err = step(sess, "cleanse", func() (err error) {
		clean, sr.Cleanse, err = transformer.Cleanse(raw, src.Region, transformer.Options{
			RegionFallback: cfg.Transform.RegionFallback,
			DedupPolicy:    cfg.Transform.DedupPolicy,
			Log:            log,
		})
		return err
	})
	if err != nil {
		return nil, sr, fmt.Errorf("pipeline: cleanse %s: %w", src.Region, err)
	}
	metrics.RecordRow(sess.Job, "filtered", int64(sr.Cleanse.Filtered+sr.Cleanse.MissingKey))
	metrics.RecordRow(sess.Job, "duplicates", int64(sr.Cleanse.Duplicates))
	return clean, sr, nil
}

// openSource maps a configured source onto its datasource implementation.
func openSource(src config.Source) datasource.Source {
	if src.Kind == "http" {
		h := src.HTTP
		hdr := make(http.Header, len(h.Headers))
		for k, v := range h.Headers {
			hdr.Set(k, v)
		}
		return httpds.NewRemote(h.URL, httpds.Config{
			Timeout:            time.Duration(h.TimeoutSeconds) * time.Second,
			MaxRetries:         h.MaxRetries,
			InsecureSkipVerify: h.InsecureSkipVerify,
			Headers:            hdr,
		})
	}
	return file.NewLocal(src.File.Path)
}

// step times fn and records it as a pipeline stage.
func step(sess *Session, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	d := time.Since(start)
	metrics.RecordStep(sess.Job, name, err, d)
	if err == nil {
		sess.Log.Debug("step done", zap.String("step", name), zap.Duration("elapsed", d.Truncate(time.Microsecond)))
	}
	return err
}
