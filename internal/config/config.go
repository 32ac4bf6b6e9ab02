// Package config defines the JSON-serializable configuration model for the
// sales ETL job. A pipeline file names the regional extracts to ingest, how to
// parse and cleanse them, and which relational store receives the result.
//
// Example (trimmed):
//
//	{
//	  "job": "sales_orders",
//	  "sources": [
//	    { "kind": "file", "region": "A", "file": { "path": "order_region_a.csv" } },
//	    { "kind": "file", "region": "B", "file": { "path": "order_region_b.csv" } }
//	  ],
//	  "parser":    { "kind": "csv", "options": { "delimiter": ",", "trim_space": true } },
//	  "transform": { "region_fallback": "UNKNOWN", "dedup_policy": "keep-first" },
//	  "storage":   { "kind": "sqlite", "db": { "dsn": "sales_data.db", "table": "sales_data" } }
//	}
//
// Values are layered: built-in defaults, then the pipeline file, then
// environment variables (optionally loaded from a .env file).
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Pipeline is the top-level object decoded from a pipeline file.
type Pipeline struct {
	// Job names the run for logs and metrics grouping.
	Job string `json:"job"`

	// Sources lists the regional extracts in the order they are combined.
	Sources []Source `json:"sources"`

	Parser    Parser        `json:"parser"`
	Transform Transform     `json:"transform"`
	Storage   Storage       `json:"storage"`
	Runtime   RuntimeConfig `json:"runtime"`
	Log       LogConfig     `json:"log"`
	Metrics   MetricsConfig `json:"metrics"`
}

// Source identifies one regional extract.
type Source struct {
	// Kind selects the source implementation: "file" (default) or "http".
	Kind string `json:"kind"`

	// Region is the label injected into rows whose extract has no region
	// column.
	Region string `json:"region"`

	File SourceFile `json:"file"`
	HTTP SourceHTTP `json:"http"`
}

// SourceFile holds configuration for the "file" source kind.
type SourceFile struct {
	Path string `json:"path"`
}

// SourceHTTP holds configuration for the "http" source kind.
type SourceHTTP struct {
	URL string `json:"url"`

	// Headers are sent with every request, e.g. {"Authorization": "Bearer ..."}.
	Headers map[string]string `json:"headers"`

	TimeoutSeconds     int  `json:"timeout_seconds"`
	MaxRetries         int  `json:"max_retries"`
	InsecureSkipVerify bool `json:"insecure_skip_verify"`
}

// Location returns the path or URL the source reads from.
func (s Source) Location() string {
	if s.Kind == "http" {
		return s.HTTP.URL
	}
	return s.File.Path
}

// Parser selects how raw bytes become typed rows.
type Parser struct {
	// Kind selects the parser implementation. Current value: "csv".
	Kind string `json:"kind"`

	// Options is interpreted by the parser. For CSV:
	//   delimiter (string), trim_space (bool), encoding (string),
	//   max_logged_skips (int)
	Options Options `json:"options"`
}

// Transform configures the cleansing stage.
type Transform struct {
	// RegionFallback replaces a null region. It should never collide with a
	// real region code.
	RegionFallback string `json:"region_fallback"`

	// DedupPolicy chooses the survivor among rows sharing an OrderId:
	// "keep-first" (default), "keep-last", or "most-complete".
	DedupPolicy string `json:"dedup_policy"`
}

// Storage selects the relational store that receives the cleansed rows.
type Storage struct {
	// Kind selects the backend: "sqlite", "postgres", "mssql", or "mysql".
	Kind string   `json:"kind"`
	DB   DBConfig `json:"db"`
}

// DBConfig configures the database sink.
type DBConfig struct {
	// DSN is the driver connection string (a file path for sqlite).
	DSN string `json:"dsn"`

	// Table is the destination table, optionally schema-qualified.
	Table string `json:"table"`

	// AutoCreateTable creates the table when absent. The pipeline never
	// alters or drops an existing table.
	AutoCreateTable bool `json:"auto_create_table"`
}

// RuntimeConfig controls concurrency and batching.
type RuntimeConfig struct {
	// ReaderWorkers bounds how many sources are ingested and cleansed at once.
	ReaderWorkers int `json:"reader_workers"`
	// BatchSize is the number of rows per COPY/INSERT batch.
	BatchSize int `json:"batch_size"`
}

// LogConfig selects log level and encoding.
type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// MetricsConfig selects the metrics backend.
type MetricsConfig struct {
	// Backend is "none" (default), "pushgateway", or "datadog".
	Backend        string `json:"backend"`
	PushgatewayURL string `json:"pushgateway_url"`

	// DatadogAddr is the DogStatsD agent address, e.g. "127.0.0.1:8125".
	DatadogAddr string `json:"datadog_addr"`
}

// Default returns the pipeline used when no file is given: two regional
// extracts in the working directory loaded into a local SQLite database.
func Default() Pipeline {
	return Pipeline{
		Job: "sales_orders",
		Sources: []Source{
			{Kind: "file", Region: "A", File: SourceFile{Path: "order_region_a.csv"}},
			{Kind: "file", Region: "B", File: SourceFile{Path: "order_region_b.csv"}},
		},
		Parser: Parser{
			Kind:    "csv",
			Options: Options{"delimiter": ",", "trim_space": true},
		},
		Transform: Transform{
			RegionFallback: "UNKNOWN",
			DedupPolicy:    "keep-first",
		},
		Storage: Storage{
			Kind: "sqlite",
			DB: DBConfig{
				DSN:             "sales_data.db",
				Table:           "sales_data",
				AutoCreateTable: true,
			},
		},
		Runtime: RuntimeConfig{ReaderWorkers: 2, BatchSize: 500},
		Log:     LogConfig{Level: "info", Format: "json"},
		Metrics: MetricsConfig{Backend: "none"},
	}
}

// Load returns Default overlaid with the pipeline file at path (if path is
// non-empty) and then with environment overrides.
func Load(path string) (Pipeline, error) {
	p := Default()
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Pipeline{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := json.Unmarshal(b, &p); err != nil {
			return Pipeline{}, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}
	if err := ApplyEnv(&p); err != nil {
		return Pipeline{}, err
	}
	return p, nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (default ".env")
// into the process environment. Missing files are ignored; existing
// variables are never overwritten.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: load %s: %w", p, err)
		}
	}
	return nil
}

// Environment variables consulted by ApplyEnv.
const (
	EnvStorageKind    = "SALESETL_STORAGE_KIND"
	EnvDSN            = "SALESETL_DB_DSN"
	EnvTable          = "SALESETL_DB_TABLE"
	EnvBatchSize      = "SALESETL_BATCH_SIZE"
	EnvLogLevel       = "LOG_LEVEL"
	EnvLogFormat      = "LOG_FORMAT"
	EnvMetricsBackend = "METRICS_BACKEND"
	EnvPushgatewayURL = "PUSHGATEWAY_URL"
	EnvDatadogAddr    = "DOGSTATSD_ADDR"
)

// ApplyEnv overrides p with any non-empty environment variables listed above.
func ApplyEnv(p *Pipeline) error {
	setStr := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	setStr(&p.Storage.Kind, EnvStorageKind)
	setStr(&p.Storage.DB.DSN, EnvDSN)
	setStr(&p.Storage.DB.Table, EnvTable)
	setStr(&p.Log.Level, EnvLogLevel)
	setStr(&p.Log.Format, EnvLogFormat)
	setStr(&p.Metrics.Backend, EnvMetricsBackend)
	setStr(&p.Metrics.PushgatewayURL, EnvPushgatewayURL)
	setStr(&p.Metrics.DatadogAddr, EnvDatadogAddr)

	if v := strings.TrimSpace(os.Getenv(EnvBatchSize)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s=%q: %w", EnvBatchSize, v, err)
		}
		p.Runtime.BatchSize = n
	}
	return nil
}

// Options is a small helper to fetch typed values from arbitrary JSON maps.
// It performs only minimal type coercion and returns the provided default
// when a key is absent or of an unexpected type.
type Options map[string]any

// String returns the string value for key or def.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers decode as float64,
// so both float64 and int are accepted.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def if key is
// missing or empty.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// UnmarshalJSON makes a missing or null "options" object decode to a non-nil,
// empty Options map.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
