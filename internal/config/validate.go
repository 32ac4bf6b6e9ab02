// This file adds a lightweight linter for Pipeline values. It performs static
// checks over a decoded Pipeline and returns issues (errors and warnings) for
// the CLI to print before any data is touched.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single finding. Path is a dotted path into the config
// (e.g. "storage.kind", "sources[1].file.path").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// DedupPolicies lists the accepted transform.dedup_policy values.
var DedupPolicies = []string{"keep-first", "keep-last", "most-complete"}

// MetricsBackends lists the accepted metrics.backend values.
var MetricsBackends = []string{"none", "pushgateway", "datadog"}

// StorageKinds lists the storage backends compiled into the binary.
var StorageKinds = []string{"sqlite", "postgres", "mssql", "mysql"}

// ValidatePipeline performs static validation of p. It never mutates p.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it labels logs and metrics for the run",
		})
	}
	issues = append(issues, validateSources(p.Sources)...)
	issues = append(issues, validateParser(p.Parser)...)
	issues = append(issues, validateTransform(p.Transform)...)
	issues = append(issues, validateStorage(p.Storage)...)
	issues = append(issues, validateRuntime(p.Runtime)...)
	issues = append(issues, validateMetrics(p.Metrics)...)
	return issues
}

func validateSources(srcs []Source) []Issue {
	var issues []Issue

	if len(srcs) == 0 {
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "sources",
			Message:  "at least one source is required",
		})
	}
	if len(srcs) == 1 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "sources",
			Message:  "only one source configured; the combine stage will be a pass-through",
		})
	}

	seenRegion := map[string]int{}
	seenLoc := map[string]int{}
	for i, s := range srcs {
		base := fmt.Sprintf("sources[%d]", i)
		var loc, locPath string
		switch s.Kind {
		case "", "file":
			loc, locPath = strings.TrimSpace(s.File.Path), base+".file.path"
		case "http":
			loc, locPath = strings.TrimSpace(s.HTTP.URL), base+".http.url"
			issues = append(issues, validateHTTP(s.HTTP, base+".http")...)
		default:
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     base + ".kind",
				Message:  fmt.Sprintf("unknown source kind %q; want \"file\" or \"http\"", s.Kind),
			})
		}
		if locPath != "" {
			if loc == "" {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     locPath,
					Message:  "source location must not be empty",
				})
			} else if j, dup := seenLoc[loc]; dup {
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Path:     locPath,
					Message:  fmt.Sprintf("%q already used by sources[%d]; its rows will collide on OrderId", loc, j),
				})
			} else {
				seenLoc[loc] = i
			}
		}

		region := strings.TrimSpace(s.Region)
		if region == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     base + ".region",
				Message:  "region label must not be empty",
			})
		} else if j, dup := seenRegion[region]; dup {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     base + ".region",
				Message:  fmt.Sprintf("region %q already used by sources[%d]", region, j),
			})
		} else {
			seenRegion[region] = i
		}
	}
	return issues
}

func validateHTTP(h SourceHTTP, base string) []Issue {
	var issues []Issue

	if u := strings.TrimSpace(h.URL); u != "" {
		pu, err := url.Parse(u)
		if err != nil || (pu.Scheme != "http" && pu.Scheme != "https") || pu.Host == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     base + ".url",
				Message:  fmt.Sprintf("url %q must be an absolute http(s) URL", u),
			})
		}
	}
	if h.TimeoutSeconds < 0 || h.MaxRetries < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     base,
			Message:  "timeout_seconds and max_retries must not be negative",
		})
	}
	if h.InsecureSkipVerify {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     base + ".insecure_skip_verify",
			Message:  "TLS certificate verification is disabled",
		})
	}
	return issues
}

func validateParser(p Parser) []Issue {
	var issues []Issue

	if p.Kind != "csv" {
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.kind",
			Message:  fmt.Sprintf("unsupported parser kind %q; only \"csv\" is supported", p.Kind),
		})
	}
	if d := p.Options.String("delimiter", ","); utf8.RuneCountInString(d) != 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.options.delimiter",
			Message:  fmt.Sprintf("delimiter must be exactly one character, got %q", d),
		})
	}
	return issues
}

func validateTransform(t Transform) []Issue {
	var issues []Issue

	if strings.TrimSpace(t.RegionFallback) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "transform.region_fallback",
			Message:  "region_fallback must not be empty; rows with a null region need a label",
		})
	} else if strings.EqualFold(t.RegionFallback, "region") {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "transform.region_fallback",
			Message:  `"region" reads like a column name; prefer an explicit sentinel such as "UNKNOWN"`,
		})
	}

	if t.DedupPolicy != "" && !contains(DedupPolicies, t.DedupPolicy) {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "transform.dedup_policy",
			Message:  fmt.Sprintf("unknown dedup_policy %q; want one of %v", t.DedupPolicy, DedupPolicies),
		})
	}
	return issues
}

func validateStorage(s Storage) []Issue {
	var issues []Issue

	if !contains(StorageKinds, s.Kind) {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; want one of %v", s.Kind, StorageKinds),
		})
	}
	if strings.TrimSpace(s.DB.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.dsn",
			Message:  "storage.db.dsn must not be empty",
		})
	}
	if strings.TrimSpace(s.DB.Table) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.table",
			Message:  "storage.db.table must not be empty",
		})
	}
	if !s.DB.AutoCreateTable {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.db.auto_create_table",
			Message:  "auto_create_table is false; the destination table must already exist",
		})
	}
	return issues
}

func validateRuntime(r RuntimeConfig) []Issue {
	var issues []Issue

	if r.BatchSize <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.batch_size",
			Message:  fmt.Sprintf("batch_size=%d; must be positive", r.BatchSize),
		})
	}
	if r.ReaderWorkers < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.reader_workers",
			Message:  "reader_workers must not be negative",
		})
	}
	return issues
}

func validateMetrics(m MetricsConfig) []Issue {
	var issues []Issue

	backend := m.Backend
	if backend == "" {
		backend = "none"
	}
	switch {
	case !contains(MetricsBackends, backend):
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; want one of %v", m.Backend, MetricsBackends),
		})
	case backend == "pushgateway" && strings.TrimSpace(m.PushgatewayURL) == "":
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "metrics.pushgateway_url",
			Message:  "pushgateway backend requires pushgateway_url",
		})
	case backend == "datadog" && strings.TrimSpace(m.DatadogAddr) == "":
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "metrics.datadog_addr",
			Message:  "datadog backend requires datadog_addr",
		})
	}
	return issues
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
