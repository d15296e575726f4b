// Package diag provides an injectable diagnostics sink for the
// reconciliation engines. Row-level and item-level issues are reported
// as structured records instead of ad hoc writes to a global console,
// so callers can collect, count, or forward them as they see fit.
package diag

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/plyworks/rolodex/pkg/logging"
)

// Level classifies a diagnostic record.
type Level string

// Diagnostic levels.
const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Record is a single diagnostic emitted by an engine.
type Record struct {
	Level   Level          `json:"level"`
	Message string         `json:"message"`
	Context map[string]any `json:"context,omitempty"`
}

// Reporter receives diagnostic records.
type Reporter interface {
	Report(rec Record)
}

// ReporterFunc is an adapter to allow functions to be used as Reporters.
type ReporterFunc func(Record)

// Report calls the function.
func (f ReporterFunc) Report(rec Record) {
	f(rec)
}

// Warnf reports a warning with optional context pairs (key, value, key, value...).
func Warnf(r Reporter, message string, kv ...any) {
	report(r, LevelWarning, message, kv)
}

// Infof reports an info record with optional context pairs.
func Infof(r Reporter, message string, kv ...any) {
	report(r, LevelInfo, message, kv)
}

// Errorf reports an error record with optional context pairs.
func Errorf(r Reporter, message string, kv ...any) {
	report(r, LevelError, message, kv)
}

func report(r Reporter, level Level, message string, kv []any) {
	if r == nil {
		r = Logging()
	}
	rec := Record{Level: level, Message: message}
	if len(kv) > 1 {
		rec.Context = make(map[string]any, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			key, ok := kv[i].(string)
			if !ok {
				continue
			}
			rec.Context[key] = kv[i+1]
		}
	}
	r.Report(rec)
}

// Collector accumulates records in memory. Safe for concurrent use.
type Collector struct {
	mu      sync.Mutex
	records []Record
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Report implements Reporter.
func (c *Collector) Report(rec Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, rec)
}

// Records returns a copy of all collected records in report order.
func (c *Collector) Records() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Record, len(c.records))
	copy(out, c.records)
	return out
}

// Warnings returns only the warning-level records.
func (c *Collector) Warnings() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Record
	for _, rec := range c.records {
		if rec.Level == LevelWarning {
			out = append(out, rec)
		}
	}
	return out
}

// Len returns the number of collected records.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

// Logging returns a Reporter that writes records through the default
// structured logger.
func Logging() Reporter {
	return ReporterFunc(func(rec Record) {
		var event *zerolog.Event
		switch rec.Level {
		case LevelError:
			event = logging.Error()
		case LevelWarning:
			event = logging.Warn()
		default:
			event = logging.Info()
		}
		for key, value := range rec.Context {
			event = event.Interface(key, value)
		}
		event.Msg(rec.Message)
	})
}

// Tee returns a Reporter that forwards each record to every given reporter.
func Tee(reporters ...Reporter) Reporter {
	return ReporterFunc(func(rec Record) {
		for _, r := range reporters {
			if r != nil {
				r.Report(rec)
			}
		}
	})
}
