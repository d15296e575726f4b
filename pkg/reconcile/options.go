package reconcile

import (
	"github.com/plyworks/rolodex/internal/diag"
	"github.com/plyworks/rolodex/pkg/differ"
)

// Option configures a Merger.
type Option func(*merger)

// WithReporter sets the diagnostics sink for row-level warnings.
func WithReporter(r diag.Reporter) Option {
	return func(m *merger) {
		m.reporter = r
	}
}

// WithDiffer overrides the field differ used for row classification.
func WithDiffer(d differ.Differ) Option {
	return func(m *merger) {
		m.differ = d
	}
}
