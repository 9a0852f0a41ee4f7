package pipeline

import (
	"fmt"
	"strings"
)

// Warning type constants
const (
	WarningInvalidLineRef   = "invalid_line_ref"
	WarningBadTimestamp     = "bad_timestamp"
	WarningUncoercibleValue = "uncoercible_value"
)

// warningInfo holds aggregated information about a specific warning type
type warningInfo struct {
	count    int
	examples []string
}

// WarningAggregator collects non-fatal value warnings during a pipeline run
// and emits consolidated summaries instead of one line per record.
type WarningAggregator struct {
	warnings map[string]*warningInfo
}

// NewWarningAggregator creates a new warning aggregator
func NewWarningAggregator() *WarningAggregator {
	return &WarningAggregator{
		warnings: make(map[string]*warningInfo),
	}
}

// Add records a warning occurrence with an example value
func (w *WarningAggregator) Add(warningType, example string) {
	if w.warnings[warningType] == nil {
		w.warnings[warningType] = &warningInfo{
			examples: make([]string, 0, 3),
		}
	}

	info := w.warnings[warningType]
	info.count++

	// Store up to 3 examples
	if len(info.examples) < 3 {
		info.examples = append(info.examples, example)
	}
}

// LogAll reports all collected warnings through the feedback in
// consolidated form.
func (w *WarningAggregator) LogAll(pipeline string, fb Feedback) {
	if len(w.warnings) == 0 {
		return
	}

	for warningType, info := range w.warnings {
		fb.ReportError(w.formatWarningMessage(warningType, pipeline, info))
	}
}

// formatWarningMessage creates a human-readable warning message
func (w *WarningAggregator) formatWarningMessage(warningType, pipeline string, info *warningInfo) string {
	var description, action string

	switch warningType {
	case WarningInvalidLineRef:
		description = "line_ref values that fail integer coercion"
		action = "Dropping those keys from the batch query"
	case WarningBadTimestamp:
		description = "timestamp values that fail ISO-8601 parsing"
		action = "Skipping those values for the date range"
	case WarningUncoercibleValue:
		description = "field values that fail type coercion"
		action = "Writing NULL for those fields"
	default:
		description = "unknown issue"
		action = "Continuing with fallback behavior"
	}

	examplesStr := strings.Join(info.examples, ", ")

	return fmt.Sprintf("Pipeline %s has %s (%d occurrences). %s. Examples: %s",
		pipeline, description, info.count, action, examplesStr)
}
