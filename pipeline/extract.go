package pipeline

import (
	"fmt"
	"time"
)

// dateFieldCandidates are tried in priority order when extracting the date
// range; the first field present in the schema with a usable timestamp wins
// for that record.
var dateFieldCandidates = []string{"recorded_at", "begin", "end", "scheduled_start"}

const dateLayout = "2006-01-02"

// ExtractKeysAndRange scans the collection once and collects the set of
// distinct integer join keys from keyField plus the min/max timestamp found
// in the candidate date fields, formatted YYYY-MM-DD.
//
// A keyField absent from the schema is a ConfigurationError. Key values that
// fail integer coercion are reported and skipped; the record still counts for
// date extraction. When no record holds a usable timestamp both bounds fall
// back to the current date with an informational note.
func ExtractKeysAndRange(fc *FeatureCollection, keyField string, fb Feedback) (map[int64]struct{}, string, string, error) {
	keyIdx := fc.Schema.Index(keyField)
	if keyIdx < 0 {
		return nil, "", "", &ConfigurationError{Msg: fmt.Sprintf("field %q not found in input collection", keyField)}
	}

	warnings := NewWarningAggregator()
	keys := make(map[int64]struct{})
	var minTime, maxTime time.Time
	haveRange := false

	for i := range fc.Features {
		if fb.Canceled() {
			break
		}
		f := &fc.Features[i]

		if v := f.Values[keyIdx]; !v.IsNull() {
			if n, ok := v.CoerceInt(); ok {
				keys[n] = struct{}{}
			} else {
				warnings.Add(WarningInvalidLineRef, v.String())
				fb.ReportError(fmt.Sprintf("Invalid line_ref value: %s", v.String()))
			}
		}

		for _, name := range dateFieldCandidates {
			idx := fc.Schema.Index(name)
			if idx < 0 {
				continue
			}
			v := f.Values[idx]
			if v.IsNull() {
				continue
			}
			t, ok := v.CoerceTime()
			if !ok {
				warnings.Add(WarningBadTimestamp, v.String())
				continue
			}
			if !haveRange || t.Before(minTime) {
				minTime = t
			}
			if !haveRange || t.After(maxTime) {
				maxTime = t
			}
			haveRange = true
			break // first usable date field wins for this record
		}
	}

	warnings.LogAll("extract", fb)

	var dateFrom, dateTo string
	if haveRange {
		dateFrom = minTime.Format(dateLayout)
		dateTo = maxTime.Format(dateLayout)
	} else {
		today := time.Now().UTC().Format(dateLayout)
		dateFrom, dateTo = today, today
		fb.Info("No valid dates found in data, using today's date")
	}

	return keys, dateFrom, dateTo, nil
}
