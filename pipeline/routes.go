package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/openbus-tools/stride/strideapi"
)

// RoutesListPath is the reference-data endpoint for GTFS routes.
const RoutesListPath = "/gtfs_routes/list"

// ReferenceMap maps each requested line ref to its route row or, for keys the
// endpoint returned nothing for, an explicit nil. It always holds exactly one
// entry per requested key.
type ReferenceMap map[int64]map[string]any

// FetchRouteData fetches route metadata for all keys in one batched request.
// Keys are serialized sorted ascending so requests are deterministic.
//
// Any transport, parse or status failure degrades the entire batch to
// not-found: the error is reported through the feedback and every key maps to
// nil, but the pipeline continues without route data.
func FetchRouteData(ctx context.Context, t strideapi.Transport, keys map[int64]struct{}, dateFrom, dateTo string, fb Feedback) ReferenceMap {
	refs := make(ReferenceMap, len(keys))

	sorted := make([]int64, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	lineRefs := make([]string, len(sorted))
	for i, k := range sorted {
		lineRefs[i] = strconv.FormatInt(k, 10)
	}

	fb.Info(fmt.Sprintf("Fetching route data for %d line reference(s)...", len(sorted)))

	params := url.Values{}
	params.Set("get_count", "false")
	params.Set("date_from", dateFrom)
	params.Set("date_to", dateTo)
	params.Set("line_refs", strings.Join(lineRefs, ","))
	params.Set("order_by", "id asc")

	rows, err := strideapi.FetchList(ctx, t, RoutesListPath, params)
	if err != nil {
		fb.ReportError(fmt.Sprintf("Error fetching route data: %v", err))
		for _, k := range sorted {
			refs[k] = nil
		}
		return refs
	}

	if len(rows) == 0 {
		fb.Info("No route data received from API")
	} else {
		fb.Info(fmt.Sprintf("Received %d route record(s) from API", len(rows)))
	}

	for _, row := range rows {
		raw, ok := row["line_ref"]
		if !ok || raw == nil {
			continue
		}
		lineRef, ok := toInt(raw)
		if !ok {
			continue
		}
		// First occurrence wins; later rows for the same key are ignored.
		if _, seen := refs[lineRef]; seen {
			continue
		}
		refs[lineRef] = row
		fb.Info(fmt.Sprintf("  Line %d: %s", lineRef, stringOrEmpty(row, "route_long_name")))
	}

	for _, k := range sorted {
		if _, ok := refs[k]; !ok {
			refs[k] = nil
			fb.Info(fmt.Sprintf("  Line %d: No route data found", k))
		}
	}

	// Responses may carry keys nobody asked for; they must not leak into the map.
	for k := range refs {
		if _, ok := keys[k]; !ok {
			delete(refs, k)
		}
	}

	return refs
}
