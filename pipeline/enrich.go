package pipeline

import (
	"context"
	"fmt"

	"github.com/openbus-tools/stride/geo"
	"github.com/openbus-tools/stride/strideapi"
)

// RouteFields are the reference fields the enrichment pipeline appends, in
// declared order. Names already present in the input schema are skipped.
var RouteFields = Schema{
	{Name: "date", Type: TypeString},
	{Name: "siri_line_ref", Type: TypeInt},
	{Name: "siri_operator_ref", Type: TypeInt},
	{Name: "route_short_name", Type: TypeString},
	{Name: "route_long_name", Type: TypeString},
	{Name: "route_mkt", Type: TypeString},
	{Name: "route_direction", Type: TypeString},
	{Name: "route_alternative", Type: TypeString},
	{Name: "route_desc", Type: TypeString},
	{Name: "agency_name", Type: TypeString},
	{Name: "route_type", Type: TypeString},
}

// routeFieldRenames maps an output field name to the key it is read from in
// the reference row; fields without an entry use their own name.
var routeFieldRenames = map[string]string{
	"siri_line_ref":     "line_ref",
	"siri_operator_ref": "operator_ref",
}

// routeDescField is derived, never read from the reference row.
const routeDescField = "route_desc"

// JoinRouteData left-joins the reference map onto the collection: every
// output record is the input record with the route fields appended (null
// where the key has no match or the record has no usable key). Row count and
// record order are preserved exactly; geometry is copied unchanged.
func JoinRouteData(fc *FeatureCollection, keyField string, refs ReferenceMap, fb Feedback) *FeatureCollection {
	outSchema := make(Schema, len(fc.Schema), len(fc.Schema)+len(RouteFields))
	copy(outSchema, fc.Schema)

	var newFields Schema
	for _, f := range RouteFields {
		if !outSchema.Has(f.Name) {
			outSchema = append(outSchema, f)
			newFields = append(newFields, f)
		}
	}

	warnings := NewWarningAggregator()
	keyIdx := fc.Schema.Index(keyField)
	out := NewFeatureCollection(outSchema, fc.CRS)
	out.Features = make([]Feature, 0, len(fc.Features))

	total := len(fc.Features)
	for i := range fc.Features {
		if fb.Canceled() {
			break
		}
		in := &fc.Features[i]

		values := make([]Value, 0, len(outSchema))
		values = append(values, in.Values...)

		var row map[string]any
		if keyIdx >= 0 && !in.Values[keyIdx].IsNull() {
			if k, ok := in.Values[keyIdx].CoerceInt(); ok {
				row = refs[k]
			}
		}

		for _, f := range newFields {
			values = append(values, routeFieldValue(row, f, warnings))
		}

		var point *geo.Point
		if in.Point != nil {
			p := *in.Point
			point = &p
		}
		out.Features = append(out.Features, Feature{Values: values, Point: point})

		if total > 0 {
			fb.Progress(60 + (i+1)*40/total)
		}
	}

	warnings.LogAll("enrich", fb)
	return out
}

func routeFieldValue(row map[string]any, f Field, warnings *WarningAggregator) Value {
	if row == nil {
		return Null()
	}
	if f.Name == routeDescField {
		// Derived: three sub-fields joined with "-"; missing parts are "".
		return Str(fmt.Sprintf("%s-%s-%s",
			stringOrEmpty(row, "route_mkt"),
			stringOrEmpty(row, "route_direction"),
			stringOrEmpty(row, "route_alternative")))
	}
	key := f.Name
	if renamed, ok := routeFieldRenames[f.Name]; ok {
		key = renamed
	}
	raw, ok := row[key]
	if !ok || raw == nil {
		return Null()
	}
	v, ok := coerceValue(raw, f.Type)
	if !ok {
		warnings.Add(WarningUncoercibleValue, fmt.Sprintf("%s=%v", f.Name, raw))
	}
	return v
}

// EnrichWithRouteData runs the full enrichment pipeline: extract keys and
// date range, batch-fetch route metadata, join it back onto the records.
//
// The stages are strictly sequential; each fully consumes its input before
// the next starts. An empty key set is fatal — there is nothing to join — but
// a failed batch fetch is not: the join completes with all-null route fields.
func EnrichWithRouteData(ctx context.Context, t strideapi.Transport, fc *FeatureCollection, keyField string, fb Feedback) (*FeatureCollection, error) {
	fb.Info("Step 1/3: Extracting unique line references and date range...")
	fb.Progress(0)

	keys, dateFrom, dateTo, err := ExtractKeysAndRange(fc, keyField, fb)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, &ConfigurationError{Msg: "no valid line references found in the input collection"}
	}

	fb.Info(fmt.Sprintf("Found %d unique line reference(s)", len(keys)))
	fb.Info(fmt.Sprintf("Date range: %s to %s", dateFrom, dateTo))
	fb.Progress(20)

	fb.Info("Step 2/3: Fetching GTFS route data...")
	refs := FetchRouteData(ctx, t, keys, dateFrom, dateTo, fb)
	fb.Progress(60)

	fb.Info("Step 3/3: Creating enriched output...")
	out := JoinRouteData(fc, keyField, refs, fb)

	fb.Progress(100)
	fb.Info("Enrichment complete!")
	return out, nil
}
