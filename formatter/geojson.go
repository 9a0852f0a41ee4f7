package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/openbus-tools/stride/geo"
	"github.com/openbus-tools/stride/pipeline"
)

type geoJSONCollection struct {
	Type     string           `json:"type"`
	CRS      *geoJSONCRS      `json:"crs,omitempty"`
	Features []geoJSONFeature `json:"features"`
}

type geoJSONCRS struct {
	Type       string            `json:"type"`
	Properties map[string]string `json:"properties"`
}

type geoJSONFeature struct {
	Type       string           `json:"type"`
	Geometry   *geoJSONGeometry `json:"geometry"`
	Properties map[string]any   `json:"properties"`
}

type geoJSONGeometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"` // [lon, lat]
}

// EncodeGeoJSON serializes a feature collection as a GeoJSON
// FeatureCollection document.
func EncodeGeoJSON(fc *pipeline.FeatureCollection) ([]byte, error) {
	doc := geoJSONCollection{
		Type:     "FeatureCollection",
		Features: make([]geoJSONFeature, 0, len(fc.Features)),
	}
	if fc.CRS != "" {
		doc.CRS = &geoJSONCRS{
			Type:       "name",
			Properties: map[string]string{"name": fc.CRS},
		}
	}

	for i := range fc.Features {
		f := &fc.Features[i]
		props := make(map[string]any, len(fc.Schema))
		for j, field := range fc.Schema {
			if j >= len(f.Values) {
				break
			}
			props[field.Name] = encodeValue(f.Values[j])
		}
		gf := geoJSONFeature{Type: "Feature", Properties: props}
		if f.Point != nil {
			gf.Geometry = &geoJSONGeometry{
				Type:        "Point",
				Coordinates: []float64{f.Point.X, f.Point.Y},
			}
		}
		doc.Features = append(doc.Features, gf)
	}

	return json.Marshal(&doc)
}

func encodeValue(v pipeline.Value) any {
	if v.IsNull() {
		return nil
	}
	if n, ok := v.AsInt(); ok {
		return n
	}
	if s, ok := v.AsString(); ok {
		return s
	}
	if t, ok := v.AsTime(); ok {
		return t.Format(time.RFC3339)
	}
	if f, ok := v.AsFloat(); ok {
		return f
	}
	return nil
}

// DecodeGeoJSON parses a GeoJSON FeatureCollection into a pipeline
// collection, inferring the schema from the property values.
func DecodeGeoJSON(data []byte) (*pipeline.FeatureCollection, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc geoJSONCollection
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse GeoJSON: %w", err)
	}
	if doc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("expected a FeatureCollection, got %q", doc.Type)
	}

	crs := geo.CRSWGS84
	if doc.CRS != nil && doc.CRS.Properties["name"] != "" {
		crs = doc.CRS.Properties["name"]
	}

	schema := inferSchema(doc.Features)
	fc := pipeline.NewFeatureCollection(schema, crs)
	fc.Features = make([]pipeline.Feature, 0, len(doc.Features))

	for _, gf := range doc.Features {
		values := make([]pipeline.Value, len(schema))
		for i, field := range schema {
			values[i] = decodeValue(gf.Properties[field.Name], field.Type)
		}
		f := pipeline.Feature{Values: values}
		if gf.Geometry != nil && gf.Geometry.Type == "Point" && len(gf.Geometry.Coordinates) >= 2 {
			f.Point = &geo.Point{X: gf.Geometry.Coordinates[0], Y: gf.Geometry.Coordinates[1]}
		}
		fc.Features = append(fc.Features, f)
	}

	return fc, nil
}

// inferSchema determines field names and types across all features.
// Property names are sorted for a deterministic field order.
func inferSchema(features []geoJSONFeature) pipeline.Schema {
	names := map[string]struct{}{}
	for _, f := range features {
		for name := range f.Properties {
			names[name] = struct{}{}
		}
	}
	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	schema := make(pipeline.Schema, 0, len(sorted))
	for _, name := range sorted {
		schema = append(schema, pipeline.Field{Name: name, Type: inferType(features, name)})
	}
	return schema
}

func inferType(features []geoJSONFeature, name string) pipeline.FieldType {
	ft := pipeline.TypeString
	seen := false
	for _, f := range features {
		raw, ok := f.Properties[name]
		if !ok || raw == nil {
			continue
		}
		var cur pipeline.FieldType
		switch v := raw.(type) {
		case json.Number:
			if strings.ContainsAny(v.String(), ".eE") {
				cur = pipeline.TypeFloat
			} else {
				cur = pipeline.TypeInt
			}
		case string:
			if _, err := time.Parse(time.RFC3339, v); err == nil {
				cur = pipeline.TypeTime
			} else {
				cur = pipeline.TypeString
			}
		default:
			cur = pipeline.TypeString
		}
		if !seen {
			ft = cur
			seen = true
			continue
		}
		if cur == ft {
			continue
		}
		// Int and Float mix to Float; any other mix degrades to String.
		if (cur == pipeline.TypeInt && ft == pipeline.TypeFloat) ||
			(cur == pipeline.TypeFloat && ft == pipeline.TypeInt) {
			ft = pipeline.TypeFloat
			continue
		}
		return pipeline.TypeString
	}
	return ft
}

func decodeValue(raw any, ft pipeline.FieldType) pipeline.Value {
	if raw == nil {
		return pipeline.Null()
	}
	switch ft {
	case pipeline.TypeInt:
		if n, ok := raw.(json.Number); ok {
			if i, err := n.Int64(); err == nil {
				return pipeline.Int(i)
			}
		}
	case pipeline.TypeFloat:
		if n, ok := raw.(json.Number); ok {
			if f, err := n.Float64(); err == nil {
				return pipeline.Float(f)
			}
		}
	case pipeline.TypeTime:
		if s, ok := raw.(string); ok {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				return pipeline.Time(t)
			}
		}
	case pipeline.TypeString:
		switch v := raw.(type) {
		case string:
			return pipeline.Str(v)
		case json.Number:
			return pipeline.Str(v.String())
		case bool:
			return pipeline.Str(fmt.Sprintf("%t", v))
		}
	}
	return pipeline.Null()
}
