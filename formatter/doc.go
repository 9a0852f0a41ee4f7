// Package formatter converts pipeline feature collections to and from
// GeoJSON, the exchange format of the CLI and the HTTP service.
//
// GeoJSON property objects are unordered, so DecodeGeoJSON derives a
// deterministic schema by sorting property names; field types are inferred
// from the values (integral numbers become Int, ISO-8601 strings become
// Time). EncodeGeoJSON writes the legacy "crs" member so GIS tools pick up
// the collection's declared CRS.
package formatter
