// Package geo holds the small geometry vocabulary shared by the pipelines:
// 2D points, bounding rectangles and coordinate reference system identifiers.
//
// Actual CRS math is out of scope for this module. Callers that need
// reprojection inject a Transformer; everything here works with whatever
// coordinates the transformer (or the wire format) provides.
package geo
