// Package pipeline implements the data pipelines of the toolkit: fetching
// vehicle locations from the Stride API as typed feature collections, and
// enriching an existing collection with GTFS route metadata joined by
// line-reference key.
//
// # Record model
//
// A FeatureCollection is an ordered sequence of records sharing one Schema,
// plus an optional 2D point per record and a CRS identifier for the whole
// collection. Field values use the explicit-null Value type; there is exactly
// one encoding for "no value". Collections are never mutated in place — the
// enrichment pipeline builds a new collection.
//
// # Enrichment path
//
// EnrichWithRouteData runs three strictly sequential stages:
//
//	keys, from, to := extract distinct line refs + date range from the input
//	refs := one batched GET /gtfs_routes/list for all keys
//	out := left-join the reference rows back onto the input records
//
// Batching is the core efficiency decision: one round trip regardless of how
// many distinct keys the input holds. A transport failure during the batch
// fetch degrades every key to not-found and the join still completes; only a
// missing key field or an empty key set aborts the run.
//
// # Locations path
//
// FetchLocations issues a single GET against a locations endpoint (optionally
// filtered by extent and time window) and maps each JSON row onto a fixed
// 17-field schema with point geometry.
//
// # Host integration
//
// The pipelines know nothing about their host. Progress, log output and
// cooperative cancellation go through the injected Feedback; the network goes
// through strideapi.Transport; CRS reprojection goes through geo.Transformer.
// Cancellation is polled between records, so the stages stop early and return
// whatever they accumulated.
package pipeline
