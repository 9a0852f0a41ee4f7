// Package strideapi provides the outbound HTTP transport for the Open Bus
// Stride REST API.
//
// The pipelines depend only on the Transport interface, so tests and embedders
// can swap the network out for a fake. Client is the real implementation: a
// thin GET wrapper that URL-encodes query parameters, enforces a 200 status
// and returns the raw body.
//
// Endpoints served by the API return JSON arrays of objects; FetchList decodes
// one of those, rejecting anything that is not an array.
package strideapi
