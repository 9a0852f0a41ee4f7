package pipeline_test

import (
	"context"
	"net/url"
	"time"

	"github.com/openbus-tools/stride/geo"
	"github.com/openbus-tools/stride/pipeline"
)

// fakeTransport serves canned bytes and records the last outbound call.
type fakeTransport struct {
	body       []byte
	err        error
	lastPath   string
	lastParams url.Values
	calls      int
}

func (f *fakeTransport) Fetch(_ context.Context, path string, params url.Values) ([]byte, error) {
	f.calls++
	f.lastPath = path
	f.lastParams = params
	if f.err != nil {
		return nil, f.err
	}
	return f.body, nil
}

// captureFeedback records feedback calls and can cancel after a fixed number
// of Canceled polls.
type captureFeedback struct {
	infos       []string
	errors      []string
	cancelAfter int // 0 = never cancel
	polls       int
}

func (f *captureFeedback) Info(msg string)        { f.infos = append(f.infos, msg) }
func (f *captureFeedback) ReportError(msg string) { f.errors = append(f.errors, msg) }
func (f *captureFeedback) Progress(int)           {}
func (f *captureFeedback) Canceled() bool {
	f.polls++
	return f.cancelAfter > 0 && f.polls > f.cancelAfter
}

func mustTime(t string) time.Time {
	parsed, err := time.Parse(time.RFC3339, t)
	if err != nil {
		panic(err)
	}
	return parsed
}

// locationsCollection builds a small input collection for the enrichment
// tests: a line ref field, a recorded_at timestamp and point geometry.
func locationsCollection(rows []struct {
	LineRef    pipeline.Value
	RecordedAt pipeline.Value
}) *pipeline.FeatureCollection {
	schema := pipeline.Schema{
		{Name: "siri_line_ref", Type: pipeline.TypeInt},
		{Name: "recorded_at", Type: pipeline.TypeTime},
	}
	fc := pipeline.NewFeatureCollection(schema, geo.CRSWGS84)
	for i, row := range rows {
		x := 34.0 + float64(i)
		fc.Features = append(fc.Features, pipeline.Feature{
			Values: []pipeline.Value{row.LineRef, row.RecordedAt},
			Point:  &geo.Point{X: x, Y: 32.0},
		})
	}
	return fc
}
