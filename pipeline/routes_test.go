package pipeline_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/openbus-tools/stride/pipeline"
)

func keySet(keys ...int64) map[int64]struct{} {
	m := make(map[int64]struct{}, len(keys))
	for _, k := range keys {
		m[k] = struct{}{}
	}
	return m
}

func TestFetchRouteData_QueryShape(t *testing.T) {
	ft := &fakeTransport{body: []byte(`[]`)}
	fb := &captureFeedback{}

	pipeline.FetchRouteData(context.Background(), ft, keySet(42, 5, 17), "2023-01-02", "2023-01-09", fb)

	if ft.calls != 1 {
		t.Fatalf("batching means exactly one outbound call, got %d", ft.calls)
	}
	if ft.lastPath != pipeline.RoutesListPath {
		t.Errorf("path: expected %s, got %s", pipeline.RoutesListPath, ft.lastPath)
	}

	tests := []struct {
		param    string
		expected string
	}{
		{"line_refs", "5,17,42"},
		{"get_count", "false"},
		{"date_from", "2023-01-02"},
		{"date_to", "2023-01-09"},
		{"order_by", "id asc"},
	}
	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			if got := ft.lastParams.Get(tt.param); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestFetchRouteData_MissingKeysMarkedNotFound(t *testing.T) {
	ft := &fakeTransport{body: []byte(`[{"line_ref": 17, "route_long_name": "X"}]`)}

	refs := pipeline.FetchRouteData(context.Background(), ft, keySet(17, 42), "2023-01-01", "2023-01-01", &captureFeedback{})

	if len(refs) != 2 {
		t.Fatalf("map must hold exactly the presented key set, got %d entries", len(refs))
	}
	if refs[17] == nil {
		t.Error("key 17 should have a record")
	}
	if row := refs[17]; row != nil {
		if name, _ := row["route_long_name"].(string); name != "X" {
			t.Errorf("expected route_long_name X, got %v", row["route_long_name"])
		}
	}
	if row, ok := refs[42]; !ok || row != nil {
		t.Error("key 42 should be present with the explicit not-found marker")
	}
}

func TestFetchRouteData_FirstWins(t *testing.T) {
	ft := &fakeTransport{body: []byte(`[
		{"line_ref": 5, "route_long_name": "first"},
		{"line_ref": 5, "route_long_name": "second"}
	]`)}

	refs := pipeline.FetchRouteData(context.Background(), ft, keySet(5), "2023-01-01", "2023-01-01", &captureFeedback{})

	row := refs[5]
	if row == nil {
		t.Fatal("key 5 should have a record")
	}
	if name, _ := row["route_long_name"].(string); name != "first" {
		t.Errorf("first-wins: expected first, got %v", row["route_long_name"])
	}
}

func TestFetchRouteData_TransportFailureDegradesBatch(t *testing.T) {
	ft := &fakeTransport{err: errors.New("connection refused")}
	fb := &captureFeedback{}

	refs := pipeline.FetchRouteData(context.Background(), ft, keySet(17, 42), "2023-01-01", "2023-01-01", fb)

	if len(refs) != 2 {
		t.Fatalf("expected both keys present, got %d", len(refs))
	}
	for k, row := range refs {
		if row != nil {
			t.Errorf("key %d should be not-found after transport failure", k)
		}
	}
	found := false
	for _, msg := range fb.errors {
		if strings.Contains(msg, "Error fetching route data") {
			found = true
		}
	}
	if !found {
		t.Error("transport failure should be surfaced through feedback")
	}
}

func TestFetchRouteData_UnrequestedKeysIgnored(t *testing.T) {
	ft := &fakeTransport{body: []byte(`[
		{"line_ref": 17, "route_long_name": "X"},
		{"line_ref": 99, "route_long_name": "stray"}
	]`)}

	refs := pipeline.FetchRouteData(context.Background(), ft, keySet(17), "2023-01-01", "2023-01-01", &captureFeedback{})

	if len(refs) != 1 {
		t.Fatalf("expected exactly the presented key set, got %d entries", len(refs))
	}
	if _, ok := refs[99]; ok {
		t.Error("unrequested key must not leak into the map")
	}
}
