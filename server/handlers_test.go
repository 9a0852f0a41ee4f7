package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/openbus-tools/stride/config"
	"github.com/openbus-tools/stride/formatter"
	"github.com/openbus-tools/stride/metrics"
	"github.com/openbus-tools/stride/server"
)

// stubTransport serves canned payloads keyed by request path and records
// the queries it saw.
type stubTransport struct {
	responses map[string][]byte
	err       error
	params    map[string]url.Values
}

func (t *stubTransport) Fetch(_ context.Context, path string, params url.Values) ([]byte, error) {
	if t.params == nil {
		t.params = map[string]url.Values{}
	}
	t.params[path] = params
	if t.err != nil {
		return nil, t.err
	}
	body, ok := t.responses[path]
	if !ok {
		return []byte("[]"), nil
	}
	return body, nil
}

func newTestServer(t *stubTransport) *server.Server {
	cfg := config.AppConfig{}
	cfg.API.DefaultLimit = 1000
	return server.New(cfg, t, metrics.NewCollector())
}

func doRequest(t *testing.T, srv *server.Server, method, target string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	rec := doRequest(t, newTestServer(&stubTransport{}), http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("unexpected status: %v", resp)
	}
}

func TestHandleLocations(t *testing.T) {
	st := &stubTransport{responses: map[string][]byte{
		"/siri_vehicle_locations/list": []byte(`[
			{"id": 1, "lon": 34.8, "lat": 32.1,
			 "recorded_at_time": "2023-01-05T10:00:00.000Z",
			 "siri_route__line_ref": 5}
		]`),
	}}
	rec := doRequest(t, newTestServer(st), http.MethodGet,
		"/api/locations?bbox=34.7,32.0,34.9,32.2&start=2023-01-05T10:00:00Z&duration=5", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/geo+json" {
		t.Errorf("unexpected content type %q", ct)
	}
	if rec.Header().Get("X-Run-ID") == "" {
		t.Error("missing X-Run-ID header")
	}

	fc, err := formatter.DecodeGeoJSON(rec.Body.Bytes())
	if err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(fc.Features) != 1 {
		t.Fatalf("expected 1 feature, got %d", len(fc.Features))
	}
	p := fc.Features[0].Point
	if p == nil || p.X != 34.8 || p.Y != 32.1 {
		t.Errorf("unexpected point: %v", p)
	}

	params := st.params["/siri_vehicle_locations/list"]
	if params == nil {
		t.Fatal("locations endpoint never queried")
	}
	if got := params.Get("limit"); got != "1000" {
		t.Errorf("expected default limit 1000, got %q", got)
	}
	if got := params.Get("lon__greater_or_equal"); got != "34.7" {
		t.Errorf("unexpected extent filter: %q", got)
	}
	if got := params.Get("recorded_at_time_from"); got != "2023-01-05T10:00:00.000Z" {
		t.Errorf("unexpected start filter: %q", got)
	}
}

func TestHandleLocations_BadBBox(t *testing.T) {
	rec := doRequest(t, newTestServer(&stubTransport{}), http.MethodGet,
		"/api/locations?bbox=34.9,32.0,34.7,32.2", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["error"] == "" {
		t.Error("missing error message")
	}
}

func TestHandleLocations_TransportFailure(t *testing.T) {
	st := &stubTransport{err: errors.New("connection refused")}
	rec := doRequest(t, newTestServer(st), http.MethodGet, "/api/locations", "")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}

func TestHandleEnrich(t *testing.T) {
	st := &stubTransport{responses: map[string][]byte{
		"/gtfs_routes/list": []byte(`[
			{"line_ref": 5, "date": "2023-01-05",
			 "route_short_name": "5", "route_long_name": "Line Five",
			 "route_mkt": "10005", "route_direction": "1", "route_alternative": "0",
			 "agency_name": "Egged", "route_type": "3"}
		]`),
	}}
	body := `{"type": "FeatureCollection", "features": [
		{"type": "Feature",
		 "geometry": {"type": "Point", "coordinates": [34.8, 32.1]},
		 "properties": {"siri_line_ref": 5, "recorded_at": "2023-01-05T10:00:00Z"}}
	]}`
	rec := doRequest(t, newTestServer(st), http.MethodPost, "/api/enrich", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	fc, err := formatter.DecodeGeoJSON(rec.Body.Bytes())
	if err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(fc.Features) != 1 {
		t.Fatalf("expected 1 feature, got %d", len(fc.Features))
	}
	if got, _ := fc.Value(0, "route_short_name").AsString(); got != "5" {
		t.Errorf("route_short_name: got %q", got)
	}
	if got, _ := fc.Value(0, "route_desc").AsString(); got != "10005-1-0" {
		t.Errorf("route_desc: got %q", got)
	}

	params := st.params["/gtfs_routes/list"]
	if params == nil {
		t.Fatal("routes endpoint never queried")
	}
	if got := params.Get("line_refs"); got != "5" {
		t.Errorf("unexpected line_refs: %q", got)
	}
	if got := params.Get("date_from"); got != "2023-01-05" {
		t.Errorf("unexpected date_from: %q", got)
	}
}

func TestHandleEnrich_BadBody(t *testing.T) {
	rec := doRequest(t, newTestServer(&stubTransport{}), http.MethodPost, "/api/enrich", "not json")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestMetricsEndpointToggle(t *testing.T) {
	rec := doRequest(t, newTestServer(&stubTransport{}), http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Errorf("metrics enabled by default: expected 200, got %d", rec.Code)
	}

	cfg := config.AppConfig{}
	cfg.Server.DisableMetrics = true
	srv := server.New(cfg, &stubTransport{}, metrics.NewCollector())
	rec = doRequest(t, srv, http.MethodGet, "/metrics", "")
	if rec.Code == http.StatusOK {
		t.Errorf("metrics disabled: expected non-200, got %d", rec.Code)
	}
}

func TestHandleEnrich_NoValidKeys(t *testing.T) {
	body := `{"type": "FeatureCollection", "features": [
		{"type": "Feature", "geometry": null, "properties": {"siri_line_ref": null}}
	]}`
	rec := doRequest(t, newTestServer(&stubTransport{}), http.MethodPost, "/api/enrich", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
