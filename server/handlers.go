package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/openbus-tools/stride/formatter"
	"github.com/openbus-tools/stride/geo"
	"github.com/openbus-tools/stride/pipeline"
)

const defaultLineRefField = "siri_line_ref"

// requestFeedback logs through the standard logger tagged with the run id and
// cancels when the request context does.
type requestFeedback struct {
	pipeline.LogFeedback
	ctx context.Context
}

func (f requestFeedback) Canceled() bool { return f.ctx.Err() != nil }

type healthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(healthResponse{Status: "ok"})
}

func (s *Server) handleLocations(w http.ResponseWriter, r *http.Request) {
	s.metrics.RequestsTotal.WithLabelValues("locations").Inc()
	runID := uuid.NewString()
	fb := requestFeedback{pipeline.LogFeedback{Prefix: runID[:8]}, r.Context()}

	req, err := s.locationsRequest(r)
	if err != nil {
		writeError(w, runID, http.StatusBadRequest, err)
		return
	}

	start := time.Now()
	fc, err := pipeline.FetchLocations(r.Context(), s.transport, *req, fb)
	if err != nil {
		s.metrics.FetchErrors.Inc()
		writeError(w, runID, http.StatusBadGateway, err)
		return
	}
	s.metrics.PipelineDuration.WithLabelValues("locations").Observe(time.Since(start).Seconds())
	s.metrics.RecordsFetched.Add(float64(len(fc.Features)))

	writeGeoJSON(w, runID, fc)
}

func (s *Server) locationsRequest(r *http.Request) (*pipeline.LocationsRequest, error) {
	q := r.URL.Query()

	extra, err := pipeline.ParseExtraParams(q.Get("params"))
	if err != nil {
		return nil, err
	}
	if v := q.Get("limit"); v != "" {
		if _, err := strconv.Atoi(v); err != nil {
			return nil, &pipeline.ConfigurationError{Msg: "limit must be an integer"}
		}
		extra["limit"] = v
	}
	if _, ok := extra["limit"]; !ok && s.cfg.API.DefaultLimit > 0 {
		extra["limit"] = strconv.Itoa(s.cfg.API.DefaultLimit)
	}

	req := pipeline.LocationsRequest{Path: q.Get("path"), Extra: extra}

	if v := q.Get("bbox"); v != "" {
		rect, err := geo.ParseRect(v)
		if err != nil {
			return nil, &pipeline.ConfigurationError{Msg: err.Error()}
		}
		req.Extent = &rect
	}
	if v := q.Get("start"); v != "" {
		start, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, &pipeline.ConfigurationError{Msg: "start must be RFC 3339: " + err.Error()}
		}
		req.Start = start
	}
	if v := q.Get("duration"); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil || minutes < 0 {
			return nil, &pipeline.ConfigurationError{Msg: "duration must be a non-negative number of minutes"}
		}
		req.DurationMinutes = minutes
	}

	return &req, nil
}

func (s *Server) handleEnrich(w http.ResponseWriter, r *http.Request) {
	s.metrics.RequestsTotal.WithLabelValues("enrich").Inc()
	runID := uuid.NewString()
	fb := requestFeedback{pipeline.LogFeedback{Prefix: runID[:8]}, r.Context()}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, runID, http.StatusBadRequest, err)
		return
	}
	fc, err := formatter.DecodeGeoJSON(body)
	if err != nil {
		writeError(w, runID, http.StatusBadRequest, err)
		return
	}

	field := r.URL.Query().Get("field")
	if field == "" {
		field = defaultLineRefField
	}

	start := time.Now()
	out, err := pipeline.EnrichWithRouteData(r.Context(), s.transport, fc, field, fb)
	if err != nil {
		var cfgErr *pipeline.ConfigurationError
		if errors.As(err, &cfgErr) {
			writeError(w, runID, http.StatusBadRequest, err)
		} else {
			writeError(w, runID, http.StatusInternalServerError, err)
		}
		return
	}
	s.metrics.PipelineDuration.WithLabelValues("enrich").Observe(time.Since(start).Seconds())
	s.metrics.RecordsEnriched.Add(float64(len(out.Features)))

	writeGeoJSON(w, runID, out)
}

func writeGeoJSON(w http.ResponseWriter, runID string, fc *pipeline.FeatureCollection) {
	data, err := formatter.EncodeGeoJSON(fc)
	if err != nil {
		writeError(w, runID, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set("X-Run-ID", runID)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, runID string, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Run-ID", runID)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
