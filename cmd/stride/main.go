package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/openbus-tools/stride/config"
	"github.com/openbus-tools/stride/formatter"
	"github.com/openbus-tools/stride/geo"
	"github.com/openbus-tools/stride/internal"
	"github.com/openbus-tools/stride/metrics"
	"github.com/openbus-tools/stride/pipeline"
	"github.com/openbus-tools/stride/server"
	"github.com/openbus-tools/stride/strideapi"
)

func main() {
	mode := flag.String("mode", "locations", "locations|enrich|serve")
	path := flag.String("path", "", "API endpoint path (default /siri_vehicle_locations/list)")
	start := flag.String("start", "", "start of the time window, RFC 3339 UTC")
	duration := flag.Int("duration", 5, "time window length in minutes")
	bbox := flag.String("bbox", "", "bounding box filter: xmin,ymin,xmax,ymax (wire CRS)")
	params := flag.String("params", "", `extra query parameters as flat JSON, e.g. {"limit": 500}`)
	input := flag.String("input", "", "input GeoJSON file (enrich mode)")
	output := flag.String("output", "", "output GeoJSON file (default stdout)")
	field := flag.String("field", "siri_line_ref", "line reference field (enrich mode)")
	flag.Parse()

	internal.InitLogging()
	if err := config.LoadAppConfig(); err != nil {
		log.Fatalf("config: %v", err)
	}
	cfg := config.Config

	client := strideapi.NewClient(cfg.API.BaseURL, time.Duration(cfg.API.TimeoutMS)*time.Millisecond)
	fb := pipeline.LogFeedback{}
	ctx := context.Background()

	switch *mode {
	case "locations":
		extra, err := pipeline.ParseExtraParams(*params)
		if err != nil {
			log.Fatalf("params: %v", err)
		}
		if _, ok := extra["limit"]; !ok && cfg.API.DefaultLimit > 0 {
			extra["limit"] = strconv.Itoa(cfg.API.DefaultLimit)
		}

		req := pipeline.LocationsRequest{
			Path:            *path,
			DurationMinutes: *duration,
			Extra:           extra,
		}
		if *bbox != "" {
			rect, err := geo.ParseRect(*bbox)
			if err != nil {
				log.Fatalf("bbox: %v", err)
			}
			req.Extent = &rect
		}
		if *start != "" {
			t, err := time.Parse(time.RFC3339, *start)
			if err != nil {
				log.Fatalf("start: %v", err)
			}
			req.Start = t
		}

		fc, err := pipeline.FetchLocations(ctx, client, req, fb)
		if err != nil {
			log.Fatalf("fetch: %v", err)
		}
		writeCollection(fc, *output)

	case "enrich":
		if *input == "" {
			log.Fatal("enrich mode requires -input")
		}
		data, err := os.ReadFile(*input)
		if err != nil {
			log.Fatalf("read input: %v", err)
		}
		fc, err := formatter.DecodeGeoJSON(data)
		if err != nil {
			log.Fatalf("decode input: %v", err)
		}

		out, err := pipeline.EnrichWithRouteData(ctx, client, fc, *field, fb)
		if err != nil {
			log.Fatalf("enrich: %v", err)
		}
		writeCollection(out, *output)

	case "serve":
		srv := server.New(cfg, client, metrics.NewCollector())
		srv.Start()
		srv.WaitForShutdown()

	default:
		log.Fatalf("unknown mode %q", *mode)
	}
}

func writeCollection(fc *pipeline.FeatureCollection, path string) {
	data, err := formatter.EncodeGeoJSON(fc)
	if err != nil {
		log.Fatalf("encode output: %v", err)
	}
	if path == "" {
		fmt.Println(string(data))
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Fatalf("write output: %v", err)
	}
	log.Printf("wrote %d feature(s) to %s", len(fc.Features), path)
}
