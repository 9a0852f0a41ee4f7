package geo

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseRect parses a "xmin,ymin,xmax,ymax" bounding box string, the format
// used by the CLI flag and the bbox query parameter.
func ParseRect(s string) (Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Rect{}, fmt.Errorf("bbox must be xmin,ymin,xmax,ymax, got %q", s)
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Rect{}, fmt.Errorf("bbox component %d: %w", i+1, err)
		}
		vals[i] = f
	}
	r := Rect{XMin: vals[0], YMin: vals[1], XMax: vals[2], YMax: vals[3]}
	if r.XMin > r.XMax || r.YMin > r.YMax {
		return Rect{}, fmt.Errorf("bbox has inverted bounds: %q", s)
	}
	return r, nil
}
