package geo

// Common CRS identifiers for the Stride API.
const (
	// CRSWGS84 is the wire CRS: the API serves lon/lat degrees.
	CRSWGS84 = "EPSG:4326"
	// CRSIsraelTM is the projected Israel Grid, the conventional output CRS.
	CRSIsraelTM = "EPSG:2039"
)

// Point is a 2D coordinate. X is longitude/easting, Y is latitude/northing.
type Point struct {
	X float64
	Y float64
}

// Rect is an axis-aligned bounding rectangle.
type Rect struct {
	XMin float64
	YMin float64
	XMax float64
	YMax float64
}

// IsZero reports whether the rectangle carries no extent at all.
func (r Rect) IsZero() bool {
	return r.XMin == 0 && r.YMin == 0 && r.XMax == 0 && r.YMax == 0
}

// Transformer reprojects points into its target CRS. Implementations are
// injected by the host; the pipelines never do CRS math themselves.
type Transformer interface {
	TargetCRS() string
	Transform(p Point) Point
}

// Identity is a no-op transformer that only declares the CRS the
// coordinates are already in.
type Identity struct {
	CRS string
}

func (i Identity) TargetCRS() string {
	if i.CRS == "" {
		return CRSWGS84
	}
	return i.CRS
}

func (i Identity) Transform(p Point) Point { return p }

// TransformRect reprojects a rectangle by transforming both corners and
// re-normalizing the bounds. A nil transformer returns the input unchanged.
func TransformRect(t Transformer, r Rect) Rect {
	if t == nil {
		return r
	}
	lo := t.Transform(Point{X: r.XMin, Y: r.YMin})
	hi := t.Transform(Point{X: r.XMax, Y: r.YMax})
	out := Rect{XMin: lo.X, YMin: lo.Y, XMax: hi.X, YMax: hi.Y}
	if out.XMin > out.XMax {
		out.XMin, out.XMax = out.XMax, out.XMin
	}
	if out.YMin > out.YMax {
		out.YMin, out.YMax = out.YMax, out.YMin
	}
	return out
}
