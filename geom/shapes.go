package geom

// ShapeKind identifies a parametric shape.
type ShapeKind uint8

const (
	// ShapeLine is a straight line between two anchors.
	ShapeLine ShapeKind = iota
	// ShapeRect is an axis-aligned rectangle spanned by two anchors.
	ShapeRect
	// ShapeEllipse is an axis-aligned ellipse inscribed in the anchor rect.
	ShapeEllipse
)

// String returns a human-readable name for the shape kind.
func (k ShapeKind) String() string {
	switch k {
	case ShapeLine:
		return "line"
	case ShapeRect:
		return "rect"
	case ShapeEllipse:
		return "ellipse"
	default:
		return "unknown"
	}
}

// ellipseKappa is the control point distance factor approximating a quarter
// circle with a cubic bezier.
const ellipseKappa = 0.5522847498307936

// ShapePath expands a parametric shape into exact analytic path geometry.
// The returned segments form an open polyline for lines and a closed loop
// for rectangles and ellipses.
func ShapePath(kind ShapeKind, a, b Point) []CubicBez {
	switch kind {
	case ShapeLine:
		return []CubicBez{lineSegment(a, b)}

	case ShapeRect:
		r := RectFromPoints(a, b)
		p0 := Point{X: r.X0, Y: r.Y0}
		p1 := Point{X: r.X1, Y: r.Y0}
		p2 := Point{X: r.X1, Y: r.Y1}
		p3 := Point{X: r.X0, Y: r.Y1}
		return []CubicBez{
			lineSegment(p0, p1),
			lineSegment(p1, p2),
			lineSegment(p2, p3),
			lineSegment(p3, p0),
		}

	case ShapeEllipse:
		r := RectFromPoints(a, b)
		c := r.Center()
		rx := r.Width() * 0.5
		ry := r.Height() * 0.5
		kx := rx * ellipseKappa
		ky := ry * ellipseKappa
		east := Point{X: c.X + rx, Y: c.Y}
		south := Point{X: c.X, Y: c.Y + ry}
		west := Point{X: c.X - rx, Y: c.Y}
		north := Point{X: c.X, Y: c.Y - ry}
		return []CubicBez{
			{east, Point{X: east.X, Y: east.Y + ky}, Point{X: south.X + kx, Y: south.Y}, south},
			{south, Point{X: south.X - kx, Y: south.Y}, Point{X: west.X, Y: west.Y + ky}, west},
			{west, Point{X: west.X, Y: west.Y - ky}, Point{X: north.X - kx, Y: north.Y}, north},
			{north, Point{X: north.X + kx, Y: north.Y}, Point{X: east.X, Y: east.Y - ky}, east},
		}

	default:
		return nil
	}
}

// ShapeClosed reports whether the expanded path of kind forms a closed loop.
func ShapeClosed(kind ShapeKind) bool {
	return kind == ShapeRect || kind == ShapeEllipse
}

// FlattenPath flattens a segment chain into a single polyline including the
// start point of the first segment.
func FlattenPath(segs []CubicBez, tol float64) []Point {
	if len(segs) == 0 {
		return nil
	}
	if tol <= 0 {
		tol = FlattenTolerance
	}
	pts := []Point{segs[0].P0}
	for _, seg := range segs {
		pts = seg.Flatten(tol, pts)
	}
	return pts
}

// StrokePolyline expands an open polyline into a closed constant-width
// outline with round caps, reusing the variable-width machinery.
func StrokePolyline(pts []Point, halfwidth, tol float64) []Point {
	if len(pts) < 2 || halfwidth <= 0 {
		return nil
	}
	path := make(PenPath, 0, len(pts)-1)
	for i := 1; i < len(pts); i++ {
		path = append(path, WidthSegment{
			Curve: lineSegment(pts[i-1], pts[i]),
			W0:    halfwidth,
			W1:    halfwidth,
		})
	}
	return path.Outline(tol)
}

// PathBounds returns the control polygon bounds of a segment chain.
func PathBounds(segs []CubicBez) Rect {
	var out Rect
	for i, seg := range segs {
		if i == 0 {
			out = seg.Bounds()
		} else {
			out = out.Union(seg.Bounds())
		}
	}
	return out
}

// ArcLengthApprox returns the approximate length of the polyline pts.
func ArcLengthApprox(pts []Point) float64 {
	var total float64
	for i := 1; i < len(pts); i++ {
		total += pts[i-1].Distance(pts[i])
	}
	return total
}
