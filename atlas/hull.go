package atlas

import (
	"fmt"
	"math"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"gonum.org/v1/gonum/stat"
)

// MinHullPoints is the smallest set for which an outline is attempted.
const MinHullPoints = 3

// ConvexHull returns the hull vertices of points in ring order, without
// repeating the first vertex. Non-finite coordinates are ignored. Sets that
// are too small or collinear yield a *HullComputationError.
func ConvexHull(points PointSet) (hull []Point, err error) {
	flat := make([]float64, 0, 2*len(points))
	for _, p := range points {
		x, y := float64(p.X), float64(p.Y)
		if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
			continue
		}
		flat = append(flat, x, y)
	}

	finite := len(flat) / 2
	if finite < MinHullPoints {
		return nil, &HullComputationError{Points: finite, Reason: fmt.Sprintf("need at least %d finite points", MinHullPoints)}
	}

	defer func() {
		if r := recover(); r != nil {
			hull, err = nil, &HullComputationError{Points: finite, Reason: fmt.Sprint(r)}
		}
	}()

	polygon, ok := xy.ConvexHullFlat(geom.XY, flat).(*geom.Polygon)
	if !ok || polygon.NumLinearRings() == 0 {
		return nil, &HullComputationError{Points: finite, Reason: "points are degenerate (coincident or collinear)"}
	}

	coords := polygon.LinearRing(0).Coords()
	if n := len(coords); n > 1 && coords[0].Equal(geom.XY, coords[n-1]) {
		coords = coords[:n-1]
	}
	if len(coords) < MinHullPoints {
		return nil, &HullComputationError{Points: finite, Reason: "points are degenerate (coincident or collinear)"}
	}

	hull = make([]Point, len(coords))
	for i, c := range coords {
		hull[i] = Point{X: float32(c.X()), Y: float32(c.Y())}
	}

	return hull, nil
}

// HullCenter is the mean of the hull vertices, where a set's label is drawn.
func HullCenter(hull []Point) (x, y float64) {
	xs, ys := PointSet(hull).XY()
	return stat.Mean(xs, nil), stat.Mean(ys, nil)
}
