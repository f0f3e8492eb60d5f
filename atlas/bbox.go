package atlas

import (
	"fmt"
)

// BoundingBox is the fixed region used to validate and clip coordinates. The
// z bounds are carried along but unused by the 2-D plots.
type BoundingBox struct {
	LX float64 `json:"lx"`
	LY float64 `json:"ly"`
	LZ float64 `json:"lz"`
	UX float64 `json:"ux"`
	UY float64 `json:"uy"`
	UZ float64 `json:"uz"`
}

// DefaultBoundingBox is the extent of the ScatterBrain coordinate space.
var DefaultBoundingBox = BoundingBox{
	LX: -13.944271999999998,
	LY: -14.753810999999999,
	LZ: 0.0,
	UX: 25.709905,
	UY: 24.900365999999998,
	UZ: 39.654177,
}

// Check rejects boxes that cannot be plotted.
func (b BoundingBox) Check() error {
	if !(b.LX < b.UX) || !(b.LY < b.UY) {
		return fmt.Errorf("bounding box %+v has an empty x or y extent", b)
	}
	return nil
}

func (b BoundingBox) ContainsX(x float64) bool { return x >= b.LX && x <= b.UX }
func (b BoundingBox) ContainsY(y float64) bool { return y >= b.LY && y <= b.UY }

// Contains reports whether p lies inside the box, edges included. NaN
// coordinates are never contained.
func (b BoundingBox) Contains(p Point) bool {
	return b.ContainsX(float64(p.X)) && b.ContainsY(float64(p.Y))
}

// Validate reports, separately for each axis, whether every point lies within
// the box. A single stray coordinate flips the matching result to false. The
// empty set is trivially in range.
func Validate(points PointSet, box BoundingBox) (xInRange, yInRange bool) {
	xInRange, yInRange = true, true
	for _, p := range points {
		if !box.ContainsX(float64(p.X)) {
			xInRange = false
		}
		if !box.ContainsY(float64(p.Y)) {
			yInRange = false
		}
		if !xInRange && !yInRange {
			break
		}
	}
	return xInRange, yInRange
}

// Clip returns the points that lie within the box, preserving order.
func (b BoundingBox) Clip(points PointSet) PointSet {
	out := make(PointSet, 0, len(points))
	for _, p := range points {
		if b.Contains(p) {
			out = append(out, p)
		}
	}
	return out
}
