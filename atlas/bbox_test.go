package atlas

import (
	"math"
	"testing"
)

func TestValidate(t *testing.T) {
	box := BoundingBox{LX: 0, LY: 0, UX: 10, UY: 10}
	nan := float32(math.NaN())

	for _, v := range []struct {
		name   string
		points PointSet
		x, y   bool
	}{
		{"empty", nil, true, true},
		{"inside", PointSet{{1, 1}, {9, 9}}, true, true},
		{"edges count as inside", PointSet{{0, 0}, {10, 10}}, true, true},
		{"one stray x", PointSet{{1, 1}, {11, 5}, {2, 2}}, false, true},
		{"one stray y", PointSet{{1, -0.5}}, true, false},
		{"both", PointSet{{-1, 1}, {1, 20}}, false, false},
		{"nan", PointSet{{nan, 1}}, false, true},
	} {
		x, y := Validate(v.points, box)
		if x != v.x || y != v.y {
			t.Errorf("%s: got (%t, %t), expected (%t, %t)", v.name, x, y, v.x, v.y)
		}
	}
}

func TestClip(t *testing.T) {
	box := BoundingBox{LX: 0, LY: 0, UX: 1, UY: 1}
	clipped := box.Clip(PointSet{{0.5, 0.5}, {2, 0.5}, {0.1, 0.9}})

	if len(clipped) != 2 || clipped[0] != (Point{0.5, 0.5}) || clipped[1] != (Point{0.1, 0.9}) {
		t.Errorf("got %v", clipped)
	}
}

func TestBoundingBoxCheck(t *testing.T) {
	if err := DefaultBoundingBox.Check(); err != nil {
		t.Error(err)
	}
	if err := (BoundingBox{LX: 1, UX: 1, LY: 0, UY: 1}).Check(); err == nil {
		t.Error("expected an error for an empty x extent")
	}
}
