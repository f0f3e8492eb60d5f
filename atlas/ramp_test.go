package atlas

import "testing"

func TestDepthRamp(t *testing.T) {
	ramp := NewDepthRamp(3)
	if ramp.Levels != 4 {
		t.Fatalf("levels %d", ramp.Levels)
	}

	seen := map[[3]uint8]int{}
	for depth := 0; depth < ramp.Levels; depth++ {
		c := ramp.Color(depth)
		if c.A != 255 {
			t.Errorf("depth %d: alpha %d", depth, c.A)
		}
		key := [3]uint8{c.R, c.G, c.B}
		if prev, ok := seen[key]; ok {
			t.Errorf("depths %d and %d share a color", prev, depth)
		}
		seen[key] = depth
	}

	if ramp.Color(-1) != ramp.Color(0) || ramp.Color(10) != ramp.Color(3) {
		t.Error("out-of-range depths should clamp")
	}
}

func TestDepthRampSingleLevel(t *testing.T) {
	ramp := NewDepthRamp(0)
	if ramp.Levels != 1 || ramp.Color(0) != ramp.Color(5) {
		t.Errorf("unexpected single-level ramp %+v", ramp)
	}
}

func TestTickStep(t *testing.T) {
	for _, v := range []struct{ levels, step int }{{1, 1}, {9, 1}, {19, 1}, {20, 2}, {57, 5}} {
		if got := (DepthRamp{Levels: v.levels}).TickStep(); got != v.step {
			t.Errorf("%d levels: step %d, expected %d", v.levels, got, v.step)
		}
	}
}
