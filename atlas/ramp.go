package atlas

import (
	"image/color"

	"github.com/wcharczuk/go-chart/v2"
)

// DepthRamp assigns one viridis color per hierarchy depth, sampling the map
// at Levels evenly spaced positions.
type DepthRamp struct {
	Levels int
}

// NewDepthRamp sizes a ramp for depths 0 through maxDepth.
func NewDepthRamp(maxDepth int) DepthRamp {
	if maxDepth < 0 {
		maxDepth = 0
	}
	return DepthRamp{Levels: maxDepth + 1}
}

// Color returns the color for depth, clamped to the ramp.
func (r DepthRamp) Color(depth int) color.NRGBA {
	if depth < 0 {
		depth = 0
	}
	if depth > r.Levels-1 {
		depth = r.Levels - 1
	}

	var c = chart.Viridis(0, 0, 1)
	if r.Levels > 1 {
		c = chart.Viridis(float64(depth), 0, float64(r.Levels-1))
	}

	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// TickStep is the spacing between labelled depths on the colorbar.
func (r DepthRamp) TickStep() int {
	if step := r.Levels / 10; step > 1 {
		return step
	}
	return 1
}
