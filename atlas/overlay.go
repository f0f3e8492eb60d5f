package atlas

import (
	"fmt"
	"image/color"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/carbocation/pfx"
	"github.com/fogleman/gg"
	"github.com/icza/gox/imagex/colorx"
	"golang.org/x/image/font/basicfont"
)

// DefaultDepthThreshold excludes the root from the overlay.
const DefaultDepthThreshold = 1

// OverlayStyle holds the hex colors used for decorations.
type OverlayStyle struct {
	Background      string
	Outline         string
	LabelText       string
	LabelBackground string
	// LabelAlpha is the opacity of the label background, 0-1.
	LabelAlpha float64
	// PointAlpha is the opacity of scatter points, 0-1.
	PointAlpha float64
	PointSize  float64
}

var DefaultOverlayStyle = OverlayStyle{
	Background:      "#ffffff",
	Outline:         "#000000",
	LabelText:       "#000000",
	LabelBackground: "#ffffff",
	LabelAlpha:      0.7,
	PointAlpha:      0.6,
	PointSize:       1,
}

type overlayColors struct {
	background, outline, labelText, labelBackground color.RGBA
}

func (s OverlayStyle) parse() (overlayColors, error) {
	var out overlayColors
	for _, v := range []struct {
		hex string
		dst *color.RGBA
	}{
		{s.Background, &out.background},
		{s.Outline, &out.outline},
		{s.LabelText, &out.labelText},
		{s.LabelBackground, &out.labelBackground},
	} {
		c, err := colorx.ParseHexColor(v.hex)
		if err != nil {
			return out, fmt.Errorf("color %q: %w", v.hex, err)
		}
		*v.dst = c
	}

	return out, nil
}

// OverlayRenderer draws every selected point set on one canvas, coarser
// depths first, with hull outlines and labels on top and a depth colorbar.
type OverlayRenderer struct {
	Box            BoundingBox
	DepthThreshold int
	Width          int
	Height         int
	Title          string
	Style          OverlayStyle
}

func NewOverlayRenderer(box BoundingBox, depthThreshold int) *OverlayRenderer {
	return &OverlayRenderer{
		Box:            box,
		DepthThreshold: depthThreshold,
		Width:          1200,
		Height:         1000,
		Title:          "Overlayed Scatter Plot with Borders and Labels",
		Style:          DefaultOverlayStyle,
	}
}

// SelectForOverlay keeps references at depthThreshold or deeper and orders
// them by ascending depth. Pre-order is kept within a depth.
func SelectForOverlay(refs []FileReference, depthThreshold int) []FileReference {
	var out []FileReference
	for _, ref := range refs {
		if ref.Depth >= depthThreshold {
			out = append(out, ref)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Depth < out[j].Depth })

	return out
}

// Canvas layout, in pixels.
const (
	marginLeft   = 80.0
	marginRight  = 150.0
	marginTop    = 50.0
	marginBottom = 60.0
	colorbarW    = 24.0
	colorbarGap  = 30.0
)

type plotArea struct {
	box          BoundingBox
	x0, y0, w, h float64
}

func (a plotArea) project(x, y float64) (float64, float64) {
	px := a.x0 + (x-a.box.LX)/(a.box.UX-a.box.LX)*a.w
	py := a.y0 + (a.box.UY-y)/(a.box.UY-a.box.LY)*a.h
	return px, py
}

type drawnSet struct {
	ref  FileReference
	hull []Point
}

// Render draws the overlay for refs, reading coordinate files from dataDir,
// and saves it as a PNG at outPath.
func (r *OverlayRenderer) Render(refs []FileReference, dataDir, outPath string) (RenderSummary, error) {
	var summary RenderSummary

	if err := r.Box.Check(); err != nil {
		return summary, pfx.Err(err)
	}

	colors, err := r.Style.parse()
	if err != nil {
		return summary, pfx.Err(err)
	}

	selected := SelectForOverlay(refs, r.DepthThreshold)
	if len(selected) == 0 {
		return summary, fmt.Errorf("%w: no file references at depth %d or deeper", ErrNothingToOverlay, r.DepthThreshold)
	}
	log.Printf("Selected %d files for the overlay", len(selected))

	ramp := NewDepthRamp(selected[len(selected)-1].Depth)

	dc := gg.NewContext(r.Width, r.Height)
	dc.SetColor(colors.background)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	area := plotArea{
		box: r.Box,
		x0:  marginLeft,
		y0:  marginTop,
		w:   float64(r.Width) - marginLeft - marginRight,
		h:   float64(r.Height) - marginTop - marginBottom,
	}

	// Scatter first, so every outline and label sits above every point
	var drawn []drawnSet
	dc.DrawRectangle(area.x0, area.y0, area.w, area.h)
	dc.Clip()
	for _, ref := range selected {
		localPath := filepath.Join(dataDir, filepath.FromSlash(ref.RelativePath))
		if !fileExists(localPath) {
			log.Printf("%s does not exist, skipping", localPath)
			summary.Skipped++
			continue
		}

		points, err := ReadPointsFile(localPath)
		if err != nil {
			log.Println(err)
			summary.Skipped++
			continue
		}

		r.drawPoints(dc, area, points, ramp.Color(ref.Depth))
		summary.Rendered++

		if len(points) < MinHullPoints {
			log.Printf("%s has %d points, too few for an outline", ref.RelativePath, len(points))
			summary.HullsSkipped++
			continue
		}

		hull, err := ConvexHull(points)
		if err != nil {
			log.Printf("%s: %s", ref.RelativePath, err)
			summary.HullsSkipped++
			continue
		}
		drawn = append(drawn, drawnSet{ref: ref, hull: hull})
	}

	for _, d := range drawn {
		r.drawHull(dc, area, d.hull, colors.outline)
		summary.HullsDrawn++
	}
	dc.ResetClip()

	for _, d := range drawn {
		r.drawLabel(dc, area, d.ref.File, d.hull, colors)
	}

	r.drawAxes(dc, area)
	r.drawColorbar(dc, area, ramp)

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return summary, pfx.Err(err)
	}
	if err := dc.SavePNG(outPath); err != nil {
		return summary, pfx.Err(err)
	}
	log.Printf("Overlay saved to %s", outPath)

	return summary, nil
}

func (r *OverlayRenderer) drawPoints(dc *gg.Context, area plotArea, points PointSet, c color.NRGBA) {
	c.A = uint8(math.Round(255 * r.Style.PointAlpha))
	dc.SetColor(c)

	size := r.Style.PointSize
	for _, p := range points {
		px, py := area.project(float64(p.X), float64(p.Y))
		if math.IsNaN(px) || math.IsNaN(py) {
			continue
		}
		dc.DrawRectangle(px-size/2, py-size/2, size, size)
	}
	dc.Fill()
}

func (r *OverlayRenderer) drawHull(dc *gg.Context, area plotArea, hull []Point, c color.RGBA) {
	dc.SetColor(c)
	dc.SetLineWidth(1)
	for i, p := range hull {
		px, py := area.project(float64(p.X), float64(p.Y))
		if i == 0 {
			dc.MoveTo(px, py)
			continue
		}
		dc.LineTo(px, py)
	}
	dc.ClosePath()
	dc.Stroke()
}

func (r *OverlayRenderer) drawLabel(dc *gg.Context, area plotArea, text string, hull []Point, colors overlayColors) {
	cx, cy := area.project(HullCenter(hull))
	w, h := dc.MeasureString(text)

	bg := colors.labelBackground
	bg.A = uint8(math.Round(255 * r.Style.LabelAlpha))
	dc.SetColor(color.NRGBA{R: bg.R, G: bg.G, B: bg.B, A: bg.A})
	dc.DrawRectangle(cx-w/2-1, cy-h/2-1, w+2, h+2)
	dc.Fill()

	dc.SetColor(colors.labelText)
	dc.DrawStringAnchored(text, cx, cy, 0.5, 0.5)
}

func (r *OverlayRenderer) drawAxes(dc *gg.Context, area plotArea) {
	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(1)
	dc.DrawRectangle(area.x0, area.y0, area.w, area.h)
	dc.Stroke()

	const ticks = 5
	for i := 0; i <= ticks; i++ {
		frac := float64(i) / ticks

		x := r.Box.LX + frac*(r.Box.UX-r.Box.LX)
		px, _ := area.project(x, r.Box.LY)
		dc.DrawLine(px, area.y0+area.h, px, area.y0+area.h+5)
		dc.Stroke()
		dc.DrawStringAnchored(strconv.FormatFloat(x, 'f', 1, 64), px, area.y0+area.h+8, 0.5, 1)

		y := r.Box.LY + frac*(r.Box.UY-r.Box.LY)
		_, py := area.project(r.Box.LX, y)
		dc.DrawLine(area.x0-5, py, area.x0, py)
		dc.Stroke()
		dc.DrawStringAnchored(strconv.FormatFloat(y, 'f', 1, 64), area.x0-8, py, 1, 0.5)
	}

	dc.DrawStringAnchored("X", area.x0+area.w/2, area.y0+area.h+35, 0.5, 1)

	dc.Push()
	dc.RotateAbout(gg.Radians(-90), area.x0-55, area.y0+area.h/2)
	dc.DrawStringAnchored("Y", area.x0-55, area.y0+area.h/2, 0.5, 0.5)
	dc.Pop()

	dc.DrawStringAnchored(r.Title, area.x0+area.w/2, marginTop/2, 0.5, 0.5)
}

// drawColorbar stacks one swatch per depth, depth 0 at the bottom.
func (r *OverlayRenderer) drawColorbar(dc *gg.Context, area plotArea, ramp DepthRamp) {
	x := area.x0 + area.w + colorbarGap
	swatchH := area.h / float64(ramp.Levels)

	for depth := 0; depth < ramp.Levels; depth++ {
		y := area.y0 + area.h - float64(depth+1)*swatchH
		dc.SetColor(ramp.Color(depth))
		dc.DrawRectangle(x, y, colorbarW, swatchH)
		dc.Fill()

		if depth%ramp.TickStep() == 0 {
			dc.SetRGB(0, 0, 0)
			dc.DrawStringAnchored(strconv.Itoa(depth), x+colorbarW+6, y+swatchH/2, 0, 0.5)
		}
	}

	dc.SetRGB(0, 0, 0)
	dc.DrawRectangle(x, area.y0, colorbarW, area.h)
	dc.Stroke()

	labelX := x + colorbarW + 45
	dc.Push()
	dc.RotateAbout(gg.Radians(-90), labelX, area.y0+area.h/2)
	dc.DrawStringAnchored("Hierarchy Depth", labelX, area.y0+area.h/2, 0.5, 0.5)
	dc.Pop()
}
