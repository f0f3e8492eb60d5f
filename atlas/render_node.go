package atlas

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// RenderSummary counts what a renderer did with its references.
type RenderSummary struct {
	Rendered     int
	Skipped      int
	HullsDrawn   int
	HullsSkipped int
}

func (s RenderSummary) String() string {
	return fmt.Sprintf("%d rendered, %d skipped, %d outlines drawn, %d outlines skipped", s.Rendered, s.Skipped, s.HullsDrawn, s.HullsSkipped)
}

// SanitizeName turns a relative path into a flat file name by replacing path
// separators with underscores.
func SanitizeName(relativePath string) string {
	name := strings.ReplaceAll(relativePath, "/", "_")
	return strings.ReplaceAll(name, string(filepath.Separator), "_")
}

// NodeRenderer draws one scatter plot per file reference.
type NodeRenderer struct {
	Box    BoundingBox
	OutDir string
	Width  int
	Height int
}

func NewNodeRenderer(box BoundingBox, outDir string) *NodeRenderer {
	return &NodeRenderer{
		Box:    box,
		OutDir: outDir,
		Width:  1000,
		Height: 800,
	}
}

// OutputPath is the PNG written for relativePath.
func (r *NodeRenderer) OutputPath(relativePath string) string {
	return filepath.Join(r.OutDir, SanitizeName(relativePath)+".png")
}

// RenderAll renders every reference whose coordinate file exists under
// dataDir. Missing or unreadable files are logged and skipped.
func (r *NodeRenderer) RenderAll(refs []FileReference, dataDir string) RenderSummary {
	var summary RenderSummary

	if err := os.MkdirAll(r.OutDir, 0755); err != nil {
		log.Println(pfx.Err(err))
		summary.Skipped = len(refs)
		return summary
	}

	for _, ref := range refs {
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

		xInRange, yInRange := Validate(points, r.Box)
		log.Printf("%s - X in range: %t, Y in range: %t", ref.RelativePath, xInRange, yInRange)

		if _, err := r.Render(ref.RelativePath, points); err != nil {
			log.Println(err)
			summary.Skipped++
			continue
		}
		summary.Rendered++
	}

	return summary
}

// Render writes the scatter plot of points, clipped to the bounding box, and
// returns the path of the PNG.
func (r *NodeRenderer) Render(relativePath string, points PointSet) (string, error) {
	clipped := r.Box.Clip(points)
	if len(clipped) == 0 {
		return "", fmt.Errorf("%s: none of its %d points fall inside the bounding box", relativePath, len(points))
	}

	xs, ys := clipped.XY()

	graph := chart.Chart{
		Title:  SanitizeName(relativePath),
		Width:  r.Width,
		Height: r.Height,
		XAxis: chart.XAxis{
			Name:  "X",
			Range: &chart.ContinuousRange{Min: r.Box.LX, Max: r.Box.UX},
		},
		YAxis: chart.YAxis{
			Name:  "Y",
			Range: &chart.ContinuousRange{Min: r.Box.LY, Max: r.Box.UY},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Style: chart.Style{
					StrokeWidth: chart.Disabled,
					DotWidth:    1,
					DotColor:    drawing.ColorBlue.WithAlpha(128),
				},
				XValues: xs,
				YValues: ys,
			},
		},
	}

	// Render to a byte buffer so a failed render leaves no partial file
	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return "", pfx.Err(fmt.Errorf("%s: %w", relativePath, err))
	}

	outPath := r.OutputPath(relativePath)
	outFile, err := os.Create(outPath)
	if err != nil {
		return "", pfx.Err(err)
	}
	defer outFile.Close()

	if _, err := buffer.WriteTo(outFile); err != nil {
		return "", pfx.Err(err)
	}

	return outPath, outFile.Close()
}
