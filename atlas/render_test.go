package atlas

import (
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writeBin(t *testing.T, dir, rel string, vals ...float32) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, floatBytes(vals...), 0644); err != nil {
		t.Fatal(err)
	}
}

func checkPNG(t *testing.T, path string) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := png.Decode(f); err != nil {
		t.Fatalf("%s: %v", path, err)
	}
}

func TestSanitizeName(t *testing.T) {
	if got := SanitizeName("a/b/c.bin"); got != "a_b_c.bin" {
		t.Errorf("got %s", got)
	}
}

func TestNodeRendererRenderAll(t *testing.T) {
	dataDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "plots")

	writeBin(t, dataDir, "r", 0, 0, 1, 1, 2, 2)
	writeBin(t, dataDir, "s/r0", 1, 1, 100, 100)
	writeBin(t, dataDir, "outside", 100, 100)

	refs := []FileReference{
		{RelativePath: "r"},
		{RelativePath: "s/r0", Depth: 1},
		{RelativePath: "missing", Depth: 1},
		{RelativePath: "outside", Depth: 1},
	}

	r := NewNodeRenderer(DefaultBoundingBox, outDir)
	summary := r.RenderAll(refs, dataDir)

	if summary.Rendered != 2 || summary.Skipped != 2 {
		t.Fatalf("%+v", summary)
	}

	checkPNG(t, filepath.Join(outDir, "r.png"))
	checkPNG(t, filepath.Join(outDir, "s_r0.png"))
	if _, err := os.Stat(filepath.Join(outDir, "outside.png")); !os.IsNotExist(err) {
		t.Error("a plot was written for a set with no points inside the box")
	}
}

func TestSelectForOverlay(t *testing.T) {
	refs := []FileReference{
		{File: "a", Depth: 0},
		{File: "b", Depth: 2},
		{File: "c", Depth: 1},
		{File: "d", Depth: 2},
		{File: "e", Depth: 1},
	}

	selected := SelectForOverlay(refs, 1)

	var order string
	for _, ref := range selected {
		order += ref.File
	}
	if order != "cebd" {
		t.Errorf("got %s, expected cebd", order)
	}
}

func TestOverlayRender(t *testing.T) {
	dataDir := t.TempDir()
	outPath := filepath.Join(t.TempDir(), "out", "overlay.png")

	writeBin(t, dataDir, "r", 0, 0)
	writeBin(t, dataDir, "r0", 0, 0, 5, 0, 5, 5, 0, 5, 2, 2)
	writeBin(t, dataDir, "r00", 1, 1, 2, 2)
	writeBin(t, dataDir, "r01", 1, 1, 2, 2, 3, 3)

	refs := []FileReference{
		{RelativePath: "r", File: "r", Depth: 0},
		{RelativePath: "r0", File: "r0", Depth: 1},
		{RelativePath: "r00", File: "r00", Depth: 2},
		{RelativePath: "r01", File: "r01", Depth: 2},
		{RelativePath: "r02", File: "r02", Depth: 2},
	}

	r := NewOverlayRenderer(DefaultBoundingBox, DefaultDepthThreshold)
	summary, err := r.Render(refs, dataDir, outPath)
	if err != nil {
		t.Fatal(err)
	}

	// r is below the threshold, r02 is missing, r00 is too small for an
	// outline and r01 is collinear
	expected := RenderSummary{Rendered: 3, Skipped: 1, HullsDrawn: 1, HullsSkipped: 2}
	if summary != expected {
		t.Errorf("got %+v, expected %+v", summary, expected)
	}

	checkPNG(t, outPath)
}

func TestOverlayRenderNothingSelected(t *testing.T) {
	r := NewOverlayRenderer(DefaultBoundingBox, 5)
	_, err := r.Render([]FileReference{{Depth: 0}}, t.TempDir(), filepath.Join(t.TempDir(), "o.png"))
	if !errors.Is(err, ErrNothingToOverlay) {
		t.Fatalf("expected ErrNothingToOverlay, got %v", err)
	}
}

func TestOverlayStyleRejectsBadColor(t *testing.T) {
	r := NewOverlayRenderer(DefaultBoundingBox, 1)
	r.Style.Outline = "not a color"
	if _, err := r.Render([]FileReference{{Depth: 1}}, t.TempDir(), filepath.Join(t.TempDir(), "o.png")); err == nil {
		t.Fatal("expected an error for an unparseable color")
	}
}

func TestOverlayRenderSaveFailure(t *testing.T) {
	dataDir := t.TempDir()
	writeBin(t, dataDir, "r0", 0, 0, 5, 0, 5, 5)

	// The parent of the output is a regular file, so the PNG cannot be created
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}

	r := NewOverlayRenderer(DefaultBoundingBox, 1)
	_, err := r.Render([]FileReference{{RelativePath: "r0", File: "r0", Depth: 1}}, dataDir, filepath.Join(blocker, "overlay.png"))
	if err == nil {
		t.Fatal("expected an error when the overlay cannot be saved")
	}
	if errors.Is(err, ErrNothingToOverlay) {
		t.Errorf("a save failure must not look like an empty selection: %v", err)
	}
}
