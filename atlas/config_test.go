package atlas

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseJSONConfigFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	doc := `{
		"base_url": "http://example.org/bins/",
		"download_dir": "bins",
		"bounding_box": {"lx": -1, "ux": 1},
		"depth_threshold": 2,
		"timeout_seconds": 5
	}`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := ParseJSONConfigFromPath(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.BaseURL != "http://example.org/bins/" || cfg.DownloadDir != "bins" || cfg.DepthThreshold != 2 {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Timeout() != 5*time.Second {
		t.Errorf("timeout %s", cfg.Timeout())
	}

	// Keys absent from the file keep their defaults, including within the box
	if cfg.BoundingBox.LX != -1 || cfg.BoundingBox.UY != DefaultBoundingBox.UY {
		t.Errorf("bounding box %+v", cfg.BoundingBox)
	}
	if cfg.TreePath != DefaultConfig().TreePath {
		t.Errorf("tree path %q", cfg.TreePath)
	}
}

func TestParseJSONConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	for name, doc := range map[string]string{
		"syntax.json":  `{"base_url": }`,
		"timeout.json": `{"timeout_seconds": 0}`,
		"box.json":     `{"bounding_box": {"lx": 5, "ux": 5}}`,
	} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := ParseJSONConfigFromPath(path); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}

	if _, err := ParseJSONConfigFromPath(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestSubSecondTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SetTimeout(500 * time.Millisecond)

	if err := cfg.Check(); err != nil {
		t.Fatal(err)
	}
	if cfg.Timeout() != 500*time.Millisecond {
		t.Errorf("timeout %s, expected 500ms", cfg.Timeout())
	}

	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"timeout_seconds": 0.25}`), 0644); err != nil {
		t.Fatal(err)
	}
	fromFile, err := ParseJSONConfigFromPath(path)
	if err != nil {
		t.Fatal(err)
	}
	if fromFile.Timeout() != 250*time.Millisecond {
		t.Errorf("timeout %s, expected 250ms", fromFile.Timeout())
	}
}
