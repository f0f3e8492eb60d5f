package atlas

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/carbocation/pfx"
	"github.com/carbocation/sciutil"
)

// DefaultBaseURL serves the ScatterBrain coordinate files.
const DefaultBaseURL = "https://prod-sfs.brain.allentech.org/api/v1/Metadata/sb/AP8JNN5LYABGVMGKY1B/Q1NCWWPG6FZ0DNIXJBQ/v0/G4I4GFJXJB9ATZ3PTX1Coordinates/G4I4GFJXJB9ATZ3PTX1/"

type JSONConfig struct {
	ConfigPath     string      `json:"-"`
	TreePath       string      `json:"tree_path"`
	BaseURL        string      `json:"base_url"`
	DownloadDir    string      `json:"download_dir"`
	PlotDir        string      `json:"plot_dir"`
	OverlayPath    string      `json:"overlay_path"`
	DOTPath        string      `json:"dot_path"`
	BoundingBox    BoundingBox `json:"bounding_box"`
	DepthThreshold int         `json:"depth_threshold"`
	TimeoutSeconds float64     `json:"timeout_seconds"`
	Concurrency    int         `json:"concurrency"`
}

// DefaultConfig reproduces the layout the ScatterBrain scripts used.
func DefaultConfig() JSONConfig {
	return JSONConfig{
		TreePath:       "ScatterBrain.json",
		BaseURL:        DefaultBaseURL,
		DownloadDir:    "downloaded_bins",
		PlotDir:        "plot_images",
		OverlayPath:    "plot_images/overlaid_plot.png",
		BoundingBox:    DefaultBoundingBox,
		DepthThreshold: DefaultDepthThreshold,
		TimeoutSeconds: DefaultFetchTimeout.Seconds(),
		Concurrency:    1,
	}
}

// ParseJSONConfigFromPath overlays the values in the file at path onto
// DefaultConfig. Keys missing from the file keep their defaults.
func ParseJSONConfigFromPath(path string) (JSONConfig, error) {
	out := DefaultConfig()
	out.ConfigPath = sciutil.ExpandHome(path)

	f, err := os.Open(out.ConfigPath)
	if err != nil {
		return out, pfx.Err(err)
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(&out); err != nil {
		if e, ok := err.(*json.SyntaxError); ok {
			log.Printf("syntax error at byte offset %d", e.Offset)
		}
		return out, pfx.Err(err)
	}

	out.ExpandPaths()

	return out, pfx.Err(out.Check())
}

// ExpandPaths interprets ~ in every path setting.
func (c *JSONConfig) ExpandPaths() {
	c.TreePath = sciutil.ExpandHome(c.TreePath)
	c.DownloadDir = sciutil.ExpandHome(c.DownloadDir)
	c.PlotDir = sciutil.ExpandHome(c.PlotDir)
	c.OverlayPath = sciutil.ExpandHome(c.OverlayPath)
	c.DOTPath = sciutil.ExpandHome(c.DOTPath)
}

// Check reports settings that would make the pipeline fail later.
func (c JSONConfig) Check() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url must be set")
	}
	if c.DownloadDir == "" {
		return fmt.Errorf("download_dir must be set")
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be positive, got %g", c.TimeoutSeconds)
	}
	if c.DepthThreshold < 0 {
		return fmt.Errorf("depth_threshold must not be negative, got %d", c.DepthThreshold)
	}
	return c.BoundingBox.Check()
}

// Timeout is the per-file download limit. Fractional seconds are kept.
func (c JSONConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds * float64(time.Second))
}

func (c *JSONConfig) SetTimeout(d time.Duration) {
	c.TimeoutSeconds = d.Seconds()
}
