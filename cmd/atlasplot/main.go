// atlasplot walks a ScatterBrain dataset description, mirrors the binary
// coordinate files it references, and plots them: one scatter per node and a
// single overlay with hull outlines colored by hierarchy depth.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
	"github.com/carbocation/sciutil/atlas"
	_ "github.com/carbocation/sciutil/compileinfoprint"
)

const (
	ModeNodes   = "nodes"
	ModeOverlay = "overlay"
	ModeBoth    = "both"
)

func main() {
	fmt.Fprintf(os.Stderr, "%q\n", os.Args)

	var configPath, prefix, mode, dotPath string
	var skipDownload bool
	var timeout time.Duration

	cfg := atlas.DefaultConfig()

	flag.StringVar(&configPath, "config", "", "(Optional) Path to a JSON config file. Flags override its values.")
	flag.StringVar(&cfg.TreePath, "tree", cfg.TreePath, "Path to the dataset description JSON. May be a gs:// path and may be compressed.")
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "URL under which the binary coordinate files are served.")
	flag.StringVar(&cfg.DownloadDir, "download-dir", cfg.DownloadDir, "Local folder that mirrors the coordinate files.")
	flag.StringVar(&cfg.PlotDir, "plot-dir", cfg.PlotDir, "Folder for the per-node scatter plots.")
	flag.StringVar(&cfg.OverlayPath, "overlay", cfg.OverlayPath, "Path of the overlay PNG.")
	flag.IntVar(&cfg.DepthThreshold, "depth-threshold", cfg.DepthThreshold, "Only nodes at this depth or deeper are overlaid. The root is depth 0.")
	flag.IntVar(&cfg.Concurrency, "concurrency", cfg.Concurrency, "Number of simultaneous downloads.")
	flag.DurationVar(&timeout, "timeout", cfg.Timeout(), "Give up on any single download after this long.")
	flag.StringVar(&prefix, "prefix", "", "(Optional) Prefix joined to every node's file name.")
	flag.StringVar(&mode, "mode", ModeBoth, fmt.Sprintf("What to plot: %s, %s or %s.", ModeNodes, ModeOverlay, ModeBoth))
	flag.BoolVar(&skipDownload, "skip-download", false, "Plot whatever is already in -download-dir without contacting the server.")
	flag.StringVar(&dotPath, "dot", "", "(Optional) Write the tree as a Graphviz DOT file to this path.")
	flag.Parse()

	if configPath != "" {
		fileCfg, err := atlas.ParseJSONConfigFromPath(configPath)
		if err != nil {
			log.Fatalln(err)
		}
		cfg = mergeFlags(fileCfg, cfg, timeout, dotPath)
	} else {
		cfg.SetTimeout(timeout)
		cfg.DOTPath = dotPath
	}
	cfg.ExpandPaths()

	if err := cfg.Check(); err != nil {
		log.Fatalln(err)
	}

	switch mode {
	case ModeNodes, ModeOverlay, ModeBoth:
	default:
		flag.Usage()
		log.Fatalf("Unrecognized -mode %q", mode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, prefix, mode, skipDownload); err != nil {
		log.Fatalln(err)
	}
}

// mergeFlags lets explicitly set flags win over the config file.
func mergeFlags(fileCfg, flagCfg atlas.JSONConfig, timeout time.Duration, dotPath string) atlas.JSONConfig {
	out := fileCfg
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "tree":
			out.TreePath = flagCfg.TreePath
		case "base-url":
			out.BaseURL = flagCfg.BaseURL
		case "download-dir":
			out.DownloadDir = flagCfg.DownloadDir
		case "plot-dir":
			out.PlotDir = flagCfg.PlotDir
		case "overlay":
			out.OverlayPath = flagCfg.OverlayPath
		case "depth-threshold":
			out.DepthThreshold = flagCfg.DepthThreshold
		case "concurrency":
			out.Concurrency = flagCfg.Concurrency
		case "timeout":
			out.SetTimeout(timeout)
		case "dot":
			out.DOTPath = dotPath
		}
	})
	return out
}

func run(ctx context.Context, cfg atlas.JSONConfig, prefix, mode string, skipDownload bool) error {
	// Initialize the Google Storage client only if we're pointing to Google
	// Storage paths.
	var client *storage.Client
	if strings.HasPrefix(cfg.TreePath, "gs://") {
		var err error
		client, err = storage.NewClient(ctx)
		if err != nil {
			return pfx.Err(err)
		}
		defer client.Close()
	}

	root, err := atlas.LoadTreeFile(cfg.TreePath, client)
	if err != nil {
		return err
	}

	refs, err := atlas.Extract(root, prefix)
	if err != nil {
		return pfx.Err(err)
	}
	log.Printf("Found %d coordinate files in %s", len(refs), cfg.TreePath)

	if cfg.DOTPath != "" {
		if err := writeDOT(cfg.DOTPath, root); err != nil {
			log.Println("Could not export the tree:", err)
		} else {
			log.Println("Tree exported to", cfg.DOTPath)
		}
	}

	if !skipDownload {
		fetcher := atlas.NewFetcher(cfg.BaseURL, cfg.DownloadDir, cfg.Timeout())
		fetcher.Concurrency = cfg.Concurrency

		report, err := fetcher.FetchAll(ctx, refs)
		log.Println("Download:", report)
		if err != nil {
			return pfx.Err(err)
		}
	}

	if mode == ModeNodes || mode == ModeBoth {
		summary := atlas.NewNodeRenderer(cfg.BoundingBox, cfg.PlotDir).RenderAll(refs, cfg.DownloadDir)
		log.Println("Per-node plots:", summary)
	}

	if mode == ModeOverlay || mode == ModeBoth {
		summary, err := atlas.NewOverlayRenderer(cfg.BoundingBox, cfg.DepthThreshold).Render(refs, cfg.DownloadDir, cfg.OverlayPath)
		log.Println("Overlay:", summary)
		if overlayFailureIsFatal(err) {
			return pfx.Err(err)
		} else if err != nil {
			log.Println("No overlay written:", err)
		}
	}

	return nil
}

// overlayFailureIsFatal is false only for success and for an empty selection.
func overlayFailureIsFatal(err error) bool {
	return err != nil && !errors.Is(err, atlas.ErrNothingToOverlay)
}

func writeDOT(path string, root *atlas.TreeNode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := atlas.WriteDOT(f, root); err != nil {
		return err
	}

	return f.Close()
}
