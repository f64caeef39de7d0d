package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/kestrelcv/itemscan"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// report is the JSON document printed for one detection run.
type report struct {
	Image      string               `json:"image"`
	Detections []itemscan.Detection `json:"detections"`
	GridParams *itemscan.GridParams `json:"grid_params,omitempty"`
	ScreenType string               `json:"screen_type"`
	Warnings   []string             `json:"warnings,omitempty"`
	DurationMs int64                `json:"duration_ms"`
	CacheHit   bool                 `json:"cache_hit"`
	Metrics    itemscan.Metrics     `json:"metrics"`
}

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("itemscan %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		}
	}

	// .env is optional; real environment wins either way.
	_ = godotenv.Load()

	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime)
	debug := os.Getenv("ITEMSCAN_LOG_LEVEL") == "debug"

	var (
		catalogDir  = flag.String("catalog", os.Getenv("ITEMSCAN_CATALOG"), "catalog directory (<category>/<id>.png icons)")
		imagePath   = flag.String("image", "", "screenshot to analyze (PNG/JPEG/GIF)")
		overlayPath = flag.String("overlay", "", "write a debug overlay PNG to this path")
		heatmapPath = flag.String("heatmap", "", "write a confidence heatmap PNG to this path")
	)
	flag.Parse()

	if *catalogDir == "" || *imagePath == "" {
		fmt.Fprintln(os.Stderr, "itemscan: -catalog and -image are required (see --help)")
		os.Exit(2)
	}

	entities, err := itemscan.LoadCatalogDir(*catalogDir)
	if err != nil {
		log.Fatalf("loading catalog: %v", err)
	}
	if debug {
		log.Printf("loaded %d catalog entities from %s", len(entities), *catalogDir)
	}

	detector := itemscan.New(itemscan.NewCatalog(entities))

	var progress itemscan.ProgressFunc
	if debug {
		progress = func(pct int, status string) {
			log.Printf("progress %3d%% %s", pct, status)
		}
	}

	result, err := detector.Detect(context.Background(), itemscan.FromFile(*imagePath), progress)
	if err != nil {
		log.Fatalf("detection failed: %v", err)
	}

	if *overlayPath != "" || *heatmapPath != "" {
		writeOverlays(*imagePath, *overlayPath, *heatmapPath, result)
	}

	out := report{
		Image:      *imagePath,
		Detections: result.Detections,
		GridParams: result.GridParams,
		ScreenType: result.ScreenType,
		Warnings:   result.Warnings,
		DurationMs: result.Duration.Milliseconds(),
		CacheHit:   result.CacheHit,
		Metrics:    detector.Metrics(),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatalf("encoding report: %v", err)
	}
}

func writeOverlays(imagePath, overlayPath, heatmapPath string, result *itemscan.Result) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		log.Fatalf("re-reading image for overlay: %v", err)
	}
	img, err := decodeImage(data)
	if err != nil {
		log.Fatalf("decoding image for overlay: %v", err)
	}

	if overlayPath != "" {
		ov, err := itemscan.CreateDebugOverlay(img, result.Detections)
		if err != nil {
			log.Fatalf("rendering overlay: %v", err)
		}
		if err := writePNG(overlayPath, ov); err != nil {
			log.Fatalf("writing overlay: %v", err)
		}
	}
	if heatmapPath != "" {
		hm, err := itemscan.RenderConfidenceHeatmap(img, result.Detections)
		if err != nil {
			log.Fatalf("rendering heatmap: %v", err)
		}
		if err := writePNG(heatmapPath, hm); err != nil {
			log.Fatalf("writing heatmap: %v", err)
		}
	}
}

func printHelp() {
	fmt.Println("itemscan - inventory item detection over game screenshots")
	fmt.Println()
	fmt.Println("Usage: itemscan -catalog DIR -image FILE [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -catalog DIR     Catalog directory (<category>/<id>.png icons)")
	fmt.Println("  -image FILE      Screenshot to analyze")
	fmt.Println("  -overlay FILE    Write a debug overlay PNG")
	fmt.Println("  -heatmap FILE    Write a confidence heatmap PNG")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  ITEMSCAN_CATALOG            Default catalog directory")
	fmt.Println("  ITEMSCAN_LOG_LEVEL=debug    Enable debug logging and progress output")
	fmt.Println()
	fmt.Println("Variables may also be supplied via a .env file in the working directory.")
}
