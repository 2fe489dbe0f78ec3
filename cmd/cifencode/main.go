package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/pspoerri/heightcif"
	"github.com/pspoerri/heightcif/internal/cog"
)

func main() {
	var (
		blockSize   int
		level       int
		verbose     bool
		showVersion bool
	)

	flag.IntVar(&blockSize, "block-size", heightcif.DefaultBlockSize, "Tile size in pixels, power of two >= 4")
	flag.IntVar(&level, "level", 0, "GeoTIFF IFD level to read (0 = full resolution)")
	flag.BoolVar(&verbose, "verbose", false, "Verbose progress output")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: cifencode [flags] <input.tif> <output.cif>\n\n")
		fmt.Fprintf(os.Stderr, "Convert a single-band 16-bit heightmap GeoTIFF to a CIF file.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if showVersion {
		fmt.Println("cifencode (heightcif)")
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) != 2 {
		flag.Usage()
		os.Exit(1)
	}
	inputPath, outputPath := args[0], args[1]

	if !strings.HasSuffix(strings.ToLower(outputPath), ".cif") {
		log.Fatal("output file must have a .cif extension")
	}

	start := time.Now()
	src, err := cog.Open(inputPath)
	if err != nil {
		log.Fatalf("opening %s: %v", inputPath, err)
	}
	defer src.Close()

	pixels, width, height, err := src.ReadUint16Grid(level)
	if err != nil {
		log.Fatalf("reading heightmap grid: %v", err)
	}
	if verbose {
		log.Printf("read %dx%d grid from %s (level %d) in %v", width, height, inputPath, level, time.Since(start).Round(time.Millisecond))
	}

	data, err := heightcif.Encode(pixels, uint32(width), uint32(height), uint32(blockSize))
	if err != nil {
		log.Fatalf("encoding: %v", err)
	}

	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		log.Fatalf("writing %s: %v", outputPath, err)
	}

	elapsed := time.Since(start).Round(time.Millisecond)
	fmt.Printf("Done: %dx%d, blockSize=%d, %s, %v -> %s\n", width, height, blockSize, humanSize(int64(len(data))), elapsed, outputPath)
}

func humanSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
	)
	switch {
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
