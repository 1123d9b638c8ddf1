package ingest

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/image/webp"

	"github.com/albadia/villachat/internal/evidence"
)

// imagePattern selects the current floorplan revision. Older revisions may
// sit in the same directory and must not be indexed.
const imagePattern = "*Rev11*.webp"

// pageDescriptions map the known floorplan pages to searchable text. Pages
// outside this range get a generic description.
var pageDescriptions = map[int]string{
	4: "3BR MIA Type A floorplan - Ground and first floor layout without pool",
	5: "3BR MIA Type B floorplan - Ground and first floor layout with swimming pool",
	6: "4BR SHADEA Type A floorplan - Ground and first floor layout without pool",
	7: "4BR SHADEA Type B floorplan - Ground and first floor layout with swimming pool",
	8: "5BR MODEA Type A and Type B floorplans - Ground and first floor layouts",
}

// ImageFiles lists the floorplan images in the directory, sorted by name. A
// missing directory is not an error; it returns an empty list.
func ImageFiles(dir string) ([]string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		slog.Warn("images directory not found", "dir", dir)
		return nil, nil
	}

	files, err := filepath.Glob(filepath.Join(dir, imagePattern))
	if err != nil {
		return nil, fmt.Errorf("globbing images in %s: %w", dir, err)
	}
	sort.Strings(files)

	slog.Info("found floorplan images", "dir", dir, "count", len(files))
	return files, nil
}

// PageFromFilename extracts the page number from a floorplan image filename,
// e.g. "AlBadia_Floorplans_A3_Rev11-7.webp" yields 7. Returns 0 when the
// name carries no parsable page suffix.
func PageFromFilename(name string) int {
	idx := strings.LastIndexByte(name, '-')
	if idx < 0 {
		return 0
	}
	suffix := name[idx+1:]
	if dot := strings.IndexByte(suffix, '.'); dot >= 0 {
		suffix = suffix[:dot]
	}
	page, err := strconv.Atoi(suffix)
	if err != nil || page <= 0 {
		return 0
	}
	return page
}

// DescribeImage builds the searchable description for a floorplan page. The
// pool suffix is added when the filename mentions a pool or the page is one
// of the known with-pool layouts.
func DescribeImage(page int, filename string) string {
	desc, ok := pageDescriptions[page]
	if !ok {
		desc = fmt.Sprintf("Al Badia Villas floorplan page %d", page)
	}

	if strings.Contains(strings.ToLower(filename), "pool") || page == 5 || page == 7 {
		desc += " with pool"
	}
	return desc
}

// DescribeImages builds image descriptors for every listed file. Dimension
// probing failures are logged and leave zero dimensions; the descriptor is
// still indexed since the description carries the retrieval value.
func DescribeImages(files []string) []evidence.ImageDescriptor {
	descriptors := make([]evidence.ImageDescriptor, 0, len(files))
	for _, path := range files {
		name := filepath.Base(path)
		page := PageFromFilename(name)
		if page == 0 {
			slog.Warn("could not extract page number from filename", "file", name)
		}

		width, height := imageDimensions(path)
		desc := DescribeImage(page, name)

		descriptors = append(descriptors, evidence.ImageDescriptor{
			ID:             uuid.New().String(),
			Filename:       name,
			Path:           path,
			Page:           page,
			Width:          width,
			Height:         height,
			Format:         "WEBP",
			Description:    desc,
			SearchableText: desc,
		})
	}
	return descriptors
}

func imageDimensions(path string) (int, int) {
	f, err := os.Open(path)
	if err != nil {
		slog.Warn("failed to open image", "path", path, "error", err)
		return 0, 0
	}
	defer f.Close()

	cfg, err := webp.DecodeConfig(f)
	if err != nil {
		slog.Warn("failed to decode image header", "path", path, "error", err)
		return 0, 0
	}
	return cfg.Width, cfg.Height
}
