package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/albadia/villachat/internal/evidence"
)

// Indexer is the evidence write surface the pipeline needs.
type Indexer interface {
	Upsert(ctx context.Context, records []evidence.Record) error
	Count(ctx context.Context, class evidence.Class) (int, error)
}

// Resetter is implemented by stores that can drop all indexed evidence.
type Resetter interface {
	Reset(ctx context.Context) error
}

// Options configure one pipeline run.
type Options struct {
	PDFPath   string
	ImagesDir string
	ChunkSize int
	Overlap   int
	// Reset drops existing evidence before ingesting.
	Reset bool
}

// Pipeline runs the offline ingestion: extract PDF pages, chunk, describe
// images, embed everything, and write to the evidence index.
type Pipeline struct {
	index Indexer
	store Resetter
}

func NewPipeline(index Indexer, store Resetter) *Pipeline {
	return &Pipeline{index: index, store: store}
}

// Run executes the full pipeline. The PDF is required; missing images only
// skip the image phase. Each upsert batch is all-or-nothing, so a failure
// leaves no partial batch behind.
func (p *Pipeline) Run(ctx context.Context, opts Options) error {
	if _, err := os.Stat(opts.PDFPath); err != nil {
		return fmt.Errorf("floorplans pdf not found at %s: %w", opts.PDFPath, err)
	}

	if opts.Reset {
		slog.Warn("resetting evidence store before ingestion")
		if err := p.store.Reset(ctx); err != nil {
			return fmt.Errorf("resetting evidence store: %w", err)
		}
	}

	pages, err := ExtractPages(opts.PDFPath)
	if err != nil {
		return err
	}

	villaPages := IdentifyVillaPages(pages)
	for id, nums := range villaPages {
		if len(nums) > 0 {
			slog.Info("identified villa pages", "villa_type", id, "pages", nums)
		}
	}

	chunks := ChunkPages(pages, opts.ChunkSize, opts.Overlap)
	records := make([]evidence.Record, len(chunks))
	for i, c := range chunks {
		records[i] = evidence.ChunkRecord(c)
	}
	if err := p.index.Upsert(ctx, records); err != nil {
		return fmt.Errorf("ingesting pdf chunks: %w", err)
	}
	slog.Info("pdf ingestion complete", "chunks", len(records))

	files, err := ImageFiles(opts.ImagesDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		slog.Warn("no floorplan images found, skipping image ingestion")
		return nil
	}

	descriptors := DescribeImages(files)
	imageRecords := make([]evidence.Record, len(descriptors))
	for i, d := range descriptors {
		imageRecords[i] = evidence.ImageRecord(d)
	}
	if err := p.index.Upsert(ctx, imageRecords); err != nil {
		return fmt.Errorf("ingesting image descriptors: %w", err)
	}
	slog.Info("image ingestion complete", "images", len(imageRecords))

	return nil
}
