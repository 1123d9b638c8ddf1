package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/albadia/villachat/internal/catalog"
	"github.com/albadia/villachat/internal/evidence"
)

// NoContextSentinel is returned by FormatContext when retrieval produced no
// usable text hits. The generation prompt relies on this exact wording.
const NoContextSentinel = "No relevant information found in floorplans document."

const (
	defaultTopKText   = 5
	defaultTopKImages = 3
)

// TextHit is a retrieved floorplan text passage.
type TextHit struct {
	ID       string
	Content  string
	Source   string
	Page     int
	Distance float64
}

// ImageHit is a retrieved floorplan image descriptor.
type ImageHit struct {
	ID          string
	Path        string
	Filename    string
	Description string
	Page        int // 0 when unknown
	Distance    float64
}

// Citation points a reply back to a floorplan page.
type Citation struct {
	Source    string `json:"source"`
	Page      int    `json:"page"`
	VillaType string `json:"villa_type"`
}

// Retriever queries the evidence index for both document classes and shapes
// the hits for prompt building and citation extraction.
type Retriever struct {
	index      *evidence.Index
	topKText   int
	topKImages int
	threshold  float64 // similarity threshold in [0,1]
}

// New creates a Retriever. Non-positive k values fall back to the defaults
// (5 text passages, 3 images).
func New(index *evidence.Index, topKText, topKImages int, similarityThreshold float64) *Retriever {
	if topKText <= 0 {
		topKText = defaultTopKText
	}
	if topKImages <= 0 {
		topKImages = defaultTopKImages
	}
	return &Retriever{
		index:      index,
		topKText:   topKText,
		topKImages: topKImages,
		threshold:  similarityThreshold,
	}
}

// RetrieveContext runs the two class-filtered queries and converts the raw
// hits. Hits are kept only when distance <= 1 - threshold (the store hands
// back raw ranked hits; the cutoff lives here). Image hits without a
// resolvable path are dropped.
func (r *Retriever) RetrieveContext(ctx context.Context, query string) ([]TextHit, []ImageHit, error) {
	maxDistance := 1 - r.threshold

	rawText, err := r.index.Query(ctx, query, r.topKText, evidence.ClassText)
	if err != nil {
		return nil, nil, fmt.Errorf("querying text evidence: %w", err)
	}

	var textHits []TextHit
	for _, h := range rawText {
		if h.Distance > maxDistance {
			continue
		}
		textHits = append(textHits, TextHit{
			ID:       h.ID,
			Content:  h.Content,
			Source:   h.Source,
			Page:     h.Page,
			Distance: h.Distance,
		})
	}

	rawImages, err := r.index.Query(ctx, query, r.topKImages, evidence.ClassImage)
	if err != nil {
		return nil, nil, fmt.Errorf("querying image evidence: %w", err)
	}

	var imageHits []ImageHit
	for _, h := range rawImages {
		if h.Distance > maxDistance || h.Path == "" {
			continue
		}
		imageHits = append(imageHits, ImageHit{
			ID:          h.ID,
			Path:        h.Path,
			Filename:    h.Filename,
			Description: h.Description,
			Page:        h.Page,
			Distance:    h.Distance,
		})
	}

	slog.Info("retrieved evidence", "text_hits", len(textHits), "image_hits", len(imageHits))
	return textHits, imageHits, nil
}

// FormatContext concatenates text hits in ranked order into the single
// context block handed to generation. This block is the only grounding
// material the model may use.
func FormatContext(hits []TextHit) string {
	if len(hits) == 0 {
		return NoContextSentinel
	}

	parts := make([]string, len(hits))
	for i, h := range hits {
		page := "unknown"
		if h.Page > 0 {
			page = fmt.Sprintf("%d", h.Page)
		}
		parts[i] = fmt.Sprintf("[Source: Floorplans PDF, Page %s]\n%s\n", page, h.Content)
	}
	return strings.Join(parts, "\n---\n")
}

// ExtractCitations returns one citation per distinct page number, first
// occurrence wins. The villa-type label comes from the chunk content, not
// hit metadata, since a page can discuss multiple types.
func ExtractCitations(hits []TextHit) []Citation {
	var citations []Citation
	seen := make(map[int]bool)

	for _, h := range hits {
		if h.Page <= 0 || seen[h.Page] {
			continue
		}
		seen[h.Page] = true
		citations = append(citations, Citation{
			Source:    evidence.SourceTypePDF,
			Page:      h.Page,
			VillaType: catalog.LabelFor(h.Content),
		})
	}
	return citations
}
