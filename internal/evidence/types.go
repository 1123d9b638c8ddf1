package evidence

import (
	"errors"
	"fmt"
	"time"
)

// Class tags the two document classes held by the evidence store.
type Class string

const (
	// ClassText marks floorplan text chunks extracted from the PDF.
	ClassText Class = "text"
	// ClassImage marks floorplan image descriptors.
	ClassImage Class = "image"
)

// Source type tags carried in record metadata.
const (
	SourceTypePDF   = "floorplans_pdf"
	SourceTypeImage = "floorplan_image"
)

// Chunk is a unit of retrievable floorplan text with page provenance.
// Chunks are created once at ingestion time and are immutable thereafter.
type Chunk struct {
	ID          string // deterministic: page_<page>_chunk_<index>
	Text        string
	Source      string // document name, e.g. "ABVFinalFloorplans.pdf"
	Page        int
	TotalPages  int
	ChunkIndex  int
	TotalChunks int // chunks produced from the same page
}

// ChunkID returns the stable chunk identifier for a page/index pair.
func ChunkID(page, index int) string {
	return fmt.Sprintf("page_%d_chunk_%d", page, index)
}

// ImageDescriptor is a unit of retrievable visual evidence.
// Page is 0 when the filename carries no parsable page suffix.
type ImageDescriptor struct {
	ID             string
	Filename       string
	Path           string
	Page           int
	Width          int
	Height         int
	Format         string
	Description    string
	SearchableText string
}

// Record is a row in the vector store: the flattened union of a text chunk
// and an image descriptor. Content is the embedding input (chunk text for
// ClassText, searchable description text for ClassImage).
type Record struct {
	ID          string
	Class       Class
	Content     string
	SourceType  string
	Source      string
	Page        int
	TotalPages  int
	ChunkIndex  int
	TotalChunks int
	Path        string
	Filename    string
	Description string
	Width       int
	Height      int
	Format      string
	Embedding   []float32
	CreatedAt   time.Time
}

// ChunkRecord converts a text chunk into a store record.
func ChunkRecord(c Chunk) Record {
	return Record{
		ID:          c.ID,
		Class:       ClassText,
		Content:     c.Text,
		SourceType:  SourceTypePDF,
		Source:      c.Source,
		Page:        c.Page,
		TotalPages:  c.TotalPages,
		ChunkIndex:  c.ChunkIndex,
		TotalChunks: c.TotalChunks,
	}
}

// ImageRecord converts an image descriptor into a store record.
func ImageRecord(d ImageDescriptor) Record {
	return Record{
		ID:          d.ID,
		Class:       ClassImage,
		Content:     d.SearchableText,
		SourceType:  SourceTypeImage,
		Source:      d.Filename,
		Page:        d.Page,
		Path:        d.Path,
		Filename:    d.Filename,
		Description: d.Description,
		Width:       d.Width,
		Height:      d.Height,
		Format:      d.Format,
	}
}

// ScoredRecord is a Record with its cosine similarity to the query vector.
type ScoredRecord struct {
	Record
	Similarity float32
}

// Hit is one result of a similarity query. Distance follows the
// "distance, not similarity" convention: lower is closer, and
// Distance = 1 - cosine similarity.
type Hit struct {
	Record
	Distance float64
}

// ErrUnavailable is returned when the backing index cannot be reached at all.
var ErrUnavailable = errors.New("evidence store unavailable")

// WriteError reports an ingestion-time write failure. A failed batch is
// rejected as a whole; no records from it are visible afterwards.
type WriteError struct {
	ID  string // offending record, empty when the whole batch failed
	Err error
}

func (e *WriteError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("evidence write failed for %s: %v", e.ID, e.Err)
	}
	return fmt.Sprintf("evidence write failed: %v", e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
