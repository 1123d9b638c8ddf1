// Package ingest builds the evidence index from the floorplans PDF and the
// floorplan image set. It runs offline, before the chat server starts.
package ingest

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/albadia/villachat/internal/catalog"
	"github.com/albadia/villachat/internal/evidence"
)

// Page is one non-empty PDF page with its extracted text.
type Page struct {
	Number     int
	Text       string
	Source     string
	TotalPages int
}

// ExtractPages pulls plain text out of every page of the PDF. Pages that
// yield no text (pure image pages) are skipped; page numbers are 1-based and
// keep their original values even across skips.
func ExtractPages(path string) ([]Page, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pdf %s: %w", path, err)
	}
	defer f.Close()

	source := filepath.Base(path)
	total := reader.NumPage()

	var pages []Page
	for num := 1; num <= total; num++ {
		p := reader.Page(num)
		if p.V.IsNull() {
			continue
		}

		text, err := p.GetPlainText(nil)
		if err != nil {
			slog.Warn("failed to extract page text", "page", num, "error", err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			slog.Debug("skipping empty page", "page", num)
			continue
		}

		pages = append(pages, Page{
			Number:     num,
			Text:       text,
			Source:     source,
			TotalPages: total,
		})
	}

	slog.Info("extracted pdf pages", "path", path, "pages", len(pages), "total", total)
	return pages, nil
}

// IdentifyVillaPages maps each villa type id to the pages describing it,
// using the extended ingestion keyword sets. A page can describe several
// types (the 5BR page covers both Type A and Type B).
func IdentifyVillaPages(pages []Page) map[string][]int {
	villaPages := make(map[string][]int, len(catalog.Types))
	for _, t := range catalog.Types {
		villaPages[t.ID] = nil
	}

	for _, page := range pages {
		for _, id := range catalog.PagesFor(page.Text) {
			villaPages[id] = append(villaPages[id], page.Number)
		}
	}
	return villaPages
}

// ChunkText splits text into chunks of at most chunkSize characters with the
// given overlap. The split point backs up to the last sentence end or
// newline inside the window when one exists, so chunks tend to end on
// natural boundaries. Text at or under chunkSize is returned whole.
func ChunkText(text string, chunkSize, overlap int) []string {
	if len(text) <= chunkSize {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + chunkSize
		if end < len(text) {
			// Cuts must not land inside a multi-byte rune.
			end = alignRune(text, end)
			window := text[start:end]
			breakPoint := strings.LastIndexByte(window, '.')
			if nl := strings.LastIndexByte(window, '\n'); nl > breakPoint {
				breakPoint = nl
			}
			if breakPoint > 0 {
				end = start + breakPoint + 1
			}
		} else {
			end = len(text)
		}

		chunks = append(chunks, strings.TrimSpace(text[start:end]))
		if end >= len(text) {
			break
		}
		// A break point close to the chunk start could otherwise stall the
		// window behind the overlap.
		if next := alignRune(text, end-overlap); next > start {
			start = next
		} else {
			start = end
		}
	}
	return chunks
}

// alignRune backs i up to the start of the rune it points into.
func alignRune(s string, i int) int {
	for i > 0 && i < len(s) && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

// ChunkPages converts extracted pages into evidence chunks with stable ids
// and page provenance.
func ChunkPages(pages []Page, chunkSize, overlap int) []evidence.Chunk {
	var all []evidence.Chunk
	for _, page := range pages {
		parts := ChunkText(page.Text, chunkSize, overlap)
		for i, part := range parts {
			all = append(all, evidence.Chunk{
				ID:          evidence.ChunkID(page.Number, i),
				Text:        part,
				Source:      page.Source,
				Page:        page.Number,
				TotalPages:  page.TotalPages,
				ChunkIndex:  i,
				TotalChunks: len(parts),
			})
		}
	}

	slog.Info("chunked pdf pages", "pages", len(pages), "chunks", len(all))
	return all
}
