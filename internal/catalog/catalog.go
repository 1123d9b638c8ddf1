// Package catalog holds the fixed Al Badia Villas product catalog: the six
// villa types and the keyword rules used to recognise them in free text.
// The same rules back citation labeling and mentioned-property extraction.
package catalog

import "strings"

// GeneralLabel is the citation label used when no villa type matches.
const GeneralLabel = "General information"

// VillaType describes one floorplan product.
type VillaType struct {
	// ID is the standardized property identifier, e.g. "4BR-SHADEA-TYPE-B".
	ID string
	// Label is the human-readable citation label.
	Label string
	// Keywords recognise the type in text. A body of text matches when at
	// least two keywords are present (case-insensitive substring).
	Keywords []string
	// PageKeywords extend Keywords for ingestion-time page identification,
	// where spelled-out bedroom counts also appear.
	PageKeywords []string
}

// Types lists the catalog in stable order. Mentioned-property extraction
// iterates this order, so results are deterministic.
var Types = []VillaType{
	{
		ID:           "3BR-MIA-TYPE-A",
		Label:        "3BR MIA Type A",
		Keywords:     []string{"3BR", "MIA", "TYPE A"},
		PageKeywords: []string{"3BR", "MIA", "TYPE A", "3 BEDROOM"},
	},
	{
		ID:           "3BR-MIA-TYPE-B",
		Label:        "3BR MIA Type B with Pool",
		Keywords:     []string{"3BR", "MIA", "TYPE B", "POOL"},
		PageKeywords: []string{"3BR", "MIA", "TYPE B", "3 BEDROOM", "POOL"},
	},
	{
		ID:           "4BR-SHADEA-TYPE-A",
		Label:        "4BR SHADEA Type A",
		Keywords:     []string{"4BR", "SHADEA", "TYPE A"},
		PageKeywords: []string{"4BR", "SHADEA", "TYPE A", "4 BEDROOM"},
	},
	{
		ID:           "4BR-SHADEA-TYPE-B",
		Label:        "4BR SHADEA Type B with Pool",
		Keywords:     []string{"4BR", "SHADEA", "TYPE B", "POOL"},
		PageKeywords: []string{"4BR", "SHADEA", "TYPE B", "4 BEDROOM", "POOL"},
	},
	{
		ID:           "5BR-MODEA-TYPE-A",
		Label:        "5BR MODEA Type A",
		Keywords:     []string{"5BR", "MODEA", "TYPE A"},
		PageKeywords: []string{"5BR", "MODEA", "TYPE A", "5 BEDROOM"},
	},
	{
		ID:           "5BR-MODEA-TYPE-B",
		Label:        "5BR MODEA Type B",
		Keywords:     []string{"5BR", "MODEA", "TYPE B"},
		PageKeywords: []string{"5BR", "MODEA", "TYPE B", "5 BEDROOM", "POOL"},
	},
}

// labelOrder evaluates the more specific Type B rules (which carry the pool
// keyword) before Type A, so citation labeling picks the strongest match.
var labelOrder = []int{1, 0, 3, 2, 5, 4}

// matchCount returns how many of the keywords appear in the uppercased text.
func matchCount(upper string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(upper, kw) {
			n++
		}
	}
	return n
}

// LabelFor derives a citation label from chunk content by keyword majority:
// the villa type with the most keyword matches wins, needing at least two,
// with exact ties going to the more specific rule (Type B before Type A).
// Falls back to GeneralLabel. A page can discuss multiple types; the label
// reflects the dominant one.
func LabelFor(content string) string {
	upper := strings.ToUpper(content)

	best := -1
	bestCount := 1 // a single keyword match never claims a type
	for _, i := range labelOrder {
		if n := matchCount(upper, Types[i].Keywords); n > bestCount {
			best, bestCount = i, n
		}
	}
	if best < 0 {
		return GeneralLabel
	}
	return Types[best].Label
}

// MentionedIn returns the IDs of all villa types referenced by the text,
// in catalog order. A reply may legitimately reference several types, so all
// labels meeting the two-keyword bar are returned.
func MentionedIn(text string) []string {
	upper := strings.ToUpper(text)
	var ids []string
	for _, t := range Types {
		if matchCount(upper, t.Keywords) >= 2 {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// PagesFor identifies which villa types a page of extracted PDF text
// describes, using the extended ingestion keyword sets. Used at ingestion
// time to map images onto villa types.
func PagesFor(pageText string) []string {
	upper := strings.ToUpper(pageText)
	var ids []string
	for _, t := range Types {
		if matchCount(upper, t.PageKeywords) >= 2 {
			ids = append(ids, t.ID)
		}
	}
	return ids
}
