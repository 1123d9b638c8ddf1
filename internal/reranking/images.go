// Package reranking re-scores retrieved floorplan images so the visuals
// shown to the user line up with the textual evidence the reply was actually
// grounded on.
package reranking

import (
	"sort"
	"strings"

	"github.com/albadia/villachat/internal/retrieval"
)

// Scoring rules, applied independently per image:
//
//	+10 image page is among the pages referenced by the retrieved text hits
//	 +5 per bedroom-count token (3/4/5) shared between query and description
//	 +3 both query and description mention a pool
const (
	pageMatchBonus = 10
	bedroomBonus   = 5
	poolBonus      = 3
)

// bedroomTokens maps each bedroom count to the spellings that count as a
// mention in the query. Descriptions always use the short "NBR" form.
var bedroomTokens = []struct {
	queryForms []string
	descForm   string
}{
	{[]string{"3 bedroom", "3br"}, "3br"},
	{[]string{"4 bedroom", "4br"}, "4br"},
	{[]string{"5 bedroom", "5br"}, "5br"},
}

// RankImages orders image hits by relevance to the query and the retrieved
// text evidence. The sort is stable: images with equal scores keep their
// original relative order, so ranking is fully deterministic. An image
// without a page number never earns the page bonus but is still scorable on
// the other rules. The caller truncates for display.
func RankImages(images []retrieval.ImageHit, query string, textHits []retrieval.TextHit) []retrieval.ImageHit {
	if len(images) == 0 {
		return nil
	}

	referencedPages := make(map[int]bool, len(textHits))
	for _, h := range textHits {
		if h.Page > 0 {
			referencedPages[h.Page] = true
		}
	}

	queryLower := strings.ToLower(query)

	scored := make([]retrieval.ImageHit, len(images))
	copy(scored, images)
	scores := make(map[string]int, len(images))
	for _, img := range scored {
		scores[img.ID] = scoreImage(img, queryLower, referencedPages)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scores[scored[i].ID] > scores[scored[j].ID]
	})

	return scored
}

func scoreImage(img retrieval.ImageHit, queryLower string, referencedPages map[int]bool) int {
	score := 0

	if img.Page > 0 && referencedPages[img.Page] {
		score += pageMatchBonus
	}

	desc := strings.ToLower(img.Description)

	for _, bt := range bedroomTokens {
		if !strings.Contains(desc, bt.descForm) {
			continue
		}
		for _, form := range bt.queryForms {
			if strings.Contains(queryLower, form) {
				score += bedroomBonus
				break
			}
		}
	}

	if strings.Contains(queryLower, "pool") && strings.Contains(desc, "pool") {
		score += poolBonus
	}

	return score
}
