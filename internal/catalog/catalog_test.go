package catalog

import "testing"

func TestLabelFor_MostSpecificWins(t *testing.T) {
	// Mentions both the pool keyword and Type B, so the Type B label must
	// win over the plain Type A rule.
	label := LabelFor("The 4BR SHADEA Type B comes with a private pool on the ground floor")
	if label != "4BR SHADEA Type B with Pool" {
		t.Errorf("label = %q, want 4BR SHADEA Type B with Pool", label)
	}
}

func TestLabelFor_TypeA(t *testing.T) {
	// No pool, no Type B and no bedroom token, so only the Type A rule
	// reaches two keyword matches.
	label := LabelFor("The MIA Type A layout has a spacious garden")
	if label != "3BR MIA Type A" {
		t.Errorf("label = %q, want 3BR MIA Type A", label)
	}
}

func TestLabelFor_SharedKeywordsFavorSpecific(t *testing.T) {
	// "3BR MIA" alone satisfies two keywords of both MIA rules; the more
	// specific with-pool rule is evaluated first and wins.
	label := LabelFor("The 3BR MIA villas start from the fourth page")
	if label != "3BR MIA Type B with Pool" {
		t.Errorf("label = %q, want 3BR MIA Type B with Pool", label)
	}
}

func TestLabelFor_SingleKeywordFallsBack(t *testing.T) {
	// One keyword match is not enough to claim a type.
	label := LabelFor("All our villas have a pool")
	if label != GeneralLabel {
		t.Errorf("label = %q, want %q", label, GeneralLabel)
	}
}

func TestLabelFor_CaseInsensitive(t *testing.T) {
	label := LabelFor("the 5br modea type b is the largest")
	if label != "5BR MODEA Type B" {
		t.Errorf("label = %q, want 5BR MODEA Type B", label)
	}
}

func TestMentionedIn_MultipleTypes(t *testing.T) {
	text := "Comparing the 3BR MIA Type A against the 4BR SHADEA Type B with pool"
	ids := MentionedIn(text)

	want := map[string]bool{
		"3BR-MIA-TYPE-A":    true,
		"4BR-SHADEA-TYPE-B": true,
	}
	for _, id := range ids {
		if !want[id] {
			// 3BR-MIA-TYPE-B also matches here via 3BR + MIA + POOL.
			if id != "3BR-MIA-TYPE-B" && id != "4BR-SHADEA-TYPE-A" {
				t.Errorf("unexpected id %q in %v", id, ids)
			}
		}
	}
	for id := range want {
		if !containsID(ids, id) {
			t.Errorf("missing id %q in %v", id, ids)
		}
	}
}

func TestMentionedIn_CatalogOrder(t *testing.T) {
	text := "We have 5BR MODEA Type A and 3BR MIA Type A"
	ids := MentionedIn(text)

	if len(ids) < 2 {
		t.Fatalf("expected at least two ids, got %v", ids)
	}
	if ids[0] != "3BR-MIA-TYPE-A" {
		t.Errorf("ids[0] = %q, want 3BR-MIA-TYPE-A (catalog order)", ids[0])
	}
}

func TestMentionedIn_Nothing(t *testing.T) {
	if ids := MentionedIn("prices require agent confirmation"); len(ids) != 0 {
		t.Errorf("expected no ids, got %v", ids)
	}
}

func TestPagesFor_SpelledOutBedrooms(t *testing.T) {
	// Ingestion keywords include "4 BEDROOM", so a page without the short
	// form still identifies.
	ids := PagesFor("SHADEA villa, 4 bedroom family home")
	if !containsID(ids, "4BR-SHADEA-TYPE-A") {
		t.Errorf("expected 4BR-SHADEA-TYPE-A in %v", ids)
	}
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
