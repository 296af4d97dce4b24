package resources

import "testing"

func TestLibrarySearchByEmotion(t *testing.T) {
	l, err := NewLibrary()
	if err != nil {
		t.Fatalf("NewLibrary: %v", err)
	}

	hits, err := l.Search("anxiety", "constant worry about work", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) == 0 {
		t.Fatalf("expected hits for anxiety")
	}
	if len(hits) > 3 {
		t.Fatalf("expected at most 3 hits, got %d", len(hits))
	}
	found := false
	for _, e := range hits {
		for _, em := range e.Emotions {
			if em == "anxiety" {
				found = true
			}
		}
	}
	if !found {
		t.Fatalf("no anxiety-tagged entry in hits: %v", hits)
	}
}

func TestLibrarySearchEmptyTerms(t *testing.T) {
	l, err := NewLibrary()
	if err != nil {
		t.Fatalf("NewLibrary: %v", err)
	}
	hits, err := l.Search("", "  ", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if hits != nil {
		t.Fatalf("expected no hits for empty terms, got %v", hits)
	}
}

func TestLibraryCrisis(t *testing.T) {
	l, err := NewLibrary()
	if err != nil {
		t.Fatalf("NewLibrary: %v", err)
	}
	entries := l.Crisis()
	if len(entries) == 0 {
		t.Fatalf("expected crisis entries")
	}
	for _, e := range entries {
		if !e.Crisis {
			t.Fatalf("non-crisis entry returned: %+v", e)
		}
		if e.Kind != "hotline" {
			t.Fatalf("crisis entries must be hotlines, got %q", e.Kind)
		}
	}
}
