package graphstore

import "testing"

func TestDedupStrings(t *testing.T) {
	got := dedupStrings([]string{"a", "", "b", "a", "c"})
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %v", got)
	}
}

func TestToStringSlice(t *testing.T) {
	got := toStringSlice([]any{"a", 1, "b"})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected slice: %v", got)
	}
}

func TestToPropsMapRejectsNonMap(t *testing.T) {
	if toPropsMap("not a map") != nil {
		t.Fatal("expected nil for non-map input")
	}
}
