package slugs

import (
	"context"
	"errors"
	"testing"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Walking Hida-Furukawa", "walking-hida-furukawa"},
		{"  Your Name: Pilgrimage!  ", "your-name-pilgrimage"},
		{"Café à Paris", "cafe-a-paris"},
		{"UPPER lower 123", "upper-lower-123"},
		{"聖地巡礼", ""},
		{"---", ""},
		{"", ""},
	}

	for _, c := range cases {
		if got := Slugify(c.in); got != c.want {
			t.Errorf("Slugify(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestWithAnimePrefix(t *testing.T) {
	if got := WithAnimePrefix("kiminona", "hida-furukawa"); got != "kiminona-hida-furukawa" {
		t.Errorf("unexpected prefixed slug %q", got)
	}
	// Already prefixed stays unchanged
	if got := WithAnimePrefix("kiminona", "kiminona-hida-furukawa"); got != "kiminona-hida-furukawa" {
		t.Errorf("double prefix applied: %q", got)
	}
	if got := WithAnimePrefix("kiminona", ""); got != "kiminona" {
		t.Errorf("empty base should yield bare anime id, got %q", got)
	}
}

func TestFallback(t *testing.T) {
	slug := Fallback()
	if !IsFallback(slug) {
		t.Errorf("generated fallback %q not recognized as fallback", slug)
	}
	if IsFallback("kiminona-hida-furukawa") {
		t.Error("readable slug misdetected as fallback")
	}
}

func TestHasAnimePrefix(t *testing.T) {
	animeIDs := []string{"kiminona", "garupan"}

	if !HasAnimePrefix("kiminona-hida", animeIDs) {
		t.Error("expected prefix match for kiminona-hida")
	}
	if !HasAnimePrefix("garupan-oarai-guide", animeIDs) {
		t.Error("expected prefix match for garupan-oarai-guide")
	}
	if HasAnimePrefix("kiminonax-hida", animeIDs) {
		t.Error("prefix must be followed by a hyphen")
	}
	if HasAnimePrefix("hida-kiminona", animeIDs) {
		t.Error("anime id in the middle is not a prefix")
	}
	if HasAnimePrefix("anything", nil) {
		t.Error("no anime ids means no prefix match")
	}
}

func TestIsValid(t *testing.T) {
	if !IsValid("kiminona-hida-2") {
		t.Error("well-formed slug rejected")
	}
	for _, bad := range []string{"", "Has-Upper", "double--hyphen", "-leading", "trailing-"} {
		if IsValid(bad) {
			t.Errorf("malformed slug %q accepted", bad)
		}
	}
}

func TestAllocate_RetriesUntilFree(t *testing.T) {
	taken := map[string]bool{"base": true, "base-2": true}
	exists := func(ctx context.Context, slug string) (bool, error) {
		return taken[slug], nil
	}

	slug, err := Allocate(context.Background(), "base", 20, exists)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if slug != "base-3" {
		t.Errorf("expected base-3, got %q", slug)
	}
}

func TestAllocate_Exhausted(t *testing.T) {
	exists := func(ctx context.Context, slug string) (bool, error) {
		return true, nil
	}

	_, err := Allocate(context.Background(), "base", 5, exists)
	if !errors.Is(err, ErrExhausted) {
		t.Errorf("expected ErrExhausted, got %v", err)
	}
}

func TestAllocate_EmptyBaseFallsBack(t *testing.T) {
	exists := func(ctx context.Context, slug string) (bool, error) {
		return false, nil
	}

	slug, err := Allocate(context.Background(), "", 20, exists)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if !IsFallback(slug) {
		t.Errorf("expected fallback slug, got %q", slug)
	}
}
