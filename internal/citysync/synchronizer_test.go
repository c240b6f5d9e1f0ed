package citysync

import (
	"context"
	"reflect"
	"sort"
	"testing"

	"github.com/rs/zerolog"
	"github.com/seichi-note/content-api/internal/mocks"
	"github.com/seichi-note/content-api/internal/models"
)

func newTestSynchronizer() (*Synchronizer, *mocks.MockCityRepository) {
	cities := mocks.NewMockCityRepository()
	return New(cities, zerolog.Nop()), cities
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   []string
		want []string
	}{
		{[]string{"c1", "c2"}, []string{"c1", "c2"}},
		{[]string{" c1 ", "c1", "", "c2"}, []string{"c1", "c2"}},
		{[]string{"  ", ""}, []string{}},
		{nil, []string{}},
	}

	for _, c := range cases {
		if got := Normalize(c.in); !reflect.DeepEqual(got, c.want) {
			t.Errorf("Normalize(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestSetArticleCityIDs_ReplaceSemantics(t *testing.T) {
	ctx := context.Background()
	sync, cities := newTestSynchronizer()

	if err := sync.SetArticleCityIDs(ctx, "a1", []string{"c1", "c2"}); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	assertLinks(t, cities, "a1", []string{"c1", "c2"})

	// Second call replaces, never accumulates
	if err := sync.SetArticleCityIDs(ctx, "a1", []string{"c3"}); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	assertLinks(t, cities, "a1", []string{"c3"})

	// Empty set clears all links
	if err := sync.SetArticleCityIDs(ctx, "a1", nil); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	assertLinks(t, cities, "a1", nil)
}

func TestResolveFallback(t *testing.T) {
	ctx := context.Background()
	sync, cities := newTestSynchronizer()
	cities.Cities["c1"] = &models.City{ID: "c1", Slug: "hida", Name: "飛騨市", NameEn: "Hida"}
	cities.Aliases["c1"] = map[string]bool{"Hida City": true}

	if got := sync.ResolveFallback(ctx, "飛騨市"); !reflect.DeepEqual(got, []string{"c1"}) {
		t.Errorf("resolve by name = %v", got)
	}
	if got := sync.ResolveFallback(ctx, "Hida"); !reflect.DeepEqual(got, []string{"c1"}) {
		t.Errorf("resolve by english name = %v", got)
	}
	if got := sync.ResolveFallback(ctx, "Hida City"); !reflect.DeepEqual(got, []string{"c1"}) {
		t.Errorf("resolve by alias = %v", got)
	}

	// Unknown and blank names resolve to nothing, never an error
	if got := sync.ResolveFallback(ctx, "Atlantis"); got != nil {
		t.Errorf("unknown city should resolve to nil, got %v", got)
	}
	if got := sync.ResolveFallback(ctx, "   "); got != nil {
		t.Errorf("blank city should resolve to nil, got %v", got)
	}
}

func TestCityIDsForApproval(t *testing.T) {
	ctx := context.Background()
	sync, cities := newTestSynchronizer()
	cities.Cities["c1"] = &models.City{ID: "c1", Slug: "hida", Name: "飛騨市"}

	rev := &models.ArticleRevision{ID: "r1", ArticleID: "a1", City: "飛騨市"}

	// Explicit revision links win
	cities.RevisionLinks["r1"] = map[string]bool{"c2": true}
	if got := sync.CityIDsForApproval(ctx, rev); !reflect.DeepEqual(got, []string{"c2"}) {
		t.Errorf("expected explicit links, got %v", got)
	}

	// Without links, fall back to the raw city name
	delete(cities.RevisionLinks, "r1")
	if got := sync.CityIDsForApproval(ctx, rev); !reflect.DeepEqual(got, []string{"c1"}) {
		t.Errorf("expected fallback resolution, got %v", got)
	}

	// Neither links nor a resolvable name yields an empty set
	rev.City = "Atlantis"
	if got := sync.CityIDsForApproval(ctx, rev); len(got) != 0 {
		t.Errorf("expected empty set, got %v", got)
	}
}

func TestMergeCities(t *testing.T) {
	ctx := context.Background()
	sync, cities := newTestSynchronizer()
	cities.Cities["c1"] = &models.City{ID: "c1", Slug: "hida-city", Name: "Hida City"}
	cities.Cities["c2"] = &models.City{ID: "c2", Slug: "hida", Name: "飛騨市"}
	cities.ArticleLinks["a1"] = map[string]bool{"c1": true}
	cities.ArticleLinks["a2"] = map[string]bool{"c1": true, "c2": true}
	cities.RevisionLinks["r1"] = map[string]bool{"c1": true}

	if err := sync.MergeCities(ctx, "c1", "c2"); err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	assertLinks(t, cities, "a1", []string{"c2"})
	assertLinks(t, cities, "a2", []string{"c2"})
	if !cities.RevisionLinks["r1"]["c2"] || cities.RevisionLinks["r1"]["c1"] {
		t.Errorf("revision links not repointed: %v", cities.RevisionLinks["r1"])
	}
	if !cities.Aliases["c2"]["Hida City"] {
		t.Error("absorbed city name should become an alias")
	}
	if cities.Redirects["hida-city"] != "hida" {
		t.Errorf("slug redirect missing: %v", cities.Redirects)
	}
	if !cities.Cities["c1"].Hidden {
		t.Error("absorbed city should be hidden")
	}

	// A retried merge leaves the same end state
	if err := sync.MergeCities(ctx, "c1", "c2"); err != nil {
		t.Fatalf("retried merge failed: %v", err)
	}
	assertLinks(t, cities, "a1", []string{"c2"})
	assertLinks(t, cities, "a2", []string{"c2"})
}

func TestMergeCities_Validation(t *testing.T) {
	ctx := context.Background()
	sync, cities := newTestSynchronizer()
	cities.Cities["c1"] = &models.City{ID: "c1", Slug: "hida"}

	if err := sync.MergeCities(ctx, "c1", "c1"); err == nil {
		t.Error("self-merge should fail")
	}
	if err := sync.MergeCities(ctx, "c1", "missing"); err == nil {
		t.Error("merge into missing city should fail")
	}
	if err := sync.MergeCities(ctx, "missing", "c1"); err == nil {
		t.Error("merge from missing city should fail")
	}
}

func assertLinks(t *testing.T, cities *mocks.MockCityRepository, articleID string, want []string) {
	t.Helper()
	got, err := cities.ListCityIDsByArticle(context.Background(), articleID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	sort.Strings(got)
	sort.Strings(want)
	if len(got) == 0 && len(want) == 0 {
		return
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("article %s links = %v, want %v", articleID, got, want)
	}
}
