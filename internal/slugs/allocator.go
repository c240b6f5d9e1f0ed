// Package slugs derives URL slugs from article titles and allocates
// unique ones against existing content.
package slugs

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrExhausted is returned when the uniqueness retry budget is spent
var ErrExhausted = errors.New("slug allocation attempts exhausted")

// maxSlugLen bounds slug length before the uniqueness suffix
const maxSlugLen = 80

var (
	fallbackRe = regexp.MustCompile(`^g[0-9a-f]{12}$`)
	slugRe     = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// ExistsFunc reports whether a slug is already taken. Implementations
// check both the relational store and any static content source.
type ExistsFunc func(ctx context.Context, slug string) (bool, error)

// Slugify derives a slug from a title: unicode marks stripped,
// lowercased, non-alphanumeric runs collapsed to single hyphens.
// Titles that yield nothing usable return "".
func Slugify(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	normalized, _, err := transform.String(t, title)
	if err != nil {
		normalized = title
	}

	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(normalized) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	s := strings.Trim(b.String(), "-")
	if len(s) > maxSlugLen {
		s = strings.Trim(s[:maxSlugLen], "-")
	}
	return s
}

// WithAnimePrefix prepends the anime id so the slug carries a verified
// `<animeId>-` prefix
func WithAnimePrefix(animeID, base string) string {
	if base == "" {
		return animeID
	}
	if strings.HasPrefix(base, animeID+"-") {
		return base
	}
	return animeID + "-" + base
}

// Fallback generates a low-quality hash-derived slug for titles no
// readable slug could be built from
func Fallback() string {
	return "g" + strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
}

// IsFallback reports whether a slug is a hash-derived fallback
func IsFallback(slug string) bool {
	return fallbackRe.MatchString(slug)
}

// IsValid reports whether a slug is well-formed
func IsValid(slug string) bool {
	return slugRe.MatchString(slug)
}

// HasAnimePrefix reports whether the slug starts with one of the
// article's anime ids followed by a hyphen
func HasAnimePrefix(slug string, animeIDs []string) bool {
	for _, id := range animeIDs {
		if id != "" && strings.HasPrefix(slug, id+"-") {
			return true
		}
	}
	return false
}

// Allocate finds a free slug starting from base, trying base, base-2,
// base-3, ... up to maxAttempts. An empty base falls back to a
// hash-derived slug. Returns ErrExhausted when the budget is spent.
func Allocate(ctx context.Context, base string, maxAttempts int, exists ExistsFunc) (string, error) {
	if base == "" {
		base = Fallback()
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		candidate := base
		if attempt > 1 {
			candidate = fmt.Sprintf("%s-%d", base, attempt)
		}

		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
	}

	return "", ErrExhausted
}
