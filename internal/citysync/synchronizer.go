// Package citysync keeps the many-to-many links between content
// entities and normalized city records consistent.
package citysync

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/seichi-note/content-api/internal/models"
	"github.com/seichi-note/content-api/internal/repository"
)

// Synchronizer reconciles city links for articles and revisions
type Synchronizer struct {
	cities repository.CityRepository
	log    zerolog.Logger
}

// New creates a Synchronizer
func New(cities repository.CityRepository, log zerolog.Logger) *Synchronizer {
	return &Synchronizer{
		cities: cities,
		log:    log.With().Str("component", "citysync").Logger(),
	}
}

// Normalize trims, drops empties, and de-duplicates a city id set
// while preserving first-seen order
func Normalize(cityIDs []string) []string {
	seen := make(map[string]bool, len(cityIDs))
	out := make([]string, 0, len(cityIDs))
	for _, id := range cityIDs {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// SetArticleCityIDs replaces an article's city links with the
// normalized target set. An empty set clears all links.
func (s *Synchronizer) SetArticleCityIDs(ctx context.Context, articleID string, cityIDs []string) error {
	if err := s.cities.SetArticleCityIDs(ctx, articleID, Normalize(cityIDs)); err != nil {
		return fmt.Errorf("failed to set article city links: %w", err)
	}
	return nil
}

// SetRevisionCityIDs replaces a revision's city links with the
// normalized target set. An empty set clears all links.
func (s *Synchronizer) SetRevisionCityIDs(ctx context.Context, revisionID string, cityIDs []string) error {
	if err := s.cities.SetRevisionCityIDs(ctx, revisionID, Normalize(cityIDs)); err != nil {
		return fmt.Errorf("failed to set revision city links: %w", err)
	}
	return nil
}

// ResolveFallback resolves a raw author-typed city name to city ids.
// This is a best-effort path: lookup failures are logged and yield an
// empty set rather than an error, so approval flows never fail on a
// city we cannot resolve.
func (s *Synchronizer) ResolveFallback(ctx context.Context, rawCity string) []string {
	rawCity = strings.TrimSpace(rawCity)
	if rawCity == "" {
		return nil
	}

	city, err := s.cities.ResolveByName(ctx, rawCity)
	if err != nil {
		s.log.Warn().Err(err).Str("city", rawCity).Msg("City name resolution failed")
		return nil
	}
	if city == nil {
		s.log.Debug().Str("city", rawCity).Msg("No city record matches raw name")
		return nil
	}
	return []string{city.ID}
}

// CityIDsForApproval determines the city set to stamp onto an article
// when a revision is approved: the revision's explicit links when
// present, otherwise a best-effort resolution of its raw city name.
func (s *Synchronizer) CityIDsForApproval(ctx context.Context, rev *models.ArticleRevision) []string {
	ids, err := s.cities.ListCityIDsByRevision(ctx, rev.ID)
	if err != nil {
		s.log.Warn().Err(err).Str("revision_id", rev.ID).Msg("Failed to load revision city links")
		ids = nil
	}
	if len(ids) == 0 {
		ids = s.ResolveFallback(ctx, rev.City)
	}
	return Normalize(ids)
}

// MergeCities absorbs city fromID into toID. The repository performs
// the whole merge in one transaction with insert-if-absent semantics,
// so a retried merge is safe.
func (s *Synchronizer) MergeCities(ctx context.Context, fromID, toID string) error {
	if fromID == toID {
		return fmt.Errorf("cannot merge a city into itself")
	}

	from, err := s.cities.FindByID(ctx, fromID)
	if err != nil {
		return fmt.Errorf("failed to load city %s: %w", fromID, err)
	}
	if from == nil {
		return fmt.Errorf("city %s not found", fromID)
	}
	to, err := s.cities.FindByID(ctx, toID)
	if err != nil {
		return fmt.Errorf("failed to load city %s: %w", toID, err)
	}
	if to == nil {
		return fmt.Errorf("city %s not found", toID)
	}

	if err := s.cities.MergeCities(ctx, fromID, toID); err != nil {
		return fmt.Errorf("failed to merge cities: %w", err)
	}

	s.log.Info().Str("from", fromID).Str("to", toID).Msg("Cities merged")
	return nil
}
