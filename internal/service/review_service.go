package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/seichi-note/content-api/internal/cache"
	"github.com/seichi-note/content-api/internal/citysync"
	"github.com/seichi-note/content-api/internal/config"
	"github.com/seichi-note/content-api/internal/models"
	"github.com/seichi-note/content-api/internal/render"
	"github.com/seichi-note/content-api/internal/repository"
	"github.com/seichi-note/content-api/internal/slugs"
	"github.com/seichi-note/content-api/internal/workflow"
)

// reviewService is the concrete implementation of ReviewService.
// Every operation re-loads the entity before deciding, so
// authorization and state checks always run against fresh state.
type reviewService struct {
	repos       *repository.Repositories
	renderer    *render.Renderer
	cities      *citysync.Synchronizer
	invalidator cache.Invalidator
	oracle      SlugOracle
	cfg         *config.Config
	log         zerolog.Logger
}

func newReviewService(repos *repository.Repositories, renderer *render.Renderer, cities *citysync.Synchronizer, invalidator cache.Invalidator, oracle SlugOracle, cfg *config.Config, log zerolog.Logger) *reviewService {
	return &reviewService{
		repos:       repos,
		renderer:    renderer,
		cities:      cities,
		invalidator: invalidator,
		oracle:      oracle,
		cfg:         cfg,
		log:         log.With().Str("service", "review").Logger(),
	}
}

func (s *reviewService) loadArticle(ctx context.Context, id string) (*models.Article, error) {
	article, err := s.repos.Article.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, ErrNotFound
	}
	return article, nil
}

// Submit moves a draft or rejected article into review after the
// content-quality gates pass
func (s *reviewService) Submit(ctx context.Context, id string, actor models.Actor) (*models.Article, error) {
	article, err := s.loadArticle(ctx, id)
	if err != nil {
		return nil, err
	}

	if issues := workflow.ValidateArticleForSubmit(article, s.cfg.Content.MinBodyChars); len(issues) > 0 {
		return nil, &ValidationFailedError{Issues: issues}
	}

	updated, werr := workflow.SubmitArticle(*article, actor, time.Now())
	if werr != nil {
		return nil, werr
	}
	if err := s.repos.Article.UpdateState(ctx, &updated); err != nil {
		return nil, err
	}

	s.log.Info().Str("article_id", id).Msg("Article submitted for review")
	return &updated, nil
}

// Withdraw pulls an in-review article back to draft
func (s *reviewService) Withdraw(ctx context.Context, id string, actor models.Actor) (*models.Article, error) {
	article, err := s.loadArticle(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, werr := workflow.WithdrawArticle(*article, actor, time.Now())
	if werr != nil {
		return nil, werr
	}
	if err := s.repos.Article.UpdateState(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Reject rejects an in-review article with a reason
func (s *reviewService) Reject(ctx context.Context, id string, actor models.Actor, reason string) (*models.Article, error) {
	article, err := s.loadArticle(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, werr := workflow.RejectArticle(*article, actor, reason, time.Now())
	if werr != nil {
		return nil, werr
	}
	if err := s.repos.Article.UpdateState(ctx, &updated); err != nil {
		return nil, err
	}

	s.log.Info().Str("article_id", id).Msg("Article rejected")
	return &updated, nil
}

// Publish moves an in-review article live. A fallback or
// non-anime-prefixed slug is re-derived before publication, and the
// city links are reconciled afterwards.
func (s *reviewService) Publish(ctx context.Context, id string, actor models.Actor) (*models.Article, error) {
	article, err := s.loadArticle(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, werr := workflow.PublishArticle(*article, actor, time.Now())
	if werr != nil {
		return nil, werr
	}

	if slugs.IsFallback(updated.Slug) || !slugs.HasAnimePrefix(updated.Slug, updated.AnimeIDs) {
		if repaired, err := s.deriveGoodSlug(ctx, &updated); err == nil && repaired != "" {
			updated.Slug = repaired
		}
	}

	if err := s.repos.Article.UpdateState(ctx, &updated); err != nil {
		return nil, err
	}

	s.reconcileArticleCities(ctx, &updated)
	s.invalidator.Invalidate(ctx, publicPath(updated.Language, updated.Slug))

	s.log.Info().Str("article_id", id).Str("slug", updated.Slug).Msg("Article published")
	return &updated, nil
}

// deriveGoodSlug tries to build a readable anime-prefixed slug from
// the article's current title. Best-effort: failure keeps the old slug.
func (s *reviewService) deriveGoodSlug(ctx context.Context, article *models.Article) (string, error) {
	base := slugs.Slugify(article.Title)
	if base == "" || len(article.AnimeIDs) == 0 {
		return "", nil
	}
	base = slugs.WithAnimePrefix(article.AnimeIDs[0], base)
	return slugs.Allocate(ctx, base, s.cfg.Content.SlugMaxAttempts, s.combinedSlugExists)
}

func (s *reviewService) combinedSlugExists(ctx context.Context, slug string) (bool, error) {
	taken, err := s.repos.Article.SlugExists(ctx, slug)
	if err != nil || taken {
		return taken, err
	}
	return s.oracle.SlugExists(ctx, slug)
}

// reconcileArticleCities refreshes the article's city links, falling
// back to resolving the raw city name when no explicit links exist.
// Best-effort: failures are logged, never returned.
func (s *reviewService) reconcileArticleCities(ctx context.Context, article *models.Article) {
	ids, err := s.repos.City.ListCityIDsByArticle(ctx, article.ID)
	if err != nil {
		s.log.Warn().Err(err).Str("article_id", article.ID).Msg("Failed to load article city links")
		ids = nil
	}
	if len(ids) == 0 {
		ids = s.cities.ResolveFallback(ctx, article.City)
	}
	if err := s.cities.SetArticleCityIDs(ctx, article.ID, ids); err != nil {
		s.log.Warn().Err(err).Str("article_id", article.ID).Msg("Failed to reconcile city links")
	}
}

// Unpublish force-removes a published article from public view
func (s *reviewService) Unpublish(ctx context.Context, id string, actor models.Actor, reason string) (*models.Article, error) {
	article, err := s.loadArticle(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, werr := workflow.UnpublishArticle(*article, actor, reason, time.Now())
	if werr != nil {
		return nil, werr
	}
	if err := s.repos.Article.UpdateState(ctx, &updated); err != nil {
		return nil, err
	}

	s.invalidator.Invalidate(ctx, publicPath(updated.Language, updated.Slug))
	s.log.Info().Str("article_id", id).Msg("Article unpublished")
	return &updated, nil
}

// RepairSlug lets an admin replace a low-quality slug. The current
// slug must be a fallback or lack an anime prefix, the article must be
// in review or published, and the new slug must be well-formed and
// carry one of the article's anime ids as prefix.
func (s *reviewService) RepairSlug(ctx context.Context, id, newSlug string, actor models.Actor) (*models.Article, error) {
	if !actor.IsAdmin {
		return nil, &workflow.Error{Code: workflow.CodeForbidden, Message: "only an admin may edit slugs"}
	}

	article, err := s.loadArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	if article.Status != models.ArticleStatusInReview && article.Status != models.ArticleStatusPublished {
		return nil, &workflow.Error{Code: workflow.CodeInvalidStatus, Message: fmt.Sprintf("cannot edit slug in status %q", article.Status)}
	}
	// Good slugs are immutable; only fallback or unprefixed slugs may
	// be repaired
	if !slugs.IsFallback(article.Slug) && slugs.HasAnimePrefix(article.Slug, article.AnimeIDs) {
		return nil, &workflow.Error{Code: workflow.CodeInvalidStatus, Message: "slug is already good and cannot be changed"}
	}
	if !slugs.IsValid(newSlug) || !slugs.HasAnimePrefix(newSlug, article.AnimeIDs) {
		return nil, ErrBadSlug
	}

	taken, err := s.combinedSlugExists(ctx, newSlug)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, repository.ErrSlugExists
	}

	oldSlug := article.Slug
	if err := s.repos.Article.UpdateSlug(ctx, id, newSlug); err != nil {
		return nil, err
	}
	article.Slug = newSlug

	s.invalidator.Invalidate(ctx, publicPath(article.Language, oldSlug), publicPath(article.Language, newSlug))
	s.log.Info().Str("article_id", id).Str("old", oldSlug).Str("new", newSlug).Msg("Slug repaired")
	return article, nil
}
