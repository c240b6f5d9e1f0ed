package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/seichi-note/content-api/internal/citysync"
	"github.com/seichi-note/content-api/internal/config"
	"github.com/seichi-note/content-api/internal/models"
	"github.com/seichi-note/content-api/internal/render"
	"github.com/seichi-note/content-api/internal/repository"
	"github.com/seichi-note/content-api/internal/slugs"
	"github.com/seichi-note/content-api/internal/workflow"
)

// contentService is the concrete implementation of ContentService
type contentService struct {
	repos    *repository.Repositories
	renderer *render.Renderer
	cities   *citysync.Synchronizer
	oracle   SlugOracle
	cfg      *config.Config
	log      zerolog.Logger
}

func newContentService(repos *repository.Repositories, renderer *render.Renderer, cities *citysync.Synchronizer, oracle SlugOracle, cfg *config.Config, log zerolog.Logger) *contentService {
	return &contentService{
		repos:    repos,
		renderer: renderer,
		cities:   cities,
		oracle:   oracle,
		cfg:      cfg,
		log:      log.With().Str("service", "content").Logger(),
	}
}

// slugExists is the combined uniqueness oracle: the relational store
// plus any static content source
func (s *contentService) slugExists(ctx context.Context, slug string) (bool, error) {
	taken, err := s.repos.Article.SlugExists(ctx, slug)
	if err != nil || taken {
		return taken, err
	}
	return s.oracle.SlugExists(ctx, slug)
}

// CreateDraft creates a new draft article owned by the actor. The slug
// is derived from the title (anime-prefixed when possible) and falls
// back to a hash-derived one for untranslatable titles.
func (s *contentService) CreateDraft(ctx context.Context, actor models.Actor, in *DraftInput) (*models.Article, error) {
	language := in.Language
	if language == "" {
		language = "ja"
	}

	base := slugs.Slugify(in.Title)
	if base != "" && len(in.AnimeIDs) > 0 {
		base = slugs.WithAnimePrefix(in.AnimeIDs[0], base)
	}
	slug, err := slugs.Allocate(ctx, base, s.cfg.Content.SlugMaxAttempts, s.slugExists)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate slug: %w", err)
	}

	article := &models.Article{
		ID:          uuid.New().String(),
		Slug:        slug,
		Language:    language,
		AuthorID:    actor.UserID,
		Title:       in.Title,
		SEOTitle:    in.SEOTitle,
		Description: in.Description,
		ContentJSON: in.ContentJSON,
		ContentHTML: s.renderer.HTMLFromJSON(in.ContentJSON),
		Cover:       in.Cover,
		AnimeIDs:    in.AnimeIDs,
		City:        in.City,
		RouteLength: in.RouteLength,
		Tags:        in.Tags,
		Status:      models.ArticleStatusDraft,
	}

	if err := s.repos.Article.CreateDraft(ctx, article); err != nil {
		return nil, err
	}

	if len(in.CityIDs) > 0 {
		if err := s.cities.SetArticleCityIDs(ctx, article.ID, in.CityIDs); err != nil {
			s.log.Warn().Err(err).Str("article_id", article.ID).Msg("Failed to set initial city links")
		}
	}

	s.log.Info().Str("article_id", article.ID).Str("slug", slug).Msg("Draft created")
	return article, nil
}

// UpdateDraft mutates the editable fields of a draft or rejected
// article. Only the author (or an admin) may edit, and only while the
// article is editable.
func (s *contentService) UpdateDraft(ctx context.Context, id string, actor models.Actor, in *DraftInput) (*models.Article, error) {
	article, err := s.repos.Article.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, ErrNotFound
	}
	if !actor.CanActOn(article) {
		return nil, &workflow.Error{Code: workflow.CodeForbidden, Message: "only the author or an admin may edit"}
	}
	if !article.IsEditable() {
		return nil, &workflow.Error{Code: workflow.CodeInvalidStatus, Message: fmt.Sprintf("cannot edit article in status %q", article.Status)}
	}

	article.Title = in.Title
	article.SEOTitle = in.SEOTitle
	article.Description = in.Description
	article.ContentJSON = in.ContentJSON
	article.ContentHTML = s.renderer.HTMLFromJSON(in.ContentJSON)
	article.Cover = in.Cover
	article.AnimeIDs = in.AnimeIDs
	article.City = in.City
	article.RouteLength = in.RouteLength
	article.Tags = in.Tags

	if err := s.repos.Article.UpdateDraft(ctx, article); err != nil {
		return nil, err
	}

	if err := s.cities.SetArticleCityIDs(ctx, article.ID, in.CityIDs); err != nil {
		s.log.Warn().Err(err).Str("article_id", article.ID).Msg("Failed to update city links")
	}

	return article, nil
}

// GetArticle loads an article. Published articles are visible to
// everyone; unpublished ones only to their author or an admin.
func (s *contentService) GetArticle(ctx context.Context, id string, actor models.Actor) (*models.Article, error) {
	article, err := s.repos.Article.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, ErrNotFound
	}
	if article.Status != models.ArticleStatusPublished && !actor.CanActOn(article) {
		return nil, &workflow.Error{Code: workflow.CodeForbidden, Message: "article is not visible"}
	}
	return article, nil
}

// ListByAuthor lists an author's articles
func (s *contentService) ListByAuthor(ctx context.Context, authorID string) ([]*models.Article, error) {
	return s.repos.Article.ListByAuthor(ctx, authorID)
}

// ListByStatus lists articles in a given status (admin review queue)
func (s *contentService) ListByStatus(ctx context.Context, status models.ArticleStatus) ([]*models.Article, error) {
	return s.repos.Article.ListByStatus(ctx, status)
}

// DeleteArticle removes an article. Authors may delete their own
// unpublished articles; admins may delete anything.
func (s *contentService) DeleteArticle(ctx context.Context, id string, actor models.Actor) error {
	article, err := s.repos.Article.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if article == nil {
		return ErrNotFound
	}
	if !actor.CanActOn(article) {
		return &workflow.Error{Code: workflow.CodeForbidden, Message: "only the author or an admin may delete"}
	}
	if article.Status == models.ArticleStatusPublished && !actor.IsAdmin {
		return &workflow.Error{Code: workflow.CodeInvalidStatus, Message: "published articles can only be deleted by an admin"}
	}

	if err := s.repos.Article.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("article_id", id).Msg("Article deleted")
	return nil
}
