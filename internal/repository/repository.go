package repository

import (
	"context"
	"errors"

	"github.com/lib/pq"
	"github.com/seichi-note/content-api/internal/database"
	"github.com/seichi-note/content-api/internal/models"
)

// ErrSlugExists is returned when a write collides with an existing
// slug. It is surfaced distinctly so callers can drive the slug retry
// loop instead of treating it as a generic failure.
var ErrSlugExists = errors.New("slug already exists")

// ArticleRepository defines the interface for article persistence
type ArticleRepository interface {
	CreateDraft(ctx context.Context, article *models.Article) error
	UpdateDraft(ctx context.Context, article *models.Article) error
	UpdateState(ctx context.Context, article *models.Article) error
	UpdateSlug(ctx context.Context, id, slug string) error
	FindByID(ctx context.Context, id string) (*models.Article, error)
	FindBySlug(ctx context.Context, slug, language string) (*models.Article, error)
	ListByAuthor(ctx context.Context, authorID string) ([]*models.Article, error)
	ListByStatus(ctx context.Context, status models.ArticleStatus) ([]*models.Article, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Delete(ctx context.Context, id string) error
}

// ArticleRevisionRepository defines the interface for revision
// persistence. ApproveAndApply performs the revision approval, the
// copy of revision fields onto the article, and the city-link
// replacement in a single transaction.
type ArticleRevisionRepository interface {
	Create(ctx context.Context, rev *models.ArticleRevision) error
	UpdateDraft(ctx context.Context, rev *models.ArticleRevision) error
	UpdateState(ctx context.Context, rev *models.ArticleRevision) error
	FindByID(ctx context.Context, id string) (*models.ArticleRevision, error)
	FindActiveByArticle(ctx context.Context, articleID string) (*models.ArticleRevision, error)
	ApproveAndApply(ctx context.Context, rev *models.ArticleRevision, article *models.Article, cityIDs []string) error
}

// CityRepository defines the interface for city records and the
// article/revision link tables. SetArticleCityIDs and
// SetRevisionCityIDs use replace semantics inside one transaction;
// MergeCities absorbs one city into another idempotently.
type CityRepository interface {
	FindByID(ctx context.Context, id string) (*models.City, error)
	ResolveByName(ctx context.Context, name string) (*models.City, error)
	ListCityIDsByArticle(ctx context.Context, articleID string) ([]string, error)
	ListCityIDsByRevision(ctx context.Context, revisionID string) ([]string, error)
	SetArticleCityIDs(ctx context.Context, articleID string, cityIDs []string) error
	SetRevisionCityIDs(ctx context.Context, revisionID string, cityIDs []string) error
	MergeCities(ctx context.Context, fromID, toID string) error
}

// Repositories holds all repository interfaces
type Repositories struct {
	Article  ArticleRepository
	Revision ArticleRevisionRepository
	City     CityRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Article:  NewArticleRepo(db),
		Revision: NewRevisionRepo(db),
		City:     NewCityRepo(db),
	}
}

// translateSlugError maps a postgres unique violation on a slug
// constraint to ErrSlugExists
func translateSlugError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrSlugExists
	}
	return err
}
