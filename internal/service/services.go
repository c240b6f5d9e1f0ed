package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/seichi-note/content-api/internal/cache"
	"github.com/seichi-note/content-api/internal/citysync"
	"github.com/seichi-note/content-api/internal/config"
	"github.com/seichi-note/content-api/internal/models"
	"github.com/seichi-note/content-api/internal/render"
	"github.com/seichi-note/content-api/internal/repository"
	"github.com/seichi-note/content-api/internal/workflow"
)

// ErrNotFound is returned when the requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrBadSlug is returned when an admin slug edit violates the slug
// rules (malformed, missing anime prefix, or current slug not
// repairable)
var ErrBadSlug = errors.New("slug does not satisfy the slug rules")

// ValidationFailedError carries the author-visible content-quality
// issues that block a submission
type ValidationFailedError struct {
	Issues []workflow.ValidationIssue
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("content validation failed with %d issue(s)", len(e.Issues))
}

// DraftInput holds the author-editable fields of an article or revision
type DraftInput struct {
	Title       string   `json:"title"`
	SEOTitle    string   `json:"seo_title"`
	Description string   `json:"description"`
	ContentJSON string   `json:"content_json"`
	Cover       string   `json:"cover"`
	AnimeIDs    []string `json:"anime_ids"`
	City        string   `json:"city"`
	RouteLength string   `json:"route_length"`
	Tags        []string `json:"tags"`
	CityIDs     []string `json:"city_ids"`
	Language    string   `json:"language"`
}

// SlugOracle checks an external static content source for a
// conflicting slug. The relational store is checked separately.
type SlugOracle interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
}

// NoopSlugOracle reports no conflicts; used when no static content
// source is wired
type NoopSlugOracle struct{}

func (NoopSlugOracle) SlugExists(ctx context.Context, slug string) (bool, error) {
	return false, nil
}

// ContentService manages author-side draft operations
type ContentService interface {
	CreateDraft(ctx context.Context, actor models.Actor, in *DraftInput) (*models.Article, error)
	UpdateDraft(ctx context.Context, id string, actor models.Actor, in *DraftInput) (*models.Article, error)
	GetArticle(ctx context.Context, id string, actor models.Actor) (*models.Article, error)
	ListByAuthor(ctx context.Context, authorID string) ([]*models.Article, error)
	ListByStatus(ctx context.Context, status models.ArticleStatus) ([]*models.Article, error)
	DeleteArticle(ctx context.Context, id string, actor models.Actor) error
}

// ReviewService drives the article and revision workflow transitions
type ReviewService interface {
	Submit(ctx context.Context, id string, actor models.Actor) (*models.Article, error)
	Withdraw(ctx context.Context, id string, actor models.Actor) (*models.Article, error)
	Reject(ctx context.Context, id string, actor models.Actor, reason string) (*models.Article, error)
	Publish(ctx context.Context, id string, actor models.Actor) (*models.Article, error)
	Unpublish(ctx context.Context, id string, actor models.Actor, reason string) (*models.Article, error)
	RepairSlug(ctx context.Context, id, newSlug string, actor models.Actor) (*models.Article, error)

	GetOrCreateRevision(ctx context.Context, articleID string, actor models.Actor) (*models.ArticleRevision, error)
	UpdateRevisionDraft(ctx context.Context, revisionID string, actor models.Actor, in *DraftInput) (*models.ArticleRevision, error)
	SubmitRevision(ctx context.Context, revisionID string, actor models.Actor) (*models.ArticleRevision, error)
	WithdrawRevision(ctx context.Context, revisionID string, actor models.Actor) (*models.ArticleRevision, error)
	RejectRevision(ctx context.Context, revisionID string, actor models.Actor, reason string) (*models.ArticleRevision, error)
	ApproveRevision(ctx context.Context, revisionID string, actor models.Actor) (*models.ArticleRevision, error)
}

// Services holds all service interfaces
type Services struct {
	Content ContentService
	Review  ReviewService
	Cities  *citysync.Synchronizer
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, renderer *render.Renderer, invalidator cache.Invalidator, oracle SlugOracle, cfg *config.Config, log zerolog.Logger) *Services {
	if oracle == nil {
		oracle = NoopSlugOracle{}
	}
	cities := citysync.New(repos.City, log)

	return &Services{
		Content: newContentService(repos, renderer, cities, oracle, cfg, log),
		Review:  newReviewService(repos, renderer, cities, invalidator, oracle, cfg, log),
		Cities:  cities,
	}
}

// publicPath is the externally cached page path for an article slug
func publicPath(language, slug string) string {
	return "/" + language + "/articles/" + slug
}
