package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/seichi-note/content-api/internal/database"
	"github.com/seichi-note/content-api/internal/models"
)

const articleColumns = `id, slug, language, author_id, title, seo_title, description,
	content_json, content_html, cover, anime_ids, city, route_length, tags,
	status, reject_reason, needs_revision, published_at, last_approved_at,
	created_at, updated_at`

// articleRepo is the concrete implementation of ArticleRepository
type articleRepo struct {
	db *database.DB
}

// NewArticleRepo creates a new article repository
func NewArticleRepo(db *database.DB) ArticleRepository {
	return &articleRepo{db: db}
}

// CreateDraft inserts a new draft article
func (r *articleRepo) CreateDraft(ctx context.Context, article *models.Article) error {
	query := `
		INSERT INTO articles (` + articleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`
	now := time.Now()
	article.CreatedAt = now
	article.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		article.ID, article.Slug, article.Language, article.AuthorID,
		article.Title, nullable(article.SEOTitle), nullable(article.Description),
		article.ContentJSON, article.ContentHTML, nullable(article.Cover),
		pq.Array(article.AnimeIDs), nullable(article.City), nullable(article.RouteLength),
		pq.Array(article.Tags), article.Status, nullable(article.RejectReason),
		article.NeedsRevision, article.PublishedAt, article.LastApprovedAt,
		article.CreatedAt, article.UpdatedAt,
	)
	return translateSlugError(err)
}

// UpdateDraft persists the author-editable content fields
func (r *articleRepo) UpdateDraft(ctx context.Context, article *models.Article) error {
	query := `
		UPDATE articles SET
			title = $2, seo_title = $3, description = $4, content_json = $5,
			content_html = $6, cover = $7, anime_ids = $8, city = $9,
			route_length = $10, tags = $11, updated_at = $12
		WHERE id = $1
	`
	article.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		article.ID, article.Title, nullable(article.SEOTitle), nullable(article.Description),
		article.ContentJSON, article.ContentHTML, nullable(article.Cover),
		pq.Array(article.AnimeIDs), nullable(article.City), nullable(article.RouteLength),
		pq.Array(article.Tags), article.UpdatedAt,
	)
	return err
}

// UpdateState persists the lifecycle fields after a workflow transition
func (r *articleRepo) UpdateState(ctx context.Context, article *models.Article) error {
	query := `
		UPDATE articles SET
			status = $2, reject_reason = $3, needs_revision = $4,
			published_at = $5, last_approved_at = $6, slug = $7,
			title = $8, anime_ids = $9, city = $10, tags = $11,
			content_json = $12, content_html = $13, cover = $14, updated_at = $15
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query,
		article.ID, article.Status, nullable(article.RejectReason), article.NeedsRevision,
		article.PublishedAt, article.LastApprovedAt, article.Slug,
		article.Title, pq.Array(article.AnimeIDs), nullable(article.City), pq.Array(article.Tags),
		article.ContentJSON, article.ContentHTML, nullable(article.Cover), article.UpdatedAt,
	)
	return translateSlugError(err)
}

// UpdateSlug repoints an article's slug (admin slug repair)
func (r *articleRepo) UpdateSlug(ctx context.Context, id, slug string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE articles SET slug = $2, updated_at = $3 WHERE id = $1`,
		id, slug, time.Now(),
	)
	return translateSlugError(err)
}

// FindByID retrieves an article by id, nil when absent
func (r *articleRepo) FindByID(ctx context.Context, id string) (*models.Article, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE id = $1`, id)
	return scanArticle(row)
}

// FindBySlug retrieves an article by slug and language, nil when absent
func (r *articleRepo) FindBySlug(ctx context.Context, slug, language string) (*models.Article, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE slug = $1 AND language = $2`, slug, language)
	return scanArticle(row)
}

// ListByAuthor retrieves all articles by an author, newest first
func (r *articleRepo) ListByAuthor(ctx context.Context, authorID string) ([]*models.Article, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE author_id = $1 ORDER BY updated_at DESC`, authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArticles(rows)
}

// ListByStatus retrieves all articles in a given status, oldest first
// so the review queue is processed in submission order
func (r *articleRepo) ListByStatus(ctx context.Context, status models.ArticleStatus) ([]*models.Article, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE status = $1 ORDER BY updated_at ASC`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArticles(rows)
}

// SlugExists checks if an article with the given slug exists in any language
func (r *articleRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM articles WHERE slug = $1)", slug).Scan(&exists)
	return exists, err
}

// Delete removes an article and its city links
func (r *articleRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM article_cities WHERE article_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM article_revisions WHERE article_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id); err != nil {
		return err
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanArticle(row rowScanner) (*models.Article, error) {
	var a models.Article
	var seoTitle, description, cover, city, routeLength, rejectReason sql.NullString
	var publishedAt, lastApprovedAt sql.NullTime

	err := row.Scan(
		&a.ID, &a.Slug, &a.Language, &a.AuthorID, &a.Title, &seoTitle, &description,
		&a.ContentJSON, &a.ContentHTML, &cover, pq.Array(&a.AnimeIDs), &city,
		&routeLength, pq.Array(&a.Tags), &a.Status, &rejectReason, &a.NeedsRevision,
		&publishedAt, &lastApprovedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	a.SEOTitle = seoTitle.String
	a.Description = description.String
	a.Cover = cover.String
	a.City = city.String
	a.RouteLength = routeLength.String
	a.RejectReason = rejectReason.String
	if publishedAt.Valid {
		a.PublishedAt = &publishedAt.Time
	}
	if lastApprovedAt.Valid {
		a.LastApprovedAt = &lastApprovedAt.Time
	}
	return &a, nil
}

func scanArticles(rows *sql.Rows) ([]*models.Article, error) {
	var articles []*models.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// nullable maps "" to SQL NULL for optional text columns
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
