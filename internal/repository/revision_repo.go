package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/seichi-note/content-api/internal/database"
	"github.com/seichi-note/content-api/internal/models"
)

const revisionColumns = `id, article_id, title, anime_ids, city, tags,
	content_json, content_html, cover, status, reject_reason, created_at, updated_at`

// revisionRepo is the concrete implementation of ArticleRevisionRepository
type revisionRepo struct {
	db *database.DB
}

// NewRevisionRepo creates a new revision repository
func NewRevisionRepo(db *database.DB) ArticleRevisionRepository {
	return &revisionRepo{db: db}
}

// Create inserts a new draft revision. The partial unique index on
// active revisions rejects a second active revision per article.
func (r *revisionRepo) Create(ctx context.Context, rev *models.ArticleRevision) error {
	query := `
		INSERT INTO article_revisions (` + revisionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.ExecContext(ctx, query,
		rev.ID, rev.ArticleID, rev.Title, pq.Array(rev.AnimeIDs), nullable(rev.City),
		pq.Array(rev.Tags), rev.ContentJSON, rev.ContentHTML, nullable(rev.Cover),
		rev.Status, nullable(rev.RejectReason), rev.CreatedAt, rev.UpdatedAt,
	)
	return err
}

// UpdateDraft persists the editable content fields of a revision
func (r *revisionRepo) UpdateDraft(ctx context.Context, rev *models.ArticleRevision) error {
	query := `
		UPDATE article_revisions SET
			title = $2, anime_ids = $3, city = $4, tags = $5,
			content_json = $6, content_html = $7, cover = $8, updated_at = $9
		WHERE id = $1
	`
	rev.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		rev.ID, rev.Title, pq.Array(rev.AnimeIDs), nullable(rev.City), pq.Array(rev.Tags),
		rev.ContentJSON, rev.ContentHTML, nullable(rev.Cover), rev.UpdatedAt,
	)
	return err
}

// UpdateState persists the lifecycle fields after a workflow transition
func (r *revisionRepo) UpdateState(ctx context.Context, rev *models.ArticleRevision) error {
	query := `
		UPDATE article_revisions SET status = $2, reject_reason = $3, updated_at = $4
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query,
		rev.ID, rev.Status, nullable(rev.RejectReason), rev.UpdatedAt,
	)
	return err
}

// FindByID retrieves a revision by id, nil when absent
func (r *revisionRepo) FindByID(ctx context.Context, id string) (*models.ArticleRevision, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+revisionColumns+` FROM article_revisions WHERE id = $1`, id)
	return scanRevision(row)
}

// FindActiveByArticle retrieves the single non-approved revision of an
// article, nil when none exists
func (r *revisionRepo) FindActiveByArticle(ctx context.Context, articleID string) (*models.ArticleRevision, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+revisionColumns+` FROM article_revisions WHERE article_id = $1 AND status <> 'approved'`,
		articleID)
	return scanRevision(row)
}

// ApproveAndApply marks the revision approved, copies its fields onto
// the article, and replaces the article's city links, all in one
// transaction. Partial application of the linked writes is never
// visible.
func (r *revisionRepo) ApproveAndApply(ctx context.Context, rev *models.ArticleRevision, article *models.Article, cityIDs []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`UPDATE article_revisions SET status = $2, reject_reason = NULL, updated_at = $3 WHERE id = $1`,
		rev.ID, rev.Status, rev.UpdatedAt,
	)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE articles SET
			title = $2, anime_ids = $3, city = $4, tags = $5,
			content_json = $6, content_html = $7, cover = $8,
			last_approved_at = $9, updated_at = $10
		WHERE id = $1`,
		article.ID, article.Title, pq.Array(article.AnimeIDs), nullable(article.City),
		pq.Array(article.Tags), article.ContentJSON, article.ContentHTML, nullable(article.Cover),
		article.LastApprovedAt, article.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM article_cities WHERE article_id = $1`, article.ID); err != nil {
		return err
	}
	for _, cityID := range cityIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO article_cities (article_id, city_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			article.ID, cityID)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func scanRevision(row rowScanner) (*models.ArticleRevision, error) {
	var rev models.ArticleRevision
	var city, cover, rejectReason sql.NullString

	err := row.Scan(
		&rev.ID, &rev.ArticleID, &rev.Title, pq.Array(&rev.AnimeIDs), &city,
		pq.Array(&rev.Tags), &rev.ContentJSON, &rev.ContentHTML, &cover,
		&rev.Status, &rejectReason, &rev.CreatedAt, &rev.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rev.City = city.String
	rev.Cover = cover.String
	rev.RejectReason = rejectReason.String
	return &rev, nil
}
