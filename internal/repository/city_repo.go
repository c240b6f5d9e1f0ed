package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/seichi-note/content-api/internal/database"
	"github.com/seichi-note/content-api/internal/models"
)

// cityRepo is the concrete implementation of CityRepository
type cityRepo struct {
	db *database.DB
}

// NewCityRepo creates a new city repository
func NewCityRepo(db *database.DB) CityRepository {
	return &cityRepo{db: db}
}

// FindByID retrieves a city by id, nil when absent
func (r *cityRepo) FindByID(ctx context.Context, id string) (*models.City, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, slug, name, name_en, hidden, created_at, updated_at FROM cities WHERE id = $1`, id)
	return scanCity(row)
}

// ResolveByName looks a city up by its name, english name, or any alias
func (r *cityRepo) ResolveByName(ctx context.Context, name string) (*models.City, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT c.id, c.slug, c.name, c.name_en, c.hidden, c.created_at, c.updated_at
		FROM cities c
		LEFT JOIN city_aliases a ON a.city_id = c.id
		WHERE c.name = $1 OR c.name_en = $1 OR a.alias = $1
		LIMIT 1`, name)
	return scanCity(row)
}

// ListCityIDsByArticle returns the linked city ids of an article
func (r *cityRepo) ListCityIDsByArticle(ctx context.Context, articleID string) ([]string, error) {
	return r.listIDs(ctx, `SELECT city_id FROM article_cities WHERE article_id = $1`, articleID)
}

// ListCityIDsByRevision returns the linked city ids of a revision
func (r *cityRepo) ListCityIDsByRevision(ctx context.Context, revisionID string) ([]string, error) {
	return r.listIDs(ctx, `SELECT city_id FROM revision_cities WHERE revision_id = $1`, revisionID)
}

func (r *cityRepo) listIDs(ctx context.Context, query, arg string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SetArticleCityIDs replaces the article's city links with the given
// set in one transaction. An empty set clears all links.
func (r *cityRepo) SetArticleCityIDs(ctx context.Context, articleID string, cityIDs []string) error {
	return r.replaceLinks(ctx, "article_cities", "article_id", articleID, cityIDs)
}

// SetRevisionCityIDs replaces the revision's city links with the given
// set in one transaction. An empty set clears all links.
func (r *cityRepo) SetRevisionCityIDs(ctx context.Context, revisionID string, cityIDs []string) error {
	return r.replaceLinks(ctx, "revision_cities", "revision_id", revisionID, cityIDs)
}

func (r *cityRepo) replaceLinks(ctx context.Context, table, ownerCol, ownerID string, cityIDs []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE `+ownerCol+` = $1`, ownerID); err != nil {
		return err
	}
	for _, cityID := range cityIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO `+table+` (`+ownerCol+`, city_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			ownerID, cityID)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// MergeCities absorbs city fromID into city toID in a single
// transaction: links are repointed with insert-if-absent semantics,
// aliases migrate as non-primary, a slug redirect is registered, and
// the absorbed city is hidden. Every sub-step is idempotent so a
// retried merge converges to the same state.
func (r *cityRepo) MergeCities(ctx context.Context, fromID, toID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var fromSlug, toSlug string
	if err := tx.QueryRowContext(ctx, `SELECT slug FROM cities WHERE id = $1`, fromID).Scan(&fromSlug); err != nil {
		return err
	}
	if err := tx.QueryRowContext(ctx, `SELECT slug FROM cities WHERE id = $1`, toID).Scan(&toSlug); err != nil {
		return err
	}

	// Repoint link rows; an entity already linked to both keeps its
	// existing row and the stale one is deleted below
	linkTables := []struct{ table, ownerCol string }{
		{"article_cities", "article_id"},
		{"revision_cities", "revision_id"},
	}
	for _, lt := range linkTables {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO `+lt.table+` (`+lt.ownerCol+`, city_id)
			SELECT `+lt.ownerCol+`, $2 FROM `+lt.table+` WHERE city_id = $1
			ON CONFLICT DO NOTHING`, fromID, toID)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+lt.table+` WHERE city_id = $1`, fromID); err != nil {
			return err
		}
	}

	// Migrate aliases as non-primary names of the surviving city
	_, err = tx.ExecContext(ctx, `
		INSERT INTO city_aliases (city_id, alias, is_primary)
		SELECT $2, alias, FALSE FROM city_aliases WHERE city_id = $1
		ON CONFLICT DO NOTHING`, fromID, toID)
	if err != nil {
		return err
	}
	// The absorbed city's own name becomes an alias too
	_, err = tx.ExecContext(ctx, `
		INSERT INTO city_aliases (city_id, alias, is_primary)
		SELECT $2, name, FALSE FROM cities WHERE id = $1
		ON CONFLICT DO NOTHING`, fromID, toID)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM city_aliases WHERE city_id = $1`, fromID); err != nil {
		return err
	}

	// Register the slug redirect
	_, err = tx.ExecContext(ctx, `
		INSERT INTO slug_redirects (from_slug, to_slug, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (from_slug) DO UPDATE SET to_slug = EXCLUDED.to_slug`,
		fromSlug, toSlug, time.Now())
	if err != nil {
		return err
	}

	// Hide the absorbed city
	if _, err := tx.ExecContext(ctx, `UPDATE cities SET hidden = TRUE, updated_at = $2 WHERE id = $1`, fromID, time.Now()); err != nil {
		return err
	}

	return tx.Commit()
}

func scanCity(row rowScanner) (*models.City, error) {
	var c models.City
	var nameEn sql.NullString

	err := row.Scan(&c.ID, &c.Slug, &c.Name, &nameEn, &c.Hidden, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	c.NameEn = nameEn.String
	return &c, nil
}
