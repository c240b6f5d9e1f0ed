package models

import (
	"time"
)

// RevisionStatus represents the lifecycle state of an article revision
type RevisionStatus string

const (
	RevisionStatusDraft    RevisionStatus = "draft"
	RevisionStatusInReview RevisionStatus = "in_review"
	RevisionStatusRejected RevisionStatus = "rejected"
	RevisionStatusApproved RevisionStatus = "approved"
)

// ArticleRevision is a post-publish edit cycle for a published article.
// At most one active (non-approved) revision exists per article.
type ArticleRevision struct {
	ID           string         `json:"id" db:"id"`
	ArticleID    string         `json:"article_id" db:"article_id"`
	Title        string         `json:"title" db:"title"`
	AnimeIDs     []string       `json:"anime_ids" db:"-"`
	City         string         `json:"city,omitempty" db:"city"`
	Tags         []string       `json:"tags" db:"-"`
	ContentJSON  string         `json:"content_json" db:"content_json"`
	ContentHTML  string         `json:"content_html" db:"content_html"`
	Cover        string         `json:"cover,omitempty" db:"cover"`
	Status       RevisionStatus `json:"status" db:"status"`
	RejectReason string         `json:"reject_reason,omitempty" db:"reject_reason"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at" db:"updated_at"`
}

// IsActive reports whether this revision still occupies the article's
// single active revision slot
func (r *ArticleRevision) IsActive() bool {
	return r.Status != RevisionStatusApproved
}

// NewRevisionFromArticle snapshots the editable content fields of a
// published article into a fresh draft revision
func NewRevisionFromArticle(id string, a *Article, now time.Time) *ArticleRevision {
	return &ArticleRevision{
		ID:          id,
		ArticleID:   a.ID,
		Title:       a.Title,
		AnimeIDs:    append([]string(nil), a.AnimeIDs...),
		City:        a.City,
		Tags:        append([]string(nil), a.Tags...),
		ContentJSON: a.ContentJSON,
		ContentHTML: a.ContentHTML,
		Cover:       a.Cover,
		Status:      RevisionStatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// ApplyToArticle copies the revision's content fields onto the article
func (r *ArticleRevision) ApplyToArticle(a *Article) {
	a.Title = r.Title
	a.AnimeIDs = append([]string(nil), r.AnimeIDs...)
	a.City = r.City
	a.Tags = append([]string(nil), r.Tags...)
	a.ContentJSON = r.ContentJSON
	a.ContentHTML = r.ContentHTML
	a.Cover = r.Cover
}
