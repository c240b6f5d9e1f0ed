package models

import (
	"time"
)

// ArticleStatus represents the lifecycle state of an article
type ArticleStatus string

const (
	ArticleStatusDraft     ArticleStatus = "draft"
	ArticleStatusInReview  ArticleStatus = "in_review"
	ArticleStatusRejected  ArticleStatus = "rejected"
	ArticleStatusPublished ArticleStatus = "published"
)

// ValidArticleStatuses defines allowed article statuses
var ValidArticleStatuses = map[ArticleStatus]bool{
	ArticleStatusDraft:     true,
	ArticleStatusInReview:  true,
	ArticleStatusRejected:  true,
	ArticleStatusPublished: true,
}

// Article represents a pilgrimage guide article
type Article struct {
	ID             string        `json:"id" db:"id"`
	Slug           string        `json:"slug" db:"slug"`
	Language       string        `json:"language" db:"language"`
	AuthorID       string        `json:"author_id" db:"author_id"`
	Title          string        `json:"title" db:"title"`
	SEOTitle       string        `json:"seo_title,omitempty" db:"seo_title"`
	Description    string        `json:"description,omitempty" db:"description"`
	ContentJSON    string        `json:"content_json" db:"content_json"`
	ContentHTML    string        `json:"content_html" db:"content_html"`
	Cover          string        `json:"cover,omitempty" db:"cover"`
	AnimeIDs       []string      `json:"anime_ids" db:"-"`
	City           string        `json:"city,omitempty" db:"city"`
	RouteLength    string        `json:"route_length,omitempty" db:"route_length"`
	Tags           []string      `json:"tags" db:"-"`
	Status         ArticleStatus `json:"status" db:"status"`
	RejectReason   string        `json:"reject_reason,omitempty" db:"reject_reason"`
	NeedsRevision  bool          `json:"needs_revision" db:"needs_revision"`
	PublishedAt    *time.Time    `json:"published_at,omitempty" db:"published_at"`
	LastApprovedAt *time.Time    `json:"last_approved_at,omitempty" db:"last_approved_at"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at" db:"updated_at"`
}

// IsEditable reports whether the author may still mutate the draft fields
func (a *Article) IsEditable() bool {
	return a.Status == ArticleStatusDraft || a.Status == ArticleStatusRejected
}

// Actor identifies the user attempting a workflow transition
type Actor struct {
	UserID  string
	IsAdmin bool
}

// CanActOn reports whether the actor owns the article or is an admin
func (ac Actor) CanActOn(a *Article) bool {
	return ac.IsAdmin || ac.UserID == a.AuthorID
}
