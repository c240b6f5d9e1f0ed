// Package workflow contains the pure state-transition functions for
// articles and revisions. Transition functions take the freshly loaded
// entity by value and return an updated copy; they perform no I/O, so
// callers own loading, persistence, and side effects.
package workflow

import (
	"strings"
	"time"

	"github.com/seichi-note/content-api/internal/models"
)

// SubmitArticle moves a draft or rejected article into review.
// Only the author or an admin may submit; a pending reject reason is
// cleared on resubmission.
func SubmitArticle(a models.Article, actor models.Actor, now time.Time) (models.Article, *Error) {
	if a.Status != models.ArticleStatusDraft && a.Status != models.ArticleStatusRejected {
		return a, invalidStatus("cannot submit article in status %q", a.Status)
	}
	if !actor.CanActOn(&a) {
		return a, forbidden("only the author or an admin may submit")
	}

	a.Status = models.ArticleStatusInReview
	a.RejectReason = ""
	a.UpdatedAt = now
	return a, nil
}

// WithdrawArticle pulls an in-review article back to draft
func WithdrawArticle(a models.Article, actor models.Actor, now time.Time) (models.Article, *Error) {
	if a.Status != models.ArticleStatusInReview {
		return a, invalidStatus("cannot withdraw article in status %q", a.Status)
	}
	if !actor.CanActOn(&a) {
		return a, forbidden("only the author or an admin may withdraw")
	}

	a.Status = models.ArticleStatusDraft
	a.UpdatedAt = now
	return a, nil
}

// RejectArticle rejects an in-review article. Admin only; a non-blank
// reason is required and stored trimmed.
func RejectArticle(a models.Article, actor models.Actor, reason string, now time.Time) (models.Article, *Error) {
	if a.Status != models.ArticleStatusInReview {
		return a, invalidStatus("cannot reject article in status %q", a.Status)
	}
	if !actor.IsAdmin {
		return a, forbidden("only an admin may reject")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return a, missingReason("a reject reason is required")
	}

	a.Status = models.ArticleStatusRejected
	a.RejectReason = reason
	a.UpdatedAt = now
	return a, nil
}

// PublishArticle moves an in-review article live. Admin only. The
// caller is responsible for slug validation/allocation before
// persisting the result.
func PublishArticle(a models.Article, actor models.Actor, now time.Time) (models.Article, *Error) {
	if a.Status != models.ArticleStatusInReview {
		return a, invalidStatus("cannot publish article in status %q", a.Status)
	}
	if !actor.IsAdmin {
		return a, forbidden("only an admin may publish")
	}

	a.Status = models.ArticleStatusPublished
	a.RejectReason = ""
	a.NeedsRevision = false
	a.PublishedAt = &now
	a.UpdatedAt = now
	return a, nil
}

// UnpublishArticle force-removes a published article from public view.
// Admin only; a reason is required. The article lands in rejected with
// needsRevision set, and publishedAt is cleared.
func UnpublishArticle(a models.Article, actor models.Actor, reason string, now time.Time) (models.Article, *Error) {
	if a.Status != models.ArticleStatusPublished {
		return a, invalidStatus("cannot unpublish article in status %q", a.Status)
	}
	if !actor.IsAdmin {
		return a, forbidden("only an admin may unpublish")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return a, missingReason("an unpublish reason is required")
	}

	a.Status = models.ArticleStatusRejected
	a.RejectReason = reason
	a.NeedsRevision = true
	a.PublishedAt = nil
	a.UpdatedAt = now
	return a, nil
}
