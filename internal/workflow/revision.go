package workflow

import (
	"strings"
	"time"

	"github.com/seichi-note/content-api/internal/models"
)

// Revision transitions mirror the article engine. Ownership is
// resolved through the parent article, since revisions carry no author
// of their own.

// SubmitRevision moves a draft or rejected revision into review
func SubmitRevision(r models.ArticleRevision, parent *models.Article, actor models.Actor, now time.Time) (models.ArticleRevision, *Error) {
	if r.Status != models.RevisionStatusDraft && r.Status != models.RevisionStatusRejected {
		return r, invalidStatus("cannot submit revision in status %q", r.Status)
	}
	if !actor.CanActOn(parent) {
		return r, forbidden("only the author or an admin may submit")
	}

	r.Status = models.RevisionStatusInReview
	r.RejectReason = ""
	r.UpdatedAt = now
	return r, nil
}

// WithdrawRevision pulls an in-review revision back to draft
func WithdrawRevision(r models.ArticleRevision, parent *models.Article, actor models.Actor, now time.Time) (models.ArticleRevision, *Error) {
	if r.Status != models.RevisionStatusInReview {
		return r, invalidStatus("cannot withdraw revision in status %q", r.Status)
	}
	if !actor.CanActOn(parent) {
		return r, forbidden("only the author or an admin may withdraw")
	}

	r.Status = models.RevisionStatusDraft
	r.UpdatedAt = now
	return r, nil
}

// RejectRevision rejects an in-review revision. Admin only; reason
// required.
func RejectRevision(r models.ArticleRevision, actor models.Actor, reason string, now time.Time) (models.ArticleRevision, *Error) {
	if r.Status != models.RevisionStatusInReview {
		return r, invalidStatus("cannot reject revision in status %q", r.Status)
	}
	if !actor.IsAdmin {
		return r, forbidden("only an admin may reject")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return r, missingReason("a reject reason is required")
	}

	r.Status = models.RevisionStatusRejected
	r.RejectReason = reason
	r.UpdatedAt = now
	return r, nil
}

// ApproveRevision approves an in-review revision. Admin only, and the
// parent article must currently be published. The caller copies the
// revision fields onto the article, stamps lastApprovedAt, and runs
// the city-link sync in the same transaction.
func ApproveRevision(r models.ArticleRevision, parent *models.Article, actor models.Actor, now time.Time) (models.ArticleRevision, *Error) {
	if r.Status != models.RevisionStatusInReview {
		return r, invalidStatus("cannot approve revision in status %q", r.Status)
	}
	if !actor.IsAdmin {
		return r, forbidden("only an admin may approve")
	}
	if parent == nil || parent.Status != models.ArticleStatusPublished {
		return r, invalidStatus("parent article must be published to approve a revision")
	}

	r.Status = models.RevisionStatusApproved
	r.RejectReason = ""
	r.UpdatedAt = now
	return r, nil
}
