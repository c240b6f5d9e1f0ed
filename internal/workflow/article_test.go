package workflow

import (
	"testing"
	"time"

	"github.com/seichi-note/content-api/internal/models"
)

var (
	author   = models.Actor{UserID: "u1"}
	stranger = models.Actor{UserID: "u2"}
	admin    = models.Actor{UserID: "mod", IsAdmin: true}
)

func articleIn(status models.ArticleStatus) models.Article {
	a := models.Article{
		ID:       "a1",
		AuthorID: "u1",
		Status:   status,
	}
	if status == models.ArticleStatusRejected {
		a.RejectReason = "previous reason"
	}
	if status == models.ArticleStatusPublished {
		now := time.Now()
		a.PublishedAt = &now
	}
	return a
}

// TestArticleTransitionTotality checks that every (status, actor,
// action) triple outside the allowed set fails, and every allowed one
// succeeds.
func TestArticleTransitionTotality(t *testing.T) {
	now := time.Now()
	statuses := []models.ArticleStatus{
		models.ArticleStatusDraft,
		models.ArticleStatusInReview,
		models.ArticleStatusRejected,
		models.ArticleStatusPublished,
	}
	actors := []models.Actor{author, stranger, admin}

	type action struct {
		name string
		run  func(models.Article, models.Actor) *Error
		// statuses the action is legal from
		from map[models.ArticleStatus]bool
		// whether a non-admin author may perform it
		authorAllowed bool
	}

	actions := []action{
		{
			name: "submit",
			run: func(a models.Article, actor models.Actor) *Error {
				_, err := SubmitArticle(a, actor, now)
				return err
			},
			from:          map[models.ArticleStatus]bool{models.ArticleStatusDraft: true, models.ArticleStatusRejected: true},
			authorAllowed: true,
		},
		{
			name: "withdraw",
			run: func(a models.Article, actor models.Actor) *Error {
				_, err := WithdrawArticle(a, actor, now)
				return err
			},
			from:          map[models.ArticleStatus]bool{models.ArticleStatusInReview: true},
			authorAllowed: true,
		},
		{
			name: "reject",
			run: func(a models.Article, actor models.Actor) *Error {
				_, err := RejectArticle(a, actor, "reason", now)
				return err
			},
			from: map[models.ArticleStatus]bool{models.ArticleStatusInReview: true},
		},
		{
			name: "publish",
			run: func(a models.Article, actor models.Actor) *Error {
				_, err := PublishArticle(a, actor, now)
				return err
			},
			from: map[models.ArticleStatus]bool{models.ArticleStatusInReview: true},
		},
		{
			name: "unpublish",
			run: func(a models.Article, actor models.Actor) *Error {
				_, err := UnpublishArticle(a, actor, "reason", now)
				return err
			},
			from: map[models.ArticleStatus]bool{models.ArticleStatusPublished: true},
		},
	}

	for _, act := range actions {
		for _, status := range statuses {
			for _, actor := range actors {
				err := act.run(articleIn(status), actor)

				allowed := act.from[status] &&
					(actor.IsAdmin || (act.authorAllowed && actor.UserID == "u1"))

				if allowed && err != nil {
					t.Errorf("%s from %s by %s: expected success, got %v", act.name, status, actor.UserID, err)
				}
				if !allowed && err == nil {
					t.Errorf("%s from %s by %s: expected error, got success", act.name, status, actor.UserID)
				}

				// Wrong-state failures report INVALID_STATUS; wrong-actor
				// failures from a legal state report FORBIDDEN
				if err != nil {
					if !act.from[status] && err.Code != CodeInvalidStatus {
						t.Errorf("%s from %s: expected INVALID_STATUS, got %s", act.name, status, err.Code)
					}
					if act.from[status] && err.Code != CodeForbidden {
						t.Errorf("%s from %s by %s: expected FORBIDDEN, got %s", act.name, status, actor.UserID, err.Code)
					}
				}
			}
		}
	}
}

func TestSubmitClearsRejectReason(t *testing.T) {
	a := articleIn(models.ArticleStatusRejected)

	updated, err := SubmitArticle(a, author, time.Now())
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if updated.Status != models.ArticleStatusInReview {
		t.Errorf("expected in_review, got %s", updated.Status)
	}
	if updated.RejectReason != "" {
		t.Errorf("reject reason should be cleared, got %q", updated.RejectReason)
	}
}

func TestRejectReasonRequired(t *testing.T) {
	for _, reason := range []string{"", "   ", "\t\n"} {
		_, err := RejectArticle(articleIn(models.ArticleStatusInReview), admin, reason, time.Now())
		if err == nil || err.Code != CodeMissingReason {
			t.Errorf("blank reason %q: expected MISSING_REASON, got %v", reason, err)
		}
	}

	updated, err := RejectArticle(articleIn(models.ArticleStatusInReview), admin, "  too short  ", time.Now())
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if updated.RejectReason != "too short" {
		t.Errorf("reason should be trimmed, got %q", updated.RejectReason)
	}
}

func TestUnpublishSetsNeedsRevisionAndClearsPublishedAt(t *testing.T) {
	a := articleIn(models.ArticleStatusPublished)

	// Reason is required here too
	if _, err := UnpublishArticle(a, admin, "  ", time.Now()); err == nil || err.Code != CodeMissingReason {
		t.Fatalf("expected MISSING_REASON, got %v", err)
	}

	updated, err := UnpublishArticle(a, admin, "broken images", time.Now())
	if err != nil {
		t.Fatalf("unpublish failed: %v", err)
	}
	if updated.Status != models.ArticleStatusRejected {
		t.Errorf("expected rejected, got %s", updated.Status)
	}
	if !updated.NeedsRevision {
		t.Error("needsRevision should be set")
	}
	if updated.PublishedAt != nil {
		t.Error("publishedAt should be cleared")
	}
	if updated.RejectReason != "broken images" {
		t.Errorf("unexpected reason %q", updated.RejectReason)
	}
}

func TestPublishStampsPublishedAt(t *testing.T) {
	now := time.Now()

	updated, err := PublishArticle(articleIn(models.ArticleStatusInReview), admin, now)
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if updated.Status != models.ArticleStatusPublished {
		t.Errorf("expected published, got %s", updated.Status)
	}
	if updated.PublishedAt == nil || !updated.PublishedAt.Equal(now) {
		t.Errorf("publishedAt not stamped: %v", updated.PublishedAt)
	}
	if updated.NeedsRevision {
		t.Error("needsRevision should be cleared on publish")
	}
}

// TestResubmitScenario walks the documented submit → reject → resubmit
// cycle end to end
func TestResubmitScenario(t *testing.T) {
	now := time.Now()
	a := models.Article{ID: "a1", AuthorID: "u1", Status: models.ArticleStatusDraft}

	a, err := SubmitArticle(a, author, now)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if a.Status != models.ArticleStatusInReview || a.RejectReason != "" {
		t.Fatalf("after submit: %+v", a)
	}

	a, err = RejectArticle(a, admin, "too short", now)
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if a.Status != models.ArticleStatusRejected || a.RejectReason != "too short" {
		t.Fatalf("after reject: %+v", a)
	}

	a, err = SubmitArticle(a, author, now)
	if err != nil {
		t.Fatalf("resubmit failed: %v", err)
	}
	if a.Status != models.ArticleStatusInReview || a.RejectReason != "" {
		t.Fatalf("after resubmit: %+v", a)
	}
}
