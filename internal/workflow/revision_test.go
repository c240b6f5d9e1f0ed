package workflow

import (
	"strings"
	"testing"
	"time"

	"github.com/seichi-note/content-api/internal/models"
)

func revisionIn(status models.RevisionStatus) models.ArticleRevision {
	r := models.ArticleRevision{
		ID:        "r1",
		ArticleID: "a1",
		Status:    status,
	}
	if status == models.RevisionStatusRejected {
		r.RejectReason = "previous reason"
	}
	return r
}

func publishedParent() *models.Article {
	return &models.Article{ID: "a1", AuthorID: "u1", Status: models.ArticleStatusPublished}
}

func TestSubmitRevision(t *testing.T) {
	now := time.Now()
	parent := publishedParent()

	for _, from := range []models.RevisionStatus{models.RevisionStatusDraft, models.RevisionStatusRejected} {
		updated, err := SubmitRevision(revisionIn(from), parent, author, now)
		if err != nil {
			t.Fatalf("submit from %s failed: %v", from, err)
		}
		if updated.Status != models.RevisionStatusInReview {
			t.Errorf("expected in_review, got %s", updated.Status)
		}
		if updated.RejectReason != "" {
			t.Errorf("reject reason should be cleared, got %q", updated.RejectReason)
		}
	}

	if _, err := SubmitRevision(revisionIn(models.RevisionStatusInReview), parent, author, now); err == nil || err.Code != CodeInvalidStatus {
		t.Errorf("submit from in_review: expected INVALID_STATUS, got %v", err)
	}
	if _, err := SubmitRevision(revisionIn(models.RevisionStatusApproved), parent, author, now); err == nil || err.Code != CodeInvalidStatus {
		t.Errorf("submit from approved: expected INVALID_STATUS, got %v", err)
	}
	if _, err := SubmitRevision(revisionIn(models.RevisionStatusDraft), parent, stranger, now); err == nil || err.Code != CodeForbidden {
		t.Errorf("submit by stranger: expected FORBIDDEN, got %v", err)
	}
}

func TestWithdrawRevision(t *testing.T) {
	now := time.Now()
	parent := publishedParent()

	updated, err := WithdrawRevision(revisionIn(models.RevisionStatusInReview), parent, author, now)
	if err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}
	if updated.Status != models.RevisionStatusDraft {
		t.Errorf("expected draft, got %s", updated.Status)
	}

	if _, err := WithdrawRevision(revisionIn(models.RevisionStatusDraft), parent, author, now); err == nil || err.Code != CodeInvalidStatus {
		t.Errorf("withdraw from draft: expected INVALID_STATUS, got %v", err)
	}
	if _, err := WithdrawRevision(revisionIn(models.RevisionStatusInReview), parent, stranger, now); err == nil || err.Code != CodeForbidden {
		t.Errorf("withdraw by stranger: expected FORBIDDEN, got %v", err)
	}
}

func TestRejectRevision(t *testing.T) {
	now := time.Now()

	if _, err := RejectRevision(revisionIn(models.RevisionStatusInReview), author, "reason", now); err == nil || err.Code != CodeForbidden {
		t.Errorf("reject by author: expected FORBIDDEN, got %v", err)
	}
	if _, err := RejectRevision(revisionIn(models.RevisionStatusInReview), admin, "  ", now); err == nil || err.Code != CodeMissingReason {
		t.Errorf("blank reason: expected MISSING_REASON, got %v", err)
	}
	if _, err := RejectRevision(revisionIn(models.RevisionStatusDraft), admin, "reason", now); err == nil || err.Code != CodeInvalidStatus {
		t.Errorf("reject from draft: expected INVALID_STATUS, got %v", err)
	}

	updated, err := RejectRevision(revisionIn(models.RevisionStatusInReview), admin, " needs work ", now)
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if updated.Status != models.RevisionStatusRejected || updated.RejectReason != "needs work" {
		t.Errorf("unexpected result %+v", updated)
	}
}

func TestApproveRevision_RequiresPublishedParent(t *testing.T) {
	now := time.Now()
	rev := revisionIn(models.RevisionStatusInReview)

	for _, parentStatus := range []models.ArticleStatus{
		models.ArticleStatusDraft,
		models.ArticleStatusInReview,
		models.ArticleStatusRejected,
	} {
		parent := &models.Article{ID: "a1", AuthorID: "u1", Status: parentStatus}
		if _, err := ApproveRevision(rev, parent, admin, now); err == nil || err.Code != CodeInvalidStatus {
			t.Errorf("approve with %s parent: expected INVALID_STATUS, got %v", parentStatus, err)
		}
	}
	if _, err := ApproveRevision(rev, nil, admin, now); err == nil || err.Code != CodeInvalidStatus {
		t.Errorf("approve with missing parent: expected INVALID_STATUS, got %v", err)
	}

	if _, err := ApproveRevision(rev, publishedParent(), author, now); err == nil || err.Code != CodeForbidden {
		t.Errorf("approve by author: expected FORBIDDEN, got %v", err)
	}

	updated, err := ApproveRevision(rev, publishedParent(), admin, now)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if updated.Status != models.RevisionStatusApproved {
		t.Errorf("expected approved, got %s", updated.Status)
	}
	if updated.IsActive() {
		t.Error("approved revision should no longer be active")
	}
}

func longBody(chars int) string {
	return `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"` +
		strings.Repeat("a", chars) + `"}]}]}`
}

func TestValidateArticleForSubmit(t *testing.T) {
	good := &models.Article{
		Title:       "Hida-Furukawa walking guide",
		AnimeIDs:    []string{"kiminona"},
		ContentJSON: longBody(150),
	}
	if issues := ValidateArticleForSubmit(good, 100); len(issues) != 0 {
		t.Fatalf("expected no issues, got %v", issues)
	}

	cases := []struct {
		name    string
		mutate  func(*models.Article)
		field   string
	}{
		{"empty title", func(a *models.Article) { a.Title = "  " }, "title"},
		{"placeholder title", func(a *models.Article) { a.Title = "Untitled" }, "title"},
		{"placeholder title ja", func(a *models.Article) { a.Title = "無題" }, "title"},
		{"no anime", func(a *models.Article) { a.AnimeIDs = nil }, "anime_ids"},
		{"blank anime ids", func(a *models.Article) { a.AnimeIDs = []string{" ", ""} }, "anime_ids"},
		{"short body", func(a *models.Article) { a.ContentJSON = longBody(50) }, "content"},
		{"empty body", func(a *models.Article) { a.ContentJSON = "" }, "content"},
		{"malformed body", func(a *models.Article) { a.ContentJSON = "{broken" }, "content"},
	}

	for _, c := range cases {
		a := *good
		a.AnimeIDs = append([]string(nil), good.AnimeIDs...)
		c.mutate(&a)

		issues := ValidateArticleForSubmit(&a, 100)
		found := false
		for _, issue := range issues {
			if issue.Field == c.field {
				found = true
			}
		}
		if !found {
			t.Errorf("%s: expected issue on field %q, got %v", c.name, c.field, issues)
		}
	}
}

func TestValidateRevisionForSubmit(t *testing.T) {
	rev := &models.ArticleRevision{
		Title:       "Updated guide",
		AnimeIDs:    []string{"kiminona"},
		ContentJSON: longBody(150),
	}
	if issues := ValidateRevisionForSubmit(rev, 100); len(issues) != 0 {
		t.Fatalf("expected no issues, got %v", issues)
	}

	rev.Title = "new article"
	rev.ContentJSON = longBody(10)
	issues := ValidateRevisionForSubmit(rev, 100)
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %v", issues)
	}
}
