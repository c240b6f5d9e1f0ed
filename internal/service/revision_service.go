package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/seichi-note/content-api/internal/models"
	"github.com/seichi-note/content-api/internal/workflow"
)

// loadRevisionWithParent loads a revision and its parent article
func (s *reviewService) loadRevisionWithParent(ctx context.Context, revisionID string) (*models.ArticleRevision, *models.Article, error) {
	rev, err := s.repos.Revision.FindByID(ctx, revisionID)
	if err != nil {
		return nil, nil, err
	}
	if rev == nil {
		return nil, nil, ErrNotFound
	}
	article, err := s.repos.Article.FindByID(ctx, rev.ArticleID)
	if err != nil {
		return nil, nil, err
	}
	if article == nil {
		return nil, nil, fmt.Errorf("revision %s has no parent article", revisionID)
	}
	return rev, article, nil
}

// GetOrCreateRevision returns the article's active revision, creating
// a fresh snapshot when none exists. Only published articles can open
// a revision cycle, and the call is idempotent until the active
// revision is approved.
func (s *reviewService) GetOrCreateRevision(ctx context.Context, articleID string, actor models.Actor) (*models.ArticleRevision, error) {
	article, err := s.loadArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if !actor.CanActOn(article) {
		return nil, &workflow.Error{Code: workflow.CodeForbidden, Message: "only the author or an admin may open a revision"}
	}
	if article.Status != models.ArticleStatusPublished {
		return nil, &workflow.Error{Code: workflow.CodeInvalidStatus, Message: "revisions exist only for published articles"}
	}

	existing, err := s.repos.Revision.FindActiveByArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	rev := models.NewRevisionFromArticle(uuid.New().String(), article, time.Now())
	if err := s.repos.Revision.Create(ctx, rev); err != nil {
		return nil, err
	}

	// Seed the revision's city links from the article's current set
	if ids, err := s.repos.City.ListCityIDsByArticle(ctx, articleID); err == nil && len(ids) > 0 {
		if err := s.cities.SetRevisionCityIDs(ctx, rev.ID, ids); err != nil {
			s.log.Warn().Err(err).Str("revision_id", rev.ID).Msg("Failed to seed revision city links")
		}
	}

	s.log.Info().Str("article_id", articleID).Str("revision_id", rev.ID).Msg("Revision opened")
	return rev, nil
}

// UpdateRevisionDraft mutates the editable fields of a draft or
// rejected revision
func (s *reviewService) UpdateRevisionDraft(ctx context.Context, revisionID string, actor models.Actor, in *DraftInput) (*models.ArticleRevision, error) {
	rev, article, err := s.loadRevisionWithParent(ctx, revisionID)
	if err != nil {
		return nil, err
	}
	if !actor.CanActOn(article) {
		return nil, &workflow.Error{Code: workflow.CodeForbidden, Message: "only the author or an admin may edit"}
	}
	if rev.Status != models.RevisionStatusDraft && rev.Status != models.RevisionStatusRejected {
		return nil, &workflow.Error{Code: workflow.CodeInvalidStatus, Message: fmt.Sprintf("cannot edit revision in status %q", rev.Status)}
	}

	rev.Title = in.Title
	rev.AnimeIDs = in.AnimeIDs
	rev.City = in.City
	rev.Tags = in.Tags
	rev.ContentJSON = in.ContentJSON
	rev.ContentHTML = s.renderer.HTMLFromJSON(in.ContentJSON)
	rev.Cover = in.Cover

	if err := s.repos.Revision.UpdateDraft(ctx, rev); err != nil {
		return nil, err
	}

	if err := s.cities.SetRevisionCityIDs(ctx, rev.ID, in.CityIDs); err != nil {
		s.log.Warn().Err(err).Str("revision_id", rev.ID).Msg("Failed to update revision city links")
	}

	return rev, nil
}

// SubmitRevision moves a revision into review after the
// content-quality gates pass
func (s *reviewService) SubmitRevision(ctx context.Context, revisionID string, actor models.Actor) (*models.ArticleRevision, error) {
	rev, article, err := s.loadRevisionWithParent(ctx, revisionID)
	if err != nil {
		return nil, err
	}

	if issues := workflow.ValidateRevisionForSubmit(rev, s.cfg.Content.MinBodyChars); len(issues) > 0 {
		return nil, &ValidationFailedError{Issues: issues}
	}

	updated, werr := workflow.SubmitRevision(*rev, article, actor, time.Now())
	if werr != nil {
		return nil, werr
	}
	if err := s.repos.Revision.UpdateState(ctx, &updated); err != nil {
		return nil, err
	}

	s.log.Info().Str("revision_id", revisionID).Msg("Revision submitted for review")
	return &updated, nil
}

// WithdrawRevision pulls an in-review revision back to draft
func (s *reviewService) WithdrawRevision(ctx context.Context, revisionID string, actor models.Actor) (*models.ArticleRevision, error) {
	rev, article, err := s.loadRevisionWithParent(ctx, revisionID)
	if err != nil {
		return nil, err
	}

	updated, werr := workflow.WithdrawRevision(*rev, article, actor, time.Now())
	if werr != nil {
		return nil, werr
	}
	if err := s.repos.Revision.UpdateState(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// RejectRevision rejects an in-review revision with a reason
func (s *reviewService) RejectRevision(ctx context.Context, revisionID string, actor models.Actor, reason string) (*models.ArticleRevision, error) {
	rev, _, err := s.loadRevisionWithParent(ctx, revisionID)
	if err != nil {
		return nil, err
	}

	updated, werr := workflow.RejectRevision(*rev, actor, reason, time.Now())
	if werr != nil {
		return nil, werr
	}
	if err := s.repos.Revision.UpdateState(ctx, &updated); err != nil {
		return nil, err
	}

	s.log.Info().Str("revision_id", revisionID).Msg("Revision rejected")
	return &updated, nil
}

// ApproveRevision approves an in-review revision, copies its fields
// onto the live article, reconciles city links, and stamps
// lastApprovedAt. The copy and the link replacement happen in one
// repository transaction.
func (s *reviewService) ApproveRevision(ctx context.Context, revisionID string, actor models.Actor) (*models.ArticleRevision, error) {
	rev, article, err := s.loadRevisionWithParent(ctx, revisionID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	updated, werr := workflow.ApproveRevision(*rev, article, actor, now)
	if werr != nil {
		return nil, werr
	}

	cityIDs := s.cities.CityIDsForApproval(ctx, rev)

	updated.ApplyToArticle(article)
	article.LastApprovedAt = &now
	article.UpdatedAt = now

	if err := s.repos.Revision.ApproveAndApply(ctx, &updated, article, cityIDs); err != nil {
		return nil, err
	}

	s.invalidator.Invalidate(ctx, publicPath(article.Language, article.Slug))
	s.log.Info().Str("revision_id", revisionID).Str("article_id", article.ID).Msg("Revision approved")
	return &updated, nil
}
