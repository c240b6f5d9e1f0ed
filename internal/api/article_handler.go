package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/seichi-note/content-api/internal/models"
	"github.com/seichi-note/content-api/internal/repository"
	"github.com/seichi-note/content-api/internal/service"
	"github.com/seichi-note/content-api/internal/slugs"
	"github.com/seichi-note/content-api/internal/workflow"
)

// ArticleHandler handles author-side article and revision endpoints
type ArticleHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewArticleHandler creates a new ArticleHandler
func NewArticleHandler(services *service.Services, log zerolog.Logger) *ArticleHandler {
	return &ArticleHandler{
		services: services,
		log:      log.With().Str("handler", "article").Logger(),
	}
}

// respondError translates domain errors into transport responses
func respondError(c *gin.Context, err error) {
	var vErr *service.ValidationFailedError
	if errors.As(err, &vErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "issues": vErr.Issues})
		return
	}

	var wErr *workflow.Error
	if errors.As(err, &wErr) {
		status := http.StatusConflict
		switch wErr.Code {
		case workflow.CodeForbidden:
			status = http.StatusForbidden
		case workflow.CodeMissingReason:
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": wErr.Message, "code": wErr.Code})
		return
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, repository.ErrSlugExists):
		c.JSON(http.StatusConflict, gin.H{"error": "slug already exists"})
	case errors.Is(err, slugs.ErrExhausted):
		c.JSON(http.StatusConflict, gin.H{"error": "could not allocate a unique slug"})
	case errors.Is(err, service.ErrBadSlug):
		c.JSON(http.StatusBadRequest, gin.H{"error": "slug is malformed or lacks an anime prefix"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// CreateDraft handles POST /v1/articles
func (h *ArticleHandler) CreateDraft(c *gin.Context) {
	var in service.DraftInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	article, err := h.services.Content.CreateDraft(c.Request.Context(), currentActor(c), &in)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create draft")
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, article)
}

// Get handles GET /v1/articles/:id
func (h *ArticleHandler) Get(c *gin.Context) {
	article, err := h.services.Content.GetArticle(c.Request.Context(), c.Param("id"), currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

// List handles GET /v1/articles. Authors see their own articles;
// admins may filter the review queue by status.
func (h *ArticleHandler) List(c *gin.Context) {
	actor := currentActor(c)

	if status := c.Query("status"); status != "" {
		if !actor.IsAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "only admins may list by status"})
			return
		}
		if !models.ValidArticleStatuses[models.ArticleStatus(status)] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		articles, err := h.services.Content.ListByStatus(c.Request.Context(), models.ArticleStatus(status))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"articles": articles})
		return
	}

	articles, err := h.services.Content.ListByAuthor(c.Request.Context(), actor.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"articles": articles})
}

// UpdateDraft handles PUT /v1/articles/:id
func (h *ArticleHandler) UpdateDraft(c *gin.Context) {
	var in service.DraftInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	article, err := h.services.Content.UpdateDraft(c.Request.Context(), c.Param("id"), currentActor(c), &in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

// Delete handles DELETE /v1/articles/:id
func (h *ArticleHandler) Delete(c *gin.Context) {
	if err := h.services.Content.DeleteArticle(c.Request.Context(), c.Param("id"), currentActor(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Submit handles POST /v1/articles/:id/submit
func (h *ArticleHandler) Submit(c *gin.Context) {
	article, err := h.services.Review.Submit(c.Request.Context(), c.Param("id"), currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

// Withdraw handles POST /v1/articles/:id/withdraw
func (h *ArticleHandler) Withdraw(c *gin.Context) {
	article, err := h.services.Review.Withdraw(c.Request.Context(), c.Param("id"), currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

// GetOrCreateRevision handles POST /v1/articles/:id/revision
func (h *ArticleHandler) GetOrCreateRevision(c *gin.Context) {
	rev, err := h.services.Review.GetOrCreateRevision(c.Request.Context(), c.Param("id"), currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rev)
}

// UpdateRevisionDraft handles PUT /v1/revisions/:id
func (h *ArticleHandler) UpdateRevisionDraft(c *gin.Context) {
	var in service.DraftInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	rev, err := h.services.Review.UpdateRevisionDraft(c.Request.Context(), c.Param("id"), currentActor(c), &in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rev)
}

// SubmitRevision handles POST /v1/revisions/:id/submit
func (h *ArticleHandler) SubmitRevision(c *gin.Context) {
	rev, err := h.services.Review.SubmitRevision(c.Request.Context(), c.Param("id"), currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rev)
}

// WithdrawRevision handles POST /v1/revisions/:id/withdraw
func (h *ArticleHandler) WithdrawRevision(c *gin.Context) {
	rev, err := h.services.Review.WithdrawRevision(c.Request.Context(), c.Param("id"), currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rev)
}
