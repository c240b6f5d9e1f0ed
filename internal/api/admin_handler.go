package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/seichi-note/content-api/internal/service"
)

// AdminHandler handles admin-only moderation endpoints. Authorization
// is enforced by the workflow/service layer against fresh state, not
// here; the handlers just pass the actor through.
type AdminHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(services *service.Services, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		services: services,
		log:      log.With().Str("handler", "admin").Logger(),
	}
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

// Reject handles POST /v1/articles/:id/reject
func (h *AdminHandler) Reject(c *gin.Context) {
	var req reasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	article, err := h.services.Review.Reject(c.Request.Context(), c.Param("id"), currentActor(c), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

// Publish handles POST /v1/articles/:id/publish
func (h *AdminHandler) Publish(c *gin.Context) {
	article, err := h.services.Review.Publish(c.Request.Context(), c.Param("id"), currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

// Unpublish handles POST /v1/articles/:id/unpublish
func (h *AdminHandler) Unpublish(c *gin.Context) {
	var req reasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	article, err := h.services.Review.Unpublish(c.Request.Context(), c.Param("id"), currentActor(c), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

// RepairSlug handles PATCH /v1/articles/:id/slug
func (h *AdminHandler) RepairSlug(c *gin.Context) {
	var req struct {
		Slug string `json:"slug"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slug is required"})
		return
	}

	article, err := h.services.Review.RepairSlug(c.Request.Context(), c.Param("id"), req.Slug, currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

// RejectRevision handles POST /v1/revisions/:id/reject
func (h *AdminHandler) RejectRevision(c *gin.Context) {
	var req reasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	rev, err := h.services.Review.RejectRevision(c.Request.Context(), c.Param("id"), currentActor(c), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rev)
}

// ApproveRevision handles POST /v1/revisions/:id/approve
func (h *AdminHandler) ApproveRevision(c *gin.Context) {
	rev, err := h.services.Review.ApproveRevision(c.Request.Context(), c.Param("id"), currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rev)
}

// MergeCities handles POST /v1/cities/:id/merge — absorbs the city in
// the path into the city given in the body
func (h *AdminHandler) MergeCities(c *gin.Context) {
	actor := currentActor(c)
	if !actor.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "only admins may merge cities"})
		return
	}

	var req struct {
		Into string `json:"into"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Into == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "into is required"})
		return
	}

	if err := h.services.Cities.MergeCities(c.Request.Context(), c.Param("id"), req.Into); err != nil {
		h.log.Error().Err(err).Str("from", c.Param("id")).Str("to", req.Into).Msg("City merge failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "merge failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"merged": true})
}
