package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nutridex/backend/internal/domain"
	"github.com/nutridex/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	search    *usecase.SearchService
	community *usecase.CommunityService
	diary     *usecase.DiaryService
}

// NewHandler creates a new HTTP handler
func NewHandler(search *usecase.SearchService, community *usecase.CommunityService, diary *usecase.DiaryService) *Handler {
	return &Handler{
		search:    search,
		community: community,
		diary:     diary,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "nutridex-backend",
		"version": "1.0.0",
	})
}

// ResolveBarcode handles GET /products/:code
func (h *Handler) ResolveBarcode(c *gin.Context) {
	product, err := h.search.ResolveBarcode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// SearchProducts handles GET /products/search?q=...&limit=...
// Total provider failure on a valid query degrades to an empty list.
func (h *Handler) SearchProducts(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, domain.ErrInvalidInput)
			return
		}
		limit = parsed
	}

	results, err := h.search.SearchProducts(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if results == nil {
		results = []domain.NormalizedProduct{}
	}
	c.JSON(http.StatusOK, gin.H{
		"query":    c.Query("q"),
		"count":    len(results),
		"products": results,
	})
}

// SubmitProduct handles POST /community/products
func (h *Handler) SubmitProduct(c *gin.Context) {
	var sub domain.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	sub.Submitter = c.GetString(ctxKeyUserID)

	product, candidates, err := h.community.Submit(c.Request.Context(), &sub)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{
				"error":      err.Error(),
				"candidates": candidates,
			})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// ListCommunityProducts handles GET /community/products?state=...
func (h *Handler) ListCommunityProducts(c *gin.Context) {
	state := domain.ModerationState(c.Query("state"))
	products, err := h.community.List(c.Request.Context(), state)
	if err != nil {
		respondError(c, err)
		return
	}
	if products == nil {
		products = []domain.NormalizedProduct{}
	}
	c.JSON(http.StatusOK, gin.H{
		"count":    len(products),
		"products": products,
	})
}

// GetCommunityProduct handles GET /community/products/:code
func (h *Handler) GetCommunityProduct(c *gin.Context) {
	product, err := h.community.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// ModerateProduct handles POST /community/products/:code/moderation
func (h *Handler) ModerateProduct(c *gin.Context) {
	var req domain.ModerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	req.Moderator = c.GetString(ctxKeyUserID)
	req.IsModerator = c.GetBool(ctxKeyIsModerator)

	product, err := h.community.Moderate(c.Request.Context(), c.Param("code"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// diaryRequest wraps the diary entries the caller already windowed.
type diaryRequest struct {
	Entries []domain.DiaryEntry `json:"entries"`
}

// SummarizeDiary handles POST /diary/summary
func (h *Handler) SummarizeDiary(c *gin.Context) {
	var req diaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	c.JSON(http.StatusOK, h.diary.Analyze(req.Entries))
}

// respondError maps the error taxonomy onto HTTP status codes.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidTransition):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
