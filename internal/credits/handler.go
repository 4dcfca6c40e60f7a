package credits

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"carbon-connect/marketplace-backend/internal/identity"
	"carbon-connect/marketplace-backend/pkg/apperrors"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	listings := rg.Group("/listings")
	{
		listings.POST("", h.Submit)
		listings.POST("/:id/decision", h.Decide)
		listings.GET("/mine", h.ListMine)
		listings.GET("/pending", h.ListPending)
	}
}

func (h *Handler) Submit(c *gin.Context) {
	caller, ok := identity.CallerFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	listing, err := h.service.Submit(c.Request.Context(), caller, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, listing)
}

type decisionRequest struct {
	Decision Decision `json:"decision"`
	Remarks  string   `json:"remarks"`
}

func (h *Handler) Decide(c *gin.Context) {
	caller, ok := identity.CallerFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid listing id"})
		return
	}

	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	listing, err := h.service.Decide(c.Request.Context(), caller, listingID, req.Decision, req.Remarks)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

func (h *Handler) ListMine(c *gin.Context) {
	caller, ok := identity.CallerFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	listings, err := h.service.ListMine(c.Request.Context(), caller)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, listings)
}

func (h *Handler) ListPending(c *gin.Context) {
	caller, ok := identity.CallerFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	listings, err := h.service.ListPending(c.Request.Context(), caller)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, listings)
}

func writeError(c *gin.Context, err error) {
	c.JSON(apperrors.HTTPStatus(err), gin.H{"error": apperrors.PublicMessage(err)})
}
