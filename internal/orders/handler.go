package orders

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
	orders := rg.Group("/orders")
	{
		orders.POST("", h.Place)
		orders.POST("/:id/cancel", h.Cancel)
		orders.POST("/:id/confirm", h.Confirm)
		orders.POST("/:id/reject", h.Reject)
		orders.GET("/mine", h.ListMine)
		orders.GET("/received", h.ListReceived)
	}
}

func (h *Handler) Place(c *gin.Context) {
	caller, ok := identity.CallerFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req PlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	order, err := h.service.Place(c.Request.Context(), caller, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *Handler) Cancel(c *gin.Context) {
	caller, orderID, ok := h.callerAndID(c)
	if !ok {
		return
	}

	order, err := h.service.Cancel(c.Request.Context(), caller, orderID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) Confirm(c *gin.Context) {
	caller, orderID, ok := h.callerAndID(c)
	if !ok {
		return
	}

	order, err := h.service.Confirm(c.Request.Context(), caller, orderID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type rejectRequest struct {
	Remarks string `json:"remarks"`
}

func (h *Handler) Reject(c *gin.Context) {
	caller, orderID, ok := h.callerAndID(c)
	if !ok {
		return
	}

	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	order, err := h.service.Reject(c.Request.Context(), caller, orderID, req.Remarks)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) ListMine(c *gin.Context) {
	caller, ok := identity.CallerFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	orders, err := h.service.ListMine(c.Request.Context(), caller)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) ListReceived(c *gin.Context) {
	caller, ok := identity.CallerFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	orders, err := h.service.ListReceived(c.Request.Context(), caller)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) callerAndID(c *gin.Context) (identity.Caller, uuid.UUID, bool) {
	caller, ok := identity.CallerFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return identity.Caller{}, uuid.Nil, false
	}
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return identity.Caller{}, uuid.Nil, false
	}
	return caller, orderID, true
}

func writeError(c *gin.Context, err error) {
	c.JSON(apperrors.HTTPStatus(err), gin.H{"error": apperrors.PublicMessage(err)})
}
