package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/warrantly/expiry-notifier/internal/domain/model"
	"github.com/warrantly/expiry-notifier/internal/service"
)

type Handlers struct {
	service *service.ExpiryService
	logger  zerolog.Logger
}

// NewHandlers creates a new instance of Handlers.
func NewHandlers(service *service.ExpiryService, logger *zerolog.Logger) *Handlers {
	return &Handlers{
		service: service,
		logger:  logger.With().Str("layer", "http_handler").Logger(),
	}
}

// RegisterRoutes sets up the routing for the expiry API.
func (h *Handlers) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	{
		api.GET("/owners/:id/expiring", h.GetApproachingDeadlines)
		api.GET("/owners/:id/expiring/count", h.GetApproachingDeadlineCount)
		api.POST("/notifications/share", h.NotifyReceiptShared)
	}
}

// GetApproachingDeadlines serves the owner's current expiring list from the
// scan cache.
func (h *Handlers) GetApproachingDeadlines(c *gin.Context) {
	ownerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid owner ID format"})
		return
	}

	list, err := h.service.GetApproachingDeadlines(c.Request.Context(), ownerID)
	if err != nil {
		h.logger.Error().Err(err).Stringer("owner_id", ownerID).Msg("failed to get approaching deadlines")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to retrieve approaching deadlines"})
		return
	}

	out := make([]PendingNotificationResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toPendingResponse(p))
	}
	c.JSON(http.StatusOK, out)
}

// GetApproachingDeadlineCount serves the count of the owner's expiring list.
func (h *Handlers) GetApproachingDeadlineCount(c *gin.Context) {
	ownerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid owner ID format"})
		return
	}

	count, err := h.service.GetApproachingDeadlineCount(c.Request.Context(), ownerID)
	if err != nil {
		h.logger.Error().Err(err).Stringer("owner_id", ownerID).Msg("failed to count approaching deadlines")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to count approaching deadlines"})
		return
	}

	c.JSON(http.StatusOK, CountResponse{Count: count})
}

// NotifyReceiptShared dispatches a receipt-shared notification to the share
// target. Called by the receipt CRUD collaborator at share time.
func (h *Handlers) NotifyReceiptShared(c *gin.Context) {
	var req ShareNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn().Err(err).Msg("invalid request body")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	pref := model.RecipientPreference{
		Channel:       model.Channel(req.Recipient.Channel),
		Email:         req.Recipient.Email,
		Phone:         req.Recipient.Phone,
		PhoneVerified: req.Recipient.PhoneVerified,
	}

	err := h.service.NotifyReceiptShared(c.Request.Context(), req.Recipient.RecipientID, pref, req.RecordID, req.Label, req.Note)
	if err != nil {
		if errors.Is(err, service.ErrNoUsableChannel) {
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
			return
		}
		h.logger.Error().Err(err).Stringer("record_id", req.RecordID).Msg("failed to send share notification")
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "failed to send share notification"})
		return
	}

	c.Status(http.StatusAccepted)
}

// toPendingResponse maps the domain model to the DTO.
func toPendingResponse(p model.PendingNotification) PendingNotificationResponse {
	return PendingNotificationResponse{
		RecordID:      p.RecordID,
		RecipientID:   p.RecipientID,
		Label:         p.Label,
		Deadline:      p.Deadline,
		DaysRemaining: p.DaysRemaining,
	}
}
