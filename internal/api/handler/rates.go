package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/kedr891/metal-rates-service/internal/api/service"
	"github.com/kedr891/metal-rates-service/internal/domain"
	"github.com/kedr891/metal-rates-service/internal/entity"
	"github.com/kedr891/metal-rates-service/internal/sse"
)

// RateHandler - HTTP-обработчики операций с курсами металлов
type RateHandler struct {
	service *service.RateService
	hub     *sse.Hub
	log     domain.Logger
	v       *validator.Validate
}

func NewRateHandler(service *service.RateService, hub *sse.Hub, log domain.Logger) *RateHandler {
	return &RateHandler{
		service: service,
		hub:     hub,
		log:     log,
		v:       validator.New(validator.WithRequiredStructEnabled()),
	}
}

// UpdateMetalRate - сменить курс металла
// @Summary Update metal rate
// @Tags rates
// @Param request body entity.RateUpdateRequest true "Metal type and new per-gram rate"
// @Success 200 {object} entity.RateUpdateResult
// @Router /api/v1/admin/metal-rates [post]
func (h *RateHandler) UpdateMetalRate(c *gin.Context) {
	var req entity.RateUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.v.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			switch fieldErrs[0].Field() {
			case "MetalType":
				c.JSON(http.StatusBadRequest, gin.H{"error": "metalType is required"})
			default:
				c.JSON(http.StatusBadRequest, gin.H{"error": "newRate must be a positive number"})
			}
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.UpdateMetalRate(c.Request.Context(), req.MetalType, req.NewRate)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, entity.ErrNoProducts):
			c.JSON(http.StatusNotFound, gin.H{"error": "no products found for metal type"})
		default:
			h.log.Error("Failed to update metal rate",
				"metal_type", req.MetalType, "new_rate", req.NewRate, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update metal rate"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetRatesSummary - публичная сводка курсов
// @Summary Get metal rates summary
// @Tags rates
// @Success 200 {object} entity.MetalRateSummary
// @Router /api/v1/metal-rates [get]
func (h *RateHandler) GetRatesSummary(c *gin.Context) {
	summary, err := h.service.GetRatesSummary(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to get rates summary", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get rates summary"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// StreamRateUpdates - долгоживущая подписка на смены курсов (SSE).
// Сразу после открытия подписчику уходит событие connected, дальше -
// metal_price_updated по мере смен курса. Соединение живёт до отключения
// клиента; отключение снимает подписчика с реестра.
// @Summary Subscribe to metal rate updates
// @Tags rates
// @Router /api/v1/admin/metal-rates/stream [get]
func (h *RateHandler) StreamRateUpdates(c *gin.Context) {
	client, err := h.hub.Register()
	if err != nil {
		if errors.Is(err, sse.ErrHubFull) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "subscriber limit reached"})
			return
		}
		h.log.Error("Failed to register SSE client", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to subscribe"})
		return
	}
	defer h.hub.Unregister(client)

	h.hub.ServeHTTP(c.Writer, c.Request, client)
}
