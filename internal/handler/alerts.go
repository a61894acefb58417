package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stackpulse/pulse-server/internal/store"
)

// AlertHandler serves the per-user alert rule CRUD endpoints.
type AlertHandler struct {
	store  store.Store
	logger *zap.Logger
}

func NewAlertHandler(st store.Store, logger *zap.Logger) *AlertHandler {
	return &AlertHandler{store: st, logger: logger}
}

// List handles GET /api/users/:address/alerts.
func (h *AlertHandler) List(c *gin.Context) {
	address := c.Param("address")

	alerts, err := h.store.ListAlerts(c.Request.Context(), address)
	if err != nil {
		h.logger.Error("alert list failed", zap.String("address", address), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Processing failed"})
		return
	}
	if alerts == nil {
		alerts = []*store.AlertRule{}
	}

	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

// Create handles POST /api/users/:address/alerts. A missing threshold falls
// back to the default.
func (h *AlertHandler) Create(c *gin.Context) {
	address := c.Param("address")

	var input store.AlertInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if input.Threshold == 0 {
		input.Threshold = store.DefaultAlertThreshold
	}

	alert, err := h.store.CreateAlert(c.Request.Context(), address, input)
	if err != nil {
		h.logger.Error("alert create failed", zap.String("address", address), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Processing failed"})
		return
	}

	h.logger.Info("alert created",
		zap.String("address", address),
		zap.Int64("alert_id", alert.ID),
		zap.String("type", alert.Type))
	c.JSON(http.StatusOK, gin.H{"success": true, "alert": alert})
}

// Update handles PUT /api/users/:address/alerts/:alertId.
func (h *AlertHandler) Update(c *gin.Context) {
	address := c.Param("address")
	id, ok := h.alertID(c)
	if !ok {
		return
	}

	var update store.AlertUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	alert, err := h.store.UpdateAlert(c.Request.Context(), address, id, update)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Alert not found"})
			return
		}
		h.logger.Error("alert update failed",
			zap.String("address", address),
			zap.Int64("alert_id", id),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Processing failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "alert": alert})
}

// Delete handles DELETE /api/users/:address/alerts/:alertId.
func (h *AlertHandler) Delete(c *gin.Context) {
	address := c.Param("address")
	id, ok := h.alertID(c)
	if !ok {
		return
	}

	if err := h.store.DeleteAlert(c.Request.Context(), address, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Alert not found"})
			return
		}
		h.logger.Error("alert delete failed",
			zap.String("address", address),
			zap.Int64("alert_id", id),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Processing failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AlertHandler) alertID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("alertId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid alert id"})
		return 0, false
	}
	return id, true
}
