package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stackpulse/pulse-server/internal/store"
)

// UserHandler serves the notification preference CRUD endpoints.
type UserHandler struct {
	store  store.Store
	logger *zap.Logger
}

func NewUserHandler(st store.Store, logger *zap.Logger) *UserHandler {
	return &UserHandler{store: st, logger: logger}
}

// Upsert handles POST /api/users. Creates or partially updates a preference
// record; fields omitted from the body keep their stored values.
func (h *UserHandler) Upsert(c *gin.Context) {
	var update store.PreferencesUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if update.Address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Address required"})
		return
	}

	prefs, err := h.store.UpsertPreferences(c.Request.Context(), update)
	if err != nil {
		h.logger.Error("preference upsert failed", zap.String("address", update.Address), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Processing failed"})
		return
	}

	h.logger.Info("preferences saved", zap.String("address", prefs.Address))
	c.JSON(http.StatusOK, gin.H{"success": true, "preferences": prefs})
}

// Get handles GET /api/users/:address.
func (h *UserHandler) Get(c *gin.Context) {
	address := c.Param("address")

	prefs, err := h.store.GetPreferences(c.Request.Context(), address)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.logger.Error("preference lookup failed", zap.String("address", address), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Processing failed"})
		return
	}

	c.JSON(http.StatusOK, prefs)
}

// List handles GET /api/users. Intended for operator dashboards.
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.store.ListPreferences(c.Request.Context())
	if err != nil {
		h.logger.Error("preference list failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Processing failed"})
		return
	}
	if users == nil {
		users = []*store.UserPreferences{}
	}

	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}

// Update handles PUT /api/users/:address. The path address wins over any
// address in the body.
func (h *UserHandler) Update(c *gin.Context) {
	address := c.Param("address")

	if _, err := h.store.GetPreferences(c.Request.Context(), address); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.logger.Error("preference lookup failed", zap.String("address", address), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Processing failed"})
		return
	}

	var update store.PreferencesUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	update.Address = address

	prefs, err := h.store.UpsertPreferences(c.Request.Context(), update)
	if err != nil {
		h.logger.Error("preference update failed", zap.String("address", address), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Processing failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "preferences": prefs})
}

// Delete handles DELETE /api/users/:address.
func (h *UserHandler) Delete(c *gin.Context) {
	address := c.Param("address")

	removed, err := h.store.DeletePreferences(c.Request.Context(), address)
	if err != nil {
		h.logger.Error("preference delete failed", zap.String("address", address), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Processing failed"})
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	h.logger.Info("preferences deleted", zap.String("address", address))
	c.JSON(http.StatusOK, gin.H{"success": true})
}
