package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/textcipher-go/internal/dao"
	"github.com/textcipher-go/internal/errors"
)

// HistoryReader is the read side of the operation log
type HistoryReader interface {
	Recent(limit int) ([]*dao.HistoryEntry, error)
	Get(id string) (*dao.HistoryEntry, bool)
}

// HistoryHandler serves /api/v1/history
type HistoryHandler struct {
	history      HistoryReader
	defaultLimit int
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(history HistoryReader, defaultLimit int) *HistoryHandler {
	return &HistoryHandler{history: history, defaultLimit: defaultLimit}
}

// List handles GET /api/v1/history?limit=N
func (h *HistoryHandler) List(c *gin.Context) {
	limit := h.defaultLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			RespondError(c, errors.NewBadRequest("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	entries, err := h.history.Recent(limit)
	if err != nil {
		RespondError(c, errors.NewInternalWithCause("Failed to read history", err))
		return
	}
	RespondSuccess(c, gin.H{"entries": entries, "count": len(entries)})
}

// Get handles GET /api/v1/history/:id
func (h *HistoryHandler) Get(c *gin.Context) {
	entry, ok := h.history.Get(c.Param("id"))
	if !ok {
		RespondError(c, errors.NewNotFound("history entry not found"))
		return
	}
	RespondSuccess(c, entry)
}
