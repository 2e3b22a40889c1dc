package handler

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetCallHistory returns one page of the caller's call log, newest
// first.
func (h *Handler) GetCallHistory(c *gin.Context) {
	userID := c.GetString(contextUserKey)
	page := intQuery(c, "page", 1)
	limit := intQuery(c, "limit", 20)

	calls, err := h.Store.CallHistory(userID, page, limit)
	if err != nil {
		log.Printf("ERROR: failed to fetch call history for %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error Fetching Call History"})
		return
	}
	c.JSON(http.StatusOK, calls)
}

// ClearCallHistory permanently deletes the caller's outgoing call
// records.
func (h *Handler) ClearCallHistory(c *gin.Context) {
	userID := c.GetString(contextUserKey)

	deleted, err := h.Store.ClearCallerHistory(userID)
	if err != nil {
		log.Printf("ERROR: failed to clear call history for %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error Clearing Call History"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"deletedCount": deleted,
		"message":      fmt.Sprintf("Successfully deleted %d outgoing calls.", deleted),
	})
}
