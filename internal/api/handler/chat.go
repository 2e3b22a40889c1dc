package handler

import (
	"log"
	"net/http"
	"strconv"

	"chatwave/backend/internal/chathub"
	"chatwave/backend/internal/models"

	"github.com/gin-gonic/gin"
)

type pagedMessage struct {
	models.Message
	IsMine bool `json:"isMine"`
}

// GetMessages returns one page of a conversation's history, newest
// first. Only the two participants may read it; everyone else gets an
// authorization error and no data. Fetching also marks the caller's
// pending messages in that room delivered, matching what the live
// socket path does on join.
func (h *Handler) GetMessages(c *gin.Context) {
	userID := c.GetString(contextUserKey)
	senderID := c.Query("senderId")
	receiverID := c.Query("receiverId")

	if senderID == "" || receiverID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "senderId and receiverId are required"})
		return
	}
	if userID != senderID && userID != receiverID {
		c.JSON(http.StatusForbidden, gin.H{"message": "Unauthorized: You cannot view this chat."})
		return
	}

	partnerID := senderID
	if partnerID == userID {
		partnerID = receiverID
	}

	if _, err := h.Store.MarkConversationDelivered(userID, partnerID); err != nil {
		log.Printf("ERROR: failed to mark conversation delivered for %s: %v", userID, err)
	}

	page := intQuery(c, "page", 1)
	limit := intQuery(c, "limit", 20)
	msgs, err := h.Store.MessagesByRoomPaged(chathub.RoomKey(senderID, receiverID), page, limit)
	if err != nil {
		log.Printf("ERROR: failed to fetch messages: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error Fetching Messages"})
		return
	}

	out := make([]pagedMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, pagedMessage{Message: m, IsMine: m.SenderID == userID})
	}
	c.JSON(http.StatusOK, out)
}

// GetChatRooms returns the caller's conversation list, most recently
// active first.
func (h *Handler) GetChatRooms(c *gin.Context) {
	rooms, err := h.Store.ChatRoomSummaries(c.GetString(contextUserKey))
	if err != nil {
		log.Printf("ERROR: failed to fetch chat rooms: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error Fetching Chats"})
		return
	}
	c.JSON(http.StatusOK, rooms)
}

func intQuery(c *gin.Context, key string, fallback int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
