package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campus-hazard-server/database"
	"campus-hazard-server/middleware"
	"campus-hazard-server/models"
	ws "campus-hazard-server/websocket"
)

var messageHub *ws.Hub

// RegisterMessageRoutes registers the per-hazard message thread routes
func RegisterMessageRoutes(rg *gin.RouterGroup, hub *ws.Hub) {
	messageHub = hub

	rg.GET("/:hazardId/messages", listMessages)
	rg.POST("/:hazardId/messages", sendMessage)
	rg.POST("/:hazardId/messages/mark-read", markMessagesRead)
}

// RegisterMessageFeedRoute registers the live thread feed. WebSocket
// clients authenticate with a token query parameter.
func RegisterMessageFeedRoute(rg *gin.RouterGroup, hub *ws.Hub) {
	rg.GET("/hazards/:hazardId/messages", middleware.WebSocketAuthMiddleware(), func(c *gin.Context) {
		userID := c.GetString("user_id")
		hazardID := c.Param("hazardId")
		ws.ServeThread(hub, c.Writer, c.Request, userID, hazardID)
	})
}

// listMessages returns a hazard's thread in ascending creation order,
// each message annotated with its sender's username. Senders are resolved
// with one bulk lookup over the distinct sender ids.
func listMessages(c *gin.Context) {
	hazardID := c.Param("hazardId")

	var messages []models.Message
	if err := database.DB.
		Where("hazard_id = ?", hazardID).
		Order("created_at ASC").
		Find(&messages).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch messages",
			"message": err.Error(),
		})
		return
	}

	senderIDs := make([]string, 0, len(messages))
	seen := make(map[string]bool, len(messages))
	for _, m := range messages {
		if !seen[m.SenderID] {
			seen[m.SenderID] = true
			senderIDs = append(senderIDs, m.SenderID)
		}
	}

	usernames := make(map[string]string, len(senderIDs))
	if len(senderIDs) > 0 {
		var senders []models.User
		if err := database.DB.Where("id IN ?", senderIDs).Find(&senders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to resolve senders",
				"message": err.Error(),
			})
			return
		}
		for _, u := range senders {
			usernames[u.ID] = u.Username
		}
	}

	thread := make([]models.ThreadMessage, 0, len(messages))
	for _, m := range messages {
		thread = append(thread, models.ThreadMessage{
			Message: m,
			Sender:  models.MessageSender{Username: usernames[m.SenderID]},
		})
	}

	c.JSON(http.StatusOK, thread)
}

// sendMessage appends a message to a hazard's thread and pushes it to
// live subscribers.
func sendMessage(c *gin.Context) {
	hazardID := c.Param("hazardId")

	var req struct {
		Content  string `json:"content"`
		SenderID string `json:"sender_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Content == "" || req.SenderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Message content and sender_id are required",
			"message": "Message content and sender_id are required",
		})
		return
	}

	if !requireHazard(c, hazardID) {
		return
	}

	message := models.Message{
		HazardID: hazardID,
		Content:  req.Content,
		SenderID: req.SenderID,
	}

	if err := database.DB.Create(&message).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to send message",
			"message": err.Error(),
		})
		return
	}

	if messageHub != nil {
		messageHub.SendToThread(hazardID, &ws.Message{
			Type:      "message",
			HazardID:  hazardID,
			SenderID:  req.SenderID,
			Content:   req.Content,
			Timestamp: message.CreatedAt,
			Data:      message,
		}, req.SenderID)
	}

	c.JSON(http.StatusCreated, message)
}

// markMessagesRead flips the read flag on every message in the thread not
// sent by the given user. This feeds the inbox unread count.
func markMessagesRead(c *gin.Context) {
	hazardID := c.Param("hazardId")

	var req struct {
		UserID string `json:"user_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "user_id is required",
			"message": "user_id is required",
		})
		return
	}

	result := database.DB.Model(&models.Message{}).
		Where("hazard_id = ? AND sender_id <> ? AND is_read = ?", hazardID, req.UserID, false).
		Update("is_read", true)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to mark messages as read",
			"message": result.Error.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Messages marked as read",
		"updated": result.RowsAffected,
	})
}

// fetchInboxMessages lists messages on hazards the user owns, newest
// first, each annotated with the hazard title and read flag for the
// notification-style unread count.
func fetchInboxMessages(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "user_id is required",
			"message": "user_id is required",
		})
		return
	}

	var hazards []models.Hazard
	if err := database.DB.
		Where("user_id = ?", userID).
		Find(&hazards).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch hazards",
			"message": err.Error(),
		})
		return
	}

	if len(hazards) == 0 {
		c.JSON(http.StatusOK, gin.H{"messages": []models.InboxMessage{}})
		return
	}

	hazardIDs := make([]string, 0, len(hazards))
	titles := make(map[string]string, len(hazards))
	for _, h := range hazards {
		hazardIDs = append(hazardIDs, h.HazardID)
		titles[h.HazardID] = h.HazardTitle
	}

	var messages []models.Message
	if err := database.DB.
		Where("hazard_id IN ?", hazardIDs).
		Order("created_at DESC").
		Find(&messages).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch messages",
			"message": err.Error(),
		})
		return
	}

	inbox := make([]models.InboxMessage, 0, len(messages))
	for _, m := range messages {
		inbox = append(inbox, models.InboxMessage{
			Message:     m,
			HazardTitle: titles[m.HazardID],
		})
	}

	c.JSON(http.StatusOK, gin.H{"messages": inbox})
}
