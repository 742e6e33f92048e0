package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campus-hazard-server/database"
	"campus-hazard-server/models"
)

// RegisterFeedbackRoutes registers the hazard-scoped feedback routes
func RegisterFeedbackRoutes(rg *gin.RouterGroup) {
	rg.GET("/:hazardId/feedback", listFeedback)
	rg.POST("/:hazardId/feedback", appendFeedback)
}

// listFeedback returns the feedback rows for a hazard
func listFeedback(c *gin.Context) {
	hazardID := c.Param("hazardId")

	var feedback []models.Feedback
	if err := database.DB.
		Where("hazard_id = ?", hazardID).
		Order("created_at ASC").
		Find(&feedback).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch feedback",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, feedback)
}

// appendFeedback records a rating plus optional comment against a hazard.
// Rating presence is validated; its numeric range is not.
func appendFeedback(c *gin.Context) {
	hazardID := c.Param("hazardId")

	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
		UserID  string `json:"user_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Rating == 0 || req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "rating and user_id are required",
			"message": "rating and user_id are required",
		})
		return
	}

	if !requireHazard(c, hazardID) {
		return
	}

	feedback := models.Feedback{
		HazardID: hazardID,
		Rating:   req.Rating,
		Comment:  req.Comment,
		UserID:   req.UserID,
	}

	if err := database.DB.Create(&feedback).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create feedback",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, feedback)
}
