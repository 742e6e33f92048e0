package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campus-hazard-server/database"
	"campus-hazard-server/middleware"
	"campus-hazard-server/models"
)

// RegisterActionRoutes registers the audit-log routes for a hazard.
// Appending is restricted to staff; the log itself is readable by anyone
// with a session.
func RegisterActionRoutes(rg *gin.RouterGroup) {
	rg.GET("/:hazardId/actions", listActions)
	rg.POST("/:hazardId/actions",
		middleware.RequireRoles(models.RoleMaintenance, models.RoleAdmin),
		appendAction)
}

// listActions returns the action rows for a hazard in insertion order
func listActions(c *gin.Context) {
	hazardID := c.Param("hazardId")

	var actions []models.Action
	if err := database.DB.
		Where("hazard_id = ?", hazardID).
		Order("created_at ASC").
		Find(&actions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch actions",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, actions)
}

// appendAction appends an immutable audit entry to a hazard's log
func appendAction(c *gin.Context) {
	hazardID := c.Param("hazardId")

	var req struct {
		Description string `json:"description"`
		StaffID     string `json:"staff_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Description == "" || req.StaffID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "description and staff_id are required",
			"message": "description and staff_id are required",
		})
		return
	}

	if !requireHazard(c, hazardID) {
		return
	}

	action := models.Action{
		HazardID:    hazardID,
		Description: req.Description,
		StaffID:     req.StaffID,
	}

	if err := database.DB.Create(&action).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create action",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, action)
}
