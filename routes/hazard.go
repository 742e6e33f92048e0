package routes

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"campus-hazard-server/database"
	"campus-hazard-server/middleware"
	"campus-hazard-server/models"
	"campus-hazard-server/services"
	ws "campus-hazard-server/websocket"
)

var imageUploader services.ImageUploader

// RegisterHazardRoutes registers hazard lifecycle routes. Staff-only
// operations (full listing, status updates, wiping the table) sit behind
// a role gate; everything else only needs a session.
func RegisterHazardRoutes(rg *gin.RouterGroup, uploader services.ImageUploader) {
	imageUploader = uploader

	rg.POST("/new_hazard", newHazard)
	rg.GET("/fetch_hazard", fetchHazard)
	rg.GET("/fetch_messages", fetchInboxMessages)
	rg.DELETE("/:id", deleteHazard)
	rg.DELETE("/user/:userId", deleteUserHazards)

	staff := rg.Group("")
	staff.Use(middleware.RequireRoles(models.RoleMaintenance, models.RoleAdmin))
	{
		staff.GET("/fetch_all_hazards", fetchAllHazards)
		staff.PUT("/update_status/:id", updateStatus)
		staff.DELETE("", deleteAllHazards)
	}
}

// newHazard creates a hazard from a multipart form with an optional image.
// The image is uploaded first; a failed upload aborts the request before
// any row is written. A failed insert after a successful upload leaves the
// blob behind (accepted risk, not remediated).
func newHazard(c *gin.Context) {
	title := c.PostForm("hazard_title")
	description := c.PostForm("hazard_description")
	isUrgent := c.PostForm("is_urgent") == "true" || c.PostForm("is_urgent") == "1"
	userID := c.PostForm("user_id")

	if title == "" || userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "hazard_title and user_id are required",
			"message": "hazard_title and user_id are required",
		})
		return
	}

	var imageURL *string
	fileHeader, err := c.FormFile("image")
	if err == nil && fileHeader != nil {
		if !services.ValidateImageFile(fileHeader) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid image",
				"message": "Image must be jpg, jpeg, png or webp and at most 5MB",
			})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid image",
				"message": err.Error(),
			})
			return
		}
		defer file.Close()

		url, err := imageUploader.UploadImage(c.Request.Context(), file, fileHeader.Filename)
		if err != nil {
			log.Printf("❌ Image upload failed: %v", err)
			c.JSON(http.StatusBadGateway, gin.H{
				"error":   "Image upload failed",
				"message": err.Error(),
			})
			return
		}
		imageURL = &url
	}

	hazard := models.Hazard{
		HazardTitle:       title,
		HazardDescription: description,
		IsUrgent:          isUrgent,
		ImageURL:          imageURL,
		UserID:            userID,
	}

	if err := database.DB.Create(&hazard).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Hazard creation failed",
			"message": err.Error(),
		})
		return
	}

	// Urgent reports are pushed to every connected client, not just the
	// hazard's thread subscribers
	if hazard.IsUrgent && messageHub != nil {
		messageHub.Broadcast <- &ws.Message{
			Type:      "urgent_hazard",
			HazardID:  hazard.HazardID,
			Content:   hazard.HazardTitle,
			Timestamp: hazard.ReportedTime,
			Data:      hazard,
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Hazard created successfully",
		"hazard":  hazard,
	})
}

// requireHazard loads the hazard a child row is being appended to. Writes
// the failure response itself and reports whether the caller may proceed,
// so thread, audit and feedback rows never reference a missing hazard.
func requireHazard(c *gin.Context, hazardID string) bool {
	var hazard models.Hazard
	if err := database.DB.First(&hazard, "hazard_id = ?", hazardID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Hazard not found",
				"message": "No hazard with that id exists",
			})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to fetch hazard",
				"message": err.Error(),
			})
		}
		return false
	}
	return true
}

// deleteHazardChildren removes the thread, audit and feedback rows tied to
// the given hazards. Runs inside the caller's transaction so a hazard and
// its children disappear together.
func deleteHazardChildren(tx *gorm.DB, hazardIDs []string) error {
	if len(hazardIDs) == 0 {
		return nil
	}
	if err := tx.Delete(&models.Message{}, "hazard_id IN ?", hazardIDs).Error; err != nil {
		return err
	}
	if err := tx.Delete(&models.Action{}, "hazard_id IN ?", hazardIDs).Error; err != nil {
		return err
	}
	return tx.Delete(&models.Feedback{}, "hazard_id IN ?", hazardIDs).Error
}

// fetchHazard lists hazards owned by a user, newest first
func fetchHazard(c *gin.Context) {
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
		Order("reported_time DESC").
		Find(&hazards).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch hazards",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"hazards": hazards})
}

// fetchAllHazards lists every hazard newest first, annotated with the
// reporter's username. Usernames are resolved with one bulk lookup over
// the distinct owner ids, never one query per row.
func fetchAllHazards(c *gin.Context) {
	var hazards []models.Hazard
	if err := database.DB.
		Order("reported_time DESC").
		Find(&hazards).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch hazards",
			"message": err.Error(),
		})
		return
	}

	ownerIDs := make([]string, 0, len(hazards))
	seen := make(map[string]bool, len(hazards))
	for _, h := range hazards {
		if !seen[h.UserID] {
			seen[h.UserID] = true
			ownerIDs = append(ownerIDs, h.UserID)
		}
	}

	usernames := make(map[string]string, len(ownerIDs))
	if len(ownerIDs) > 0 {
		var owners []models.User
		if err := database.DB.Where("id IN ?", ownerIDs).Find(&owners).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to resolve reporters",
				"message": err.Error(),
			})
			return
		}
		for _, u := range owners {
			usernames[u.ID] = u.Username
		}
	}

	annotated := make([]models.HazardWithReporter, 0, len(hazards))
	for _, h := range hazards {
		username, ok := usernames[h.UserID]
		if !ok || username == "" {
			username = "Anonymous"
		}
		annotated = append(annotated, models.HazardWithReporter{Hazard: h, Username: username})
	}

	c.JSON(http.StatusOK, gin.H{"hazards": annotated})
}

// updateStatus sets a hazard's status to the submitted string. Any
// non-empty value is accepted and round-trips unchanged.
func updateStatus(c *gin.Context) {
	hazardID := c.Param("id")

	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "status is required",
			"message": "status is required",
		})
		return
	}

	var hazard models.Hazard
	if err := database.DB.First(&hazard, "hazard_id = ?", hazardID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Hazard not found",
				"message": "No hazard with that id exists",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch hazard",
			"message": err.Error(),
		})
		return
	}

	hazard.Status = req.Status
	if err := database.DB.Model(&hazard).Update("status", req.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update status",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Status updated successfully",
		"hazard":  hazard,
	})
}

// deleteHazard deletes a single hazard by id together with its thread,
// audit log and feedback.
func deleteHazard(c *gin.Context) {
	hazardID := c.Param("id")

	var deleted int64
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := deleteHazardChildren(tx, []string{hazardID}); err != nil {
			return err
		}
		result := tx.Delete(&models.Hazard{}, "hazard_id = ?", hazardID)
		deleted = result.RowsAffected
		return result.Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to delete hazard",
			"message": err.Error(),
		})
		return
	}
	if deleted == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Hazard not found",
			"message": "No hazard with that id exists",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Hazard deleted successfully"})
}

// deleteUserHazards deletes every hazard owned by a user, children included
func deleteUserHazards(c *gin.Context) {
	userID := c.Param("userId")

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var hazardIDs []string
		if err := tx.Model(&models.Hazard{}).
			Where("user_id = ?", userID).
			Pluck("hazard_id", &hazardIDs).Error; err != nil {
			return err
		}
		if err := deleteHazardChildren(tx, hazardIDs); err != nil {
			return err
		}
		return tx.Delete(&models.Hazard{}, "user_id = ?", userID).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to delete hazards",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Hazards deleted for user"})
}

// deleteAllHazards wipes the hazard table and everything hanging off it
func deleteAllHazards(c *gin.Context) {
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&models.Action{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&models.Feedback{}).Error; err != nil {
			return err
		}
		return tx.Where("1 = 1").Delete(&models.Hazard{}).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to delete hazards",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "All hazards deleted"})
}
