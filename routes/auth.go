package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"campus-hazard-server/database"
	"campus-hazard-server/models"
	"campus-hazard-server/utils"
)

// SignupRequest represents the signup request
type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Username string `json:"username" binding:"required"`
	Role     string `json:"role"`
}

// LoginRequest represents the login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterAuthRoutes registers authentication routes
func RegisterAuthRoutes(router *gin.RouterGroup) {
	router.POST("/signup", signUp)
	router.POST("/login", logIn)
}

// signUp creates a credential identity and its matching profile row. The
// two inserts run in one transaction so a failed profile insert never
// leaves an orphaned identity behind.
func signUp(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"message": err.Error(),
		})
		return
	}

	role := models.UserRole(req.Role)
	if role == "" {
		role = models.RoleStudent
	}
	user := models.User{Username: req.Username, Email: req.Email, Role: role}
	if !user.IsValidRole() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid role",
			"message": "Role must be one of: student, maintenance, admin",
		})
		return
	}

	var existing models.Identity
	if err := database.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "User already exists",
			"message": "An account with this email already exists",
		})
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Password hashing failed",
			"message": "Failed to process password",
		})
		return
	}

	identity := models.Identity{Email: req.Email, PasswordHash: hashedPassword}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&identity).Error; err != nil {
			return err
		}
		user.ID = identity.ID
		return tx.Create(&user).Error
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "User creation failed",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "User created",
		"user":    user,
	})
}

// logIn verifies credentials and returns the identity merged with its
// profile plus a session token. A missing profile row is tolerated.
func logIn(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"message": err.Error(),
		})
		return
	}

	var identity models.Identity
	if err := database.DB.Where("email = ?", req.Email).First(&identity).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Authentication failed",
			"message": "Invalid email or password",
		})
		return
	}

	if !utils.CheckPasswordHash(req.Password, identity.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Authentication failed",
			"message": "Invalid email or password",
		})
		return
	}

	var profile *models.User
	var found models.User
	err := database.DB.First(&found, "id = ?", identity.ID).Error
	switch {
	case err == nil:
		profile = &found
	case err == gorm.ErrRecordNotFound:
		// Identity without a profile row; login still succeeds
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Profile lookup failed",
			"message": err.Error(),
		})
		return
	}

	role := ""
	if profile != nil {
		role = string(profile.Role)
	}
	token, err := utils.GenerateToken(identity.ID, role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Token generation failed",
			"message": "Failed to generate authentication token",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Login successful",
		"user": gin.H{
			"id":      identity.ID,
			"email":   identity.Email,
			"profile": profile,
		},
		"session": gin.H{
			"access_token": token,
			"token_type":   "bearer",
		},
	})
}
