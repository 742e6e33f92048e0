package routes

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"campus-hazard-server/config"
	"campus-hazard-server/database"
	"campus-hazard-server/middleware"
	"campus-hazard-server/models"
	"campus-hazard-server/utils"
	ws "campus-hazard-server/websocket"
)

// stubUploader stands in for Cloudinary in handler tests
type stubUploader struct {
	url string
	err error
}

func (s *stubUploader) UploadImage(ctx context.Context, file io.Reader, originalFilename string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.url, nil
}

var errUploadDown = errors.New("storage unavailable")

// setupRouter wires an in-memory store and the full route tree, mirroring
// main.go minus rate limiting.
func setupRouter(t *testing.T, uploader *stubUploader) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.Load()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A pooled second connection would get its own empty :memory: store
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	database.DB = db

	hub := ws.NewHub()
	go hub.Run()

	router := gin.New()
	api := router.Group("/api")

	authRoutes := api.Group("/auth")
	RegisterAuthRoutes(authRoutes)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())

	hazardRoutes := protected.Group("/hazard")
	RegisterHazardRoutes(hazardRoutes, uploader)

	hazardScoped := protected.Group("/hazards")
	RegisterActionRoutes(hazardScoped)
	RegisterFeedbackRoutes(hazardScoped)
	RegisterMessageRoutes(hazardScoped, hub)

	return router
}

func defaultStub() *stubUploader {
	return &stubUploader{url: "https://res.example.com/hazards/generated.jpg"}
}

// createTestUser inserts an identity+profile pair and returns the profile
// with a valid session token.
func createTestUser(t *testing.T, username string, role models.UserRole) (models.User, string) {
	t.Helper()

	hash, err := utils.HashPassword("secret-password")
	require.NoError(t, err)

	identity := models.Identity{Email: username + "@campus.test", PasswordHash: hash}
	require.NoError(t, database.DB.Create(&identity).Error)

	user := models.User{ID: identity.ID, Username: username, Email: identity.Email, Role: role}
	require.NoError(t, database.DB.Create(&user).Error)

	token, err := utils.GenerateToken(user.ID, string(user.Role))
	require.NoError(t, err)

	return user, token
}

func doJSON(router *gin.Engine, method, path, token string, body []byte) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// hazardForm builds a multipart body for the new_hazard endpoint
func hazardForm(t *testing.T, fields map[string]string, imageName string, imageBytes []byte) (*bytes.Buffer, string) {
	t.Helper()

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if imageName != "" {
		fw, err := mw.CreateFormFile("image", imageName)
		require.NoError(t, err)
		_, err = fw.Write(imageBytes)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func doMultipart(router *gin.Engine, path, token string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
