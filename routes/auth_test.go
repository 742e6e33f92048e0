package routes

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-hazard-server/database"
	"campus-hazard-server/models"
)

func TestSignupThenLogin(t *testing.T) {
	router := setupRouter(t, defaultStub())

	w := doJSON(router, http.MethodPost, "/api/auth/signup", "", []byte(`{
		"email": "ana@campus.test",
		"password": "hunter22",
		"username": "ana"
	}`))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var signupResp struct {
		Status string      `json:"status"`
		User   models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &signupResp))
	assert.Equal(t, "success", signupResp.Status)
	assert.Equal(t, "ana", signupResp.User.Username)
	assert.Equal(t, models.RoleStudent, signupResp.User.Role)
	assert.NotEmpty(t, signupResp.User.ID)

	// Immediate login with the same credentials
	w = doJSON(router, http.MethodPost, "/api/auth/login", "", []byte(`{
		"email": "ana@campus.test",
		"password": "hunter22"
	}`))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var loginResp struct {
		Status string `json:"status"`
		User   struct {
			ID      string       `json:"id"`
			Email   string       `json:"email"`
			Profile *models.User `json:"profile"`
		} `json:"user"`
		Session struct {
			AccessToken string `json:"access_token"`
		} `json:"session"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loginResp))
	assert.Equal(t, "success", loginResp.Status)
	assert.Equal(t, signupResp.User.ID, loginResp.User.ID)
	require.NotNil(t, loginResp.User.Profile)
	assert.Equal(t, "ana", loginResp.User.Profile.Username)
	assert.Equal(t, models.RoleStudent, loginResp.User.Profile.Role)
	assert.NotEmpty(t, loginResp.Session.AccessToken)
}

func TestSignupWithRole(t *testing.T) {
	router := setupRouter(t, defaultStub())

	w := doJSON(router, http.MethodPost, "/api/auth/signup", "", []byte(`{
		"email": "facilities@campus.test",
		"password": "hunter22",
		"username": "facilities",
		"role": "maintenance"
	}`))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var user models.User
	require.NoError(t, database.DB.First(&user, "username = ?", "facilities").Error)
	assert.Equal(t, models.RoleMaintenance, user.Role)
}

func TestSignupDuplicateEmail(t *testing.T) {
	router := setupRouter(t, defaultStub())

	body := []byte(`{"email": "dup@campus.test", "password": "hunter22", "username": "dup"}`)
	w := doJSON(router, http.MethodPost, "/api/auth/signup", "", body)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodPost, "/api/auth/signup", "", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSignupMissingFields(t *testing.T) {
	router := setupRouter(t, defaultStub())

	w := doJSON(router, http.MethodPost, "/api/auth/signup", "", []byte(`{"email": "x@campus.test"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	database.DB.Model(&models.Identity{}).Count(&count)
	assert.Zero(t, count)
}

func TestLoginBadCredentials(t *testing.T) {
	router := setupRouter(t, defaultStub())

	w := doJSON(router, http.MethodPost, "/api/auth/signup", "", []byte(`{
		"email": "bo@campus.test", "password": "hunter22", "username": "bo"
	}`))
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodPost, "/api/auth/login", "", []byte(`{
		"email": "bo@campus.test", "password": "wrong-password"
	}`))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, http.MethodPost, "/api/auth/login", "", []byte(`{
		"email": "nobody@campus.test", "password": "hunter22"
	}`))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
