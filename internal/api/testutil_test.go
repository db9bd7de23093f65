package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/plateful/backend/internal/api"
	"github.com/plateful/backend/internal/models"
	"github.com/plateful/backend/internal/service"
	"github.com/plateful/backend/internal/testhelpers"
)

const testJWTSecret = "test-secret"

func setupTestAPI(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testhelpers.SetupTestDB(t)
	router := gin.New()
	api.SetupAPI(router, db, nil, nil, testJWTSecret)
	return router, db
}

// registerUser creates an account through the auth service and returns a
// bearer token plus the stored user row.
func registerUser(t *testing.T, db *gorm.DB, username string) (string, *models.User) {
	t.Helper()
	authSvc := service.NewAuthService(db, testJWTSecret)
	token, err := authSvc.Register(context.Background(), service.RegisterInput{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: "Test",
		LastName:  "User",
		Password:  "s3cret-pass",
	})
	require.NoError(t, err)

	var user models.User
	require.NoError(t, db.Where("username = ?", username).First(&user).Error)
	return token, &user
}

func doRequest(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out),
		"body: %s", w.Body.String())
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, w.Code, "body: %s", w.Body.String())
}
