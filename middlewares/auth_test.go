package middlewares

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"medical-app/config"
	"medical-app/models"
	"medical-app/services"
)

func setupAuthTest(t *testing.T) *services.TokenService {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	config.DB = db

	user := models.User{ID: "u-1", Name: "Alice", LastName: "Martin",
		Email: "a@example.com", Password: "x", Role: models.RolePatient}
	require.NoError(t, db.Create(&user).Error)

	return services.NewTokenService("secret", "refresh", time.Minute, time.Hour)
}

func authRouter(tokens *services.TokenService) *gin.Engine {
	r := gin.New()
	r.GET("/whoami", TokenAuthMiddleware(tokens), func(c *gin.Context) {
		user, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"user_id": user.ID})
	})
	return r
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	tokens := setupAuthTest(t)
	r := authRouter(tokens)

	user := models.User{ID: "u-1", Role: models.RolePatient}
	pair, err := tokens.CreateTokenPair(&user)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "u-1")
}

func TestAuthMiddlewareRejections(t *testing.T) {
	tokens := setupAuthTest(t)
	r := authRouter(tokens)

	ghost := models.User{ID: "ghost", Role: models.RolePatient}
	ghostPair, err := tokens.CreateTokenPair(&ghost)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"garbage token", "Bearer not-a-token"},
		{"unknown user", "Bearer " + ghostPair.AccessToken},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	tokens := setupAuthTest(t)

	r := gin.New()
	r.GET("/doctor-only", TokenAuthMiddleware(tokens), RequireRole(models.RoleDoctor),
		func(c *gin.Context) { c.Status(http.StatusOK) })

	patient := models.User{ID: "u-1", Role: models.RolePatient}
	pair, err := tokens.CreateTokenPair(&patient)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/doctor-only", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
