package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"regexp"
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

var codePattern = regexp.MustCompile(`\b\d{6}\b`)

type authTestEnv struct {
	router   *gin.Engine
	lastMail *string
}

func setupAuthControllerTest(t *testing.T) *authTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	config.DB = db

	lastMail := new(string)
	mailSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		*lastMail = string(raw)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(mailSrv.Close)

	tokens := services.NewTokenService("secret", "refresh", time.Minute, time.Hour)
	mailer := services.NewMailer(mailSrv.URL, "key", "noreply@medicalapp.com")
	auth := NewAuthController(tokens, mailer, 30*time.Minute)

	r := gin.New()
	r.POST("/signup", auth.SignUp)
	r.POST("/login", auth.Login)
	r.POST("/verify", auth.Verify)
	r.POST("/refresh", auth.Refresh)

	return &authTestEnv{router: r, lastMail: lastMail}
}

func (e *authTestEnv) post(t *testing.T, path string, body gin.H) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func patientSignup() gin.H {
	return gin.H{
		"name":             "Alice",
		"last_name":        "Martin",
		"email":            "alice@example.com",
		"password":         "secret-pass",
		"password_confirm": "secret-pass",
		"phone_number":     "+33600000001",
		"gender":           "female",
		"role":             "patient",
		"antecedent":       "none",
	}
}

func TestSignupVerifyLoginFlow(t *testing.T) {
	env := setupAuthControllerTest(t)

	w := env.post(t, "/signup", patientSignup())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// The activation code only leaves the server by mail.
	code := codePattern.FindString(*env.lastMail)
	require.NotEmpty(t, code)

	// Login before activation is refused.
	w = env.post(t, "/login", gin.H{"email": "alice@example.com", "password": "secret-pass"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.post(t, "/verify", gin.H{"email": "alice@example.com", "code": code})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.post(t, "/login", gin.H{"email": "alice@example.com", "password": "secret-pass"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Token        string `json:"token"`
			RefreshToken string `json:"refresh_token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Data.Token)
	assert.NotEmpty(t, resp.Data.RefreshToken)

	// Refresh rotates the pair.
	w = env.post(t, "/refresh", gin.H{"refresh_token": resp.Data.RefreshToken})
	assert.Equal(t, http.StatusOK, w.Code)

	// The old refresh token was revoked by the rotation.
	w = env.post(t, "/refresh", gin.H{"refresh_token": resp.Data.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSignupValidation(t *testing.T) {
	env := setupAuthControllerTest(t)

	body := patientSignup()
	body["password_confirm"] = "different"
	w := env.post(t, "/signup", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body = patientSignup()
	delete(body, "antecedent")
	w = env.post(t, "/signup", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body = patientSignup()
	body["role"] = "doctor"
	w = env.post(t, "/signup", body)
	// doctors must provide a speciality
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body = patientSignup()
	body["role"] = "wizard"
	w = env.post(t, "/signup", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSignupDuplicateEmail(t *testing.T) {
	env := setupAuthControllerTest(t)

	w := env.post(t, "/signup", patientSignup())
	require.Equal(t, http.StatusOK, w.Code)

	w = env.post(t, "/signup", patientSignup())
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerifyWrongCode(t *testing.T) {
	env := setupAuthControllerTest(t)

	w := env.post(t, "/signup", patientSignup())
	require.Equal(t, http.StatusOK, w.Code)

	w = env.post(t, "/verify", gin.H{"email": "alice@example.com", "code": "not-the-code"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	env := setupAuthControllerTest(t)

	w := env.post(t, "/signup", patientSignup())
	require.Equal(t, http.StatusOK, w.Code)

	w = env.post(t, "/login", gin.H{"email": "alice@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
