package controllers

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"medical-app/config"
	"medical-app/logger"
	"medical-app/models"
	"medical-app/services"
	"medical-app/utils"
)

// AuthController owns signup, login, verification and token refresh.
type AuthController struct {
	tokens        *services.TokenService
	mailer        *services.Mailer
	verifyCodeTTL time.Duration
}

func NewAuthController(tokens *services.TokenService, mailer *services.Mailer, verifyCodeTTL time.Duration) *AuthController {
	return &AuthController{tokens: tokens, mailer: mailer, verifyCodeTTL: verifyCodeTTL}
}

type signUpInput struct {
	Name            string `json:"name" binding:"required"`
	LastName        string `json:"last_name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" binding:"required"`
	PhoneNumber     string `json:"phone_number" binding:"required"`
	Gender          string `json:"gender" binding:"required"`
	Role            string `json:"role" binding:"required"`
	DateOfBirth     string `json:"date_of_birth"`

	// Patient
	Antecedent string `json:"antecedent"`

	// Doctor
	Speciality          string `json:"speciality"`
	NumLicence          string `json:"num_licence"`
	AppointmentDuration int    `json:"appointment_duration"`
}

// SignUp registers a patient or doctor and mails an activation code.
func (a *AuthController) SignUp(c *gin.Context) {
	var input signUpInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if input.Password != input.PasswordConfirm {
		utils.RespondError(c, http.StatusBadRequest, "Passwords do not match")
		return
	}

	switch input.Role {
	case models.RolePatient:
		if input.Antecedent == "" {
			utils.RespondError(c, http.StatusBadRequest, "Medical history is required for patients")
			return
		}
	case models.RoleDoctor:
		if input.Speciality == "" {
			utils.RespondError(c, http.StatusBadRequest, "Speciality is required for doctors")
			return
		}
	default:
		utils.RespondError(c, http.StatusBadRequest, "Invalid role")
		return
	}

	var existing models.User
	if err := config.DB.Where("email = ?", input.Email).First(&existing).Error; err == nil {
		utils.RespondError(c, http.StatusBadRequest, "This email is already in use")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	user := models.User{
		ID:          uuid.NewString(),
		Name:        input.Name,
		LastName:    input.LastName,
		Email:       input.Email,
		Password:    string(hashed),
		Role:        input.Role,
		Gender:      input.Gender,
		PhoneNumber: input.PhoneNumber,
		Antecedent:  input.Antecedent,
		Speciality:  input.Speciality,
		NumLicence:  input.NumLicence,
	}
	if input.AppointmentDuration > 0 {
		user.AppointmentDuration = input.AppointmentDuration
	}
	if input.DateOfBirth != "" {
		if dob, err := time.Parse("2006-01-02", input.DateOfBirth); err == nil {
			user.DateOfBirth = &dob
		}
	}

	code, err := a.setVerificationCode(&user)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to generate verification code")
		return
	}

	if err := config.DB.Create(&user).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	if err := a.mailer.SendVerificationEmail(c.Request.Context(), user.Email, code, a.verifyCodeTTL); err != nil {
		// Account exists either way; the code can be re-sent.
		logger.Log.Error("verification email failed",
			zap.String("user_id", user.ID), zap.Error(err))
	}

	utils.RespondSuccess(c, gin.H{
		"message": "Account created. Check your email for the activation code.",
		"user_id": user.ID,
	}, nil)
}

type verifyInput struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

// Verify activates an account with the mailed code.
func (a *AuthController) Verify(c *gin.Context) {
	var input verifyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var user models.User
	if err := config.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, "User not found")
		return
	}
	if user.AccountStatus {
		utils.RespondError(c, http.StatusBadRequest, "Account already active")
		return
	}
	if user.VerificationCodeExpires == nil || time.Now().After(*user.VerificationCodeExpires) {
		utils.RespondError(c, http.StatusBadRequest, "Verification code expired")
		return
	}
	if hashCode(input.Code) != user.VerificationCodeHash {
		utils.RespondError(c, http.StatusBadRequest, "Invalid verification code")
		return
	}

	updates := map[string]interface{}{
		"account_status":            true,
		"verification_code_hash":    "",
		"verification_code_expires": nil,
	}
	if err := config.DB.Model(&user).Updates(updates).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to activate account")
		return
	}

	a.respondWithTokens(c, &user)
}

type loginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login checks credentials and issues a token pair.
func (a *AuthController) Login(c *gin.Context) {
	var input loginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var user models.User
	if err := config.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if !user.AccountStatus {
		utils.RespondError(c, http.StatusForbidden, "Account not activated")
		return
	}

	now := time.Now()
	user.LastLogin = &now
	config.DB.Save(&user)

	a.respondWithTokens(c, &user)
}

type refreshInput struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh exchanges a valid refresh token for a new token pair.
func (a *AuthController) Refresh(c *gin.Context) {
	var input refreshInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	claims, err := a.tokens.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Invalid or expired refresh token")
		return
	}

	var user models.User
	if err := config.DB.First(&user, "id = ?", claims.UserID).Error; err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "User no longer exists")
		return
	}
	if user.RefreshToken != hashCode(input.RefreshToken) {
		utils.RespondError(c, http.StatusUnauthorized, "Refresh token revoked")
		return
	}

	a.respondWithTokens(c, &user)
}

func (a *AuthController) respondWithTokens(c *gin.Context, user *models.User) {
	pair, err := a.tokens.CreateTokenPair(user)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	// Only the hash of the refresh token is stored.
	if err := config.DB.Model(user).Update("refresh_token", hashCode(pair.RefreshToken)).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to persist session")
		return
	}

	utils.RespondSuccess(c, gin.H{
		"token":         pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"expires_at":    pair.ExpiresAt,
		"user":          user,
	}, nil)
}

// setVerificationCode generates a 6 digit code, stores its hash + expiry on
// the user and returns the clear code for mailing.
func (a *AuthController) setVerificationCode(user *models.User) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	code := fmt.Sprintf("%06d", n.Int64())

	expires := time.Now().Add(a.verifyCodeTTL)
	user.VerificationCodeHash = hashCode(code)
	user.VerificationCodeExpires = &expires
	return code, nil
}

func hashCode(v string) string {
	sum := sha256.Sum256([]byte(v))
	return hex.EncodeToString(sum[:])
}
