package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medical-app/config"
	"medical-app/middlewares"
	"medical-app/models"
	"medical-app/utils"
)

// GetMe returns the authenticated user's profile.
func GetMe(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusNotFound, "User not found")
		return
	}
	utils.RespondSuccess(c, user, nil)
}

// ListDoctors returns all active doctors, optionally filtered by speciality.
func ListDoctors(c *gin.Context) {
	q := config.DB.Where("role = ? AND account_status = ?", models.RoleDoctor, true)
	if speciality := c.Query("speciality"); speciality != "" {
		q = q.Where("speciality = ?", speciality)
	}

	var doctors []models.User
	if err := q.Find(&doctors).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to fetch doctors")
		return
	}
	utils.RespondSuccess(c, doctors, gin.H{"results": len(doctors)})
}

type fcmTokenInput struct {
	FCMToken string `json:"fcm_token" binding:"required"`
}

// UpdateFCMToken stores the caller's device token for push delivery.
func UpdateFCMToken(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusNotFound, "User not found")
		return
	}

	var input fcmTokenInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := config.DB.Model(user).Update("fcm_token", input.FCMToken).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to update device token")
		return
	}
	utils.RespondSuccess(c, gin.H{"message": "Device token updated"}, nil)
}
