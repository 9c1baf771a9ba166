package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"medical-app/config"
	"medical-app/logger"
	"medical-app/middlewares"
	"medical-app/models"
	"medical-app/services"
	"medical-app/utils"
)

// NotificationController relays ad-hoc pushes (appointment reminders and
// the like) and serves the durable notification feed.
type NotificationController struct {
	push *services.PushClient
}

func NewNotificationController(push *services.PushClient) *NotificationController {
	return &NotificationController{push: push}
}

type sendNotificationInput struct {
	RecipientID   string            `json:"recipient_id" binding:"required"`
	Title         string            `json:"title" binding:"required"`
	Body          string            `json:"body" binding:"required"`
	Type          string            `json:"type"`
	AppointmentID string            `json:"appointment_id"`
	Data          map[string]string `json:"data"`
}

// SendNotification pushes to the recipient's device and records the
// notification. A push failure still leaves the durable record.
func (nc *NotificationController) SendNotification(c *gin.Context) {
	sender, ok := middlewares.CurrentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusNotFound, "User not found")
		return
	}

	var input sendNotificationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var recipient models.User
	if err := config.DB.First(&recipient, "id = ?", input.RecipientID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, "Recipient not found")
		return
	}

	notifType := input.Type
	if notifType == "" {
		notifType = "general"
	}

	record := models.Notification{
		ID:            uuid.NewString(),
		RecipientID:   recipient.ID,
		SenderID:      sender.ID,
		Title:         input.Title,
		Body:          input.Body,
		Type:          notifType,
		AppointmentID: input.AppointmentID,
	}
	if err := config.DB.Create(&record).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to store notification")
		return
	}

	delivered := false
	if recipient.FCMToken != "" {
		data := input.Data
		if data == nil {
			data = map[string]string{}
		}
		data["senderId"] = sender.ID
		data["recipientId"] = recipient.ID
		data["type"] = notifType
		if input.AppointmentID != "" {
			data["appointmentId"] = input.AppointmentID
		}

		err := nc.push.Send(c.Request.Context(), services.PushMessage{
			Token: recipient.FCMToken,
			Title: input.Title,
			Body:  input.Body,
			Data:  data,
		})
		if err != nil {
			logger.Log.Warn("push delivery failed",
				zap.String("recipient_id", recipient.ID), zap.Error(err))
		} else {
			delivered = true
		}
	}

	utils.RespondSuccess(c, gin.H{
		"notification_id": record.ID,
		"delivered":       delivered,
	}, nil)
}

// ListNotifications returns the caller's notification feed, newest first.
func (nc *NotificationController) ListNotifications(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusNotFound, "User not found")
		return
	}

	var notifications []models.Notification
	err := config.DB.Where("recipient_id = ?", user.ID).
		Order("created_at DESC").
		Find(&notifications).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to fetch notifications")
		return
	}
	utils.RespondSuccess(c, notifications, gin.H{"results": len(notifications)})
}

// MarkNotificationRead flags one notification as read.
func (nc *NotificationController) MarkNotificationRead(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusNotFound, "User not found")
		return
	}

	result := config.DB.Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", c.Param("id"), user.ID).
		Update("is_read", true)
	if result.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to update notification")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, "Notification not found")
		return
	}
	utils.RespondSuccess(c, gin.H{"message": "Notification marked as read"}, nil)
}
