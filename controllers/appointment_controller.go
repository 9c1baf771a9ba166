package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"medical-app/config"
	"medical-app/logger"
	"medical-app/middlewares"
	"medical-app/models"
	"medical-app/utils"
)

type createAppointmentInput struct {
	DoctorID  string `json:"doctor_id" binding:"required"`
	StartDate string `json:"start_date" binding:"required"`
	Reason    string `json:"reason"`
}

// CreateAppointment books a pending appointment with a doctor. Patients only.
func CreateAppointment(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusNotFound, "User not found")
		return
	}

	var input createAppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	start, err := time.Parse(time.RFC3339, input.StartDate)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "start_date must be RFC3339")
		return
	}
	if start.Before(time.Now()) {
		utils.RespondError(c, http.StatusBadRequest, "Appointment must be in the future")
		return
	}

	var doctor models.User
	if err := config.DB.Where("id = ? AND role = ?", input.DoctorID, models.RoleDoctor).First(&doctor).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, "Doctor not found")
		return
	}

	duration := doctor.AppointmentDuration
	if duration <= 0 {
		duration = 30
	}

	appt := models.Appointment{
		ID:        uuid.NewString(),
		PatientID: user.ID,
		DoctorID:  doctor.ID,
		StartDate: start,
		EndDate:   start.Add(time.Duration(duration) * time.Minute),
		Reason:    input.Reason,
		Status:    models.AppointmentPending,
	}
	if err := config.DB.Create(&appt).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to create appointment")
		return
	}
	utils.RespondSuccess(c, appt, nil)
}

// ListAppointments returns the caller's appointments, soonest first.
func ListAppointments(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusNotFound, "User not found")
		return
	}

	q := config.DB.Preload("Patient").Preload("Doctor").Order("start_date ASC")
	if user.Role == models.RoleDoctor {
		q = q.Where("doctor_id = ?", user.ID)
	} else {
		q = q.Where("patient_id = ?", user.ID)
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var appts []models.Appointment
	if err := q.Find(&appts).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to fetch appointments")
		return
	}
	utils.RespondSuccess(c, appts, gin.H{"results": len(appts)})
}

// GetAppointment returns a single appointment visible to the caller.
func GetAppointment(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusNotFound, "User not found")
		return
	}

	var appt models.Appointment
	err := config.DB.Preload("Patient").Preload("Doctor").
		Where("id = ?", c.Param("id")).First(&appt).Error
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, "Appointment not found")
		return
	}
	if appt.PatientID != user.ID && appt.DoctorID != user.ID {
		utils.RespondError(c, http.StatusForbidden, "Not your appointment")
		return
	}
	utils.RespondSuccess(c, appt, nil)
}

type updateStatusInput struct {
	Status string `json:"status" binding:"required"`
}

// UpdateAppointmentStatus moves an appointment through its status machine.
// Doctors accept/complete; either party may cancel.
func UpdateAppointmentStatus(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusNotFound, "User not found")
		return
	}

	var input updateStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var appt models.Appointment
	if err := config.DB.Where("id = ?", c.Param("id")).First(&appt).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, "Appointment not found")
		return
	}
	if appt.PatientID != user.ID && appt.DoctorID != user.ID {
		utils.RespondError(c, http.StatusForbidden, "Not your appointment")
		return
	}

	switch input.Status {
	case models.AppointmentAccepted, models.AppointmentCompleted:
		if user.ID != appt.DoctorID {
			utils.RespondError(c, http.StatusForbidden, "Only the doctor can do that")
			return
		}
	case models.AppointmentCancelled:
		// either party
	default:
		utils.RespondError(c, http.StatusBadRequest, "Unknown status")
		return
	}

	if !appt.CanTransitionTo(input.Status) {
		utils.RespondError(c, http.StatusBadRequest,
			"Cannot move appointment from "+appt.Status+" to "+input.Status)
		return
	}

	if err := config.DB.Model(&appt).Update("status", input.Status).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to update appointment")
		return
	}

	logger.Log.Info("appointment status changed",
		zap.String("appointment_id", appt.ID),
		zap.String("status", input.Status),
		zap.String("by", user.ID))

	appt.Status = input.Status
	utils.RespondSuccess(c, appt, nil)
}
