package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"medical-app/config"
	"medical-app/middlewares"
	"medical-app/models"
	"medical-app/utils"
)

// GetUpcomingAppointments returns the doctor's next appointments that are
// neither cancelled nor in the past.
func GetUpcomingAppointments(c *gin.Context) {
	doctor, ok := middlewares.CurrentUser(c)
	if !ok || doctor.Role != models.RoleDoctor {
		utils.RespondError(c, http.StatusNotFound, "Doctor not found")
		return
	}

	limit := 5
	if v, err := strconv.Atoi(c.DefaultQuery("limit", "5")); err == nil && v > 0 {
		limit = v
	}

	var appts []models.Appointment
	err := config.DB.Preload("Patient").
		Where("doctor_id = ? AND status <> ? AND start_date >= ?",
			doctor.ID, models.AppointmentCancelled, time.Now()).
		Order("start_date ASC").
		Limit(limit).
		Find(&appts).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to fetch appointments")
		return
	}

	utils.RespondSuccess(c, appts, gin.H{"results": len(appts)})
}

// GetAppointmentCounts returns the doctor's appointment totals per status.
func GetAppointmentCounts(c *gin.Context) {
	doctor, ok := middlewares.CurrentUser(c)
	if !ok || doctor.Role != models.RoleDoctor {
		utils.RespondError(c, http.StatusNotFound, "Doctor not found")
		return
	}

	counts := gin.H{}
	var total int64
	if err := config.DB.Model(&models.Appointment{}).
		Where("doctor_id = ?", doctor.ID).Count(&total).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to count appointments")
		return
	}
	counts["total"] = total

	for _, status := range []string{
		models.AppointmentPending,
		models.AppointmentAccepted,
		models.AppointmentCancelled,
		models.AppointmentCompleted,
	} {
		var n int64
		if err := config.DB.Model(&models.Appointment{}).
			Where("doctor_id = ? AND status = ?", doctor.ID, status).Count(&n).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, "Failed to count appointments")
			return
		}
		counts[status] = n
	}

	utils.RespondSuccess(c, counts, nil)
}

// GetTotalPatients counts the distinct patients who ever booked with the
// doctor.
func GetTotalPatients(c *gin.Context) {
	doctor, ok := middlewares.CurrentUser(c)
	if !ok || doctor.Role != models.RoleDoctor {
		utils.RespondError(c, http.StatusNotFound, "Doctor not found")
		return
	}

	var total int64
	err := config.DB.Model(&models.Appointment{}).
		Where("doctor_id = ?", doctor.ID).
		Distinct("patient_id").
		Count(&total).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to count patients")
		return
	}

	utils.RespondSuccess(c, gin.H{"total_patients": total}, nil)
}
