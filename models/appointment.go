package models

import (
	"time"

	"gorm.io/gorm"
)

// Appointment statuses.
const (
	AppointmentPending   = "pending"
	AppointmentAccepted  = "accepted"
	AppointmentCancelled = "cancelled"
	AppointmentCompleted = "completed"
)

type Appointment struct {
	ID        string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	PatientID string `gorm:"type:varchar(36);index;not null" json:"patient_id"`
	DoctorID  string `gorm:"type:varchar(36);index;not null" json:"doctor_id"`

	StartDate time.Time `gorm:"index" json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Reason    string    `json:"reason"`
	Status    string    `gorm:"type:varchar(10);index;default:'pending'" json:"status"`

	Patient User `gorm:"foreignKey:PatientID;references:ID" json:"patient,omitempty"`
	Doctor  User `gorm:"foreignKey:DoctorID;references:ID" json:"doctor,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// CanTransitionTo guards the appointment status machine:
// pending -> accepted|cancelled, accepted -> completed|cancelled.
func (a *Appointment) CanTransitionTo(status string) bool {
	switch a.Status {
	case AppointmentPending:
		return status == AppointmentAccepted || status == AppointmentCancelled
	case AppointmentAccepted:
		return status == AppointmentCompleted || status == AppointmentCancelled
	default:
		return false
	}
}
