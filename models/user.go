package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles.
const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
	RoleAdmin   = "admin"
)

// User 用户模型 (patients, doctors and admins share one table)
type User struct {
	ID          string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name        string     `json:"name" gorm:"not null"`
	LastName    string     `json:"last_name" gorm:"not null"`
	Email       string     `json:"email" gorm:"unique;not null"`
	Password    string     `json:"-" gorm:"not null"`
	Role        string     `json:"role" gorm:"type:varchar(10);index;not null"`
	Gender      string     `json:"gender" gorm:"type:varchar(10)"`
	PhoneNumber string     `json:"phone_number" gorm:"unique"`
	DateOfBirth *time.Time `json:"date_of_birth"`

	// Patient only
	Antecedent string `json:"antecedent,omitempty"`

	// Doctor only
	Speciality          string `json:"speciality,omitempty"`
	NumLicence          string `json:"num_licence,omitempty"`
	AppointmentDuration int    `json:"appointment_duration,omitempty" gorm:"default:30"`

	FCMToken      string `json:"-"`
	AccountStatus bool   `json:"account_status" gorm:"default:false"`

	// Email verification, hash only
	VerificationCodeHash    string     `json:"-"`
	VerificationCodeExpires *time.Time `json:"-"`

	RefreshToken string     `json:"-"`
	LastLogin    *time.Time `json:"last_login" gorm:"default:NULL"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// FullName is the display name denormalized into conversations.
func (u *User) FullName() string {
	return u.Name + " " + u.LastName
}
