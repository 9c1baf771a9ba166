package models

import (
	"medical-app/config"
	"medical-app/logger"
)

// Migrate 自动迁移所有表结构
func Migrate() {
	err := config.DB.AutoMigrate(
		&User{},
		&Conversation{},
		&Message{},
		&Appointment{},
		&Notification{},
	)
	if err != nil {
		logger.Log.Fatal("auto migrate failed: " + err.Error())
	}
}
