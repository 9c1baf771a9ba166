package config

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// DB is the shared database handle, set once by InitDB at startup.
var DB *gorm.DB

// InitDB opens the MySQL connection and stores it in DB.
func InitDB(dsn string) error {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	DB = db
	return nil
}
