package main

import (
	"log"

	"github.com/David-999-david/man-app-server/config"
	"github.com/David-999-david/man-app-server/models"
)

func main() {
	db := config.ConnectDB()

	err := db.AutoMigrate(
		&models.User{},
		&models.PasswordResetCode{},
		&models.Todo{},
		&models.Address{},
		&models.AddressImage{},
	)
	if err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	log.Println("✅ Migration completed")
}
