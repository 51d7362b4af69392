package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"livedesk/backend/internal/config"
	"livedesk/backend/internal/models"
	"livedesk/backend/internal/storage"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg := config.Load()
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	storageSvc := storage.NewStorageService(db, nil) // No redis needed for admin CLI

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "create-user":
		if len(os.Args) < 6 {
			fmt.Println("Usage: admin create-user <username> <password> <full_name> <role> [department]")
			os.Exit(1)
		}
		department := ""
		if len(os.Args) > 6 {
			department = os.Args[6]
		}
		if err := createUser(storageSvc, os.Args[2], os.Args[3], os.Args[4], os.Args[5], department); err != nil {
			log.Fatalf("Error creating user: %v", err)
		}
		fmt.Printf("User %s has been created.\n", os.Args[2])
	case "deactivate":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin deactivate <user_id>")
			os.Exit(1)
		}
		userID, err := strconv.Atoi(os.Args[2])
		if err != nil {
			fmt.Println("Invalid user ID. Please provide an integer.")
			os.Exit(1)
		}
		if err := deactivateUser(storageSvc, uint(userID)); err != nil {
			log.Fatalf("Error deactivating user: %v", err)
		}
		fmt.Printf("User %d has been deactivated and their sessions expired.\n", userID)
		fmt.Println("Note: cached session snapshots in the backend lapse within 30 seconds.")
	case "expire-sessions":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin expire-sessions <user_id>")
			os.Exit(1)
		}
		userID, err := strconv.Atoi(os.Args[2])
		if err != nil {
			fmt.Println("Invalid user ID. Please provide an integer.")
			os.Exit(1)
		}
		if err := storageSvc.ExpireUserSessions(uint(userID)); err != nil {
			log.Fatalf("Error expiring sessions: %v", err)
		}
		fmt.Printf("All sessions for user %d have been expired.\n", userID)
	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}

func createUser(s *storage.Service, username, password, fullName, role, department string) error {
	if !models.ValidRole(role) {
		return fmt.Errorf("invalid role %q", role)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.CreateUser(&models.User{
		Username:     username,
		PasswordHash: string(hash),
		FullName:     fullName,
		Role:         role,
		Status:       models.StatusOffline,
		Department:   department,
		IsActive:     true,
	})
}

func deactivateUser(s *storage.Service, userID uint) error {
	if _, err := s.UpdateUserFields(userID, map[string]interface{}{"is_active": false}); err != nil {
		return err
	}
	return s.ExpireUserSessions(userID)
}
