package main

import (
	"context"
	"fmt"
	"log"

	"github.com/roviproject/rovi-backend/internal/server/services"
	"github.com/roviproject/rovi-backend/internal/server/storage"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Administrative commands",
	Long:  "Administrative commands for inspecting users and devices and purging expired onboarding rows",
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Purge expired registrations and OTP codes",
	Run:   runCleanupCommand,
}

var listDevicesCmd = &cobra.Command{
	Use:   "list-devices",
	Short: "List all devices for a user",
	Run:   runListDevicesCommand,
}

var showUserCmd = &cobra.Command{
	Use:   "show-user",
	Short: "Show a user and their MQTT broker credentials",
	Run:   runShowUserCommand,
}

func init() {
	listDevicesCmd.Flags().String("email", "", "User email (required)")
	listDevicesCmd.MarkFlagRequired("email")

	showUserCmd.Flags().String("email", "", "User email (required)")
	showUserCmd.MarkFlagRequired("email")

	adminCmd.AddCommand(
		cleanupCmd,
		listDevicesCmd,
		showUserCmd,
	)
}

func adminConnect() *storage.DB {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	db, err := storage.NewPostgresDB()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	return db
}

func runCleanupCommand(cmd *cobra.Command, args []string) {
	db := adminConnect()
	defer db.Close()

	userRepo := storage.NewUserRepository(db)
	registrationRepo := storage.NewRegistrationRepository(db)
	otpRepo := storage.NewOTPRepository(db)

	// The mailer is never reached by cleanup.
	onboardingService := services.NewOnboardingService(userRepo, registrationRepo, otpRepo, nil)

	ctx := context.Background()
	if err := onboardingService.CleanupExpired(ctx); err != nil {
		log.Fatalf("Cleanup failed: %v", err)
	}
	fmt.Println("✓ Expired registrations and OTP codes purged")
}

func runListDevicesCommand(cmd *cobra.Command, args []string) {
	email, _ := cmd.Flags().GetString("email")

	db := adminConnect()
	defer db.Close()

	deviceRepo := storage.NewDeviceRepository(db)

	ctx := context.Background()
	devices, err := deviceRepo.ListByUserEmail(ctx, email)
	if err != nil {
		log.Fatalf("Failed to list devices: %v", err)
	}

	if len(devices) == 0 {
		fmt.Printf("No devices found for %s\n", email)
		return
	}

	fmt.Printf("Devices for %s:\n", email)
	for _, device := range devices {
		lastOnline := "never"
		if device.LastOnline != nil {
			lastOnline = device.LastOnline.Format("2006-01-02 15:04:05")
		}
		fmt.Printf("  %s  %-20s  last online: %s\n", device.ID, device.DeviceName, lastOnline)
	}
}

func runShowUserCommand(cmd *cobra.Command, args []string) {
	email, _ := cmd.Flags().GetString("email")

	db := adminConnect()
	defer db.Close()

	userRepo := storage.NewUserRepository(db)

	ctx := context.Background()
	user, err := userRepo.GetByEmail(ctx, email)
	if err != nil {
		log.Fatalf("Failed to find user: %v", err)
	}
	if user == nil {
		log.Fatalf("User not found: %s", email)
	}

	fmt.Printf("ID:        %s\n", user.ID)
	fmt.Printf("Username:  %s\n", user.Username)
	fmt.Printf("Email:     %s\n", user.Email)
	fmt.Printf("MQTT user: %s\n", user.MQTTUser)
	fmt.Printf("MQTT pass: %s\n", user.MQTTPass)
	fmt.Printf("Created:   %s\n", user.CreatedAt.Format("2006-01-02 15:04:05"))
}
