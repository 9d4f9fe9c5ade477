package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/aissms/reeval-backend/internal/config"
	"github.com/aissms/reeval-backend/internal/database"
	"github.com/aissms/reeval-backend/internal/logger"
	"github.com/aissms/reeval-backend/internal/repository"
	"github.com/aissms/reeval-backend/internal/service"
	"golang.org/x/term"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Initialize Service ────────────────────────────────────────────
	// No tokens are issued here, so sessions stay in memory.
	authService := service.NewAuthService(cfg, service.NewMemorySessionStore())
	instituteService := service.NewInstituteService(repository.NewPgStore(pool), authService, cfg.StoreTimeout, log)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create Institute Staff Account ===")

	name := prompt(reader, "Enter Name: ")
	if name == "" {
		fmt.Println("Error: Name is required")
		return
	}

	email := prompt(reader, "Enter Email: ")
	if email == "" || !strings.Contains(email, "@") {
		fmt.Println("Error: A valid email is required")
		return
	}

	college := prompt(reader, "Enter College Name: ")
	if college == "" {
		fmt.Println("Error: College name is required")
		return
	}

	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	password := string(bytePassword)
	fmt.Println() // Newline after password input
	if len(password) < 8 {
		fmt.Println("Error: Password must be at least 8 characters")
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	admin, err := instituteService.CreateAdmin(ctx, email, name, college, password)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateAdmin) {
			fmt.Printf("Error: an account for %s already exists\n", email)
			return
		}
		log.Fatal().Err(err).Msg("Failed to create institute admin")
	}

	fmt.Printf("\nSuccess! Staff account '%s' (%s) for %s created with ID: %d\n", admin.Name, admin.Email, admin.CollegeName, admin.ID)
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}
