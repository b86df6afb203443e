package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/akadimia/academy-backend/internal/config"
	"github.com/akadimia/academy-backend/internal/database"
	"github.com/akadimia/academy-backend/internal/logger"
	"github.com/akadimia/academy-backend/internal/model"
	"github.com/akadimia/academy-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

// create-staff provisions a staff account from the terminal. Intended for
// bootstrapping the first commander account before the dashboard exists.
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, "console")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	userRepo := repository.NewUserRepository(pool)
	reader := bufio.NewReader(os.Stdin)

	username := prompt(reader, "Username: ")
	if username == "" {
		log.Fatal().Msg("Username cannot be empty")
	}

	fullName := prompt(reader, "Full name: ")
	if fullName == "" {
		log.Fatal().Msg("Full name cannot be empty")
	}

	fmt.Println("Available ranks:")
	for _, r := range model.AllRanks {
		fmt.Printf("  %-20s (level %d)\n", r, r.Level())
	}
	rank := model.Rank(prompt(reader, "Rank: "))
	if !rank.Valid() {
		log.Fatal().Str("rank", string(rank)).Msg("Unknown rank")
	}

	fmt.Print("Password: ")
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read password")
	}
	if len(passwordBytes) < 8 {
		log.Fatal().Msg("Password must be at least 8 characters")
	}

	fmt.Print("Confirm password: ")
	confirmBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read password confirmation")
	}
	if string(passwordBytes) != string(confirmBytes) {
		log.Fatal().Msg("Passwords do not match")
	}

	hash, err := bcrypt.GenerateFromPassword(passwordBytes, bcrypt.DefaultCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	user := &model.User{
		Username:     username,
		FullName:     fullName,
		Rank:         rank,
		PasswordHash: string(hash),
	}
	if err := userRepo.Create(ctx, user); err != nil {
		if err == repository.ErrDuplicateUsername {
			log.Fatal().Str("username", username).Msg("Username already taken")
		}
		log.Fatal().Err(err).Msg("Failed to create user")
	}

	log.Info().
		Int("id", user.ID).
		Str("username", username).
		Str("rank", string(rank)).
		Msg("Staff account created")
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}
