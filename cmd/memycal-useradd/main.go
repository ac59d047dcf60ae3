// Command memycal-useradd creates an account in the user table. There
// is no self-service registration surface; accounts are provisioned
// from the command line.
package main

import (
	"context"
	"flag"
	"os"
	"strings"

	"github.com/Cherval/me-my-cal/internal/auth"
	"github.com/Cherval/me-my-cal/internal/cli"
)

func main() {
	email := flag.String("email", "", "email address of the new user")
	password := flag.String("password", "", "password for the new user")
	flag.Parse()

	cfg, logger := cli.Setup()

	if strings.TrimSpace(*email) == "" || *password == "" {
		logger.Error("Both -email and -password are required")
		flag.Usage()
		os.Exit(2)
	}
	if len(*password) < 8 {
		logger.Error("Password must be at least 8 characters")
		os.Exit(2)
	}

	repo := cli.OpenRepository(cfg, logger)
	defer repo.Close()

	hash, err := auth.HashPassword(*password)
	if err != nil {
		logger.Error("Failed to hash password", "error", err)
		os.Exit(1)
	}

	user, err := repo.CreateUser(context.Background(), *email, hash)
	if err != nil {
		logger.Error("Failed to create user", "error", err, "email", *email)
		os.Exit(1)
	}

	logger.Info("User created", "user_id", user.ID, "email", user.Email)
}
