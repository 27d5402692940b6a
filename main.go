package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"birthdaybot/cmd"
	"birthdaybot/config"
	"birthdaybot/database"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := handleMigrationCommand(); err != nil {
			log.Fatalf("Migration error: %v", err)
		}
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	if len(os.Args) > 1 && os.Args[1] == "check" {
		if err := handleCheckCommand(ctx); err != nil {
			log.Fatalf("Birthday check error: %v", err)
		}
		return
	}

	if err := cmd.Run(ctx); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func handleMigrationCommand() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: birthdaybot migrate [up|down|status] [args...]")
	}

	command := os.Args[2]
	switch command {
	case "up":
		return database.MigrateUp()
	case "down":
		steps := "1"
		if len(os.Args) > 3 {
			steps = os.Args[3]
		}
		return database.MigrateDown(steps)
	case "status":
		return database.MigrateStatus()
	default:
		return fmt.Errorf("unknown migration command: %s", command)
	}
}

// handleCheckCommand runs a single birthday check, for today or for the given YYYY-MM-DD
func handleCheckCommand(ctx context.Context) error {
	loc, err := config.Get().Location()
	if err != nil {
		return err
	}

	date := time.Now().In(loc)
	if len(os.Args) > 2 {
		date, err = time.ParseInLocation("2006-01-02", os.Args[2], loc)
		if err != nil {
			return fmt.Errorf("usage: birthdaybot check [YYYY-MM-DD]: %w", err)
		}
	}

	return cmd.RunCheck(ctx, date)
}
