// main.go - Admin control tool for sitepulse
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"log/slog"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"sitepulse/internal"
	"sitepulse/internal/seeder"
	"sitepulse/internal/websites"
)

const (
	defaultShutdownTimeout = 30 * time.Second
)

// Command defines the interface for all command implementations
type Command interface {
	// Name returns the command name
	Name() string
	// Description returns the command description
	Description() string
	// Execute runs the command with the given app and args
	Execute(ctx context.Context, app *internal.Application, args []string) error
}

// The set of available commands
var commands = []Command{
	&RegisterCommand{},
	&ListCommand{},
	&ShareEnableCommand{},
	&ShareDisableCommand{},
	&SetEmailCommand{},
	&SeedCommand{},
	&MigrateCommand{},
	&StatusCommand{},
	&HelpCommand{},
}

func main() {
	_ = godotenv.Load()
	flag.Parse()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sig := <-sigChan
		log.Printf("Received signal: %v, initiating cleanup...", sig)
		cancel()
	}()

	cmdName, args := parseArgs()

	cmd := findCommand(cmdName)
	if cmd == nil {
		showUsageAndExit()
	}

	app, err := internal.NewApp()
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()
		if err := app.Shutdown(shutdownCtx); err != nil {
			log.Printf("Warning: Cleanup error: %v", err)
		}
	}()

	if err := cmd.Execute(ctx, app, args); err != nil {
		log.Fatalf("Command failed: %v", err)
	}

	log.Printf("Command %s completed successfully", cmd.Name())
}

// RegisterCommand registers a website with an owner email
type RegisterCommand struct{}

func (c *RegisterCommand) Name() string        { return "register" }
func (c *RegisterCommand) Description() string { return "Registers a website for an owner email" }

func (c *RegisterCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: %s <hostname> <owner-email>", c.Name())
	}

	db := app.DBManager.GetConnection()
	website, created, err := websites.Register(db, args[0], args[1])
	if err != nil {
		return fmt.Errorf("failed to register website: %w", err)
	}

	if created {
		log.Printf("Registered %s (id %d)", website.Hostname, website.ID)
	} else {
		log.Printf("%s is already registered (id %d)", website.Hostname, website.ID)
	}
	return nil
}

// ListCommand prints all registered websites
type ListCommand struct{}

func (c *ListCommand) Name() string        { return "list" }
func (c *ListCommand) Description() string { return "Lists all tracked websites" }

func (c *ListCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	db := app.DBManager.GetConnection()
	all, err := websites.GetAllWebsites(db)
	if err != nil {
		return err
	}

	if len(all) == 0 {
		fmt.Println("No websites registered yet")
		return nil
	}

	for _, w := range all {
		owner := "-"
		if w.OwnerEmail != nil {
			owner = *w.OwnerEmail
		}
		sharing := "private"
		if w.IsPublic && w.ShareToken != nil {
			sharing = "shared (" + *w.ShareToken + ")"
		}
		fmt.Printf("%4d  %-40s  owner=%s  %s\n", w.ID, w.Hostname, owner, sharing)
	}
	return nil
}

// ShareEnableCommand turns on public sharing for a website
type ShareEnableCommand struct{}

func (c *ShareEnableCommand) Name() string        { return "share-enable" }
func (c *ShareEnableCommand) Description() string { return "Enables public sharing for a website" }

func (c *ShareEnableCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	website, err := websiteFromArgs(app.DBManager.GetConnection(), args, c.Name())
	if err != nil {
		return err
	}

	token, err := websites.EnableSharing(app.DBManager.GetConnection(), website.ID)
	if err != nil {
		return fmt.Errorf("failed to enable sharing: %w", err)
	}

	log.Printf("Sharing enabled for %s", website.Hostname)
	fmt.Printf("Share token: %s\n", token)
	return nil
}

// ShareDisableCommand revokes public sharing for a website
type ShareDisableCommand struct{}

func (c *ShareDisableCommand) Name() string        { return "share-disable" }
func (c *ShareDisableCommand) Description() string { return "Disables public sharing for a website" }

func (c *ShareDisableCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	website, err := websiteFromArgs(app.DBManager.GetConnection(), args, c.Name())
	if err != nil {
		return err
	}

	if err := websites.DisableSharing(app.DBManager.GetConnection(), website.ID); err != nil {
		return fmt.Errorf("failed to disable sharing: %w", err)
	}

	log.Printf("Sharing disabled for %s", website.Hostname)
	return nil
}

// SetEmailCommand sets or clears the milestone notification email
type SetEmailCommand struct{}

func (c *SetEmailCommand) Name() string { return "set-email" }
func (c *SetEmailCommand) Description() string {
	return "Sets the milestone notification email for a website (omit email to clear)"
}

func (c *SetEmailCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	db := app.DBManager.GetConnection()
	website, err := websiteFromArgs(db, args, c.Name())
	if err != nil {
		return err
	}

	email := ""
	if len(args) >= 2 {
		email = args[1]
	}

	if err := websites.SetNotificationEmail(db, website.ID, email); err != nil {
		return fmt.Errorf("failed to set notification email: %w", err)
	}

	if email == "" {
		log.Printf("Notification email cleared for %s", website.Hostname)
	} else {
		log.Printf("Notification email for %s set to %s", website.Hostname, email)
	}
	return nil
}

// SeedCommand populates the DB with sample traffic
type SeedCommand struct{}

func (c *SeedCommand) Name() string        { return "seed" }
func (c *SeedCommand) Description() string { return "Seeds the database with sample traffic" }

func (c *SeedCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	pageViews := fs.Int("pageviews", 10000, "number of page views to generate")
	hostname := fs.String("hostname", "", "hostname to seed (a demo website is used if empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	se := seeder.NewSeeder(app.DBManager, slog.Default(), *pageViews)

	if *hostname != "" {
		return se.SeedHostname(ctx, *hostname)
	}
	return se.Run(ctx)
}

// MigrateCommand runs database migrations
type MigrateCommand struct{}

func (c *MigrateCommand) Name() string        { return "migrate" }
func (c *MigrateCommand) Description() string { return "Runs database migrations" }

func (c *MigrateCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	log.Println("Running database migrations...")

	if err := app.DBManager.MigrateDatabase(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Println("Migrations completed successfully")
	return nil
}

// StatusCommand implements a command to check the system status
type StatusCommand struct{}

func (c *StatusCommand) Name() string        { return "status" }
func (c *StatusCommand) Description() string { return "Shows the current system status" }

func (c *StatusCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	db := app.DBManager.GetConnection()

	var websiteCount int64
	if err := db.Model(&websites.Website{}).Count(&websiteCount).Error; err != nil {
		return fmt.Errorf("database error: %w", err)
	}

	log.Println("System Status:")
	log.Println("- Database: Connected")
	log.Printf("- Websites: %d", websiteCount)

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get SQL DB: %w", err)
	}

	log.Printf("- Max Open Connections: %d", sqlDB.Stats().MaxOpenConnections)
	log.Printf("- Open Connections: %d", sqlDB.Stats().OpenConnections)
	log.Printf("- In Use: %d", sqlDB.Stats().InUse)
	log.Printf("- Idle: %d", sqlDB.Stats().Idle)

	return nil
}

// HelpCommand implements a command to show usage information
type HelpCommand struct{}

func (c *HelpCommand) Name() string        { return "help" }
func (c *HelpCommand) Description() string { return "Shows usage information" }

func (c *HelpCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	fmt.Println("Usage: pulsectl [command] [args...]")
	fmt.Println("Available commands:")

	for _, cmd := range commands {
		fmt.Printf("  %s: %s\n", cmd.Name(), cmd.Description())
	}

	return nil
}

// Helper functions

// websiteFromArgs resolves the first argument as a hostname or numeric id.
func websiteFromArgs(db *gorm.DB, args []string, cmdName string) (*websites.Website, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("usage: %s <hostname-or-id> [...]", cmdName)
	}

	if id, err := strconv.ParseUint(args[0], 10, 32); err == nil {
		website, err := websites.GetWebsiteByID(db, uint(id))
		if err != nil {
			return nil, fmt.Errorf("website %d not found: %w", id, err)
		}
		return &website, nil
	}

	website, err := websites.GetWebsiteByHostname(db, args[0])
	if err != nil {
		return nil, err
	}
	return website, nil
}

// parseArgs parses the command name and arguments
func parseArgs() (string, []string) {
	args := os.Args[1:]
	if len(args) == 0 {
		return "help", []string{}
	}
	return args[0], args[1:]
}

// findCommand finds a command by name
func findCommand(name string) Command {
	for _, cmd := range commands {
		if cmd.Name() == name {
			return cmd
		}
	}
	return nil
}

// showUsageAndExit shows usage information and exits
func showUsageAndExit() {
	fmt.Println("Usage: pulsectl [command] [args...]")
	fmt.Println("Available commands:")

	for _, cmd := range commands {
		fmt.Printf("  %s: %s\n", cmd.Name(), cmd.Description())
	}

	os.Exit(1)
}
