// main.go - Admin control tool for thoughtburn
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

	"golang.org/x/term"

	"thoughtburn/internal"
	"thoughtburn/internal/analytics"
	"thoughtburn/internal/preferences"
	"thoughtburn/internal/seeder"
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
	&BurnCommand{},
	&TodayCommand{},
	&ProgressCommand{},
	&DashboardCommand{},
	&SnapshotCommand{},
	&PreferencesCommand{},
	&PruneCommand{},
	&SeedCommand{},
	&MigrateCommand{},
	&StatusCommand{},
	&HelpCommand{},
}

func main() {
	// Parse global flags
	flag.Parse()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	// Set up context with cancellation for cleanup
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sig := <-sigChan
		log.Printf("Received signal: %v, initiating cleanup...", sig)
		cancel()
	}()

	// Parse command and arguments
	cmdName, args := parseArgs()

	// Find the requested command
	cmd := findCommand(cmdName)
	if cmd == nil {
		showUsageAndExit()
	}

	var app *internal.Application
	if cmd.Name() != "help" {
		var err error
		app, err = internal.NewApp()
		if err != nil {
			log.Fatalf("Failed to initialize app: %v", err)
		}
	}

	err := cmd.Execute(ctx, app, args)

	if app != nil {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		if shutdownErr := app.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Printf("Warning: Cleanup error: %v", shutdownErr)
		}
		cancelShutdown()
	}

	if err != nil {
		log.Fatalf("Command failed: %v", err)
	}
}

func newStdout(app *internal.Application) *output {
	return newOutput(os.Stdout, app.Store.Deriver(), app.Config.GetLanguage(), term.IsTerminal(int(os.Stdout.Fd())))
}

// BurnCommand records burned thoughts
type BurnCommand struct{}

func (c *BurnCommand) Name() string        { return "burn" }
func (c *BurnCommand) Description() string { return "Records burned thoughts now: burn [count]" }

func (c *BurnCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	count := 1
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("count must be a positive integer, got %q", args[0])
		}
		count = n
	}

	for i := 0; i < count; i++ {
		app.Store.Record(ctx)
	}

	newStdout(app).today(app.Store.TodayCount(ctx))
	return nil
}

// TodayCommand prints today's count
type TodayCommand struct{}

func (c *TodayCommand) Name() string        { return "today" }
func (c *TodayCommand) Description() string { return "Shows how many thoughts were burned today" }

func (c *TodayCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	newStdout(app).today(app.Store.TodayCount(ctx))
	return nil
}

// ProgressCommand prints the weekly comparison
type ProgressCommand struct{}

func (c *ProgressCommand) Name() string        { return "progress" }
func (c *ProgressCommand) Description() string { return "Compares this week with last week" }

func (c *ProgressCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	newStdout(app).progress(app.Store.WeeklyProgress(ctx))
	return nil
}

// DashboardCommand prints the progress screen as text
type DashboardCommand struct{}

func (c *DashboardCommand) Name() string        { return "dashboard" }
func (c *DashboardCommand) Description() string { return "Shows the last 7 days and the last 8 weeks" }

func (c *DashboardCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	newStdout(app).dashboard(analytics.BuildDashboard(ctx, app.Store))
	return nil
}

// SnapshotCommand dumps the stored history
type SnapshotCommand struct{}

func (c *SnapshotCommand) Name() string { return "snapshot" }
func (c *SnapshotCommand) Description() string {
	return "Dumps the stored history: snapshot [json|yaml]"
}

func (c *SnapshotCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	format := "json"
	if len(args) > 0 {
		format = args[0]
	}
	return writeSnapshot(os.Stdout, app.Store.Snapshot(ctx), format)
}

// PreferencesCommand shows or changes the UI toggles
type PreferencesCommand struct{}

func (c *PreferencesCommand) Name() string { return "prefs" }
func (c *PreferencesCommand) Description() string {
	return "Shows or sets preferences: prefs [reduceMotion=true] [soundEnabled=false]"
}

func (c *PreferencesCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	current := app.Preferences.Current()
	if len(args) > 0 {
		patch, err := parsePreferenceArgs(args)
		if err != nil {
			return err
		}
		if current, err = app.Preferences.Update(ctx, patch); err != nil {
			return fmt.Errorf("failed to update preferences: %w", err)
		}
	}
	newStdout(app).preferences(current)
	return nil
}

// PruneCommand drops old buckets immediately
type PruneCommand struct{}

func (c *PruneCommand) Name() string { return "prune" }
func (c *PruneCommand) Description() string {
	return "Drops buckets older than the retention period: prune [days]"
}

func (c *PruneCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	days := app.Config.RetentionDays
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("days must be a positive integer, got %q", args[0])
		}
		days = n
	}
	if days <= 0 {
		return fmt.Errorf("retention is disabled; pass the number of days to keep")
	}

	cutoff := app.Store.Deriver().Now().AddDate(0, 0, -days)
	removed, err := app.Store.PruneBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("prune failed: %w", err)
	}
	log.Printf("Removed %d buckets older than %d days", removed, days)
	return nil
}

// SeedCommand populates the store with sample history
type SeedCommand struct{}

func (c *SeedCommand) Name() string        { return "seed" }
func (c *SeedCommand) Description() string { return "Seeds the store with sample history" }

func (c *SeedCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	days := fs.Int("days", 56, "number of past days to fill")
	maxPerDay := fs.Int("max", 12, "upper bound of burns on the oldest day")
	seed := fs.Uint64("seed", 0, "random seed (0 picks one)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	se := seeder.NewSeeder(app.Store, app.Logger, *days, *maxPerDay)
	if *seed != 0 {
		se.WithSeed(*seed)
	}
	total, err := se.Run(ctx)
	if err != nil {
		return err
	}
	log.Printf("Recorded %d burns over %d days", total, *days)
	return nil
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

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get SQL DB: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database error: %w", err)
	}

	cfg := app.Config
	snap := app.Store.Snapshot(ctx)

	log.Println("System Status:")
	log.Println("- Database: Connected")
	log.Printf("- Storage Backend: %s", app.Backend.Name)
	log.Printf("- Timezone: %s", app.Store.Deriver().Location())
	log.Printf("- Serialized Writes: %t", cfg.SerializeWrites)
	log.Printf("- Retention Days: %d", cfg.RetentionDays)
	log.Printf("- Daily Buckets: %d", len(snap.Daily))
	log.Printf("- Weekly Buckets: %d", len(snap.Weekly))
	log.Printf("- Max Open Connections: %d", sqlDB.Stats().MaxOpenConnections)
	log.Printf("- Open Connections: %d", sqlDB.Stats().OpenConnections)

	return nil
}

// HelpCommand implements a command to show usage information
type HelpCommand struct{}

func (c *HelpCommand) Name() string        { return "help" }
func (c *HelpCommand) Description() string { return "Shows usage information" }

func (c *HelpCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	printUsage()
	return nil
}

// Helper functions

// parseArgs parses the command name and arguments
func parseArgs() (string, []string) {
	args := flag.Args()
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

func printUsage() {
	fmt.Println("Usage: tbctl [command] [args...]")
	fmt.Println("Available commands:")

	for _, cmd := range commands {
		fmt.Printf("  %s: %s\n", cmd.Name(), cmd.Description())
	}
}

// showUsageAndExit shows usage information and exits
func showUsageAndExit() {
	printUsage()
	os.Exit(1)
}

// parsePreferenceArgs turns key=value pairs into a patch.
func parsePreferenceArgs(args []string) (preferences.Patch, error) {
	var patch preferences.Patch
	for _, arg := range args {
		key, raw, ok := cutPair(arg)
		if !ok {
			return patch, fmt.Errorf("expected key=value, got %q", arg)
		}
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return patch, fmt.Errorf("%s must be true or false, got %q", key, raw)
		}
		switch key {
		case preferences.KeyReduceMotion:
			patch.ReduceMotion = &value
		case preferences.KeySoundEnabled:
			patch.SoundEnabled = &value
		default:
			return patch, fmt.Errorf("unknown preference %q", key)
		}
	}
	return patch, nil
}
