package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/mwhitaker/caretrack/internal/care"
	"github.com/mwhitaker/caretrack/internal/cli"
	"github.com/mwhitaker/caretrack/internal/cli/day"
	"github.com/mwhitaker/caretrack/internal/cli/regimen"
	"github.com/mwhitaker/caretrack/internal/cli/system"
	"github.com/mwhitaker/caretrack/internal/constants"
	"github.com/mwhitaker/caretrack/internal/errors"
	"github.com/mwhitaker/caretrack/internal/keyring"
	"github.com/mwhitaker/caretrack/internal/logger"
	"github.com/mwhitaker/caretrack/internal/storage"
	"github.com/mwhitaker/caretrack/internal/storage/postgres"
	"github.com/mwhitaker/caretrack/internal/storage/sqlite"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Database file path or PostgreSQL connection string. For PostgreSQL, credentials must NOT be embedded in the connection string. Use environment variables, .pgpass, or OS keyring instead." type:"string" default:"${config_path}"`
	Patient string `help:"Patient identifier the command applies to." default:"self"`
	Debug   bool   `help:"Enable debug logging."`

	Init    system.InitCmd    `cmd:"" help:"Initialize caretrack storage."`
	Migrate system.MigrateCmd `cmd:"" help:"Run database migrations."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a connection string in the OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string (password masked)."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
	} `cmd:"" help:"Manage database credentials in the OS keyring."`
	Regimen struct {
		Show    regimen.ShowCmd    `cmd:"" help:"Show the full regimen configuration." default:"1"`
		Enable  regimen.EnableCmd  `cmd:"" help:"Enable a tracking bucket."`
		Disable regimen.DisableCmd `cmd:"" help:"Disable a tracking bucket."`
		Set     regimen.SetCmd     `cmd:"" help:"Update a bucket's priority, times, or notifications."`
	} `cmd:"" help:"Manage the care regimen."`
	Item struct {
		Add    regimen.ItemAddCmd    `cmd:"" help:"Add a tracked item (medication, vital, appointment)."`
		List   regimen.ItemListCmd   `cmd:"" help:"List tracked items." default:"1"`
		Remove regimen.ItemRemoveCmd `cmd:"" help:"Remove a tracked item."`
	} `cmd:"" help:"Manage tracked items."`
	Today    day.TodayCmd    `cmd:"" help:"Show today's care entries grouped by time window." default:"1"`
	Complete day.CompleteCmd `cmd:"" help:"Mark a care entry as done."`
	Skip     day.SkipCmd     `cmd:"" help:"Skip a care entry."`
	Sweep    day.SweepCmd    `cmd:"" help:"Mark overdue entries from past windows as missed."`
	Suppress struct {
		Toggle day.SuppressCmd      `cmd:"" help:"Hide or unhide an entry for one day." default:"1"`
		Reset  day.SuppressResetCmd `cmd:"" help:"Clear all hidden entries for a day."`
	} `cmd:"" help:"Hide entries for a single day without deleting them."`
	Streaks day.StreaksCmd `cmd:"" help:"Show adherence streaks and achievements."`
	Log     day.LogCmd     `cmd:"" help:"Show the audit log for a day."`
	Remind  day.RemindCmd  `cmd:"" help:"Show the planned reminder times for a day."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Personal care tracker for medications, vitals, and daily routines"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":     constants.Version,
			"config_path": constants.DefaultConfigPath,
		},
	)

	config := expandHome(CLI.Config)

	// Logs live next to the SQLite database, or in the default config
	// directory when storage is remote
	logDir := filepath.Dir(expandHome(constants.DefaultConfigPath))
	if !strings.Contains(config, "://") {
		logDir = filepath.Dir(config)
	}
	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug,
		ConfigDir: logDir,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize logging: %v\n", err)
		os.Exit(1)
	}

	// Initialize storage based on config format
	var store storage.Provider
	if strings.HasPrefix(config, "postgres://") || strings.HasPrefix(config, "postgresql://") {
		// PostgreSQL connection string detected - validate for embedded credentials
		if storage.HasEmbeddedCredentials(config) {
			fmt.Fprintf(os.Stderr, "❌ Error: PostgreSQL connection strings with embedded credentials are NOT allowed.\n")
			fmt.Fprintf(os.Stderr, "       Use one of these secure alternatives:\n")
			fmt.Fprintf(os.Stderr, "       1. OS keyring:    caretrack keyring set \"postgresql://user@host:5432/caretrack\"\n")
			fmt.Fprintf(os.Stderr, "       2. Environment:   export PGPASSWORD=... with a password-free connection string\n")
			fmt.Fprintf(os.Stderr, "       3. .pgpass file:  Use connection string without password: \"postgresql://user@host:5432/caretrack\"\n")
			os.Exit(1)
		}
		store = postgres.New(config)
	} else {
		// A stored keyring connection string takes precedence over the
		// default SQLite path when the user never passed --config
		if CLI.Config == constants.DefaultConfigPath {
			if connStr, err := keyring.GetConnectionString(); err == nil {
				store = postgres.NewFromKeyring(connStr)
			}
		}
		if store == nil {
			store = sqlite.NewStore(config)
		}
	}

	appCtx := &cli.Context{
		Store:   store,
		Service: care.NewService(store),
		Patient: CLI.Patient,
	}

	// Load the store before running the command (init and migrate open
	// the database themselves)
	if sel := ctx.Selected(); sel != nil && sel.Name != "init" && sel.Name != "migrate" {
		if err := store.Load(); err != nil {
			errors.Fatal(err)
		}
		defer store.Close()
	}

	if err := ctx.Run(appCtx); err != nil {
		errors.Fatal(err)
	}
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
