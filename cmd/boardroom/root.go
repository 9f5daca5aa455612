package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/prototypeforge/aicxo/internal/config"
	"github.com/prototypeforge/aicxo/internal/database"
	"github.com/prototypeforge/aicxo/internal/llm/providers"
	"github.com/prototypeforge/aicxo/internal/meeting"
	"github.com/prototypeforge/aicxo/internal/observability"
	"github.com/prototypeforge/aicxo/internal/types"
)

var (
	configPath string
	actingUser int64
)

// app holds the wired-up runtime shared by all subcommands
type app struct {
	cfg      *config.Config
	db       *database.DB
	logger   *slog.Logger
	orch     *meeting.Orchestrator
	agents   database.AgentDAO
	users    database.UserDAO
	files    database.FileDAO
	usage    database.UsageDAO
	settings database.SettingsDAO
	shutdown func(context.Context) error
}

var rootCmd = &cobra.Command{
	Use:   "boardroom",
	Short: "AI board of directors deliberation engine",
	Long: `Boardroom convenes a panel of LLM-backed executive personas,
gathers their opinions on a question in parallel, and has a chair
synthesize a unified recommendation. Meetings are versioned: they can
be regenerated, restored, and extended with follow-up questions.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(), "path to config file")
	rootCmd.PersistentFlags().Int64Var(&actingUser, "user", 1, "acting user ID")

	rootCmd.AddCommand(meetingCmd)
	rootCmd.AddCommand(agentCmd)
	rootCmd.AddCommand(filesCmd)
	rootCmd.AddCommand(billingCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func defaultConfigPath() string {
	if p := os.Getenv("BOARDROOM_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "boardroom.yaml"
	}
	return home + "/.boardroom/config.yaml"
}

// initApp loads config, opens the database, runs migrations, and wires
// the orchestrator. Every subcommand goes through here.
func initApp(ctx context.Context) (*app, error) {
	loader := config.NewConfigLoader(config.NewValidator())
	cfg, err := loader.LoadWithDefaults(configPath)
	if err != nil {
		return nil, err
	}

	logger := slog.New(observability.NewHandler(os.Stderr, cfg.Logging.Level, cfg.Logging.Format))
	slog.SetDefault(logger)

	shutdown, err := observability.InitTracing(ctx, cfg.Tracing)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.Core.DataDir, 0o755); err != nil {
		return nil, types.WrapError(types.CONFIG_LOAD_FAILED, "failed to create data directory", err)
	}

	dbCfg := database.DefaultConfig(cfg.Database.Path)
	if cfg.Database.MaxOpenConns > 0 {
		dbCfg.MaxOpenConns = cfg.Database.MaxOpenConns
	}
	if cfg.Database.MaxIdleConns > 0 {
		dbCfg.MaxIdleConns = cfg.Database.MaxIdleConns
	}

	db, err := database.OpenWithConfig(dbCfg)
	if err != nil {
		return nil, types.WrapError(types.DB_OPEN_FAILED, "failed to open database", err)
	}

	if err := database.NewMigrator(db).Migrate(ctx); err != nil {
		db.Close()
		return nil, types.WrapError(types.DB_MIGRATION_FAILED, "failed to migrate database", err)
	}

	resolver, err := providers.NewResolver(cfg.Providers, cfg.Board.DefaultProvider)
	if err != nil {
		db.Close()
		return nil, err
	}

	agents := database.NewAgentDAO(db)
	users := database.NewUserDAO(db)
	files := database.NewFileDAO(db)
	usage := database.NewUsageDAO(db)
	settings := database.NewSettingsDAO(db)

	orch := meeting.NewOrchestrator(meeting.Deps{
		Meetings: database.NewMeetingDAO(db),
		Agents:   agents,
		Users:    users,
		Files:    files,
		Usage:    usage,
		Settings: settings,
		Resolver: resolver,
		Config:   cfg.Board,
		Logger:   logger,
	})

	return &app{
		cfg:      cfg,
		db:       db,
		logger:   logger,
		orch:     orch,
		agents:   agents,
		users:    users,
		files:    files,
		usage:    usage,
		settings: settings,
		shutdown: shutdown,
	}, nil
}

// close releases the app's resources
func (a *app) close(ctx context.Context) {
	if a.shutdown != nil {
		_ = a.shutdown(ctx)
	}
	_ = a.db.Close()
}
