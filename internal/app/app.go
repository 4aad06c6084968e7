// Package app assembles the bot from its parts: config, logging,
// database, store tables, domain services and the telegram transport.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/guggenheimg/cakebot/core/buildinfo"
	"github.com/guggenheimg/cakebot/core/config"
	"github.com/guggenheimg/cakebot/core/database"
	"github.com/guggenheimg/cakebot/core/logger"
	"github.com/guggenheimg/cakebot/core/telegram"
	"github.com/guggenheimg/cakebot/core/telegram/middleware"
	"github.com/guggenheimg/cakebot/core/telegram/state"
	"github.com/guggenheimg/cakebot/internal/catalog"
	"github.com/guggenheimg/cakebot/internal/flow"
	"github.com/guggenheimg/cakebot/internal/ledger"
	"github.com/guggenheimg/cakebot/internal/notify"
	"github.com/guggenheimg/cakebot/internal/roles"
	"github.com/guggenheimg/cakebot/internal/sheet"
)

// Run boots the application and blocks until ctx is done or the
// transport fails.
func Run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("app: load config: %w", err)
	}

	if err := logger.Init(logger.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Dir:     cfg.Logging.Dir,
		File:    cfg.Logging.BotFile,
		Profile: cfg.Logging.Profile,
	}); err != nil {
		return fmt.Errorf("app: init logger: %w", err)
	}
	defer logger.Shutdown()

	logger.L.Info("starting",
		slog.String("event", "boot"),
		slog.String("version", buildinfo.Version),
		slog.String("commit", buildinfo.Commit),
	)

	if err := database.RunMigrations(cfg.Database); err != nil {
		return fmt.Errorf("app: migrations: %w", err)
	}
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("app: connect database: %w", err)
	}
	defer db.Close()

	ordersTable, err := sheet.NewPostgres(db, cfg.Store.OrdersTable, ledger.Columns)
	if err != nil {
		return fmt.Errorf("app: orders table: %w", err)
	}
	cakesTable, err := sheet.NewPostgres(db, cfg.Store.CakesTable, catalog.Columns)
	if err != nil {
		return fmt.Errorf("app: cakes table: %w", err)
	}

	sessions := state.NewMemoryManager()
	resolver := roles.NewResolver(cfg.Telegram.OperatorIDs)

	dialogue := flow.New(flow.Options{
		Sessions:         sessions,
		Roles:            resolver,
		Catalog:          catalog.New(cakesTable),
		Ledger:           ledger.New(ordersTable),
		PageSize:         cfg.Store.PageSize,
		OperatorPageSize: cfg.Store.OperatorPageSize,
	})

	idleTTL := time.Duration(cfg.Session.IdleTTLMinutes) * time.Minute
	sweepEvery := time.Duration(cfg.Session.SweepIntervalSeconds) * time.Second

	return telegram.Run(ctx, telegram.RunOptions{
		Config: cfg,
		Middlewares: []tele.MiddlewareFunc{
			middleware.Recover,
			middleware.Logging,
			middleware.RateLimit(middleware.RateLimitOptions{
				Interval: time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond,
				Exclude:  excludeSet(cfg.RateLimit.ExcludeUpdates),
			}),
		},
		Routes: dialogue.Routes(),
		Jobs: []func(ctx context.Context) error{
			func(ctx context.Context) error {
				return state.RunSweeper(ctx, sessions, sweepEvery, idleTTL)
			},
		},
		OnStart: func(ctx context.Context, bot *tele.Bot) error {
			dialogue.SetNotifier(notify.New(bot))
			logger.TG.Info("bot online",
				slog.String("event", "online"),
				slog.String("username", bot.Me.Username),
			)
			return nil
		},
	})
}

func excludeSet(kinds []string) map[string]struct{} {
	if len(kinds) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(kinds))
	for _, k := range kinds {
		set[k] = struct{}{}
	}
	return set
}
