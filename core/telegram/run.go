// Package telegram assembles and runs the bot transport: poller,
// HTTP client, middleware chain and registered routes.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/guggenheimg/cakebot/core/config"
	"github.com/guggenheimg/cakebot/core/logger"
	tghelpers "github.com/guggenheimg/cakebot/core/telegram/helpers"
	tgsender "github.com/guggenheimg/cakebot/core/telegram/sender"
)

// Route declares a single bot handler bound to an endpoint. Endpoint
// values are passed directly to tele.Bot.Handle.
type Route struct {
	Endpoint any
	Handler  tele.HandlerFunc
}

// RunOptions controls the behaviour of Run.
type RunOptions struct {
	Config *coreconfig.Config

	Middlewares []tele.MiddlewareFunc
	Routes      []Route

	DispatcherOptions tgsender.Options

	// Jobs are background tasks tied to the bot lifetime, such as the
	// session sweeper. They must return when their context is done.
	Jobs []func(ctx context.Context) error

	OnStart func(ctx context.Context, bot *tele.Bot) error
}

// Run composes and runs the bot until the provided context is done.
func Run(ctx context.Context, opts RunOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Config == nil {
		return fmt.Errorf("telegram: nil config provided")
	}
	cfg := opts.Config

	poller := BuildPoller(PollerOptions{
		RunMode:                cfg.Telegram.RunMode,
		LongPollTimeoutSeconds: cfg.Telegram.LongPollTimeoutSeconds,
		Webhook: WebhookOptions{
			Listen: cfg.Webhook.Listen,
			Port:   cfg.Webhook.Port,
			URL:    cfg.Webhook.URL,
		},
	})

	buildStart := time.Now()
	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: poller,
		Client: BuildHTTPClient(),
	})
	if err != nil {
		return fmt.Errorf("telegram: bot initialization failed: %w", err)
	}

	logger.TG.Info("transport ready",
		slog.String("event", "mode"),
		slog.String("mode", cfg.Telegram.RunMode),
		slog.Duration("duration", logger.RoundMS(time.Since(buildStart))),
	)

	dispatcher := tgsender.NewDispatcher(opts.DispatcherOptions)
	tghelpers.SetDispatcher(dispatcher)
	defer func() {
		dispatcher.Close()
		tghelpers.SetDispatcher(nil)
	}()

	for _, mw := range opts.Middlewares {
		if mw != nil {
			bot.Use(mw)
		}
	}
	for _, route := range opts.Routes {
		if route.Endpoint == nil || route.Handler == nil {
			continue
		}
		bot.Handle(route.Endpoint, route.Handler)
	}

	if opts.OnStart != nil {
		if err := opts.OnStart(ctx, bot); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		bot.Start()
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		bot.Stop()
		return nil
	})
	for _, job := range opts.Jobs {
		if job == nil {
			continue
		}
		job := job
		g.Go(func() error { return job(gctx) })
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
