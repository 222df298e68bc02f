package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dstotijn/go-notion"
	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"
	"github.com/robfig/cron/v3"
	"github.com/slack-go/slack"
	"github.com/webuild-community/honor/bot"
	"github.com/webuild-community/honor/config"
	"github.com/webuild-community/honor/database"
	"github.com/webuild-community/honor/handler"
	"github.com/webuild-community/honor/service/admin"
	"github.com/webuild-community/honor/service/command"
	"github.com/webuild-community/honor/service/event"
	"github.com/webuild-community/honor/service/item"
	"github.com/webuild-community/honor/service/queue"
	"github.com/webuild-community/honor/service/transaction"
	"github.com/webuild-community/honor/service/user"
	"go.uber.org/zap"
)

// accrualQueueLimit bounds memory when the store is unreachable for a while.
const accrualQueueLimit = 100000

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := database.Open(cfg.DatabaseURL, cfg.Log.Dev)
	if err != nil {
		logger.Panic("cannot connect to db", zap.Error(err))
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		logger.Panic("cannot migrate db", zap.Error(err))
	}

	q := queue.NewQueueService(accrualQueueLimit)
	userSvc := user.NewPGService(db)
	itemSvc := item.NewPGService(db)
	purchaseSvc := transaction.NewPGService(logger, db)
	adminSvc := admin.NewPGService(db, cfg.SessionTTL)
	b := bot.New(logger, q, userSvc, itemSvc, purchaseSvc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := cron.New()
	c.AddFunc("@every 0h0m03s", func() {
		// after a shutdown signal the queue is left for the final drain
		if ctx.Err() != nil {
			return
		}
		if n := b.DrainActivity(ctx); n > 0 {
			logger.Debug("credited activity", zap.Int("count", n))
		}
	})
	c.AddFunc("@every 0h10m00s", func() {
		if n, err := adminSvc.PurgeExpired(ctx); err != nil {
			logger.Error("cannot purge sessions", zap.Error(err))
		} else if n > 0 {
			logger.Info("purged expired sessions", zap.Int64("count", n))
		}
		if _, err := userSvc.PurgeAccrualEvents(ctx, time.Now().UTC().Add(-24*time.Hour)); err != nil {
			logger.Error("cannot purge accrual events", zap.Error(err))
		}
	})
	if cfg.NotionSecretKey != "" {
		mirror := item.NewNotionMirror(logger, db, notion.NewClient(cfg.NotionSecretKey))
		c.AddFunc("@every 0h1m00s", func() {
			logger.Info("start syncing redeem")
			mirror.SyncRedeemed(ctx)
			logger.Info("end syncing redeem")
		})
	}
	c.Start()

	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: true,
	}))

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	auth := handler.NewAuthorizeHandler(e, logger, adminSvc, cfg.CookieSecure)
	handler.NewAdminHandler(e, logger, auth, userSvc, itemSvc)
	handler.NewPublicHandler(e, logger, userSvc, itemSvc)

	if cfg.SlackToken != "" {
		slackClient := slack.New(cfg.SlackToken)
		eventSvc := event.NewSlackService(logger, slackClient, cfg.SlackSigningSecret)
		handler.NewEventHandler(e, logger, b, eventSvc)
		handler.NewInteractiveHandler(e, logger, b, eventSvc)
		handler.NewCommandHandler(e, logger, b, command.NewSlackService(logger, cfg.SlackSigningSecret, cfg.SlackVerificationToken))
	}

	var discord *event.Discord
	if cfg.DiscordToken != "" {
		discord, err = event.NewDiscord(logger, cfg.DiscordToken, b)
		if err != nil {
			logger.Panic("cannot create discord session", zap.Error(err))
		}
		if err := discord.Open(); err != nil {
			logger.Panic("cannot connect to discord", zap.Error(err))
		}
	}

	go func() {
		if err := e.Start(cfg.Addr()); err != nil && err != http.ErrServerClosed {
			logger.Error("http server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	if discord != nil {
		if err := discord.Close(); err != nil {
			logger.Warn("discord close failed", zap.Error(err))
		}
	}

	doneCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(doneCtx); err != nil {
		logger.Warn("http server shutdown failed", zap.Error(err))
	}
	<-c.Stop().Done()

	// credit whatever arrived after the last tick
	drainCtx, cancelDrain := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelDrain()
	if n := b.DrainActivity(drainCtx); n > 0 {
		logger.Info("credited remaining activity", zap.Int("count", n))
	}
	logger.Info("goodbye")
}
