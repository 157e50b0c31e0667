package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/otpgate/otpgate/internal/config"
	"github.com/otpgate/otpgate/internal/directory"
	"github.com/otpgate/otpgate/internal/expiry"
	"github.com/otpgate/otpgate/internal/handlers"
	"github.com/otpgate/otpgate/internal/logger"
	"github.com/otpgate/otpgate/internal/presence"
	"github.com/otpgate/otpgate/internal/review"
	"github.com/otpgate/otpgate/internal/server"
	"github.com/otpgate/otpgate/internal/submission"
	"github.com/otpgate/otpgate/internal/telegram"
	"github.com/otpgate/otpgate/internal/timers"
	"github.com/otpgate/otpgate/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to config.toml (defaults to CONFIG_PATH or ./config.toml)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("otpgate %s\n", version.GetInfo())
		return
	}

	fx.New(
		fx.Provide(
			func() (config.Config, error) { return provideConfig(*configPath) },
			provideLogger,

			provideBot,
			provideTransport,
			provideDeadlines,
			provideTickers,

			directory.New,
			submission.NewStore,
			provideJanitor,
			provideLoops,
			provideEphemeral,
			provideReviewService,

			provideServerHandler(provideIntakeHandler),
			provideServerHandler(provideRedirectHandler),

			provideServer,
		),
		fx.Invoke(
			startJanitor,
			startUpdateLoop,
			startServer,
		),
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger.With(slog.String("component", "fx"))}
		}),
	).Run()
}

func provideServerHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

func provideConfig(path string) (config.Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func provideBot(log *slog.Logger, cfg config.Config) (*telegram.Bot, error) {
	bot, err := telegram.NewBot(log, cfg.Telegram.BotToken)
	if err != nil {
		return nil, fmt.Errorf("telegram connect: %w", err)
	}
	return bot, nil
}

func provideTransport(bot *telegram.Bot) (telegram.Messenger, telegram.Deleter, telegram.Typist, telegram.CallbackAnswerer) {
	return bot, bot, bot, bot
}

func provideDeadlines(lc fx.Lifecycle, log *slog.Logger) *timers.Deadlines {
	deadlines := timers.NewDeadlines(log)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			deadlines.StopAll()
			return nil
		},
	})
	return deadlines
}

func provideTickers(lc fx.Lifecycle, log *slog.Logger) *timers.Tickers {
	tickers := timers.NewTickers(log)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			tickers.StopAll()
			return nil
		},
	})
	return tickers
}

func provideJanitor(log *slog.Logger, store *submission.Store, loops *presence.Loops, cfg config.Config) *submission.Janitor {
	return submission.NewJanitor(log, store, loops, cfg.Relay.Sweep(), cfg.Relay.RetentionPeriod())
}

func provideLoops(log *slog.Logger, tickers *timers.Tickers, typist telegram.Typist, cfg config.Config) *presence.Loops {
	return presence.NewLoops(log, tickers, typist, cfg.Relay.TypingPeriod())
}

func provideEphemeral(log *slog.Logger, deadlines *timers.Deadlines, messenger telegram.Messenger, deleter telegram.Deleter, cfg config.Config) *expiry.Ephemeral {
	return expiry.NewEphemeral(log, deadlines, messenger, deleter, cfg.Relay.MessageLifetime())
}

func provideReviewService(
	log *slog.Logger,
	dir *directory.Directory,
	store *submission.Store,
	loops *presence.Loops,
	ephemeral *expiry.Ephemeral,
	messenger telegram.Messenger,
	answerer telegram.CallbackAnswerer,
	cfg config.Config,
) *review.Service {
	return review.NewService(log, dir, store, loops, ephemeral, messenger, answerer, cfg.Telegram.AdminChatID)
}

func provideIntakeHandler(svc *review.Service) *handlers.IntakeHandler {
	return handlers.NewIntakeHandler(svc)
}

func provideRedirectHandler(cfg config.Config) *handlers.RedirectHandler {
	return handlers.NewRedirectHandler(cfg.Links.WebAppURL, cfg.Links.WebsiteURL)
}

type serverParams struct {
	fx.In

	Logger         *slog.Logger
	Config         config.Config
	ServerHandlers []server.Handler `group:"server_handlers"`
}

func provideServer(params serverParams) *server.Server {
	return server.NewServer(params.Logger, params.Config.Server.Addr, params.ServerHandlers...)
}

func startJanitor(lc fx.Lifecycle, janitor *submission.Janitor) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return janitor.Start()
		},
		OnStop: func(context.Context) error {
			janitor.Stop()
			return nil
		},
	})
}

func startUpdateLoop(lc fx.Lifecycle, bot *telegram.Bot, svc *review.Service) {
	loopCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go bot.Listen(loopCtx, svc)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

func startServer(lc fx.Lifecycle, logger *slog.Logger, srv *server.Server, shutdowner fx.Shutdowner) {
	fmt.Printf("Starting otpgate %s\n", version.GetInfo())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Stop(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server stop: %w", err)
			}
			return nil
		},
	})
}
