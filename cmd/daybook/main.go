package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/terraincognita07/daybook/internal/api"
	"github.com/terraincognita07/daybook/internal/cli"
	"github.com/terraincognita07/daybook/internal/config"
	"github.com/terraincognita07/daybook/internal/db"
	"github.com/terraincognita07/daybook/internal/gcal"
	"github.com/terraincognita07/daybook/internal/i18n"
	"github.com/terraincognita07/daybook/internal/logger"
	"github.com/terraincognita07/daybook/internal/media"
	"github.com/terraincognita07/daybook/internal/workout"
)

const (
	maxUploadBytes  = 64 << 20
	shutdownTimeout = 10 * time.Second
)

type CLI struct {
	EnvFile string `help:"Dotenv file loaded before reading the environment." default:".env" type:"path"`

	Serve         ServeCmd         `cmd:"" default:"1" help:"Run the web server."`
	Migrate       MigrateCmd       `cmd:"" help:"Apply pending migrations and print their status."`
	ResetPassword ResetPasswordCmd `cmd:"" name:"reset-password" help:"Reset a user's password."`
}

type ServeCmd struct{}

type MigrateCmd struct {
	DB string `help:"SQLite database path. Defaults to DB_PATH." type:"path"`
}

type ResetPasswordCmd struct {
	DB     string `help:"SQLite database path. Defaults to DB_PATH." type:"path"`
	Email  string `help:"Account email." required:""`
	Prompt bool   `help:"Type the new password instead of generating a temporary one."`
}

func main() {
	var cmd CLI
	ctx := kong.Parse(&cmd,
		kong.Name("daybook"),
		kong.Description("Habits, daily notes, calendar and workouts in one place."),
		kong.UsageOnError(),
	)
	if err := config.LoadDotEnv(cmd.EnvFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := ctx.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func databasePath(flag string) string {
	if flag != "" {
		return flag
	}
	return config.Getenv("DB_PATH", "data/daybook.db")
}

func (cmd *MigrateCmd) Run() error {
	database, err := db.OpenSQLite(databasePath(cmd.DB), nil)
	if err != nil {
		return err
	}
	statuses, err := db.ListMigrationStatus(database)
	if err != nil {
		return err
	}
	return printMigrationStatus(os.Stdout, statuses)
}

func printMigrationStatus(out io.Writer, statuses []db.MigrationStatus) error {
	for _, status := range statuses {
		state := "pending"
		if status.Applied {
			state = "applied"
		}
		if _, err := fmt.Fprintf(out, "%-8s %s\n", state, status.Name); err != nil {
			return err
		}
	}
	return nil
}

func (cmd *ResetPasswordCmd) Run() error {
	return cli.RunResetPasswordCommand(cli.ResetPasswordOptions{
		DBPath: databasePath(cmd.DB),
		Email:  cmd.Email,
		Prompt: cmd.Prompt,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
	})
}

func (cmd *ServeCmd) Run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	appLogger, err := logger.New(logger.Config{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return err
	}

	database, err := db.OpenSQLite(cfg.DBPath, appLogger.StandardLog(log.StandardLogOptions{ForceLevel: log.WarnLevel}))
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}

	i18nManager, err := i18n.NewManager(cfg.DefaultLanguage)
	if err != nil {
		return fmt.Errorf("i18n init failed: %w", err)
	}

	sessions, closeSessions, err := openSessionStore(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("workout session store init failed: %w", err)
	}
	defer closeSessions()

	lifecycleCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	mediaStore, err := media.Open(lifecycleCtx, cfg)
	if err != nil {
		return fmt.Errorf("media store init failed: %w", err)
	}
	if closer, ok := mediaStore.(io.Closer); ok {
		defer closer.Close()
	}

	var connector *gcal.Connector
	if cfg.Google.Enabled() {
		connector = gcal.NewConnector(gcal.OAuthSettings{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURL:  cfg.Google.RedirectURL,
		}, db.NewUserRepository(database), cfg.Location)
	} else {
		appLogger.Warn("google calendar disabled: GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET and GOOGLE_REDIRECT_URL are not all set")
	}

	handler, err := api.NewHandler(database, api.Options{
		SecretKey:    cfg.SecretKey,
		Location:     cfg.Location,
		CookieSecure: cfg.CookieSecure,
		I18n:         i18nManager,
		Logger:       appLogger,
		Media:        mediaStore,
		SessionStore: sessions,
		Google:       connector,
	})
	if err != nil {
		return fmt.Errorf("handler init failed: %w", err)
	}

	app := fiber.New(fiber.Config{
		AppName:               "Daybook",
		DisableStartupMessage: true,
		BodyLimit:             maxUploadBytes,
	})
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(compress.New())
	app.Use(handler.LanguageMiddleware)
	app.Use(csrf.New(csrfMiddlewareConfig(cfg.CookieSecure)))

	if local, ok := mediaStore.(*media.LocalStore); ok {
		app.Static(media.LocalURLPrefix, local.Dir())
	}
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	api.RegisterRoutes(app, handler)
	app.Use(handler.NotFound)

	go func() {
		<-lifecycleCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			appLogger.Error("server shutdown failed", "err", err)
		}
	}()

	appLogger.Info("daybook listening", "port", cfg.Port, "db", cfg.DBPath, "tz", cfg.Location.String(), "sessions", cfg.SessionStore, "media", cfg.MediaBackend)
	if err := app.Listen(":" + cfg.Port); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	handler.Shutdown()
	return nil
}

func openSessionStore(cfg config.Config, appLogger *log.Logger) (workout.Store, func(), error) {
	if cfg.SessionStore == config.SessionStoreBadger {
		store, err := workout.OpenBadgerStore(workout.BadgerConfig{
			Path:   cfg.SessionDir,
			Logger: appLogger.WithPrefix("badger"),
		})
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				appLogger.Warn("close session store", "err", err)
			}
		}, nil
	}

	store, err := workout.NewFileStore(cfg.SessionDir)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {}, nil
}

func csrfMiddlewareConfig(cookieSecure bool) csrf.Config {
	return csrf.Config{
		Extractor:      csrfTokenExtractor,
		CookieName:     "daybook_csrf",
		CookieSameSite: "Lax",
		CookieHTTPOnly: true,
		CookieSecure:   cookieSecure,
		ContextKey:     "csrf",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "invalid csrf token"})
		},
	}
}

// csrfTokenExtractor accepts the token from the X-CSRF-Token header used by
// fetch calls or from the csrf_token field of plain form posts.
func csrfTokenExtractor(c *fiber.Ctx) (string, error) {
	if token, err := csrf.CsrfFromHeader("X-CSRF-Token")(c); err == nil {
		return token, nil
	}
	token, err := csrf.CsrfFromForm("csrf_token")(c)
	if err != nil {
		return "", errors.New("missing csrf token")
	}
	return token, nil
}
