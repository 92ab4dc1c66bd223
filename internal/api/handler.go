package api

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
	"github.com/terraincognita07/daybook/internal/db"
	"github.com/terraincognita07/daybook/internal/gcal"
	"github.com/terraincognita07/daybook/internal/i18n"
	"github.com/terraincognita07/daybook/internal/models"
	"github.com/terraincognita07/daybook/internal/monthcache"
	"github.com/terraincognita07/daybook/internal/services"
	"github.com/terraincognita07/daybook/internal/workout"
	"gorm.io/gorm"
)

//go:embed templates/*.html
var templateFiles embed.FS

// Options carries the process-level collaborators that NewHandler does not
// build from the database itself.
type Options struct {
	SecretKey    string
	Location     *time.Location
	CookieSecure bool
	I18n         *i18n.Manager
	Logger       *log.Logger
	Media        services.MediaStore
	SessionStore workout.Store
	// Google is nil when OAuth credentials are not configured.
	Google *gcal.Connector
}

type gatewayFactory func(ctx context.Context, user models.User) (services.CalendarGateway, error)

type Handler struct {
	secretKey    []byte
	location     *time.Location
	cookieSecure bool
	i18n         *i18n.Manager
	logger       *log.Logger
	templates    map[string]*template.Template
	validate     *validator.Validate
	loginLimiter *attemptLimiter

	repositories *db.Repositories
	auth         *services.AuthService
	habits       *services.HabitService
	daily        *services.DailyService
	calendar     *services.CalendarService
	sport        *services.SportService
	stats        *services.StatsService
	settings     *services.SettingsService
	months       *monthcache.Registry
	workouts     *workout.Manager

	google     *gcal.Connector
	gatewayFor gatewayFactory
}

func NewHandler(database *gorm.DB, options Options) (*Handler, error) {
	if database == nil {
		return nil, errors.New("database is required")
	}
	if options.I18n == nil {
		return nil, errors.New("i18n manager is required")
	}
	if options.SessionStore == nil {
		return nil, errors.New("workout session store is required")
	}
	if options.Location == nil {
		options.Location = time.UTC
	}
	if options.Logger == nil {
		options.Logger = log.Default()
	}

	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	handler := &Handler{
		secretKey:    []byte(options.SecretKey),
		location:     options.Location,
		cookieSecure: options.CookieSecure,
		i18n:         options.I18n,
		logger:       options.Logger,
		templates:    templates,
		validate:     newValidator(),
		loginLimiter: newAttemptLimiter(loginAttemptRate, loginAttemptBurst),
		google:       options.Google,
	}
	handler.withDependencies(database, options)
	return handler, nil
}

func (handler *Handler) withDependencies(database *gorm.DB, options Options) {
	repos := db.NewRepositories(database)
	handler.repositories = repos
	handler.auth = services.NewAuthService(repos.Users)
	handler.habits = services.NewHabitService(repos.Habits, handler.location)
	handler.daily = services.NewDailyService(repos.Tasks, repos.Notes)
	handler.calendar = services.NewCalendarService(repos.CalendarSettings, handler.location, handler.logger.WithPrefix("calendar"))
	handler.sport = services.NewSportService(repos.Exercises, repos.Routines, repos.Workouts, options.Media, handler.location)
	handler.stats = services.NewStatsService(repos.Progress, repos.Exercises, repos.Workouts, options.Media, handler.location)
	handler.settings = services.NewSettingsService(repos.AppSettings)

	handler.gatewayFor = handler.connectorGateway
	handler.months = monthcache.NewRegistry(monthcache.Sources{
		Habits: handler.habits,
		Daily:  handler.daily,
		Events: &calendarEventSource{handler: handler},
	}, handler.location, handler.logger.WithPrefix("monthcache"))
	handler.workouts = workout.NewManager(options.SessionStore, handler.sport, handler.sport, handler.logger.WithPrefix("workout"))
}

// Shutdown waits for background writes started by finished workouts.
func (handler *Handler) Shutdown() {
	handler.workouts.Wait()
}

func (handler *Handler) connectorGateway(ctx context.Context, user models.User) (services.CalendarGateway, error) {
	if handler.google == nil {
		return nil, gcal.ErrNotConnected
	}
	client, err := handler.google.ClientFor(ctx, user)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// calendarEventSource feeds the month cache. Users without a linked Google
// account get no events rather than an error.
type calendarEventSource struct {
	handler *Handler
}

func (source *calendarEventSource) EventsForUser(ctx context.Context, userID uint, window services.MonthWindow) ([]models.CalendarEvent, error) {
	user, err := source.handler.auth.FindByID(userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	gateway, err := source.handler.gatewayFor(ctx, user)
	if err != nil {
		if errors.Is(err, gcal.ErrNotConnected) {
			return nil, nil
		}
		return nil, err
	}
	return source.handler.calendar.EventsForRange(ctx, userID, gateway, window)
}
