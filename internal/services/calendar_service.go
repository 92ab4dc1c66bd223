package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/terraincognita07/daybook/internal/gcal"
	"github.com/terraincognita07/daybook/internal/metrics"
	"github.com/terraincognita07/daybook/internal/models"
	"golang.org/x/sync/errgroup"
)

var (
	ErrCalendarIDRequired  = errors.New("calendar id required")
	ErrEventTitleRequired  = errors.New("event title required")
	ErrCalendarColorFormat = errors.New("calendar color must be a #rrggbb value")
)

type CalendarGateway interface {
	ListCalendars(ctx context.Context) ([]gcal.CalendarEntry, error)
	ListEvents(ctx context.Context, calendarID string, timeMin time.Time, timeMax time.Time) ([]gcal.Event, error)
	CreateEvent(ctx context.Context, calendarID string, input gcal.NewEvent) (gcal.Event, error)
	DeleteEvent(ctx context.Context, calendarID string, eventID string) error
}

type CalendarSettingRepository interface {
	ListByUser(userID uint) ([]models.CalendarSetting, error)
	Upsert(setting *models.CalendarSetting) error
}

// CalendarConfig is a live Google calendar merged with the user's saved
// color and visibility.
type CalendarConfig struct {
	GoogleID  string `json:"google_id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	IsVisible bool   `json:"is_visible"`
}

type CalendarService struct {
	settings CalendarSettingRepository
	location *time.Location
	logger   *log.Logger
}

func NewCalendarService(settings CalendarSettingRepository, location *time.Location, logger *log.Logger) *CalendarService {
	return &CalendarService{settings: settings, location: location, logger: logger}
}

// ListCalendars treats Google as the source of truth for which calendars
// exist and the local store for color and visibility.
func (service *CalendarService) ListCalendars(ctx context.Context, userID uint, gateway CalendarGateway) ([]CalendarConfig, error) {
	live, err := gateway.ListCalendars(ctx)
	if err != nil {
		metrics.GatewayError("list_calendars")
		return nil, err
	}
	saved, err := service.settings.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("load calendar settings: %w", err)
	}
	return MergeCalendarSettings(live, saved), nil
}

func MergeCalendarSettings(live []gcal.CalendarEntry, saved []models.CalendarSetting) []CalendarConfig {
	savedByID := make(map[string]models.CalendarSetting, len(saved))
	for _, setting := range saved {
		savedByID[setting.GoogleID] = setting
	}

	merged := make([]CalendarConfig, 0, len(live))
	for _, entry := range live {
		config := CalendarConfig{
			GoogleID:  entry.ID,
			Name:      entry.Summary,
			Color:     models.DefaultCalendarColor,
			IsVisible: true,
		}
		if entry.BackgroundColor != "" {
			config.Color = entry.BackgroundColor
		}
		if setting, ok := savedByID[entry.ID]; ok {
			if setting.Color != "" {
				config.Color = setting.Color
			}
			config.IsVisible = setting.IsVisible
		}
		merged = append(merged, config)
	}
	return merged
}

func (service *CalendarService) SaveSetting(userID uint, config CalendarConfig) error {
	googleID := strings.TrimSpace(config.GoogleID)
	if googleID == "" {
		return ErrCalendarIDRequired
	}
	if config.Color != "" && !isHexColor(config.Color) {
		return ErrCalendarColorFormat
	}
	return service.settings.Upsert(&models.CalendarSetting{
		UserID:    userID,
		GoogleID:  googleID,
		Name:      strings.TrimSpace(config.Name),
		Color:     config.Color,
		IsVisible: config.IsVisible,
	})
}

// EventsForRange fetches every visible calendar concurrently. A calendar that
// fails for any reason other than an expired credential is logged and
// skipped; an expired credential aborts the whole fetch.
func (service *CalendarService) EventsForRange(ctx context.Context, userID uint, gateway CalendarGateway, window MonthWindow) ([]models.CalendarEvent, error) {
	targets, err := service.calendarsToFetch(userID)
	if err != nil {
		return nil, err
	}

	timeMin := window.Start
	timeMax := window.End.AddDate(0, 0, 1)
	results := make([][]models.CalendarEvent, len(targets))

	group, groupCtx := errgroup.WithContext(ctx)
	for index, target := range targets {
		group.Go(func() error {
			events, err := gateway.ListEvents(groupCtx, target.GoogleID, timeMin, timeMax)
			if err != nil {
				metrics.GatewayError("list_events")
				if errors.Is(err, gcal.ErrTokenExpired) {
					return err
				}
				service.logger.Warn("calendar fetch skipped", "user_id", userID, "calendar", target.GoogleID, "err", err)
				return nil
			}
			converted := make([]models.CalendarEvent, 0, len(events))
			for _, event := range events {
				converted = append(converted, models.CalendarEvent{
					ID:         event.ID,
					CalendarID: target.GoogleID,
					Title:      event.Title,
					Date:       event.Date,
					Time:       event.Time,
					Color:      target.Color,
					AllDay:     event.AllDay,
				})
			}
			results[index] = converted
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	all := make([]models.CalendarEvent, 0)
	for _, events := range results {
		all = append(all, events...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Date != all[j].Date {
			return all[i].Date < all[j].Date
		}
		if all[i].AllDay != all[j].AllDay {
			return all[i].AllDay
		}
		return all[i].Time < all[j].Time
	})
	return all, nil
}

// calendarsToFetch returns the visible calendars, or the primary calendar
// when none is visible.
func (service *CalendarService) calendarsToFetch(userID uint) ([]models.CalendarSetting, error) {
	saved, err := service.settings.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("load calendar settings: %w", err)
	}

	primary := models.CalendarSetting{
		GoogleID:  models.PrimaryCalendarID,
		Color:     models.DefaultCalendarColor,
		IsVisible: true,
	}
	visible := make([]models.CalendarSetting, 0, len(saved))
	for _, setting := range saved {
		if setting.Color == "" {
			setting.Color = models.DefaultCalendarColor
		}
		if setting.GoogleID == models.PrimaryCalendarID {
			primary.Color = setting.Color
		}
		if setting.IsVisible {
			visible = append(visible, setting)
		}
	}
	if len(visible) == 0 {
		return []models.CalendarSetting{primary}, nil
	}
	return visible, nil
}

type EventInput struct {
	CalendarID string
	Title      string
	Start      time.Time
	End        time.Time
	AllDay     bool
}

func (service *CalendarService) CreateEvent(ctx context.Context, gateway CalendarGateway, input EventInput) (gcal.Event, error) {
	calendarID := strings.TrimSpace(input.CalendarID)
	if calendarID == "" {
		calendarID = models.PrimaryCalendarID
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return gcal.Event{}, ErrEventTitleRequired
	}

	event, err := gateway.CreateEvent(ctx, calendarID, gcal.NewEvent{
		Title:  title,
		Start:  input.Start.In(service.location),
		End:    input.End.In(service.location),
		AllDay: input.AllDay,
	})
	if err != nil {
		metrics.GatewayError("create_event")
		return gcal.Event{}, err
	}
	return event, nil
}

func (service *CalendarService) DeleteEvent(ctx context.Context, gateway CalendarGateway, calendarID string, eventID string) error {
	calendarID = strings.TrimSpace(calendarID)
	if calendarID == "" || strings.TrimSpace(eventID) == "" {
		return ErrCalendarIDRequired
	}
	if err := gateway.DeleteEvent(ctx, calendarID, eventID); err != nil {
		metrics.GatewayError("delete_event")
		return err
	}
	return nil
}

func isHexColor(value string) bool {
	if len(value) != 7 || value[0] != '#' {
		return false
	}
	for _, char := range value[1:] {
		isDigit := char >= '0' && char <= '9'
		isHex := (char >= 'a' && char <= 'f') || (char >= 'A' && char <= 'F')
		if !isDigit && !isHex {
			return false
		}
	}
	return true
}
