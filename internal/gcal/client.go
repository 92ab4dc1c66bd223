package gcal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/daybook/internal/models"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const untitledEvent = "(No title)"

type CalendarEntry struct {
	ID              string
	Summary         string
	BackgroundColor string
	Primary         bool
}

type Event struct {
	ID     string
	Title  string
	Date   string
	Time   string
	AllDay bool
	Start  time.Time
}

type NewEvent struct {
	Title  string
	Start  time.Time
	End    time.Time
	AllDay bool
}

type Client struct {
	service  *calendar.Service
	location *time.Location
}

// NewClient builds a Calendar v3 client. Event times are rendered in location.
func NewClient(ctx context.Context, location *time.Location, opts ...option.ClientOption) (*Client, error) {
	if location == nil {
		location = time.UTC
	}
	service, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return &Client{service: service, location: location}, nil
}

func (client *Client) ListCalendars(ctx context.Context) ([]CalendarEntry, error) {
	entries := make([]CalendarEntry, 0)
	err := client.service.CalendarList.List().Context(ctx).Pages(ctx, func(page *calendar.CalendarList) error {
		for _, item := range page.Items {
			entries = append(entries, CalendarEntry{
				ID:              item.Id,
				Summary:         item.Summary,
				BackgroundColor: item.BackgroundColor,
				Primary:         item.Primary,
			})
		}
		return nil
	})
	if err != nil {
		return nil, classify(fmt.Errorf("list calendars: %w", err))
	}
	return entries, nil
}

// ListEvents returns single events starting inside [timeMin, timeMax).
func (client *Client) ListEvents(ctx context.Context, calendarID string, timeMin time.Time, timeMax time.Time) ([]Event, error) {
	events := make([]Event, 0)
	call := client.service.Events.List(calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx)

	err := call.Pages(ctx, func(page *calendar.Events) error {
		for _, item := range page.Items {
			event, ok := client.convertEvent(item)
			if ok {
				events = append(events, event)
			}
		}
		return nil
	})
	if err != nil {
		return nil, classify(fmt.Errorf("list events for %s: %w", calendarID, err))
	}
	return events, nil
}

func (client *Client) CreateEvent(ctx context.Context, calendarID string, input NewEvent) (Event, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return Event{}, errors.New("event title is required")
	}

	resource := &calendar.Event{Summary: title}
	if input.AllDay {
		start := input.Start.In(client.location)
		end := input.End.In(client.location)
		// Google treats the all-day end date as exclusive.
		if !end.After(start) || end.Format(models.DateLayout) == start.Format(models.DateLayout) {
			end = start.AddDate(0, 0, 1)
		}
		resource.Start = &calendar.EventDateTime{Date: start.Format(models.DateLayout)}
		resource.End = &calendar.EventDateTime{Date: end.Format(models.DateLayout)}
	} else {
		end := input.End
		if !end.After(input.Start) {
			end = input.Start.Add(time.Hour)
		}
		resource.Start = &calendar.EventDateTime{DateTime: input.Start.Format(time.RFC3339)}
		resource.End = &calendar.EventDateTime{DateTime: end.Format(time.RFC3339)}
	}

	created, err := client.service.Events.Insert(calendarID, resource).Context(ctx).Do()
	if err != nil {
		return Event{}, classify(fmt.Errorf("create event: %w", err))
	}
	event, _ := client.convertEvent(created)
	return event, nil
}

func (client *Client) DeleteEvent(ctx context.Context, calendarID string, eventID string) error {
	if err := client.service.Events.Delete(calendarID, eventID).Context(ctx).Do(); err != nil {
		return classify(fmt.Errorf("delete event: %w", err))
	}
	return nil
}

func (client *Client) convertEvent(item *calendar.Event) (Event, bool) {
	if item == nil || item.Start == nil {
		return Event{}, false
	}

	title := strings.TrimSpace(item.Summary)
	if title == "" {
		title = untitledEvent
	}
	event := Event{ID: item.Id, Title: title}

	if item.Start.DateTime != "" {
		start, err := time.Parse(time.RFC3339, item.Start.DateTime)
		if err != nil {
			return Event{}, false
		}
		local := start.In(client.location)
		event.Start = local
		event.Date = local.Format(models.DateLayout)
		event.Time = local.Format("15:04")
		return event, true
	}

	if item.Start.Date == "" {
		return Event{}, false
	}
	start, err := time.ParseInLocation(models.DateLayout, item.Start.Date, client.location)
	if err != nil {
		return Event{}, false
	}
	event.AllDay = true
	event.Start = start
	event.Date = item.Start.Date
	return event, true
}
