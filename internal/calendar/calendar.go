// Package calendar pushes confirmed reservations into a shared Google
// Calendar so the rooms' schedules are visible outside the service.
package calendar

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Event is one confirmed reservation to mirror into the calendar.
type Event struct {
	RoomName  string
	CreatedBy string
	StartTime time.Time
	EndTime   time.Time
}

// Service wraps an authenticated Google Calendar client bound to one
// calendar.
type Service struct {
	svc        *gcal.Service
	calendarID string
	timezone   string
}

// Config holds the service-account credentials and target calendar.
type Config struct {
	CredentialsFile string
	Scope           string
	CalendarID      string
	Timezone        string
}

// NewService authenticates with the service-account credentials file and
// returns a client bound to the configured calendar.
func NewService(cfg Config) (*Service, error) {
	creds, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}
	jwtCfg, err := google.JWTConfigFromJSON(creds, cfg.Scope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}

	ctx := context.Background()
	svc, err := gcal.NewService(ctx, option.WithHTTPClient(jwtCfg.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create calendar client: %w", err)
	}

	return &Service{
		svc:        svc,
		calendarID: cfg.CalendarID,
		timezone:   cfg.Timezone,
	}, nil
}

// CreateEvent inserts the reservation into the calendar and returns the
// created event's ID.
func (s *Service) CreateEvent(ctx context.Context, ev Event) (string, error) {
	loc, err := time.LoadLocation(s.timezone)
	if err != nil {
		return "", fmt.Errorf("load timezone %q: %w", s.timezone, err)
	}

	event := &gcal.Event{
		Summary:     fmt.Sprintf("[%s] %s", ev.CreatedBy, ev.RoomName),
		Description: "Created by the room reservation service",
		Start: &gcal.EventDateTime{
			DateTime: ev.StartTime.In(loc).Format(time.RFC3339),
			TimeZone: s.timezone,
		},
		End: &gcal.EventDateTime{
			DateTime: ev.EndTime.In(loc).Format(time.RFC3339),
			TimeZone: s.timezone,
		},
	}

	created, err := s.svc.Events.Insert(s.calendarID, event).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("insert event: %w", err)
	}
	if created.Id == "" {
		return "", fmt.Errorf("event created without an id")
	}
	return created.Id, nil
}
