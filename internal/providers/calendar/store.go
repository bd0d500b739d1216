package calendar

import (
	"context"
	"fmt"

	gcal "google.golang.org/api/calendar/v3"
)

// EventStore is the subset of the Google Calendar events API the client
// relies on.
type EventStore interface {
	List(ctx context.Context, timeMin, timeMax string) ([]*gcal.Event, error)
	Get(ctx context.Context, id string) (*gcal.Event, error)
	Insert(ctx context.Context, ev *gcal.Event) (*gcal.Event, error)
	Update(ctx context.Context, id string, ev *gcal.Event) (*gcal.Event, error)
	Delete(ctx context.Context, id string) error
}

type googleStore struct {
	events     *gcal.EventsService
	calendarID string
}

func newGoogleStore(svc *gcal.Service, calendarID string) *googleStore {
	return &googleStore{
		events:     svc.Events,
		calendarID: calendarID,
	}
}

// List returns single (expanded) events between timeMin and timeMax in
// start-time order, following every result page.
func (s *googleStore) List(ctx context.Context, timeMin, timeMax string) ([]*gcal.Event, error) {
	var out []*gcal.Event
	err := s.events.List(s.calendarID).
		TimeMin(timeMin).
		TimeMax(timeMax).
		SingleEvents(true).
		OrderBy("startTime").
		Pages(ctx, func(page *gcal.Events) error {
			out = append(out, page.Items...)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return out, nil
}

func (s *googleStore) Get(ctx context.Context, id string) (*gcal.Event, error) {
	ev, err := s.events.Get(s.calendarID, id).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get event %s: %w", id, err)
	}
	return ev, nil
}

func (s *googleStore) Insert(ctx context.Context, ev *gcal.Event) (*gcal.Event, error) {
	created, err := s.events.Insert(s.calendarID, ev).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}
	return created, nil
}

func (s *googleStore) Update(ctx context.Context, id string, ev *gcal.Event) (*gcal.Event, error) {
	updated, err := s.events.Update(s.calendarID, id, ev).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update event %s: %w", id, err)
	}
	return updated, nil
}

func (s *googleStore) Delete(ctx context.Context, id string) error {
	if err := s.events.Delete(s.calendarID, id).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete event %s: %w", id, err)
	}
	return nil
}
