package calendar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/sandevgo/lumina/internal/config"
	"github.com/sandevgo/lumina/pkg/log"
)

var ErrDisabled = errors.New("calendar is disabled")

const searchWindow = 30 * 24 * time.Hour

// Client performs keyword-based CRUD over a single calendar. A Client built
// without a store is disabled and every operation returns ErrDisabled.
type Client struct {
	store EventStore
	loc   *time.Location
	now   func() time.Time
}

type Option func(*Client)

func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// New connects to Google Calendar with the stored OAuth token. A disabled
// config yields a disabled Client.
func New(ctx context.Context, cfg *config.CalendarConfig) (*Client, error) {
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid calendar time zone: %w", err)
	}
	if !cfg.Enabled {
		log.FromCtx(ctx).Info().Msg("calendar disabled")
		return NewWithStore(nil, loc), nil
	}

	oauthCfg, err := OAuthConfig(cfg.CredentialsPath)
	if err != nil {
		return nil, err
	}
	tok, err := LoadToken(cfg.TokenPath)
	if err != nil {
		return nil, err
	}

	ts := newPersistingSource(oauthCfg.TokenSource(context.Background(), tok), cfg.TokenPath, tok)
	svc, err := gcal.NewService(ctx, option.WithTokenSource(oauth2.ReuseTokenSource(tok, ts)))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	log.FromCtx(ctx).Info().
		Str("calendar", cfg.CalendarID).
		Str("zone", cfg.TimeZone).
		Msg("calendar connected")

	return NewWithStore(newGoogleStore(svc, cfg.CalendarID), loc), nil
}

func NewWithStore(store EventStore, loc *time.Location, opts ...Option) *Client {
	c := &Client{
		store: store,
		loc:   loc,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Enabled() bool {
	return c.store != nil
}

// Find returns the IDs of events whose summary contains title, ignoring
// case, in chronological order. An empty date searches the next 30 days,
// otherwise only the calendar day of date.
func (c *Client) Find(ctx context.Context, title, date string) ([]string, error) {
	events, err := c.find(ctx, title, date)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(events))
	for _, ev := range events {
		ids = append(ids, ev.Id)
	}
	return ids, nil
}

func (c *Client) find(ctx context.Context, title, date string) ([]*gcal.Event, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}

	var from, to time.Time
	if strings.TrimSpace(date) == "" {
		from = c.now().In(c.loc)
		to = from.Add(searchWindow)
	} else {
		var err error
		if from, to, err = dayBounds(strings.TrimSpace(date), c.loc); err != nil {
			return nil, err
		}
	}

	events, err := c.store.List(ctx, from.Format(time.RFC3339), to.Format(time.RFC3339))
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(title)
	var out []*gcal.Event
	for _, ev := range events {
		if strings.Contains(strings.ToLower(ev.Summary), needle) {
			out = append(out, ev)
		}
	}
	return out, nil
}

// Add creates an event and returns its link. An empty end means one hour
// after start.
func (c *Client) Add(ctx context.Context, summary, start, end, description, location string) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}

	startAt, err := ParseTime(start, c.loc)
	if err != nil {
		return "", fmt.Errorf("invalid start: %w", err)
	}
	endAt := startAt.Add(defaultDuration)
	if strings.TrimSpace(end) != "" {
		if endAt, err = ParseTime(end, c.loc); err != nil {
			return "", fmt.Errorf("invalid end: %w", err)
		}
	}

	created, err := c.store.Insert(ctx, &gcal.Event{
		Summary:     summary,
		Description: description,
		Location:    location,
		Start:       c.eventTime(startAt),
		End:         c.eventTime(endAt),
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("created %q (%s)", created.Summary, created.HtmlLink), nil
}

// Delete removes every event Find matches. The returned count reflects the
// events actually removed, also when some deletions failed.
func (c *Client) Delete(ctx context.Context, title, date string) (int, error) {
	ids, err := c.Find(ctx, title, date)
	if err != nil {
		return 0, err
	}

	removed := 0
	var errs []error
	for _, id := range ids {
		if err := c.store.Delete(ctx, id); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}

// Edit changes the first event Find matches. Only fields that are supplied
// and differ from the current values are touched; a new start keeps the
// one-hour duration.
func (c *Client) Edit(ctx context.Context, oldTitle, oldDate, newTitle, newStart string) (string, error) {
	events, err := c.find(ctx, oldTitle, oldDate)
	if err != nil {
		return "", err
	}
	if len(events) == 0 {
		return "", fmt.Errorf("no event matching %q", oldTitle)
	}

	ev, err := c.store.Get(ctx, events[0].Id)
	if err != nil {
		return "", err
	}

	changed := false
	if t := strings.TrimSpace(newTitle); t != "" && t != ev.Summary {
		ev.Summary = t
		changed = true
	}
	if s := strings.TrimSpace(newStart); s != "" {
		startAt, err := ParseTime(s, c.loc)
		if err != nil {
			return "", fmt.Errorf("invalid new start: %w", err)
		}
		if !c.sameStart(ev, startAt) {
			ev.Start = c.eventTime(startAt)
			ev.End = c.eventTime(startAt.Add(defaultDuration))
			changed = true
		}
	}

	if !changed {
		return fmt.Sprintf("%q unchanged", ev.Summary), nil
	}

	updated, err := c.store.Update(ctx, ev.Id, ev)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("updated %q (%s)", updated.Summary, updated.HtmlLink), nil
}

func (c *Client) eventTime(t time.Time) *gcal.EventDateTime {
	return &gcal.EventDateTime{
		DateTime: t.Format(time.RFC3339),
		TimeZone: c.loc.String(),
	}
}

func (c *Client) sameStart(ev *gcal.Event, t time.Time) bool {
	if ev.Start == nil || ev.Start.DateTime == "" {
		return false
	}
	current, err := time.Parse(time.RFC3339, ev.Start.DateTime)
	return err == nil && current.Equal(t)
}
