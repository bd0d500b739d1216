package calendar

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"

	"github.com/sandevgo/lumina/internal/config"
)

type memStore struct {
	events    map[string]*gcal.Event
	nextID    int
	deleteErr map[string]error

	listed  [][2]string
	updates []string
}

func newMemStore() *memStore {
	return &memStore{events: make(map[string]*gcal.Event), deleteErr: make(map[string]error)}
}

func (m *memStore) put(summary, start string) string {
	m.nextID++
	id := fmt.Sprintf("ev%d", m.nextID)
	m.events[id] = &gcal.Event{Id: id, Summary: summary, Start: &gcal.EventDateTime{DateTime: start}}
	return id
}

func (m *memStore) List(_ context.Context, timeMin, timeMax string) ([]*gcal.Event, error) {
	m.listed = append(m.listed, [2]string{timeMin, timeMax})
	from, _ := time.Parse(time.RFC3339, timeMin)
	to, _ := time.Parse(time.RFC3339, timeMax)

	var out []*gcal.Event
	for _, ev := range m.events {
		at, err := time.Parse(time.RFC3339, ev.Start.DateTime)
		if err != nil || at.Before(from) || !at.Before(to) {
			continue
		}
		cp := *ev
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.DateTime < out[j].Start.DateTime })
	return out, nil
}

func (m *memStore) Get(_ context.Context, id string) (*gcal.Event, error) {
	ev, ok := m.events[id]
	if !ok {
		return nil, errors.New("not found")
	}
	cp := *ev
	return &cp, nil
}

func (m *memStore) Insert(_ context.Context, ev *gcal.Event) (*gcal.Event, error) {
	m.nextID++
	ev.Id = fmt.Sprintf("ev%d", m.nextID)
	ev.HtmlLink = "https://calendar.example/" + ev.Id
	m.events[ev.Id] = ev
	return ev, nil
}

func (m *memStore) Update(_ context.Context, id string, ev *gcal.Event) (*gcal.Event, error) {
	m.updates = append(m.updates, id)
	m.events[id] = ev
	return ev, nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	if err := m.deleteErr[id]; err != nil {
		return err
	}
	delete(m.events, id)
	return nil
}

func berlin(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	return loc
}

func TestClient_Disabled(t *testing.T) {
	c := NewWithStore(nil, time.UTC)
	ctx := context.Background()

	_, err := c.Find(ctx, "x", "")
	assert.ErrorIs(t, err, ErrDisabled)
	_, err = c.Add(ctx, "x", "2025-01-01T10:00:00Z", "", "", "")
	assert.ErrorIs(t, err, ErrDisabled)
	_, err = c.Delete(ctx, "x", "")
	assert.ErrorIs(t, err, ErrDisabled)
	_, err = c.Edit(ctx, "x", "", "y", "")
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestNew_DisabledConfig(t *testing.T) {
	c, err := New(context.Background(), &config.CalendarConfig{TimeZone: "Europe/Berlin"})
	require.NoError(t, err)
	assert.False(t, c.Enabled())
}

func TestClient_AddDefaultsToOneHour(t *testing.T) {
	store := newMemStore()
	loc := berlin(t)
	c := NewWithStore(store, loc)

	tests := []struct {
		name      string
		start     string
		wantStart string
		wantEnd   string
	}{
		{"utc", "2025-01-10T09:00:00Z", "2025-01-10T09:00:00Z", "2025-01-10T10:00:00Z"},
		{"offset", "2025-01-10T09:00:00+02:00", "2025-01-10T09:00:00+02:00", "2025-01-10T10:00:00+02:00"},
		{"zone-less uses configured zone", "2025-01-10T09:00:00", "2025-01-10T09:00:00+01:00", "2025-01-10T10:00:00+01:00"},
		{"summer time", "2025-07-10 09:00", "2025-07-10T09:00:00+02:00", "2025-07-10T10:00:00+02:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := c.Add(context.Background(), "Dentist", tt.start, "", "desc", "")
			require.NoError(t, err)
			assert.Contains(t, res, "Dentist")

			ev := store.events[fmt.Sprintf("ev%d", store.nextID)]
			assert.Equal(t, tt.wantStart, ev.Start.DateTime)
			assert.Equal(t, tt.wantEnd, ev.End.DateTime)
			assert.Equal(t, "Europe/Berlin", ev.Start.TimeZone)
			assert.Equal(t, "desc", ev.Description)
		})
	}
}

func TestClient_AddExplicitEndAndBadInput(t *testing.T) {
	store := newMemStore()
	c := NewWithStore(store, time.UTC)

	_, err := c.Add(context.Background(), "Workshop", "2025-01-10T09:00:00Z", "2025-01-10T12:00:00Z", "", "Room 1")
	require.NoError(t, err)
	ev := store.events["ev1"]
	assert.Equal(t, "2025-01-10T12:00:00Z", ev.End.DateTime)
	assert.Equal(t, "Room 1", ev.Location)

	_, err = c.Add(context.Background(), "Broken", "next tuesday", "", "", "")
	assert.ErrorContains(t, err, "invalid start")
}

func TestClient_FindWindowAndOrder(t *testing.T) {
	store := newMemStore()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewWithStore(store, time.UTC, WithClock(func() time.Time { return now }))

	late := store.put("Dentist checkup", "2025-01-20T09:00:00Z")
	early := store.put("DENTIST", "2025-01-05T09:00:00Z")
	store.put("Dentist far away", "2025-03-01T09:00:00Z")
	store.put("Gym", "2025-01-06T09:00:00Z")

	ids, err := c.Find(context.Background(), "dent", "")
	require.NoError(t, err)
	assert.Equal(t, []string{early, late}, ids)

	ids, err = c.Find(context.Background(), "Dent", "2025-01-20T15:00:00")
	require.NoError(t, err)
	assert.Equal(t, []string{late}, ids)

	_, err = c.Find(context.Background(), "Dent", "soon")
	assert.Error(t, err)
}

func TestClient_DeleteRemovesAllMatches(t *testing.T) {
	store := newMemStore()
	c := NewWithStore(store, time.UTC)

	store.put("Dentist", "2025-01-10T09:00:00Z")
	store.put("dentist follow-up", "2025-01-10T15:00:00Z")
	store.put("Gym", "2025-01-10T18:00:00Z")
	store.put("Dentist", "2025-01-11T09:00:00Z")

	n, err := c.Delete(context.Background(), "Dent", "2025-01-10")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, store.events, 2)
}

func TestClient_DeleteReportsPartialFailure(t *testing.T) {
	store := newMemStore()
	c := NewWithStore(store, time.UTC)

	first := store.put("Dentist", "2025-01-10T09:00:00Z")
	store.put("Dentist", "2025-01-10T15:00:00Z")
	store.deleteErr[first] = errors.New("forbidden")

	n, err := c.Delete(context.Background(), "dentist", "2025-01-10")
	assert.Error(t, err)
	assert.Equal(t, 1, n)
}

func TestClient_EditFirstMatchOnly(t *testing.T) {
	store := newMemStore()
	c := NewWithStore(store, time.UTC)

	first := store.put("Gym", "2025-01-10T08:00:00Z")
	second := store.put("Gym", "2025-01-10T18:00:00Z")

	res, err := c.Edit(context.Background(), "gym", "2025-01-10", "Yoga", "2025-01-10T09:30:00Z")
	require.NoError(t, err)
	assert.Contains(t, res, "Yoga")

	assert.Equal(t, []string{first}, store.updates)
	assert.Equal(t, "Yoga", store.events[first].Summary)
	assert.Equal(t, "2025-01-10T09:30:00Z", store.events[first].Start.DateTime)
	assert.Equal(t, "2025-01-10T10:30:00Z", store.events[first].End.DateTime)
	assert.Equal(t, "Gym", store.events[second].Summary)
}

func TestClient_EditOnlyChangesDifferentFields(t *testing.T) {
	store := newMemStore()
	c := NewWithStore(store, time.UTC)
	id := store.put("Gym", "2025-01-10T08:00:00Z")

	res, err := c.Edit(context.Background(), "Gym", "2025-01-10", "Gym", "2025-01-10T08:00:00Z")
	require.NoError(t, err)
	assert.Contains(t, res, "unchanged")
	assert.Empty(t, store.updates)

	_, err = c.Edit(context.Background(), "Gym", "2025-01-10", "", "2025-01-10T11:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, "Gym", store.events[id].Summary)
	assert.Equal(t, "2025-01-10T11:00:00Z", store.events[id].Start.DateTime)
}

func TestClient_EditNoMatch(t *testing.T) {
	c := NewWithStore(newMemStore(), time.UTC)
	_, err := c.Edit(context.Background(), "Gym", "2025-01-10", "Yoga", "")
	assert.ErrorContains(t, err, "no event matching")
}

func TestTokenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")

	_, err := LoadToken(path)
	assert.ErrorIs(t, err, ErrNoToken)

	tok := &oauth2.Token{AccessToken: "abc", RefreshToken: "def", TokenType: "Bearer"}
	require.NoError(t, SaveToken(path, tok))

	loaded, err := LoadToken(path)
	require.NoError(t, err)
	assert.Equal(t, "abc", loaded.AccessToken)
	assert.Equal(t, "def", loaded.RefreshToken)
}

type stubSource struct{ tok *oauth2.Token }

func (s stubSource) Token() (*oauth2.Token, error) { return s.tok, nil }

func TestPersistingSource_SavesRefreshedToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	initial := &oauth2.Token{AccessToken: "old"}
	refreshed := &oauth2.Token{AccessToken: "new", RefreshToken: "r"}

	src := newPersistingSource(stubSource{tok: refreshed}, path, initial)
	_, err := src.Token()
	require.NoError(t, err)

	saved, err := LoadToken(path)
	require.NoError(t, err)
	assert.Equal(t, "new", saved.AccessToken)
}
