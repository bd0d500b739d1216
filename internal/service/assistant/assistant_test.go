package assistant

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/lumina/internal/core"
	"github.com/sandevgo/lumina/internal/service/dispatch"
)

type memStore struct {
	messages  []core.Message
	appendErr error
}

func (m *memStore) UpsertFact(context.Context, string, string) error { return nil }
func (m *memStore) AllFacts(context.Context) ([]core.Fact, error)    { return nil, nil }
func (m *memStore) RecentMessages(context.Context, int) ([]core.Message, error) {
	return m.messages, nil
}

func (m *memStore) AppendMessage(_ context.Context, role, content string) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.messages = append(m.messages, core.Message{Role: role, Content: content})
	return nil
}

type stubDispatcher struct {
	resp    core.Response
	message string
	image   *core.Image
	calls   int
}

func (s *stubDispatcher) Dispatch(_ context.Context, message string, image *core.Image) core.Response {
	s.calls++
	s.message = message
	s.image = image
	return s.resp
}

type recordingApplier struct {
	texts []string
}

func (r *recordingApplier) Apply(_ context.Context, text string) []core.DirectiveOutcome {
	r.texts = append(r.texts, text)
	return nil
}

type recordingMirror struct {
	channel core.Channel
	turns   []core.Turn
	err     error
}

func (r *recordingMirror) Channel() core.Channel { return r.channel }

func (r *recordingMirror) Mirror(_ context.Context, turn core.Turn) error {
	r.turns = append(r.turns, turn)
	return r.err
}

func TestHandle_PersistsBothTurns(t *testing.T) {
	reply := "Booked.\n[CALENDAR_EVENT]\ntitle: Dentist\nstart: 2025-01-10T09:00:00Z\n[/CALENDAR_EVENT]"
	store := &memStore{}
	disp := &stubDispatcher{resp: core.Response{Content: reply, Source: "OpenAI"}}
	applier := &recordingApplier{}
	a := NewAssistant(store, disp, applier)

	resp, err := a.Handle(context.Background(), core.ChannelWeb, "  book the dentist  ", nil)
	require.NoError(t, err)

	assert.Equal(t, "OpenAI", resp.Source)
	assert.Equal(t, "book the dentist", disp.message)
	assert.Equal(t, []core.Message{
		{Role: core.RoleUser, Content: "book the dentist"},
		{Role: core.RoleAssistant, Content: reply},
	}, store.messages, "assistant turn is stored verbatim, directive included")
	assert.Equal(t, []string{reply}, applier.texts)
}

func TestHandle_ImageTurn(t *testing.T) {
	store := &memStore{}
	disp := &stubDispatcher{resp: core.Response{Content: "A cat.", Source: "Gemini"}}
	a := NewAssistant(store, disp, nil)
	img := &core.Image{Data: []byte("jpeg"), MIME: "image/jpeg"}

	_, err := a.Handle(context.Background(), core.ChannelTelegram, "what is it?", img)
	require.NoError(t, err)

	assert.Same(t, img, disp.image)
	assert.Equal(t, "[image] what is it?", store.messages[0].Content)
}

func TestHandle_EmptyMessageRejected(t *testing.T) {
	disp := &stubDispatcher{}
	a := NewAssistant(&memStore{}, disp, nil)

	_, err := a.Handle(context.Background(), core.ChannelWeb, "   ", nil)
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Zero(t, disp.calls)
}

func TestHandle_FailedDispatchSkipsDirectives(t *testing.T) {
	store := &memStore{}
	disp := &stubDispatcher{resp: core.Response{Content: "sorry", Source: core.SourceError}}
	applier := &recordingApplier{}
	a := NewAssistant(store, disp, applier)

	resp, err := a.Handle(context.Background(), core.ChannelWeb, "hi", nil)
	require.NoError(t, err)
	assert.True(t, resp.Failed())
	assert.Empty(t, applier.texts)
	assert.Len(t, store.messages, 2)
}

func TestHandle_StorageFailureStillReplies(t *testing.T) {
	store := &memStore{appendErr: errors.New("disk full")}
	disp := &stubDispatcher{resp: core.Response{Content: "hello", Source: "OpenAI"}}
	a := NewAssistant(store, disp, nil)

	resp, err := a.Handle(context.Background(), core.ChannelWeb, "hi", nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Content)
}

func TestHandle_MirrorsToOtherChannels(t *testing.T) {
	disp := &stubDispatcher{resp: core.Response{Content: "hello", Source: "OpenAI"}}
	a := NewAssistant(&memStore{}, disp, nil)

	web := &recordingMirror{channel: core.ChannelWeb}
	tg := &recordingMirror{channel: core.ChannelTelegram, err: errors.New("blocked")}
	cli := &recordingMirror{channel: core.ChannelCLI}
	a.AddMirror(web)
	a.AddMirror(tg)
	a.AddMirror(cli)

	_, err := a.Handle(context.Background(), core.ChannelWeb, "hi", nil)
	require.NoError(t, err)

	assert.Empty(t, web.turns, "origin is not mirrored to itself")
	require.Len(t, tg.turns, 1)
	require.Len(t, cli.turns, 1, "a failing mirror does not stop the others")

	turn := cli.turns[0]
	assert.NotEmpty(t, turn.ID)
	assert.Equal(t, core.ChannelWeb, turn.Channel)
	assert.Equal(t, "hi", turn.User)
	assert.Equal(t, "hello", turn.Response.Content)
}

func TestUserContent(t *testing.T) {
	img := &core.Image{}
	assert.Equal(t, "hello", core.UserContent("hello", nil))
	assert.Equal(t, "[image] look", core.UserContent("look", img))
	assert.Equal(t, "[image]", core.UserContent("", img))
}

type storeContext struct {
	store *memStore
}

func (s storeContext) BuildContext(ctx context.Context) (string, []core.Message) {
	msgs, _ := s.store.RecentMessages(ctx, 10)
	return "sys", msgs
}

type capturingProvider struct {
	reqs []core.CompletionRequest
}

func (p *capturingProvider) Name() string           { return "OpenAI" }
func (p *capturingProvider) Timeout() time.Duration { return time.Second }
func (p *capturingProvider) Vision() bool           { return true }
func (p *capturingProvider) TextFallback() bool     { return false }

func (p *capturingProvider) Complete(_ context.Context, req core.CompletionRequest) (core.Response, error) {
	p.reqs = append(p.reqs, req)
	return core.Response{Content: "Done."}, nil
}

func TestHandle_NewMessageSentOnce(t *testing.T) {
	store := &memStore{messages: []core.Message{
		{Role: core.RoleUser, Content: "hi"},
		{Role: core.RoleAssistant, Content: "hello"},
	}}
	provider := &capturingProvider{}
	a := NewAssistant(store, dispatch.NewDispatcher([]core.Provider{provider}, storeContext{store: store}), nil)

	_, err := a.Handle(context.Background(), core.ChannelWeb, "book dentist", nil)
	require.NoError(t, err)

	require.Len(t, provider.reqs, 1)
	req := provider.reqs[0]
	assert.Equal(t, "book dentist", req.Message)
	assert.Equal(t, []core.Message{
		{Role: core.RoleUser, Content: "hi"},
		{Role: core.RoleAssistant, Content: "hello"},
	}, req.History)

	// the user turn is still persisted before the reply
	require.Len(t, store.messages, 4)
	assert.Equal(t, "book dentist", store.messages[2].Content)
}
