package telegram

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"

	"github.com/sandevgo/lumina/internal/core"
)

type sent struct {
	text string
	opts []interface{}
}

type fakeSender struct {
	sent       []sent
	rejectHTML bool
}

func (f *fakeSender) Send(_ tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	for _, o := range opts {
		if o == tele.ModeHTML && f.rejectHTML {
			return nil, errors.New("telegram: bad request: can't parse entities")
		}
	}
	f.sent = append(f.sent, sent{text: what.(string), opts: opts})
	return &tele.Message{}, nil
}

func TestSplitHTML(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   int
	}{
		{name: "short text", input: "hello", maxLen: 10, want: 1},
		{name: "exact limit", input: strings.Repeat("a", 10), maxLen: 10, want: 1},
		{name: "hard split", input: strings.Repeat("a", 25), maxLen: 10, want: 3},
		{name: "newline split", input: strings.Repeat("a", 8) + "\n" + strings.Repeat("b", 8), maxLen: 10, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := splitHTML(tt.input, tt.maxLen)
			assert.Len(t, chunks, tt.want)
			for _, c := range chunks {
				assert.LessOrEqual(t, len(c), tt.maxLen)
			}
		})
	}
}

func TestSplitHTML_PrefersNewlines(t *testing.T) {
	chunks := splitHTML("aaaaaaaa\nbbbbbbbb", 10)
	assert.Equal(t, []string{"aaaaaaaa", "bbbbbbbb"}, chunks)
}

func TestSplitHTML_KeepsRunesWhole(t *testing.T) {
	text := strings.Repeat("ä", 10) // 20 bytes
	for _, c := range splitHTML(text, 5) {
		assert.True(t, strings.HasPrefix(c, "ä"), "chunk %q starts mid-rune", c)
	}
}

func TestSender_SendsHTML(t *testing.T) {
	fs := &fakeSender{}
	s := newSender(fs)

	require.NoError(t, s.sendMarkdown(context.Background(), &tele.User{ID: 1}, "**hi**", false))
	require.Len(t, fs.sent, 1)
	assert.Equal(t, "<strong>hi</strong>", fs.sent[0].text)
	assert.Contains(t, fs.sent[0].opts, tele.ModeHTML)
}

func TestSender_FallsBackToPlainText(t *testing.T) {
	fs := &fakeSender{rejectHTML: true}
	s := newSender(fs)

	require.NoError(t, s.sendMarkdown(context.Background(), &tele.User{ID: 1}, "**hi** there", true))
	require.Len(t, fs.sent, 1)
	assert.NotContains(t, fs.sent[0].text, "<strong>")
	assert.Contains(t, fs.sent[0].text, "there")
	assert.Contains(t, fs.sent[0].opts, tele.Silent)
}

func TestSender_EmptyMessage(t *testing.T) {
	s := newSender(&fakeSender{})
	assert.ErrorIs(t, s.sendMarkdown(context.Background(), &tele.User{ID: 1}, "   ", false), errEmptyChunk)
}

func TestMirrorLines(t *testing.T) {
	user, reply := mirrorLines(core.Turn{
		Channel:  core.ChannelWeb,
		User:     "book the dentist",
		Response: core.Response{Content: "Done."},
	})
	assert.Equal(t, "👤 You (web): book the dentist", user)
	assert.Equal(t, "🤖 Lumina (web): Done.", reply)
}

func TestBot_MirrorSendsToOwner(t *testing.T) {
	fs := &fakeSender{}
	b := &Bot{sender: newSender(fs), ownerID: 42}

	err := b.Mirror(context.Background(), core.Turn{
		Channel:  core.ChannelCLI,
		User:     "hi",
		Response: core.Response{Content: "hello"},
	})
	require.NoError(t, err)
	require.Len(t, fs.sent, 2)
	assert.Contains(t, fs.sent[0].text, "You (cli): hi")
	assert.Contains(t, fs.sent[1].text, "Lumina (cli): hello")
	assert.Equal(t, core.ChannelTelegram, b.Channel())
}
