package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/lumina/internal/core"
)

type stubHandler struct {
	message string
	image   *core.Image
	calls   int
}

func (s *stubHandler) Handle(_ context.Context, channel core.Channel, message string, image *core.Image) (core.Response, error) {
	s.calls++
	s.message = message
	s.image = image
	return core.Response{Content: "reply to " + message, Source: "OpenAI", Reasoning: "thinking"}, nil
}

type stubRouter struct{}

func (stubRouter) Execute(_ context.Context, input string) (string, bool) {
	if input == "/facts" {
		return "no facts", true
	}
	return "", false
}

func (stubRouter) ListCommands() []core.Command { return nil }

func TestProcess_Chat(t *testing.T) {
	h := &stubHandler{}
	r := &ReadLine{handler: h, router: stubRouter{}}
	var out bytes.Buffer

	r.process(context.Background(), "hello", &out)

	assert.Equal(t, "hello", h.message)
	assert.Contains(t, out.String(), "reply to hello")
	assert.Contains(t, out.String(), "[Thinking]")
	assert.Contains(t, out.String(), "OpenAI")
}

func TestProcess_Command(t *testing.T) {
	h := &stubHandler{}
	r := &ReadLine{handler: h, router: stubRouter{}}
	var out bytes.Buffer

	r.process(context.Background(), "/facts", &out)

	assert.Zero(t, h.calls)
	assert.Equal(t, "no facts\n", out.String())
}

func TestProcess_Image(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pic.gif")
	require.NoError(t, os.WriteFile(path, []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;"), 0o644))

	h := &stubHandler{}
	r := &ReadLine{handler: h, router: stubRouter{}}
	var out bytes.Buffer

	r.process(context.Background(), "/image "+path+" what is this?", &out)

	require.NotNil(t, h.image)
	assert.Equal(t, "image/gif", h.image.MIME)
	assert.Equal(t, "what is this?", h.message)
}

func TestProcess_ImageErrors(t *testing.T) {
	text := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(text, []byte("plain text"), 0o644))

	h := &stubHandler{}
	r := &ReadLine{handler: h, router: stubRouter{}}

	var out bytes.Buffer
	r.process(context.Background(), "/image", &out)
	assert.Contains(t, out.String(), "Usage")

	out.Reset()
	r.process(context.Background(), "/image "+text, &out)
	assert.Contains(t, out.String(), "is not an image")

	out.Reset()
	r.process(context.Background(), "/image /does/not/exist.png", &out)
	assert.Contains(t, out.String(), "failed to open image")

	assert.Zero(t, h.calls)
}

func TestParseImageCommand(t *testing.T) {
	path, caption, err := parseImageCommand("/image ./a.png  a red  car ")
	require.NoError(t, err)
	assert.Equal(t, "./a.png", path)
	assert.Equal(t, "a red  car", caption)

	assert.False(t, isImageCommand("/images"))
	assert.True(t, isImageCommand("/image x"))
}

func TestWriteMirror(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, writeMirror(&out, core.Turn{
		Channel:  core.ChannelTelegram,
		User:     "hi",
		Response: core.Response{Content: "hello"},
	}))
	assert.Contains(t, out.String(), "[telegram] You: hi")
	assert.Contains(t, out.String(), "[telegram] Lumina: hello")
}
