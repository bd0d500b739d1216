package core

import "time"

const (
	AppName       = "Lumina"
	AppUserAgent  = "Lumina-Gateway/0.1"
	RepositoryURL = "https://github.com/sandevgo/lumina"
	Version       = "0.1.0"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// SourceError marks a Response produced after every provider failed.
const SourceError = "Error"

// Channel identifies the front end a turn originated from.
type Channel string

const (
	ChannelWeb      Channel = "web"
	ChannelTelegram Channel = "telegram"
	ChannelCLI      Channel = "cli"
)

type Message struct {
	ID        int64     `json:"id,omitempty"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

type Fact struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Image is a raw uploaded picture together with its sniffed MIME type.
type Image struct {
	Data []byte
	MIME string
}

// UserContent is how a user turn is stored: the text itself, or an
// "[image]" marker followed by the caption.
func UserContent(message string, image *Image) string {
	if image == nil {
		return message
	}
	if message == "" {
		return "[image]"
	}
	return "[image] " + message
}

// Response is the normalized reply of whichever provider answered.
type Response struct {
	Content   string `json:"content"`
	Source    string `json:"source"`
	Reasoning string `json:"reasoning,omitempty"`
}

func (r Response) Failed() bool {
	return r.Source == SourceError
}

// Turn is one completed exchange, used for mirroring across front ends.
type Turn struct {
	ID       string
	Channel  Channel
	User     string
	Response Response
	At       time.Time
}
