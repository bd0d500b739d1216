package memory

import (
	"context"

	"github.com/pkoukk/tiktoken-go"
	"github.com/sandevgo/lumina/pkg/log"
)

const tokenEncoding = "cl100k_base"

type tiktokenCounter struct {
	tk *tiktoken.Tiktoken
}

// NewTiktokenCounter loads the cl100k_base encoding. It returns nil when the
// encoding cannot be loaded, which disables history trimming.
func NewTiktokenCounter(ctx context.Context) TokenCounter {
	tk, err := tiktoken.GetEncoding(tokenEncoding)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("tokenizer unavailable, history token budget disabled")
		return nil
	}
	return &tiktokenCounter{tk: tk}
}

func (c *tiktokenCounter) Count(text string) int {
	return len(c.tk.Encode(text, nil, nil))
}
