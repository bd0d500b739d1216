package conv

import (
	"strings"

	"github.com/inbucket/html2text"
)

// HTMLToText renders HTML as readable plain text. Input that cannot be
// parsed is returned unchanged.
func HTMLToText(html string) string {
	text, err := html2text.FromString(html, html2text.Options{OmitLinks: false})
	if err != nil {
		return html
	}
	return strings.TrimSpace(text)
}
