package directive

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	ActionAdd    = "add"
	ActionDelete = "delete"
	ActionEdit   = "edit"
)

var blockPattern = regexp.MustCompile(`(?s)\[CALENDAR_EVENT\](.*?)\[/CALENDAR_EVENT\]`)

// Directive is one calendar instruction embedded in a model reply.
type Directive struct {
	Action      string `validate:"oneof=add delete edit"`
	Title       string `validate:"required"`
	Start       string `validate:"required"`
	Description string
	NewTitle    string
	NewStart    string
}

// Parsed is the result of parsing one block: either a usable Directive or
// the reason it was skipped.
type Parsed struct {
	Directive Directive
	Skip      string
}

func (p Parsed) Skipped() bool {
	return p.Skip != ""
}

var validate = validator.New()

// Blocks returns the bodies of every directive block in text, in order of
// appearance.
func Blocks(text string) []string {
	matches := blockPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	bodies := make([]string, 0, len(matches))
	for _, m := range matches {
		bodies = append(bodies, m[1])
	}
	return bodies
}

// Parse extracts every directive block from text.
func Parse(text string) []Parsed {
	blocks := Blocks(text)
	if blocks == nil {
		return nil
	}

	out := make([]Parsed, 0, len(blocks))
	for _, body := range blocks {
		out = append(out, ParseBlock(body))
	}
	return out
}

// ParseBlock turns "key: value" lines into a Directive. Keys are matched
// case-insensitively and the last occurrence of a key wins.
func ParseBlock(body string) Parsed {
	fields := make(map[string]string)
	for line := range strings.SplitSeq(body, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			continue
		}
		fields[key] = strings.TrimSpace(value)
	}

	d := Directive{
		Action:      normalizeAction(fields["action"]),
		Title:       fields["title"],
		Start:       fields["start"],
		Description: fields["description"],
		NewTitle:    fields["new_title"],
		NewStart:    fields["new_start"],
	}

	if err := validate.Struct(d); err != nil {
		return Parsed{Directive: d, Skip: skipReason(err)}
	}
	return Parsed{Directive: d}
}

func normalizeAction(raw string) string {
	switch a := strings.ToLower(strings.TrimSpace(raw)); a {
	case ActionDelete, ActionEdit:
		return a
	default:
		return ActionAdd
	}
}

func skipReason(err error) string {
	var missing []string
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			missing = append(missing, strings.ToLower(fe.Field()))
		}
	}
	if len(missing) == 0 {
		return err.Error()
	}
	return "missing " + strings.Join(missing, ", ")
}
