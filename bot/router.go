package bot

import (
	"strings"
	"unicode/utf8"
)

// Command is what an inbound message asks the bot to do.
type Command int

const (
	CommandNone Command = iota
	CommandList
	CommandSold
	CommandEdit
	CommandHelp
)

func (c Command) String() string {
	switch c {
	case CommandList:
		return "list"
	case CommandSold:
		return "sold"
	case CommandEdit:
		return "edit"
	case CommandHelp:
		return "help"
	}
	return "none"
}

const minCommandLen = 3

type commandRule struct {
	match   func(upper string) bool
	command Command
}

// commandRules are evaluated in order against the upper-cased message; the
// first match wins.
var commandRules = []commandRule{
	{func(u string) bool { return strings.HasPrefix(u, "LIST:") }, CommandList},
	{func(u string) bool { return strings.HasPrefix(u, "SOLD") }, CommandSold},
	{func(u string) bool { return strings.HasPrefix(u, "EDIT:") }, CommandEdit},
	{func(u string) bool {
		return u == "HELP" || strings.Contains(u, "BEACON") || strings.Contains(u, "COMMAND")
	}, CommandHelp},
}

// Classify maps a message to a command. Unrecognised text is CommandNone:
// the bot stays silent in a shared chat.
func Classify(text string) Command {
	text = strings.TrimSpace(text)
	if tooShort(text) {
		return CommandNone
	}
	upper := strings.ToUpper(text)
	for _, r := range commandRules {
		if r.match(upper) {
			return r.command
		}
	}
	return CommandNone
}

func tooShort(text string) bool {
	return utf8.RuneCountInString(text) < minCommandLen
}

// afterPrefix drops as many runes from text as prefix has. Callers have
// already matched the prefix case-insensitively.
func afterPrefix(text, prefix string) string {
	r := []rune(text)
	n := utf8.RuneCountInString(prefix)
	if len(r) <= n {
		return ""
	}
	return string(r[n:])
}
