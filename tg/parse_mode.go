package tg

// ParseMode selects how the provider formats outgoing message text.
type ParseMode string

const (
	ParseModeNone       ParseMode = ""
	ParseModeHTML       ParseMode = "HTML"
	ParseModeMarkdown   ParseMode = "Markdown"
	ParseModeMarkdownV2 ParseMode = "MarkdownV2"
)

// IsValid reports whether the provider accepts p. Names are case-sensitive.
func (p ParseMode) IsValid() bool {
	switch p {
	case ParseModeNone, ParseModeHTML, ParseModeMarkdown, ParseModeMarkdownV2:
		return true
	}
	return false
}

// ChatType is the kind of chat an update came from.
type ChatType string

const (
	ChatTypePrivate    ChatType = "private"
	ChatTypeGroup      ChatType = "group"
	ChatTypeSupergroup ChatType = "supergroup"
	ChatTypeChannel    ChatType = "channel"
)

// IsGroup reports whether chats of this kind fall under the per-group
// flood limit.
func (c ChatType) IsGroup() bool {
	return c == ChatTypeGroup || c == ChatTypeSupergroup
}
