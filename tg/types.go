package tg

// ChatID represents a chat identifier.
// Valid types: int64 (numeric ID) or string (channel username like "@channelusername")
type ChatID = any

// User represents a Telegram user or bot.
type User struct {
	ID                      int64  `json:"id"`
	IsBot                   bool   `json:"is_bot"`
	FirstName               string `json:"first_name"`
	LastName                string `json:"last_name,omitempty"`
	Username                string `json:"username,omitempty"`
	LanguageCode            string `json:"language_code,omitempty"`
	CanJoinGroups           bool   `json:"can_join_groups,omitempty"`
	CanReadAllGroupMessages bool   `json:"can_read_all_group_messages,omitempty"`
	SupportsInlineQueries   bool   `json:"supports_inline_queries,omitempty"`
}

// Chat represents a Telegram chat.
type Chat struct {
	ID        int64    `json:"id"`
	Type      ChatType `json:"type"`
	Title     string   `json:"title,omitempty"`
	Username  string   `json:"username,omitempty"`
	FirstName string   `json:"first_name,omitempty"`
	LastName  string   `json:"last_name,omitempty"`
}

// IsGroup reports whether the chat is a group or supergroup.
// Group chats are subject to the stricter per-group flood limits.
func (c *Chat) IsGroup() bool {
	return c != nil && c.Type.IsGroup()
}

// Message represents a Telegram message.
type Message struct {
	MessageID       int             `json:"message_id"`
	MessageThreadID int             `json:"message_thread_id,omitempty"`
	From            *User           `json:"from,omitempty"`
	SenderChat      *Chat           `json:"sender_chat,omitempty"`
	Date            int64           `json:"date"`
	Chat            *Chat           `json:"chat"`
	ReplyToMessage  *Message        `json:"reply_to_message,omitempty"`
	EditDate        int64           `json:"edit_date,omitempty"`
	Text            string          `json:"text,omitempty"`
	Entities        []MessageEntity `json:"entities,omitempty"`
	Caption         string          `json:"caption,omitempty"`
}

// MessageEntity represents a special entity in a text message.
type MessageEntity struct {
	Type   string `json:"type"`
	Offset int    `json:"offset"`
	Length int    `json:"length"`
	URL    string `json:"url,omitempty"`
	User   *User  `json:"user,omitempty"`
}

// Command returns the bot command at the start of the message, without the
// leading slash and without a trailing @botname, plus the remaining text.
// ok is false when the message does not start with a bot_command entity.
func (m *Message) Command() (name, args string, ok bool) {
	if m == nil || len(m.Entities) == 0 {
		return "", "", false
	}
	e := m.Entities[0]
	if e.Type != "bot_command" || e.Offset != 0 {
		return "", "", false
	}
	runes := []rune(m.Text)
	if e.Length > len(runes) || e.Length < 2 {
		return "", "", false
	}
	name = string(runes[1:e.Length])
	for i, r := range name {
		if r == '@' {
			name = name[:i]
			break
		}
	}
	rest := runes[e.Length:]
	for len(rest) > 0 && rest[0] == ' ' {
		rest = rest[1:]
	}
	return name, string(rest), true
}
