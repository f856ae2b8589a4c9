package testutil

import (
	"testing"

	"github.com/prilive-com/tgbots/tg"
)

// Test constants for consistent test data.
const (
	// TokenA, TokenB and TokenC are valid-format bot tokens.
	TokenA = "111111:AAA-alpha_secret"
	TokenB = "222222:BBB-bravo_secret"
	TokenC = "333333:CCC-charlie_secret"

	UsernameA = "alpha_bot"
	UsernameB = "bravo_bot"
	UsernameC = "charlie_bot"

	// TestChatID is a private chat ID.
	TestChatID = int64(123456789)

	// TestGroupID is a group chat ID.
	TestGroupID = int64(-1001234567890)

	// TestUserID is a test user ID.
	TestUserID = int64(987654321)
)

// NewMockServerWithBots returns a server that knows TokenA, TokenB and TokenC.
func NewMockServerWithBots(t *testing.T) *MockTelegramServer {
	t.Helper()
	m := NewMockServer(t)
	m.AddBot(TokenA, UsernameA)
	m.AddBot(TokenB, UsernameB)
	m.AddBot(TokenC, UsernameC)
	return m
}

// TestUser returns a test user fixture.
func TestUser() *tg.User {
	return &tg.User{
		ID:        TestUserID,
		FirstName: "Test",
		LastName:  "User",
		Username:  "testuser",
	}
}

// TestChat returns a test private chat fixture.
func TestChat() *tg.Chat {
	return &tg.Chat{
		ID:        TestChatID,
		Type:      tg.ChatTypePrivate,
		FirstName: "Test",
		Username:  "testuser",
	}
}

// TestGroupChat returns a test group chat fixture.
func TestGroupChat() *tg.Chat {
	return &tg.Chat{
		ID:    TestGroupID,
		Type:  tg.ChatTypeSupergroup,
		Title: "Test Group",
	}
}

// TestMessage returns a test message fixture.
func TestMessage(messageID int, text string) *tg.Message {
	return &tg.Message{
		MessageID: messageID,
		Date:      1234567890,
		Chat:      TestChat(),
		From:      TestUser(),
		Text:      text,
	}
}

// TestUpdate returns a test update fixture with a message.
func TestUpdate(updateID int, text string) tg.Update {
	return tg.Update{
		UpdateID: updateID,
		Message:  TestMessage(1, text),
	}
}

// TestCommandUpdate returns an update whose message starts with a bot
// command, e.g. TestCommandUpdate(1, "/start", "now").
func TestCommandUpdate(updateID int, command, args string) tg.Update {
	text := command
	if args != "" {
		text += " " + args
	}
	msg := TestMessage(1, text)
	msg.Entities = []tg.MessageEntity{{Type: "bot_command", Offset: 0, Length: len([]rune(command))}}
	return tg.Update{UpdateID: updateID, Message: msg}
}

// TestGroupUpdate returns a message update from TestGroupChat.
func TestGroupUpdate(updateID int, text string) tg.Update {
	msg := TestMessage(1, text)
	msg.Chat = TestGroupChat()
	return tg.Update{UpdateID: updateID, Message: msg}
}

// TestUpdateWithCallback returns a test update fixture with a callback query.
func TestUpdateWithCallback(updateID int, cbID, cbData string) tg.Update {
	return tg.Update{
		UpdateID: updateID,
		CallbackQuery: &tg.CallbackQuery{
			ID:           cbID,
			From:         TestUser(),
			Message:      TestMessage(1, "Original message"),
			ChatInstance: "instance_123",
			Data:         cbData,
		},
	}
}
