package testutil

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/prilive-com/tgbots/tg"
)

// Envelope is the body of every Bot API reply.
type Envelope struct {
	OK          bool                   `json:"ok"`
	Result      any                    `json:"result,omitempty"`
	ErrorCode   int                    `json:"error_code,omitempty"`
	Description string                 `json:"description,omitempty"`
	Parameters  *tg.ResponseParameters `json:"parameters,omitempty"`
}

func writeEnvelope(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(env)
}

// ReplyOK answers with result.
func ReplyOK(w http.ResponseWriter, result any) {
	writeEnvelope(w, http.StatusOK, Envelope{OK: true, Result: result})
}

// ReplyError answers with a failed envelope; the HTTP status equals code.
func ReplyError(w http.ResponseWriter, code int, description string) {
	writeEnvelope(w, code, Envelope{ErrorCode: code, Description: description})
}

// ReplyRateLimit answers like the provider's flood control, with
// retry_after in both the body and the Retry-After header.
func ReplyRateLimit(w http.ResponseWriter, retryAfter int) {
	secs := strconv.Itoa(retryAfter)
	w.Header().Set("Retry-After", secs)
	writeEnvelope(w, http.StatusTooManyRequests, Envelope{
		ErrorCode:   http.StatusTooManyRequests,
		Description: "Too Many Requests: retry after " + secs,
		Parameters:  &tg.ResponseParameters{RetryAfter: retryAfter},
	})
}

// ReplyUnauthorized is the answer for a revoked or unknown token.
func ReplyUnauthorized(w http.ResponseWriter) {
	ReplyError(w, http.StatusUnauthorized, "Unauthorized")
}

func ReplyServerError(w http.ResponseWriter, code int, description string) {
	ReplyError(w, code, description)
}

func ReplyBadRequest(w http.ResponseWriter, description string) {
	ReplyError(w, http.StatusBadRequest, "Bad Request: "+description)
}

func ReplyNotFound(w http.ResponseWriter, description string) {
	ReplyError(w, http.StatusNotFound, "Not Found: "+description)
}

// ReplyMessage answers sendMessage with a message in the private test chat.
func ReplyMessage(w http.ResponseWriter, messageID int) {
	ReplyOK(w, TestMessage(messageID, "Test message"))
}

// ReplyUpdates answers getUpdates. With no updates the result is [].
func ReplyUpdates(w http.ResponseWriter, updates ...tg.Update) {
	ReplyOK(w, append(make([]tg.Update, 0, len(updates)), updates...))
}

// ReplyEmptyUpdates answers getUpdates with nothing pending.
func ReplyEmptyUpdates(w http.ResponseWriter) {
	ReplyUpdates(w)
}

// ReplyUser answers getMe for a bot account.
func ReplyUser(w http.ResponseWriter, id int64, username string) {
	ReplyOK(w, tg.User{ID: id, IsBot: true, FirstName: username, Username: username})
}

// ReplyWebhookInfo answers getWebhookInfo. An empty url means no webhook.
func ReplyWebhookInfo(w http.ResponseWriter, url string, pendingCount int) {
	ReplyOK(w, tg.WebhookInfo{URL: url, PendingUpdateCount: pendingCount})
}
