// Package scrub removes bot tokens from error text before it reaches logs.
package scrub

import (
	"strings"

	"github.com/prilive-com/tgbots/tg"
)

// TokenFromError replaces the bot token in err's message with the token
// fingerprint, so the failing bot stays identifiable but the secret does not.
// http.Client.Do() puts the request URL (which carries the token) into its
// errors. The error chain is preserved for errors.Is/As via Unwrap().
func TokenFromError(err error, token tg.SecretToken) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	scrubbed := String(msg, token)
	if scrubbed == msg {
		return err
	}
	return &scrubbedError{msg: scrubbed, err: err}
}

// String replaces every occurrence of any of the tokens in s.
func String(s string, tokens ...tg.SecretToken) string {
	for _, token := range tokens {
		if v := token.Value(); v != "" && strings.Contains(s, v) {
			s = strings.ReplaceAll(s, v, token.Fingerprint())
		}
	}
	return s
}

type scrubbedError struct {
	msg string
	err error
}

func (e *scrubbedError) Error() string { return e.msg }
func (e *scrubbedError) Unwrap() error { return e.err }
