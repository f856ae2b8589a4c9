package config

import (
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/prilive-com/tgbots/tg"
)

const (
	keyringService = "tgbots"
	keyringPrefix  = "keyring:"
)

// ResolveToken returns raw, or the keychain secret when raw is
// keyring:<account>.
func ResolveToken(raw string) (string, error) {
	account, ok := strings.CutPrefix(raw, keyringPrefix)
	if !ok {
		return raw, nil
	}
	if account == "" {
		return "", tg.NewConfigError("token", "keyring account is empty")
	}
	secret, err := keyring.Get(keyringService, account)
	if err != nil {
		return "", fmt.Errorf("%w: keyring account %q: %w", tg.ErrInvalidConfig, account, err)
	}
	return strings.TrimSpace(secret), nil
}

// StoreToken saves token in the keychain under account.
func StoreToken(account, token string) error {
	return keyring.Set(keyringService, account, token)
}

// ResolveTokens replaces keyring references in every bot's token.
func (s *Settings) ResolveTokens() error {
	for i := range s.Bots {
		token, err := ResolveToken(s.Bots[i].Token)
		if err != nil {
			return fmt.Errorf("bots[%d]: %w", i, err)
		}
		s.Bots[i].Token = token
	}
	return nil
}
