package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/desertthunder/tunen/internal/shared"
)

func stateMessage(sessionID, randValue string) []byte {
	return fmt.Appendf(nil, "%d!%s!%d!%s", len(sessionID), sessionID, len(randValue), randValue)
}

// NewStateToken returns an OAuth state value bound to sessionID: hex(hmac).nonce, the nonce from [shared.GenerateState].
func NewStateToken(sessionID string, key []byte) (string, error) {
	randValue, err := shared.GenerateState()
	if err != nil {
		return "", err
	}

	mac := hmac.New(sha256.New, key)
	mac.Write(stateMessage(sessionID, randValue))

	return hex.EncodeToString(mac.Sum(nil)) + "." + randValue, nil
}

// ValidateStateToken reports whether token was produced by [NewStateToken] for sessionID and key.
func ValidateStateToken(token, sessionID string, key []byte) bool {
	macHex, randValue, ok := strings.Cut(token, ".")
	if !ok || randValue == "" {
		return false
	}

	received, err := hex.DecodeString(macHex)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, key)
	mac.Write(stateMessage(sessionID, randValue))

	return hmac.Equal(received, mac.Sum(nil))
}
