package session

import (
	"strings"
	"testing"
)

func TestStateToken(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")

	token, err := NewStateToken("session-1", key)
	if err != nil {
		t.Fatalf("NewStateToken() error = %v", err)
	}

	tt := []struct {
		name      string
		token     string
		sessionID string
		key       []byte
		want      bool
	}{
		{"valid", token, "session-1", key, true},
		{"other session", token, "session-2", key, false},
		{"other key", token, "session-1", []byte("another-key-another-key-another!!"), false},
		{"no separator", strings.ReplaceAll(token, ".", ""), "session-1", key, false},
		{"bad hex", "zz." + strings.Split(token, ".")[1], "session-1", key, false},
		{"tampered random", strings.Split(token, ".")[0] + ".00", "session-1", key, false},
		{"empty", "", "session-1", key, false},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidateStateToken(tc.token, tc.sessionID, tc.key); got != tc.want {
				t.Errorf("ValidateStateToken() = %v, want %v", got, tc.want)
			}
		})
	}

	other, _ := NewStateToken("session-1", key)
	if other == token {
		t.Error("expected tokens to differ between calls")
	}

	_, nonce, _ := strings.Cut(token, ".")
	if len(nonce) != 43 || strings.ContainsAny(nonce, ".+/=") {
		t.Errorf("expected a 43 char URL-safe nonce, got %q", nonce)
	}
}
