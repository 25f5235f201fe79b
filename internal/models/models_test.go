package models

import (
	"testing"
	"time"
)

func TestCredential(t *testing.T) {
	issued := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	cred := Credential{AccessToken: "AT1", RefreshToken: "RT1", IssuedAt: issued, ExpiresIn: 3600}

	t.Run("ExpiresAt", func(t *testing.T) {
		want := issued.Add(time.Hour)
		if got := cred.ExpiresAt(); !got.Equal(want) {
			t.Errorf("ExpiresAt() = %v, want %v", got, want)
		}
	})

	t.Run("Expired", func(t *testing.T) {
		tt := []struct {
			name string
			now  time.Time
			want bool
		}{
			{"fresh", issued.Add(10 * time.Minute), false},
			{"just outside skew", issued.Add(time.Hour - 61*time.Second), false},
			{"exactly at skew boundary", issued.Add(time.Hour - time.Minute), true},
			{"inside skew", issued.Add(time.Hour - 30*time.Second), true},
			{"past expiry", issued.Add(2 * time.Hour), true},
		}

		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				if got := cred.Expired(tc.now, time.Minute); got != tc.want {
					t.Errorf("Expired() = %v, want %v", got, tc.want)
				}
			})
		}
	})

	t.Run("Validate", func(t *testing.T) {
		if err := cred.Validate(); err != nil {
			t.Errorf("expected valid credential, got %v", err)
		}
		if err := (Credential{IssuedAt: issued}).Validate(); err == nil {
			t.Error("expected error for missing access token")
		}
		if err := (Credential{AccessToken: "AT"}).Validate(); err == nil {
			t.Error("expected error for missing issued at")
		}
	})
}

func TestClientConfig(t *testing.T) {
	valid := ClientConfig{ClientID: "id", ClientSecret: "secret", RedirectURI: "http://localhost/callback"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	missing := valid
	missing.ClientSecret = ""
	if err := missing.Validate(); err == nil {
		t.Error("expected error for missing client secret")
	}
}
