package shared

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestRedact(t *testing.T) {
	tc := []struct {
		name    string
		input   string
		secrets []string
		want    string
	}{
		{
			name:    "single secret",
			input:   `{"error":"invalid_client","client_secret":"s3cr3t"}`,
			secrets: []string{"s3cr3t"},
			want:    `{"error":"invalid_client","client_secret":"[REDACTED]"}`,
		},
		{
			name:    "multiple secrets",
			input:   "AT1 and RT1",
			secrets: []string{"AT1", "RT1"},
			want:    "[REDACTED] and [REDACTED]",
		},
		{
			name:    "empty secrets are ignored",
			input:   "nothing to hide",
			secrets: []string{"", ""},
			want:    "nothing to hide",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := Redact(tt.input, tt.secrets...); got != tt.want {
				t.Errorf("Redact() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMask(t *testing.T) {
	if got := Mask("BQDabcdefgh"); got != "BQDa********" {
		t.Errorf("Mask() = %q", got)
	}
	if got := Mask("abc"); got != "***" {
		t.Errorf("Mask() short = %q", got)
	}
}

func TestGenerateState(t *testing.T) {
	a, err := GenerateState()
	if err != nil {
		t.Fatalf("GenerateState() error = %v", err)
	}
	b, _ := GenerateState()

	if a == b {
		t.Error("expected distinct states")
	}
	if len(a) != 43 {
		t.Errorf("expected 43 chars of base64, got %d", len(a))
	}
}

func TestConfigureLogger(t *testing.T) {
	t.Run("json format", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)

		if err := ConfigureLogger(logger, LogConfig{Level: "debug", Format: "json"}); err != nil {
			t.Fatalf("ConfigureLogger() error = %v", err)
		}

		logger.Debug("hello", "key", "value")
		if !strings.Contains(buf.String(), `"key":"value"`) {
			t.Errorf("expected json output, got %s", buf.String())
		}
	})

	t.Run("invalid values", func(t *testing.T) {
		logger := NewLogger(&bytes.Buffer{})
		for _, c := range []LogConfig{{Level: "loud"}, {Format: "xml"}} {
			if err := ConfigureLogger(logger, c); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("ConfigureLogger(%+v) error = %v", c, err)
			}
		}
	})
}

func TestErrors(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), &UpstreamError{Status: 404, Body: "{}"})
	upstream, ok := AsUpstream(wrapped)
	if !ok || upstream.Status != 404 {
		t.Errorf("AsUpstream() = %v, %v", upstream, ok)
	}

	netErr := &NetworkError{Err: errors.New("dial tcp: refused")}
	if _, ok := AsNetwork(netErr); !ok {
		t.Error("expected AsNetwork to match")
	}
	if _, ok := AsNetwork(wrapped); ok {
		t.Error("expected AsNetwork not to match an upstream error")
	}
}
