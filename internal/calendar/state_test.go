package calendar

import (
	"strings"
	"testing"
)

func TestFormatStateRoundTrip(t *testing.T) {
	token := FormatState(ProviderGoogle, PlatformMobile, 42)

	parsed := ParseState(token)
	if parsed == nil {
		t.Fatalf("expected token %q to parse", token)
	}
	if parsed.Provider != ProviderGoogle {
		t.Errorf("provider = %q, want %q", parsed.Provider, ProviderGoogle)
	}
	if parsed.Platform != PlatformMobile {
		t.Errorf("platform = %q, want %q", parsed.Platform, PlatformMobile)
	}
	if parsed.UserID != "42" {
		t.Errorf("user id = %q, want %q", parsed.UserID, "42")
	}
	if parsed.StateID == "" {
		t.Errorf("expected non-empty state id")
	}
}

func TestFormatStateUnique(t *testing.T) {
	a := FormatState(ProviderGoogle, PlatformWeb, 1)
	b := FormatState(ProviderGoogle, PlatformWeb, 1)
	if a == b {
		t.Errorf("expected unique state tokens, got %q twice", a)
	}
}

func TestParseStateRejectsMalformed(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"no separators", "bad"},
		{"too few parts", "google:web:42"},
		{"empty provider", ":web:42:abc"},
		{"empty platform", "google::42:abc"},
		{"empty user id", "google:web::abc"},
		{"empty suffix", "google:web:42:"},
		{"unknown platform", "google:desktop:42:abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if parsed := ParseState(tt.token); parsed != nil {
				t.Errorf("ParseState(%q) = %+v, want nil", tt.token, parsed)
			}
		})
	}
}

func TestParseStateToleratesColonsInSuffix(t *testing.T) {
	parsed := ParseState("microsoft:web:7:uuid:with:colons")
	if parsed == nil {
		t.Fatalf("expected token with colons in suffix to parse")
	}
	if parsed.StateID != "uuid:with:colons" {
		t.Errorf("state id = %q, want %q", parsed.StateID, "uuid:with:colons")
	}
}

func TestFormatStateShape(t *testing.T) {
	token := FormatState(ProviderMicrosoft, PlatformWeb, 9)
	if !strings.HasPrefix(token, "microsoft:web:9:") {
		t.Errorf("token %q missing expected prefix", token)
	}
}
