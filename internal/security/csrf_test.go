package security

import "testing"

func TestCSRFGenerator(t *testing.T) {
	g := NewCSRFGenerator("secret")

	token, err := g.GenerateToken("session-1")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	again, _ := g.GenerateToken("session-1")
	if token != again {
		t.Error("tokens for the same session should be stable")
	}

	other, _ := NewCSRFGenerator("other-secret").GenerateToken("session-1")

	tests := []struct {
		name      string
		sessionID string
		token     string
		want      bool
	}{
		{"valid token", "session-1", token, true},
		{"other session", "session-2", token, false},
		{"other secret", "session-1", other, false},
		{"empty token", "session-1", "", false},
		{"empty session", "", token, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.ValidateToken(tt.sessionID, tt.token); got != tt.want {
				t.Errorf("ValidateToken() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := g.GenerateToken(""); err == nil {
		t.Error("expected an error for an empty session ID")
	}
}
