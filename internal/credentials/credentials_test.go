package credentials

import (
	"regexp"
	"strings"
	"testing"
)

var usernamePattern = regexp.MustCompile(`^[a-z]+-[a-z]+-\d{2}$`)

func TestGenerateStudentUsername(t *testing.T) {
	for i := 0; i < 50; i++ {
		username, err := GenerateStudentUsername()
		if err != nil {
			t.Fatalf("GenerateStudentUsername failed: %v", err)
		}
		if !usernamePattern.MatchString(username) {
			t.Errorf("username %q does not match adjective-noun-NN", username)
		}
	}
}

func TestGenerateTemporaryPassword(t *testing.T) {
	tests := []struct {
		name       string
		iterations int
		unique     bool
	}{
		{
			name:       "generates password of correct length",
			iterations: 100,
		},
		{
			name:       "generates unique passwords",
			iterations: 20,
			unique:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			passwords := make(map[string]bool)
			for i := 0; i < tt.iterations; i++ {
				password, err := GenerateTemporaryPassword()
				if err != nil {
					t.Fatalf("GenerateTemporaryPassword failed: %v", err)
				}

				if len(password) != TemporaryPasswordLength {
					t.Errorf("password length %d, want %d", len(password), TemporaryPasswordLength)
				}
				for _, c := range password {
					if !strings.ContainsRune(passwordChars, c) {
						t.Errorf("unexpected character %q in %q", c, password)
					}
				}

				if tt.unique {
					if passwords[password] {
						t.Errorf("duplicate password generated: %s", password)
					}
					passwords[password] = true
				}
			}
		})
	}
}
