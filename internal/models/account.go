package models

import (
	"fmt"
	"time"
)

// Role is the closed set of account kinds. A role never changes after creation.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
	RoleParent  Role = "parent"
)

// AllRoles lists every role in display order
var AllRoles = []Role{RoleAdmin, RoleTeacher, RoleStudent, RoleParent}

// SelfRegisterRoles are the roles offered on the public registration form
var SelfRegisterRoles = []Role{RoleStudent, RoleParent, RoleTeacher}

// ParseRole converts s into a Role, rejecting anything outside the closed set
func ParseRole(s string) (Role, error) {
	for _, r := range AllRoles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) String() string {
	return string(r)
}

// Label is the human readable role name
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Admin"
	case RoleTeacher:
		return "Teacher"
	case RoleStudent:
		return "Student"
	case RoleParent:
		return "Parent"
	}
	return string(r)
}

// Capability names an action an endpoint needs permission for
type Capability int

const (
	CapPractice Capability = iota
	CapViewLeaderboard
	CapViewContent
	CapComment
	CapManagePhrases
	CapManageContent
	CapManageLinks
	CapEnrolStudents
	CapViewAllStudents
	CapViewChildren
	CapManageSettings
)

var capabilities = map[Role]map[Capability]bool{
	RoleAdmin: {
		CapPractice: true, CapViewLeaderboard: true, CapViewContent: true, CapComment: true,
		CapManagePhrases: true, CapManageContent: true, CapManageLinks: true, CapEnrolStudents: true,
		CapViewAllStudents: true, CapManageSettings: true,
	},
	RoleTeacher: {
		CapPractice: true, CapViewLeaderboard: true, CapViewContent: true, CapComment: true,
		CapManagePhrases: true, CapManageContent: true, CapManageLinks: true, CapEnrolStudents: true,
		CapViewAllStudents: true,
	},
	RoleStudent: {
		CapPractice: true, CapViewLeaderboard: true, CapViewContent: true, CapComment: true,
	},
	RoleParent: {
		CapViewLeaderboard: true, CapViewContent: true, CapViewChildren: true,
	},
}

// Can reports whether the role grants c. This is the single authorization check
// every gated endpoint goes through.
func (r Role) Can(c Capability) bool {
	return capabilities[r][c]
}

// Account is any person using the app
type Account struct {
	ID            int64
	Username      string
	Email         string
	PasswordHash  string
	DisplayName   string
	Role          Role
	ParentID      *int64
	OAuthProvider string
	OAuthSubject  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Name returns the display name, falling back to the username
func (a *Account) Name() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.Username
}

func (a *Account) IsStudent() bool { return a.Role == RoleStudent }
func (a *Account) IsParent() bool  { return a.Role == RoleParent }

// IsStaff is true for roles that manage content and students
func (a *Account) IsStaff() bool { return a.Role == RoleAdmin || a.Role == RoleTeacher }

// Session represents an authenticated session
type Session struct {
	ID        string
	AccountID int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired checks if the session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
