package session

import "github.com/jrsteele09/go-sales-client/users"

// Status is the coarse state of the session state machine
type Status int

const (
	StatusResolving Status = iota
	StatusAnonymous
	StatusAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusResolving:
		return "resolving"
	case StatusAnonymous:
		return "anonymous"
	case StatusAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

// State is a snapshot of the session. Authenticated is true exactly when
// User is set; Loading is true only until the first resolution finishes.
type State struct {
	User          *users.User
	Authenticated bool
	Loading       bool
}

func (s State) Status() Status {
	switch {
	case s.Loading:
		return StatusResolving
	case s.Authenticated:
		return StatusAuthenticated
	default:
		return StatusAnonymous
	}
}

// Role returns the user's role, or "" when anonymous
func (s State) Role() users.RoleType {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}
