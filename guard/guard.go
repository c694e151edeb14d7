// Package guard decides whether a navigation may render, must wait for the
// session to resolve, or is redirected elsewhere.
package guard

import (
	"github.com/jrsteele09/go-sales-client/session"
	"github.com/jrsteele09/go-sales-client/users"
)

type Action int

const (
	// ActionLoading means render the neutral waiting view
	ActionLoading Action = iota
	ActionRender
	ActionRedirect
)

func (a Action) String() string {
	switch a {
	case ActionLoading:
		return "loading"
	case ActionRender:
		return "render"
	case ActionRedirect:
		return "redirect"
	}
	return "unknown"
}

// Decision is the outcome of a navigation attempt. Path is the page to
// render, or the redirect target.
type Decision struct {
	Action Action
	Path   string
}

func render(path string) Decision   { return Decision{Action: ActionRender, Path: path} }
func redirect(path string) Decision { return Decision{Action: ActionRedirect, Path: path} }

// Evaluate applies the guard rules in order: wait while the session is
// resolving, send anonymous users to the login page, send users lacking
// requiredRole to the dashboard, otherwise render. An empty requiredRole
// allows any authenticated user.
func Evaluate(state session.State, route string, requiredRole users.RoleType) Decision {
	if state.Loading {
		return Decision{Action: ActionLoading, Path: route}
	}
	if !state.Authenticated {
		return redirect(RouteLogin)
	}
	if requiredRole != "" && !state.User.HasRole(requiredRole) {
		return redirect(RouteDashboard)
	}
	return render(route)
}
