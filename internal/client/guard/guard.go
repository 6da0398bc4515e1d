// Package guard decides which CLI view may be shown for the current
// session.
package guard

import (
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/client/session"
)

type View string

const (
	ViewLogin     View = "login"
	ViewRegister  View = "register"
	ViewDashboard View = "dashboard"
	ViewUsers     View = "users"
	ViewShow      View = "show"
	ViewEdit      View = "edit"
	ViewDelete    View = "delete"
	ViewWhoami    View = "whoami"
)

var protected = map[View]bool{
	ViewDashboard: true,
	ViewUsers:     true,
	ViewShow:      true,
	ViewEdit:      true,
	ViewDelete:    true,
	ViewWhoami:    true,
}

// Protected reports whether v needs an authenticated session.
func (v View) Protected() bool {
	return protected[v]
}

// SessionSource is satisfied by *session.Client.
type SessionSource interface {
	Current() session.Session
}

type RouteGuard struct {
	sessions SessionSource
	now      func() time.Time
}

func New(s SessionSource) *RouteGuard {
	return &RouteGuard{sessions: s, now: time.Now}
}

// IsAuthenticated reports whether a token is held and, when its expiry is
// known, not yet past it.
func (g *RouteGuard) IsAuthenticated() bool {
	s := g.sessions.Current()
	if s.Empty() {
		return false
	}
	if s.ExpiresAt != nil && !g.now().Before(*s.ExpiresAt) {
		return false
	}
	return true
}

// Resolve returns the view to show instead of v: anonymous users are sent
// to login, authenticated users skip login and register.
func (g *RouteGuard) Resolve(v View) View {
	authed := g.IsAuthenticated()
	switch {
	case v.Protected() && !authed:
		return ViewLogin
	case (v == ViewLogin || v == ViewRegister) && authed:
		return ViewDashboard
	}
	return v
}
