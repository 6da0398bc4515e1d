package guard

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/client/models"
	"github.com/dmitrijs2005/authkeeper/internal/client/session"
	"github.com/stretchr/testify/assert"
)

type fixedSession session.Session

func (f fixedSession) Current() session.Session { return session.Session(f) }

var now = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func at(s session.Session) *RouteGuard {
	g := New(fixedSession(s))
	g.now = func() time.Time { return now }
	return g
}

func ptr(t time.Time) *time.Time { return &t }

func TestIsAuthenticated(t *testing.T) {
	user := &models.User{ID: 1, Username: "u"}

	tests := []struct {
		name string
		s    session.Session
		want bool
	}{
		{"empty", session.Session{}, false},
		{"token, unknown expiry", session.Session{Token: "t", User: user}, true},
		{"token, future expiry", session.Session{Token: "t", User: user, ExpiresAt: ptr(now.Add(time.Second))}, true},
		{"token, expiry now", session.Session{Token: "t", User: user, ExpiresAt: ptr(now)}, false},
		{"token, past expiry", session.Session{Token: "t", User: user, ExpiresAt: ptr(now.Add(-time.Minute))}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, at(tt.s).IsAuthenticated())
		})
	}
}

func TestResolve(t *testing.T) {
	anon := at(session.Session{})
	authed := at(session.Session{Token: "t", User: &models.User{ID: 1}})

	for _, v := range []View{ViewDashboard, ViewUsers, ViewShow, ViewEdit, ViewDelete, ViewWhoami} {
		assert.Equal(t, ViewLogin, anon.Resolve(v), v)
		assert.Equal(t, v, authed.Resolve(v), v)
	}

	assert.Equal(t, ViewLogin, anon.Resolve(ViewLogin))
	assert.Equal(t, ViewRegister, anon.Resolve(ViewRegister))
	assert.Equal(t, ViewDashboard, authed.Resolve(ViewLogin))
	assert.Equal(t, ViewDashboard, authed.Resolve(ViewRegister))

	assert.Equal(t, View("help"), anon.Resolve("help"))
}

func TestResolve_ExpiredSessionIsAnonymous(t *testing.T) {
	g := at(session.Session{Token: "t", User: &models.User{ID: 1}, ExpiresAt: ptr(now.Add(-time.Second))})

	assert.Equal(t, ViewLogin, g.Resolve(ViewUsers))
	assert.Equal(t, ViewLogin, g.Resolve(ViewLogin))
}
