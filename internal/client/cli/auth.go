package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
)

// Interactive input indirections, swapped in tests.
var (
	getSimpleText      = GetSimpleText
	getTextWithDefault = GetTextWithDefault
	getPassword        = GetPassword
	confirm            = Confirm
)

// Register prompts for a username, email and password and creates the
// account. It does not log in.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	id, err := a.authService.Register(ctx, username, email, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Account #%d created, you can log in now\n", id)
	return nil
}

// Login prompts for credentials and replaces the session on success. A
// failed attempt leaves any previous session untouched.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.authService.Login(ctx, email, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Welcome, %s!\n", user.Label())
	return nil
}

// Logout clears the session locally. Tokens are not revoked server-side.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// Whoami shows the identity the server reads from the token, which may
// differ from the stored profile after an edit.
func (a *App) Whoami(ctx context.Context) error {
	u, err := a.authService.Whoami(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "#%d %s <%s>\n", u.ID, u.Username, u.Email)
	return nil
}

func (a *App) Dashboard(ctx context.Context) error {
	s := a.sessions.Current()
	fmt.Fprintf(a.out, "Logged in as %s", s.User.Label())
	if s.User != nil && s.User.Email != "" {
		fmt.Fprintf(a.out, " <%s>", s.User.Email)
	}
	fmt.Fprintln(a.out)
	if s.ExpiresAt != nil {
		fmt.Fprintf(a.out, "Session valid until %s\n", s.ExpiresAt.Local().Format(time.DateTime))
	}
	fmt.Fprintln(a.out, "Commands: users, show <id>, edit <id>, delete <id>, whoami, logout")
	return nil
}
