package cli

import (
	"context"
	"fmt"
)

func (a *App) Users(ctx context.Context) error {
	list, err := a.userService.List(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No users")
		return nil
	}
	for _, p := range list {
		fmt.Fprintln(a.out, p.String())
	}
	return nil
}

func (a *App) Show(ctx context.Context, id int64) error {
	p, err := a.userService.Get(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "ID:       %d\nUsername: %s\nEmail:    %s\nCreated:  %s\n",
		p.ID, p.Username, p.Email, p.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	return nil
}

// Edit loads the account and prompts for new values; an empty answer keeps
// the current one.
func (a *App) Edit(ctx context.Context, id int64) error {
	p, err := a.userService.Get(ctx, id)
	if err != nil {
		return err
	}

	username, err := getTextWithDefault(a.reader, "Username", p.Username, a.out)
	if err != nil {
		return err
	}
	email, err := getTextWithDefault(a.reader, "Email", p.Email, a.out)
	if err != nil {
		return err
	}
	if username == p.Username && email == p.Email {
		fmt.Fprintln(a.out, "Nothing changed")
		return nil
	}

	if err := a.userService.Update(ctx, id, username, email); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "User updated")
	return nil
}

// Delete removes another account after confirmation. The logged in
// account cannot delete itself from here.
func (a *App) Delete(ctx context.Context, id int64) error {
	if u := a.sessions.Current().User; u != nil && u.ID == id {
		fmt.Fprintln(a.out, "You cannot delete your own account")
		return nil
	}

	ok, err := confirm(a.reader, fmt.Sprintf("Delete user #%d? This cannot be undone", id), a.out)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}

	if err := a.userService.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "User deleted")
	return nil
}
