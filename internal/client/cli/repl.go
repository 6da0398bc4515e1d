package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/authkeeper/internal/client/guard"
)

// execIface is the command surface the REPL drives. The real App type
// satisfies it; tests provide a lightweight stub.
type execIface interface {
	resolve(v guard.View) guard.View
	isLoggedIn() bool
	Login(ctx context.Context) error
	Register(ctx context.Context) error
	Dashboard(ctx context.Context) error
	Users(ctx context.Context) error
	Show(ctx context.Context, id int64) error
	Edit(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
	Whoami(ctx context.Context) error
	Logout(ctx context.Context) error
}

// views needing an account id argument
var withID = map[guard.View]bool{guard.ViewShow: true, guard.ViewEdit: true, guard.ViewDelete: true}

// runREPL reads commands from reader until EOF or "exit". Each command is
// a view; it is passed through the guard and the resolved view is shown.
// Errors from views are printed and the loop continues. Views prompt on the
// same reader, so it must not be wrapped in a second buffer.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, out io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintf(out, "ak%s> ", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(out, "Available commands: dashboard, users, show <id>, edit <id>, delete <id>, whoami, logout, exit")
			} else {
				fmt.Fprintln(out, "Available commands: login, register, exit")
			}
			continue
		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return
		}

		view := guard.View(cmd)
		var id int64
		if withID[view] {
			if len(parts) < 2 {
				fmt.Fprintf(out, "Usage: %s <id>\n", cmd)
				continue
			}
			n, err := strconv.ParseInt(parts[1], 10, 64)
			if err != nil || n <= 0 {
				fmt.Fprintf(out, "Invalid id %q\n", parts[1])
				continue
			}
			id = n
		}

		target := view
		if view != "logout" {
			target = a.resolve(view)
			if target != view {
				fmt.Fprintf(out, "%s is not available, showing %s\n", view, target)
			}
		}

		if err := show(ctx, a, target, id); err != nil {
			if errors.Is(err, errUnknownCommand) {
				fmt.Fprintln(out, "Unknown command:", cmd)
				continue
			}
			fmt.Fprintln(out, "Error:", describe(err))
		}
	}
}

var errUnknownCommand = errors.New("unknown command")

func show(ctx context.Context, a execIface, v guard.View, id int64) error {
	switch v {
	case guard.ViewLogin:
		return a.Login(ctx)
	case guard.ViewRegister:
		return a.Register(ctx)
	case guard.ViewDashboard:
		return a.Dashboard(ctx)
	case guard.ViewUsers:
		return a.Users(ctx)
	case guard.ViewShow:
		return a.Show(ctx, id)
	case guard.ViewEdit:
		return a.Edit(ctx, id)
	case guard.ViewDelete:
		return a.Delete(ctx, id)
	case guard.ViewWhoami:
		return a.Whoami(ctx)
	case "logout":
		return a.Logout(ctx)
	}
	return errUnknownCommand
}
