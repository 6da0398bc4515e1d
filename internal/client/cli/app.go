package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/dmitrijs2005/authkeeper/internal/client/api"
	"github.com/dmitrijs2005/authkeeper/internal/client/client"
	"github.com/dmitrijs2005/authkeeper/internal/client/config"
	"github.com/dmitrijs2005/authkeeper/internal/client/guard"
	"github.com/dmitrijs2005/authkeeper/internal/client/services"
	"github.com/dmitrijs2005/authkeeper/internal/client/session"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
)

const appName = "authkeeper"

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	apiClient   *api.Client
	sessions    *session.Client
	guard       *guard.RouteGuard
	authService services.AuthService
	userService services.UserService
	reader      *bufio.Reader
	out         io.Writer
}

// NewApp opens the local state, restores the saved session and wires the
// services. The CLI reads stdin and writes to stdout; logs go to stderr.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.NewConsoleZerolog(os.Stderr, c.LogLevel)

	db, err := client.OpenState(ctx, c.StateDir)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	apiClient, err := api.New(c.ServerURL, c.RequestTimeout, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	sessions := session.New(ctx, db, logger)

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		apiClient:   apiClient,
		sessions:    sessions,
		guard:       guard.New(sessions),
		authService: services.NewAuthService(apiClient, sessions, logger),
		userService: services.NewUserService(apiClient, sessions, logger),
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
	}, nil
}

// Run shows the banner and runs the command loop until exit, EOF or ctx
// cancellation.
func (a *App) Run(ctx context.Context) error {
	defer a.close(ctx)

	fmt.Fprintln(a.out, figure.NewFigure(appName, "cybermedium", true).String())

	if err := a.authService.Ping(ctx); err != nil {
		a.logger.Warn(ctx, "server is not reachable", "url", a.config.ServerURL, "error", err)
	}

	runREPL(ctx, a, a.getStatus, a.reader, a.out)
	return nil
}

func (a *App) close(ctx context.Context) {
	a.apiClient.CloseIdleConnections()
	if err := a.db.Close(); err != nil {
		a.logger.Error(ctx, "closing database", "error", err)
	}
}

func (a *App) isLoggedIn() bool {
	return a.guard.IsAuthenticated()
}

func (a *App) resolve(v guard.View) guard.View {
	return a.guard.Resolve(v)
}

// getStatus is the prompt suffix: the user label while logged in.
func (a *App) getStatus() string {
	if !a.isLoggedIn() {
		return ""
	}
	return "[" + a.sessions.Current().User.Label() + "]"
}

// describe renders err for the terminal, preferring the server's message.
func describe(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		if errors.Is(err, services.ErrSessionEnded) {
			return services.ErrSessionEnded.Error() + " (" + apiErr.Message + ")"
		}
		return apiErr.Message
	}
	return err.Error()
}
