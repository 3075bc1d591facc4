// Package cli implements the mediabox command-line client.
//
// The login state lives in a local SQLite session file, so every command is a
// single invocation: "mediabox login" stores the token, later commands reuse it
// until "mediabox logout" or until the server reports it expired.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/mediabox/internal/client/api"
	"github.com/dmitrijs2005/mediabox/internal/client/config"
	"github.com/dmitrijs2005/mediabox/internal/client/session"
	"github.com/dmitrijs2005/mediabox/internal/common"
	"github.com/dmitrijs2005/mediabox/internal/filex"
	"github.com/urfave/cli/v2"
)

var ErrNotLoggedIn = errors.New("not logged in, run \"mediabox login\" first")

// ErrSessionExpired is returned when the stored token was rejected by the
// server. The local session is cleared before it is returned.
var ErrSessionExpired = errors.New("session expired, please log in again")

// Test seams for interactive prompts.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

// API is the subset of the HTTP client the commands use.
type API interface {
	Register(ctx context.Context, username, email, password string) (*api.User, error)
	Login(ctx context.Context, email, password string) (*api.Token, error)
	Logout(ctx context.Context, token string) error
	Profile(ctx context.Context, token string) (*api.User, error)
	UpdateProfile(ctx context.Context, token string, patch api.ProfilePatch) (*api.User, error)
	UploadPhoto(ctx context.Context, token, filename string, file io.Reader) (*api.User, error)
}

// Session persists the login between invocations.
type Session interface {
	Token(ctx context.Context) (string, error)
	Email(ctx context.Context) (string, error)
	Save(ctx context.Context, email, token string) error
	Clear(ctx context.Context) error
	Close() error
}

type App struct {
	api     API
	session Session
	reader  *bufio.Reader
	out     io.Writer
}

func NewApp(a API, s Session, in io.Reader, out io.Writer) *App {
	return &App{api: a, session: s, reader: bufio.NewReader(in), out: out}
}

// NewCLI builds the urfave application. Values in cfg are the flag defaults;
// MEDIABOX_* variables and explicit flags override them.
func NewCLI(cfg *config.Config) *cli.App {
	var (
		app         *App
		serverURL   string
		sessionPath string
		timeout     time.Duration
	)

	return &cli.App{
		Name:  "mediabox",
		Usage: "Command-line client for the MediaBox API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "server",
				Aliases:     []string{"a"},
				Usage:       "Base URL of the MediaBox API",
				EnvVars:     []string{"MEDIABOX_SERVER_URL"},
				Value:       cfg.ServerURL,
				Destination: &serverURL,
			},
			&cli.StringFlag{
				Name:        "session",
				Aliases:     []string{"s"},
				Usage:       "SQLite file keeping the login between runs",
				EnvVars:     []string{"MEDIABOX_SESSION_PATH"},
				Value:       cfg.SessionPath,
				Destination: &sessionPath,
			},
			&cli.DurationFlag{
				Name:        "timeout",
				Aliases:     []string{"t"},
				Usage:       "Per-request timeout",
				EnvVars:     []string{"MEDIABOX_TIMEOUT"},
				Value:       cfg.Timeout,
				Destination: &timeout,
			},
			// consumed by config.LoadConfig before urfave runs
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "JSON config file",
			},
		},
		Before: func(c *cli.Context) error {
			if _, err := filex.EnsureParentDir(sessionPath); err != nil {
				return fmt.Errorf("create session dir: %w", err)
			}
			s, err := session.Open(c.Context, sessionPath)
			if err != nil {
				return fmt.Errorf("open session: %w", err)
			}
			app = NewApp(api.New(serverURL, timeout), s, c.App.Reader, c.App.Writer)
			return nil
		},
		After: func(c *cli.Context) error {
			if app == nil {
				return nil
			}
			return app.session.Close()
		},
		Commands: []*cli.Command{
			registerCmd(&app),
			loginCmd(&app),
			logoutCmd(&app),
			profileCmd(&app),
		},
	}
}

// token returns the stored access token or ErrNotLoggedIn.
func (a *App) token(ctx context.Context) (string, error) {
	tok, err := a.session.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("read session: %w", err)
	}
	if tok == "" {
		return "", ErrNotLoggedIn
	}
	return tok, nil
}

// authFailed drops the local session when the server no longer accepts the
// token and translates the error for the user.
func (a *App) authFailed(ctx context.Context, err error) error {
	if errors.Is(err, common.ErrTokenExpired) ||
		errors.Is(err, common.ErrInvalidToken) ||
		errors.Is(err, common.ErrUserNotFound) {
		if cerr := a.session.Clear(ctx); cerr != nil {
			return errors.Join(ErrSessionExpired, cerr)
		}
		return ErrSessionExpired
	}
	return err
}

func (a *App) prompt(value *string, text string) error {
	if *value != "" {
		return nil
	}
	v, err := getSimpleText(a.reader, text, a.out)
	if err != nil {
		return err
	}
	*value = v
	return nil
}

func (a *App) printUser(u *api.User) {
	photo := "none"
	switch {
	case u.ProfilePhotoURL != "":
		photo = u.ProfilePhotoURL
	case u.ProfilePhoto != nil:
		photo = *u.ProfilePhoto
	}
	fmt.Fprintf(a.out, "ID:       %d\n", u.ID)
	fmt.Fprintf(a.out, "Username: %s\n", u.Username)
	fmt.Fprintf(a.out, "Email:    %s\n", u.Email)
	fmt.Fprintf(a.out, "Photo:    %s\n", photo)
}
