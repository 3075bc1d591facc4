package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"
)

// Register creates an account. Missing username or email are prompted for;
// the password is always read from the terminal.
func (a *App) Register(ctx context.Context, username, email string) error {
	if err := a.prompt(&username, "Username"); err != nil {
		return err
	}
	if err := a.prompt(&email, "Email"); err != nil {
		return err
	}
	password, err := getPassword("Password", a.out)
	if err != nil {
		return err
	}

	u, err := a.api.Register(ctx, username, email, password)
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}
	fmt.Fprintf(a.out, "Registered %s <%s> with id %d\n", u.Username, u.Email, u.ID)
	return nil
}

// Login exchanges credentials for an access token and stores it in the
// session, replacing any previous login.
func (a *App) Login(ctx context.Context, email string) error {
	if err := a.prompt(&email, "Email"); err != nil {
		return err
	}
	password, err := getPassword("Password", a.out)
	if err != nil {
		return err
	}

	tok, err := a.api.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if err := a.session.Save(ctx, email, tok.AccessToken); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	fmt.Fprintf(a.out, "Logged in as %s\n", email)
	return nil
}

// Logout tells the server and forgets the local token. The local session is
// cleared even when the server call fails.
func (a *App) Logout(ctx context.Context) error {
	tok, err := a.token(ctx)
	if err != nil {
		return err
	}

	apiErr := a.api.Logout(ctx, tok)
	if err := a.session.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	if apiErr != nil {
		fmt.Fprintf(a.out, "Server logout failed: %v\n", apiErr)
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func registerCmd(app **App) *cli.Command {
	var username, email string
	return &cli.Command{
		Name:  "register",
		Usage: "Create a new account (password is read from the terminal)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "username",
				Aliases:     []string{"u"},
				Usage:       "Public user name",
				Destination: &username,
			},
			&cli.StringFlag{
				Name:        "email",
				Aliases:     []string{"e"},
				Usage:       "Login email",
				Destination: &email,
			},
		},
		Action: func(c *cli.Context) error {
			return (*app).Register(c.Context, username, email)
		},
	}
}

func loginCmd(app **App) *cli.Command {
	var email string
	return &cli.Command{
		Name:  "login",
		Usage: "Sign in and remember the access token",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "email",
				Aliases:     []string{"e"},
				Usage:       "Login email",
				Destination: &email,
			},
		},
		Action: func(c *cli.Context) error {
			return (*app).Login(c.Context, email)
		},
	}
}

func logoutCmd(app **App) *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Forget the stored access token",
		Action: func(c *cli.Context) error {
			return (*app).Logout(c.Context)
		},
	}
}
