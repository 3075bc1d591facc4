package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/mediabox/internal/client/api"
	"github.com/urfave/cli/v2"
)

func (a *App) ShowProfile(ctx context.Context) error {
	tok, err := a.token(ctx)
	if err != nil {
		return err
	}
	u, err := a.api.Profile(ctx, tok)
	if err != nil {
		return a.authFailed(ctx, err)
	}
	a.printUser(u)
	return nil
}

// UpdateProfile applies patch. When changePassword is set the new password
// is prompted for twice.
func (a *App) UpdateProfile(ctx context.Context, patch api.ProfilePatch, changePassword bool) error {
	tok, err := a.token(ctx)
	if err != nil {
		return err
	}

	if changePassword {
		pw, err := getPassword("New password", a.out)
		if err != nil {
			return err
		}
		again, err := getPassword("Repeat password", a.out)
		if err != nil {
			return err
		}
		if pw != again {
			return errors.New("passwords do not match")
		}
		patch.Password = &pw
	}

	u, err := a.api.UpdateProfile(ctx, tok, patch)
	if err != nil {
		return a.authFailed(ctx, err)
	}

	// keep the remembered email in step with the account
	if patch.Email != nil {
		if err := a.session.Save(ctx, u.Email, tok); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
	}
	a.printUser(u)
	return nil
}

func (a *App) UploadPhoto(ctx context.Context, path string) error {
	tok, err := a.token(ctx)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	u, err := a.api.UploadPhoto(ctx, tok, filepath.Base(path), f)
	if err != nil {
		return a.authFailed(ctx, err)
	}
	a.printUser(u)
	return nil
}

func profileCmd(app **App) *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Show or change the current user's profile",
		Action: func(c *cli.Context) error {
			return (*app).ShowProfile(c.Context)
		},
		Subcommands: []*cli.Command{
			updateProfileCmd(app),
			photoCmd(app),
		},
	}
}

func updateProfileCmd(app **App) *cli.Command {
	var changePassword bool
	return &cli.Command{
		Name:  "update",
		Usage: "Change username, email or password",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Usage: "New user name"},
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "New email"},
			&cli.BoolFlag{
				Name:        "password",
				Aliases:     []string{"p"},
				Usage:       "Prompt for a new password",
				Destination: &changePassword,
			},
		},
		Action: func(c *cli.Context) error {
			var patch api.ProfilePatch
			if c.IsSet("username") {
				v := c.String("username")
				patch.Username = &v
			}
			if c.IsSet("email") {
				v := c.String("email")
				patch.Email = &v
			}
			if patch.Username == nil && patch.Email == nil && !changePassword {
				return cli.ShowSubcommandHelp(c)
			}
			return (*app).UpdateProfile(c.Context, patch, changePassword)
		},
	}
}

func photoCmd(app **App) *cli.Command {
	return &cli.Command{
		Name:      "photo",
		Usage:     "Upload a new profile photo",
		ArgsUsage: "<file>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return errors.New("expected exactly one file argument")
			}
			return (*app).UploadPhoto(c.Context, c.Args().First())
		},
	}
}
