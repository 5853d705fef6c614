package cli

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/tripboard/tripboard/internal/domain"
)

func (a *App) openCommand() *Command {
	return &Command{
		Name:    "open",
		Summary: "Restore the session and capture an invite link",
		Usage:   "tripboard open [url]",
		Examples: []Example{{
			Description: "Remember an invite before logging in",
			Command:     "tripboard open 'http://localhost:5173/?invite=3f1c...'",
		}},
		Run: func(ctx context.Context, args []string) error {
			if len(args) > 1 {
				return wantArgs(args, 1, "tripboard open [url]")
			}
			var pageURL string
			if len(args) == 1 {
				pageURL = args[0]
			}
			cleaned, err := a.session.Start(ctx, pageURL)
			if err != nil {
				return err
			}
			if cleaned != "" {
				a.printf("Opened %s\n", cleaned)
			}
			pending, err := a.tokens.PendingInvite(ctx)
			if err != nil {
				return err
			}

			state := a.session.State()
			if !state.LoggedIn {
				if pending != "" {
					a.printf("Invite saved. Log in or register to join the trip.\n")
				} else {
					a.printf("Not logged in.\n")
				}
				return nil
			}
			a.printf("Signed in as %s <%s>\n", state.User.FullName(), state.User.Email)
			if pending != "" {
				a.note("Pending invite: run 'tripboard invite accept' to join.")
			}
			return nil
		},
	}
}

func (a *App) loginCommand() *Command {
	var in domain.LoginInput
	return &Command{
		Name:    "login",
		Summary: "Log in and remember the session",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("login", pflag.ContinueOnError)
			fs.StringVarP(&in.Email, "email", "e", "", "account email")
			fs.StringVarP(&in.Password, "password", "p", "", "account password")
			return fs
		},
		Run: func(ctx context.Context, _ []string) error {
			if _, err := a.session.Start(ctx, ""); err != nil {
				return err
			}
			user, err := a.session.Login(ctx, in)
			if err != nil {
				return err
			}
			a.printf("Signed in as %s <%s>\n", user.FullName(), user.Email)
			return nil
		},
	}
}

func (a *App) registerCommand() *Command {
	var in domain.RegisterInput
	return &Command{
		Name:    "register",
		Summary: "Create an account and log in",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("register", pflag.ContinueOnError)
			fs.StringVar(&in.FirstName, "first", "", "first name")
			fs.StringVar(&in.LastName, "last", "", "last name")
			fs.StringVarP(&in.Email, "email", "e", "", "account email")
			fs.StringVarP(&in.Password, "password", "p", "", fmt.Sprintf("password, at least %d characters", domain.MinPasswordLength))
			return fs
		},
		Run: func(ctx context.Context, _ []string) error {
			if _, err := a.session.Start(ctx, ""); err != nil {
				return err
			}
			user, err := a.session.Register(ctx, in)
			if err != nil {
				return err
			}
			a.printf("Welcome, %s! You are signed in.\n", user.FullName())
			return nil
		},
	}
}

func (a *App) logoutCommand() *Command {
	return &Command{
		Name:    "logout",
		Summary: "Forget the stored session",
		Run: func(ctx context.Context, _ []string) error {
			if err := a.session.Logout(ctx); err != nil {
				return err
			}
			if err := a.tokens.ClearActiveTrip(ctx); err != nil {
				return err
			}
			a.printf("Signed out.\n")
			return nil
		},
	}
}

func (a *App) whoamiCommand() *Command {
	return &Command{
		Name:    "whoami",
		Summary: "Show the current user and their trip counts",
		Run: func(ctx context.Context, _ []string) error {
			user, err := a.requireUser(ctx)
			if err != nil {
				return err
			}
			if _, err := a.workspace.LoadTrips(ctx); err != nil {
				return err
			}
			stats := a.workspace.Stats()
			a.heading(user.FullName())
			a.printf("Email:         %s\n", user.Email)
			a.printf("Trips created: %d\n", stats.Created)
			a.printf("Trips joined:  %d\n", stats.Joined)
			return nil
		},
	}
}
