package cli

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/tripboard/tripboard/internal/domain"
)

func (a *App) inviteCommand() *Command {
	return &Command{
		Name:    "invite",
		Summary: "Share a trip and see who has joined",
		Subcommands: []*Command{
			a.inviteLinkCommand(),
			a.inviteParticipantsCommand(),
			a.inviteListCommand(),
			a.inviteRevokeCommand(),
			a.inviteAcceptCommand(),
		},
	}
}

func (a *App) inviteLinkCommand() *Command {
	var tripID int64
	return &Command{
		Name:    "link",
		Summary: "Generate a new shareable invite link",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("link", pflag.ContinueOnError)
			tripFlag(fs, &tripID)
			return fs
		},
		Run: func(ctx context.Context, _ []string) error {
			trip, err := a.openTrip(ctx, tripID)
			if err != nil {
				return err
			}
			inv, err := a.workspace.GenerateInviteLink(ctx, trip.ID)
			if err != nil {
				return err
			}
			a.printf("Invite link for %q:\n%s\n", trip.Name, inv.Link)
			return nil
		},
	}
}

func (a *App) inviteParticipantsCommand() *Command {
	var tripID int64
	return &Command{
		Name:    "participants",
		Summary: "List everyone with access to the trip",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("participants", pflag.ContinueOnError)
			tripFlag(fs, &tripID)
			return fs
		},
		Run: func(ctx context.Context, _ []string) error {
			trip, err := a.openTrip(ctx, tripID)
			if err != nil {
				return err
			}
			people := a.workspace.Participants(trip.ID)
			rows := make([][]string, 0, len(people))
			for _, p := range people {
				role := ""
				if trip.CreatedByUser(p.ID) {
					role = "owner"
				}
				rows = append(rows, []string{fmt.Sprint(p.ID), p.FullName(), p.Email, role})
			}
			a.heading(trip.Name)
			a.table([]string{"ID", "NAME", "EMAIL", "ROLE"}, rows)
			return nil
		},
	}
}

func (a *App) inviteListCommand() *Command {
	var tripID int64
	return &Command{
		Name:    "list",
		Summary: "List the trip's outstanding invite links",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("list", pflag.ContinueOnError)
			tripFlag(fs, &tripID)
			return fs
		},
		Run: func(ctx context.Context, _ []string) error {
			trip, err := a.openTrip(ctx, tripID)
			if err != nil {
				return err
			}
			invites, err := a.api.Invites.List(ctx, trip.ID)
			if err != nil {
				return err
			}
			if len(invites) == 0 {
				a.note("No outstanding invites.")
				return nil
			}
			for _, inv := range invites {
				a.printf("%s\n", domain.InviteLink(a.cfg.AppOrigin, inv.Token))
			}
			return nil
		},
	}
}

func (a *App) inviteRevokeCommand() *Command {
	var tripID int64
	return &Command{
		Name:    "revoke",
		Summary: "Invalidate an invite token",
		Usage:   "tripboard invite revoke <token>",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("revoke", pflag.ContinueOnError)
			tripFlag(fs, &tripID)
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			if err := wantArgs(args, 1, "tripboard invite revoke <token>"); err != nil {
				return err
			}
			trip, err := a.openTrip(ctx, tripID)
			if err != nil {
				return err
			}
			if err := a.api.Invites.Revoke(ctx, trip.ID, args[0]); err != nil {
				return err
			}
			a.printf("Revoked invite for %q.\n", trip.Name)
			return nil
		},
	}
}

func (a *App) inviteAcceptCommand() *Command {
	return &Command{
		Name:    "accept",
		Summary: "Join a trip with an invite token (the pending one by default)",
		Usage:   "tripboard invite accept [token]",
		Run: func(ctx context.Context, args []string) error {
			if _, err := a.requireUser(ctx); err != nil {
				return err
			}
			token, fromStore := "", false
			if len(args) > 0 {
				token = args[0]
			} else {
				pending, err := a.tokens.PendingInvite(ctx)
				if err != nil {
					return err
				}
				token, fromStore = pending, true
			}
			if token == "" {
				return fmt.Errorf("%w: no invite token given and none pending", domain.ErrValidation)
			}

			details, err := a.api.Invites.Details(ctx, token)
			if err != nil {
				return err
			}
			if err := a.api.Invites.Accept(ctx, token); err != nil {
				return err
			}
			if fromStore {
				if err := a.tokens.ClearPendingInvite(ctx); err != nil {
					return err
				}
			}
			if err := a.tokens.SetActiveTrip(ctx, details.TripID); err != nil {
				return err
			}
			a.printf("Joined trip %d and selected it.\n", details.TripID)
			return nil
		},
	}
}
