package main

import (
	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/securestorage/internal/server"
)

func newMigrateCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), g, func(app *server.App) error {
				if err := app.Migrate(cmd.Context()); err != nil {
					return err
				}
				return writePlain(cmd.OutOrStdout(), "migrations applied\n")
			})
		},
	}
}

func newUserCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage local users",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "register <username>",
		Short: "Create a local user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), g, func(app *server.App) error {
				user, err := app.Sessions.Register(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if g.jsonOutput {
					return writeJSON(cmd.OutOrStdout(), user)
				}
				return writePlain(cmd.OutOrStdout(), "created user %s (%s)\n", user.UserName, user.ID)
			})
		},
	})
	return cmd
}

func newTokenCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage access tokens",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "issue <user-id>",
		Short: "Issue an access token for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), g, func(app *server.App) error {
				pair, err := app.Sessions.Issue(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if g.jsonOutput {
					return writeJSON(cmd.OutOrStdout(), map[string]string{
						"access_token":  pair.AccessToken,
						"refresh_token": pair.RefreshToken,
					})
				}
				return writePlain(cmd.OutOrStdout(), "%s\n", pair.AccessToken)
			})
		},
	})
	return cmd
}
