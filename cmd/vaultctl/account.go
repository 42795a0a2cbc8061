package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/securestorage/internal/server"
	"github.com/dmitrijs2005/securestorage/internal/server/services"
)

func newAccountCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage your account",
	}
	cmd.AddCommand(newAccountDeleteCmd(g))
	return cmd
}

func newAccountDeleteCmd(g *globals) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete every stored file and then the account itself",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("account deletion is permanent, pass --yes to confirm")
			}

			return withOwner(cmd.Context(), g, func(app *server.App, ownerID string) error {
				removal, err := app.Accounts.DeleteAccount(cmd.Context(), ownerID)
				if removal != nil && removal.Purge != nil {
					if werr := writeRemoval(cmd, g, removal); werr != nil && err == nil {
						err = werr
					}
				}
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm account deletion")
	return cmd
}

func writeRemoval(cmd *cobra.Command, g *globals, r *services.AccountRemoval) error {
	out := cmd.OutOrStdout()

	if g.jsonOutput {
		failed := make(map[string]string, len(r.Purge.Failed))
		for _, f := range r.Purge.Failed {
			failed[f.FileID] = f.Err.Error()
		}
		steps := make(map[string]string, len(r.Steps)+1)
		for _, s := range append([]services.StepOutcome{r.Purge.ProfilePhoto}, r.Steps...) {
			steps[s.Name] = "ok"
			if !s.OK() {
				steps[s.Name] = s.Err.Error()
			}
		}
		return writeJSON(out, map[string]any{"deleted": r.Purge.Deleted, "failed": failed, "steps": steps})
	}

	if err := writePlain(out, "deleted %d files\n", len(r.Purge.Deleted)); err != nil {
		return err
	}
	for _, f := range r.Purge.Failed {
		if err := writePlain(out, "could not delete %s: %v\n", f.FileID, f.Err); err != nil {
			return err
		}
	}
	for _, s := range r.Steps {
		if !s.OK() {
			if err := writePlain(out, "warning: %s failed: %v\n", s.Name, s.Err); err != nil {
				return err
			}
		}
	}
	return nil
}
