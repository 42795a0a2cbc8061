package main

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/securestorage/internal/common"
	"github.com/dmitrijs2005/securestorage/internal/server"
	"github.com/dmitrijs2005/securestorage/internal/server/config"
)

var errMissingToken = errors.New("no token: pass --token or set " + common.TokenEnvName)

// newApp is a seam for tests.
var newApp = server.NewApp

type globals struct {
	configPath string
	envFile    string
	token      string
	jsonOutput bool
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	cmd := &cobra.Command{
		Use:           "vaultctl",
		Short:         "Store, fetch and manage encrypted files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&g.configPath, "config", "", "config file (.json or .toml)")
	cmd.PersistentFlags().StringVar(&g.envFile, "env-file", ".env", "dotenv file loaded before the environment")
	cmd.PersistentFlags().StringVar(&g.token, "token", "", "access token (default $"+common.TokenEnvName+")")
	cmd.PersistentFlags().BoolVar(&g.jsonOutput, "json", false, "output JSON")

	cmd.AddCommand(
		newMigrateCmd(g),
		newUploadCmd(g),
		newListCmd(g),
		newDownloadCmd(g),
		newDeleteCmd(g),
		newUsageCmd(g),
		newAccountCmd(g),
		newUserCmd(g),
		newTokenCmd(g),
	)
	return cmd
}

// withApp loads configuration, builds the App for one command and releases
// it afterwards.
func withApp(ctx context.Context, g *globals, fn func(app *server.App) error) (err error) {
	cfg, err := config.LoadConfig(g.configPath, g.envFile)
	if err != nil {
		return err
	}
	app, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := app.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(app)
}

// withOwner is withApp for commands acting on the caller's own files.
func withOwner(ctx context.Context, g *globals, fn func(app *server.App, ownerID string) error) error {
	return withApp(ctx, g, func(app *server.App) error {
		token := g.token
		if token == "" {
			token = os.Getenv(common.TokenEnvName)
		}
		if token == "" {
			return errMissingToken
		}
		ownerID, err := app.Sessions.Authenticate(token)
		if err != nil {
			return err
		}
		return fn(app, ownerID)
	})
}
