package main

import (
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/securestorage/internal/filex"
	"github.com/dmitrijs2005/securestorage/internal/server"
)

func newUploadCmd(g *globals) *cobra.Command {
	var name, contentType string

	cmd := &cobra.Command{
		Use:   "upload <path>",
		Short: "Encrypt and store a local file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if name == "" {
				name = filepath.Base(args[0])
			}
			if contentType == "" {
				contentType = mime.TypeByExtension(filepath.Ext(name))
			}

			return withOwner(cmd.Context(), g, func(app *server.App, ownerID string) error {
				rec, err := app.Files.Upload(cmd.Context(), ownerID, name, contentType, data)
				if err != nil {
					return err
				}
				if g.jsonOutput {
					return writeJSON(cmd.OutOrStdout(), viewOf(rec))
				}
				return writePlain(cmd.OutOrStdout(), "uploaded %s as %s (%d bytes)\n", rec.Filename, rec.FileID, rec.SizeBytes)
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "stored file name (default: base name of path)")
	cmd.Flags().StringVar(&contentType, "content-type", "", "content type (default: guessed from the name)")
	return cmd
}

func newListCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your stored files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOwner(cmd.Context(), g, func(app *server.App, ownerID string) error {
				list, err := app.Files.List(cmd.Context(), ownerID)
				if err != nil {
					return err
				}

				views := make([]fileView, 0, len(list))
				for _, f := range list {
					views = append(views, viewOf(f))
				}
				if g.jsonOutput {
					return writeJSON(cmd.OutOrStdout(), views)
				}
				if len(views) == 0 {
					return writePlain(cmd.OutOrStdout(), "no files\n")
				}
				for _, v := range views {
					if err := writePlain(cmd.OutOrStdout(), "%s\n", formatFileLine(v)); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newDownloadCmd(g *globals) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "download <file-id>",
		Short: "Fetch and decrypt a stored file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOwner(cmd.Context(), g, func(app *server.App, ownerID string) error {
				data, meta, err := app.Files.Download(cmd.Context(), ownerID, args[0])
				if err != nil {
					return err
				}

				dst := out
				if dst == "" {
					dst = filepath.Base(meta.Filename)
				}
				if err := filex.WriteFileAtomic(dst, data, 0o600); err != nil {
					return err
				}
				if g.jsonOutput {
					return writeJSON(cmd.OutOrStdout(), map[string]any{"file": viewOf(meta), "path": dst})
				}
				return writePlain(cmd.OutOrStdout(), "saved %s to %s (%d bytes)\n", meta.FileID, dst, len(data))
			})
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "destination path (default: stored file name)")
	return cmd
}

func newDeleteCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <file-id>",
		Short: "Delete a stored file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOwner(cmd.Context(), g, func(app *server.App, ownerID string) error {
				if err := app.Files.Delete(cmd.Context(), ownerID, args[0]); err != nil {
					return err
				}
				return writePlain(cmd.OutOrStdout(), "deleted %s\n", args[0])
			})
		},
	}
}

func newUsageCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "usage",
		Short: "Show storage used against your quota",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOwner(cmd.Context(), g, func(app *server.App, ownerID string) error {
				used, limit, err := app.Files.Usage(cmd.Context(), ownerID)
				if err != nil {
					return err
				}
				if g.jsonOutput {
					return writeJSON(cmd.OutOrStdout(), map[string]int64{"used_bytes": used, "limit_bytes": limit})
				}
				const mib = 1024 * 1024
				return writePlain(cmd.OutOrStdout(), "used %.1fMB of %dMB (%d bytes)\n", float64(used)/mib, limit/mib, used)
			})
		},
	}
}
