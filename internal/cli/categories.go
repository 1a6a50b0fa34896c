package cli

import (
	"context"

	"packlist/internal/store"

	"github.com/spf13/cobra"
)

func newCategoriesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage the global categories",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List categories in display order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(app, func(ctx context.Context, st *store.Store) error {
				cats, err := st.Categories(ctx)
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, cats)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "create <name>",
		Short: "Create a category (appended last)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(app, func(ctx context.Context, st *store.Store) error {
				c, err := st.CreateCategory(ctx, args[0])
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, c)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return withStore(app, func(ctx context.Context, st *store.Store) error {
				c, err := st.UpdateCategory(ctx, id, store.CategoryPatch{Name: &args[1]})
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, c)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an unreferenced category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return withStore(app, func(ctx context.Context, st *store.Store) error {
				if err := st.DeleteCategory(ctx, id); err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, map[string]any{"deleted": id})
			})
		},
	})

	return cmd
}
