package cli

import (
	"context"

	"packlist/internal/store"

	"github.com/spf13/cobra"
)

func newItemsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Manage items on a list",
	}

	var categoryID int64
	addCmd := &cobra.Command{
		Use:   "add <list-id> <text>",
		Short: "Add an item to a list",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			listID, err := parseID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return withStore(app, func(ctx context.Context, st *store.Store) error {
				it, err := st.CreateItem(ctx, listID, args[1], categoryID)
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, it)
			})
		},
	}
	addCmd.Flags().Int64Var(&categoryID, "category", 0, "Category id (required)")
	_ = addCmd.MarkFlagRequired("category")
	cmd.AddCommand(addCmd)

	cmd.AddCommand(newItemsCheckCmd(app, "check", true))
	cmd.AddCommand(newItemsCheckCmd(app, "uncheck", false))

	var newText string
	var newCategory int64
	editCmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change an item's text or category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			patch := store.ItemPatch{}
			if cmd.Flags().Changed("text") {
				patch.Text = &newText
			}
			if cmd.Flags().Changed("category") {
				patch.CategoryID = &newCategory
			}
			return withStore(app, func(ctx context.Context, st *store.Store) error {
				it, err := st.UpdateItem(ctx, id, patch)
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, it)
			})
		},
	}
	editCmd.Flags().StringVar(&newText, "text", "", "New text")
	editCmd.Flags().Int64Var(&newCategory, "category", 0, "New category id")
	cmd.AddCommand(editCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return withStore(app, func(ctx context.Context, st *store.Store) error {
				if err := st.DeleteItem(ctx, id); err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, map[string]any{"deleted": id})
			})
		},
	})

	return cmd
}

func newItemsCheckCmd(app *App, use string, checked bool) *cobra.Command {
	short := "Check an item off"
	if !checked {
		short = "Uncheck an item"
	}
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return withStore(app, func(ctx context.Context, st *store.Store) error {
				v := checked
				it, err := st.UpdateItem(ctx, id, store.ItemPatch{IsChecked: &v})
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, it)
			})
		},
	}
}
