package cli

import (
	"context"

	"packlist/internal/store"

	"github.com/spf13/cobra"
)

func newListsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lists",
		Short: "Manage packing lists",
	}

	var archived bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List lists with packed/total counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(app, func(ctx context.Context, st *store.Store) error {
				lists, err := st.Lists(ctx, archived)
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, lists)
			})
		},
	}
	listCmd.Flags().BoolVar(&archived, "archived", false, "Show archived lists")
	cmd.AddCommand(listCmd)

	var asTemplate bool
	createCmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an empty list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(app, func(ctx context.Context, st *store.Store) error {
				l, err := st.CreateList(ctx, args[0], asTemplate)
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, l)
			})
		},
	}
	createCmd.Flags().BoolVar(&asTemplate, "template", false, "Create as a template")
	cmd.AddCommand(createCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show a list with its items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return withStore(app, func(ctx context.Context, st *store.Store) error {
				l, err := st.GetList(ctx, id)
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, l)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a list",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return withStore(app, func(ctx context.Context, st *store.Store) error {
				l, err := st.UpdateList(ctx, id, store.ListPatch{Name: &args[1]})
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, l)
			})
		},
	})

	cmd.AddCommand(newListsArchiveCmd(app, "archive", true))
	cmd.AddCommand(newListsArchiveCmd(app, "unarchive", false))

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a list and its items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return withStore(app, func(ctx context.Context, st *store.Store) error {
				if err := st.DeleteList(ctx, id); err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, map[string]any{"deleted": id})
			})
		},
	})

	var dupName string
	var dupTemplate bool
	dupCmd := &cobra.Command{
		Use:   "duplicate <id>",
		Short: "Copy a list with all its items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return withStore(app, func(ctx context.Context, st *store.Store) error {
				l, err := st.DuplicateList(ctx, id, dupName, dupTemplate)
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, l)
			})
		},
	}
	dupCmd.Flags().StringVar(&dupName, "name", "", "Name for the copy (default: \"<name> (copy)\")")
	dupCmd.Flags().BoolVar(&dupTemplate, "template", false, "Create the copy as a template")
	cmd.AddCommand(dupCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "from-templates <name> <template-id>...",
		Short: "Create a list by merging templates (duplicates collapsed)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int64, 0, len(args)-1)
			for _, raw := range args[1:] {
				id, err := parseID(raw)
				if err != nil {
					return writeErr(cmd, err)
				}
				ids = append(ids, id)
			}
			return withStore(app, func(ctx context.Context, st *store.Store) error {
				l, err := st.CreateFromTemplates(ctx, args[0], ids)
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, l)
			})
		},
	})

	return cmd
}

func newListsArchiveCmd(app *App, use string, archived bool) *cobra.Command {
	short := "Archive a list"
	if !archived {
		short = "Unarchive a list"
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
				v := archived
				l, err := st.UpdateList(ctx, id, store.ListPatch{IsArchived: &v})
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, l)
			})
		},
	}
}
