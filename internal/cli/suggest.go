package cli

import (
	"context"

	"packlist/internal/store"

	"github.com/spf13/cobra"
)

func newSuggestCmd(app *App) *cobra.Command {
	var excludeList int64

	cmd := &cobra.Command{
		Use:   "suggest <query>",
		Short: "Autocomplete item texts from past lists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(app, func(ctx context.Context, st *store.Store) error {
				suggestions, err := st.Suggestions(ctx, args[0], excludeList)
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, suggestions)
			})
		},
	}

	cmd.Flags().Int64Var(&excludeList, "exclude-list", 0, "Skip texts already on this list")
	return cmd
}
