package cli

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"

	"packlist/internal/client"
	"packlist/internal/config"
	"packlist/internal/format"
	"packlist/internal/store"
	"packlist/internal/tui"
	"packlist/internal/web"

	"github.com/spf13/cobra"
)

type App struct {
	ConfigPath string
	DBPath     string
	ServerURL  string
	PrettyJSON bool
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "packlist",
		Short:        "Packing lists in the terminal (TUI + CLI + JSON API)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  packlist

  # Run the JSON API server
  packlist serve --addr 127.0.0.1:8080

  # Scriptable commands
  packlist lists create "Summer trip"
  packlist items add 1 "Sunscreen" --category 3
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("PACKLIST_CONFIG", ""), "Path to YAML config file")
	cmd.PersistentFlags().StringVar(&app.DBPath, "db", envOr("PACKLIST_DB", ""), "Path to SQLite database (overrides config)")
	cmd.PersistentFlags().StringVar(&app.ServerURL, "server", envOr("PACKLIST_SERVER", ""), "Base URL of a running server (TUI only; default: spawn one in-process)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")

	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newListsCmd(app))
	cmd.AddCommand(newItemsCmd(app))
	cmd.AddCommand(newCategoriesCmd(app))
	cmd.AddCommand(newSuggestCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

// runTUI connects to --server when given; otherwise it runs a throwaway
// in-process server on a loopback port so `packlist` works standalone.
func runTUI(app *App) error {
	if app.ServerURL != "" {
		return tui.Run(client.New(strings.TrimRight(app.ServerURL, "/")))
	}

	ctx := context.Background()
	st, err := openStore(ctx, app)
	if err != nil {
		return err
	}
	defer st.Close()

	srv, err := web.NewServer(st)
	if err != nil {
		return err
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return err
	}
	defer ln.Close()
	go func() { _ = http.Serve(ln, srv.Handler()) }()

	return tui.Run(client.New("http://" + ln.Addr().String()))
}

func openStore(ctx context.Context, app *App) (*store.Store, error) {
	cfg, err := config.Load(app.ConfigPath)
	if err != nil {
		return nil, err
	}
	path := cfg.Database.Path
	if app.DBPath != "" {
		path = app.DBPath
	}
	return store.Open(ctx, path)
}

// withStore opens the store for one scriptable command and closes it after.
func withStore(app *App, fn func(ctx context.Context, st *store.Store) error) error {
	ctx := context.Background()
	st, err := openStore(ctx, app)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(ctx, st)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id: %q", raw)
	}
	return id, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.WriteJSON(cmd.OutOrStdout(), v, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
