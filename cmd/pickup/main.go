package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/smartwaste/pickup/internal/config"
	"github.com/smartwaste/pickup/internal/forms"
	"github.com/smartwaste/pickup/internal/geo"
	"github.com/smartwaste/pickup/internal/logging"
	"github.com/smartwaste/pickup/internal/session"
	"github.com/smartwaste/pickup/internal/storage"
	"github.com/smartwaste/pickup/internal/tui"
	"github.com/smartwaste/pickup/pkg/client"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// env is what every command works with. One session store backs all of them.
type env struct {
	cfg     *config.Config
	log     *zap.Logger
	client  *client.Client
	session *session.Store
	guard   session.Guard
	locator geo.Locator
	forms   *forms.Validator
}

func setup() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logging.Must(logging.Options{
		Path:       cfg.LogPath(),
		Level:      cfg.LogLevel,
		Production: cfg.IsProduction(),
	})

	kv, err := storage.OpenFile(cfg.SessionPath())
	if err != nil {
		return nil, err
	}
	if kv.Corrupt() {
		log.Warn("session file unreadable, starting signed out", zap.String("path", kv.Path()))
	}
	persister := session.NewKVPersister(kv, log)

	c := client.New(cfg.BaseURL(),
		client.WithTimeout(cfg.Timeout),
		client.WithLogger(log),
		client.WithTokenSource(persister.Token),
	)
	store, err := session.Open(persister, c, log)
	if err != nil {
		return nil, err
	}

	geoOpts := geo.Options{IPLookup: cfg.Geo.IPLookup, LookupURL: cfg.Geo.LookupURL, Log: log}
	if fixed, ok := cfg.Location.Fixed(); ok {
		geoOpts.Fixed = &fixed
	}

	log.Debug("pickup starting", zap.String("version", version), zap.String("api", c.BaseURL()))
	return &env{
		cfg:     cfg,
		log:     log,
		client:  c,
		session: store,
		guard:   session.NewGuard(store),
		locator: geo.New(geoOpts),
		forms:   forms.New(),
	}, nil
}

func (e *env) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), e.cfg.Timeout)
}

func (e *env) deps() tui.Deps {
	return tui.Deps{
		Client:  e.client,
		Session: e.session,
		Forms:   e.forms,
		Locator: e.locator,
		Log:     e.log,
	}
}

// runTUI runs the interactive client until the user quits.
func (e *env) runTUI(app tui.App) error {
	defer e.log.Sync() //nolint:errcheck
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

func newRootCmd() *cobra.Command {
	var e *env

	root := &cobra.Command{
		Use:   "pickup",
		Short: "Book and track waste pickups from the terminal",
		Long: `pickup is a terminal client for the waste pickup service.

Run it without a command for the interactive app, or use one of the
commands below for one-shot tasks.

Examples:
  pickup login -e asha@example.com
  pickup types
  pickup book --type 2 --quantity 5 --date 2026-03-11 --time 10:30 --address "12 Market Road"
  pickup bookings 42`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			var err error
			e, err = setup()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.runTUI(tui.NewApp(e.deps()))
		},
	}

	get := func() *env { return e }
	root.AddCommand(
		newLoginCmd(get),
		newRegisterCmd(get),
		newLogoutCmd(get),
		newWhoamiCmd(get),
		newForgotCmd(get),
		newContactCmd(get),
		newProfileCmd(get),
		newPasswordCmd(get),
		newTypesCmd(get),
		newCentersCmd(get),
		newNearestCmd(get),
		newBookingsCmd(get),
		newBookCmd(get),
		newWelcomeCmd(get),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "pickup "+version)
		},
	}
}
