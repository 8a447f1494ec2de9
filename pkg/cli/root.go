package cli

import (
	"fmt"
	"os"

	"github.com/harrisonrobin/tickbox/pkg/config"
	"github.com/harrisonrobin/tickbox/pkg/logger"
	"github.com/harrisonrobin/tickbox/pkg/store"
	"github.com/harrisonrobin/tickbox/pkg/tui"
	"github.com/spf13/cobra"
)

// app carries state shared by every command of one invocation.
type app struct {
	verbose bool
	file    string
	cfgPath string
	cfg     *config.Config
	store   *store.Store
	runTUI  func(*store.Store) error
}

func newRootCmd() *cobra.Command {
	a := &app{runTUI: tui.Run}

	root := &cobra.Command{
		Use:   "tickbox",
		Short: "A small personal task list",
		Long: `tickbox keeps a personal task list in a single JSON file.

Run it without arguments for the interactive view, or use the subcommands
to script it, serve it over HTTP, or mirror it to Google Tasks.`,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			return a.runTUI(st)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().StringVarP(&a.file, "file", "f", "", "Task file (overrides tasks_file)")

	root.AddCommand(
		a.addCmd(),
		a.editCmd(),
		a.doneCmd(true),
		a.doneCmd(false),
		a.rmCmd(),
		a.showCmd(),
		a.listCmd(),
		a.importCmd(),
		a.serveCmd(),
		a.syncCmd(),
		a.authCmd(),
		a.configCmd(),
	)
	return root
}

// Execute runs the root command
func Execute(version string) error {
	root := newRootCmd()
	root.Version = version
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	var err error
	if a.cfgPath == "" {
		a.cfgPath, err = config.GetConfigPath()
		if err != nil {
			return fmt.Errorf("could not find path to configuration file: %w", err)
		}
	}
	a.cfg, err = config.LoadFile(a.cfgPath)
	if err != nil {
		return err
	}
	if a.file != "" {
		a.cfg.TasksFile = a.file
	}

	level := a.cfg.LogLevel
	if a.verbose {
		level = "debug"
	}
	logger.Init(level, a.cfg.LogJSON, nil)
	return nil
}

// openStore loads the task file on first use. Commands that never touch tasks
// (config, auth) do not fail on an unreadable file.
func (a *app) openStore() (*store.Store, error) {
	if a.store != nil {
		return a.store, nil
	}

	st := store.New(a.cfg.TasksFile, store.WithLogger(logger.With("component", "store")))
	if _, err := st.Load(); err != nil {
		return nil, err
	}
	st.Subscribe(func(e store.Event) {
		logger.Debug("task event", "kind", e.Kind, "id", e.Task.ID, "title", e.Task.Title)
	})
	a.store = st
	return st, nil
}

// resolve opens the store and expands an id prefix.
func (a *app) resolve(prefix string) (*store.Store, string, error) {
	st, err := a.openStore()
	if err != nil {
		return nil, "", err
	}
	id, err := st.Resolve(prefix)
	if err != nil {
		return nil, "", err
	}
	return st, id, nil
}
