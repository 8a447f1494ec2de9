package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/harrisonrobin/tickbox/pkg/api"
	"github.com/harrisonrobin/tickbox/pkg/auth"
	"github.com/harrisonrobin/tickbox/pkg/google"
	"github.com/harrisonrobin/tickbox/pkg/index"
	"github.com/harrisonrobin/tickbox/pkg/logger"
	"github.com/spf13/cobra"
)

func (a *app) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the task list over a local HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.ListenAddr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return api.NewServer(st).ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides listen_addr)")
	return cmd
}

func (a *app) syncCmd() *cobra.Command {
	var list string
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Mirror tasks to a Google Tasks list",
		Long: `Mirror tasks to a Google Tasks list. Local tasks are the source of
truth: remote copies are created, updated and deleted to match.
Remote tasks that tickbox did not create are left alone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			if list == "" {
				list = a.cfg.TaskList
			}

			idx, err := index.NewRemoteIndex()
			if err != nil {
				return fmt.Errorf("could not open remote index: %w", err)
			}
			client, err := google.NewClient(cmd.Context(), list, idx)
			if err != nil {
				return err
			}

			report, err := client.Sync(cmd.Context(), st.Sorted())
			fmt.Fprintf(cmd.OutOrStdout(), "Synced to %q: %s\n", list, report)
			return err
		},
	}
	cmd.Flags().StringVar(&list, "list", "", "Google Tasks list title (overrides task_list)")
	return cmd
}

func (a *app) authCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with Google Tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := auth.ResetToken(); err != nil {
				return err
			}
			if _, err := auth.GetTasksService(cmd.Context()); err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}
			path, _ := auth.TokenPath()
			logger.Info("authentication successful", "token", path)
			fmt.Fprintln(cmd.OutOrStdout(), "Authentication successful.")
			return nil
		},
	}
}
