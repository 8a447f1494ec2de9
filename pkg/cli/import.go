package cli

import (
	"fmt"
	"os"

	"github.com/harrisonrobin/tickbox/pkg/model"
	"github.com/harrisonrobin/tickbox/pkg/orgmode"
	"github.com/harrisonrobin/tickbox/pkg/taskwarrior"
	"github.com/spf13/cobra"
)

func (a *app) importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import tasks from other tools",
	}
	cmd.AddCommand(a.importOrgCmd(), a.importTaskwarriorCmd())
	return cmd
}

func (a *app) importOrgCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "org <file>...",
		Short: "Import TODO and DONE headings from Org-mode files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			drafts, err := orgmode.ParseFiles(args)
			if err != nil {
				return fmt.Errorf("failed to parse org files: %w", err)
			}
			return a.importDrafts(cmd, drafts)
		},
	}
}

func (a *app) importTaskwarriorCmd() *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "taskwarrior [filter...]",
		Short: "Import tasks from Taskwarrior",
		Long: `Import tasks from Taskwarrior by running "task <filter> export".

With --from, read a saved export instead of running task.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := taskwarrior.NewClient()

			var tasks []taskwarrior.Task
			var err error
			if from != "" {
				f, openErr := os.Open(from)
				if openErr != nil {
					return openErr
				}
				defer f.Close()
				tasks, err = client.ParseTasks(f)
			} else {
				tasks, err = client.GetTasks(cmd.Context(), args)
			}
			if err != nil {
				return err
			}
			return a.importDrafts(cmd, taskwarrior.ToDrafts(tasks))
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Read a saved `task export` file")
	return cmd
}

func (a *app) importDrafts(cmd *cobra.Command, drafts []model.Draft) error {
	st, err := a.openStore()
	if err != nil {
		return err
	}
	n, err := st.Import(drafts)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d of %d tasks\n", n, len(drafts))
	return nil
}
