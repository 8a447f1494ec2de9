package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/harrisonrobin/tickbox/pkg/model"
	"github.com/harrisonrobin/tickbox/pkg/store"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const shortIDLen = 8

func (a *app) addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <title> <description>",
		Short: "Add a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			task, err := st.Add(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s\n", shortID(task.ID), task.Title)
			return nil
		},
	}
}

func (a *app) editCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a task's title or description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, id, err := a.resolve(args[0])
			if err != nil {
				return err
			}
			task, err := st.Get(id)
			if err != nil {
				return err
			}

			title, description := task.Title, task.Description
			if cmd.Flags().Changed("title") {
				title, _ = cmd.Flags().GetString("title")
			}
			if cmd.Flags().Changed("description") {
				description, _ = cmd.Flags().GetString("description")
			}

			err = st.Update(id, title, description)
			if errors.Is(err, store.ErrNoChange) {
				fmt.Fprintln(cmd.OutOrStdout(), "No changes made.")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", shortID(id))
			return nil
		},
	}
	cmd.Flags().StringP("title", "t", "", "New title")
	cmd.Flags().StringP("description", "d", "", "New description")
	return cmd
}

func (a *app) doneCmd(done bool) *cobra.Command {
	use, short, verb := "done <id>", "Mark a task completed", "Completed"
	if !done {
		use, short, verb = "undone <id>", "Mark a task not completed", "Reopened"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, id, err := a.resolve(args[0])
			if err != nil {
				return err
			}
			if err := st.SetDone(id, done); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, shortID(id))
			return nil
		},
	}
}

func (a *app) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, id, err := a.resolve(args[0])
			if err != nil {
				return err
			}
			task, _ := st.Get(id)
			if err := st.Delete(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %s\n", shortID(id), task.Title)
			return nil
		},
	}
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one task in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, id, err := a.resolve(args[0])
			if err != nil {
				return err
			}
			task, err := st.Get(id)
			if err != nil {
				return err
			}
			status := "pending"
			if task.IsDone {
				status = "completed"
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:          %s\n", task.ID)
			fmt.Fprintf(out, "Title:       %s\n", task.Title)
			fmt.Fprintf(out, "Status:      %s\n", status)
			fmt.Fprintf(out, "Created:     %s\n", task.DateAdded.Format("2006-01-02 at 15:04:05"))
			fmt.Fprintf(out, "\n%s\n", task.Description)
			return nil
		},
	}
}

func (a *app) listCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			return writeTasks(cmd.OutOrStdout(), output, st.Sorted())
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text, json, yaml")
	return cmd
}

func writeTasks(w io.Writer, format string, tasks []model.Task) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(tasks)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(tasks)
	case "text":
		if len(tasks) == 0 {
			fmt.Fprintln(w, "No tasks.")
			return nil
		}
		for _, t := range tasks {
			box, suffix := "[ ]", ""
			if t.IsDone {
				box, suffix = "[x]", " (completed)"
			}
			fmt.Fprintf(w, "%s  %s  %s %s%s\n",
				shortID(t.ID), t.DateAdded.Format("2006-01-02 15:04"), box, t.Title, suffix)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
	}
}

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}
