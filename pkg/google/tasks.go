package google

import (
	"context"
	"errors"
	"fmt"

	"github.com/harrisonrobin/tickbox/pkg/index"
	"github.com/harrisonrobin/tickbox/pkg/logger"
	"github.com/harrisonrobin/tickbox/pkg/model"
	"github.com/harrisonrobin/tickbox/pkg/util"
	"google.golang.org/api/tasks/v1"
)

// TasksClient mirrors local tasks into one Google Tasks list.
type TasksClient struct {
	srv    *tasks.Service
	listID string
	index  *index.RemoteIndex
}

func NewTasksClient(srv *tasks.Service, listID string, idx *index.RemoteIndex) *TasksClient {
	return &TasksClient{srv: srv, listID: listID, index: idx}
}

// Report counts what a Sync changed remotely.
type Report struct {
	Created   int
	Updated   int
	Deleted   int
	Unchanged int
	Failed    int
}

func (r Report) String() string {
	return fmt.Sprintf("%d created, %d updated, %d deleted, %d unchanged, %d failed",
		r.Created, r.Updated, r.Deleted, r.Unchanged, r.Failed)
}

// Sync makes the remote list match local: missing tasks are created, changed
// ones patched, and marked remote tasks with no local counterpart deleted.
// Remote tasks without a marker are left alone.
func (c *TasksClient) Sync(ctx context.Context, local []model.Task) (Report, error) {
	var report Report

	remote, err := c.listMarked(ctx)
	if err != nil {
		return report, err
	}

	var errs []error
	seen := make(map[string]bool, len(local))
	for i := range local {
		task := &local[i]
		seen[task.ID] = true

		target, err := util.ConvertTaskToRemote(task)
		if err != nil {
			report.Failed++
			errs = append(errs, err)
			continue
		}

		existing := remote[task.ID]
		if existing == nil {
			existing = c.getIndexed(ctx, task.ID)
		}

		if existing == nil {
			created, err := c.srv.Tasks.Insert(c.listID, target).Context(ctx).Do()
			if err != nil {
				report.Failed++
				errs = append(errs, fmt.Errorf("insert %s: %w", task.ID, err))
				continue
			}
			c.index.Set(task.ID, created.Id)
			report.Created++
			continue
		}

		c.index.Set(task.ID, existing.Id)
		patch := util.RemoteNeedsUpdate(existing, target)
		if patch == nil {
			report.Unchanged++
			continue
		}
		if _, err := c.srv.Tasks.Patch(c.listID, existing.Id, patch).Context(ctx).Do(); err != nil {
			report.Failed++
			errs = append(errs, fmt.Errorf("patch %s: %w", task.ID, err))
			continue
		}
		report.Updated++
	}

	for localID, rt := range remote {
		if seen[localID] {
			continue
		}
		if err := c.srv.Tasks.Delete(c.listID, rt.Id).Context(ctx).Do(); err != nil {
			report.Failed++
			errs = append(errs, fmt.Errorf("delete %s: %w", localID, err))
			continue
		}
		c.index.Remove(localID)
		report.Deleted++
	}

	// Forget mappings whose remote task vanished on its own.
	for _, id := range c.index.TaskIDs() {
		if !seen[id] && remote[id] == nil {
			c.index.Remove(id)
		}
	}

	if err := c.index.Save(); err != nil {
		logger.Warn("could not save remote index", "error", err)
	}

	logger.Info("sync finished", "list", c.listID, "report", report.String())
	return report, errors.Join(errs...)
}

// listMarked returns remote tasks carrying a local id marker, keyed by that id.
func (c *TasksClient) listMarked(ctx context.Context) (map[string]*tasks.Task, error) {
	marked := make(map[string]*tasks.Task)
	call := c.srv.Tasks.List(c.listID).ShowCompleted(true).ShowHidden(true).MaxResults(100)
	err := call.Pages(ctx, func(page *tasks.Tasks) error {
		for _, item := range page.Items {
			if id, ok := util.GetTaskIDFromNotes(item.Notes); ok {
				marked[id] = item
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to list remote tasks: %w", err)
	}
	return marked, nil
}

// getIndexed looks up a remote task through the local index, for tasks whose
// marker was edited away on the remote side.
func (c *TasksClient) getIndexed(ctx context.Context, taskID string) *tasks.Task {
	remoteID := c.index.Get(taskID)
	if remoteID == "" {
		return nil
	}
	rt, err := c.srv.Tasks.Get(c.listID, remoteID).Context(ctx).Do()
	if err != nil || rt.Deleted {
		return nil
	}
	return rt
}
