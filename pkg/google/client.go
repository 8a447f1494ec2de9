package google

import (
	"context"
	"fmt"

	"github.com/harrisonrobin/tickbox/pkg/auth"
	"github.com/harrisonrobin/tickbox/pkg/index"
	"github.com/harrisonrobin/tickbox/pkg/logger"
	"google.golang.org/api/tasks/v1"
)

// NewClient creates a Google Tasks client bound to the list with the given title.
func NewClient(ctx context.Context, listTitle string, idx *index.RemoteIndex) (*TasksClient, error) {
	srv, err := auth.GetTasksService(ctx)
	if err != nil {
		return nil, err
	}

	listID, err := ResolveList(ctx, srv, listTitle)
	if err != nil {
		return nil, err
	}

	return NewTasksClient(srv, listID, idx), nil
}

// ResolveList finds the task list titled title, creating it when absent.
func ResolveList(ctx context.Context, srv *tasks.Service, title string) (string, error) {
	var listID string
	err := srv.Tasklists.List().MaxResults(100).Pages(ctx, func(page *tasks.TaskLists) error {
		for _, item := range page.Items {
			if item.Title == title {
				listID = item.Id
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("unable to retrieve task lists: %w", err)
	}
	if listID != "" {
		return listID, nil
	}

	created, err := srv.Tasklists.Insert(&tasks.TaskList{Title: title}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to create task list '%s': %w", title, err)
	}
	logger.Info("created task list", "title", title, "id", created.Id)
	return created.Id, nil
}
