package util

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/harrisonrobin/tickbox/pkg/model"
	"google.golang.org/api/tasks/v1"
)

const (
	STATUS_COMPLETED    = "completed"
	STATUS_NEEDS_ACTION = "needsAction"

	markerPrefix = "tickbox-id: "
)

var markerRegex = regexp.MustCompile(`(?m)^tickbox-id: ([A-Za-z0-9\-]+)\s*$`)

// ConvertTaskToRemote builds the Google Tasks representation of a local task.
// The notes end with a marker line carrying the local id.
func ConvertTaskToRemote(task *model.Task) (*tasks.Task, error) {
	if task == nil {
		return nil, fmt.Errorf("could not convert nil Task")
	}
	if task.ID == "" {
		return nil, fmt.Errorf("could not convert task without id: %q", task.Title)
	}

	status := STATUS_NEEDS_ACTION
	if task.IsDone {
		status = STATUS_COMPLETED
	}

	var notes strings.Builder
	notes.WriteString(task.Description)
	notes.WriteString("\n\n")
	notes.WriteString(fmt.Sprintf("added: %s\n", task.DateAdded.Format("2006-01-02 15:04:05")))
	notes.WriteString(markerPrefix + task.ID)

	return &tasks.Task{
		Title:  task.Title,
		Notes:  notes.String(),
		Status: status,
	}, nil
}

// RemoteNeedsUpdate returns a patch for the fields that differ between the
// remote task and its target, or nil when they already match.
func RemoteNeedsUpdate(existing *tasks.Task, target *tasks.Task) *tasks.Task {
	patch := &tasks.Task{}
	needsUpdate := false

	if existing.Title != target.Title {
		patch.Title = target.Title
		needsUpdate = true
	}

	if existing.Notes != target.Notes {
		patch.Notes = target.Notes
		needsUpdate = true
	}

	if existing.Status != target.Status {
		patch.Status = target.Status
		if target.Status == STATUS_NEEDS_ACTION {
			// Reopening requires clearing the completion time.
			patch.NullFields = append(patch.NullFields, "Completed")
		}
		needsUpdate = true
	}

	if needsUpdate {
		return patch
	}
	return nil
}

// GetTaskIDFromNotes parses the local task id from a remote task's notes.
func GetTaskIDFromNotes(notes string) (string, bool) {
	matches := markerRegex.FindStringSubmatch(notes)
	if len(matches) > 1 {
		return matches[1], true
	}
	return "", false
}
