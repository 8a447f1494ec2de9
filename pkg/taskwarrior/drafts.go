package taskwarrior

import (
	"strings"

	"github.com/harrisonrobin/tickbox/pkg/model"
)

const Source = "taskwarrior"

// ToDrafts converts exported tasks into store drafts. Deleted tasks are
// dropped. Annotations become the description; without any, the project or
// the task's own text stands in so the draft is never empty.
func ToDrafts(tasks []Task) []model.Draft {
	drafts := make([]model.Draft, 0, len(tasks))
	for _, t := range tasks {
		if t.Status == DELETED {
			continue
		}
		title := strings.TrimSpace(t.Description)
		if title == "" {
			continue
		}

		d := model.Draft{
			Title:       title,
			Description: describe(t),
			Done:        t.Status == COMPLETED,
			Source:      Source,
		}
		if t.Entry != nil {
			d.Added = t.Entry.Time
		}
		drafts = append(drafts, d)
	}
	return drafts
}

func describe(t Task) string {
	var notes []string
	for _, a := range t.Annotations {
		if s := strings.TrimSpace(a.Description); s != "" {
			notes = append(notes, s)
		}
	}
	if len(notes) > 0 {
		return strings.Join(notes, "\n")
	}
	if t.Project != "" {
		return "project: " + t.Project
	}
	return t.Description
}
