package model

import (
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the on-disk format of DateAdded (YYYY-MM-DDTHH:mm:ss, local time).
const TimestampLayout = "2006-01-02T15:04:05"

type Timestamp struct {
	time.Time
}

// NewTimestamp truncates t to the second, the precision the backing file keeps.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.Truncate(time.Second)}
}

// UnmarshalJSON implements the json.Unmarshaler interface for Timestamp.
func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	t, err := time.ParseInLocation(TimestampLayout, s, time.Local)
	if err != nil {
		return fmt.Errorf("failed to parse timestamp '%s': %w", s, err)
	}
	ts.Time = t
	return nil
}

// MarshalJSON implements the json.Marshaler interface for Timestamp.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + ts.Format(TimestampLayout) + `"`), nil
}

// MarshalYAML keeps the same fixed layout in yaml output.
func (ts Timestamp) MarshalYAML() (interface{}, error) {
	return ts.Format(TimestampLayout), nil
}

func (ts Timestamp) String() string {
	return ts.Format(TimestampLayout)
}

// Task is a single to-do record.
type Task struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description" yaml:"description"`
	IsDone      bool      `json:"isDone" yaml:"isDone"`
	DateAdded   Timestamp `json:"dateAdded" yaml:"dateAdded"`
}

// Draft is a task coming from an importer, not yet owned by the store.
type Draft struct {
	Title       string
	Description string
	Done        bool
	Added       time.Time // zero means "now"
	Source      string    // "orgmode" or "taskwarrior"
}
