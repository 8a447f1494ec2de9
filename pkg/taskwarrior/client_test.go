package taskwarrior

import (
	"strings"
	"testing"
	"time"
)

func TestParseTask(t *testing.T) {
	input := `{
		"uuid": "f45a05b3-c12e-42e5-9c9c-333333333333",
		"description": "Buy milk",
		"status": "pending",
		"entry": "20230101T120000Z",
		"project": "Groceries",
		"tags": ["buy", "food"],
		"annotations": [
			{"entry": "20230101T120500Z", "description": "Don't forget almond milk"}
		]
	}`

	client := NewClient()
	task, err := client.ParseTask(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseTask failed: %v", err)
	}

	if task.UUID != "f45a05b3-c12e-42e5-9c9c-333333333333" {
		t.Errorf("Expected UUID f45a05b3-c12e-42e5-9c9c-333333333333, got %s", task.UUID)
	}
	if task.Description != "Buy milk" {
		t.Errorf("Expected Description 'Buy milk', got '%s'", task.Description)
	}
	if task.Project != "Groceries" {
		t.Errorf("Expected Project 'Groceries', got '%s'", task.Project)
	}
	if len(task.Tags) != 2 {
		t.Errorf("Expected 2 tags, got %d", len(task.Tags))
	}
	if len(task.Annotations) != 1 {
		t.Errorf("Expected 1 annotation, got %d", len(task.Annotations))
	}
	expectedEntry, _ := time.Parse(time.RFC3339, "2023-01-01T12:00:00Z")
	if !task.Entry.Time.Equal(expectedEntry) {
		t.Errorf("Expected Entry %v, got %v", expectedEntry, task.Entry.Time)
	}
}

func TestParseTasks_ArrayAndStream(t *testing.T) {
	client := NewClient()

	array := `[{"uuid":"a","description":"one","status":"pending"},{"uuid":"b","description":"two","status":"completed"}]`
	tasks, err := client.ParseTasks(strings.NewReader(array))
	if err != nil {
		t.Fatalf("ParseTasks(array) failed: %v", err)
	}
	if len(tasks) != 2 || tasks[1].UUID != "b" {
		t.Errorf("Expected 2 tasks from array, got %+v", tasks)
	}

	stream := "{\"uuid\":\"a\",\"description\":\"one\",\"status\":\"pending\"}\n{\"uuid\":\"b\",\"description\":\"two\",\"status\":\"pending\"}\n"
	tasks, err = client.ParseTasks(strings.NewReader(stream))
	if err != nil {
		t.Fatalf("ParseTasks(stream) failed: %v", err)
	}
	if len(tasks) != 2 {
		t.Errorf("Expected 2 tasks from stream, got %d", len(tasks))
	}

	tasks, err = client.ParseTasks(strings.NewReader("  \n"))
	if err != nil || len(tasks) != 0 {
		t.Errorf("Expected no tasks and no error for blank input, got %v, %v", tasks, err)
	}

	if _, err := client.ParseTasks(strings.NewReader("[{")); err == nil {
		t.Error("Expected error for truncated input")
	}
}

func TestToDrafts(t *testing.T) {
	entry, _ := time.Parse(time.RFC3339, "2023-01-01T12:00:00Z")
	tasks := []Task{
		{
			UUID: "a", Description: "Buy milk", Status: PENDING,
			Entry:       &CustomTime{entry},
			Annotations: []Annotation{{Description: "almond"}, {Description: " oat "}},
		},
		{UUID: "b", Description: "File taxes", Status: COMPLETED, Project: "home"},
		{UUID: "c", Description: "Old idea", Status: DELETED},
		{UUID: "d", Description: "Call mum", Status: WAITING},
		{UUID: "e", Description: "   ", Status: PENDING},
	}

	drafts := ToDrafts(tasks)
	if len(drafts) != 3 {
		t.Fatalf("Expected 3 drafts, got %d: %+v", len(drafts), drafts)
	}

	if drafts[0].Description != "almond\noat" {
		t.Errorf("Expected joined annotations, got %q", drafts[0].Description)
	}
	if !drafts[0].Added.Equal(entry) {
		t.Errorf("Expected Added %v, got %v", entry, drafts[0].Added)
	}
	if drafts[0].Done {
		t.Error("Expected pending task to not be done")
	}

	if !drafts[1].Done || drafts[1].Description != "project: home" {
		t.Errorf("Unexpected completed draft: %+v", drafts[1])
	}

	if drafts[2].Description != "Call mum" || !drafts[2].Added.IsZero() {
		t.Errorf("Expected title fallback and zero Added, got %+v", drafts[2])
	}
	for _, d := range drafts {
		if d.Source != Source {
			t.Errorf("Expected source %q, got %q", Source, d.Source)
		}
	}
}
