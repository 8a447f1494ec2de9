package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harrisonrobin/tickbox/pkg/api"
	"github.com/harrisonrobin/tickbox/pkg/logger"
	"github.com/harrisonrobin/tickbox/pkg/model"
	"github.com/harrisonrobin/tickbox/pkg/store"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newApp(t *testing.T) (http.Handler, *store.Store) {
	t.Helper()

	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.Local)
	n := 0
	st := store.New(filepath.Join(t.TempDir(), "tasks.json"),
		store.WithLogger(logger.Discard()),
		store.WithClock(func() time.Time {
			now = now.Add(time.Minute)
			return now
		}),
		store.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%03d", n)
		}),
	)
	if _, err := st.Load(); err != nil {
		t.Fatalf("Load() err = %v, want nil", err)
	}
	return api.NewServer(st).Router(), st
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body err=%v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)
	return rr
}

func decodeTask(t *testing.T, rr *httptest.ResponseRecorder) model.Task {
	t.Helper()
	var task model.Task
	if err := json.NewDecoder(rr.Body).Decode(&task); err != nil {
		t.Fatalf("decode task err=%v body=%s", err, rr.Body.String())
	}
	return task
}

func TestCreateAndList(t *testing.T) {
	h, _ := newApp(t)

	rr := doJSON(t, h, http.MethodPost, "/tasks", map[string]string{"title": "Buy milk", "description": "2 litres"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("POST /tasks status=%d, want %d body=%s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	first := decodeTask(t, rr)
	if first.ID != "id-001" || first.Title != "Buy milk" || first.IsDone {
		t.Errorf("unexpected task %+v", first)
	}

	doJSON(t, h, http.MethodPost, "/tasks", map[string]string{"title": "Walk dog", "description": "park"})

	rr = doJSON(t, h, http.MethodGet, "/tasks", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("GET /tasks status=%d", rr.Code)
	}
	var list []model.Task
	if err := json.NewDecoder(rr.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Title != "Walk dog" {
		t.Errorf("expected newest first, got %+v", list)
	}
}

func TestListEmptyIsArray(t *testing.T) {
	h, _ := newApp(t)

	rr := doJSON(t, h, http.MethodGet, "/tasks", nil)
	if got := strings.TrimSpace(rr.Body.String()); got != "[]" {
		t.Errorf("GET /tasks body=%q, want []", got)
	}
}

func TestStatusMapping(t *testing.T) {
	h, st := newApp(t)
	if _, err := st.Add("Buy milk", "2 litres"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"blank title", http.MethodPost, "/tasks", map[string]string{"title": " ", "description": "x"}, http.StatusBadRequest},
		{"bad payload", http.MethodPost, "/tasks", "not an object", http.StatusBadRequest},
		{"unknown id", http.MethodGet, "/tasks/nope", nil, http.StatusNotFound},
		{"unchanged edit", http.MethodPut, "/tasks/id-001", map[string]string{"title": "Buy milk", "description": "2 litres"}, http.StatusConflict},
		{"done without flag", http.MethodPut, "/tasks/id-001/done", map[string]string{}, http.StatusBadRequest},
		{"delete unknown", http.MethodDelete, "/tasks/nope", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doJSON(t, h, tt.method, tt.path, tt.body)
			if rr.Code != tt.want {
				t.Errorf("status=%d, want %d body=%s", rr.Code, tt.want, rr.Body.String())
			}
		})
	}
}

func TestUpdateDoneDelete(t *testing.T) {
	h, st := newApp(t)
	task, err := st.Add("Buy milk", "2 litres")
	if err != nil {
		t.Fatal(err)
	}

	rr := doJSON(t, h, http.MethodPut, "/tasks/"+task.ID, map[string]string{"title": "Buy oat milk", "description": "2 litres"})
	if rr.Code != http.StatusOK {
		t.Fatalf("PUT status=%d body=%s", rr.Code, rr.Body.String())
	}
	if got := decodeTask(t, rr); got.Title != "Buy oat milk" || !got.DateAdded.Equal(task.DateAdded.Time) {
		t.Errorf("unexpected updated task %+v", got)
	}

	// a unique prefix is enough
	rr = doJSON(t, h, http.MethodPut, "/tasks/id-0/done", map[string]bool{"isDone": true})
	if rr.Code != http.StatusOK {
		t.Fatalf("PUT done status=%d body=%s", rr.Code, rr.Body.String())
	}
	if got := decodeTask(t, rr); !got.IsDone {
		t.Error("expected task to be done")
	}

	rr = doJSON(t, h, http.MethodDelete, "/tasks/"+task.ID, nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("DELETE status=%d", rr.Code)
	}
	if st.Len() != 0 {
		t.Errorf("Len() = %d, want 0", st.Len())
	}
}

func TestStorageFailureIs500(t *testing.T) {
	h, st := newApp(t)
	if err := os.Mkdir(st.Path(), 0o755); err != nil {
		t.Fatal(err)
	}

	rr := doJSON(t, h, http.MethodPost, "/tasks", map[string]string{"title": "a", "description": "b"})
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status=%d, want 500", rr.Code)
	}
	if st.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after failed save", st.Len())
	}
}

func TestMetrics(t *testing.T) {
	h, _ := newApp(t)

	addedBefore := testutil.ToFloat64(api.TaskEvents.WithLabelValues(string(store.EventAdded)))
	createdBefore := testutil.ToFloat64(api.HTTPRequests.WithLabelValues("/tasks", "201"))

	doJSON(t, h, http.MethodPost, "/tasks", map[string]string{"title": "a", "description": "b"})

	if got := testutil.ToFloat64(api.TaskEvents.WithLabelValues(string(store.EventAdded))); got != addedBefore+1 {
		t.Errorf("task events = %v, want %v", got, addedBefore+1)
	}
	if got := testutil.ToFloat64(api.HTTPRequests.WithLabelValues("/tasks", "201")); got != createdBefore+1 {
		t.Errorf("http requests = %v, want %v", got, createdBefore+1)
	}

	rr := doJSON(t, h, http.MethodGet, "/metrics", nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "tickbox_task_events_total") {
		t.Errorf("GET /metrics status=%d, missing tickbox_task_events_total", rr.Code)
	}

	rr = doJSON(t, h, http.MethodGet, "/healthz", nil)
	if rr.Code != http.StatusOK {
		t.Errorf("GET /healthz status=%d", rr.Code)
	}
}
