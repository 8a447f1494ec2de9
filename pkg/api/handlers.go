package api

import (
	"encoding/json"
	"net/http"
)

type taskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type doneRequest struct {
	IsDone *bool `json:"isDone"`
}

// GET /healthz
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /tasks
func (s *Server) ListTasks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Sorted())
}

// POST /tasks
func (s *Server) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	task, err := s.store.Add(req.Title, req.Description)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// GET /tasks/{taskID}
func (s *Server) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := s.resolveID(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	task, err := s.store.Get(id)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// PUT /tasks/{taskID}
func (s *Server) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	id, err := s.resolveID(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	if err := s.store.Update(id, req.Title, req.Description); err != nil {
		s.fail(w, err)
		return
	}
	task, _ := s.store.Get(id)
	writeJSON(w, http.StatusOK, task)
}

// PUT /tasks/{taskID}/done
func (s *Server) SetDone(w http.ResponseWriter, r *http.Request) {
	var req doneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IsDone == nil {
		writeError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	id, err := s.resolveID(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	if err := s.store.SetDone(id, *req.IsDone); err != nil {
		s.fail(w, err)
		return
	}
	task, _ := s.store.Get(id)
	writeJSON(w, http.StatusOK, task)
}

// DELETE /tasks/{taskID}
func (s *Server) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := s.resolveID(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	if err := s.store.Delete(id); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
