package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/harrisonrobin/tickbox/pkg/logger"
	"github.com/harrisonrobin/tickbox/pkg/store"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes a task store over HTTP. The store is not safe for concurrent
// use, so every task request holds mu for its whole duration.
type Server struct {
	mu    sync.Mutex
	store *store.Store
	log   *slog.Logger
}

func NewServer(st *store.Store) *Server {
	st.Subscribe(countEvent)
	return &Server{store: st, log: logger.With("component", "api")}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(instrument)

	router.HandleFunc("/healthz", s.Health).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	tasks := router.PathPrefix("/tasks").Subrouter()
	tasks.Use(s.serialize)
	tasks.HandleFunc("", s.ListTasks).Methods(http.MethodGet)
	tasks.HandleFunc("", s.CreateTask).Methods(http.MethodPost)
	tasks.HandleFunc("/{taskID}", s.GetTask).Methods(http.MethodGet)
	tasks.HandleFunc("/{taskID}", s.UpdateTask).Methods(http.MethodPut)
	tasks.HandleFunc("/{taskID}/done", s.SetDone).Methods(http.MethodPut)
	tasks.HandleFunc("/{taskID}", s.DeleteTask).Methods(http.MethodDelete)
	return router
}

// ListenAndServe runs the API until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", addr, "tasks", s.store.Path())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) serialize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// resolveID expands the {taskID} path variable, which may be a unique prefix.
func (s *Server) resolveID(r *http.Request) (string, error) {
	return s.store.Resolve(mux.Vars(r)["taskID"])
}

// statusFor maps store errors onto HTTP status codes. Storage failures and
// anything unexpected are 500s.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrValidation), errors.Is(err, store.ErrAmbiguousID):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrNoChange):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	code := statusFor(err)
	switch {
	case store.IsNotice(err):
		s.log.Debug("request rejected", "error", err)
	case code >= http.StatusInternalServerError:
		s.log.Error("request failed", "error", err)
	}
	writeError(w, code, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
