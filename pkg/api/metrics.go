package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/harrisonrobin/tickbox/pkg/store"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickbox_http_requests_total",
			Help: "Requests served by the local API",
		},
		[]string{"route", "code"},
	)
	TaskEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickbox_task_events_total",
			Help: "Successful task store mutations",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequests)
	prometheus.MustRegister(TaskEvents)
}

// countEvent is a store observer.
func countEvent(e store.Event) {
	TaskEvents.WithLabelValues(string(e.Kind)).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		HTTPRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
	})
}
