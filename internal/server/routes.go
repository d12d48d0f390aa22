package server

import (
	"encoding/json"
	"net/http"
	"time"

	"graphview/internal/logging"
	"graphview/internal/render"
	"graphview/internal/source"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type handlers struct {
	graph  *render.GraphRenderer
	list   *render.ListRenderer
	source source.Source
}

func setupRoutes(r chi.Router, h *handlers) {
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	if h.graph != nil {
		r.Get("/", h.graphPage)
	}
	if h.list != nil {
		r.Get("/list", h.listPage)
	}
	if h.source != nil {
		r.Route("/api", func(r chi.Router) {
			r.Get("/data", h.graphData)
			r.Get("/list", h.listData)
		})
	}
}

func (h *handlers) graphPage(w http.ResponseWriter, r *http.Request) {
	page, err := h.graph.Render(r.Context())
	if err != nil {
		// The viewer left before the data arrived.
		return
	}
	writeHTML(w, page)
}

func (h *handlers) listPage(w http.ResponseWriter, r *http.Request) {
	page, err := h.list.Render(r.Context())
	if err != nil {
		return
	}
	writeHTML(w, page)
}

func (h *handlers) graphData(w http.ResponseWriter, r *http.Request) {
	payload, err := h.source.Graph(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error("Error in /api/data", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	logging.FromContext(r.Context()).Debug("served graph", "nodes", len(payload.Nodes), "edges", len(payload.Edges))
	writeJSON(w, http.StatusOK, payload)
}

func (h *handlers) listData(w http.ResponseWriter, r *http.Request) {
	list, err := h.source.List(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error("Error in /api/list", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func writeHTML(w http.ResponseWriter, page []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// requestLogger attaches logger to each request context and logs the
// request once it is done.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			l := logger.With("request_id", middleware.GetReqID(r.Context()))

			next.ServeHTTP(ww, r.WithContext(logging.WithLogger(r.Context(), l)))

			l.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start).Round(time.Millisecond))
		})
	}
}
