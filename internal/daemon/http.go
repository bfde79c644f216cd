package daemon

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/theirongolddev/orgburn/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

// OveragesResponse is served at /v1/overages.
type OveragesResponse struct {
	Overages []model.BudgetOverage `json:"overages"`
	Budgets  []model.BudgetStatus  `json:"budgets"`
}

// Handler returns the daemon HTTP API.
func (s *Service) Handler() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  log.StandardLogger(),
		NoColor: true,
	}))
	router.Use(middleware.Recoverer)

	router.Get("/healthz", s.handleHealth)
	router.Route("/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/projects", s.handleProjects)
		r.Get("/projects/{projectID}", s.handleProject)
		r.Get("/overages", s.handleOverages)
		r.Get("/events", s.handleEvents)
		r.Get("/stream", s.handleStream)
	})
	return router
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleProjects(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	projects := s.usage.Projects()
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, projects)
}

func (s *Service) handleProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "projectID")

	s.mu.RLock()
	usage, ok := s.usage.Get(id)
	s.mu.RUnlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no usage for project " + id})
		return
	}
	writeJSON(w, http.StatusOK, usage)
}

func (s *Service) handleOverages(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	resp := OveragesResponse{
		Overages: append([]model.BudgetOverage{}, s.overages...),
		Budgets:  append([]model.BudgetStatus{}, s.statuses...),
	}
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, resp)
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	current := Event{
		Type:      EventSnapshot,
		Timestamp: time.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}
