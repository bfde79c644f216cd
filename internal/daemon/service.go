// Package daemon provides the long-running export watcher and budget monitor service.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/theirongolddev/orgburn/internal/model"
	"github.com/theirongolddev/orgburn/internal/pipeline"
	"github.com/theirongolddev/orgburn/internal/store"

	log "github.com/sirupsen/logrus"
)

// ProjectLister supplies the project directory used to name projects.
type ProjectLister interface {
	ListProjects(ctx context.Context, includeArchived bool) ([]model.Project, error)
}

// Config controls the daemon runtime behavior.
type Config struct {
	ExportPaths  []string
	Location     *time.Location
	UseCache     bool
	Interval     time.Duration
	Debounce     time.Duration
	Addr         string
	EventsBuffer int
	Budgets      *store.BudgetFile
	Thresholds   pipeline.Thresholds
	Projects     ProjectLister // optional
}

// Snapshot is a compact usage state for status/event payloads.
type Snapshot struct {
	At           time.Time `json:"at"`
	Files        int       `json:"files"`
	Records      int       `json:"records"`
	TotalCostUSD float64   `json:"total_cost_usd"`
	Projects     int       `json:"projects"`
	Users        int       `json:"users"`
	Budgets      int       `json:"budgets"`
	Overages     int       `json:"overages"`
	OverageUSD   float64   `json:"overage_usd"`
}

// Delta captures snapshot deltas between polls.
type Delta struct {
	Records      int     `json:"records"`
	TotalCostUSD float64 `json:"total_cost_usd"`
	Overages     int     `json:"overages"`
	OverageUSD   float64 `json:"overage_usd"`
}

func (d Delta) isZero() bool {
	return d.Records == 0 &&
		d.TotalCostUSD == 0 &&
		d.Overages == 0 &&
		d.OverageUSD == 0
}

// Event types.
const (
	EventSnapshot       = "snapshot"
	EventUsageDelta     = "usage_delta"
	EventBudgetExceeded = "budget_exceeded"
)

// Event is emitted whenever the usage snapshot changes.
type Event struct {
	ID        int64                 `json:"id"`
	Type      string                `json:"type"`
	Timestamp time.Time             `json:"timestamp"`
	Snapshot  Snapshot              `json:"snapshot"`
	Delta     Delta                 `json:"delta"`
	Overages  []model.BudgetOverage `json:"overages,omitempty"` // budget_exceeded only
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	ExportPaths     []string  `json:"export_paths"`
	Watching        bool      `json:"watching"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg Config

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	watching    bool
	hasSnapshot bool
	snapshot    Snapshot
	usage       model.ProjectUsageSummary
	overages    []model.BudgetOverage
	statuses    []model.BudgetStatus
	projects    []model.Project
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event

	trigger chan struct{}
}

// New returns a new daemon service with the provided config.
func New(cfg Config) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = time.Minute
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 250 * time.Millisecond
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Thresholds == (pipeline.Thresholds{}) {
		cfg.Thresholds = pipeline.DefaultThresholds()
	}

	return &Service{
		cfg:       cfg,
		startedAt: time.Now(),
		usage:     model.NewProjectUsageSummary(),
		subs:      make(map[int]chan Event),
		trigger:   make(chan struct{}, 1),
	}
}

// Run starts HTTP endpoints, the export watcher and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	watcher, err := s.startWatcher(ctx)
	if err != nil {
		log.WithError(err).Warn("file watching unavailable, falling back to polling only")
	} else {
		defer func() { _ = watcher.Close() }()
	}

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce(ctx)
		case <-s.trigger:
			log.Debug("export change detected")
			s.pollOnce(ctx)
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

// requestPoll schedules a poll without blocking. Requests coalesce while one is pending.
func (s *Service) requestPoll() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

func (s *Service) pollOnce(ctx context.Context) {
	result, err := s.loadRecords()
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = time.Now()
		s.pollCount++
		s.mu.Unlock()
		log.WithError(err).Error("poll failed")
		return
	}
	for _, fe := range result.Errors {
		log.WithError(fe).Warn("skipping unreadable export")
	}

	projects := s.refreshProjects(ctx)

	var budgets map[string]float64
	if s.cfg.Budgets != nil {
		budgets, err = s.cfg.Budgets.Load()
		if err != nil {
			log.WithError(err).Warn("loading budgets failed")
		}
	}

	now := time.Now()
	usage := pipeline.CalculateProjectUsage(result.Records)
	overages := pipeline.FindOverages(usage, budgets, projects)
	statuses := pipeline.BudgetStatuses(usage, budgets, projects, s.cfg.Thresholds)

	snap := Snapshot{
		At:           now,
		Files:        result.TotalFiles,
		Records:      len(result.Records),
		TotalCostUSD: pipeline.TotalCost(result.Records).Total,
		Projects:     usage.Len(),
		Users:        len(pipeline.DistinctUserIDs(result.Records)),
		Budgets:      len(budgets),
		Overages:     len(overages),
	}
	for _, o := range overages {
		snap.OverageUSD += o.OverageAmount
	}

	var pending []Event

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot
	prevOver := make(map[string]struct{}, len(s.overages))
	for _, o := range s.overages {
		prevOver[o.ProjectID] = struct{}{}
	}

	s.hasSnapshot = true
	s.snapshot = snap
	s.usage = usage
	s.overages = overages
	s.statuses = statuses
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	if !prevExists {
		pending = append(pending, Event{Type: EventSnapshot, Timestamp: now, Snapshot: snap})
	} else if delta := diffSnapshots(prev, snap); !delta.isZero() {
		pending = append(pending, Event{Type: EventUsageDelta, Timestamp: now, Snapshot: snap, Delta: delta})
	}

	var exceeded []model.BudgetOverage
	for _, o := range overages {
		if _, ok := prevOver[o.ProjectID]; !ok {
			exceeded = append(exceeded, o)
		}
	}
	if len(exceeded) > 0 {
		pending = append(pending, Event{Type: EventBudgetExceeded, Timestamp: now, Snapshot: snap, Overages: exceeded})
	}

	for i := range pending {
		s.nextEventID++
		pending[i].ID = s.nextEventID
	}
	s.mu.Unlock()

	for _, o := range exceeded {
		log.WithFields(log.Fields{
			"project": o.ProjectName,
			"budget":  o.Budget,
			"actual":  o.ActualUsage,
		}).Warn("project exceeded its budget")
	}
	for _, ev := range pending {
		s.publishEvent(ev)
	}
}

func (s *Service) loadRecords() (*pipeline.LoadResult, error) {
	if s.cfg.UseCache {
		cache, err := store.Open(pipeline.CachePath())
		if err == nil {
			defer func() { _ = cache.Close() }()
			cr, loadErr := pipeline.LoadWithCache(s.cfg.ExportPaths, s.cfg.Location, cache, nil)
			if loadErr == nil {
				return &cr.LoadResult, nil
			}
			log.WithError(loadErr).Debug("cached load failed, parsing directly")
		}
	}
	return pipeline.Load(s.cfg.ExportPaths, s.cfg.Location, nil)
}

// refreshProjects fetches the project directory, keeping the previous one
// when the fetch fails.
func (s *Service) refreshProjects(ctx context.Context) []model.Project {
	s.mu.RLock()
	current := s.projects
	s.mu.RUnlock()

	if s.cfg.Projects == nil {
		return current
	}
	projects, err := s.cfg.Projects.ListProjects(ctx, true)
	if err != nil {
		log.WithError(err).Warn("refreshing project directory failed")
		return current
	}

	s.mu.Lock()
	s.projects = projects
	s.mu.Unlock()
	return projects
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Records:      curr.Records - prev.Records,
		TotalCostUSD: curr.TotalCostUSD - prev.TotalCostUSD,
		Overages:     curr.Overages - prev.Overages,
		OverageUSD:   curr.OverageUSD - prev.OverageUSD,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		ExportPaths:     s.cfg.ExportPaths,
		Watching:        s.watching,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
