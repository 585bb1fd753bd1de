package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
)

// Prober is the upstream check run on every tick.
type Prober interface {
	Probe(ctx context.Context, place string) error
}

// Status is the outcome of the most recent probe.
type Status struct {
	Enabled   bool       `json:"enabled"`
	OK        bool       `json:"ok"`
	CheckedAt *time.Time `json:"checked_at,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// Scheduler periodically probes the geocoder and weather provider so /health
// can report upstream reachability.
type Scheduler struct {
	scheduler *gocron.Scheduler
	prober    Prober
	place     string
	interval  time.Duration
	timeout   time.Duration

	mu     sync.RWMutex
	status Status
}

// New creates a new Scheduler. A non-positive interval disables probing.
func New(prober Prober, place string, interval, timeout time.Duration) *Scheduler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		prober:    prober,
		place:     place,
		interval:  interval,
		timeout:   timeout,
	}
}

// Start schedules the periodic probe and starts the underlying scheduler.
// The first probe runs immediately.
func (s *Scheduler) Start() error {
	if s.interval <= 0 || s.prober == nil {
		log.Println("scheduler: upstream probe disabled")
		return nil
	}

	s.mu.Lock()
	s.status.Enabled = true
	s.mu.Unlock()

	_, err := s.scheduler.Every(s.interval).Do(s.RunOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce probes the upstream chain once and records the result.
func (s *Scheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	err := s.prober.Probe(ctx, s.place)

	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	s.status.CheckedAt = &now
	s.status.OK = err == nil
	s.status.Error = ""
	if err != nil {
		s.status.Error = err.Error()
		log.Printf("scheduler: upstream probe for %q failed: %v", s.place, err)
	}
}

// Status returns the outcome of the most recent probe.
func (s *Scheduler) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Stop stops the scheduler and cancels any future probes.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
