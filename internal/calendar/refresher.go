package calendar

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultRefreshSpec reclassifies events once a minute.
const DefaultRefreshSpec = "@every 60s"

// Refresher owns the periodic reclassification timer. It must be stopped
// when the calendar it feeds goes away.
type Refresher struct {
	mu      sync.Mutex
	spec    string
	now     func() time.Time
	onTick  func(time.Time)
	logger  *slog.Logger
	sched   *cron.Cron
	entryID cron.EntryID
}

// NewRefresher builds a stopped refresher that calls onTick with now() on every
// firing of spec. An empty spec selects DefaultRefreshSpec.
func NewRefresher(spec string, now func() time.Time, onTick func(time.Time), logger *slog.Logger) *Refresher {
	if spec == "" {
		spec = DefaultRefreshSpec
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Refresher{spec: spec, now: now, onTick: onTick, logger: logger}
}

// Start schedules the timer. Starting a running refresher is a no-op.
func (r *Refresher) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sched != nil {
		return nil
	}

	sched := cron.New()
	id, err := sched.AddFunc(r.spec, r.Tick)
	if err != nil {
		return fmt.Errorf("calendar: invalid refresh schedule %q: %w", r.spec, err)
	}
	sched.Start()
	r.sched = sched
	r.entryID = id
	r.logger.Info("calendar refresher started", "spec", r.spec)
	return nil
}

// Stop cancels the timer and waits for a running tick to return.
func (r *Refresher) Stop() {
	r.mu.Lock()
	sched := r.sched
	r.sched = nil
	r.mu.Unlock()

	if sched == nil {
		return
	}
	<-sched.Stop().Done()
	r.logger.Info("calendar refresher stopped")
}

// Running reports whether the timer is scheduled.
func (r *Refresher) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sched != nil
}

// Next returns the next scheduled firing, or the zero time when stopped.
func (r *Refresher) Next() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sched == nil {
		return time.Time{}
	}
	return r.sched.Entry(r.entryID).Next
}

// Tick runs one reclassification immediately.
func (r *Refresher) Tick() {
	if r.onTick == nil {
		return
	}
	r.onTick(r.now())
}
