package airfryer

import (
	"context"
	"sync"
	"time"

	"github.com/joshp123/condor/internal/logger"
)

// StatusFetcher is the slice of the device client the poller needs.
type StatusFetcher interface {
	Status(ctx context.Context) (Status, error)
}

// PollStats counts refresh outcomes since startup.
type PollStats struct {
	Polls    uint64
	Failures uint64
}

// Poller owns the single cached status snapshot and refreshes it on a fixed
// interval. Fetch failures are transient: the previous snapshot stays in
// place and the next tick retries, with no backoff.
type Poller struct {
	fetcher  StatusFetcher
	interval time.Duration
	log      *logger.Logger

	// fetchMu serializes device reads between the ticker loop and
	// on-demand refreshes. The device handles one session at a time.
	fetchMu sync.Mutex

	mu          sync.RWMutex
	status      Status
	lastErr     error
	lastSuccess time.Time
	hasData     bool
	stats       PollStats
	subscribers []func(Status, error)

	stop chan struct{}
	done chan struct{}
}

func NewPoller(fetcher StatusFetcher, interval time.Duration, log *logger.Logger) *Poller {
	return &Poller{
		fetcher:  fetcher,
		interval: interval,
		log:      log,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Subscribe registers a callback invoked after every completed refresh,
// successful or not. Must be called before Start.
func (p *Poller) Subscribe(fn func(Status, error)) {
	p.mu.Lock()
	p.subscribers = append(p.subscribers, fn)
	p.mu.Unlock()
}

// Start launches the refresh loop. An immediate first refresh runs before
// the ticker takes over.
func (p *Poller) Start(ctx context.Context) {
	go p.run(ctx)
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)

	if _, err := p.Refresh(ctx); err != nil {
		p.log.Warnw("initial status fetch failed", "error", err)
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := p.Refresh(ctx); err != nil {
				p.log.Warnw("status refresh failed", "error", err)
			}
		}
	}
}

// Stop halts the refresh loop and waits for it to exit.
func (p *Poller) Stop() {
	close(p.stop)
	<-p.done
}

// Refresh performs one awaitable fetch and updates the cached snapshot.
// Used by both the ticker loop and the command sequencer.
func (p *Poller) Refresh(ctx context.Context) (Status, error) {
	p.fetchMu.Lock()
	status, err := p.fetcher.Status(ctx)
	p.fetchMu.Unlock()

	p.mu.Lock()
	p.stats.Polls++
	p.lastErr = err
	if err == nil {
		p.status = status.Clone()
		p.lastSuccess = time.Now()
		p.hasData = true
	} else {
		p.stats.Failures++
	}
	subscribers := p.subscribers
	p.mu.Unlock()

	for _, fn := range subscribers {
		fn(status, err)
	}

	return status, err
}

// Snapshot returns a copy of the latest completed fetch; callers may mutate
// it without corrupting the cache. ok is false when no status has ever been
// fetched or the latest refresh failed, in which case sensor consumers
// report their offline defaults.
func (p *Poller) Snapshot() (Status, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status.Clone(), p.hasData && p.lastErr == nil
}

// LastError returns the error of the most recent refresh, nil on success.
func (p *Poller) LastError() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastErr
}

// LastSuccess returns when the snapshot was last refreshed successfully.
func (p *Poller) LastSuccess() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastSuccess
}

// Stats returns refresh counters for metrics export.
func (p *Poller) Stats() PollStats {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.stats
}
