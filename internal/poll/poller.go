// Package poll keeps the session's load snapshot fresh. The remote server
// is the only source of truth; between refreshes the snapshot is advisory
// and may be stale.
package poll

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Amnesthesia/dz-app/internal/clock"
	"github.com/Amnesthesia/dz-app/internal/domain"
	"github.com/Amnesthesia/dz-app/internal/session"
)

// DefaultInterval matches the load card's refresh cadence.
const DefaultInterval = 30 * time.Second

// LoadFetcher reads the day's loads from the remote service.
type LoadFetcher interface {
	Loads(ctx context.Context, dropzoneID string, earliest time.Time) ([]domain.Load, error)
}

// Poller refreshes the session snapshot on a fixed interval and on demand.
type Poller struct {
	fetcher  LoadFetcher
	session  *session.Session
	clock    clock.Clock
	interval time.Duration
	refresh  chan struct{}
	log      zerolog.Logger
}

// Option configures a Poller.
type Option func(*Poller)

// WithInterval overrides the polling interval.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithLogger attaches a logger for refresh failures.
func WithLogger(log zerolog.Logger) Option {
	return func(p *Poller) {
		p.log = log
	}
}

func New(fetcher LoadFetcher, sess *session.Session, clk clock.Clock, opts ...Option) *Poller {
	p := &Poller{
		fetcher:  fetcher,
		session:  sess,
		clock:    clk,
		interval: DefaultInterval,
		refresh:  make(chan struct{}, 1),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run refreshes immediately, then on every tick or manual trigger, until the
// context is cancelled. Refresh failures are logged and retried on the next
// cycle; a stale snapshot is preferable to a dead loop.
func (p *Poller) Run(ctx context.Context) error {
	if err := p.RefreshNow(ctx); err != nil {
		p.log.Warn().Err(err).Msg("initial load refresh failed")
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case <-p.refresh:
		}
		if err := p.RefreshNow(ctx); err != nil {
			p.log.Warn().Err(err).Msg("load refresh failed")
		}
	}
}

// Trigger requests an out-of-band refresh without blocking. Coalesces with
// any refresh already pending.
func (p *Poller) Trigger() {
	select {
	case p.refresh <- struct{}{}:
	default:
	}
}

// RefreshNow fetches today's loads and replaces the snapshot.
func (p *Poller) RefreshNow(ctx context.Context) error {
	earliest := startOfDay(p.clock.Now())
	loads, err := p.fetcher.Loads(ctx, p.session.Dropzone().ID, earliest)
	if err != nil {
		return err
	}
	p.session.ReplaceLoads(loads)
	return nil
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
