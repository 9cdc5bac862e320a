// Package schedule runs the daily GitHub sync and reacts to remote
// "sync now" requests for the lifetime of a session.
package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/GioMjds/commitly/internal/daykey"
	"github.com/GioMjds/commitly/internal/logging"
	"github.com/GioMjds/commitly/internal/result"
	"github.com/GioMjds/commitly/internal/settings"
)

// DefaultInterval is how often the daily schedule is checked.
const DefaultInterval = 60 * time.Second

// Runner performs one sync pass.
type Runner interface {
	Run(ctx context.Context) result.Result
}

// Options tune a Daily. Zero values pick the defaults.
type Options struct {
	Interval time.Duration
	Days     daykey.Convention

	// Tick replaces the interval ticker. Now replaces time.Now.
	Tick <-chan time.Time
	Now  func() time.Time
}

// Daily is a running schedule. All sync passes it starts run on its own
// goroutine one at a time.
type Daily struct {
	owner    string
	settings *settings.Service
	runner   Runner
	log      logging.Logger
	days     daykey.Convention
	now      func() time.Time

	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

// Start begins checking the owner's schedule and watching for pushed
// trigger flags. Call Stop to tear it down.
func Start(ctx context.Context, owner string, st *settings.Service, runner Runner, log logging.Logger, opts Options) (*Daily, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	ctx, cancel := context.WithCancel(ctx)

	changes, err := st.Store().Subscribe(ctx, owner)
	if err != nil {
		cancel()
		return nil, err
	}

	tick := opts.Tick
	var ticker *time.Ticker
	if tick == nil {
		interval := opts.Interval
		if interval <= 0 {
			interval = DefaultInterval
		}
		ticker = time.NewTicker(interval)
		tick = ticker.C
	}

	d := &Daily{
		owner:    owner,
		settings: st,
		runner:   runner,
		log:      log.With("owner", owner),
		days:     opts.Days,
		now:      opts.Now,
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	go func() {
		defer close(d.done)
		if ticker != nil {
			defer ticker.Stop()
		}
		d.checkTrigger(ctx)
		d.checkDaily(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-tick:
				d.checkDaily(ctx)
			case key, ok := <-changes:
				if !ok {
					changes = nil
					continue
				}
				if key == settings.KeySync {
					d.checkTrigger(ctx)
				}
			}
		}
	}()
	return d, nil
}

// Stop cancels the schedule and waits for an in-flight pass to finish.
func (d *Daily) Stop() {
	d.stopOnce.Do(func() {
		d.cancel()
		<-d.done
	})
}

// Done is closed once the schedule has stopped.
func (d *Daily) Done() <-chan struct{} {
	return d.done
}

func (d *Daily) checkDaily(ctx context.Context) {
	cfg, err := d.settings.Sync(ctx, d.owner)
	if err != nil {
		d.log.Warn(ctx, "reading sync settings failed", "error", err)
		return
	}
	now := d.now()
	today := d.days.Today(now)
	if !cfg.Enabled || !cfg.DailyDue(now, today, d.days.Location()) {
		return
	}

	d.log.Info(ctx, "running daily sync", "day", today)
	res := d.runner.Run(ctx)
	if !res.Success {
		d.log.Warn(ctx, "daily sync failed", "code", res.Code, "message", res.Message)
	}

	// Recorded even after a failure so a broken token is not retried
	// every interval; the next day tries again.
	if _, err := d.settings.UpdateSync(ctx, d.owner, func(c *settings.SyncSettings) {
		c.LastDailySyncDay = today
	}); err != nil {
		d.log.Warn(ctx, "recording daily sync failed", "error", err)
	}
}

// checkTrigger runs a pass when a remote trigger is pending. The flag is
// cleared before running so a slow pass can't be triggered twice.
func (d *Daily) checkTrigger(ctx context.Context) {
	cfg, err := d.settings.Sync(ctx, d.owner)
	if err != nil {
		d.log.Warn(ctx, "reading sync settings failed", "error", err)
		return
	}
	if !cfg.TriggerSync {
		return
	}
	if _, err := d.settings.UpdateSync(ctx, d.owner, func(c *settings.SyncSettings) {
		c.TriggerSync = false
	}); err != nil {
		d.log.Warn(ctx, "clearing sync trigger failed", "error", err)
		return
	}

	d.log.Info(ctx, "running triggered sync")
	res := d.runner.Run(ctx)
	if !res.Success {
		d.log.Warn(ctx, "triggered sync failed", "code", res.Code, "message", res.Message)
	}
}
