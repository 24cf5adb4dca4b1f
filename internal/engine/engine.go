// Package engine owns all court state. Every mutation runs on a single
// goroutine (the run loop); pollers and HTTP handlers submit work to it and
// wait, so no two writers ever race on a court.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/nhicks00/courtcast/internal/model"
)

// ErrUnknownCourt is returned for court ids outside the managed set.
var ErrUnknownCourt = errors.New("unknown court")

// ErrEmptyQueue is returned when polling is started on a court with no
// queued matches.
var ErrEmptyQueue = errors.New("court queue is empty")

// ByteSource supplies raw score payloads, normally the fetch cache.
type ByteSource interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Publisher pushes a court's latest payload to connected overlay clients.
type Publisher interface {
	Publish(courtID int, payload []byte)
}

// Broadcaster records the latest payload per court for late-joining clients.
type Broadcaster interface {
	Set(courtID int, payload []byte)
	Clear(courtID int)
}

// Persister writes a court's state to disk after each mutation. Failures are
// logged, never fatal: persistence is best-effort.
type Persister interface {
	SaveCourt(ctx context.Context, court *model.Court) error
}

// Config holds engine scheduling knobs.
type Config struct {
	PollInterval    time.Duration // base poll interval, default 3s
	CourtOffsetStep time.Duration // deterministic per-court stagger, default 250ms
	MaxJitter       time.Duration // random extra delay per fire, default 1s
}

// DefaultConfig returns the scheduling defaults.
func DefaultConfig() Config {
	return Config{
		PollInterval:    3 * time.Second,
		CourtOffsetStep: 250 * time.Millisecond,
		MaxJitter:       time.Second,
	}
}

// Engine is the live score synchronization core: per-court state machines, a
// staggered poll scheduler, and the funnel that applies poll results.
type Engine struct {
	cfg       Config
	source    ByteSource
	broadcast Broadcaster
	publisher Publisher
	persist   Persister
	now       func() time.Time

	ops     chan func()
	stopped chan struct{}

	// baseCtx is the process-lifetime context set by Start; pollers derive
	// from it so an HTTP request ending never cancels a poll task.
	baseCtx context.Context

	// Owned by the run loop. Never touched from other goroutines.
	courts  map[int]*model.Court
	pollers map[int]context.CancelFunc
}

// New creates an engine over the given courts. Missing ids in 1..MaxCourts
// are filled in with fresh idle courts.
func New(cfg Config, source ByteSource, bc Broadcaster, pub Publisher, persist Persister, courts []*model.Court) *Engine {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultConfig().PollInterval
	}
	if cfg.CourtOffsetStep <= 0 {
		cfg.CourtOffsetStep = DefaultConfig().CourtOffsetStep
	}
	if cfg.MaxJitter <= 0 {
		cfg.MaxJitter = DefaultConfig().MaxJitter
	}

	byID := make(map[int]*model.Court, model.MaxCourts)
	for _, c := range courts {
		if c != nil && c.ID >= 1 && c.ID <= model.MaxCourts {
			byID[c.ID] = c
		}
	}
	for id := 1; id <= model.MaxCourts; id++ {
		if _, ok := byID[id]; !ok {
			byID[id] = model.NewCourt(id)
		}
	}

	// Restored courts never resume polling on their own, and a court with
	// an empty queue is always idle with no active match.
	for _, c := range byID {
		if len(c.Queue) == 0 {
			c.Status = model.StatusIdle
			c.ActiveIndex = nil
		} else if c.Status.IsPolling() {
			c.Status = model.StatusWaiting
		}
		c.LiveSince = nil
	}

	return &Engine{
		cfg:       cfg,
		source:    source,
		broadcast: bc,
		publisher: pub,
		persist:   persist,
		now:       time.Now,
		ops:       make(chan func()),
		stopped:   make(chan struct{}),
		courts:    byID,
		pollers:   make(map[int]context.CancelFunc),
	}
}

// Start launches the run loop. It exits when ctx is cancelled, stopping
// every poller on the way out.
func (e *Engine) Start(ctx context.Context) {
	e.baseCtx = ctx
	go e.run(ctx)
}

func (e *Engine) run(ctx context.Context) {
	log.Printf("[engine] run loop started (%d courts)", len(e.courts))
	for {
		select {
		case <-ctx.Done():
			for id, cancel := range e.pollers {
				cancel()
				delete(e.pollers, id)
			}
			close(e.stopped)
			log.Println("[engine] run loop stopped")
			return
		case op := <-e.ops:
			op()
		}
	}
}

// do runs fn on the run loop and waits for it to finish.
func (e *Engine) do(fn func()) {
	done := make(chan struct{})
	select {
	case e.ops <- func() { fn(); close(done) }:
		<-done
	case <-e.stopped:
	}
}

// Courts returns copies of every court, ordered by id.
func (e *Engine) Courts() []*model.Court {
	var out []*model.Court
	e.do(func() {
		for _, c := range e.courts {
			out = append(out, c.Clone())
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Court returns a copy of one court.
func (e *Engine) Court(id int) (*model.Court, error) {
	var (
		out *model.Court
		err error
	)
	e.do(func() {
		c, ok := e.courts[id]
		if !ok {
			err = fmt.Errorf("%w: %d", ErrUnknownCourt, id)
			return
		}
		out = c.Clone()
	})
	return out, err
}

// RenameCourt sets a court's display name.
func (e *Engine) RenameCourt(id int, name string) error {
	return e.withCourt(id, func(c *model.Court) {
		c.Name = name
	})
}

// ReplaceQueue swaps a court's queue wholesale. The active index resets to
// the first match (or none), the last snapshot is dropped, and the court
// goes to waiting or idle depending on whether the queue has entries.
func (e *Engine) ReplaceQueue(id int, matches []model.MatchItem) error {
	return e.withCourt(id, func(c *model.Court) {
		c.Queue = append([]model.MatchItem(nil), matches...)
		c.LastSnapshot = nil
		c.LiveSince = nil
		c.ErrorMessage = ""
		e.broadcast.Clear(id)
		if len(c.Queue) == 0 {
			c.ActiveIndex = nil
			c.Status = model.StatusIdle
			e.stopPollerLocked(id)
			return
		}
		idx := 0
		c.ActiveIndex = &idx
		c.Status = model.StatusWaiting
	})
}

// AppendToQueue adds matches to the end of a court's queue. An idle court
// with new matches stays idle until polling starts.
func (e *Engine) AppendToQueue(id int, matches []model.MatchItem) error {
	return e.withCourt(id, func(c *model.Court) {
		c.Queue = append(c.Queue, matches...)
	})
}

// ClearQueue empties the queue and halts polling for the court.
func (e *Engine) ClearQueue(id int) error {
	return e.withCourt(id, func(c *model.Court) {
		c.Queue = nil
		c.ActiveIndex = nil
		c.Status = model.StatusIdle
		c.LastSnapshot = nil
		c.LiveSince = nil
		c.ErrorMessage = ""
		e.broadcast.Clear(id)
		e.stopPollerLocked(id)
	})
}

// SkipToNext moves the active match forward by one.
func (e *Engine) SkipToNext(id int) error {
	return e.skip(id, 1)
}

// SkipToPrevious moves the active match back by one.
func (e *Engine) SkipToPrevious(id int) error {
	return e.skip(id, -1)
}

func (e *Engine) skip(id, delta int) error {
	return e.withCourt(id, func(c *model.Court) {
		if c.ActiveIndex == nil {
			return
		}
		idx := *c.ActiveIndex + delta
		if idx < 0 || idx >= len(c.Queue) {
			return
		}
		c.ActiveIndex = &idx
		c.Status = model.StatusWaiting
		c.LiveSince = nil
		c.LastSnapshot = nil
	})
}

// withCourt runs mutate on the court inside the run loop, then persists.
func (e *Engine) withCourt(id int, mutate func(c *model.Court)) error {
	var err error
	e.do(func() {
		c, ok := e.courts[id]
		if !ok {
			err = fmt.Errorf("%w: %d", ErrUnknownCourt, id)
			return
		}
		mutate(c)
		e.persistLocked(c)
	})
	return err
}

// persistLocked saves a court snapshot to disk. Run-loop only.
func (e *Engine) persistLocked(c *model.Court) {
	if e.persist == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.persist.SaveCourt(ctx, c.Clone()); err != nil {
		log.Printf("[engine] persist court %d: %v", c.ID, err)
	}
}
