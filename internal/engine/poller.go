package engine

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"github.com/nhicks00/courtcast/internal/model"
	"github.com/nhicks00/courtcast/internal/normalize"
)

// StartPolling schedules the repeating poll task for one court, replacing
// any existing task. A court with no active match starts at the head of its
// queue.
func (e *Engine) StartPolling(id int) error {
	var err error
	e.do(func() {
		c, ok := e.courts[id]
		if !ok {
			err = fmt.Errorf("%w: %d", ErrUnknownCourt, id)
			return
		}
		if len(c.Queue) == 0 {
			err = ErrEmptyQueue
			return
		}
		e.stopPollerLocked(id)
		if c.ActiveIndex == nil {
			idx := 0
			c.ActiveIndex = &idx
		}
		c.Status = model.StatusWaiting
		e.persistLocked(c)

		pollCtx, cancel := context.WithCancel(e.baseCtx)
		e.pollers[id] = cancel
		go e.runPoller(pollCtx, id)
		log.Printf("[engine] polling started for court %d", id)
	})
	return err
}

// StopPolling cancels the court's poll task and parks it idle.
func (e *Engine) StopPolling(id int) error {
	return e.withCourt(id, func(c *model.Court) {
		e.stopPollerLocked(id)
		c.Status = model.StatusIdle
		c.LiveSince = nil
		log.Printf("[engine] polling stopped for court %d", id)
	})
}

// StartAllPolling starts every court that has matches queued.
func (e *Engine) StartAllPolling() {
	var ids []int
	e.do(func() {
		for id, c := range e.courts {
			if len(c.Queue) > 0 {
				ids = append(ids, id)
			}
		}
	})
	for _, id := range ids {
		if err := e.StartPolling(id); err != nil {
			log.Printf("[engine] start polling court %d: %v", id, err)
		}
	}
}

// StopAllPolling stops every currently-scheduled court.
func (e *Engine) StopAllPolling() {
	var ids []int
	e.do(func() {
		for id := range e.pollers {
			ids = append(ids, id)
		}
	})
	for _, id := range ids {
		if err := e.StopPolling(id); err != nil {
			log.Printf("[engine] stop polling court %d: %v", id, err)
		}
	}
}

// stopPollerLocked cancels a court's poll task if one is scheduled.
// Run-loop only.
func (e *Engine) stopPollerLocked(id int) {
	if cancel, ok := e.pollers[id]; ok {
		cancel()
		delete(e.pollers, id)
	}
}

// runPoller is the repeating task for one court. The interval gets a
// deterministic per-court offset so courts stay out of lockstep against the
// upstream, plus a bounded random jitter before each fire. Polls are
// single-flight per court because each fire runs to completion before the
// next wait begins.
func (e *Engine) runPoller(ctx context.Context, id int) {
	interval := e.cfg.PollInterval + time.Duration(id)*e.cfg.CourtOffsetStep

	// First fire waits only for jitter so a freshly started court shows
	// data quickly.
	wait := e.jitter()
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
		e.pollCourt(ctx, id)
		wait = interval + e.jitter()
	}
}

func (e *Engine) jitter() time.Duration {
	if e.cfg.MaxJitter <= 0 {
		return 0
	}
	return rand.N(e.cfg.MaxJitter)
}

// pollView is the read-only slice of court state a poll fire needs. Taken
// on the run loop, used off it.
type pollView struct {
	ok          bool
	activeIndex int
	current     model.MatchItem
	next        *model.MatchItem
}

// pollCourt is one poll step: fetch, normalize, and funnel the result back
// through the run loop. Network and parsing happen here, off the loop; only
// the final apply mutates the court.
func (e *Engine) pollCourt(ctx context.Context, id int) {
	var view pollView
	e.do(func() {
		c, ok := e.courts[id]
		if !ok || !c.Status.IsPolling() {
			return
		}
		current := c.CurrentMatch()
		if current == nil {
			return
		}
		view = pollView{
			ok:          true,
			activeIndex: *c.ActiveIndex,
			current:     *current,
			next:        c.NextMatch(),
		}
	})
	if !view.ok {
		return
	}

	raw, err := e.source.Get(ctx, view.current.APIURL)
	if err != nil {
		e.applyPollError(id, view.activeIndex, err)
		return
	}

	snap := normalize.Normalize(raw, id)
	snap.SetsToWin = view.current.SetsToWin

	// Look-ahead: when the current match is over and another is queued,
	// peek at the next match to decide whether to auto-advance. Its result
	// is never stored as the court's snapshot.
	advance := false
	if snap.IsFinal() && view.next != nil {
		if nextRaw, lookErr := e.source.Get(ctx, view.next.APIURL); lookErr == nil {
			nextSnap := normalize.Normalize(nextRaw, id)
			nextSnap.SetsToWin = view.next.SetsToWin
			advance = nextSnap.HasStarted()
		} else {
			log.Printf("[engine] court %d look-ahead failed: %v", id, lookErr)
		}
	}

	e.applyPollResult(id, view.activeIndex, raw, snap, advance)
}

// applyPollError records a transient fetch failure without touching status
// or the last snapshot. The next tick retries.
func (e *Engine) applyPollError(id, activeIndex int, fetchErr error) {
	e.do(func() {
		c, ok := e.courts[id]
		if !ok || !c.Status.IsPolling() {
			return
		}
		if c.ActiveIndex == nil || *c.ActiveIndex != activeIndex {
			return
		}
		now := e.now()
		c.LastPollTime = &now
		c.ErrorMessage = fetchErr.Error()
		log.Printf("[engine] court %d poll failed: %v", id, fetchErr)
		e.persistLocked(c)
	})
}

// applyPollResult applies one completed poll on the run loop. Results for a
// court that stopped polling, or whose active match changed while the fetch
// was in flight, are discarded.
func (e *Engine) applyPollResult(id, activeIndex int, raw []byte, snap model.ScoreSnapshot, advance bool) {
	e.do(func() {
		c, ok := e.courts[id]
		if !ok || !c.Status.IsPolling() {
			return
		}
		if c.ActiveIndex == nil || *c.ActiveIndex != activeIndex {
			return
		}

		now := e.now()
		c.LastPollTime = &now
		c.ErrorMessage = ""

		newStatus := model.StatusWaiting
		switch {
		case snap.IsFinal():
			newStatus = model.StatusFinished
		case snap.HasStarted():
			newStatus = model.StatusLive
		}

		wasLive := c.Status == model.StatusLive
		isLive := newStatus == model.StatusLive
		if !wasLive && isLive {
			c.LiveSince = &now
		} else if wasLive && !isLive {
			c.LiveSince = nil
		}

		c.Status = newStatus
		snapCopy := snap
		c.LastSnapshot = &snapCopy

		e.broadcast.Set(id, raw)
		if e.publisher != nil {
			e.publisher.Publish(id, raw)
		}

		if newStatus == model.StatusFinished && advance {
			idx := activeIndex + 1
			c.ActiveIndex = &idx
			c.Status = model.StatusWaiting
			c.LiveSince = nil
			log.Printf("[engine] court %d advanced to match %d of %d", id, idx+1, len(c.Queue))
		}

		e.persistLocked(c)
	})
}
