package model

import (
	"fmt"
	"time"
)

// MaxCourts is the number of overlay slots the engine manages.
const MaxCourts = 10

// CourtStatus is the lifecycle state of a court's active match.
type CourtStatus string

const (
	StatusIdle     CourtStatus = "idle"
	StatusWaiting  CourtStatus = "waiting"
	StatusLive     CourtStatus = "live"
	StatusFinished CourtStatus = "finished"
	StatusError    CourtStatus = "error"
)

// IsPolling reports whether a court in this status should be polled.
// Idle and error courts are left alone.
func (s CourtStatus) IsPolling() bool {
	switch s {
	case StatusWaiting, StatusLive, StatusFinished:
		return true
	}
	return false
}

// Court is one independently-scheduled overlay slot: a queue of matches, the
// position within it, and the latest known score state. All mutation happens
// on the engine's run loop; values handed to other goroutines are copies.
type Court struct {
	ID           int            `json:"id"`
	Name         string         `json:"name"`
	Queue        []MatchItem    `json:"queue"`
	ActiveIndex  *int           `json:"activeIndex,omitempty"`
	Status       CourtStatus    `json:"status"`
	LastSnapshot *ScoreSnapshot `json:"lastSnapshot,omitempty"`
	LiveSince    *time.Time     `json:"liveSince,omitempty"`
	LastPollTime *time.Time     `json:"lastPollTime,omitempty"`
	ErrorMessage string         `json:"errorMessage,omitempty"`
}

// NewCourt creates an idle court with a default name.
func NewCourt(id int) *Court {
	return &Court{
		ID:     id,
		Name:   fmt.Sprintf("Court %d", id),
		Status: StatusIdle,
	}
}

// CurrentMatch returns the active match, or nil when none is selected.
func (c *Court) CurrentMatch() *MatchItem {
	if c.ActiveIndex == nil {
		return nil
	}
	idx := *c.ActiveIndex
	if idx < 0 || idx >= len(c.Queue) {
		return nil
	}
	m := c.Queue[idx]
	return &m
}

// NextMatch returns the match after the active one, or nil.
func (c *Court) NextMatch() *MatchItem {
	if c.ActiveIndex == nil {
		return nil
	}
	idx := *c.ActiveIndex + 1
	if idx < 0 || idx >= len(c.Queue) {
		return nil
	}
	m := c.Queue[idx]
	return &m
}

// RemainingMatchCount is the number of queued matches not yet completed,
// counting the active one.
func (c *Court) RemainingMatchCount() int {
	if c.ActiveIndex == nil {
		return len(c.Queue)
	}
	remaining := len(c.Queue) - *c.ActiveIndex
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Clone returns a deep copy safe to hand outside the engine loop.
func (c *Court) Clone() *Court {
	out := *c
	out.Queue = make([]MatchItem, len(c.Queue))
	copy(out.Queue, c.Queue)
	if c.ActiveIndex != nil {
		idx := *c.ActiveIndex
		out.ActiveIndex = &idx
	}
	if c.LastSnapshot != nil {
		snap := *c.LastSnapshot
		snap.SetHistory = make([]SetScore, len(c.LastSnapshot.SetHistory))
		copy(snap.SetHistory, c.LastSnapshot.SetHistory)
		out.LastSnapshot = &snap
	}
	if c.LiveSince != nil {
		t := *c.LiveSince
		out.LiveSince = &t
	}
	if c.LastPollTime != nil {
		t := *c.LastPollTime
		out.LastPollTime = &t
	}
	return &out
}
