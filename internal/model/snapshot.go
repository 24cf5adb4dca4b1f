package model

import (
	"fmt"
	"strings"
	"time"
)

// DefaultSetsToWin is the match format assumed when the queue doesn't say
// otherwise (best of 3: first to 2 sets).
const DefaultSetsToWin = 2

// SetScore is one completed or in-progress set within a match.
type SetScore struct {
	SetNumber  int  `json:"setNumber"`
	Team1Score int  `json:"team1Score"`
	Team2Score int  `json:"team2Score"`
	IsComplete bool `json:"isComplete"`
}

// Display renders the set in overlay form, e.g. "21-18".
func (s SetScore) Display() string {
	return fmt.Sprintf("%d-%d", s.Team1Score, s.Team2Score)
}

// ScoreSnapshot is one normalized reading of a match's current state.
// Snapshots are immutable: every successful poll produces a fresh one and
// supersedes the last.
type ScoreSnapshot struct {
	CourtID       int        `json:"courtId"`
	MatchID       string     `json:"matchId,omitempty"`
	Status        string     `json:"status"`
	SetNumber     int        `json:"setNumber"`
	Team1Name     string     `json:"team1Name"`
	Team2Name     string     `json:"team2Name"`
	Team1Seed     string     `json:"team1Seed,omitempty"`
	Team2Seed     string     `json:"team2Seed,omitempty"`
	ScheduledTime string     `json:"scheduledTime,omitempty"`
	MatchNumber   string     `json:"matchNumber,omitempty"`
	CourtNumber   string     `json:"courtNumber,omitempty"`
	Team1Score    int        `json:"team1Score"`
	Team2Score    int        `json:"team2Score"`
	Serve         string     `json:"serve,omitempty"`
	SetHistory    []SetScore `json:"setHistory"`
	Timestamp     time.Time  `json:"timestamp"`
	SetsToWin     int        `json:"setsToWin"`
}

// EmptySnapshot is the value a court carries before any successful poll.
func EmptySnapshot(courtID int) ScoreSnapshot {
	return ScoreSnapshot{
		CourtID:   courtID,
		Status:    "Waiting",
		SetNumber: 1,
		Timestamp: time.Now(),
		SetsToWin: DefaultSetsToWin,
	}
}

// startedStatuses are the status substrings that mean play is underway.
var startedStatuses = []string{"in progress", "live", "playing"}

// HasStarted reports whether the match shows any sign of play: a live-ish
// status, any points on the board, an advanced set, or a nonzero set in the
// history.
func (s ScoreSnapshot) HasStarted() bool {
	status := strings.ToLower(s.Status)
	for _, marker := range startedStatuses {
		if strings.Contains(status, marker) {
			return true
		}
	}
	if status == "final" {
		return true
	}
	if s.Team1Score > 0 || s.Team2Score > 0 {
		return true
	}
	if s.SetNumber > 1 {
		return true
	}
	for _, set := range s.SetHistory {
		if set.Team1Score > 0 || set.Team2Score > 0 {
			return true
		}
	}
	return false
}

// TotalSetsWon counts completed, non-tied sets per side. Incomplete sets and
// tied complete sets count for neither.
func (s ScoreSnapshot) TotalSetsWon() (team1, team2 int) {
	for _, set := range s.SetHistory {
		if !set.IsComplete {
			continue
		}
		switch {
		case set.Team1Score > set.Team2Score:
			team1++
		case set.Team2Score > set.Team1Score:
			team2++
		}
	}
	return team1, team2
}

// IsFinal reports whether the match is over: the upstream says Final, or
// either side has reached the required set count.
func (s ScoreSnapshot) IsFinal() bool {
	if s.Status == "Final" {
		return true
	}
	setsToWin := s.SetsToWin
	if setsToWin <= 0 {
		setsToWin = DefaultSetsToWin
	}
	team1, team2 := s.TotalSetsWon()
	return team1 >= setsToWin || team2 >= setsToWin
}
