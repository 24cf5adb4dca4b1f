package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCourtQueueNavigation(t *testing.T) {
	court := NewCourt(1)
	assert.Nil(t, court.CurrentMatch())
	assert.Nil(t, court.NextMatch())
	assert.Equal(t, 0, court.RemainingMatchCount())

	court.Queue = []MatchItem{
		NewMatchItem("https://scores.test/m/1"),
		NewMatchItem("https://scores.test/m/2"),
		NewMatchItem("https://scores.test/m/3"),
	}
	assert.Equal(t, 3, court.RemainingMatchCount())

	idx := 1
	court.ActiveIndex = &idx

	current := court.CurrentMatch()
	require.NotNil(t, current)
	assert.Equal(t, "https://scores.test/m/2", current.APIURL)

	next := court.NextMatch()
	require.NotNil(t, next)
	assert.Equal(t, "https://scores.test/m/3", next.APIURL)

	assert.Equal(t, 2, court.RemainingMatchCount())

	idx = 2
	court.ActiveIndex = &idx
	assert.Nil(t, court.NextMatch())

	idx = 5
	court.ActiveIndex = &idx
	assert.Nil(t, court.CurrentMatch())
}

func TestCourtStatusIsPolling(t *testing.T) {
	assert.False(t, StatusIdle.IsPolling())
	assert.False(t, StatusError.IsPolling())
	assert.True(t, StatusWaiting.IsPolling())
	assert.True(t, StatusLive.IsPolling())
	assert.True(t, StatusFinished.IsPolling())
}

func TestCourtCloneIsDeep(t *testing.T) {
	idx := 0
	now := time.Now()
	snap := EmptySnapshot(1)
	snap.SetHistory = []SetScore{{SetNumber: 1, Team1Score: 21, Team2Score: 18, IsComplete: true}}

	court := NewCourt(1)
	court.Queue = []MatchItem{NewMatchItem("https://scores.test/m/1")}
	court.ActiveIndex = &idx
	court.Status = StatusLive
	court.LastSnapshot = &snap
	court.LiveSince = &now

	clone := court.Clone()
	clone.Queue[0].APIURL = "changed"
	*clone.ActiveIndex = 9
	clone.LastSnapshot.SetHistory[0].Team1Score = 0
	*clone.LiveSince = now.Add(time.Hour)

	assert.Equal(t, "https://scores.test/m/1", court.Queue[0].APIURL)
	assert.Equal(t, 0, *court.ActiveIndex)
	assert.Equal(t, 21, court.LastSnapshot.SetHistory[0].Team1Score)
	assert.True(t, court.LiveSince.Equal(now))
}

func TestMatchItemDisplayName(t *testing.T) {
	m := NewMatchItem("https://scores.test/m/1")
	assert.Equal(t, "Match", m.DisplayName())

	m.Label = "12"
	assert.Equal(t, "Match 12", m.DisplayName())

	m.Label = "Semifinal"
	assert.Equal(t, "Semifinal", m.DisplayName())

	m.Team1Name = "Mota / Strause"
	assert.Equal(t, "Mota / Strause", m.DisplayName())

	m.Team2Name = "Lee / Chen"
	assert.Equal(t, "Mota / Strause vs Lee / Chen", m.DisplayName())
}

func TestNewMatchItemDefaults(t *testing.T) {
	m := NewMatchItem("https://scores.test/m/1")
	assert.Equal(t, DefaultSetsToWin, m.SetsToWin)
	assert.Equal(t, DefaultPointsPerSet, m.PointsPerSet)
	assert.Nil(t, m.PointCap)
}
