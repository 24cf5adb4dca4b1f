package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhicks00/courtcast/internal/model"
)

func TestNormalizeTeamListFinal(t *testing.T) {
	payload := []byte(`[
		{"teamName":"A","score":21,"setNumber":2,"won":true,"game1Score":21,"game2Score":0},
		{"teamName":"B","score":18,"setNumber":2,"won":false,"game1Score":18,"game2Score":0}
	]`)

	snap := Normalize(payload, 3)
	assert.Equal(t, 3, snap.CourtID)
	assert.Equal(t, "Final", snap.Status)
	assert.Equal(t, "A", snap.Team1Name)
	assert.Equal(t, "B", snap.Team2Name)
	assert.Equal(t, 21, snap.Team1Score)
	assert.Equal(t, 18, snap.Team2Score)

	require.Len(t, snap.SetHistory, 1)
	set := snap.SetHistory[0]
	assert.Equal(t, 1, set.SetNumber)
	assert.True(t, set.IsComplete)
	assert.Equal(t, "21-18", set.Display())
}

func TestNormalizeTeamListInProgress(t *testing.T) {
	payload := []byte(`[
		{"teamName":"A","score":12,"setNumber":1,"won":false,"game1Score":0,"game2Score":0},
		{"teamName":"B","score":9,"setNumber":1,"won":false,"game1Score":0,"game2Score":0}
	]`)

	snap := Normalize(payload, 1)
	assert.Equal(t, "In Progress", snap.Status)
	assert.Equal(t, 12, snap.Team1Score)
	assert.Equal(t, 9, snap.Team2Score)
	assert.Empty(t, snap.SetHistory)
	assert.True(t, snap.HasStarted())
	assert.False(t, snap.IsFinal())
}

func TestNormalizeTeamListSecondSet(t *testing.T) {
	payload := []byte(`[
		{"teamName":"A","score":5,"setNumber":2,"won":false,"game1Score":21,"game2Score":0},
		{"teamName":"B","score":7,"setNumber":2,"won":false,"game1Score":17,"game2Score":0}
	]`)

	snap := Normalize(payload, 1)
	assert.Equal(t, "In Progress", snap.Status)
	assert.Equal(t, 2, snap.SetNumber)

	require.Len(t, snap.SetHistory, 1)
	assert.True(t, snap.SetHistory[0].IsComplete)
	assert.Equal(t, "21-17", snap.SetHistory[0].Display())
}

func TestNormalizeTeamListPreMatch(t *testing.T) {
	payload := []byte(`[
		{"teamName":"A","score":0,"setNumber":1,"won":false,"game1Score":0,"game2Score":0},
		{"teamName":"B","score":0,"setNumber":1,"won":false,"game1Score":0,"game2Score":0}
	]`)

	snap := Normalize(payload, 1)
	assert.Equal(t, "Pre-Match", snap.Status)
	assert.False(t, snap.HasStarted())
}

func TestNormalizeObjectShape(t *testing.T) {
	payload := []byte(`{
		"score":{"home":15,"away":12},
		"homeTeam":"Mota / Strause",
		"awayTeam":"Lee / Chen",
		"status":"In Progress",
		"setNumber":2,
		"matchId":48213,
		"serve":"home"
	}`)

	snap := Normalize(payload, 2)
	assert.Equal(t, 2, snap.CourtID)
	assert.Equal(t, "48213", snap.MatchID)
	assert.Equal(t, "In Progress", snap.Status)
	assert.Equal(t, 2, snap.SetNumber)
	assert.Equal(t, "Mota / Strause", snap.Team1Name)
	assert.Equal(t, "Lee / Chen", snap.Team2Name)
	assert.Equal(t, 15, snap.Team1Score)
	assert.Equal(t, 12, snap.Team2Score)
	assert.Equal(t, "home", snap.Serve)
	// The object shape carries no per-set history.
	assert.Empty(t, snap.SetHistory)
}

func TestNormalizeObjectShapeAltTeamFields(t *testing.T) {
	payload := []byte(`{"team1Name":"A","team2Name":"B","status":"Final","matchId":"m-9"}`)

	snap := Normalize(payload, 1)
	assert.Equal(t, "A", snap.Team1Name)
	assert.Equal(t, "B", snap.Team2Name)
	assert.Equal(t, "m-9", snap.MatchID)
	assert.True(t, snap.IsFinal())
}

func TestNormalizeUnrecognizedShapes(t *testing.T) {
	cases := map[string][]byte{
		"garbage":        []byte(`not json at all`),
		"empty":          nil,
		"wrong object":   []byte(`{"message":"rate limited"}`),
		"singleton list": []byte(`[{"teamName":"A"}]`),
		"long list":      []byte(`[{},{},{}]`),
		"number":         []byte(`42`),
	}

	for name, payload := range cases {
		snap := Normalize(payload, 7)
		want := model.EmptySnapshot(7)
		assert.Equal(t, want.Status, snap.Status, name)
		assert.Equal(t, 7, snap.CourtID, name)
		assert.False(t, snap.HasStarted(), name)
	}
}
