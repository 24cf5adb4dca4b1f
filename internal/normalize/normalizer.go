// Package normalize reconciles the two known upstream score payload shapes
// into the canonical ScoreSnapshot. It never fails: anything unrecognized
// becomes the empty snapshot, which the engine treats as "no data yet".
package normalize

import (
	"encoding/json"
	"time"

	"github.com/nhicks00/courtcast/internal/model"
)

// teamRecord is one entry of the list-of-two-teams shape served by the vmix
// endpoint: one record per side with per-set game scores.
type teamRecord struct {
	TeamName   string `json:"teamName"`
	Score      int    `json:"score"`
	SetNumber  int    `json:"setNumber"`
	Won        bool   `json:"won"`
	Game1Score int    `json:"game1Score"`
	Game2Score int    `json:"game2Score"`
}

// objectRecord is the single-object shape some endpoints serve instead. It
// carries no per-set history.
type objectRecord struct {
	Score *struct {
		Home int `json:"home"`
		Away int `json:"away"`
	} `json:"score"`
	HomeTeam  string          `json:"homeTeam"`
	AwayTeam  string          `json:"awayTeam"`
	Team1Name string          `json:"team1Name"`
	Team2Name string          `json:"team2Name"`
	Status    string          `json:"status"`
	SetNumber int             `json:"setNumber"`
	MatchID   json.RawMessage `json:"matchId"`
	Serve     string          `json:"serve"`
}

// Normalize converts a raw upstream payload into a snapshot for the court.
// It tries the list shape first, then the object shape, and falls back to
// the empty snapshot on any parse failure.
func Normalize(raw []byte, courtID int) model.ScoreSnapshot {
	var teams []teamRecord
	if err := json.Unmarshal(raw, &teams); err == nil && len(teams) == 2 {
		return fromTeamList(teams, courtID)
	}

	var obj objectRecord
	if err := json.Unmarshal(raw, &obj); err == nil && recognizableObject(obj) {
		return fromObject(obj, courtID)
	}

	return model.EmptySnapshot(courtID)
}

func fromTeamList(teams []teamRecord, courtID int) model.ScoreSnapshot {
	team1, team2 := teams[0], teams[1]

	setNumber := team1.SetNumber
	if team2.SetNumber > setNumber {
		setNumber = team2.SetNumber
	}
	if setNumber < 1 {
		setNumber = 1
	}

	// The vmix payload exposes at most the first two finished sets as
	// game1Score/game2Score. A set is complete once the upstream set number
	// has moved past it.
	var history []model.SetScore
	games := [][2]int{
		{team1.Game1Score, team2.Game1Score},
		{team1.Game2Score, team2.Game2Score},
	}
	for i, game := range games {
		if game[0] == 0 && game[1] == 0 {
			continue
		}
		history = append(history, model.SetScore{
			SetNumber:  i + 1,
			Team1Score: game[0],
			Team2Score: game[1],
			IsComplete: setNumber > i+1,
		})
	}

	status := "Pre-Match"
	switch {
	case team1.Won || team2.Won:
		status = "Final"
	case team1.Score > 0 || team2.Score > 0 || setNumber > 1:
		status = "In Progress"
	}

	return model.ScoreSnapshot{
		CourtID:    courtID,
		Status:     status,
		SetNumber:  setNumber,
		Team1Name:  team1.TeamName,
		Team2Name:  team2.TeamName,
		Team1Score: team1.Score,
		Team2Score: team2.Score,
		SetHistory: history,
		Timestamp:  time.Now(),
		SetsToWin:  model.DefaultSetsToWin,
	}
}

func fromObject(obj objectRecord, courtID int) model.ScoreSnapshot {
	team1 := obj.Team1Name
	if team1 == "" {
		team1 = obj.HomeTeam
	}
	team2 := obj.Team2Name
	if team2 == "" {
		team2 = obj.AwayTeam
	}

	status := obj.Status
	if status == "" {
		status = "Waiting"
	}
	setNumber := obj.SetNumber
	if setNumber < 1 {
		setNumber = 1
	}

	snap := model.ScoreSnapshot{
		CourtID:   courtID,
		MatchID:   rawToString(obj.MatchID),
		Status:    status,
		SetNumber: setNumber,
		Team1Name: team1,
		Team2Name: team2,
		Serve:     obj.Serve,
		Timestamp: time.Now(),
		SetsToWin: model.DefaultSetsToWin,
	}
	if obj.Score != nil {
		snap.Team1Score = obj.Score.Home
		snap.Team2Score = obj.Score.Away
	}
	return snap
}

// recognizableObject guards against arbitrary JSON objects (error pages,
// wrappers) masquerading as score payloads.
func recognizableObject(obj objectRecord) bool {
	return obj.Score != nil ||
		obj.HomeTeam != "" || obj.AwayTeam != "" ||
		obj.Team1Name != "" || obj.Team2Name != "" ||
		obj.Status != ""
}

// rawToString accepts matchId as either a JSON string or number.
func rawToString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
