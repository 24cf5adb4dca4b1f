package model

import "fmt"

// DefaultPointsPerSet matches the common VBL single-set pool format.
const DefaultPointsPerSet = 28

// MatchItem is one queued match on a court. Items are immutable once
// enqueued: queue edits replace them wholesale rather than patching fields.
type MatchItem struct {
	APIURL        string `json:"apiUrl"`
	Label         string `json:"label,omitempty"`
	Team1Name     string `json:"team1Name,omitempty"`
	Team2Name     string `json:"team2Name,omitempty"`
	Team1Seed     string `json:"team1Seed,omitempty"`
	Team2Seed     string `json:"team2Seed,omitempty"`
	MatchType     string `json:"matchType,omitempty"`
	TypeDetail    string `json:"typeDetail,omitempty"`
	ScheduledTime string `json:"scheduledTime,omitempty"`
	CourtNumber   string `json:"courtNumber,omitempty"`
	SetsToWin     int    `json:"setsToWin"`
	PointsPerSet  int    `json:"pointsPerSet"`
	PointCap      *int   `json:"pointCap,omitempty"`
}

// NewMatchItem builds a match item for the given score endpoint with the
// default format (best of 3, sets to 28).
func NewMatchItem(apiURL string) MatchItem {
	return MatchItem{
		APIURL:       apiURL,
		SetsToWin:    DefaultSetsToWin,
		PointsPerSet: DefaultPointsPerSet,
	}
}

// DisplayName falls back from team names to the label to a literal "Match".
// A purely numeric label renders as "Match N".
func (m MatchItem) DisplayName() string {
	if m.Team1Name != "" && m.Team2Name != "" {
		return fmt.Sprintf("%s vs %s", m.Team1Name, m.Team2Name)
	}
	if m.Team1Name != "" {
		return m.Team1Name
	}
	if m.Team2Name != "" {
		return m.Team2Name
	}
	if m.Label != "" {
		if isNumeric(m.Label) {
			return "Match " + m.Label
		}
		return m.Label
	}
	return "Match"
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
