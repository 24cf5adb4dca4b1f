// Package scan parses the bracket-scanner collaborator's result files into
// queueable match items. The scanner itself is an external subprocess; this
// package only consumes its JSON output.
package scan

import (
	"encoding/json"
	"fmt"

	"github.com/nhicks00/courtcast/internal/model"
)

// Match is one scanned match as the scanner emits it.
type Match struct {
	Index        int    `json:"index"`
	MatchNumber  string `json:"match_number"`
	Team1        string `json:"team1"`
	Team2        string `json:"team2"`
	Team1Seed    string `json:"team1_seed"`
	Team2Seed    string `json:"team2_seed"`
	Court        string `json:"court"`
	StartTime    string `json:"startTime"`
	APIURL       string `json:"api_url"`
	MatchType    string `json:"match_type"`
	TypeDetail   string `json:"type_detail"`
	SetsToWin    int    `json:"sets_to_win"`
	PointsPerSet int    `json:"points_per_set"`
	PointCap     *int   `json:"point_cap"`
	FormatText   string `json:"format_text"`
}

// Result is the scanner's output for one tournament URL.
type Result struct {
	URL          string  `json:"url"`
	Timestamp    string  `json:"timestamp"`
	TotalMatches int     `json:"total_matches"`
	Matches      []Match `json:"matches"`
	Status       string  `json:"status"`
	Error        string  `json:"error"`
	MatchType    string  `json:"match_type"`
	TypeDetail   string  `json:"type_detail"`
}

// ParseResult decodes a scanner result file.
func ParseResult(data []byte) (*Result, error) {
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode scan result: %w", err)
	}
	if result.Status == "error" && result.Error != "" {
		return nil, fmt.Errorf("scan failed: %s", result.Error)
	}
	return &result, nil
}

// MatchItems converts scanned matches into queue entries. Matches without a
// score endpoint are skipped: they can't be polled. Match format comes from
// the scanner's explicit fields when present, otherwise from the division's
// format text, otherwise defaults.
func (r *Result) MatchItems() []model.MatchItem {
	items := make([]model.MatchItem, 0, len(r.Matches))
	for _, m := range r.Matches {
		if m.APIURL == "" {
			continue
		}

		item := model.NewMatchItem(m.APIURL)
		item.Label = m.MatchNumber
		item.Team1Name = m.Team1
		item.Team2Name = m.Team2
		item.Team1Seed = m.Team1Seed
		item.Team2Seed = m.Team2Seed
		item.ScheduledTime = m.StartTime
		item.CourtNumber = m.Court
		item.MatchType = firstNonEmpty(m.MatchType, r.MatchType)
		item.TypeDetail = firstNonEmpty(m.TypeDetail, r.TypeDetail)

		switch {
		case m.SetsToWin > 0:
			item.SetsToWin = m.SetsToWin
			if m.PointsPerSet > 0 {
				item.PointsPerSet = m.PointsPerSet
			}
			item.PointCap = m.PointCap
		case m.FormatText != "":
			format := ParseFormatText(m.FormatText)
			item.SetsToWin = format.SetsToWin
			item.PointsPerSet = format.PointsPerSet
			item.PointCap = format.PointCap
		}

		items = append(items, item)
	}
	return items
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
