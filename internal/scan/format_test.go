package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFormatText(t *testing.T) {
	intPtr := func(n int) *int { return &n }

	tests := []struct {
		name string
		text string
		want Format
	}{
		{
			name: "empty text",
			text: "",
			want: Format{SetsToWin: 2, PointsPerSet: 21},
		},
		{
			name: "one game to 28 no cap",
			text: "All matches are 1 game to 28 with no cap",
			want: Format{SetsToWin: 1, PointsPerSet: 28},
		},
		{
			name: "one game to 21",
			text: "Pool play: 1 game to 21",
			want: Format{SetsToWin: 1, PointsPerSet: 21},
		},
		{
			name: "best 2 out of 3",
			text: "Best 2 out of 3 sets to 21",
			want: Format{SetsToWin: 2, PointsPerSet: 21},
		},
		{
			name: "best of 3",
			text: "Best of 3, sets to 25",
			want: Format{SetsToWin: 2, PointsPerSet: 25},
		},
		{
			name: "best of 5",
			text: "best of 5 games to 25",
			want: Format{SetsToWin: 3, PointsPerSet: 25},
		},
		{
			name: "set pair wording",
			text: "Sets 1 & 2 to 21, set 3 to 15",
			want: Format{SetsToWin: 2, PointsPerSet: 21},
		},
		{
			name: "capped",
			text: "2 sets to 21 capped at 23",
			want: Format{SetsToWin: 2, PointsPerSet: 21, PointCap: intPtr(23)},
		},
		{
			name: "cap without at",
			text: "1 game to 28, cap 30",
			want: Format{SetsToWin: 1, PointsPerSet: 28, PointCap: intPtr(30)},
		},
		{
			name: "win by 2 means no cap",
			text: "Sets to 21, win by 2",
			want: Format{SetsToWin: 2, PointsPerSet: 21},
		},
		{
			name: "match play",
			text: "Match play to 25",
			want: Format{SetsToWin: 2, PointsPerSet: 25},
		},
		{
			name: "bare two-digit score",
			text: "games played to a score of 28",
			want: Format{SetsToWin: 2, PointsPerSet: 28},
		},
		{
			name: "nonsense text falls back to defaults",
			text: "see tournament desk for details",
			want: Format{SetsToWin: 2, PointsPerSet: 21},
		},
		{
			name: "generic to with out-of-range points ignored",
			text: "play to 99",
			want: Format{SetsToWin: 2, PointsPerSet: 21},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseFormatText(tt.text))
		})
	}
}
