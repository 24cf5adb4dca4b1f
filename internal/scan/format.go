package scan

import (
	"regexp"
	"strconv"
	"strings"
)

// Format is a match format parsed out of a division's free-text rules line,
// e.g. "All matches are 1 game to 28 with no cap".
type Format struct {
	SetsToWin    int
	PointsPerSet int
	PointCap     *int // nil means no cap (win by 2)
}

var (
	reOneGame    = regexp.MustCompile(`\b1\s*game\b`)
	reMatchPlay  = regexp.MustCompile(`match\s*play`)
	reBestXOutY  = regexp.MustCompile(`best\s+(\d+)\s+out\s+of\s+(\d+)`)
	reBestOf     = regexp.MustCompile(`best\s+of\s+(\d+)`)
	reNumSets    = regexp.MustCompile(`(\d+)\s+set`)
	reGameTo     = regexp.MustCompile(`games?\s+to\s+(\d+)`)
	reSetPairTo  = regexp.MustCompile(`sets?\s+\d+\s*(?:&|and)\s*\d+\s+to\s+(\d+)`)
	reSetTo      = regexp.MustCompile(`set\s*\d*\s+to\s+(\d+)`)
	reGenericTo  = regexp.MustCompile(`\bto\s+(\d+)\b`)
	reTwoDigits  = regexp.MustCompile(`\b(\d{2})\b`)
	reNoCap      = regexp.MustCompile(`\bno\s*cap\b`)
	reCapAt      = regexp.MustCompile(`cap(?:ped)?\s+(?:at\s+)?(\d+)`)
	reWinByTwo   = regexp.MustCompile(`win\s+by\s+2`)
)

// ParseFormatText derives structured format values from the rules text.
// Unparseable text yields the defaults: best of 3, sets to 21, no cap.
func ParseFormatText(text string) Format {
	if text == "" {
		return Format{SetsToWin: 2, PointsPerSet: 21}
	}
	lower := strings.ToLower(strings.TrimSpace(text))
	return Format{
		SetsToWin:    parseSetsToWin(lower),
		PointsPerSet: parsePointsPerSet(lower),
		PointCap:     parsePointCap(lower),
	}
}

func parseSetsToWin(text string) int {
	if reOneGame.MatchString(text) {
		return 1
	}
	if reMatchPlay.MatchString(text) {
		return 2
	}
	if m := reBestXOutY.FindStringSubmatch(text); m != nil {
		return atoi(m[1])
	}
	if m := reBestOf.FindStringSubmatch(text); m != nil {
		// Best of 3 = 2 to win, best of 5 = 3 to win.
		return atoi(m[1])/2 + 1
	}
	if m := reNumSets.FindStringSubmatch(text); m != nil {
		if n := atoi(m[1]); n <= 3 {
			if n <= 2 {
				return n
			}
			return 2
		}
	}
	return 2
}

func parsePointsPerSet(text string) int {
	if m := reGameTo.FindStringSubmatch(text); m != nil {
		return atoi(m[1])
	}
	if m := reSetPairTo.FindStringSubmatch(text); m != nil {
		return atoi(m[1])
	}
	if m := reSetTo.FindStringSubmatch(text); m != nil {
		return atoi(m[1])
	}
	if m := reGenericTo.FindStringSubmatch(text); m != nil {
		// Sanity range: volleyball sets run to 15, 21, 25, or 28.
		if p := atoi(m[1]); p >= 10 && p <= 35 {
			return p
		}
	}
	for _, m := range reTwoDigits.FindAllStringSubmatch(text, -1) {
		switch atoi(m[1]) {
		case 15, 21, 25, 28:
			return atoi(m[1])
		}
	}
	return 21
}

func parsePointCap(text string) *int {
	if reNoCap.MatchString(text) {
		return nil
	}
	if m := reCapAt.FindStringSubmatch(text); m != nil {
		c := atoi(m[1])
		return &c
	}
	if reWinByTwo.MatchString(text) {
		return nil
	}
	return nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
