package title

import (
	"regexp"

	"github.com/hbollon/go-edlib"
)

var numberRegex = regexp.MustCompile(`\b(\d+)\b`)

// Confidence is the strength of a title match.
type Confidence int

const (
	ConfidenceNone   Confidence = iota // Score < 0.70
	ConfidenceLow                      // Score >= 0.70
	ConfidenceMedium                   // Score >= 0.85
	ConfidenceHigh                     // Score >= 0.95
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "high"
	case ConfidenceMedium:
		return "medium"
	case ConfidenceLow:
		return "low"
	default:
		return "none"
	}
}

// Match is the result of comparing a file title with a catalog title.
type Match struct {
	Score      float64
	Confidence Confidence
}

// Compare scores how well a disc image file name matches a catalog name.
// Checksum lookups can return a game whose name differs from the file, so the
// score is informational rather than a gate.
func Compare(fileName, catalogName string) Match {
	a := Clean(FromFileName(fileName))
	b := Clean(catalogName)
	if a == "" || b == "" {
		return Match{Confidence: ConfidenceNone}
	}

	score := float64(edlib.JaroWinklerSimilarity(a, b))
	score = adjustScoreForNumbers(score, numberRegex.FindAllString(a, -1), numberRegex.FindAllString(b, -1))

	m := Match{Score: score}
	switch {
	case score >= 0.95:
		m.Confidence = ConfidenceHigh
	case score >= 0.85:
		m.Confidence = ConfidenceMedium
	case score >= 0.70:
		m.Confidence = ConfidenceLow
	default:
		m.Confidence = ConfidenceNone
	}
	return m
}

// adjustScoreForNumbers rewards matching sequel numbers and penalizes
// mismatched or missing ones.
func adjustScoreForNumbers(score float64, fileNums, catalogNums []string) float64 {
	if len(fileNums) == 0 {
		return score
	}
	if len(catalogNums) == 0 {
		return score * 0.85
	}

	catalogSet := make(map[string]bool, len(catalogNums))
	for _, n := range catalogNums {
		catalogSet[n] = true
	}
	for _, n := range fileNums {
		if catalogSet[n] {
			return min(score*1.05, 1.0)
		}
	}
	return score * 0.90
}
