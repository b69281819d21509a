package analyzer

import (
	"github.com/jonreiter/govader"

	"campaign-caller-go/internal/types"
)

// AnalyzeSentiment scores a transcript locally with VADER. Pure: no
// network, identical input gives identical output. Polarity is the
// compound score in [-1,1]; subjectivity is the non-neutral proportion
// of the text in [0,1].
func AnalyzeSentiment(transcript string) types.SentimentResult {
	sia := govader.NewSentimentIntensityAnalyzer()
	scores := sia.PolarityScores(transcript)
	return types.SentimentResult{
		Polarity:     scores.Compound,
		Subjectivity: scores.Positive + scores.Negative,
	}
}
