package analyzer

import (
	"strconv"

	"campaign-caller-go/internal/types"
)

// RatingsSummary is the numeric rollup of a QA evaluation.
type RatingsSummary struct {
	Answered      int     `json:"answered"`
	NotApplicable int     `json:"not_applicable"`
	Average       float64 `json:"average"`
}

// SummarizeRatings averages the digit-valued ratings; anything else
// counts as not applicable.
func SummarizeRatings(items []types.QAEvaluationItem) RatingsSummary {
	var sum, answered, na int
	for _, item := range items {
		score, err := strconv.Atoi(item.Rating)
		if err != nil {
			na++
			continue
		}
		answered++
		sum += score
	}
	s := RatingsSummary{Answered: answered, NotApplicable: na}
	if answered > 0 {
		s.Average = float64(sum) / float64(answered)
	}
	return s
}
