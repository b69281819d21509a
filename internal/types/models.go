package types

// CallLogEntry is one row of the append-only call audit log. Created
// exactly once when a call is successfully initiated, immutable after
// that.
type CallLogEntry struct {
	Time   string `json:"time"`
	CallID string `json:"call_id"`
	Number string `json:"number"`
}

// CallDetails is the request-scoped view of a call returned by the
// voice gateway. The gateway stays the source of truth; nothing here is
// persisted.
type CallDetails struct {
	Transcript string        `json:"transcript,omitempty"`
	Analysis   *CallAnalysis `json:"analysis,omitempty"`
}

type CallAnalysis struct {
	StructuredData map[string]any `json:"structuredData,omitempty"`
}

// QAEvaluationItem is one rubric question scored by the model. Rating
// is "1".."5" or the sentinel "N/A".
type QAEvaluationItem struct {
	Question    string `json:"question"`
	Rating      string `json:"rating"`
	Explanation string `json:"explanation"`
}

// SentimentResult holds transcript sentiment: polarity in [-1,1],
// subjectivity in [0,1]. Computed fresh per transcript, never stored.
type SentimentResult struct {
	Polarity     float64 `json:"polarity"`
	Subjectivity float64 `json:"subjectivity"`
}
