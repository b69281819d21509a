package analyzer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campaign-caller-go/internal/types"
)

func completionServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req["model"])
		assert.InDelta(t, 0.2, req["temperature"], 1e-9)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{
				map[string]any{"message": map[string]any{"content": content}},
			},
		})
	}))
}

func newTestEvaluator(server *httptest.Server) *Evaluator {
	return NewEvaluator(
		Config{APIKey: "test-key", URL: server.URL, Model: "test-model"},
		WithHTTPClient(server.Client()),
		WithMaxRetryTime(200*time.Millisecond),
	)
}

func TestEvaluateQAParsesItems(t *testing.T) {
	content := `[
		{"question": "Did the agent identify the reason for the call?", "rating": "5", "explanation": "Stated the recall campaign upfront."},
		{"question": "Did the agent verify the phone/email address?", "rating": "N/A", "explanation": "Customer hung up early."}
	]`
	server := completionServer(t, content)
	defer server.Close()

	items, err := newTestEvaluator(server).EvaluateQA(context.Background(), "transcript", DefaultRubric())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "5", items[0].Rating)
	assert.Equal(t, "N/A", items[1].Rating)
	assert.Equal(t, "Did the agent identify the reason for the call?", items[0].Question)
}

func TestEvaluateQACodeFencedOutput(t *testing.T) {
	content := "```json\n[{\"question\": \"Q\", \"rating\": \"4\", \"explanation\": \"ok\"}]\n```"
	server := completionServer(t, content)
	defer server.Close()

	items, err := newTestEvaluator(server).EvaluateQA(context.Background(), "transcript", DefaultRubric())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "4", items[0].Rating)
}

func TestEvaluateQANumericRatingTolerated(t *testing.T) {
	content := `[{"question": "Q", "rating": 3, "explanation": "average"}]`
	server := completionServer(t, content)
	defer server.Close()

	items, err := newTestEvaluator(server).EvaluateQA(context.Background(), "transcript", DefaultRubric())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "3", items[0].Rating)
}

func TestEvaluateQAMissingFieldsTolerated(t *testing.T) {
	content := `[{"question": "Q", "verdict": "extra field"}]`
	server := completionServer(t, content)
	defer server.Close()

	items, err := newTestEvaluator(server).EvaluateQA(context.Background(), "transcript", DefaultRubric())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Q", items[0].Question)
	assert.Empty(t, items[0].Rating)
	assert.Empty(t, items[0].Explanation)
}

func TestEvaluateQANonJSONOutput(t *testing.T) {
	server := completionServer(t, "I cannot evaluate this transcript.")
	defer server.Close()

	items, err := newTestEvaluator(server).EvaluateQA(context.Background(), "transcript", DefaultRubric())
	assert.Nil(t, items, "no partial result on parse failure")
	var aErr *Error
	require.ErrorAs(t, err, &aErr)
	assert.Equal(t, EvaluationFailed, aErr.Kind)
}

func TestEvaluateQAClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := newTestEvaluator(server).EvaluateQA(context.Background(), "transcript", DefaultRubric())
	var aErr *Error
	require.ErrorAs(t, err, &aErr)
	assert.Equal(t, int32(1), calls.Load(), "4xx must not be retried")
}

func TestEvaluateQARetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{
				"content": `[{"question": "Q", "rating": "5", "explanation": "ok"}]`,
			}}},
		})
	}))
	defer server.Close()

	items, err := NewEvaluator(
		Config{APIKey: "test-key", URL: server.URL, Model: "test-model"},
		WithMaxRetryTime(5*time.Second),
	).EvaluateQA(context.Background(), "transcript", DefaultRubric())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.GreaterOrEqual(t, calls.Load(), int32(2))
}

func TestBuildPromptEmbedsRubricInOrder(t *testing.T) {
	rubric := DefaultRubric()
	prompt := BuildPrompt("TRANSCRIPT BODY", rubric)

	assert.Contains(t, prompt, "TRANSCRIPT BODY")
	assert.Contains(t, prompt, "Rating Scale: 1 = Very Poor")

	last := -1
	for _, q := range rubric {
		idx := strings.Index(prompt, q)
		require.GreaterOrEqual(t, idx, 0, q)
		assert.Greater(t, idx, last, "rubric order must be preserved")
		last = idx
	}
}

func TestSummarizeRatings(t *testing.T) {
	items := []types.QAEvaluationItem{
		{Rating: "5"},
		{Rating: "3"},
		{Rating: "N/A"},
		{Rating: ""},
	}
	s := SummarizeRatings(items)
	assert.Equal(t, 2, s.Answered)
	assert.Equal(t, 2, s.NotApplicable)
	assert.InDelta(t, 4.0, s.Average, 1e-9)

	empty := SummarizeRatings(nil)
	assert.Zero(t, empty.Answered)
	assert.Zero(t, empty.Average)
}
