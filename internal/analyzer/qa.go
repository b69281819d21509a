package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"campaign-caller-go/internal/logger"
	"campaign-caller-go/internal/types"
)

const (
	systemPrompt = "You are a strict QA evaluator. Respond only in valid JSON."

	defaultTemperature  = 0.2
	defaultHTTPTimeout  = 25 * time.Second
	defaultMaxRetryTime = 45 * time.Second
)

// Config captures the settings for the chat-completion endpoint.
type Config struct {
	APIKey      string
	URL         string
	Model       string
	Temperature float64
}

// Evaluator runs the rubric QA evaluation against an OpenAI-style
// chat-completion API. Stateless between calls.
type Evaluator struct {
	cfg          Config
	httpClient   *http.Client
	maxRetryTime time.Duration
}

type Option func(*Evaluator)

// WithHTTPClient overrides the default HTTP client (used in tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(e *Evaluator) {
		if hc != nil {
			e.httpClient = hc
		}
	}
}

// WithMaxRetryTime bounds the retry window (tests shrink it).
func WithMaxRetryTime(d time.Duration) Option {
	return func(e *Evaluator) {
		if d > 0 {
			e.maxRetryTime = d
		}
	}
}

func NewEvaluator(cfg Config, opts ...Option) *Evaluator {
	if cfg.Temperature == 0 {
		cfg.Temperature = defaultTemperature
	}
	e := &Evaluator{
		cfg:          cfg,
		httpClient:   &http.Client{Timeout: defaultHTTPTimeout},
		maxRetryTime: defaultMaxRetryTime,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BuildPrompt embeds the transcript and the full ordered rubric into a
// single evaluation prompt.
func BuildPrompt(transcript string, rubric []string) string {
	var b strings.Builder
	b.WriteString("You are a call QA evaluator.\n")
	b.WriteString("Based on the transcript below, evaluate the following questions.\n")
	b.WriteString("Respond as a JSON list with each item containing:\n")
	b.WriteString("- question\n- rating (1–5 or 'N/A')\n- explanation\n\n")
	b.WriteString("Rating Scale: 1 = Very Poor, 2 = Poor, 3 = Average, 4 = Good, 5 = Excellent, N/A = Not Applicable\n\n")
	b.WriteString("Transcript:\n")
	b.WriteString(transcript)
	b.WriteString("\n\nQuestions:\n")
	for _, q := range rubric {
		b.WriteString("- ")
		b.WriteString(q)
		b.WriteString("\n")
	}
	return b.String()
}

// EvaluateQA prompts the model with the transcript and rubric and
// parses its JSON reply. A response the model omits, reorders, or pads
// is passed through as returned; only unparsable output fails. Any
// failure comes back as an EvaluationFailed error with no partial
// result.
func (e *Evaluator) EvaluateQA(ctx context.Context, transcript string, rubric []string) ([]types.QAEvaluationItem, error) {
	log := logger.New().WithComponent("analyzer")

	if e.cfg.URL == "" || e.cfg.APIKey == "" {
		return nil, &Error{Kind: EvaluationFailed, cause: errors.New("llm gateway not configured")}
	}

	reqBody := map[string]any{
		"model": e.cfg.Model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": BuildPrompt(transcript, rubric)},
		},
		"temperature": e.cfg.Temperature,
	}
	data, _ := json.Marshal(reqBody)

	var items []types.QAEvaluationItem
	var lastErr error

	op := func() error {
		req, _ := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.URL, bytes.NewReader(data))
		req.Header.Set("Authorization", "Bearer "+e.cfg.APIKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := e.httpClient.Do(req)
		if err != nil {
			lastErr = err
			log.WithError(err).Warn("llm request failed")
			return err
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)

		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			lastErr = fmt.Errorf("llm client error: http %d", resp.StatusCode)
			return backoff.Permanent(lastErr)
		}
		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("llm server error: %s", string(body))
			return lastErr
		}

		content := contentFromChoices(body)
		if content == "" {
			content = string(body)
		}
		raw := extractJSONArray(content)
		if raw == "" {
			lastErr = fmt.Errorf("no JSON array in llm output")
			return backoff.Permanent(lastErr)
		}
		parsed, err := decodeItems(raw)
		if err != nil {
			lastErr = err
			return backoff.Permanent(lastErr)
		}
		items = parsed
		lastErr = nil
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = e.maxRetryTime
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		if lastErr == nil {
			lastErr = err
		}
		return nil, &Error{Kind: EvaluationFailed, cause: lastErr}
	}
	log.WithField("items", len(items)).Info("qa evaluation parsed")
	return items, nil
}

// contentFromChoices reads openai-style choices[0].message.content.
func contentFromChoices(body []byte) string {
	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil || len(parsed.Choices) == 0 {
		return ""
	}
	return parsed.Choices[0].Message.Content
}

// extractJSONArray finds the first balanced JSON array in a string,
// stripping common markdown fences first.
func extractJSONArray(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	for _, fence := range []string{"```json", "```"} {
		s = strings.ReplaceAll(s, fence, "")
	}

	start := strings.Index(s, "[")
	if start == -1 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return strings.TrimSpace(s[start : i+1])
			}
		}
	}
	return ""
}

// decodeItems validates the untyped array field-by-field into
// QAEvaluationItem, tolerating missing or extra fields.
func decodeItems(raw string) ([]types.QAEvaluationItem, error) {
	var docs []map[string]any
	if err := json.Unmarshal([]byte(raw), &docs); err != nil {
		return nil, fmt.Errorf("decode llm output: %w", err)
	}
	items := make([]types.QAEvaluationItem, 0, len(docs))
	for _, doc := range docs {
		items = append(items, types.QAEvaluationItem{
			Question:    stringField(doc["question"]),
			Rating:      ratingField(doc["rating"]),
			Explanation: stringField(doc["explanation"]),
		})
	}
	return items, nil
}

func stringField(v any) string {
	s, _ := v.(string)
	return s
}

// ratingField normalizes a rating the model may emit as a number or a
// string.
func ratingField(v any) string {
	switch r := v.(type) {
	case string:
		return r
	case float64:
		return strconv.Itoa(int(r))
	case nil:
		return ""
	default:
		return fmt.Sprint(r)
	}
}
