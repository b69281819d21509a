package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"campaign-caller-go/internal/analyzer"
	"campaign-caller-go/internal/calllog"
	"campaign-caller-go/internal/config"
	"campaign-caller-go/internal/gateway"
	"campaign-caller-go/internal/logger"
	"campaign-caller-go/internal/report"
	"campaign-caller-go/internal/session"
	"campaign-caller-go/internal/types"
)

// Router wires the dashboard actions to HTTP handlers. Each request is
// one linear sequence of blocking calls; gateway and analyzer failures
// surface as user-visible errors without ending the session.
type Router struct {
	cfg       config.Config
	store     calllog.Store
	gw        *gateway.Client
	evaluator *analyzer.Evaluator
	sessions  *session.Manager
	rubric    []string
	now       func() time.Time
}

func NewRouter(cfg config.Config, store calllog.Store, gw *gateway.Client, ev *analyzer.Evaluator, sessions *session.Manager) *Router {
	return &Router{
		cfg:       cfg,
		store:     store,
		gw:        gw,
		evaluator: ev,
		sessions:  sessions,
		rubric:    analyzer.DefaultRubric(),
		now:       time.Now,
	}
}

func (rt *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", rt.health)
	mux.HandleFunc("POST /api/login", rt.login)
	mux.HandleFunc("POST /api/logout", rt.requireSession(rt.logout))
	mux.HandleFunc("POST /api/calls", rt.requireSession(rt.startCall))
	mux.HandleFunc("GET /api/calls", rt.requireSession(rt.listCalls))
	mux.HandleFunc("GET /api/calls/{id}/analysis", rt.requireSession(rt.analysis))
	mux.HandleFunc("GET /api/calls/{id}/export", rt.requireSession(rt.export))
}

func (rt *Router) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) login(w http.ResponseWriter, r *http.Request) {
	reqLog := logger.New().WithRequest(r).WithField("handler", "login")

	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s, err := rt.sessions.Login(body.Email)
	if err != nil {
		reqLog.WithField("email", body.Email).Warn("login rejected")
		respondError(w, http.StatusForbidden, "please use a valid "+rt.cfg.AllowedEmailDomain+" address")
		return
	}
	reqLog.WithField("email", s.Email).Info("login accepted")
	respondJSON(w, http.StatusOK, s)
}

func (rt *Router) logout(w http.ResponseWriter, r *http.Request) {
	rt.sessions.Logout(bearerToken(r))
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (rt *Router) startCall(w http.ResponseWriter, r *http.Request) {
	reqLog := logger.New().WithRequest(r).WithField("handler", "start_call")

	var body struct {
		Number string `json:"number"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(body.Number) == "" {
		respondError(w, http.StatusBadRequest, "missing customer number")
		return
	}

	resp, err := rt.gw.StartCall(r.Context(), body.Number, rt.cfg.AssistantID, rt.cfg.PhoneNumberID)
	if err != nil {
		reqLog.WithError(err).Warn("start call failed")
		respondError(w, http.StatusBadGateway, "unable to start call")
		return
	}

	entry := types.CallLogEntry{
		Time:   rt.now().UTC().Format(time.RFC3339),
		CallID: resp.ID,
		Number: body.Number,
	}
	// Store failures degrade to a missing audit row; the call itself
	// already happened.
	if err := rt.store.Append(r.Context(), entry); err != nil {
		reqLog.WithError(err).Error("call log append failed")
	}
	reqLog.WithField("call_id", resp.ID).Info("call initiated")
	respondJSON(w, http.StatusCreated, map[string]any{"call": resp.Raw, "logged": entry})
}

func (rt *Router) listCalls(w http.ResponseWriter, r *http.Request) {
	entries := rt.store.LoadAll(r.Context())
	if entries == nil {
		entries = []types.CallLogEntry{}
	}
	respondJSON(w, http.StatusOK, entries)
}

type analysisResponse struct {
	CallID         string                   `json:"call_id"`
	Transcript     string                   `json:"transcript,omitempty"`
	StructuredData map[string]any           `json:"structured_data,omitempty"`
	Sentiment      *types.SentimentResult   `json:"sentiment,omitempty"`
	QA             []types.QAEvaluationItem `json:"qa,omitempty"`
	QASummary      *analyzer.RatingsSummary `json:"qa_summary,omitempty"`
	QAError        string                   `json:"qa_error,omitempty"`
}

func (rt *Router) analysis(w http.ResponseWriter, r *http.Request) {
	reqLog := logger.New().WithRequest(r).WithField("handler", "analysis")
	callID := r.PathValue("id")

	details, err := rt.gw.FetchCall(r.Context(), callID)
	if err != nil {
		reqLog.WithError(err).Warn("fetch call failed")
		respondError(w, http.StatusBadGateway, "failed to fetch call details")
		return
	}

	resp := analysisResponse{CallID: callID, Transcript: details.Transcript}
	if details.Analysis != nil {
		resp.StructuredData = details.Analysis.StructuredData
	}

	if details.Transcript != "" {
		sentiment := analyzer.AnalyzeSentiment(details.Transcript)
		resp.Sentiment = &sentiment

		items, err := rt.evaluator.EvaluateQA(r.Context(), details.Transcript, rt.rubric)
		if err != nil {
			// QA failure is non-fatal; sentiment and structured data
			// still go out.
			reqLog.WithError(err).Warn("qa evaluation failed")
			resp.QAError = err.Error()
		} else {
			resp.QA = items
			summary := analyzer.SummarizeRatings(items)
			resp.QASummary = &summary
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

func (rt *Router) export(w http.ResponseWriter, r *http.Request) {
	reqLog := logger.New().WithRequest(r).WithField("handler", "export")
	callID := r.PathValue("id")

	details, err := rt.gw.FetchCall(r.Context(), callID)
	if err != nil {
		reqLog.WithError(err).Warn("fetch call failed")
		respondError(w, http.StatusBadGateway, "failed to fetch call details")
		return
	}

	var structured map[string]any
	if details.Analysis != nil {
		structured = details.Analysis.StructuredData
	}
	var items []types.QAEvaluationItem
	if details.Transcript != "" {
		// The workbook carries its placeholder row when this fails.
		items, err = rt.evaluator.EvaluateQA(r.Context(), details.Transcript, rt.rubric)
		if err != nil {
			reqLog.WithError(err).Warn("qa evaluation failed, exporting placeholder")
		}
	}

	blob, err := report.BuildWorkbook(structured, items)
	if err != nil {
		reqLog.WithError(err).Error("workbook build failed")
		respondError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", report.MIMEType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(blob)
}

// requireSession gates handlers behind a bearer session token.
func (rt *Router) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := rt.sessions.Lookup(bearerToken(r)); !ok {
			respondError(w, http.StatusUnauthorized, "login required")
			return
		}
		next(w, r)
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil && !errors.Is(err, http.ErrBodyNotAllowed) {
		logger.New().WithError(err).Error("failed to write response")
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
