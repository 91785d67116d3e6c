package http

import (
	"fmt"
	"net/http"
)

type goalsResponse struct {
	Success     bool    `json:"success"`
	WeeklyGoal  float64 `json:"weeklyGoal"`
	MonthlyGoal float64 `json:"monthlyGoal"`
}

type weekResetResponse struct {
	Success     bool  `json:"success"`
	WeekResetTs int64 `json:"weekResetTs"`
}

type monthResetResponse struct {
	Success      bool  `json:"success"`
	MonthResetTs int64 `json:"monthResetTs"`
}

type storageResponse struct {
	Path   string `json:"path"`
	SizeKB string `json:"size_kb"`
	Sample string `json:"sample"`
}

type metricsResponse struct {
	Requests   int64 `json:"requests"`
	Suspicious int64 `json:"suspicious"`
	RateLimit  struct {
		Hits    int64 `json:"hits"`
		Clients int64 `json:"clients"`
	} `json:"rateLimit"`
}

// handleSetGoals updates whichever goals are valid positive numbers and
// echoes the stored values.
func (s *Server) handleSetGoals(w http.ResponseWriter, r *http.Request) {
	var req goalsRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}
	goals, err := s.goals.SetGoals(r.Context(), parseOptionalNumber(req.WeeklyGoalBRL), parseOptionalNumber(req.MonthlyGoalBRL))
	if err != nil {
		writeServiceError(w, r, "set-goals", err)
		return
	}
	writeJSON(w, http.StatusOK, goalsResponse{Success: true, WeeklyGoal: goals.Weekly, MonthlyGoal: goals.Monthly})
}

func (s *Server) handleResetWeek(w http.ResponseWriter, r *http.Request) {
	ts, err := s.goals.ResetWeekArc(r.Context())
	if err != nil {
		writeServiceError(w, r, "reset-week", err)
		return
	}
	writeJSON(w, http.StatusOK, weekResetResponse{Success: true, WeekResetTs: ts})
}

func (s *Server) handleResetMonth(w http.ResponseWriter, r *http.Request) {
	ts, err := s.goals.ResetMonthArc(r.Context())
	if err != nil {
		writeServiceError(w, r, "reset-month", err)
		return
	}
	writeJSON(w, http.StatusOK, monthResetResponse{Success: true, MonthResetTs: ts})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.goals.Summary(r.Context())
	if err != nil {
		writeServiceError(w, r, "summary", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// handleWeek renders the weekly table for the week containing ?date=, or
// the current week.
func (s *Server) handleWeek(w http.ResponseWriter, r *http.Request) {
	view, err := s.week.WeekView(r.Context(), queryDate(r))
	if err != nil {
		writeServiceError(w, r, "week", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleDebugStorage(w http.ResponseWriter, r *http.Request) {
	info, err := s.storage.Describe(r.Context())
	if err != nil {
		writeServiceError(w, r, "storage", err)
		return
	}
	writeJSON(w, http.StatusOK, storageResponse{
		Path:   info.Location,
		SizeKB: fmt.Sprintf("%.2f", float64(info.Size)/1024),
		Sample: info.Sample,
	})
}

func (s *Server) handleDebugMetrics(w http.ResponseWriter, r *http.Request) {
	var resp metricsResponse
	resp.Requests = s.tracer.TotalRequests()
	resp.Suspicious = s.detector.SuspiciousRequests()
	m := s.limiter.GetMetrics()
	resp.RateLimit.Hits = m.TotalHits
	resp.RateLimit.Clients = m.ClientCount
	writeJSON(w, http.StatusOK, resp)
}
