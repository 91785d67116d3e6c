package http

import (
	"net/http"

	"painel/internal/core"
)

type stateResponse struct {
	Entries     []core.Entry `json:"entries"`
	WeeklyGoal  float64      `json:"weeklyGoal"`
	MonthlyGoal float64      `json:"monthlyGoal"`
}

type addResponse struct {
	Success      bool    `json:"success"`
	TotalEntries float64 `json:"totalEntries"`
}

// handleState lists the current entries, or one day's history with ?date=.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	state, err := s.entries.DayState(r.Context(), queryDate(r))
	if err != nil {
		writeServiceError(w, r, "state", err)
		return
	}
	writeJSON(w, http.StatusOK, stateResponse{
		Entries:     state.Entries,
		WeeklyGoal:  state.Goals.Weekly,
		MonthlyGoal: state.Goals.Monthly,
	})
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeServiceError(w, r, "add", err)
		return
	}

	res, err := s.entries.Add(r.Context(), amount, sanitizeInput(string(req.Seller)), req.client())
	if err != nil {
		writeServiceError(w, r, "add", err)
		return
	}
	writeJSON(w, http.StatusOK, addResponse{Success: true, TotalEntries: res.TotalEntries})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeServiceError(w, r, "update", err)
		return
	}

	if _, err := s.entries.Update(r.Context(), r.PathValue("id"), amount, sanitizeInput(string(req.Seller)), req.client()); err != nil {
		writeServiceError(w, r, "update", err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.entries.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, "delete", err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// handleReset clears the current list. The body must carry a truthy confirm.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}
	if err := s.entries.ResetCurrent(r.Context(), truthy(req.Confirm)); err != nil {
		writeServiceError(w, r, "reset", err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
