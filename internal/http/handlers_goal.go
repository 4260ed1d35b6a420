package http

import (
	"net/http"
	"strconv"

	"financas/internal/core"
)

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, total, err := s.svc.Goals()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"savingsTotal": total,
		"goals":        goals,
	})
}

func (s *Server) handleAddGoal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   string `json:"name"`
		Target string `json:"target"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	target, err := core.ParseMoney(req.Target)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	g, err := s.svc.AddGoal(r.Context(), req.Name, target)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, g)
}

func (s *Server) handleDepositToGoal(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "goal id must be an integer")
		return
	}
	var req struct {
		Amount string `json:"amount"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	amount, err := core.ParseMoney(req.Amount)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	g, err := s.svc.DepositToGoal(r.Context(), id, amount)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, g)
}
