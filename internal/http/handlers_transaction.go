package http

import (
	"fmt"
	"net/http"
	"strconv"

	"financas/internal/core"
	"financas/internal/log"
	"financas/internal/services"
)

type monthResponse struct {
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Label string `json:"label"`
}

func monthResponseOf(c core.MonthCursor) monthResponse {
	return monthResponse{Year: c.Year, Month: int(c.Month), Label: core.FormatMonthYear(c)}
}

func (s *Server) handleSwitchMonth(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Delta int `json:"delta"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.Delta != -1 && req.Delta != 1 {
		respondError(w, http.StatusUnprocessableEntity, "delta must be -1 or 1")
		return
	}

	cur, err := s.svc.SwitchMonth(r.Context(), req.Delta)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	s.invalidateAggregates()
	respondJSON(w, http.StatusOK, monthResponseOf(cur))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.svc.MonthTransactions()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"month":        monthResponseOf(s.svc.Cursor()),
		"transactions": txs,
	})
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var req services.TransactionInput
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	series, err := s.svc.AddTransaction(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	s.invalidateAggregates()

	s.logger.InfoContext(r.Context(), "transaction recorded",
		log.FieldOperation, log.OpCreate,
		log.FieldTransactionID, series[0].ID,
		log.FieldCategory, series[0].Category,
		log.FieldRecurrence, len(series),
	)
	respondJSON(w, http.StatusCreated, series)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "transaction id must be an integer")
		return
	}

	if err := s.svc.DeleteTransaction(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	s.invalidateAggregates()
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// aggregateKey scopes cached aggregates to owner and month.
func (s *Server) aggregateKey() string {
	cur := s.svc.Cursor()
	owner := ""
	if u := s.svc.CurrentUser(); u != nil {
		owner = u.ID
	}
	return fmt.Sprintf("%s/%d-%02d", owner, cur.Year, cur.Month)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	key := s.aggregateKey()
	if sum, ok := s.summaryCache.Get(key); ok {
		respondJSON(w, http.StatusOK, sum)
		return
	}

	sum, err := s.svc.MonthSummary()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	s.summaryCache.Set(key, sum)
	respondJSON(w, http.StatusOK, sum)
}

func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	key := s.aggregateKey()
	if byCat, ok := s.breakdownCache.Get(key); ok {
		respondJSON(w, http.StatusOK, byCat)
		return
	}

	byCat, err := s.svc.MonthBreakdown()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	s.breakdownCache.Set(key, byCat)
	respondJSON(w, http.StatusOK, byCat)
}
