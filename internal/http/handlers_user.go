package http

import (
	"net/http"

	"financas/internal/core"
	"financas/internal/log"
	"financas/internal/services"
)

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.svc.Users()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	views := make([]userView, len(users))
	for i, u := range users {
		views[i] = viewOf(u)
	}
	respondJSON(w, http.StatusOK, views)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string    `json:"username"`
		Password string    `json:"password"`
		Role     core.Role `json:"role"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.Role == "" {
		req.Role = core.RoleStandard
	}

	u, err := s.svc.CreateUser(r.Context(), req.Username, req.Password, req.Role)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.logger.InfoContext(r.Context(), "user created",
		log.FieldOperation, log.OpCreate,
		log.FieldUserID, u.ID,
	)
	respondJSON(w, http.StatusCreated, viewOf(u))
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username *string    `json:"username"`
		Password *string    `json:"password"`
		Role     *core.Role `json:"role"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	u, err := s.svc.UpdateUser(r.Context(), r.PathValue("id"), services.UserUpdate{
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, viewOf(u))
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.svc.DeleteUser(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	s.invalidateAggregates()

	s.logger.InfoContext(r.Context(), "user deleted",
		log.FieldOperation, log.OpDelete,
		log.FieldUserID, id,
	)
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
