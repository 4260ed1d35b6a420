package http

import (
	"net/http"
	"time"

	"financas/internal/core"
	"financas/internal/log"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// userView is the API shape of a user record. Passwords stay out of
// responses even though the store keeps them in the clear.
type userView struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Role      core.Role  `json:"role"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

func viewOf(u core.User) userView {
	return userView{ID: u.ID, Username: u.Username, Role: u.Role, LastLogin: u.LastLogin}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	u, err := s.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.logger.InfoContext(r.Context(), "user logged in",
		log.FieldOperation, log.OpLogin,
		log.FieldUserID, u.ID,
	)
	respondJSON(w, http.StatusOK, viewOf(u))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Logout(r.Context()); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// handleSession reports the restored session, if any.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	u := s.svc.CurrentUser()
	if u == nil {
		respondServiceError(w, core.ErrNoSession)
		return
	}
	respondJSON(w, http.StatusOK, viewOf(*u))
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	u, err := s.svc.SignUp(r.Context(), req.Username, req.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, viewOf(u))
}
