package http

import (
	"net/http"
)

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, "register", err)
		return
	}
	session, err := s.auth.Register(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		writeError(w, "register", err)
		return
	}
	writeData(w, http.StatusCreated, "user registered", session)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, "login", err)
		return
	}
	session, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, "login", err)
		return
	}
	writeData(w, http.StatusOK, "login successful", session)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())
	if err := s.auth.Logout(r.Context(), claims); err != nil {
		writeError(w, "logout", err)
		return
	}
	writeData(w, http.StatusOK, "logged out", nil)
}
