package http

import (
	"net/http"
)

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())
	user, err := s.users.Profile(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, "profile", err)
		return
	}
	writeData(w, http.StatusOK, "profile retrieved", user)
}

func (s *Server) updateMe(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, "update profile", err)
		return
	}
	claims, _ := claimsFrom(r.Context())
	user, err := s.users.UpdateProfile(r.Context(), claims.UserID, req.FullName)
	if err != nil {
		writeError(w, "update profile", err)
		return
	}
	writeData(w, http.StatusOK, "profile updated", user)
}

func (s *Server) myProgress(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())
	progress, err := s.users.Progress(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, "list progress", err)
		return
	}
	writeData(w, http.StatusOK, "progress retrieved", progress)
}

func (s *Server) myAttempts(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())
	attempts, err := s.users.Attempts(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, "list attempts", err)
		return
	}
	writeData(w, http.StatusOK, "attempts retrieved", attempts)
}

func (s *Server) myCertificates(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())
	certs, err := s.users.Certificates(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, "list certificates", err)
		return
	}
	writeData(w, http.StatusOK, "certificates retrieved", certs)
}

func (s *Server) verifyCertificate(w http.ResponseWriter, r *http.Request) {
	view, err := s.users.VerifyCertificate(r.Context(), r.PathValue("token"))
	if err != nil {
		writeError(w, "verify certificate", err)
		return
	}
	writeData(w, http.StatusOK, "certificate retrieved", view)
}
