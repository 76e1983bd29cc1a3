package http

import (
	"net/http"

	"quiz-platform-service/internal/domain"
)

func (s *Server) listQuizzes(w http.ResponseWriter, r *http.Request) {
	filter := domain.QuizFilter{
		CategoryID:      r.URL.Query().Get("category"),
		DifficultyLevel: r.URL.Query().Get("difficulty"),
	}
	quizzes, err := s.catalog.ListPublished(r.Context(), filter)
	if err != nil {
		writeError(w, "list quizzes", err)
		return
	}
	writeData(w, http.StatusOK, "quizzes retrieved", quizzes)
}

func (s *Server) getQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := s.catalog.GetPublished(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, "get quiz", err)
		return
	}
	writeData(w, http.StatusOK, "quiz retrieved", quiz)
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.catalog.ListCategories(r.Context())
	if err != nil {
		writeError(w, "list categories", err)
		return
	}
	writeData(w, http.StatusOK, "categories retrieved", categories)
}

func (s *Server) startAttempt(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())
	started, err := s.attempts.Start(r.Context(), claims.UserID, r.PathValue("id"))
	if err != nil {
		writeError(w, "start attempt", err)
		return
	}
	writeData(w, http.StatusOK, "quiz attempt started", started)
}

func (s *Server) submitAttempt(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())
	var req submitRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, "submit attempt", err)
		return
	}
	answers := make([]domain.AnswerSubmission, 0, len(req.Answers))
	for _, a := range req.Answers {
		answers = append(answers, domain.AnswerSubmission{QuestionID: a.QuestionID, SelectedOptions: a.SelectedOptions})
	}
	result, err := s.attempts.Submit(r.Context(), claims.UserID, r.PathValue("id"), answers)
	if err != nil {
		writeError(w, "submit attempt", err)
		return
	}
	writeData(w, http.StatusOK, "quiz submitted", result)
}
