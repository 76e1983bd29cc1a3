package http

import (
	"net/http"

	"quiz-platform-service/internal/domain"
)

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, "create category", err)
		return
	}
	category, err := s.catalog.CreateCategory(r.Context(), domain.Category{
		Name:         req.Name,
		Description:  req.Description,
		DisplayOrder: req.DisplayOrder,
	})
	if err != nil {
		writeError(w, "create category", err)
		return
	}
	writeData(w, http.StatusCreated, "category created", category)
}

func (s *Server) getCategory(w http.ResponseWriter, r *http.Request) {
	category, err := s.catalog.GetCategory(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, "get category", err)
		return
	}
	writeData(w, http.StatusOK, "category retrieved", category)
}

func (s *Server) updateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, "update category", err)
		return
	}
	category, err := s.catalog.UpdateCategory(r.Context(), r.PathValue("id"), domain.Category{
		Name:         req.Name,
		Description:  req.Description,
		DisplayOrder: req.DisplayOrder,
	})
	if err != nil {
		writeError(w, "update category", err)
		return
	}
	writeData(w, http.StatusOK, "category updated", category)
}

func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, "delete category", err)
		return
	}
	writeData(w, http.StatusOK, "category deleted", nil)
}

func (s *Server) adminListQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := s.catalog.ListAll(r.Context(), domain.QuizFilter{
		CategoryID:      r.URL.Query().Get("category"),
		DifficultyLevel: r.URL.Query().Get("difficulty"),
	})
	if err != nil {
		writeError(w, "list quizzes", err)
		return
	}
	writeData(w, http.StatusOK, "quizzes retrieved", quizzes)
}

// adminGetQuiz returns quiz content including correct answers.
func (s *Server) adminGetQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := s.catalog.GetContent(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, "get quiz content", err)
		return
	}
	writeData(w, http.StatusOK, "quiz retrieved", quiz)
}

func (s *Server) createQuiz(w http.ResponseWriter, r *http.Request) {
	var req quizRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, "create quiz", err)
		return
	}
	quiz, err := s.catalog.CreateQuiz(r.Context(), req.toDomain())
	if err != nil {
		writeError(w, "create quiz", err)
		return
	}
	writeData(w, http.StatusCreated, "quiz created", quiz)
}

func (s *Server) updateQuiz(w http.ResponseWriter, r *http.Request) {
	var req quizRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, "update quiz", err)
		return
	}
	quiz, err := s.catalog.UpdateQuiz(r.Context(), r.PathValue("id"), req.toDomain())
	if err != nil {
		writeError(w, "update quiz", err)
		return
	}
	writeData(w, http.StatusOK, "quiz updated", quiz)
}

func (s *Server) deleteQuiz(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.DeleteQuiz(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, "delete quiz", err)
		return
	}
	writeData(w, http.StatusOK, "quiz deleted", nil)
}

func (s *Server) listQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := s.catalog.ListQuestions(r.Context(), domain.QuestionFilter{
		QuizID: r.URL.Query().Get("quiz_id"),
		Type:   domain.QuestionType(r.URL.Query().Get("type")),
	})
	if err != nil {
		writeError(w, "list questions", err)
		return
	}
	writeData(w, http.StatusOK, "questions retrieved", questions)
}

func (s *Server) getQuestion(w http.ResponseWriter, r *http.Request) {
	question, err := s.catalog.GetQuestion(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, "get question", err)
		return
	}
	writeData(w, http.StatusOK, "question retrieved", question)
}

func (s *Server) createQuestion(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, "create question", err)
		return
	}
	question, err := s.catalog.CreateQuestion(r.Context(), req.toDomain())
	if err != nil {
		writeError(w, "create question", err)
		return
	}
	writeData(w, http.StatusCreated, "question created", question)
}

func (s *Server) updateQuestion(w http.ResponseWriter, r *http.Request) {
	var req questionUpdateRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, "update question", err)
		return
	}
	question, err := s.catalog.UpdateQuestion(r.Context(), r.PathValue("id"), req.toDomain())
	if err != nil {
		writeError(w, "update question", err)
		return
	}
	writeData(w, http.StatusOK, "question updated", question)
}

func (s *Server) deleteQuestion(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.DeleteQuestion(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, "delete question", err)
		return
	}
	writeData(w, http.StatusOK, "question deleted", nil)
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.ListUsers(r.Context())
	if err != nil {
		writeError(w, "list users", err)
		return
	}
	writeData(w, http.StatusOK, "users retrieved", users)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.Profile(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, "get user", err)
		return
	}
	writeData(w, http.StatusOK, "user retrieved", user)
}
