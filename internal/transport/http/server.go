package http

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"quiz-platform-service/internal/app"
)

// Server exposes the quiz platform over HTTP.
type Server struct {
	auth     *app.AuthService
	catalog  *app.CatalogService
	attempts *app.AttemptService
	users    *app.UserService
	feed     *FeedHandler
	validate *validator.Validate
}

func NewServer(auth *app.AuthService, catalog *app.CatalogService, attempts *app.AttemptService, users *app.UserService, feed *app.ResultFeed) *Server {
	return &Server{
		auth:     auth,
		catalog:  catalog,
		attempts: attempts,
		users:    users,
		feed:     NewFeedHandler(feed, catalog),
		validate: newValidator(),
	}
}

// Routes builds the request multiplexer.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("POST /auth/register", s.register)
	mux.HandleFunc("POST /auth/login", s.login)
	mux.HandleFunc("POST /auth/logout", s.requireAuth(s.logout))

	mux.HandleFunc("GET /quizzes", s.listQuizzes)
	mux.HandleFunc("GET /quizzes/{id}", s.getQuiz)
	mux.HandleFunc("POST /quizzes/{id}/start", s.requireAuth(s.startAttempt))
	mux.HandleFunc("POST /quizzes/{id}/submit", s.requireAuth(s.submitAttempt))
	mux.HandleFunc("GET /categories", s.listCategories)

	mux.HandleFunc("GET /users/me", s.requireAuth(s.me))
	mux.HandleFunc("PUT /users/me", s.requireAuth(s.updateMe))
	mux.HandleFunc("GET /users/me/progress", s.requireAuth(s.myProgress))
	mux.HandleFunc("GET /users/me/attempts", s.requireAuth(s.myAttempts))
	mux.HandleFunc("GET /users/me/certificates", s.requireAuth(s.myCertificates))
	mux.HandleFunc("GET /certificates/{token}", s.verifyCertificate)

	mux.HandleFunc("GET /admin/categories", s.requireAdmin(s.listCategories))
	mux.HandleFunc("POST /admin/categories", s.requireAdmin(s.createCategory))
	mux.HandleFunc("GET /admin/categories/{id}", s.requireAdmin(s.getCategory))
	mux.HandleFunc("PUT /admin/categories/{id}", s.requireAdmin(s.updateCategory))
	mux.HandleFunc("DELETE /admin/categories/{id}", s.requireAdmin(s.deleteCategory))
	mux.HandleFunc("GET /admin/quizzes", s.requireAdmin(s.adminListQuizzes))
	mux.HandleFunc("POST /admin/quizzes", s.requireAdmin(s.createQuiz))
	mux.HandleFunc("GET /admin/quizzes/{id}", s.requireAdmin(s.adminGetQuiz))
	mux.HandleFunc("PUT /admin/quizzes/{id}", s.requireAdmin(s.updateQuiz))
	mux.HandleFunc("DELETE /admin/quizzes/{id}", s.requireAdmin(s.deleteQuiz))
	mux.HandleFunc("GET /admin/questions", s.requireAdmin(s.listQuestions))
	mux.HandleFunc("POST /admin/questions", s.requireAdmin(s.createQuestion))
	mux.HandleFunc("GET /admin/questions/{id}", s.requireAdmin(s.getQuestion))
	mux.HandleFunc("PUT /admin/questions/{id}", s.requireAdmin(s.updateQuestion))
	mux.HandleFunc("DELETE /admin/questions/{id}", s.requireAdmin(s.deleteQuestion))
	mux.HandleFunc("GET /admin/users", s.requireAdmin(s.listUsers))
	mux.HandleFunc("GET /admin/users/{id}", s.requireAdmin(s.getUser))

	mux.HandleFunc("GET /ws/quizzes/{id}/results", s.requireAdmin(s.feed.ServeWS))

	return logRequests(mux)
}
