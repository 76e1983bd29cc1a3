package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"quiz-platform-service/internal/app"
	"quiz-platform-service/internal/auth"
	"quiz-platform-service/internal/domain"
	"quiz-platform-service/internal/infra/memory"
)

type testAPI struct {
	server     *httptest.Server
	store      *memory.Store
	adminToken string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store := memory.NewStore()
	quizzes := memory.NewQuizRepository(store, time.Minute)
	feed := app.NewResultFeed()
	issuer, err := auth.NewTokenIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("issuer: %v", err)
	}
	authSvc := app.NewAuthService(store, issuer, memory.NewTokenStore(), bcrypt.MinCost)
	catalog := app.NewCatalogService(store, quizzes)
	attempts := app.NewAttemptService(store, quizzes, app.NewCertificateMinter("https://quiz.example"), feed)
	users := app.NewUserService(store, store, store)

	srv := httptest.NewServer(NewServer(authSvc, catalog, attempts, users, feed).Routes())
	t.Cleanup(srv.Close)

	hash, _ := auth.HashPassword("admin-password", bcrypt.MinCost)
	if err := store.CreateUser(context.Background(), domain.User{
		ID: "admin-1", Email: "admin@example.com", FullName: "Admin", PasswordHash: hash, Role: domain.RoleAdmin, IsActive: true,
	}); err != nil {
		t.Fatalf("create admin: %v", err)
	}
	session, err := authSvc.Login(context.Background(), "admin@example.com", "admin-password")
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	return &testAPI{server: srv, store: store, adminToken: session.AccessToken}
}

type response struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	raw     string
}

func (a *testAPI) call(t *testing.T, method, path, token string, body any) (int, response) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, a.server.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer res.Body.Close()
	raw, _ := io.ReadAll(res.Body)
	var out response
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode %s %s response %q: %v", method, path, raw, err)
	}
	out.raw = string(raw)
	return res.StatusCode, out
}

func decodeData[T any](t *testing.T, res response) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(res.Data, &out); err != nil {
		t.Fatalf("decode data %s: %v", res.Data, err)
	}
	return out
}

func (a *testAPI) register(t *testing.T, email string) string {
	t.Helper()
	status, res := a.call(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email": email, "password": "long-enough", "full_name": "Quiz Taker",
	})
	if status != http.StatusCreated {
		t.Fatalf("register: %d %s", status, res.raw)
	}
	return decodeData[app.Session](t, res).AccessToken
}

// publishCapitalQuiz creates a published quiz with one multiple choice question
// and returns the quiz id, question id and the correct option id.
func (a *testAPI) publishCapitalQuiz(t *testing.T) (string, string, string) {
	t.Helper()
	status, res := a.call(t, http.MethodPost, "/admin/categories", a.adminToken, map[string]any{"name": "Geography"})
	if status != http.StatusCreated {
		t.Fatalf("create category: %d %s", status, res.raw)
	}
	category := decodeData[domain.Category](t, res)

	status, res = a.call(t, http.MethodPost, "/admin/quizzes", a.adminToken, map[string]any{
		"category_id": category.ID, "title": "Capitals", "difficulty_level": "easy",
		"questions_per_attempt": 10, "time_limit_minutes": 5, "passing_score": 70, "is_published": true,
	})
	if status != http.StatusCreated {
		t.Fatalf("create quiz: %d %s", status, res.raw)
	}
	quiz := decodeData[domain.Quiz](t, res)

	status, res = a.call(t, http.MethodPost, "/admin/questions", a.adminToken, map[string]any{
		"quiz_id": quiz.ID, "question_type": "multiple_choice", "question_text": "What is the capital of France?",
		"points": 1, "display_order": 1,
		"options": []map[string]any{
			{"option_text": "London", "display_order": 1},
			{"option_text": "Berlin", "display_order": 2},
			{"option_text": "Paris", "is_correct": true, "display_order": 3},
			{"option_text": "Madrid", "display_order": 4},
		},
	})
	if status != http.StatusCreated {
		t.Fatalf("create question: %d %s", status, res.raw)
	}
	question := decodeData[domain.Question](t, res)
	for _, opt := range question.Options {
		if opt.IsCorrect {
			return quiz.ID, question.ID, opt.ID
		}
	}
	t.Fatalf("no correct option in %+v", question)
	return "", "", ""
}

func TestAttemptFlowOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	quizID, questionID, paris := api.publishCapitalQuiz(t)
	token := api.register(t, "taker@example.com")

	status, res := api.call(t, http.MethodGet, "/quizzes", "", nil)
	if status != http.StatusOK || len(decodeData[[]domain.Quiz](t, res)) != 1 {
		t.Fatalf("list quizzes: %d %s", status, res.raw)
	}

	status, res = api.call(t, http.MethodPost, "/quizzes/"+quizID+"/start", token, nil)
	if status != http.StatusOK {
		t.Fatalf("start: %d %s", status, res.raw)
	}
	if strings.Contains(res.raw, "is_correct") {
		t.Fatalf("start response leaks correct answers: %s", res.raw)
	}
	started := decodeData[app.StartedAttempt](t, res)
	if len(started.Questions) != 1 || len(started.Questions[0].Options) != 4 {
		t.Fatalf("unexpected started attempt %+v", started)
	}

	body := map[string]any{"answers": []map[string]any{{"question_id": questionID, "selected_options": []string{paris}}}}
	status, res = api.call(t, http.MethodPost, "/quizzes/"+quizID+"/submit", token, body)
	if status != http.StatusOK {
		t.Fatalf("submit: %d %s", status, res.raw)
	}
	result := decodeData[app.SubmitResult](t, res)
	if result.Score != 100 || !result.Passed || result.CertificateURL == nil || result.TotalQuestions != 1 {
		t.Fatalf("unexpected result %+v", result)
	}

	status, res = api.call(t, http.MethodPost, "/quizzes/"+quizID+"/submit", token, body)
	if status != http.StatusBadRequest || res.Success {
		t.Fatalf("expected second submit rejected with 400, got %d %s", status, res.raw)
	}

	status, res = api.call(t, http.MethodGet, "/users/me/certificates", token, nil)
	if status != http.StatusOK || len(decodeData[[]domain.Certificate](t, res)) != 1 {
		t.Fatalf("certificates: %d %s", status, res.raw)
	}
	status, res = api.call(t, http.MethodGet, "/users/me/progress", token, nil)
	progress := decodeData[[]domain.Progress](t, res)
	if status != http.StatusOK || len(progress) != 1 || progress[0].BestScore != 100 {
		t.Fatalf("progress: %d %s", status, res.raw)
	}

	certToken := (*result.CertificateURL)[strings.LastIndex(*result.CertificateURL, "/")+1:]
	status, res = api.call(t, http.MethodGet, "/certificates/"+certToken, "", nil)
	if status != http.StatusOK {
		t.Fatalf("verify certificate: %d %s", status, res.raw)
	}
	view := decodeData[app.CertificateView](t, res)
	if view.HolderName != "Quiz Taker" || view.QuizTitle != "Capitals" {
		t.Fatalf("unexpected certificate view %+v", view)
	}
}

func TestSubmitFailingAnswerHasNoCertificate(t *testing.T) {
	api := newTestAPI(t)
	quizID, questionID, paris := api.publishCapitalQuiz(t)
	token := api.register(t, "taker@example.com")

	api.call(t, http.MethodPost, "/quizzes/"+quizID+"/start", token, nil)
	status, res := api.call(t, http.MethodPost, "/quizzes/"+quizID+"/submit", token, map[string]any{
		"answers": []map[string]any{{"question_id": questionID, "selected_options": []string{"london-" + paris}}},
	})
	if status != http.StatusOK {
		t.Fatalf("submit: %d %s", status, res.raw)
	}
	if !strings.Contains(string(res.Data), `"certificate_url":null`) {
		t.Fatalf("expected null certificate url, got %s", res.Data)
	}
}

func TestAttemptErrorsMapToStatusCodes(t *testing.T) {
	api := newTestAPI(t)
	quizID, _, _ := api.publishCapitalQuiz(t)
	token := api.register(t, "taker@example.com")

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		want   int
	}{
		{"start without token", http.MethodPost, "/quizzes/" + quizID + "/start", "", nil, http.StatusUnauthorized},
		{"start with bad token", http.MethodPost, "/quizzes/" + quizID + "/start", "garbage", nil, http.StatusUnauthorized},
		{"start missing quiz", http.MethodPost, "/quizzes/missing/start", token, nil, http.StatusNotFound},
		{"submit without attempt", http.MethodPost, "/quizzes/" + quizID + "/submit", token, map[string]any{"answers": []any{}}, http.StatusBadRequest},
		{"submit malformed body", http.MethodPost, "/quizzes/" + quizID + "/submit", token, "not an object", http.StatusBadRequest},
		{"get missing quiz", http.MethodGet, "/quizzes/missing", "", nil, http.StatusNotFound},
		{"unknown certificate", http.MethodGet, "/certificates/unknown", "", nil, http.StatusNotFound},
		{"admin route as user", http.MethodPost, "/admin/categories", token, map[string]any{"name": "Nope"}, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, res := api.call(t, tc.method, tc.path, tc.token, tc.body)
			if status != tc.want || res.Success {
				t.Fatalf("expected %d, got %d %s", tc.want, status, res.raw)
			}
		})
	}
}

func TestSubmitUnknownQuestionIsNotFound(t *testing.T) {
	api := newTestAPI(t)
	quizID, _, _ := api.publishCapitalQuiz(t)
	token := api.register(t, "taker@example.com")

	api.call(t, http.MethodPost, "/quizzes/"+quizID+"/start", token, nil)
	status, res := api.call(t, http.MethodPost, "/quizzes/"+quizID+"/submit", token, map[string]any{
		"answers": []map[string]any{{"question_id": "nope", "selected_options": []string{"x"}}},
	})
	if status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d %s", status, res.raw)
	}
}

func TestRegisterValidationAndConflict(t *testing.T) {
	api := newTestAPI(t)

	status, res := api.call(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email": "x@example.com", "password": "short", "full_name": "X",
	})
	if status != http.StatusBadRequest || !strings.Contains(res.Message, "password") {
		t.Fatalf("expected password validation error, got %d %s", status, res.raw)
	}
	status, res = api.call(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email": "not-an-email", "password": "long-enough", "full_name": "X",
	})
	if status != http.StatusBadRequest || !strings.Contains(res.Message, "email") {
		t.Fatalf("expected email validation error, got %d %s", status, res.raw)
	}

	api.register(t, "x@example.com")
	status, res = api.call(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email": "x@example.com", "password": "long-enough", "full_name": "X",
	})
	if status != http.StatusConflict {
		t.Fatalf("expected 409, got %d %s", status, res.raw)
	}

	status, _ = api.call(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "x@example.com", "password": "wrong-password"})
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", status)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	api := newTestAPI(t)
	token := api.register(t, "x@example.com")

	if status, res := api.call(t, http.MethodGet, "/users/me", token, nil); status != http.StatusOK {
		t.Fatalf("me: %d %s", status, res.raw)
	}
	if status, res := api.call(t, http.MethodPost, "/auth/logout", token, nil); status != http.StatusOK {
		t.Fatalf("logout: %d %s", status, res.raw)
	}
	if status, _ := api.call(t, http.MethodGet, "/users/me", token, nil); status != http.StatusUnauthorized {
		t.Fatalf("expected revoked token rejected, got %d", status)
	}
}

func TestAdminQuestionValidation(t *testing.T) {
	api := newTestAPI(t)
	quizID, _, _ := api.publishCapitalQuiz(t)

	cases := []map[string]any{
		{"quiz_id": quizID, "question_type": "essay", "question_text": "?", "options": []map[string]any{{"option_text": "a"}, {"option_text": "b"}}},
		{"quiz_id": quizID, "question_type": "yes_no", "question_text": "?", "options": []map[string]any{{"option_text": "a", "is_correct": true}}},
		{"quiz_id": quizID, "question_type": "yes_no", "question_text": "?", "options": []map[string]any{{"option_text": "a", "is_correct": true}, {"option_text": "b", "is_correct": true}}},
	}
	for i, body := range cases {
		if status, res := api.call(t, http.MethodPost, "/admin/questions", api.adminToken, body); status != http.StatusBadRequest {
			t.Fatalf("case %d: expected 400, got %d %s", i, status, res.raw)
		}
	}

	status, res := api.call(t, http.MethodPost, "/admin/questions", api.adminToken, map[string]any{
		"quiz_id": "missing", "question_type": "yes_no", "question_text": "?",
		"options": []map[string]any{{"option_text": "a", "is_correct": true}, {"option_text": "b"}},
	})
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 for missing quiz, got %d %s", status, res.raw)
	}
}

func TestAdminEditsAreVisibleToQuizTakers(t *testing.T) {
	api := newTestAPI(t)
	quizID, questionID, _ := api.publishCapitalQuiz(t)
	token := api.register(t, "taker@example.com")

	status, res := api.call(t, http.MethodGet, "/admin/quizzes/"+quizID, api.adminToken, nil)
	if status != http.StatusOK || !strings.Contains(res.raw, "is_correct") {
		t.Fatalf("admin content: %d %s", status, res.raw)
	}
	content := decodeData[domain.Quiz](t, res)

	status, res = api.call(t, http.MethodPut, "/admin/quizzes/"+quizID, api.adminToken, map[string]any{
		"category_id": content.CategoryID, "title": "Capitals", "questions_per_attempt": 10, "passing_score": 70, "is_published": false,
	})
	if status != http.StatusOK {
		t.Fatalf("update quiz: %d %s", status, res.raw)
	}
	if status, _ := api.call(t, http.MethodPost, "/quizzes/"+quizID+"/start", token, nil); status != http.StatusNotFound {
		t.Fatalf("expected unpublished quiz hidden, got %d", status)
	}

	api.call(t, http.MethodPut, "/admin/quizzes/"+quizID, api.adminToken, map[string]any{
		"category_id": content.CategoryID, "title": "Capitals", "questions_per_attempt": 10, "passing_score": 70, "is_published": true,
	})
	if status, res := api.call(t, http.MethodDelete, "/admin/questions/"+questionID, api.adminToken, nil); status != http.StatusOK {
		t.Fatalf("delete question: %d %s", status, res.raw)
	}
	if status, res := api.call(t, http.MethodPost, "/quizzes/"+quizID+"/start", token, nil); status != http.StatusBadRequest {
		t.Fatalf("expected no questions error, got %d %s", status, res.raw)
	}
}

func TestWriteErrorHidesStorageFailures(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, "test op", fmt.Errorf("insert answers: %w", io.ErrUnexpectedEOF))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "unexpected EOF") || !strings.Contains(rec.Body.String(), "internal server error") {
		t.Fatalf("expected generic message, got %s", rec.Body.String())
	}
}

func TestStatusForKinds(t *testing.T) {
	cases := map[error]int{
		domain.ErrQuizNotFound:        http.StatusNotFound,
		domain.ErrNoActiveAttempt:     http.StatusBadRequest,
		domain.ErrUnknownQuestionType: http.StatusBadRequest,
		domain.Invalid("bad"):         http.StatusBadRequest,
		domain.ErrInvalidToken:        http.StatusUnauthorized,
		domain.ErrForbidden:           http.StatusForbidden,
		domain.ErrEmailTaken:          http.StatusConflict,
	}
	for err, want := range cases {
		if got := statusFor(err); got != want {
			t.Fatalf("statusFor(%v) = %d, want %d", err, got, want)
		}
	}
}

func TestAdminCatalogMaintenance(t *testing.T) {
	api := newTestAPI(t)
	quizID, questionID, _ := api.publishCapitalQuiz(t)
	token := api.register(t, "taker@example.com")

	status, res := api.call(t, http.MethodGet, "/admin/questions?quiz_id="+quizID, api.adminToken, nil)
	if status != http.StatusOK {
		t.Fatalf("list questions: %d %s", status, res.raw)
	}
	if listed := decodeData[[]domain.Question](t, res); len(listed) != 1 || listed[0].ID != questionID {
		t.Fatalf("unexpected question listing %+v", listed)
	}
	if status, _ := api.call(t, http.MethodGet, "/admin/questions/"+questionID, token, nil); status != http.StatusForbidden {
		t.Fatalf("expected quiz takers kept out of admin questions, got %d", status)
	}

	status, res = api.call(t, http.MethodPut, "/admin/questions/"+questionID, api.adminToken, map[string]any{
		"question_type": "multiple_choice", "question_text": "Which city is the capital of France?", "points": 1,
		"options": []map[string]any{
			{"option_text": "Marseille", "display_order": 1},
			{"option_text": "Paris", "is_correct": true, "display_order": 2},
		},
	})
	if status != http.StatusOK {
		t.Fatalf("update question: %d %s", status, res.raw)
	}
	var paris string
	for _, opt := range decodeData[domain.Question](t, res).Options {
		if opt.IsCorrect {
			paris = opt.ID
		}
	}

	status, res = api.call(t, http.MethodPost, "/quizzes/"+quizID+"/start", token, nil)
	if status != http.StatusOK || !strings.Contains(res.raw, "Which city is the capital of France?") || !strings.Contains(res.raw, "Marseille") {
		t.Fatalf("expected edited question served, got %d %s", status, res.raw)
	}
	status, res = api.call(t, http.MethodPost, "/quizzes/"+quizID+"/submit", token, map[string]any{
		"answers": []map[string]any{{"question_id": questionID, "selected_options": []string{paris}}},
	})
	if status != http.StatusOK || decodeData[app.SubmitResult](t, res).Score != 100 {
		t.Fatalf("expected new correct option to grade, got %d %s", status, res.raw)
	}

	if status, res := api.call(t, http.MethodDelete, "/admin/quizzes/"+quizID, api.adminToken, nil); status != http.StatusBadRequest {
		t.Fatalf("expected attempted quiz kept, got %d %s", status, res.raw)
	}

	status, res = api.call(t, http.MethodPost, "/admin/categories", api.adminToken, map[string]any{"name": "Drafts"})
	if status != http.StatusCreated {
		t.Fatalf("create category: %d %s", status, res.raw)
	}
	drafts := decodeData[domain.Category](t, res)
	status, res = api.call(t, http.MethodPost, "/admin/quizzes", api.adminToken, map[string]any{
		"category_id": drafts.ID, "title": "Scratch", "questions_per_attempt": 1, "passing_score": 50,
	})
	if status != http.StatusCreated {
		t.Fatalf("create quiz: %d %s", status, res.raw)
	}
	scratch := decodeData[domain.Quiz](t, res)

	if status, res := api.call(t, http.MethodDelete, "/admin/categories/"+drafts.ID, api.adminToken, nil); status != http.StatusBadRequest {
		t.Fatalf("expected category with quizzes kept, got %d %s", status, res.raw)
	}
	if status, res := api.call(t, http.MethodDelete, "/admin/quizzes/"+scratch.ID, api.adminToken, nil); status != http.StatusOK {
		t.Fatalf("delete quiz: %d %s", status, res.raw)
	}
	status, res = api.call(t, http.MethodPut, "/admin/categories/"+drafts.ID, api.adminToken, map[string]any{"name": "Archive", "display_order": 9})
	if status != http.StatusOK || decodeData[domain.Category](t, res).Name != "Archive" {
		t.Fatalf("update category: %d %s", status, res.raw)
	}
	if status, res := api.call(t, http.MethodDelete, "/admin/categories/"+drafts.ID, api.adminToken, nil); status != http.StatusOK {
		t.Fatalf("delete category: %d %s", status, res.raw)
	}
	if status, _ := api.call(t, http.MethodGet, "/admin/categories/"+drafts.ID, api.adminToken, nil); status != http.StatusNotFound {
		t.Fatalf("expected deleted category gone, got %d", status)
	}
}

func TestProfileUpdateAndAdminUsers(t *testing.T) {
	api := newTestAPI(t)
	token := api.register(t, "taker@example.com")

	if status, res := api.call(t, http.MethodPut, "/users/me", token, map[string]any{"full_name": ""}); status != http.StatusBadRequest {
		t.Fatalf("expected blank name rejected, got %d %s", status, res.raw)
	}
	status, res := api.call(t, http.MethodPut, "/users/me", token, map[string]any{"full_name": "Renamed Taker"})
	if status != http.StatusOK {
		t.Fatalf("update profile: %d %s", status, res.raw)
	}
	status, res = api.call(t, http.MethodGet, "/users/me", token, nil)
	if status != http.StatusOK || decodeData[domain.User](t, res).FullName != "Renamed Taker" {
		t.Fatalf("expected renamed profile, got %d %s", status, res.raw)
	}

	if status, _ := api.call(t, http.MethodGet, "/admin/users", token, nil); status != http.StatusForbidden {
		t.Fatalf("expected non-admin rejected, got %d", status)
	}
	status, res = api.call(t, http.MethodGet, "/admin/users", api.adminToken, nil)
	if status != http.StatusOK || strings.Contains(res.raw, "password") {
		t.Fatalf("list users: %d %s", status, res.raw)
	}
	listed := decodeData[[]domain.User](t, res)
	if len(listed) != 2 {
		t.Fatalf("expected admin and taker, got %+v", listed)
	}
	for _, u := range listed {
		if u.Email != "taker@example.com" {
			continue
		}
		status, res = api.call(t, http.MethodGet, "/admin/users/"+u.ID, api.adminToken, nil)
		if status != http.StatusOK || decodeData[domain.User](t, res).FullName != "Renamed Taker" {
			t.Fatalf("get user: %d %s", status, res.raw)
		}
		return
	}
	t.Fatalf("taker missing from %+v", listed)
}
