package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"quiz-platform-service/internal/app"
	"quiz-platform-service/internal/domain"
)

// Store is an in-memory implementation of the app stores, for tests and demo mode.
// Transactions hold the write lock and work on a copy that is swapped in on success.
type Store struct {
	mu   sync.RWMutex
	data *dataset
}

type pairKey struct {
	userID string
	quizID string
}

type dataset struct {
	users        map[string]domain.User
	categories   map[string]domain.Category
	quizzes      map[string]domain.Quiz
	questions    map[string]domain.Question
	attempts     []domain.Attempt
	answers      []domain.UserAnswer
	progress     map[pairKey]domain.Progress
	certificates map[pairKey]domain.Certificate
}

func NewStore() *Store {
	return &Store{data: &dataset{
		users:        make(map[string]domain.User),
		categories:   make(map[string]domain.Category),
		quizzes:      make(map[string]domain.Quiz),
		questions:    make(map[string]domain.Question),
		progress:     make(map[pairKey]domain.Progress),
		certificates: make(map[pairKey]domain.Certificate),
	}}
}

func (d *dataset) clone() *dataset {
	c := &dataset{
		users:        make(map[string]domain.User, len(d.users)),
		categories:   make(map[string]domain.Category, len(d.categories)),
		quizzes:      make(map[string]domain.Quiz, len(d.quizzes)),
		questions:    make(map[string]domain.Question, len(d.questions)),
		attempts:     append([]domain.Attempt(nil), d.attempts...),
		answers:      append([]domain.UserAnswer(nil), d.answers...),
		progress:     make(map[pairKey]domain.Progress, len(d.progress)),
		certificates: make(map[pairKey]domain.Certificate, len(d.certificates)),
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.categories {
		c.categories[k] = v
	}
	for k, v := range d.quizzes {
		c.quizzes[k] = v
	}
	for k, v := range d.questions {
		c.questions[k] = v
	}
	for k, v := range d.progress {
		c.progress[k] = v
	}
	for k, v := range d.certificates {
		c.certificates[k] = v
	}
	return c
}

// LoadQuiz returns quiz metadata with questions and options in display order.
func (s *Store) LoadQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	quiz, ok := s.data.quizzes[quizID]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	quiz.Questions = s.data.listQuestions(domain.QuestionFilter{QuizID: quizID})
	return quiz, nil
}

func (d *dataset) listQuestions(filter domain.QuestionFilter) []domain.Question {
	questions := make([]domain.Question, 0)
	for _, q := range d.questions {
		if filter.QuizID != "" && q.QuizID != filter.QuizID {
			continue
		}
		if filter.Type != "" && q.Type != filter.Type {
			continue
		}
		questions = append(questions, withSortedOptions(q))
	}
	sort.Slice(questions, func(i, j int) bool {
		if questions[i].QuizID != questions[j].QuizID {
			return questions[i].QuizID < questions[j].QuizID
		}
		if questions[i].DisplayOrder != questions[j].DisplayOrder {
			return questions[i].DisplayOrder < questions[j].DisplayOrder
		}
		return questions[i].ID < questions[j].ID
	})
	return questions
}

func withSortedOptions(q domain.Question) domain.Question {
	q.Options = append([]domain.AnswerOption(nil), q.Options...)
	sort.SliceStable(q.Options, func(i, j int) bool {
		return q.Options[i].DisplayOrder < q.Options[j].DisplayOrder
	})
	return q
}

// Attempts.

func (s *Store) CreateAttempt(_ context.Context, attempt domain.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.attempts = append(s.data.attempts, attempt)
	return nil
}

func (s *Store) LatestInProgressAttempt(_ context.Context, userID, quizID string) (domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		latest domain.Attempt
		found  bool
	)
	// Later inserts win ties on started_at.
	for _, a := range s.data.attempts {
		if a.UserID != userID || a.QuizID != quizID || a.Status != domain.AttemptInProgress {
			continue
		}
		if !found || !a.StartedAt.Before(latest.StartedAt) {
			latest = a
			found = true
		}
	}
	if !found {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	return latest, nil
}

// GetAttempt returns an attempt by id.
func (s *Store) GetAttempt(_ context.Context, id string) (domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.data.attempts {
		if a.ID == id {
			return a, nil
		}
	}
	return domain.Attempt{}, domain.ErrAttemptNotFound
}

func (s *Store) ListAttempts(_ context.Context, userID string) ([]domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Attempt, 0)
	for _, a := range s.data.attempts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out, nil
}

func (s *Store) ListAnswers(_ context.Context, attemptID string) ([]domain.UserAnswer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.UserAnswer, 0)
	for _, a := range s.data.answers {
		if a.AttemptID == attemptID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Store) GetProgress(_ context.Context, userID, quizID string) (domain.Progress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.data.progress[pairKey{userID, quizID}]
	if !ok {
		return domain.Progress{}, domain.ErrNotFound
	}
	return p, nil
}

func (s *Store) ListProgress(_ context.Context, userID string) ([]domain.Progress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Progress, 0)
	for k, p := range s.data.progress {
		if k.userID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastAttemptAt.After(out[j].LastAttemptAt) })
	return out, nil
}

func (s *Store) GetCertificate(_ context.Context, userID, quizID string) (domain.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.data.certificates[pairKey{userID, quizID}]
	if !ok {
		return domain.Certificate{}, domain.ErrCertificateNotFound
	}
	return c, nil
}

func (s *Store) CertificateByToken(_ context.Context, token string) (domain.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.data.certificates {
		if c.Token == token {
			return c, nil
		}
	}
	return domain.Certificate{}, domain.ErrCertificateNotFound
}

func (s *Store) ListCertificates(_ context.Context, userID string) ([]domain.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Certificate, 0)
	for k, c := range s.data.certificates {
		if k.userID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IssuedAt.After(out[j].IssuedAt) })
	return out, nil
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx app.AttemptTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	if err := fn(ctx, &tx{data: work}); err != nil {
		return err
	}
	s.data = work
	return nil
}

type tx struct {
	data *dataset
}

func (t *tx) CompleteAttempt(_ context.Context, attempt domain.Attempt) error {
	for i, a := range t.data.attempts {
		if a.ID != attempt.ID {
			continue
		}
		if a.Status != domain.AttemptInProgress {
			return domain.ErrAttemptNotActive
		}
		a.Status = domain.AttemptCompleted
		a.CorrectAnswers = attempt.CorrectAnswers
		a.Score = attempt.Score
		a.CompletedAt = attempt.CompletedAt
		t.data.attempts[i] = a
		return nil
	}
	return domain.ErrAttemptNotActive
}

func (t *tx) InsertAnswers(_ context.Context, answers []domain.UserAnswer) error {
	t.data.answers = append(t.data.answers, answers...)
	return nil
}

func (t *tx) UpsertProgress(_ context.Context, userID, quizID string, score int, at time.Time) (domain.Progress, error) {
	key := pairKey{userID, quizID}
	p, ok := t.data.progress[key]
	if !ok {
		p = domain.Progress{UserID: userID, QuizID: quizID, BestScore: score}
	}
	p.TotalAttempts++
	if score > p.BestScore {
		p.BestScore = score
	}
	p.LastAttemptAt = at
	t.data.progress[key] = p
	return p, nil
}

func (t *tx) UpsertCertificate(_ context.Context, cert domain.Certificate) (domain.Certificate, error) {
	key := pairKey{cert.UserID, cert.QuizID}
	if existing, ok := t.data.certificates[key]; ok {
		existing.Token = cert.Token
		existing.CertificateURL = cert.CertificateURL
		existing.ScoreAchieved = cert.ScoreAchieved
		cert = existing
	}
	t.data.certificates[key] = cert
	return cert, nil
}

// Catalog.

func (s *Store) CreateCategory(_ context.Context, category domain.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.data.categories {
		if strings.EqualFold(c.Name, category.Name) {
			return domain.Invalid("category name already exists")
		}
	}
	s.data.categories[category.ID] = category
	return nil
}

func (s *Store) GetCategory(_ context.Context, id string) (domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.data.categories[id]
	if !ok {
		return domain.Category{}, domain.ErrCategoryNotFound
	}
	return c, nil
}

func (s *Store) ListCategories(_ context.Context) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Category, 0, len(s.data.categories))
	for _, c := range s.data.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayOrder != out[j].DisplayOrder {
			return out[i].DisplayOrder < out[j].DisplayOrder
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Store) UpdateCategory(_ context.Context, category domain.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.data.categories[category.ID]
	if !ok {
		return domain.ErrCategoryNotFound
	}
	for id, c := range s.data.categories {
		if id != category.ID && strings.EqualFold(c.Name, category.Name) {
			return domain.Invalid("category name already exists")
		}
	}
	category.CreatedAt = current.CreatedAt
	s.data.categories[category.ID] = category
	return nil
}

func (s *Store) DeleteCategory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.categories[id]; !ok {
		return domain.ErrCategoryNotFound
	}
	for _, q := range s.data.quizzes {
		if q.CategoryID == id {
			return domain.ErrCategoryInUse
		}
	}
	delete(s.data.categories, id)
	return nil
}

func (s *Store) CreateQuiz(_ context.Context, quiz domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz.Questions = nil
	s.data.quizzes[quiz.ID] = quiz
	return nil
}

func (s *Store) UpdateQuiz(_ context.Context, quiz domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.quizzes[quiz.ID]; !ok {
		return domain.ErrQuizNotFound
	}
	quiz.Questions = nil
	s.data.quizzes[quiz.ID] = quiz
	return nil
}

func (s *Store) DeleteQuiz(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.quizzes[id]; !ok {
		return domain.ErrQuizNotFound
	}
	for _, a := range s.data.attempts {
		if a.QuizID == id {
			return domain.ErrQuizInUse
		}
	}
	for qid, q := range s.data.questions {
		if q.QuizID == id {
			delete(s.data.questions, qid)
		}
	}
	delete(s.data.quizzes, id)
	return nil
}

func (s *Store) GetQuiz(_ context.Context, id string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.data.quizzes[id]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return q, nil
}

func (s *Store) ListQuizzes(_ context.Context, filter domain.QuizFilter) ([]domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Quiz, 0)
	for _, q := range s.data.quizzes {
		if filter.PublishedOnly && !q.IsPublished {
			continue
		}
		if filter.CategoryID != "" && q.CategoryID != filter.CategoryID {
			continue
		}
		if filter.DifficultyLevel != "" && q.DifficultyLevel != filter.DifficultyLevel {
			continue
		}
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) CreateQuestion(_ context.Context, question domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.quizzes[question.QuizID]; !ok {
		return domain.ErrQuizNotFound
	}
	question.Options = append([]domain.AnswerOption(nil), question.Options...)
	s.data.questions[question.ID] = question
	return nil
}

func (s *Store) GetQuestion(_ context.Context, id string) (domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.data.questions[id]
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return withSortedOptions(q), nil
}

func (s *Store) ListQuestions(_ context.Context, filter domain.QuestionFilter) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.listQuestions(filter), nil
}

func (s *Store) UpdateQuestion(_ context.Context, question domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.data.questions[question.ID]
	if !ok {
		return domain.ErrQuestionNotFound
	}
	question.QuizID = current.QuizID
	question.Options = append([]domain.AnswerOption(nil), question.Options...)
	s.data.questions[question.ID] = question
	return nil
}

func (s *Store) DeleteQuestion(_ context.Context, id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.data.questions[id]
	if !ok {
		return "", domain.ErrQuestionNotFound
	}
	delete(s.data.questions, id)
	return q.QuizID, nil
}

// Users.

func (s *Store) CreateUser(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.data.users {
		if u.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	s.data.users[user.ID] = user
	return nil
}

func (s *Store) GetUser(_ context.Context, id string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.data.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.data.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (s *Store) UpdateUser(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	s.data.users[user.ID] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, 0, len(s.data.users))
	for _, u := range s.data.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
