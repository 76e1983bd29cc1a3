package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"quiz-platform-service/internal/domain"
)

const maxBodyBytes = 1 << 20

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required,max=255"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type profileRequest struct {
	FullName string `json:"full_name" validate:"required,max=255"`
}

type submitRequest struct {
	Answers []answerRequest `json:"answers" validate:"dive"`
}

type answerRequest struct {
	QuestionID      string   `json:"question_id" validate:"required"`
	SelectedOptions []string `json:"selected_options"`
}

type categoryRequest struct {
	Name         string `json:"name" validate:"required,max=100"`
	Description  string `json:"description"`
	DisplayOrder int    `json:"display_order"`
}

type quizRequest struct {
	CategoryID          string `json:"category_id" validate:"required"`
	Title               string `json:"title" validate:"required,max=255"`
	Description         string `json:"description"`
	DifficultyLevel     string `json:"difficulty_level" validate:"omitempty,oneof=easy medium hard"`
	QuestionsPerAttempt int    `json:"questions_per_attempt" validate:"min=1"`
	TimeLimitMinutes    int    `json:"time_limit_minutes" validate:"min=0"`
	PassingScore        int    `json:"passing_score" validate:"min=0,max=100"`
	IsPublished         bool   `json:"is_published"`
}

func (r quizRequest) toDomain() domain.Quiz {
	return domain.Quiz{
		CategoryID:          r.CategoryID,
		Title:               r.Title,
		Description:         r.Description,
		DifficultyLevel:     r.DifficultyLevel,
		QuestionsPerAttempt: r.QuestionsPerAttempt,
		TimeLimitMinutes:    r.TimeLimitMinutes,
		PassingScore:        r.PassingScore,
		IsPublished:         r.IsPublished,
	}
}

type questionRequest struct {
	QuizID       string          `json:"quiz_id" validate:"required"`
	Type         string          `json:"question_type" validate:"required,oneof=multiple_choice checkbox yes_no"`
	Text         string          `json:"question_text" validate:"required"`
	Points       int             `json:"points" validate:"min=0"`
	DisplayOrder int             `json:"display_order"`
	Options      []optionRequest `json:"options" validate:"min=2,dive"`
}

// questionUpdateRequest is questionRequest without the owning quiz, which never changes.
type questionUpdateRequest struct {
	Type         string          `json:"question_type" validate:"required,oneof=multiple_choice checkbox yes_no"`
	Text         string          `json:"question_text" validate:"required"`
	Points       int             `json:"points" validate:"min=0"`
	DisplayOrder int             `json:"display_order"`
	Options      []optionRequest `json:"options" validate:"min=2,dive"`
}

func (r questionUpdateRequest) toDomain() domain.Question {
	return questionRequest{
		Type:         r.Type,
		Text:         r.Text,
		Points:       r.Points,
		DisplayOrder: r.DisplayOrder,
		Options:      r.Options,
	}.toDomain()
}

type optionRequest struct {
	Text         string `json:"option_text" validate:"required"`
	IsCorrect    bool   `json:"is_correct"`
	DisplayOrder int    `json:"display_order"`
}

func (r questionRequest) toDomain() domain.Question {
	points := r.Points
	if points == 0 {
		points = 1
	}
	options := make([]domain.AnswerOption, 0, len(r.Options))
	for _, o := range r.Options {
		options = append(options, domain.AnswerOption{Text: o.Text, IsCorrect: o.IsCorrect, DisplayOrder: o.DisplayOrder})
	}
	return domain.Question{
		QuizID:       r.QuizID,
		Type:         domain.QuestionType(r.Type),
		Text:         r.Text,
		Points:       points,
		DisplayOrder: r.DisplayOrder,
		Options:      options,
	}
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decode reads a JSON body into dst and validates it.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return domain.Invalid("invalid request body")
	}
	if err := s.validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return domain.Invalid(describe(fieldErrs[0]))
		}
		return domain.Invalid("invalid request body")
	}
	return nil
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
