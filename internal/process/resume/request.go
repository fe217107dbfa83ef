package resume

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/newsdesk/resume-service/internal/core/domain"
	apperrors "github.com/newsdesk/resume-service/internal/core/errors"
)

// ModelSelection names the provider and model chosen in the UI.
type ModelSelection struct {
	Model    string `json:"model" validate:"required"`
	Provider string `json:"provider" validate:"required"`
}

// Request is the body of a generate-resume call. StartDate and EndDate are
// advisory and never change the pipeline outcome.
type Request struct {
	Manual        bool             `json:"manual"`
	Content       []domain.Article `json:"content" validate:"required,dive"`
	SelectedModel ModelSelection   `json:"selectedModel"`
	StartDate     string           `json:"startDate,omitempty"`
	EndDate       string           `json:"endDate,omitempty"`
}

// Validate checks the request shape.
func (r *Request) Validate() error {
	if err := validator.New().Struct(r); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrInvalidRequest, err)
	}

	return nil
}

// Result is what a run hands back, on success or failure.
type Result struct {
	Resume   string                   `json:"resume"`
	Logs     []domain.LogEntry        `json:"logs"`
	Strategy Strategy                 `json:"-"`
	Selected []domain.SelectedArticle `json:"-"`
}
