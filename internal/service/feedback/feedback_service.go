package feedback

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/repository"
	log "github.com/sirupsen/logrus"
)

const (
	MaxCommentLength = 2000
	DefaultListLimit = 50
	MaxListLimit     = 500
)

var ErrInvalidInput = errors.New("invalid feedback")

type FeedbackUseCase interface {
	Submit(ctx context.Context, input Input) (*domain.Feedback, error)
	List(ctx context.Context, limit int) ([]domain.Feedback, error)
}

type Input struct {
	UserID  *int64 `json:"-"`
	Email   string `json:"email"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type FeedbackService struct {
	repo repository.FeedbackRepository
}

func NewFeedbackService(repo repository.FeedbackRepository) *FeedbackService {
	return &FeedbackService{repo: repo}
}

func (s *FeedbackService) Submit(ctx context.Context, input Input) (*domain.Feedback, error) {
	email := strings.TrimSpace(input.Email)
	comment := strings.TrimSpace(input.Comment)
	switch {
	case email == "":
		return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
	case input.Rating < 1 || input.Rating > 5:
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidInput)
	case utf8.RuneCountInString(comment) > MaxCommentLength:
		return nil, fmt.Errorf("%w: comment is longer than %d characters", ErrInvalidInput, MaxCommentLength)
	}

	f := &domain.Feedback{UserID: input.UserID, Email: email, Rating: input.Rating, Comment: comment}
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"feedback_id": f.ID, "rating": f.Rating}).Info("feedback received")
	return f, nil
}

// List returns the newest feedback first. Out of range limits fall back to
// the default.
func (s *FeedbackService) List(ctx context.Context, limit int) ([]domain.Feedback, error) {
	if limit <= 0 || limit > MaxListLimit {
		limit = DefaultListLimit
	}
	return s.repo.List(ctx, limit)
}

var _ FeedbackUseCase = (*FeedbackService)(nil)
