package app

import (
	"context"

	"github.com/google/uuid"

	"github.com/Kalind02/food-ordering-api/internal/clock"
	"github.com/Kalind02/food-ordering-api/internal/domain"
)

type ContactRepository interface {
	Create(ctx context.Context, msg domain.ContactMessage) error
}

type ContactService struct {
	repo  ContactRepository
	clock clock.Clock
}

func NewContactService(repo ContactRepository, clk clock.Clock) *ContactService {
	return &ContactService{
		repo:  repo,
		clock: clk,
	}
}

func (s *ContactService) SubmitMessage(ctx context.Context, name, email, message string) (domain.ContactMessage, error) {
	if name == "" || email == "" || message == "" {
		return domain.ContactMessage{}, domain.ErrContactFieldsRequired
	}

	msg := domain.ContactMessage{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Message:   message,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		return domain.ContactMessage{}, err
	}
	return msg, nil
}
