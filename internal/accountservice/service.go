// Package accountservice manages business logic layer of account balances.
package accountservice

import (
	"context"

	"github.com/kodbank/kodbank/internal/domain"
)

// Repo provides data access layer interface needed by account service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package accountservice
type Repo interface {
	Get(ctx context.Context, id int64) (domain.User, error)
}

// Service facilitates account service layer logic.
type Service struct {
	repo Repo
}

// New returns account service struct to manage account business logic.
func New(ar Repo) *Service {
	return &Service{repo: ar}
}

// Get returns the account owner for the given user ID.
func (s *Service) Get(ctx context.Context, id int64) (domain.User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return user, err
	}

	return user, nil
}
