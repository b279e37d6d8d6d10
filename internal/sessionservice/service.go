// Package sessionservice manages business logic layer of sessions.
package sessionservice

import (
	"context"
	"time"

	"github.com/kodbank/kodbank/internal/domain"
	"github.com/kodbank/kodbank/pkg/configpkg"
	"github.com/kodbank/kodbank/pkg/tokenpkg"

	"github.com/rs/zerolog"
)

// Repo provides data access layer interface needed by session service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package sessionservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateSessionParams) (domain.Session, error)
	Get(ctx context.Context, token string) (domain.Session, error)
	Delete(ctx context.Context, token string) error
}

// Service facilitates session service layer logic.
type Service struct {
	repo       Repo
	TokenMaker tokenpkg.Maker
	config     configpkg.Config
}

// New returns session service struct to manage session business logic.
func New(sr Repo, config configpkg.Config, tokenMaker tokenpkg.Maker) (*Service, error) {
	return &Service{
		repo:       sr,
		TokenMaker: tokenMaker,
		config:     config,
	}, nil
}

// Create issues an access token for the given user and persists it so that
// logout can revoke it later.
func (s *Service) Create(ctx context.Context, userID int64) (string, time.Time, error) {
	accessToken, payload, err := s.TokenMaker.CreateToken(userID, s.config.AccessTokenDuration)
	if err != nil {
		return "", time.Time{}, err
	}

	arg := domain.CreateSessionParams{
		ID:        payload.ID,
		UserID:    userID,
		Token:     accessToken,
		ExpiresAt: payload.ExpiredAt,
	}

	if _, err := s.repo.Create(ctx, arg); err != nil {
		return "", time.Time{}, err
	}

	return accessToken, payload.ExpiredAt, nil
}

// Verify checks the token signature and that the token is still present in
// the store, so revoked tokens fail even before they expire.
func (s *Service) Verify(ctx context.Context, token string) (*tokenpkg.Payload, error) {
	l := zerolog.Ctx(ctx)

	payload, err := s.TokenMaker.VerifyToken(token)
	if err != nil {
		return nil, err
	}

	sess, err := s.repo.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	if time.Now().After(sess.ExpiresAt) {
		l.Info().Int64("user_id", sess.UserID).Msg("expired session")
		return nil, domain.ErrExpiredSession
	}

	return payload, nil
}

// Revoke deletes the stored token.
func (s *Service) Revoke(ctx context.Context, token string) error {
	return s.repo.Delete(ctx, token)
}
