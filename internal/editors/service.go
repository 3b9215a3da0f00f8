package editors

import (
	"context"
	"errors"

	"github.com/helperkit/tagstore/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// Service encapsulates editor account logic
type Service struct {
	repo EditorRepository
}

func NewService(r EditorRepository) *Service {
	return &Service{repo: r}
}

// Authenticate checks a username/password pair and returns the editor on success.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.Editor, error) {
	e, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(e.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return e, nil
}

func (s *Service) GetByUsername(ctx context.Context, username string) (*models.Editor, error) {
	return s.repo.GetByUsername(ctx, username)
}

// EnsureBootstrap seeds (or refreshes) the bootstrap editor account so a
// fresh deployment always has one helper able to log in. No-op when the
// username is empty.
func (s *Service) EnsureBootstrap(ctx context.Context, username, password string) (*models.Editor, error) {
	if username == "" || password == "" {
		return nil, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	e := &models.Editor{
		Username:     username,
		DisplayName:  username,
		PasswordHash: string(hash),
		Role:         models.RoleHelper,
	}
	return s.repo.UpsertByUsername(ctx, e)
}
