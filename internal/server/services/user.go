package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/communityfeed/internal/common"
	"github.com/dmitrijs2005/communityfeed/internal/server/models"
	"github.com/dmitrijs2005/communityfeed/internal/server/repositories/repomanager"
)

type RegisterInput struct {
	Email    string
	Password string
	Name     *string
	Username *string
}

// UserService handles registration, login, session resolution and profiles.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	sessions    SessionManager
	hasher      PasswordHasher

	dummyOnce sync.Once
	dummyHash string
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, sessions SessionManager, hasher PasswordHasher) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		sessions:    sessions,
		hasher:      hasher,
	}
}

// Register creates an account and opens a session for it.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (user *models.User, token string, err error) {
	ctx, span := tracer.Start(ctx, "UserService.Register")
	defer func() { endSpan(span, err) }()

	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return nil, "", validationError("email and password are required")
	}

	repo := s.repomanager.Users(s.db)

	_, err = repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, "", fmt.Errorf("email %w", common.ErrorAlreadyExists)
	case !errors.Is(err, common.ErrorNotFound):
		return nil, "", wrap(err, "error searching user")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, "", wrap(err, "error hashing password")
	}

	created, err := repo.Create(ctx, &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         nonEmpty(in.Name),
		Username:     nonEmpty(in.Username),
	})
	if err != nil {
		return nil, "", wrap(err, "error creating user")
	}

	token, err = s.sessions.Issue(created.ID)
	if err != nil {
		return nil, "", wrap(err, "error issuing session")
	}

	return created.Public(), token, nil
}

// Login verifies credentials. An unknown email and a wrong password fail
// identically with common.ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, email, password string) (user *models.User, token string, err error) {
	ctx, span := tracer.Start(ctx, "UserService.Login")
	defer func() { endSpan(span, err) }()

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, "", common.ErrInvalidCredentials
	}

	found, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// keep the response time close to that of a wrong password
			s.hasher.Verify(s.dummy(), password)
			return nil, "", common.ErrInvalidCredentials
		}
		return nil, "", wrap(err, "error searching user")
	}

	if !s.hasher.Verify(found.PasswordHash, password) {
		return nil, "", common.ErrInvalidCredentials
	}

	token, err = s.sessions.Issue(found.ID)
	if err != nil {
		return nil, "", wrap(err, "error issuing session")
	}

	return found.Public(), token, nil
}

func (s *UserService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("community-feed-dummy-password")
	})
	return s.dummyHash
}

// ResolveSession maps a presented credential to its user id without touching
// the store.
func (s *UserService) ResolveSession(_ context.Context, token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", common.ErrNoToken
	}

	userID, err := s.sessions.Verify(token)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}
	return userID, nil
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	if !validID(userID) {
		return nil, fmt.Errorf("user %w", common.ErrorNotFound)
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, wrap(err, "error loading user")
	}
	return user.Public(), nil
}

// UpdateProfile merges the non-nil fields of upd into the stored profile.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, upd models.ProfileUpdate) (*models.User, error) {
	if upd.Username != nil {
		username := strings.TrimSpace(*upd.Username)
		if username == "" {
			return nil, validationError("username must not be empty")
		}
		upd.Username = &username
	}
	if upd.Empty() {
		return s.GetProfile(ctx, userID)
	}
	if !validID(userID) {
		return nil, fmt.Errorf("user %w", common.ErrorNotFound)
	}

	user, err := s.repomanager.Users(s.db).UpdateProfile(ctx, userID, upd)
	if err != nil {
		return nil, wrap(err, "error updating user")
	}
	return user.Public(), nil
}
