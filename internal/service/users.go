package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/studyqr/api/internal/domain/user"
	"github.com/studyqr/api/internal/security"
)

var (
	ErrInvalidInput       = errors.New("missing or invalid input")
	ErrInvalidCredentials = errors.New("email or password is incorrect")
)

// UserStore is the slice of the record store the user service needs.
type UserStore interface {
	Create(ctx context.Context, name, email, passwordHash string, createdAt time.Time) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id int64) (user.User, error)
	List(ctx context.Context) ([]user.User, error)
	UpdateName(ctx context.Context, id int64, newName string) (user.User, error)
	Delete(ctx context.Context, id int64) (user.User, error)
}

type UserService struct {
	store UserStore
}

func NewUserService(store UserStore) *UserService {
	return &UserService{store: store}
}

// Register hashes the password and creates the account. The returned user
// carries the hash internally but never serializes it.
func (s *UserService) Register(ctx context.Context, name, email, password string) (user.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if name == "" || email == "" {
		return user.User{}, ErrInvalidInput
	}

	hash, err := security.HashPassword(password)

	if err != nil {
		if errors.Is(err, security.ErrEmptyPassword) {
			return user.User{}, ErrInvalidInput
		}

		return user.User{}, err
	}

	return s.store.Create(ctx, name, email, hash, time.Now().UTC())
}

// Login verifies credentials by email. An unknown email and a wrong
// password produce the same error so callers cannot enumerate accounts.
func (s *UserService) Login(ctx context.Context, email, password string) (user.User, error) {
	u, err := s.store.GetByEmail(ctx, email)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrInvalidCredentials
		}

		return user.User{}, err
	}

	if !security.CheckPassword(u.PasswordHash, password) {
		return user.User{}, ErrInvalidCredentials
	}

	return u, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]user.User, error) {
	return s.store.List(ctx)
}

func (s *UserService) GetUser(ctx context.Context, id int64) (user.User, error) {
	return s.store.GetByID(ctx, id)
}

func (s *UserService) RenameUser(ctx context.Context, id int64, newName string) (user.User, error) {
	newName = strings.TrimSpace(newName)

	if newName == "" {
		return user.User{}, ErrInvalidInput
	}

	return s.store.UpdateName(ctx, id, newName)
}

// DeleteUser removes the account and returns the prior snapshot.
func (s *UserService) DeleteUser(ctx context.Context, id int64) (user.User, error) {
	return s.store.Delete(ctx, id)
}
