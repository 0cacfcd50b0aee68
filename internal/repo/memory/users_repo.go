package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/studyqr/api/internal/domain/user"
)

// UsersRepo is an in-memory stand-in for the postgres store, used in tests
// and local experiments. It enforces the same email uniqueness contract.
type UsersRepo struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]user.User
	notes  *NotesRepo // set by NewNotesRepo; Delete cascades into it
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		nextID: 1,
		items:  make(map[int64]user.User),
	}
}

func (r *UsersRepo) Create(ctx context.Context, name, email, passwordHash string, createdAt time.Time) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.items {
		if u.Email == email {
			return user.User{}, user.ErrEmailTaken
		}
	}

	u := user.User{
		ID:           r.nextID,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    createdAt,
	}
	r.nextID++
	r.items[u.ID] = u

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.items {
		if u.Email == email {
			return u, nil
		}
	}

	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]user.User, 0, len(r.items))

	for _, u := range r.items {
		out = append(out, u)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (r *UsersRepo) UpdateName(ctx context.Context, id int64, newName string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	u.Name = newName
	r.items[id] = u

	return u, nil
}

// Delete removes the user and, like the foreign key cascade in postgres,
// every note the user owns. The notes lock is taken after the users lock
// is released; NotesRepo.Create acquires them in the opposite order.
func (r *UsersRepo) Delete(ctx context.Context, id int64) (user.User, error) {
	r.mu.Lock()

	u, ok := r.items[id]

	if !ok {
		r.mu.Unlock()
		return user.User{}, user.ErrNotFound
	}

	delete(r.items, id)
	r.mu.Unlock()

	if r.notes != nil {
		r.notes.deleteByUser(id)
	}

	return u, nil
}
