package users

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/userreg/internal/common"
	"github.com/dmitrijs2005/userreg/internal/server/models"
)

// InMemoryRepository keeps users in a map keyed by email. Create checks and
// inserts under one lock, so concurrent registrations of the same email have
// exactly one winner.
type InMemoryRepository struct {
	mu    sync.RWMutex
	users map[string]*models.User
	now   func() time.Time
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{users: make(map[string]*models.User), now: time.Now}
}

func (r *InMemoryRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.users[email]
	return ok, nil
}

func (r *InMemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.Email]; ok {
		return nil, common.ErrEmailAlreadyExists
	}

	now := r.now()
	saved := clone(user)
	saved.Created = now
	saved.Modified = now
	if saved.LastLogin.IsZero() {
		saved.LastLogin = now
	}
	for i := range saved.Phones {
		saved.Phones[i].UserID = saved.ID
	}

	r.users[saved.Email] = saved

	return clone(saved), nil
}

func (r *InMemoryRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(u), nil
}

// Len returns the number of stored users.
func (r *InMemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

func clone(u *models.User) *models.User {
	c := *u
	c.Phones = append([]models.Phone(nil), u.Phones...)
	return &c
}
