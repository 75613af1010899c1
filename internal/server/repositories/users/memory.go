package users

import (
	"context"
	"sync"
	"time"

	"github.com/listenalong/backend/internal/common"
	"github.com/listenalong/backend/internal/server/models"
)

// MemoryRepository is a mutex-guarded in-memory Repository, used in tests
// and by the in-memory repository manager. Records are copied on the way in
// and out so callers never share memory with the store.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]*models.User)}
}

func (r *MemoryRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; ok {
		return common.ErrorAlreadyExists
	}
	u := cloneUser(user)
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	r.users[user.ID] = u
	return nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return cloneUser(u), nil
}

func (r *MemoryRepository) SetSecret(ctx context.Context, id, secret string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.SessionSecret = secret
	u.Online = true
	return nil
}

func (r *MemoryRepository) ClearSession(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil
	}
	u.SessionSecret = ""
	u.Online = false
	u.CurrentTrack = nil
	return nil
}

func (r *MemoryRepository) AddCapability(ctx context.Context, id, capability string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	for _, c := range u.Capabilities {
		if c == capability {
			return nil
		}
	}
	u.Capabilities = append(u.Capabilities, capability)
	return nil
}

func (r *MemoryRepository) UpdateTrack(ctx context.Context, id string, track *models.Track) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.CurrentTrack = cloneTrack(track)
	return nil
}

func (r *MemoryRepository) CountAll(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.users)), nil
}

func (r *MemoryRepository) CountOnline(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, u := range r.users {
		if u.Online {
			n++
		}
	}
	return n, nil
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Capabilities = append([]string(nil), u.Capabilities...)
	c.CurrentTrack = cloneTrack(u.CurrentTrack)
	return &c
}

func cloneTrack(t *models.Track) *models.Track {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
