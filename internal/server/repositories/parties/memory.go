package parties

import (
	"context"
	"sync"
	"time"

	"github.com/listenalong/backend/internal/common"
	"github.com/listenalong/backend/internal/server/models"
)

// MemoryRepository is a mutex-guarded in-memory Repository, used in tests
// and by the in-memory repository manager.
type MemoryRepository struct {
	mu      sync.RWMutex
	parties map[string]*models.Party
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{parties: make(map[string]*models.Party)}
}

func (r *MemoryRepository) Insert(ctx context.Context, party *models.Party) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.parties[party.Code]; ok {
		return common.ErrorAlreadyExists
	}
	p := cloneParty(party)
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	r.parties[party.Code] = p
	return nil
}

func (r *MemoryRepository) GetByCode(ctx context.Context, code string) (*models.Party, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.parties[code]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return cloneParty(p), nil
}

func (r *MemoryRepository) FindByParticipant(ctx context.Context, userID string) (*models.Party, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.parties {
		if p.HasParticipant(userID) {
			return cloneParty(p), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) UpdateTrack(ctx context.Context, code string, track *models.Track) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.parties[code]
	if !ok {
		return common.ErrorNotFound
	}
	p.CurrentTrack = cloneTrack(track)
	return nil
}

func (r *MemoryRepository) AddParticipant(ctx context.Context, code, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.parties[code]
	if !ok {
		return common.ErrorNotFound
	}
	if !p.HasParticipant(userID) {
		p.Participants = append(p.Participants, userID)
	}
	return nil
}

func (r *MemoryRepository) RemoveParticipant(ctx context.Context, code, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.parties[code]
	if !ok {
		return common.ErrorNotFound
	}
	kept := p.Participants[:0]
	for _, id := range p.Participants {
		if id != userID {
			kept = append(kept, id)
		}
	}
	p.Participants = kept
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.parties, code)
	return nil
}

func cloneParty(p *models.Party) *models.Party {
	c := *p
	c.Participants = append([]string(nil), p.Participants...)
	c.CurrentTrack = cloneTrack(p.CurrentTrack)
	return &c
}

func cloneTrack(t *models.Track) *models.Track {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
