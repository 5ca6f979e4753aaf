package db

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/arzan03/wastetrack/internal/common"
	"github.com/arzan03/wastetrack/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryURI selects the in-process stores instead of MongoDB.
const MemoryURI = "memory"

// MemoryUserRepository is a process-local UserRepository for development and tests.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[primitive.ObjectID]models.User)}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Username == user.Username {
			return fmt.Errorf("%w: user already exists", common.ErrConflict)
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepository) FindByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("%w: user not found", common.ErrNotFound)
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user not found", common.ErrNotFound)
	}
	return &u, nil
}

func (r *MemoryUserRepository) List(_ context.Context) ([]models.User, error) {
	return r.filter(func(models.User) bool { return true }), nil
}

func (r *MemoryUserRepository) ListPendingVolunteers(_ context.Context) ([]models.User, error) {
	return r.filter(func(u models.User) bool { return u.PendingVolunteer() }), nil
}

func (r *MemoryUserRepository) filter(keep func(models.User) bool) []models.User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		if keep(u) {
			u.Password = ""
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID.Hex() < users[j].ID.Hex() })
	return users
}

func (r *MemoryUserRepository) SetPassword(_ context.Context, id primitive.ObjectID, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("%w: user not found", common.ErrNotFound)
	}
	u.Password = hash
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return nil
}

func (r *MemoryUserRepository) ApproveVolunteer(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("%w: user not found", common.ErrNotFound)
	}
	if !u.PendingVolunteer() {
		return fmt.Errorf("%w: user is not pending volunteer approval", common.ErrConflict)
	}
	u.Role = models.RoleVolunteer
	u.VolunteerRequestPending = false
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return nil
}

// MemoryWasteRepository is a process-local WasteRepository for development and tests.
type MemoryWasteRepository struct {
	mu      sync.RWMutex
	entries map[primitive.ObjectID]models.WasteEntry
}

func NewMemoryWasteRepository() *MemoryWasteRepository {
	return &MemoryWasteRepository{entries: make(map[primitive.ObjectID]models.WasteEntry)}
}

func (r *MemoryWasteRepository) Create(_ context.Context, entry *models.WasteEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	r.entries[entry.ID] = *entry
	return nil
}

func (r *MemoryWasteRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.WasteEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: waste entry not found", common.ErrNotFound)
	}
	return &e, nil
}

func (r *MemoryWasteRepository) List(_ context.Context) ([]models.WasteEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]models.WasteEntry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CollectedAt.Equal(entries[j].CollectedAt) {
			return entries[i].ID.Hex() < entries[j].ID.Hex()
		}
		return entries[i].CollectedAt.Before(entries[j].CollectedAt)
	})
	return entries, nil
}

func (r *MemoryWasteRepository) Update(_ context.Context, id primitive.ObjectID, upd models.WasteUpdate) (*models.WasteEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: waste entry not found", common.ErrNotFound)
	}
	if upd.Location != nil {
		e.Location = *upd.Location
	}
	if upd.Weight != nil {
		e.Weight = *upd.Weight
	}
	if upd.Category != nil {
		e.Category = *upd.Category
	}
	r.entries[id] = e
	return &e, nil
}

func (r *MemoryWasteRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[id]; !ok {
		return fmt.Errorf("%w: waste entry not found", common.ErrNotFound)
	}
	delete(r.entries, id)
	return nil
}

func (r *MemoryWasteRepository) Summary(ctx context.Context, timezone string) (*models.Summary, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("summary timezone: %w", err)
	}
	entries, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	return models.Summarize(entries, loc), nil
}
