package repositories

import (
	"fmt"
	"sync"
	"time"

	"usermgmt/internal/models"
)

// MemoryUserRepository is the in-memory implementation of
// UserRepository. A single RWMutex forms the mutual-exclusion boundary
// around the user table and the ID counter, so the uniqueness check and
// the subsequent insert or update are one atomic unit.
type MemoryUserRepository struct {
	users  map[int]models.User
	order  []int // IDs in insertion order, stable across deletions
	nextID int
	mu     sync.RWMutex
}

// NewMemoryUserRepository creates an empty repository. IDs start at 1.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users:  make(map[int]models.User),
		nextID: 1,
	}
}

// Create stores a new user. The ID counter only advances on success,
// so a rejected duplicate email never burns an ID.
func (r *MemoryUserRepository) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range r.order {
		if r.users[id].Email == user.Email {
			return fmt.Errorf("%w: %s", ErrEmailTaken, user.Email)
		}
	}

	user.ID = r.nextID
	user.CreatedAt = time.Now()
	user.IsActive = true
	r.nextID++

	r.users[user.ID] = *user
	r.order = append(r.order, user.ID)
	return nil
}

// GetAll returns a copy of the insertion-ordered user list, sliced by
// skip and limit. Values past the end degrade to an empty result.
func (r *MemoryUserRepository) GetAll(skip, limit int) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if skip < 0 {
		skip = 0
	}
	if limit < 0 {
		limit = 0
	}
	if skip >= len(r.order) {
		return []models.User{}, nil
	}

	end := skip + limit
	if end > len(r.order) {
		end = len(r.order)
	}

	users := make([]models.User, 0, end-skip)
	for _, id := range r.order[skip:end] {
		users = append(users, r.users[id])
	}
	return users, nil
}

// GetByID returns a copy of the user with the given ID.
func (r *MemoryUserRepository) GetByID(id int) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrUserNotFound, id)
	}
	return &user, nil
}

// Update applies the set fields of upd to the stored user. The email
// uniqueness re-check excludes the user being updated, and no field is
// applied until every check has passed.
func (r *MemoryUserRepository) Update(id int, upd models.UserUpdate) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrUserNotFound, id)
	}

	if upd.Email != nil {
		for _, otherID := range r.order {
			if otherID != id && r.users[otherID].Email == *upd.Email {
				return nil, fmt.Errorf("%w: %s", ErrEmailTaken, *upd.Email)
			}
		}
	}

	if upd.Name != nil {
		user.Name = *upd.Name
	}
	if upd.Email != nil {
		user.Email = *upd.Email
	}
	if upd.Age != nil {
		user.Age = *upd.Age
	}
	if upd.IsActive != nil {
		user.IsActive = *upd.IsActive
	}

	r.users[id] = user
	return &user, nil
}

// Delete removes the user permanently. The ID is never reused because
// the counter only moves forward.
func (r *MemoryUserRepository) Delete(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return fmt.Errorf("%w: id %d", ErrUserNotFound, id)
	}
	delete(r.users, id)

	for i, orderedID := range r.order {
		if orderedID == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
