package repositories

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"usermgmt/internal/models"
)

// GORMUserRepository is a GORM implementation of UserRepository.
//
// IDs come from an in-process counter seeded from MAX(id) rather than
// the database autoincrement, so a deleted user's ID is never handed
// out again. The repository mutex plus a transaction per write keeps
// the uniqueness check and the mutation atomic, matching the in-memory
// implementation. Insertion order equals ID order because the counter
// is monotonic.
type GORMUserRepository struct {
	db     *gorm.DB
	nextID int
	mu     sync.RWMutex
}

// NewGORMUserRepository creates a repository on top of db. The caller
// is expected to have migrated the models.User schema already.
func NewGORMUserRepository(db *gorm.DB) (*GORMUserRepository, error) {
	var maxID int
	row := db.Model(&models.User{}).Select("COALESCE(MAX(id), 0)").Row()
	if err := row.Scan(&maxID); err != nil {
		return nil, fmt.Errorf("failed to seed user ID counter: %w", err)
	}
	return &GORMUserRepository{db: db, nextID: maxID + 1}, nil
}

// Create stores a new user in the database.
func (r *GORMUserRepository) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check email uniqueness: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("%w: %s", ErrEmailTaken, user.Email)
		}

		user.ID = r.nextID
		user.CreatedAt = time.Now()
		user.IsActive = true

		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		r.nextID++
		return nil
	})
}

// GetAll returns users ordered by ID, sliced by skip and limit.
func (r *GORMUserRepository) GetAll(skip, limit int) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		return []models.User{}, nil
	}

	users := make([]models.User, 0, limit)
	if err := r.db.Order("id").Offset(skip).Limit(limit).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// GetByID retrieves a user by ID from the database.
func (r *GORMUserRepository) GetByID(id int) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var user models.User
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrUserNotFound, id)
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return &user, nil
}

// Update applies the set fields of upd inside one transaction.
func (r *GORMUserRepository) Update(id int, upd models.UserUpdate) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var user models.User
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: id %d", ErrUserNotFound, id)
			}
			return fmt.Errorf("failed to get user %d: %w", id, err)
		}

		if upd.Email != nil {
			var count int64
			if err := tx.Model(&models.User{}).
				Where("email = ? AND id <> ?", *upd.Email, id).
				Count(&count).Error; err != nil {
				return fmt.Errorf("failed to check email uniqueness: %w", err)
			}
			if count > 0 {
				return fmt.Errorf("%w: %s", ErrEmailTaken, *upd.Email)
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

		// Save writes every column, including a false IsActive.
		if err := tx.Save(&user).Error; err != nil {
			return fmt.Errorf("failed to update user %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Delete removes a user by ID.
func (r *GORMUserRepository) Delete(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := r.db.Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: id %d", ErrUserNotFound, id)
	}
	return nil
}
