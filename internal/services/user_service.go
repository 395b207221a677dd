package services

import (
	"log"

	"usermgmt/internal/models"
	"usermgmt/internal/repositories"
)

// EventPublisher publishes user lifecycle events. *rabbitmq.Client
// satisfies it; tests substitute a mock.
type EventPublisher interface {
	PublishUserEvent(event string, payload map[string]interface{}) error
}

// UserService handles business logic related to users.
type UserService struct {
	repo   repositories.UserRepository
	events EventPublisher
}

// NewUserService creates a new UserService. events may be nil, in which
// case lifecycle events are not published.
func NewUserService(repo repositories.UserRepository, events EventPublisher) *UserService {
	return &UserService{
		repo:   repo,
		events: events,
	}
}

// CreateUser stores a new user built from the create request and
// returns it with its assigned ID and timestamps.
func (s *UserService) CreateUser(req models.UserCreate) (*models.User, error) {
	user := &models.User{
		Name:  req.Name,
		Email: req.Email,
		Age:   req.Age,
	}
	if err := s.repo.Create(user); err != nil {
		return nil, err
	}

	s.publish("user.created", user)
	return user, nil
}

// GetAllUsers retrieves users in insertion order, paginated.
func (s *UserService) GetAllUsers(skip, limit int) ([]models.User, error) {
	return s.repo.GetAll(skip, limit)
}

// GetUserByID retrieves a single user by ID.
func (s *UserService) GetUserByID(id int) (*models.User, error) {
	return s.repo.GetByID(id)
}

// UpdateUser applies a partial update and returns the updated user.
func (s *UserService) UpdateUser(id int, upd models.UserUpdate) (*models.User, error) {
	user, err := s.repo.Update(id, upd)
	if err != nil {
		return nil, err
	}

	s.publish("user.updated", user)
	return user, nil
}

// DeleteUser removes a user by ID.
func (s *UserService) DeleteUser(id int) error {
	user, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}

	s.publish("user.deleted", user)
	return nil
}

// publish sends a lifecycle event best-effort: a broker failure is
// logged and never affects the operation's outcome.
func (s *UserService) publish(event string, user *models.User) {
	if s.events == nil {
		return
	}
	payload := map[string]interface{}{
		"event":   event,
		"user_id": user.ID,
		"email":   user.Email,
	}
	if err := s.events.PublishUserEvent(event, payload); err != nil {
		log.Printf("Failed to publish %s event for user %d: %v", event, user.ID, err)
	}
}
