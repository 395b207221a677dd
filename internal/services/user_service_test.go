package services_test

import (
	"fmt"
	"testing"
	"time"

	"usermgmt/internal/models"
	"usermgmt/internal/repositories"
	"usermgmt/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetAll(skip, limit int) ([]models.User, error) {
	args := m.Called(skip, limit)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(id int) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(id int, upd models.UserUpdate) (*models.User, error) {
	args := m.Called(id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Delete(id int) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of services.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishUserEvent(event string, payload map[string]interface{}) error {
	args := m.Called(event, payload)
	return args.Error(0)
}

func TestUserService_CreateUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockEvents := new(MockEventPublisher)
	service := services.NewUserService(mockRepo, mockEvents)

	req := models.UserCreate{Name: "John Doe", Email: "john@example.com", Age: 30}

	mockRepo.On("Create", mock.MatchedBy(func(u *models.User) bool {
		return u.Name == req.Name && u.Email == req.Email && u.Age == req.Age
	})).Run(func(args mock.Arguments) {
		u := args.Get(0).(*models.User)
		u.ID = 1
		u.CreatedAt = time.Now()
		u.IsActive = true
	}).Return(nil).Once()
	mockEvents.On("PublishUserEvent", "user.created", mock.Anything).Return(nil).Once()

	user, err := service.CreateUser(req)

	assert.NoError(t, err)
	assert.Equal(t, 1, user.ID)
	assert.True(t, user.IsActive)
	mockRepo.AssertExpectations(t)
	mockEvents.AssertExpectations(t)
}

func TestUserService_CreateUser_Conflict(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockEvents := new(MockEventPublisher)
	service := services.NewUserService(mockRepo, mockEvents)

	mockRepo.On("Create", mock.Anything).Return(repositories.ErrEmailTaken).Once()

	user, err := service.CreateUser(models.UserCreate{Name: "John", Email: "dup@example.com", Age: 30})

	assert.ErrorIs(t, err, repositories.ErrEmailTaken)
	assert.Nil(t, user)
	// No event may leak out of a failed create.
	mockEvents.AssertNotCalled(t, "PublishUserEvent", mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestUserService_CreateUser_PublishFailureIsBestEffort(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockEvents := new(MockEventPublisher)
	service := services.NewUserService(mockRepo, mockEvents)

	mockRepo.On("Create", mock.Anything).Return(nil).Once()
	mockEvents.On("PublishUserEvent", "user.created", mock.Anything).
		Return(fmt.Errorf("broker unavailable")).Once()

	user, err := service.CreateUser(models.UserCreate{Name: "John", Email: "john@example.com", Age: 30})

	// A broker failure never fails the operation.
	assert.NoError(t, err)
	assert.NotNil(t, user)
	mockEvents.AssertExpectations(t)
}

func TestUserService_CreateUser_NilPublisher(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewUserService(mockRepo, nil)

	mockRepo.On("Create", mock.Anything).Return(nil).Once()

	_, err := service.CreateUser(models.UserCreate{Name: "John", Email: "john@example.com", Age: 30})
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestUserService_GetAllUsers(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewUserService(mockRepo, nil)

	expected := []models.User{
		{ID: 1, Name: "John Doe", Email: "john@example.com", Age: 30},
		{ID: 2, Name: "Jane Doe", Email: "jane@example.com", Age: 25},
	}
	mockRepo.On("GetAll", 0, 100).Return(expected, nil).Once()

	users, err := service.GetAllUsers(0, 100)

	assert.NoError(t, err)
	assert.Equal(t, expected, users)
	mockRepo.AssertExpectations(t)
}

func TestUserService_GetUserByID(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewUserService(mockRepo, nil)

	expected := &models.User{ID: 1, Name: "John Doe", Email: "john@example.com", Age: 30}
	mockRepo.On("GetByID", 1).Return(expected, nil).Once()

	user, err := service.GetUserByID(1)
	assert.NoError(t, err)
	assert.Equal(t, expected, user)

	mockRepo.On("GetByID", 99).Return(nil, repositories.ErrUserNotFound).Once()
	user, err = service.GetUserByID(99)
	assert.ErrorIs(t, err, repositories.ErrUserNotFound)
	assert.Nil(t, user)
	mockRepo.AssertExpectations(t)
}

func TestUserService_UpdateUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockEvents := new(MockEventPublisher)
	service := services.NewUserService(mockRepo, mockEvents)

	age := 31
	upd := models.UserUpdate{Age: &age}
	updated := &models.User{ID: 1, Name: "John Doe", Email: "john@example.com", Age: 31, IsActive: true}

	mockRepo.On("Update", 1, upd).Return(updated, nil).Once()
	mockEvents.On("PublishUserEvent", "user.updated", mock.Anything).Return(nil).Once()

	user, err := service.UpdateUser(1, upd)
	assert.NoError(t, err)
	assert.Equal(t, updated, user)
	mockRepo.AssertExpectations(t)
	mockEvents.AssertExpectations(t)
}

func TestUserService_UpdateUser_NotFound(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockEvents := new(MockEventPublisher)
	service := services.NewUserService(mockRepo, mockEvents)

	age := 31
	mockRepo.On("Update", 99, mock.Anything).Return(nil, repositories.ErrUserNotFound).Once()

	user, err := service.UpdateUser(99, models.UserUpdate{Age: &age})
	assert.ErrorIs(t, err, repositories.ErrUserNotFound)
	assert.Nil(t, user)
	mockEvents.AssertNotCalled(t, "PublishUserEvent", mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestUserService_DeleteUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockEvents := new(MockEventPublisher)
	service := services.NewUserService(mockRepo, mockEvents)

	existing := &models.User{ID: 1, Name: "John Doe", Email: "john@example.com", Age: 30}
	mockRepo.On("GetByID", 1).Return(existing, nil).Once()
	mockRepo.On("Delete", 1).Return(nil).Once()
	mockEvents.On("PublishUserEvent", "user.deleted", mock.Anything).Return(nil).Once()

	assert.NoError(t, service.DeleteUser(1))
	mockRepo.AssertExpectations(t)
	mockEvents.AssertExpectations(t)
}

func TestUserService_DeleteUser_NotFound(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockEvents := new(MockEventPublisher)
	service := services.NewUserService(mockRepo, mockEvents)

	mockRepo.On("GetByID", 99).Return(nil, repositories.ErrUserNotFound).Once()

	err := service.DeleteUser(99)
	assert.ErrorIs(t, err, repositories.ErrUserNotFound)
	mockRepo.AssertNotCalled(t, "Delete", mock.Anything)
	mockEvents.AssertNotCalled(t, "PublishUserEvent", mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}
