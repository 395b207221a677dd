package models

import "time"

// User represents a registered user of the system.
type User struct {
	ID        int       `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(100)" validate:"required,min=1,max=100"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required"`
	Age       int       `json:"age" validate:"min=0,max=150"`
	CreatedAt time.Time `json:"created_at"`
	IsActive  bool      `json:"is_active"`
}

// UserCreate is the request body for creating a user. The registry
// assigns ID, CreatedAt and IsActive; callers never supply them.
type UserCreate struct {
	Name  string `json:"name" validate:"required,min=1,max=100"`
	Email string `json:"email" validate:"required"`
	Age   int    `json:"age" validate:"min=0,max=150"`
}

// UserUpdate is the request body for partially updating a user.
// A nil field means "leave unchanged"; a non-nil field is applied even
// when it carries the zero value, so set fields are validated against
// the same bounds as creation while nil fields skip validation.
type UserUpdate struct {
	Name     *string `json:"name" validate:"omitnil,min=1,max=100"`
	Email    *string `json:"email"`
	Age      *int    `json:"age" validate:"omitnil,min=0,max=150"`
	IsActive *bool   `json:"is_active"`
}

// HealthCheck is the response body of the health endpoint.
type HealthCheck struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}
