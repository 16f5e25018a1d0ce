package user

import (
	"errors"
	"time"
)

type User struct {
	ID          string    `json:"id"`
	FirebaseUID string    `json:"firebaseUID"`
	Name        string    `json:"name,omitempty"`
	Email       string    `json:"email"`
	CreatedAt   time.Time `json:"createdAt"`
}

var (
	ErrNotFound = errors.New("user not found")
	// returned when the store rejects a second user with the same
	// firebaseUID or email
	ErrDuplicate = errors.New("user already exists")
)

type RegisterRequest struct {
	FirebaseUID string `json:"firebaseUID" binding:"required"`
	Name        string `json:"name" binding:"omitempty,max=120"`
	Email       string `json:"email" binding:"required,email"`
}
