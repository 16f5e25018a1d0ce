// Package project holds the project entity, its request shapes and
// the errors shared by every storage backend.
package project

import (
	"errors"
	"time"
)

// Project is a showcased piece of work. LikedBy always has exactly
// Likes entries, each a distinct firebase UID.
type Project struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	GithubRepo  string    `json:"githubRepo"`
	LiveDemo    string    `json:"liveDemo,omitempty"`
	AuthorUID   string    `json:"authorFirebaseUID"`
	Likes       int       `json:"likes"`
	LikedBy     []string  `json:"likedBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

var ErrNotFound = errors.New("project not found")

type CreateProjectRequest struct {
	Title       string   `json:"title" binding:"required,max=200"`
	Description string   `json:"description" binding:"required,max=2000"`
	Tags        []string `json:"tags" binding:"omitempty,max=25,dive,min=1,max=50"`
	GithubRepo  string   `json:"githubRepo" binding:"required,max=500"`
	LiveDemo    string   `json:"liveDemo" binding:"omitempty,max=500"`
	FirebaseUID string   `json:"firebaseUID" binding:"required"`
}

// UpdateProjectRequest patches only the fields the caller sent. Nil
// means "leave as is"; likes, likedBy and the author are never
// patchable through this shape.
type UpdateProjectRequest struct {
	Title       *string   `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string   `json:"description" binding:"omitempty,min=1,max=2000"`
	Tags        *[]string `json:"tags" binding:"omitempty,max=25,dive,min=1,max=50"`
	GithubRepo  *string   `json:"githubRepo" binding:"omitempty,min=1,max=500"`
	LiveDemo    *string   `json:"liveDemo" binding:"omitempty,max=500"`
	FirebaseUID string    `json:"firebaseUID" binding:"required"`
}

type DeleteProjectRequest struct {
	FirebaseUID string `json:"firebaseUID" binding:"required"`
}

type LikeRequest struct {
	FirebaseUID string `json:"firebaseUID" binding:"required"`
}

// ListFilter narrows a listing. Nil fields do not filter; set fields
// combine with AND.
type ListFilter struct {
	Tag    *string
	Search *string
}
