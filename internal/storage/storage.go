// Package storage defines the persistence interface for users and chat history.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/kotae/internal/models"
)

var (
	// ErrEmailTaken means a user with that email already exists.
	ErrEmailTaken = errors.New("email already registered")
	// ErrUserNotFound means no user matches the given email or ID.
	ErrUserNotFound = errors.New("user not found")
)

// Storage defines user and conversation persistence operations.
type Storage interface {
	// User operations
	CreateUser(ctx context.Context, name, email string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// Conversation operations
	AppendMessage(ctx context.Context, userID int64, msg models.Message) error
	History(ctx context.Context, userID int64, limit int) ([]models.Message, error)

	Close() error
}
