package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/hyperjump/kotae/internal/models"
)

func newStorageForTest(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "kotae.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStorage: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateAndGetUser(t *testing.T) {
	s := newStorageForTest(t)
	ctx := context.Background()

	created, err := s.CreateUser(ctx, "Alice", "alice@example.com")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if created.ID == 0 {
		t.Error("created user has no ID")
	}

	got, err := s.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got.ID != created.ID || got.Name != "Alice" || got.Email != "alice@example.com" {
		t.Errorf("got %+v", got)
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s := newStorageForTest(t)
	ctx := context.Background()

	if _, err := s.CreateUser(ctx, "Alice", "alice@example.com"); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := s.CreateUser(ctx, "Other Alice", "alice@example.com"); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("got %v, want ErrEmailTaken", err)
	}
}

func TestGetUserByEmail_NotFound(t *testing.T) {
	s := newStorageForTest(t)
	if _, err := s.GetUserByEmail(context.Background(), "ghost@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("got %v, want ErrUserNotFound", err)
	}
}

func TestHistory_ChronologicalWithLimit(t *testing.T) {
	s := newStorageForTest(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "Bob", "bob@example.com")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	turns := []models.Message{
		{Role: models.RoleUser, Content: "first question"},
		{Role: models.RoleAssistant, Content: "first answer"},
		{Role: models.RoleUser, Content: "second question"},
		{Role: models.RoleAssistant, Content: "second answer"},
	}
	for _, m := range turns {
		if err := s.AppendMessage(ctx, u.ID, m); err != nil {
			t.Fatalf("AppendMessage: %v", err)
		}
	}

	got, err := s.History(ctx, u.ID, 2)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d messages, want 2", len(got))
	}
	if got[0].Content != "second question" || got[1].Content != "second answer" {
		t.Errorf("history not chronological tail: %+v", got)
	}
	if got[1].Role != models.RoleAssistant {
		t.Errorf("role = %q", got[1].Role)
	}

	all, err := s.History(ctx, u.ID, 0)
	if err != nil {
		t.Fatalf("History all: %v", err)
	}
	if len(all) != 4 || all[0].Content != "first question" {
		t.Errorf("full history wrong: %+v", all)
	}
}

func TestHistory_EmptyUser(t *testing.T) {
	s := newStorageForTest(t)
	got, err := s.History(context.Background(), 42, 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d messages for unknown user", len(got))
	}
}
