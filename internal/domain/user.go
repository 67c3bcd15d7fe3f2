package domain

import (
	"context"
	"time"
)

type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	Insert(ctx context.Context, user *User) error
}

// Session is the authenticated state attached to an opaque token.
type Session struct {
	Token     string
	UserID    string
	Email     string
	ExpiresAt time.Time
}

// SessionEventKind classifies a change of authentication state.
type SessionEventKind int

const (
	SessionSignedIn SessionEventKind = iota + 1
	SessionSignedOut
	SessionExpired
)

func (k SessionEventKind) String() string {
	switch k {
	case SessionSignedIn:
		return "signed_in"
	case SessionSignedOut:
		return "signed_out"
	case SessionExpired:
		return "expired"
	}
	return "unknown"
}

// SessionEvent is published by the auth gateway whenever a token changes state.
type SessionEvent struct {
	Kind  SessionEventKind
	Token string
	Email string
}
