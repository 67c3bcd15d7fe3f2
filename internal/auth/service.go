// Package auth is the identity half of the gateway: password accounts, opaque session
// tokens and the notification channel announcing session changes.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Zachkp/design-portfolio/internal/domain"
)

type Options struct {
	AllowSignUp bool
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

type Service struct {
	users  domain.UserRepository
	tokens TokenStore
	broker *Broker
	opts   Options
	log    *slog.Logger

	dummyOnce sync.Once
	dummyHash []byte
}

func NewService(users domain.UserRepository, tokens TokenStore, broker *Broker, opts Options, log *slog.Logger) *Service {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		users:  users,
		tokens: tokens,
		broker: broker,
		opts:   opts,
		log:    log,
	}
}

type credentials struct {
	Email    string `validate:"required,email,max=200"`
	Password string `validate:"required,min=8,max=72"`
}

var validate = validator.New()

func checkCredentials(c credentials) error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &domain.ValidationError{Message: err.Error()}
	}
	switch fe := verrs[0]; {
	case fe.Field() == "Email" && fe.Tag() == "required":
		return &domain.ValidationError{Field: "email", Message: "Please enter your email."}
	case fe.Field() == "Email":
		return &domain.ValidationError{Field: "email", Message: "Please enter a valid email address."}
	case fe.Tag() == "required":
		return &domain.ValidationError{Field: "password", Message: "Please enter your password."}
	case fe.Tag() == "min":
		return &domain.ValidationError{Field: "password", Message: "Password should be at least 8 characters."}
	default:
		return &domain.ValidationError{Field: "password", Message: "Password must be at most 72 characters."}
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp creates an account when self-registration is enabled. It does not sign in.
func (s *Service) SignUp(ctx context.Context, email, password string) (*domain.User, error) {
	if !s.opts.AllowSignUp {
		return nil, domain.ErrSignUpDisabled
	}
	return s.Register(ctx, email, password)
}

// Register creates an account regardless of the sign-up setting.
func (s *Service) Register(ctx context.Context, email, password string) (*domain.User, error) {
	c := credentials{Email: normalizeEmail(email), Password: password}
	if err := checkCredentials(c); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(c.Password), s.opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        c.Email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.ErrAccountExists
		}
		return nil, &domain.GatewayError{Op: "auth.signup", Err: err}
	}
	s.log.Info("account created", "user_id", user.ID)
	return user, nil
}

// SignIn checks a password and opens a session.
func (s *Service) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.GatewayError{Op: "auth.signin", Err: err}
		}
		// Same cost as a wrong password.
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := newToken()
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	session := &domain.Session{Token: token, UserID: user.ID, Email: user.Email}
	if err := s.tokens.Save(ctx, session); err != nil {
		return nil, &domain.GatewayError{Op: "auth.signin", Err: err}
	}
	s.broker.Publish(domain.SessionEvent{Kind: domain.SessionSignedIn, Token: token, Email: user.Email})
	return session, nil
}

func (s *Service) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), s.opts.BcryptCost)
	})
	return s.dummyHash
}

// SignOut ends the session behind token. Unknown tokens are not an error.
func (s *Service) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	var email string
	if sess, err := s.tokens.Get(ctx, token); err == nil {
		email = sess.Email
	}
	if err := s.tokens.Delete(ctx, token); err != nil {
		return &domain.GatewayError{Op: "auth.signout", Err: err}
	}
	s.broker.Publish(domain.SessionEvent{Kind: domain.SessionSignedOut, Token: token, Email: email})
	return nil
}

// Session returns the live session for token. A token that has disappeared from the
// store is announced as expired.
func (s *Service) Session(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, domain.ErrNotFound
	}
	sess, err := s.tokens.Get(ctx, token)
	return s.resolve(token, sess, err)
}

// Check is Session for watchers that are not user activity: it leaves the expiry where
// it is, so an idle page cannot keep its own session alive.
func (s *Service) Check(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, domain.ErrNotFound
	}
	sess, err := s.tokens.Peek(ctx, token)
	return s.resolve(token, sess, err)
}

func (s *Service) resolve(token string, sess *domain.Session, err error) (*domain.Session, error) {
	if errors.Is(err, domain.ErrNotFound) {
		s.broker.Publish(domain.SessionEvent{Kind: domain.SessionExpired, Token: token})
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, &domain.GatewayError{Op: "auth.session", Err: err}
	}
	return sess, nil
}

// Subscribe registers fn for session events until the returned func is called.
func (s *Service) Subscribe(fn func(domain.SessionEvent)) (unsubscribe func()) {
	return s.broker.Subscribe(fn)
}

func (s *Service) TTL() time.Duration {
	return s.tokens.TTL()
}
