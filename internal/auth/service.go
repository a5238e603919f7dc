package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/ayush/auth-service/internal/models"
)

// CredentialStore defines the interface for account persistence. Lookups
// return models.ErrAccountNotFound when nothing matches; InsertUnique returns
// models.ErrAccountExists when the username or email is already taken, and
// must enforce that atomically.
type CredentialStore interface {
	FindByEmailOrUsername(ctx context.Context, email, username string) (*models.Account, error)
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	FindByID(ctx context.Context, id string) (*models.Account, error)
	InsertUnique(ctx context.Context, account *models.Account) (*models.Account, error)
}

// TokenMinter issues a session token for an account.
type TokenMinter interface {
	Mint(accountID string) (string, error)
}

// OutcomeObserver is told the result kind of every signup and signin.
type OutcomeObserver interface {
	ObserveOutcome(operation, kind string)
}

// Session is the result of a successful signup or signin.
type Session struct {
	Account models.PublicAccountView
	Token   string
}

// Service implements signup and signin. It holds no per-call state.
type Service struct {
	store    CredentialStore
	hasher   PasswordHasher
	tokens   TokenMinter
	logger   *slog.Logger
	observer OutcomeObserver
}

// Option configures a Service.
type Option func(*Service)

// WithOutcomeObserver reports operation outcomes to o.
func WithOutcomeObserver(o OutcomeObserver) Option {
	return func(s *Service) { s.observer = o }
}

// NewService creates a Service.
func NewService(store CredentialStore, hasher PasswordHasher, tokens TokenMinter, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{store: store, hasher: hasher, tokens: tokens, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Signup registers a new account and issues a token for it.
func (s *Service) Signup(ctx context.Context, req models.SignupRequest) (*Session, error) {
	session, err := s.signup(ctx, req)
	s.record(ctx, "signup", err)
	return session, err
}

// Signin authenticates an existing account and issues a token for it.
func (s *Service) Signin(ctx context.Context, req models.SigninRequest) (*Session, error) {
	session, err := s.signin(ctx, req)
	s.record(ctx, "signin", err)
	return session, err
}

// Account returns the public view of the account with the given id.
func (s *Service) Account(ctx context.Context, id string) (*models.PublicAccountView, error) {
	acct, err := s.store.FindByID(ctx, id)
	if errors.Is(err, models.ErrAccountNotFound) {
		return nil, &Error{Kind: KindNotFound, Message: "Account not found"}
	}
	if err != nil {
		return nil, Internal(err)
	}
	view := acct.Public()
	return &view, nil
}

func (s *Service) signup(ctx context.Context, req models.SignupRequest) (*Session, error) {
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, ErrInvalidInput
	}
	username := strings.ToLower(req.Username)
	email := strings.ToLower(req.Email)

	// Fast path for a friendly error; InsertUnique is what actually guarantees uniqueness.
	existing, err := s.store.FindByEmailOrUsername(ctx, email, username)
	switch {
	case err == nil && existing != nil:
		return nil, ErrConflict
	case err != nil && !errors.Is(err, models.ErrAccountNotFound):
		return nil, Internal(err)
	}

	hash, err := s.hasher.Hash(ctx, req.Password)
	if err != nil {
		return nil, Internal(err)
	}

	now := time.Now().UTC()
	acct, err := s.store.InsertUnique(ctx, &models.Account{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if errors.Is(err, models.ErrAccountExists) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, Internal(err)
	}

	session, err := s.issue(acct)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "account created", "account_id", acct.ID)
	return session, nil
}

func (s *Service) signin(ctx context.Context, req models.SigninRequest) (*Session, error) {
	if req.Email == "" || req.Password == "" {
		return nil, ErrInvalidInput
	}

	acct, err := s.store.FindByEmail(ctx, strings.ToLower(req.Email))
	if errors.Is(err, models.ErrAccountNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, Internal(err)
	}

	ok, err := s.hasher.Verify(ctx, req.Password, acct.PasswordHash)
	if err != nil {
		return nil, Internal(err)
	}
	if !ok {
		return nil, ErrUnauthorized
	}

	session, err := s.issue(acct)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "account signed in", "account_id", acct.ID)
	return session, nil
}

func (s *Service) issue(acct *models.Account) (*Session, error) {
	token, err := s.tokens.Mint(acct.ID)
	if err != nil {
		return nil, Internal(err)
	}
	return &Session{Account: acct.Public(), Token: token}, nil
}

func (s *Service) record(ctx context.Context, op string, err error) {
	kind := "ok"
	if err != nil {
		kind = Classify(err).Kind.String()
		s.logger.DebugContext(ctx, op+" rejected", "kind", kind)
	}
	if s.observer != nil {
		s.observer.ObserveOutcome(op, kind)
	}
}
