// Package session owns the authenticated identity and the bearer credential.
package session

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/api"
	"github.com/fjod/go_cart/storefront/internal/credstore"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/pkg/logger"
)

const (
	loginFailed        = "Login failed"
	registrationFailed = "Registration failed"
)

// AuthAPI is the part of the remote API the session needs.
type AuthAPI interface {
	Me(ctx context.Context, cred domain.Credential) (domain.User, error)
	Login(ctx context.Context, email, password string) (domain.AuthResult, error)
	Register(ctx context.Context, email, password, fullName string) (domain.AuthResult, error)
}

// Result reports the outcome of Login and Register. Error is a message meant
// for the user.
type Result struct {
	Success bool
	Error   string
}

// State is a snapshot of the session. User is nil unless the held credential
// was last validated successfully.
type State struct {
	User      *domain.User
	Resolving bool
}

// Authenticated reports whether resolution finished with a user.
func (s State) Authenticated() bool {
	return !s.Resolving && s.User != nil
}

// Listener is called after every change of the current user. prev and next
// are never both nil and never the same user.
type Listener = func(ctx context.Context, prev, next *domain.User)

type Service struct {
	api   AuthAPI
	store credstore.Store
	log   *zap.Logger

	// wmu orders credential persistence with the user change it belongs to.
	wmu sync.Mutex

	mu        sync.RWMutex
	cred      domain.Credential
	user      *domain.User
	resolving bool
	gen       uint64 // bumped on every sign-in and sign-out

	lmu       sync.Mutex
	listeners []Listener
}

func NewService(a AuthAPI, store credstore.Store, log *zap.Logger) *Service {
	return &Service{
		api:       a,
		store:     store,
		log:       logger.OrNop(log),
		resolving: true,
	}
}

// Subscribe registers l. Listeners run synchronously, in registration order,
// on the goroutine that changed the user.
func (s *Service) Subscribe(l Listener) {
	s.lmu.Lock()
	defer s.lmu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Initialize loads the persisted credential and validates it. A credential
// the server does not accept is discarded. Initialize never fails; the
// session is resolved when it returns. A Login, Register or Logout that
// completes while validation is in flight takes precedence over its outcome.
func (s *Service) Initialize(ctx context.Context) {
	gen := s.generation()

	cred, err := s.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, credstore.ErrNotFound) {
			s.log.Warn("failed to load credential", zap.Error(err))
		}
		s.finishResolving()
		return
	}

	user, err := s.api.Me(ctx, cred)

	s.wmu.Lock()
	if s.generation() != gen {
		s.wmu.Unlock()
		s.log.Debug("session changed during credential validation, dropping result")
		s.finishResolving()
		return
	}

	if err != nil {
		s.log.Info("stored credential rejected", zap.Error(err))
		if errClear := s.store.Clear(ctx); errClear != nil {
			s.log.Warn("failed to clear credential", zap.Error(errClear))
		}
		s.wmu.Unlock()
		s.finishResolving()
		return
	}

	notify := s.swap(cred, &user)
	s.wmu.Unlock()
	s.finishResolving()
	notify(ctx)
}

func (s *Service) generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

func (s *Service) finishResolving() {
	s.mu.Lock()
	s.resolving = false
	s.mu.Unlock()
}

func (s *Service) Login(ctx context.Context, email, password string) Result {
	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		s.log.Info("login failed", zap.String("email", email), zap.Error(err))
		return Result{Error: api.Message(err, loginFailed)}
	}
	return s.accept(ctx, res, loginFailed)
}

func (s *Service) Register(ctx context.Context, email, password, fullName string) Result {
	res, err := s.api.Register(ctx, email, password, fullName)
	if err != nil {
		s.log.Info("registration failed", zap.String("email", email), zap.Error(err))
		return Result{Error: api.Message(err, registrationFailed)}
	}
	return s.accept(ctx, res, registrationFailed)
}

func (s *Service) accept(ctx context.Context, res domain.AuthResult, fallback string) Result {
	if res.Token.IsZero() {
		s.log.Warn("auth response carried no token", zap.String("user_id", res.User.ID))
		return Result{Error: fallback}
	}

	s.wmu.Lock()
	if err := s.store.Save(ctx, res.Token); err != nil {
		// The session still works for this process.
		s.log.Warn("failed to persist credential", zap.Error(err))
	}
	user := res.User
	notify := s.swap(res.Token, &user)
	s.wmu.Unlock()

	s.finishResolving()
	notify(ctx)
	return Result{Success: true}
}

// Logout drops the credential everywhere and clears the user.
func (s *Service) Logout(ctx context.Context) {
	s.wmu.Lock()
	if err := s.store.Clear(ctx); err != nil {
		s.log.Warn("failed to clear credential", zap.Error(err))
	}
	notify := s.swap("", nil)
	s.wmu.Unlock()
	notify(ctx)
}

// swap installs cred and user and returns the listener notification for the
// change. The caller holds wmu and runs the notification after releasing it.
func (s *Service) swap(cred domain.Credential, user *domain.User) func(context.Context) {
	s.mu.Lock()
	prev := s.user
	s.cred = cred
	s.user = user
	s.gen++
	s.mu.Unlock()

	if !changed(prev, user) {
		return func(context.Context) {}
	}

	s.lmu.Lock()
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.lmu.Unlock()

	return func(ctx context.Context) {
		for _, l := range listeners {
			l(ctx, prev, user)
		}
	}
}

func changed(prev, next *domain.User) bool {
	switch {
	case prev == nil && next == nil:
		return false
	case prev == nil || next == nil:
		return true
	default:
		return prev.ID != next.ID
	}
}

func (s *Service) Credential() domain.Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred
}

// CurrentUser returns a copy of the current user, or nil.
func (s *Service) CurrentUser() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Service) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := State{Resolving: s.resolving}
	if s.user != nil {
		u := *s.user
		st.User = &u
	}
	return st
}
