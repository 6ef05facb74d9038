package identity

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/dmitrymomot/stockroom/pkg/clock"
	"github.com/dmitrymomot/stockroom/pkg/kvstore"
	"github.com/dmitrymomot/stockroom/pkg/logger"
)

// Record keys shared by every namespace.
const (
	CurrentUserKey = "currentUser"
	SessionKey     = "session"
)

// Session bounds a sign-in in time.
type Session struct {
	User      ID        `json:"user"`
	ExpiresAt time.Time `json:"expiresAt"`
	Remember  bool      `json:"remember,omitempty"`
}

// Expired reports whether the session is no longer valid at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

type Resolver struct {
	store       kvstore.Store
	clock       clock.Clock
	ttl         time.Duration
	rememberTTL time.Duration
	logger      *slog.Logger
}

func NewResolver(store kvstore.Store, opts ...Option) *Resolver {
	if store == nil {
		panic("identity: store cannot be nil")
	}
	r := &Resolver{
		store:       store,
		clock:       clock.System(),
		ttl:         DefaultSessionTTL,
		rememberTTL: DefaultRememberTTL,
		logger:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Current returns the signed-in identity or Guest.
// A marker with no session record is trusted as is.
func (r *Resolver) Current(ctx context.Context) (ID, error) {
	id, err := r.marker(ctx)
	if err != nil {
		return Guest, errors.Join(ErrFailedToResolve, err)
	}
	if id.IsGuest() {
		return Guest, nil
	}

	sess, outcome, err := kvstore.Load[Session](ctx, r.store, SessionKey)
	if err != nil {
		return Guest, errors.Join(ErrFailedToResolve, err)
	}
	switch outcome {
	case kvstore.Missing:
		return id, nil
	case kvstore.Found:
		if sess.User == id && !sess.Expired(r.clock.Now()) {
			return id, nil
		}
	}

	r.logger.InfoContext(ctx, "session no longer valid, signing out",
		logger.Identity(id.String()),
		slog.String("outcome", outcome.String()),
	)
	if err := r.clear(ctx); err != nil {
		return Guest, errors.Join(ErrFailedToResolve, err)
	}
	return Guest, nil
}

// SignIn makes id current. The session lasts the remember TTL when remember is set.
func (r *Resolver) SignIn(ctx context.Context, id ID, remember bool) (Session, error) {
	if id.IsGuest() {
		return Session{}, ErrGuestSignIn
	}

	ttl := r.ttl
	if remember {
		ttl = r.rememberTTL
	}
	sess := Session{User: id, ExpiresAt: r.clock.Now().Add(ttl).UTC(), Remember: remember}

	if err := kvstore.Save(ctx, r.store, SessionKey, sess); err != nil {
		return Session{}, errors.Join(ErrFailedToSignIn, err)
	}
	if err := kvstore.Save(ctx, r.store, CurrentUserKey, id); err != nil {
		return Session{}, errors.Join(ErrFailedToSignIn, err)
	}

	r.logger.DebugContext(ctx, "signed in",
		logger.Identity(id.String()),
		slog.Time("expires_at", sess.ExpiresAt),
	)
	return sess, nil
}

// SignOut returns the caller to the guest namespace. Signing out a guest is a no-op.
func (r *Resolver) SignOut(ctx context.Context) error {
	if err := r.clear(ctx); err != nil {
		return errors.Join(ErrFailedToSignOut, err)
	}
	return nil
}

func (r *Resolver) clear(ctx context.Context) error {
	return errors.Join(
		r.store.Delete(ctx, CurrentUserKey),
		r.store.Delete(ctx, SessionKey),
	)
}

// marker reads currentUser, accepting a JSON string or a bare legacy value.
func (r *Resolver) marker(ctx context.Context) (ID, error) {
	raw, err := r.store.Get(ctx, CurrentUserKey)
	if errors.Is(err, kvstore.ErrNotFound) {
		return Guest, nil
	}
	if err != nil {
		return Guest, err
	}

	raw = strings.TrimSpace(raw)
	var s string
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		s = raw
	}
	return ID(strings.TrimSpace(s)), nil
}
