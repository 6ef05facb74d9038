package account

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/stockroom/pkg/kvstore"
	"github.com/dmitrymomot/stockroom/pkg/logger"
	"github.com/dmitrymomot/stockroom/pkg/validator"
)

// UsersKey holds the account list. It is shared by all identities.
const UsersKey = "users"

type Registry struct {
	store      kvstore.Store
	locker     *kvstore.Locker
	logger     *slog.Logger
	bcryptCost int
}

type Option func(*Registry)

func WithBcryptCost(cost int) Option {
	return func(r *Registry) { r.bcryptCost = cost }
}

func WithLocker(lk *kvstore.Locker) Option {
	return func(r *Registry) {
		if lk != nil {
			r.locker = lk
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

func NewRegistry(store kvstore.Store, opts ...Option) *Registry {
	if store == nil {
		panic("account: store cannot be nil")
	}
	r := &Registry{
		store:      store,
		locker:     &kvstore.Locker{},
		logger:     logger.Discard(),
		bcryptCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Signup registers a new account. The display name defaults to the username.
// The password is hashed before the users list is touched.
func (r *Registry) Signup(ctx context.Context, username, password, displayName string) (User, error) {
	username = strings.TrimSpace(username)
	displayName = cleanDisplay(displayName)
	if displayName == "" {
		displayName = username
	}

	rules := append(usernameRules(username), passwordRules(password)...)
	rules = append(rules, validator.MaxLen("display", displayName, MaxDisplayNameLength))
	if err := validator.Apply(rules...); err != nil {
		return User{}, invalid(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), r.bcryptCost)
	if err != nil {
		return User{}, errors.Join(ErrFailedToHash, err)
	}

	unlock := r.locker.Lock(UsersKey)
	defer unlock()

	users, err := r.load(ctx)
	if err != nil {
		return User{}, err
	}
	if indexOf(users, username) >= 0 {
		return User{}, ErrDuplicateIdentity
	}

	rec := record{Username: username, Secret: string(hash), DisplayName: displayName}
	if err := r.save(ctx, append(users, rec)); err != nil {
		return User{}, err
	}

	r.logger.InfoContext(ctx, "account created", logger.Identity(username))
	return rec.user(), nil
}

// Authenticate checks credentials. Unknown users and wrong passwords both
// return ErrInvalidCredentials.
func (r *Registry) Authenticate(ctx context.Context, username, password string) (User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return User{}, ErrInvalidCredentials
	}

	unlock := r.locker.Lock(UsersKey)
	defer unlock()

	users, err := r.load(ctx)
	if err != nil {
		return User{}, err
	}
	i := indexOf(users, username)
	if i < 0 {
		return User{}, ErrInvalidCredentials
	}
	rec := users[i]

	if rec.hashed() {
		if err := bcrypt.CompareHashAndPassword([]byte(rec.Secret), []byte(password)); err != nil {
			return User{}, ErrInvalidCredentials
		}
		return rec.user(), nil
	}

	if subtle.ConstantTimeCompare([]byte(rec.Secret), []byte(password)) != 1 {
		return User{}, ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), r.bcryptCost)
	if err != nil {
		// the login itself succeeded; the upgrade is retried next time
		r.logger.WarnContext(ctx, "could not hash legacy password", logger.Identity(username), logger.Error(err))
		return rec.user(), nil
	}
	users[i].Secret = string(hash)
	if err := r.save(ctx, users); err != nil {
		return User{}, err
	}
	r.logger.InfoContext(ctx, "upgraded legacy password", logger.Identity(username))
	return rec.user(), nil
}

func (r *Registry) Get(ctx context.Context, username string) (User, error) {
	unlock := r.locker.Lock(UsersKey)
	defer unlock()

	users, err := r.load(ctx)
	if err != nil {
		return User{}, err
	}
	i := indexOf(users, strings.TrimSpace(username))
	if i < 0 {
		return User{}, ErrNotFound
	}
	return users[i].user(), nil
}

// UpdateSettings changes the display name and/or password of an existing account.
func (r *Registry) UpdateSettings(ctx context.Context, username string, s Settings) (User, error) {
	s.DisplayName = cleanDisplay(s.DisplayName)

	rules := []validator.Rule{validator.MaxLen("display", s.DisplayName, MaxDisplayNameLength)}
	if s.Password != "" {
		rules = append(rules, passwordRules(s.Password)...)
	}
	if err := validator.Apply(rules...); err != nil {
		return User{}, invalid(err)
	}

	var hash []byte
	if s.Password != "" {
		var err error
		if hash, err = bcrypt.GenerateFromPassword([]byte(s.Password), r.bcryptCost); err != nil {
			return User{}, errors.Join(ErrFailedToHash, err)
		}
	}

	unlock := r.locker.Lock(UsersKey)
	defer unlock()

	users, err := r.load(ctx)
	if err != nil {
		return User{}, err
	}
	i := indexOf(users, strings.TrimSpace(username))
	if i < 0 {
		return User{}, ErrNotFound
	}
	if s.DisplayName != "" {
		users[i].DisplayName = s.DisplayName
	}
	if hash != nil {
		users[i].Secret = string(hash)
	}
	if err := r.save(ctx, users); err != nil {
		return User{}, err
	}

	r.logger.InfoContext(ctx, "account settings updated",
		logger.Identity(users[i].Username),
		slog.Bool("password_changed", hash != nil),
	)
	return users[i].user(), nil
}

// List returns all accounts in signup order.
func (r *Registry) List(ctx context.Context) ([]User, error) {
	unlock := r.locker.Lock(UsersKey)
	defer unlock()

	users, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]User, 0, len(users))
	for _, rec := range users {
		out = append(out, rec.user())
	}
	return out, nil
}

func (r *Registry) load(ctx context.Context) ([]record, error) {
	users, outcome, err := kvstore.Load[[]record](ctx, r.store, UsersKey)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoad, err)
	}
	if outcome == kvstore.Corrupt {
		r.logger.WarnContext(ctx, "corrupt users record, treating as empty")
	}
	if outcome != kvstore.Found {
		return []record{}, nil
	}
	return users, nil
}

func (r *Registry) save(ctx context.Context, users []record) error {
	if err := kvstore.Save(ctx, r.store, UsersKey, users); err != nil {
		return errors.Join(ErrFailedToSave, err)
	}
	return nil
}

func indexOf(users []record, username string) int {
	for i, u := range users {
		if u.Username == username {
			return i
		}
	}
	return -1
}
