package shop

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/language"

	"github.com/dmitrymomot/stockroom/pkg/account"
	"github.com/dmitrymomot/stockroom/pkg/catalog"
	"github.com/dmitrymomot/stockroom/pkg/clock"
	"github.com/dmitrymomot/stockroom/pkg/identity"
	"github.com/dmitrymomot/stockroom/pkg/kvstore"
	"github.com/dmitrymomot/stockroom/pkg/logger"
	"github.com/dmitrymomot/stockroom/pkg/subscription"
)

const (
	PendingActionKey = "pendingAction"
	LanguageKey      = "language"

	// PendingBuy is left behind by a guest checkout.
	PendingBuy = "buy"

	DefaultLanguage = "tr"
)

// Service wires the stockroom components over one store.
type Service struct {
	store    kvstore.Store
	sessions *identity.Resolver
	accounts *account.Registry
	ledger   *subscription.Ledger
	catalog  *catalog.Catalog
	plans    *subscription.Plans
	logger   *slog.Logger
}

func New(store kvstore.Store, opts ...Option) *Service {
	if store == nil {
		panic("shop: store cannot be nil")
	}
	o := &options{
		clock:      clock.System(),
		logger:     logger.Discard(),
		plans:      subscription.DefaultPlans(),
		bcryptCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(o)
	}

	locker := &kvstore.Locker{}
	return &Service{
		store: store,
		sessions: identity.NewResolver(store,
			identity.WithClock(o.clock),
			identity.WithLogger(o.logger.With(logger.Component("identity"))),
		),
		accounts: account.NewRegistry(store,
			account.WithLocker(locker),
			account.WithBcryptCost(o.bcryptCost),
			account.WithLogger(o.logger.With(logger.Component("account"))),
		),
		ledger: subscription.NewLedger(store,
			subscription.WithClock(o.clock),
			subscription.WithLocker(locker),
			subscription.WithLogger(o.logger.With(logger.Component("subscription"))),
		),
		catalog: catalog.New(store,
			catalog.WithClock(o.clock),
			catalog.WithLocker(locker),
			catalog.WithLogger(o.logger.With(logger.Component("catalog"))),
		),
		plans:  o.plans,
		logger: o.logger,
	}
}

type SignupInput struct {
	Username    string
	Password    string
	DisplayName string
	Remember    bool
}

// Signup creates the account, signs it in and records the default package
// unless one is already stored for that username.
func (s *Service) Signup(ctx context.Context, in SignupInput) (account.User, error) {
	u, err := s.accounts.Signup(ctx, in.Username, in.Password, in.DisplayName)
	if err != nil {
		return account.User{}, err
	}
	if _, err := s.sessions.SignIn(ctx, u.ID(), in.Remember); err != nil {
		return account.User{}, err
	}
	if _, err := s.ledger.EnsurePackage(ctx, u.ID()); err != nil {
		return account.User{}, err
	}
	return u, nil
}

type LoginResult struct {
	User account.User `json:"user"`
	// PendingAction is what a guest started before being asked to sign in.
	PendingAction string `json:"pendingAction,omitempty"`
}

func (s *Service) Login(ctx context.Context, username, password string, remember bool) (LoginResult, error) {
	u, err := s.accounts.Authenticate(ctx, username, password)
	if err != nil {
		return LoginResult{}, err
	}
	if _, err := s.sessions.SignIn(ctx, u.ID(), remember); err != nil {
		return LoginResult{}, err
	}

	pending, err := s.readString(ctx, PendingActionKey)
	if err != nil {
		return LoginResult{}, err
	}
	if pending != "" {
		if err := s.store.Delete(ctx, PendingActionKey); err != nil {
			return LoginResult{}, err
		}
	}

	s.logger.InfoContext(ctx, "signed in", logger.Identity(u.Username), slog.Bool("remember", remember))
	return LoginResult{User: u, PendingAction: pending}, nil
}

func (s *Service) Logout(ctx context.Context) error {
	return s.sessions.SignOut(ctx)
}

// CurrentUser returns the signed-in user, or false for a guest. A session whose
// account record is gone still counts, with the username as display name.
func (s *Service) CurrentUser(ctx context.Context) (account.User, bool, error) {
	id, err := s.sessions.Current(ctx)
	if err != nil || id.IsGuest() {
		return account.User{}, false, err
	}
	u, err := s.accounts.Get(ctx, id.String())
	if errors.Is(err, account.ErrNotFound) {
		return account.User{Username: id.String(), DisplayName: id.String()}, true, nil
	}
	if err != nil {
		return account.User{}, false, err
	}
	return u, true, nil
}

func (s *Service) UpdateSettings(ctx context.Context, settings account.Settings) (account.User, error) {
	id, err := s.requireUser(ctx)
	if err != nil {
		return account.User{}, err
	}
	return s.accounts.UpdateSettings(ctx, id.String(), settings)
}

// Users lists the accounts registered on this store in signup order.
// Credentials never leave the registry.
func (s *Service) Users(ctx context.Context) ([]account.User, error) {
	return s.accounts.List(ctx)
}

// Overview is the dashboard header: who is signed in, their quota and stock totals.
type Overview struct {
	User   *account.User       `json:"user,omitempty"`
	Status subscription.Status `json:"status"`
	Stats  catalog.Stats       `json:"stats"`
}

func (s *Service) Overview(ctx context.Context) (Overview, error) {
	u, ok, err := s.CurrentUser(ctx)
	if err != nil {
		return Overview{}, err
	}
	id := identity.Guest
	var ov Overview
	if ok {
		id = u.ID()
		ov.User = &u
	}

	if ov.Status, err = s.ledger.Status(ctx, id); err != nil {
		return Overview{}, err
	}
	if ov.Stats, err = s.catalog.Stats(ctx, id); err != nil {
		return Overview{}, err
	}
	return ov, nil
}

// AddResult carries the new product and the quota left afterwards.
type AddResult struct {
	Product   catalog.Product    `json:"product"`
	Remaining subscription.Limit `json:"remaining"`
}

// AddProduct validates, consumes one unit of weekly quota and stores the product.
// Invalid input never consumes quota, and a failed write gives the unit back.
func (s *Service) AddProduct(ctx context.Context, f catalog.Fields) (AddResult, error) {
	id, err := s.sessions.Current(ctx)
	if err != nil {
		return AddResult{}, err
	}
	f = f.Normalize()
	if err := f.Validate(); err != nil {
		return AddResult{}, err
	}

	grant, err := s.ledger.TryConsume(ctx, id)
	if err != nil {
		return AddResult{}, err
	}
	if !grant.Granted {
		return AddResult{}, ErrQuotaExceeded
	}

	p, err := s.catalog.Add(ctx, id, f)
	if err != nil {
		if _, rerr := s.ledger.Release(ctx, id); rerr != nil {
			s.logger.ErrorContext(ctx, "quota consumed but product not stored",
				logger.Identity(id.String()), logger.Error(errors.Join(err, rerr)))
		}
		return AddResult{}, err
	}

	s.logger.InfoContext(ctx, "product added",
		logger.Identity(id.String()),
		logger.ProductID(p.ID),
		logger.Remaining(grant.Remaining),
	)
	return AddResult{Product: p, Remaining: grant.Remaining}, nil
}

func (s *Service) ChangeQuantity(ctx context.Context, productID string, delta int) (catalog.Product, error) {
	id, err := s.sessions.Current(ctx)
	if err != nil {
		return catalog.Product{}, err
	}
	p, err := s.catalog.ChangeQuantity(ctx, id, productID, delta)
	return p, notFound(err)
}

// EditProduct does not consume quota.
func (s *Service) EditProduct(ctx context.Context, productID string, f catalog.Fields) (catalog.Product, error) {
	id, err := s.sessions.Current(ctx)
	if err != nil {
		return catalog.Product{}, err
	}
	p, err := s.catalog.Edit(ctx, id, productID, f)
	return p, notFound(err)
}

func (s *Service) DeleteProduct(ctx context.Context, productID string) error {
	id, err := s.sessions.Current(ctx)
	if err != nil {
		return err
	}
	removed, err := s.catalog.Remove(ctx, id, productID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrProductNotFound
	}
	return nil
}

// DeleteAll empties the catalog. Quota already used this week stays used.
func (s *Service) DeleteAll(ctx context.Context) error {
	id, err := s.sessions.Current(ctx)
	if err != nil {
		return err
	}
	return s.catalog.RemoveAll(ctx, id)
}

func (s *Service) Products(ctx context.Context) ([]catalog.Product, error) {
	id, err := s.sessions.Current(ctx)
	if err != nil {
		return nil, err
	}
	return s.catalog.List(ctx, id)
}

func (s *Service) Search(ctx context.Context, q catalog.Query) ([]catalog.Product, error) {
	id, err := s.sessions.Current(ctx)
	if err != nil {
		return nil, err
	}
	return s.catalog.Search(ctx, id, q)
}

func (s *Service) Stats(ctx context.Context) (catalog.Stats, error) {
	id, err := s.sessions.Current(ctx)
	if err != nil {
		return catalog.Stats{}, err
	}
	return s.catalog.Stats(ctx, id)
}

func (s *Service) Plans() []subscription.Plan {
	return s.plans.List()
}

// Checkout switches the signed-in user to planID. No payment is taken.
// Guests get ErrLoginRequired and a pending buy action for their next login.
func (s *Service) Checkout(ctx context.Context, planID string) (subscription.Status, error) {
	plan, err := s.plans.Lookup(planID)
	if err != nil {
		return subscription.Status{}, err
	}

	id, err := s.sessions.Current(ctx)
	if err != nil {
		return subscription.Status{}, err
	}
	if id.IsGuest() {
		if err := kvstore.Save(ctx, s.store, PendingActionKey, PendingBuy); err != nil {
			return subscription.Status{}, err
		}
		return subscription.Status{}, ErrLoginRequired
	}

	if err := s.ledger.AssignPackage(ctx, id, plan.Package()); err != nil {
		return subscription.Status{}, err
	}
	return s.ledger.Status(ctx, id)
}

// Language returns the stored UI language or DefaultLanguage.
func (s *Service) Language(ctx context.Context) (string, error) {
	lang, err := s.readString(ctx, LanguageKey)
	if err != nil {
		return "", err
	}
	if lang == "" {
		return DefaultLanguage, nil
	}
	return lang, nil
}

// SetLanguage stores code in canonical BCP 47 form and returns it.
func (s *Service) SetLanguage(ctx context.Context, code string) (string, error) {
	tag, err := language.Parse(strings.TrimSpace(code))
	if err != nil {
		return "", errors.Join(ErrInvalidLanguage, err)
	}
	canonical := tag.String()
	if err := kvstore.Save(ctx, s.store, LanguageKey, canonical); err != nil {
		return "", err
	}
	return canonical, nil
}

func (s *Service) requireUser(ctx context.Context) (identity.ID, error) {
	id, err := s.sessions.Current(ctx)
	if err != nil {
		return identity.Guest, err
	}
	if id.IsGuest() {
		return identity.Guest, ErrLoginRequired
	}
	return id, nil
}

// readString reads a JSON string record, falling back to the raw value for
// records written as bare text.
func (s *Service) readString(ctx context.Context, key string) (string, error) {
	raw, err := s.store.Get(ctx, key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	var v string
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		v = raw
	}
	return strings.TrimSpace(v), nil
}

func notFound(err error) error {
	if errors.Is(err, catalog.ErrNotFound) {
		return errors.Join(ErrProductNotFound, err)
	}
	return err
}
