package catalog

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrymomot/stockroom/pkg/clock"
	"github.com/dmitrymomot/stockroom/pkg/identity"
	"github.com/dmitrymomot/stockroom/pkg/kvstore"
	"github.com/dmitrymomot/stockroom/pkg/logger"
	"github.com/dmitrymomot/stockroom/pkg/sanitizer"
)

// ProductsKey is the base key of product lists.
const ProductsKey = "products"

type Catalog struct {
	store  kvstore.Store
	clock  clock.Clock
	locker *kvstore.Locker
	logger *slog.Logger
	newID  func() string
}

type Option func(*Catalog)

func WithClock(c clock.Clock) Option {
	return func(cat *Catalog) {
		if c != nil {
			cat.clock = c
		}
	}
}

func WithLocker(lk *kvstore.Locker) Option {
	return func(cat *Catalog) {
		if lk != nil {
			cat.locker = lk
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(cat *Catalog) {
		if l != nil {
			cat.logger = l
		}
	}
}

// WithIDGenerator replaces the random UUID generator.
func WithIDGenerator(fn func() string) Option {
	return func(cat *Catalog) {
		if fn != nil {
			cat.newID = fn
		}
	}
}

func New(store kvstore.Store, opts ...Option) *Catalog {
	if store == nil {
		panic("catalog: store cannot be nil")
	}
	c := &Catalog{
		store:  store,
		clock:  clock.System(),
		locker: &kvstore.Locker{},
		logger: logger.Discard(),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Add appends a new product. Quota must already be granted by the caller.
func (c *Catalog) Add(ctx context.Context, id identity.ID, f Fields) (Product, error) {
	f = f.Normalize()
	if err := f.Validate(); err != nil {
		return Product{}, err
	}

	var added Product
	err := c.update(ctx, id, func(list []Product) ([]Product, error) {
		added = Product{ID: c.newID(), DateAdded: c.clock.Now().UTC()}
		f.apply(&added)
		return append(list, added), nil
	})
	if err != nil {
		return Product{}, err
	}

	c.logger.DebugContext(ctx, "product added", logger.Identity(id.String()), logger.ProductID(added.ID))
	return added, nil
}

// ChangeQuantity adds delta to the quantity. The result stays within
// [0, math.MaxInt]; a positive delta never lowers the stock.
func (c *Catalog) ChangeQuantity(ctx context.Context, id identity.ID, productID string, delta int) (Product, error) {
	var changed Product
	err := c.update(ctx, id, func(list []Product) ([]Product, error) {
		i := indexOf(list, productID)
		if i < 0 {
			return nil, ErrNotFound
		}
		list[i].Quantity = sanitizer.SaturatingAdd(list[i].Quantity, delta, 0, math.MaxInt)
		changed = list[i]
		return list, nil
	})
	if err != nil {
		return Product{}, err
	}
	return changed, nil
}

// Edit replaces the editable fields. Id and date added are kept.
func (c *Catalog) Edit(ctx context.Context, id identity.ID, productID string, f Fields) (Product, error) {
	f = f.Normalize()
	if err := f.Validate(); err != nil {
		return Product{}, err
	}

	var edited Product
	err := c.update(ctx, id, func(list []Product) ([]Product, error) {
		i := indexOf(list, productID)
		if i < 0 {
			return nil, ErrNotFound
		}
		f.apply(&list[i])
		edited = list[i]
		return list, nil
	})
	if err != nil {
		return Product{}, err
	}
	return edited, nil
}

// Remove deletes one product and reports whether it existed.
// A miss leaves storage untouched.
func (c *Catalog) Remove(ctx context.Context, id identity.ID, productID string) (bool, error) {
	err := c.update(ctx, id, func(list []Product) ([]Product, error) {
		i := indexOf(list, productID)
		if i < 0 {
			return nil, ErrNotFound
		}
		return append(list[:i], list[i+1:]...), nil
	})
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	c.logger.DebugContext(ctx, "product removed", logger.Identity(id.String()), logger.ProductID(productID))
	return true, nil
}

// RemoveAll drops the whole list.
func (c *Catalog) RemoveAll(ctx context.Context, id identity.ID) error {
	key := id.Scope(ProductsKey)
	unlock := c.locker.Lock(key)
	defer unlock()

	if err := c.store.Delete(ctx, key); err != nil {
		return errors.Join(ErrFailedToSave, err)
	}
	c.logger.InfoContext(ctx, "all products removed", logger.Identity(id.String()))
	return nil
}

// List returns products in insertion order.
func (c *Catalog) List(ctx context.Context, id identity.ID) ([]Product, error) {
	key := id.Scope(ProductsKey)
	unlock := c.locker.Lock(key)
	defer unlock()
	return c.load(ctx, id, key)
}

// Search keeps products whose name or description contains q.Text (folded)
// and whose category equals q.Category when one is given.
func (c *Catalog) Search(ctx context.Context, id identity.ID, q Query) ([]Product, error) {
	list, err := c.List(ctx, id)
	if err != nil {
		return nil, err
	}
	q.Text = strings.TrimSpace(q.Text)
	q.Category = strings.TrimSpace(q.Category)

	out := make([]Product, 0, len(list))
	for _, p := range list {
		if q.matches(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (c *Catalog) Stats(ctx context.Context, id identity.ID) (Stats, error) {
	list, err := c.List(ctx, id)
	if err != nil {
		return Stats{}, err
	}
	s := Stats{Products: len(list), ByCategory: make(map[string]int)}
	for _, p := range list {
		s.Stock = sanitizer.SaturatingAdd(s.Stock, p.Quantity, 0, math.MaxInt)
		s.Value += p.Value()
		s.ByCategory[p.Category]++
	}
	return s, nil
}

// update runs fn over the current list under the list lock and saves the result.
// When fn fails nothing is written.
func (c *Catalog) update(ctx context.Context, id identity.ID, fn func([]Product) ([]Product, error)) error {
	key := id.Scope(ProductsKey)
	unlock := c.locker.Lock(key)
	defer unlock()

	list, err := c.load(ctx, id, key)
	if err != nil {
		return err
	}
	next, err := fn(list)
	if err != nil {
		return err
	}
	return c.save(ctx, key, next)
}

// load expects the list lock to be held. A corrupt list reads as empty.
func (c *Catalog) load(ctx context.Context, id identity.ID, key string) ([]Product, error) {
	list, outcome, err := kvstore.Load[[]Product](ctx, c.store, key)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoad, err)
	}
	switch outcome {
	case kvstore.Corrupt:
		c.logger.WarnContext(ctx, "corrupt product list, treating as empty", logger.Identity(id.String()))
		return []Product{}, nil
	case kvstore.Missing:
		return []Product{}, nil
	}

	migrated := 0
	for i := range list {
		if strings.TrimSpace(list[i].ID) == "" {
			list[i].ID = c.newID()
			migrated++
		}
		if list[i].Quantity < 0 {
			list[i].Quantity = 0
			migrated++
		}
	}
	if migrated > 0 {
		if err := c.save(ctx, key, list); err != nil {
			return nil, err
		}
		c.logger.InfoContext(ctx, "migrated legacy products",
			logger.Identity(id.String()),
			slog.Int("fixed", migrated),
		)
	}
	return list, nil
}

func (c *Catalog) save(ctx context.Context, key string, list []Product) error {
	if list == nil {
		list = []Product{}
	}
	if err := kvstore.Save(ctx, c.store, key, list); err != nil {
		return errors.Join(ErrFailedToSave, err)
	}
	return nil
}

func indexOf(list []Product, productID string) int {
	for i, p := range list {
		if p.ID == productID {
			return i
		}
	}
	return -1
}
