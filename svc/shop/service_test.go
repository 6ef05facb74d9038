package shop_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/stockroom/pkg/account"
	"github.com/dmitrymomot/stockroom/pkg/catalog"
	"github.com/dmitrymomot/stockroom/pkg/clock"
	"github.com/dmitrymomot/stockroom/pkg/kvstore"
	"github.com/dmitrymomot/stockroom/pkg/subscription"
	"github.com/dmitrymomot/stockroom/svc/shop"
)

var monday = time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC)

func newService(t *testing.T, opts ...shop.Option) (*shop.Service, *kvstore.MemoryStore, *clock.Mock) {
	t.Helper()
	store := kvstore.NewMemoryStore()
	clk := clock.NewMock(monday)
	opts = append([]shop.Option{shop.WithClock(clk), shop.WithBcryptCost(bcrypt.MinCost)}, opts...)
	return shop.New(store, opts...), store, clk
}

func signup(t *testing.T, svc *shop.Service, username string) account.User {
	t.Helper()
	u, err := svc.Signup(context.Background(), shop.SignupInput{Username: username, Password: "secret-pass"})
	require.NoError(t, err)
	return u
}

func TestNew_PanicsOnNilStore(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { shop.New(nil) })
}

func TestSignup_SignsInAndRecordsPackage(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, store, _ := newService(t)

	u := signup(t, svc, "ayse")
	assert.Equal(t, "ayse", u.DisplayName)

	current, ok, err := svc.CurrentUser(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ayse", current.Username)

	_, err = store.Get(ctx, "package_ayse")
	require.NoError(t, err)

	ov, err := svc.Overview(ctx)
	require.NoError(t, err)
	require.NotNil(t, ov.User)
	assert.Equal(t, subscription.DefaultPackage, ov.Status.Package)
	assert.Equal(t, subscription.Finite(100), ov.Status.Remaining)

	_, err = svc.Signup(ctx, shop.SignupInput{Username: "ayse", Password: "another-pass"})
	assert.ErrorIs(t, err, account.ErrDuplicateIdentity)
}

func TestSignup_KeepsExistingPackage(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, store, _ := newService(t)
	require.NoError(t, kvstore.Save(ctx, store, "package_mehmet",
		subscription.Package{Name: "Unlimited", Limit: subscription.Unlimited}))

	signup(t, svc, "mehmet")

	ov, err := svc.Overview(ctx)
	require.NoError(t, err)
	assert.True(t, ov.Status.Remaining.IsUnlimited())
}

func TestAddProduct(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, _ := newService(t)
	signup(t, svc, "ayse")

	res, err := svc.AddProduct(ctx, catalog.Fields{Name: "  Çekiç ", Category: "Hırdavat", Quantity: 5, Price: 12.5})
	require.NoError(t, err)
	assert.Equal(t, "Çekiç", res.Product.Name)
	assert.NotEmpty(t, res.Product.ID)
	assert.Equal(t, monday, res.Product.DateAdded)
	assert.Equal(t, subscription.Finite(99), res.Remaining)

	t.Run("invalid input does not consume quota", func(t *testing.T) {
		_, err := svc.AddProduct(ctx, catalog.Fields{Name: "   ", Quantity: 1})
		require.ErrorIs(t, err, catalog.ErrInvalidInput)

		ov, err := svc.Overview(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, ov.Status.Usage.Count)
		assert.Equal(t, 1, ov.Stats.Products)
	})
}

func TestAddProduct_QuotaAndUpgrade(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, _ := newService(t)
	signup(t, svc, "ayse")

	for i := range 100 {
		_, err := svc.AddProduct(ctx, catalog.Fields{Name: "item", Quantity: i})
		require.NoError(t, err)
	}

	_, err := svc.AddProduct(ctx, catalog.Fields{Name: "one too many"})
	require.ErrorIs(t, err, shop.ErrQuotaExceeded)

	products, err := svc.Products(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 100)

	status, err := svc.Checkout(ctx, "unlimited")
	require.NoError(t, err)
	assert.Equal(t, "Unlimited", status.Package.Name)
	assert.Equal(t, 100, status.Usage.Count)

	res, err := svc.AddProduct(ctx, catalog.Fields{Name: "now allowed"})
	require.NoError(t, err)
	assert.True(t, res.Remaining.IsUnlimited())

	ov, err := svc.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 101, ov.Status.Usage.Count)
}

func TestAddProduct_NewWeekResetsQuota(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, clk := newService(t)
	signup(t, svc, "ayse")
	_, err := svc.Checkout(ctx, "free")
	require.NoError(t, err)

	for range 100 {
		_, err := svc.AddProduct(ctx, catalog.Fields{Name: "item"})
		require.NoError(t, err)
	}
	_, err = svc.AddProduct(ctx, catalog.Fields{Name: "refused"})
	require.ErrorIs(t, err, shop.ErrQuotaExceeded)

	clk.Advance(7 * 24 * time.Hour)

	res, err := svc.AddProduct(ctx, catalog.Fields{Name: "next week"})
	require.NoError(t, err)
	assert.Equal(t, subscription.Finite(99), res.Remaining)
}

// productWriteFailure refuses writes to product lists.
type productWriteFailure struct {
	*kvstore.MemoryStore
}

func (s productWriteFailure) Set(ctx context.Context, key, value string) error {
	if strings.HasPrefix(key, catalog.ProductsKey) {
		return errors.New("disk full")
	}
	return s.MemoryStore.Set(ctx, key, value)
}

func TestAddProduct_FailedWriteReleasesQuota(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := productWriteFailure{kvstore.NewMemoryStore()}
	svc := shop.New(store, shop.WithClock(clock.NewMock(monday)), shop.WithBcryptCost(bcrypt.MinCost))
	signup(t, svc, "ayse")

	_, err := svc.AddProduct(ctx, catalog.Fields{Name: "Çekiç", Quantity: 1})
	require.ErrorIs(t, err, catalog.ErrFailedToSave)

	ov, err := svc.Overview(ctx)
	require.NoError(t, err)
	assert.Zero(t, ov.Status.Usage.Count)
	assert.Equal(t, subscription.Finite(100), ov.Status.Remaining)
}

func TestProducts_ScopedPerIdentity(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, store, _ := newService(t)

	_, err := svc.AddProduct(ctx, catalog.Fields{Name: "guest item"})
	require.NoError(t, err)
	_, err = store.Get(ctx, "products")
	require.NoError(t, err)

	signup(t, svc, "ayse")
	products, err := svc.Products(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)

	require.NoError(t, svc.Logout(ctx))
	products, err = svc.Products(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "guest item", products[0].Name)
}

func TestProductLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, _ := newService(t)
	signup(t, svc, "ayse")

	needle, err := svc.AddProduct(ctx, catalog.Fields{Name: "İğne", Category: "Dikiş", Quantity: 5, Price: 2})
	require.NoError(t, err)
	_, err = svc.AddProduct(ctx, catalog.Fields{Name: "Makas", Category: "Dikiş", Quantity: 1, Price: 30})
	require.NoError(t, err)

	found, err := svc.Search(ctx, catalog.Query{Text: "ı"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, needle.Product.ID, found[0].ID)

	p, err := svc.ChangeQuantity(ctx, needle.Product.ID, -1000)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Quantity)

	edited, err := svc.EditProduct(ctx, needle.Product.ID, catalog.Fields{Name: "Toplu iğne", Category: "Dikiş", Quantity: 3, Price: 1})
	require.NoError(t, err)
	assert.Equal(t, needle.Product.DateAdded, edited.DateAdded)

	ov, err := svc.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, ov.Status.Usage.Count, "edits do not consume quota")

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Products)
	assert.Equal(t, 4, stats.Stock)
	assert.InDelta(t, 33.0, stats.Value, 0.0001)

	_, err = svc.ChangeQuantity(ctx, "missing", 1)
	assert.ErrorIs(t, err, shop.ErrProductNotFound)
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	err = svc.DeleteProduct(ctx, "missing")
	assert.ErrorIs(t, err, shop.ErrProductNotFound)
	products, err := svc.Products(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 2)

	require.NoError(t, svc.DeleteProduct(ctx, needle.Product.ID))
	require.NoError(t, svc.DeleteAll(ctx))
	products, err = svc.Products(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)

	ov, err = svc.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, ov.Status.Usage.Count, "deleting does not refund quota")
}

func TestCheckout_GuestLeavesPendingAction(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, _ := newService(t)
	signup(t, svc, "ayse")
	require.NoError(t, svc.Logout(ctx))

	_, err := svc.Checkout(ctx, "standard")
	require.ErrorIs(t, err, shop.ErrLoginRequired)

	res, err := svc.Login(ctx, "ayse", "secret-pass", false)
	require.NoError(t, err)
	assert.Equal(t, shop.PendingBuy, res.PendingAction)

	require.NoError(t, svc.Logout(ctx))
	res, err = svc.Login(ctx, "ayse", "secret-pass", true)
	require.NoError(t, err)
	assert.Empty(t, res.PendingAction, "pending action is handed out once")

	status, err := svc.Checkout(ctx, "Standard")
	require.NoError(t, err)
	assert.Equal(t, subscription.Finite(500), status.Remaining)

	_, err = svc.Checkout(ctx, "platinum")
	assert.ErrorIs(t, err, subscription.ErrPlanNotFound)
}

func TestLogin_WrongPassword(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, _ := newService(t)
	signup(t, svc, "ayse")
	require.NoError(t, svc.Logout(ctx))

	_, err := svc.Login(ctx, "ayse", "nope-nope", false)
	require.ErrorIs(t, err, account.ErrInvalidCredentials)

	_, ok, err := svc.CurrentUser(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLogin_SessionExpires(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, clk := newService(t)
	signup(t, svc, "ayse")

	clk.Advance(25 * time.Hour)

	_, ok, err := svc.CurrentUser(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCurrentUser_MissingAccountRecord(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, store, _ := newService(t)
	require.NoError(t, store.Set(ctx, "currentUser", `"legacy"`))

	u, ok, err := svc.CurrentUser(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, account.User{Username: "legacy", DisplayName: "legacy"}, u)
}

func TestUpdateSettings(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, _ := newService(t)

	_, err := svc.UpdateSettings(ctx, account.Settings{DisplayName: "Ayşe"})
	require.ErrorIs(t, err, shop.ErrLoginRequired)

	signup(t, svc, "ayse")
	u, err := svc.UpdateSettings(ctx, account.Settings{DisplayName: "Ayşe Y.", Password: "new-secret"})
	require.NoError(t, err)
	assert.Equal(t, "Ayşe Y.", u.DisplayName)

	require.NoError(t, svc.Logout(ctx))
	_, err = svc.Login(ctx, "ayse", "new-secret", false)
	require.NoError(t, err)
}

func TestUsers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, _ := newService(t)

	users, err := svc.Users(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	signup(t, svc, "ayse")
	_, err = svc.Signup(ctx, shop.SignupInput{Username: "mehmet", Password: "secret-pass", DisplayName: "Mehmet"})
	require.NoError(t, err)

	users, err = svc.Users(ctx)
	require.NoError(t, err)
	assert.Equal(t, []account.User{
		{Username: "ayse", DisplayName: "ayse"},
		{Username: "mehmet", DisplayName: "Mehmet"},
	}, users)
}

func TestLanguage(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, store, _ := newService(t)

	lang, err := svc.Language(ctx)
	require.NoError(t, err)
	assert.Equal(t, shop.DefaultLanguage, lang)

	lang, err = svc.SetLanguage(ctx, " EN-us ")
	require.NoError(t, err)
	assert.Equal(t, "en-US", lang)

	got, err := svc.Language(ctx)
	require.NoError(t, err)
	assert.Equal(t, "en-US", got)

	_, err = svc.SetLanguage(ctx, "not a language")
	assert.True(t, errors.Is(err, shop.ErrInvalidLanguage))

	require.NoError(t, store.Set(ctx, "language", "de"))
	got, err = svc.Language(ctx)
	require.NoError(t, err)
	assert.Equal(t, "de", got)
}

func TestPlans(t *testing.T) {
	t.Parallel()

	svc, _, _ := newService(t)
	plans := svc.Plans()
	require.Len(t, plans, 3)
	assert.Equal(t, "free", plans[0].ID)

	custom, err := subscription.NewPlans(subscription.Plan{ID: "pro", Name: "Pro", Limit: subscription.Finite(10)})
	require.NoError(t, err)
	svc, _, _ = newService(t, shop.WithPlans(custom))
	require.Len(t, svc.Plans(), 1)
}
