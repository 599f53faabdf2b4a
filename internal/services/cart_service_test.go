package services_test

import (
	"context"
	"sync"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/services"

	"github.com/shopspring/decimal"
)

func TestCartAddRemoveKeepsStockAndTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "alice@example.com")
	p := f.product(t, "Widget", 10, 5)

	item, err := f.cart.AddProduct(ctx, u.ID, p.ID, 3)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if item.Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", item.Quantity)
	}
	if got := f.stock(t, p.ID); got != 2 {
		t.Fatalf("expected stock 2, got %d", got)
	}
	cart, err := f.cart.Current(ctx, u.ID)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if !cart.Total.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("expected total 30, got %s", cart.Total)
	}

	_, err = f.cart.AddProduct(ctx, u.ID, p.ID, 3)
	wantKind(t, err, services.ErrBadRequest, "Insufficient stock")
	if got := f.stock(t, p.ID); got != 2 {
		t.Fatalf("failed add changed stock to %d", got)
	}
	cart, _ = f.cart.Current(ctx, u.ID)
	if !cart.Total.Equal(decimal.NewFromInt(30)) || len(cart.Items) != 1 || cart.Items[0].Quantity != 3 {
		t.Fatalf("failed add changed the cart: %+v", cart)
	}

	if err := f.cart.RemoveProduct(ctx, u.ID, p.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got := f.stock(t, p.ID); got != 5 {
		t.Fatalf("expected stock 5 after remove, got %d", got)
	}
	cart, _ = f.cart.Current(ctx, u.ID)
	if !cart.Total.IsZero() || len(cart.Items) != 0 {
		t.Fatalf("expected empty cart, got total=%s items=%d", cart.Total, len(cart.Items))
	}
}

func TestCartAddAccumulatesQuantity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "bob@example.com")
	p := f.product(t, "Gadget", 4, 10)

	first, err := f.cart.AddProduct(ctx, u.ID, p.ID, 2)
	if err != nil {
		t.Fatal(err)
	}
	second, err := f.cart.AddProduct(ctx, u.ID, p.ID, 3)
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != second.ID || second.Quantity != 5 {
		t.Fatalf("expected one line with quantity 5, got %+v", second)
	}
	cart, _ := f.cart.Current(ctx, u.ID)
	if len(cart.Items) != 1 || !cart.Total.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("unexpected cart %+v", cart)
	}
	if cart.Items[0].Product.ID != p.ID || cart.Items[0].Product.Title != "Gadget" {
		t.Fatalf("line not expanded with product: %+v", cart.Items[0])
	}
}

func TestCartAddRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "carol@example.com")
	p := f.product(t, "Thing", 1, 1)

	_, err := f.cart.AddProduct(ctx, u.ID, p.ID, 0)
	wantKind(t, err, services.ErrBadRequest, "Quantity must be greater than 0")
	_, err = f.cart.AddProduct(ctx, "nobody", p.ID, 1)
	wantKind(t, err, services.ErrNotFound, "User not found")
	_, err = f.cart.AddProduct(ctx, u.ID, "missing", 1)
	wantKind(t, err, services.ErrNotFound, "Product not found")
	err = f.cart.RemoveProduct(ctx, u.ID, p.ID)
	wantKind(t, err, services.ErrNotFound, "Product not found in cart")
}

func TestCheckoutOpensFreshCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "dave@example.com")
	p := f.product(t, "Lamp", 7, 3)

	if _, err := f.cart.AddProduct(ctx, u.ID, p.ID, 1); err != nil {
		t.Fatal(err)
	}
	cart, _ := f.cart.Current(ctx, u.ID)

	next, err := f.cart.Checkout(ctx, cart.ID)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if next == "" || next == cart.ID {
		t.Fatalf("expected a new cart id, got %q", next)
	}
	if n := f.pendingCount(t, u.ID); n != 1 {
		t.Fatalf("expected exactly one pending cart, got %d", n)
	}
	fresh, _ := f.cart.Current(ctx, u.ID)
	if fresh.ID != next || !fresh.Total.IsZero() || len(fresh.Items) != 0 {
		t.Fatalf("fresh cart not empty: %+v", fresh)
	}

	_, err = f.cart.Checkout(ctx, cart.ID)
	wantKind(t, err, services.ErrBadRequest, "Cart is not pending")
	if n := f.pendingCount(t, u.ID); n != 1 {
		t.Fatalf("second checkout changed pending carts to %d", n)
	}

	_, err = f.cart.Checkout(ctx, "missing")
	wantKind(t, err, services.ErrNotFound, "Cart not found")

	history, err := f.cart.History(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 carts in history, got %d", len(history))
	}
	var paid *domain.Cart
	for i := range history {
		if history[i].ID == cart.ID {
			paid = &history[i]
		}
	}
	if paid == nil || paid.Status != domain.CartPaid || len(paid.Items) != 1 {
		t.Fatalf("paid cart missing from history: %+v", history)
	}
}

func TestConcurrentAddsNeverOversell(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Rare", 1, 5)
	users := make([]*domain.User, 10)
	for i := range users {
		users[i] = f.user(t, "buyer"+string(rune('a'+i))+"@example.com")
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for _, u := range users {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := f.cart.AddProduct(ctx, id, p.ID, 1); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}(u.ID)
	}
	wg.Wait()

	if ok != 5 {
		t.Fatalf("expected 5 successful adds, got %d", ok)
	}
	if got := f.stock(t, p.ID); got != 0 {
		t.Fatalf("expected stock 0, got %d", got)
	}
}

func TestCartTotalKeepsCents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "erin@example.com")
	priced := func(title, price string) *domain.Product {
		pr := decimal.RequireFromString(price)
		stock := 10
		p, err := f.catalog.Create(ctx, services.ProductFields{Title: &title, Price: &pr, Stock: &stock})
		if err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
		return p
	}
	mug := priced("Mug", "19.99")
	pin := priced("Pin", "0.10")

	if _, err := f.cart.AddProduct(ctx, u.ID, mug.ID, 3); err != nil {
		t.Fatal(err)
	}
	cart, _ := f.cart.Current(ctx, u.ID)
	if !cart.Total.Equal(decimal.RequireFromString("59.97")) {
		t.Fatalf("expected total 59.97, got %s", cart.Total)
	}

	for i := 0; i < 3; i++ {
		if _, err := f.cart.AddProduct(ctx, u.ID, pin.ID, 1); err != nil {
			t.Fatal(err)
		}
	}
	cart, _ = f.cart.Current(ctx, u.ID)
	if !cart.Total.Equal(decimal.RequireFromString("60.27")) {
		t.Fatalf("expected total 60.27, got %s", cart.Total)
	}
	for _, it := range cart.Items {
		if it.Product.ID == mug.ID && !it.Product.Price.Equal(decimal.RequireFromString("19.99")) {
			t.Fatalf("line price drifted: %s", it.Product.Price)
		}
	}
}

func TestHistoryIsNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "frank@example.com")
	p := f.product(t, "Pen", 2, 10)

	var paid []string
	for i := 0; i < 2; i++ {
		if _, err := f.cart.AddProduct(ctx, u.ID, p.ID, 1); err != nil {
			t.Fatal(err)
		}
		cart, _ := f.cart.Current(ctx, u.ID)
		if _, err := f.cart.Checkout(ctx, cart.ID); err != nil {
			t.Fatalf("checkout: %v", err)
		}
		paid = append(paid, cart.ID)
	}
	current, _ := f.cart.Current(ctx, u.ID)

	history, err := f.cart.History(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{current.ID, paid[1], paid[0]}
	if len(history) != len(want) {
		t.Fatalf("expected %d carts, got %d", len(want), len(history))
	}
	for i, id := range want {
		if history[i].ID != id {
			t.Fatalf("history[%d] = %s (%s), want %s", i, history[i].ID, history[i].Status, id)
		}
	}
}
