package sales

import (
	"errors"
	"testing"

	"pos-backend/internal/models"
)

func testProduct(id uint, name string, price float64, qty int) *models.Product {
	return &models.Product{ID: id, Name: name, Price: price, Quantity: qty}
}

func TestCartMergesLines(t *testing.T) {
	cart := &Cart{}
	p := testProduct(1, "Cola", 1.5, 10)

	if err := cart.AddProduct(p, 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := cart.AddProduct(p, 3); err != nil {
		t.Fatalf("add again: %v", err)
	}

	items := cart.Items()
	if len(items) != 1 {
		t.Fatalf("expected 1 merged line got %d", len(items))
	}
	if items[0].Quantity != 5 {
		t.Fatalf("expected quantity 5 got %d", items[0].Quantity)
	}
	if got := cart.Total(); got != 7.5 {
		t.Fatalf("expected total 7.5 got %v", got)
	}
}

func TestCartRejectsInsufficientStock(t *testing.T) {
	cart := &Cart{}
	p := testProduct(1, "Cola", 10, 5)

	// Scenario: 5 on hand, asking for 6 fails before any commit is attempted.
	var ise *models.InsufficientStockError
	if err := cart.AddProduct(p, 6); !errors.As(err, &ise) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if len(cart.Items()) != 0 {
		t.Fatalf("failed add must not touch the cart")
	}

	// The combined quantity counts, not just the increment.
	if err := cart.AddProduct(p, 3); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := cart.AddProduct(p, 3); !errors.As(err, &ise) {
		t.Fatalf("expected InsufficientStockError on merge, got %v", err)
	}
	if cart.Items()[0].Quantity != 3 {
		t.Fatalf("failed merge must not change the line")
	}
}

func TestCartRejectsBadQuantity(t *testing.T) {
	cart := &Cart{}
	var ve *models.ValidationError
	if err := cart.AddProduct(testProduct(1, "Cola", 1, 10), 0); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestCartRemoveEntireLine(t *testing.T) {
	cart := &Cart{}
	if err := cart.AddProduct(testProduct(1, "Cola", 1.5, 10), 4); err != nil {
		t.Fatalf("add: %v", err)
	}

	// nil quantity removes the whole line regardless of its quantity.
	if err := cart.RemoveProduct(1, nil); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(cart.Items()) != 0 {
		t.Fatalf("expected empty cart")
	}
}

func TestCartRemovePartial(t *testing.T) {
	cart := &Cart{}
	if err := cart.AddProduct(testProduct(1, "Cola", 1.5, 10), 4); err != nil {
		t.Fatalf("add: %v", err)
	}

	one := 1
	if err := cart.RemoveProduct(1, &one); err != nil {
		t.Fatalf("remove 1: %v", err)
	}
	if got := cart.Items()[0].Quantity; got != 3 {
		t.Fatalf("expected quantity 3 got %d", got)
	}

	// Removing at least the line's quantity drops the line.
	five := 5
	if err := cart.RemoveProduct(1, &five); err != nil {
		t.Fatalf("remove 5: %v", err)
	}
	if len(cart.Items()) != 0 {
		t.Fatalf("expected empty cart")
	}
}

func TestCartRemoveMissing(t *testing.T) {
	cart := &Cart{}
	if err := cart.RemoveProduct(42, nil); !errors.Is(err, models.ErrNotInCart) {
		t.Fatalf("expected ErrNotInCart, got %v", err)
	}
}

func TestCartTotalNeverCached(t *testing.T) {
	cart := &Cart{}
	if err := cart.AddProduct(testProduct(1, "Cola", 2, 10), 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := cart.AddProduct(testProduct(2, "Chips", 3, 10), 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := cart.Total(); got != 7 {
		t.Fatalf("expected 7 got %v", got)
	}

	if err := cart.RemoveProduct(2, nil); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got := cart.Total(); got != 4 {
		t.Fatalf("expected 4 after removal got %v", got)
	}
}

func TestCartRegistryIsolation(t *testing.T) {
	reg := NewCartRegistry()

	if err := reg.For(1).AddProduct(testProduct(1, "Cola", 1, 10), 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := len(reg.For(2).Items()); got != 0 {
		t.Fatalf("operator 2 must get their own cart, found %d items", got)
	}

	reg.Reset(1)
	if got := len(reg.For(1).Items()); got != 0 {
		t.Fatalf("expected fresh cart after reset, found %d items", got)
	}
}
