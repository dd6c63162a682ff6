package sales

import (
	"errors"
	"testing"

	"pos-backend/internal/inventory"
	"pos-backend/internal/models"

	"gorm.io/gorm"
)

func setupService(t *testing.T) (*Service, *inventory.Store, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	products := inventory.NewStore(db)
	svc := NewService(products, NewStore(db))
	return svc, products, db
}

// Scenario: 5 on hand at 10.00 each, sell 3 -> stock 2, total 30.00.
func TestCheckout(t *testing.T) {
	svc, products, db := setupService(t)
	id, err := products.Create(&models.Product{Name: "Cola", Price: 10, Quantity: 5})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	if err := svc.AddToCart(7, id, 3); err != nil {
		t.Fatalf("add to cart: %v", err)
	}

	sale, err := svc.Checkout(7, models.PaymentCash)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if sale.TotalAmount != 30 {
		t.Fatalf("expected total 30 got %v", sale.TotalAmount)
	}
	if sale.UserID != 7 {
		t.Fatalf("expected operator 7 got %d", sale.UserID)
	}
	if sale.ReceiptNo == "" {
		t.Fatalf("expected receipt number assigned")
	}

	if got := productQty(t, db, id); got != 2 {
		t.Fatalf("expected stock 2 got %d", got)
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	svc, _, _ := setupService(t)
	if _, err := svc.Checkout(1, models.PaymentCash); !errors.Is(err, models.ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

func TestCheckoutInvalidPaymentMethod(t *testing.T) {
	svc, products, _ := setupService(t)
	id, _ := products.Create(&models.Product{Name: "Cola", Price: 1, Quantity: 5})
	if err := svc.AddToCart(1, id, 1); err != nil {
		t.Fatalf("add: %v", err)
	}

	var ve *models.ValidationError
	if _, err := svc.Checkout(1, "cheque"); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestAddToCartUnknownProduct(t *testing.T) {
	svc, _, _ := setupService(t)
	if err := svc.AddToCart(1, 9999, 1); !errors.Is(err, models.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

// Scenario: quantity 5, two operators each cart 3. Both pass the cart-time
// check; only the first commit wins, the second fails at the atomic
// decrement and nothing of it persists. Final stock 2.
func TestCheckoutRace(t *testing.T) {
	svc, products, db := setupService(t)
	id, err := products.Create(&models.Product{Name: "Last Batch", Price: 10, Quantity: 5})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	if err := svc.AddToCart(1, id, 3); err != nil {
		t.Fatalf("operator 1 add: %v", err)
	}
	if err := svc.AddToCart(2, id, 3); err != nil {
		t.Fatalf("operator 2 add: %v", err)
	}

	if _, err := svc.Checkout(1, models.PaymentCash); err != nil {
		t.Fatalf("first checkout: %v", err)
	}

	var ise *models.InsufficientStockError
	if _, err := svc.Checkout(2, models.PaymentCash); !errors.As(err, &ise) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if ise.ProductID != id {
		t.Fatalf("expected offending product %d got %d", id, ise.ProductID)
	}

	if got := productQty(t, db, id); got != 2 {
		t.Fatalf("expected stock 2 got %d", got)
	}

	var saleCount int64
	db.Model(&models.Sale{}).Count(&saleCount)
	if saleCount != 1 {
		t.Fatalf("expected exactly 1 committed sale got %d", saleCount)
	}
}

// Price and name changes after cart-add must not leak into the sale: the
// line keeps its snapshots and the total is computed from them.
func TestCheckoutUsesSnapshots(t *testing.T) {
	svc, products, _ := setupService(t)
	id, err := products.Create(&models.Product{Name: "Old Name", Price: 10, Quantity: 5})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	if err := svc.AddToCart(1, id, 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := products.Update(&models.Product{ID: id, Name: "New Name", Price: 99, Quantity: 5}); err != nil {
		t.Fatalf("update product: %v", err)
	}

	sale, err := svc.Checkout(1, models.PaymentCard)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if sale.TotalAmount != 20 {
		t.Fatalf("expected total from price snapshot 20, got %v", sale.TotalAmount)
	}
	if sale.Items[0].ProductName != "Old Name" {
		t.Fatalf("expected name snapshot, got %q", sale.Items[0].ProductName)
	}
}

// The product disappearing between cart-add and checkout aborts the commit.
func TestCheckoutProductDeleted(t *testing.T) {
	svc, products, db := setupService(t)
	id, err := products.Create(&models.Product{Name: "Ephemeral", Price: 1, Quantity: 5})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	if err := svc.AddToCart(1, id, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := products.Delete(id); err != nil {
		t.Fatalf("delete product: %v", err)
	}

	if _, err := svc.Checkout(1, models.PaymentCash); !errors.Is(err, models.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}

	var saleCount int64
	db.Model(&models.Sale{}).Count(&saleCount)
	if saleCount != 0 {
		t.Fatalf("expected no sale rows, got %d", saleCount)
	}
}

// Checkout does not own cart lifecycle; the caller resets the cart after a
// committed sale.
func TestCheckoutLeavesCartToCaller(t *testing.T) {
	svc, products, _ := setupService(t)
	id, _ := products.Create(&models.Product{Name: "Cola", Price: 1, Quantity: 10})
	if err := svc.AddToCart(1, id, 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	if _, err := svc.Checkout(1, models.PaymentCash); err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if got := len(svc.Cart(1).Items()); got != 1 {
		t.Fatalf("expected cart untouched by checkout, found %d items", got)
	}

	svc.ResetCart(1)
	if got := len(svc.Cart(1).Items()); got != 0 {
		t.Fatalf("expected empty cart after reset, found %d items", got)
	}
}
