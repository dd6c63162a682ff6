package sales

import (
	"pos-backend/internal/inventory"
	"pos-backend/internal/models"

	"github.com/google/uuid"
)

// Service orchestrates carts and the sale commit protocol. Authorization is
// the route layer's job; the service only needs to know which operator acts.
type Service struct {
	products *inventory.Store
	store    *Store
	carts    *CartRegistry
}

func NewService(products *inventory.Store, store *Store) *Service {
	return &Service{
		products: products,
		store:    store,
		carts:    NewCartRegistry(),
	}
}

func (s *Service) Cart(operatorID uint) *Cart {
	return s.carts.For(operatorID)
}

// ResetCart replaces the operator's cart with a fresh one. Called by the
// presentation layer after a committed sale; Checkout itself does not own
// cart lifecycle.
func (s *Service) ResetCart(operatorID uint) {
	s.carts.Reset(operatorID)
}

// AddToCart looks the product up and merges it into the operator's cart,
// checking the combined quantity against current stock.
func (s *Service) AddToCart(operatorID, productID uint, qty int) error {
	p, err := s.products.GetByID(productID)
	if err != nil {
		return err
	}
	return s.carts.For(operatorID).AddProduct(p, qty)
}

// RemoveFromCart removes qty units (the whole line when qty is nil).
func (s *Service) RemoveFromCart(operatorID, productID uint, qty *int) error {
	return s.carts.For(operatorID).RemoveProduct(productID, qty)
}

// Checkout turns the operator's cart into a persisted sale.
//
//  1. The total is recomputed from the cart lines; a client-supplied total is
//     never accepted.
//  2. Every line is re-validated against the live catalog — stock may have
//     moved since the item was added.
//  3. Store.CreateSaleWithItems writes sale, items and stock decrements
//     atomically; the conditional decrement catches any concurrent sale that
//     step 2 raced with.
//
// On success the committed sale is returned; the caller discards the cart.
func (s *Service) Checkout(operatorID uint, payment models.PaymentMethod) (*models.Sale, error) {
	if payment != models.PaymentCash && payment != models.PaymentCard {
		return nil, &models.ValidationError{Field: "payment_method", Reason: `must be "cash" or "card"`}
	}

	items := s.carts.For(operatorID).Items()
	if len(items) == 0 {
		return nil, models.ErrEmptyCart
	}

	for i := range items {
		p, err := s.products.GetByID(items[i].ProductID)
		if err != nil {
			return nil, err
		}
		if p.Quantity < items[i].Quantity {
			return nil, &models.InsufficientStockError{
				ProductID:   p.ID,
				ProductName: p.Name,
				Requested:   items[i].Quantity,
				Available:   p.Quantity,
			}
		}
	}

	sale := &models.Sale{
		ReceiptNo:     uuid.NewString(),
		UserID:        operatorID,
		PaymentMethod: payment,
		Items:         items,
	}
	for _, it := range items {
		sale.TotalAmount += it.Total()
	}

	if err := s.store.CreateSaleWithItems(sale); err != nil {
		return nil, err
	}
	return sale, nil
}
